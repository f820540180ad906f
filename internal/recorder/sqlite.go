package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/thecr7guy2/agent-trading/internal/model"
)

// SQLiteRecorder persists cycle history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cycle_runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			timestamp   INTEGER NOT NULL,
			run_date    TEXT,
			status      TEXT,
			reason      TEXT,
			candidates  INTEGER,
			picks       INTEGER,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON cycle_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS trades (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT NOT NULL,
			timestamp     INTEGER NOT NULL,
			strategy      TEXT,
			ticker        TEXT,
			broker_ticker TEXT,
			status        TEXT,
			amount        REAL,
			quantity      REAL,
			order_id      TEXT,
			error         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_ts ON trades(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_ticker ON trades(ticker)`,

		`CREATE TABLE IF NOT EXISTS sell_signals (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			strategy      TEXT,
			ticker        TEXT,
			rule          TEXT,
			return_pct    REAL,
			days_held     INTEGER,
			trigger_price REAL,
			quantity      REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sells_ts ON sell_signals(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordCycle(report *model.CycleReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	duration := report.FinishedAt.Sub(report.StartedAt).Milliseconds()
	_, err := r.db.Exec(`INSERT INTO cycle_runs
		(run_id, timestamp, run_date, status, reason, candidates, picks, duration_ms)
		VALUES (?,?,?,?,?,?,?,?)`,
		report.RunID, time.Now().Unix(), report.Date.Format("2006-01-02"),
		report.Status, report.Reason, len(report.Candidates), len(report.Picks), duration,
	)
	return err
}

func (r *SQLiteRecorder) RecordTrades(runID, strategy string, summary *model.ExecutionSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().Unix()
	insert := func(status string, t model.TradeResult) error {
		_, err := r.db.Exec(`INSERT INTO trades
			(run_id, timestamp, strategy, ticker, broker_ticker, status, amount, quantity, order_id, error)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			runID, now, strategy, t.Ticker, t.BrokerTicker, status,
			t.Spent, t.Quantity, t.OrderID, t.Error,
		)
		return err
	}

	for _, t := range summary.Bought {
		if err := insert("bought", t); err != nil {
			return err
		}
	}
	for _, t := range summary.Failed {
		if err := insert("failed", t); err != nil {
			return err
		}
	}
	for _, t := range summary.Skipped {
		if err := insert("skipped", t); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSellSignals(strategy string, signals []model.SellSignal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().Unix()
	for _, s := range signals {
		_, err := r.db.Exec(`INSERT INTO sell_signals
			(timestamp, strategy, ticker, rule, return_pct, days_held, trigger_price, quantity)
			VALUES (?,?,?,?,?,?,?,?)`,
			now, strategy, s.Ticker, string(s.Rule), s.ReturnPct, s.DaysHeld,
			s.TriggerPrice, s.Quantity,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
