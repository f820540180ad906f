// Package scheduler runs the daily decision cycle and the intraday sell
// check on cron schedules, and enforces the run cadence: one cycle at a
// time, trading days only, with a minimum gap between runs.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/thecr7guy2/agent-trading/internal/broker"
	"github.com/thecr7guy2/agent-trading/internal/cooldown"
	"github.com/thecr7guy2/agent-trading/internal/decision"
	"github.com/thecr7guy2/agent-trading/internal/executor"
	"github.com/thecr7guy2/agent-trading/internal/merger"
	"github.com/thecr7guy2/agent-trading/internal/metrics"
	"github.com/thecr7guy2/agent-trading/internal/model"
	"github.com/thecr7guy2/agent-trading/internal/notifier"
	"github.com/thecr7guy2/agent-trading/internal/recorder"
	"github.com/thecr7guy2/agent-trading/internal/sellrules"
)

const markerKey = "last_run"

// Strategy bundles everything one strategy variant needs at runtime.
type Strategy struct {
	Config   model.StrategyConfig
	Executor *executor.Executor
	Sell     *sellrules.Engine
	Broker   broker.Broker
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron       *cron.Cron
	Merger     *merger.Merger
	Decider    decision.Decider
	Strategies []Strategy
	Cooldown   *cooldown.Tracker
	Notifier   notifier.Notifier
	Recorder   recorder.Recorder
	Ctx        context.Context

	CooldownDays int
	MinGapDays   int
	CycleTimeout time.Duration

	marker cooldown.Store // last-run date, same JSON shape as the blacklist

	mu         sync.Mutex
	inFlight   bool
	lastReport *model.CycleReport

	now func() time.Time
}

// Options configures a Scheduler.
type Options struct {
	Merger       *merger.Merger
	Decider      decision.Decider
	Strategies   []Strategy
	Cooldown     *cooldown.Tracker
	Notifier     notifier.Notifier
	Recorder     recorder.Recorder
	Marker       cooldown.Store
	CooldownDays int
	MinGapDays   int
	CycleTimeout time.Duration
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, opts Options) *Scheduler {
	timeout := opts.CycleTimeout
	if timeout <= 0 {
		timeout = 15 * time.Minute
	}
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds()),
		Merger:       opts.Merger,
		Decider:      opts.Decider,
		Strategies:   opts.Strategies,
		Cooldown:     opts.Cooldown,
		Notifier:     opts.Notifier,
		Recorder:     opts.Recorder,
		Ctx:          ctx,
		CooldownDays: opts.CooldownDays,
		MinGapDays:   opts.MinGapDays,
		CycleTimeout: timeout,
		marker:       opts.Marker,
		now:          time.Now,
	}
}

// RegisterAll registers the decision cycle, the sell check, and daily
// cooldown housekeeping.
func (s *Scheduler) RegisterAll(cycleCron, sellCheckCron string) error {
	if _, err := s.Cron.AddFunc(cycleCron, s.cycleTask); err != nil {
		return fmt.Errorf("register cycle task: %w", err)
	}
	if _, err := s.Cron.AddFunc(sellCheckCron, s.sellCheckTask); err != nil {
		return fmt.Errorf("register sell check: %w", err)
	}
	// Cooldown compaction: every day 00:05
	if _, err := s.Cron.AddFunc("0 5 0 * * *", func() {
		if err := s.Cooldown.Cleanup(s.now()); err != nil {
			log.Printf("[ERROR] cooldown cleanup: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("register cooldown cleanup: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunCycleNow executes the decision cycle immediately (manual trigger /
// RUN_ON_START). The cadence gate still applies.
func (s *Scheduler) RunCycleNow() {
	s.cycleTask()
}

// LastReport returns the most recent cycle report, or nil before the
// first run.
func (s *Scheduler) LastReport() *model.CycleReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReport
}

// cycleTask is the cron entry point for the daily decision cycle.
func (s *Scheduler) cycleTask() {
	today := s.now()

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		log.Println("[WARN] cycle trigger ignored: previous cycle still in flight")
		s.finishSkipped(today, "previous cycle still in flight")
		return
	}
	s.inFlight = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	if !isTradingDay(today) {
		log.Printf("[INFO] %s is not a trading day, skipping cycle", today.Format("2006-01-02"))
		s.finishSkipped(today, "not a trading day")
		return
	}
	if last, ok := s.lastRunDate(); ok {
		gap := daysBetween(last, today)
		if gap < s.MinGapDays {
			reason := fmt.Sprintf("last run %s, minimum gap %d day(s)", last.Format("2006-01-02"), s.MinGapDays)
			log.Printf("[INFO] skipping cycle: %s", reason)
			s.finishSkipped(today, reason)
			return
		}
	}

	ctx, cancel := context.WithTimeout(s.Ctx, s.CycleTimeout)
	defer cancel()

	report := &model.CycleReport{
		RunID:     uuid.New().String(),
		Date:      today,
		Status:    model.CycleOK,
		StartedAt: s.now(),
	}
	log.Printf("[INFO] decision cycle %s starting", report.RunID)

	report.Candidates = s.Merger.Merge(ctx, today)
	metrics.SetCandidates(len(report.Candidates))
	if len(report.Candidates) == 0 {
		// Nothing to decide on; leave the run marker alone so the next
		// trigger retries.
		report.Status = model.CycleSkipped
		report.Reason = "no candidates"
		s.finish(report)
		return
	}

	portfolio := s.collectPortfolio(ctx)
	var totalBudget float64
	for _, st := range s.Strategies {
		totalBudget += st.Config.BudgetPerRun
	}

	picks, err := s.Decider.Decide(ctx, report.Candidates, portfolio, totalBudget)
	if err != nil {
		log.Printf("[ERROR] decider %s: %v", s.Decider.Name(), err)
		report.Status = model.CycleError
		report.Reason = fmt.Sprintf("decider failed: %v", err)
		s.finish(report)
		return
	}
	report.Picks = picks

	for _, st := range s.Strategies {
		summary := st.Executor.Execute(ctx, picks, st.Config.BudgetPerRun)
		report.Executions = append(report.Executions, summary)

		metrics.AddOrders("bought", len(summary.Bought))
		metrics.AddOrders("failed", len(summary.Failed))
		metrics.AddOrders("skipped", len(summary.Skipped))
		metrics.AddSpend(st.Config.Name, summary.TotalSpent)

		if err := s.Recorder.RecordTrades(report.RunID, st.Config.Name, summary); err != nil {
			log.Printf("[ERROR] record trades for %s: %v", st.Config.Name, err)
		}
	}

	s.saveRunDate(today)
	s.finish(report)
}

// finish stamps, records, publishes, and remembers a completed report.
func (s *Scheduler) finish(report *model.CycleReport) {
	report.FinishedAt = s.now()
	metrics.IncCycle(report.Status)
	metrics.SetCycleDuration(report.FinishedAt.Sub(report.StartedAt).Seconds())

	if err := s.Recorder.RecordCycle(report); err != nil {
		log.Printf("[ERROR] record cycle: %v", err)
	}
	s.trySend(notifier.FormatCycleReport(report))

	s.mu.Lock()
	s.lastReport = report
	s.mu.Unlock()
	log.Printf("[INFO] decision cycle %s finished: %s", report.RunID, report.Status)
}

func (s *Scheduler) finishSkipped(today time.Time, reason string) {
	now := s.now()
	s.finish(&model.CycleReport{
		RunID:     uuid.New().String(),
		Date:      today,
		Status:    model.CycleSkipped,
		Reason:    reason,
		StartedAt: now,
	})
}

// sellCheckTask evaluates every strategy's open positions against its
// exit rules.
func (s *Scheduler) sellCheckTask() {
	today := s.now()
	if !isTradingDay(today) {
		return
	}
	ctx, cancel := context.WithTimeout(s.Ctx, 5*time.Minute)
	defer cancel()

	for _, st := range s.Strategies {
		positions, err := st.Broker.Positions(ctx, st.Config.AccountID)
		if err != nil {
			log.Printf("[ERROR] %s: fetch positions: %v", st.Config.Name, err)
			continue
		}
		if len(positions) == 0 {
			continue
		}

		prices := map[string]float64{}
		for _, pos := range positions {
			price, err := st.Broker.CurrentPrice(ctx, pos.Ticker)
			if err != nil || price <= 0 {
				log.Printf("[WARN] %s: no quote for %s, skipping in sell check", st.Config.Name, pos.Ticker)
				continue
			}
			prices[pos.Ticker] = price
		}

		signals := st.Sell.EvaluateAll(positions, prices, today)
		for _, sig := range signals {
			metrics.IncSellSignal(string(sig.Rule))
			log.Printf("[INFO] %s: sell signal %s %s (%.1f%%)", st.Config.Name, sig.Rule, sig.Ticker, sig.ReturnPct)
		}
		if err := s.Recorder.RecordSellSignals(st.Config.Name, signals); err != nil {
			log.Printf("[ERROR] record sell signals for %s: %v", st.Config.Name, err)
		}
		if len(signals) > 0 {
			s.trySend(notifier.FormatSellSignals(st.Config.Name, signals))
		}
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/run":
		go s.RunCycleNow()
		return "Decision cycle started."
	case "/positions":
		return s.formatAllPositions()
	case "/cooldown":
		return notifier.FormatCooldown(s.Cooldown.Blocked(s.now()), s.CooldownDays)
	case "/report":
		if report := s.LastReport(); report != nil {
			return notifier.FormatCycleReport(report)
		}
		return "No cycle has run yet."
	default:
		return "Commands:\n/run — trigger a decision cycle\n/positions — open positions\n/cooldown — blocked tickers\n/report — last cycle report"
	}
}

func (s *Scheduler) formatAllPositions() string {
	ctx, cancel := context.WithTimeout(s.Ctx, 30*time.Second)
	defer cancel()

	var b strings.Builder
	for _, st := range s.Strategies {
		positions, err := st.Broker.Positions(ctx, st.Config.AccountID)
		if err != nil {
			b.WriteString(fmt.Sprintf("%s: positions unavailable (%v)\n", st.Config.Name, err))
			continue
		}
		b.WriteString(notifier.FormatPositions(st.Config.Name, positions))
	}
	return b.String()
}

// collectPortfolio unions open positions across all strategies so the
// decider can avoid doubling up on held tickers.
func (s *Scheduler) collectPortfolio(ctx context.Context) []model.Position {
	var all []model.Position
	for _, st := range s.Strategies {
		positions, err := st.Broker.Positions(ctx, st.Config.AccountID)
		if err != nil {
			log.Printf("[WARN] %s: positions unavailable for decision input: %v", st.Config.Name, err)
			continue
		}
		all = append(all, positions...)
	}
	return all
}

func (s *Scheduler) lastRunDate() (time.Time, bool) {
	if s.marker == nil {
		return time.Time{}, false
	}
	entries, err := s.marker.Load()
	if err != nil {
		log.Printf("[WARN] last-run marker unreadable: %v", err)
		return time.Time{}, false
	}
	raw, ok := entries[markerKey]
	if !ok {
		return time.Time{}, false
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func (s *Scheduler) saveRunDate(today time.Time) {
	if s.marker == nil {
		return
	}
	if err := s.marker.Save(map[string]string{markerKey: today.Format("2006-01-02")}); err != nil {
		log.Printf("[ERROR] save last-run marker: %v", err)
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}

func isTradingDay(t time.Time) bool {
	wd := t.Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

func daysBetween(from, to time.Time) int {
	return int(to.Truncate(24*time.Hour).Sub(from.Truncate(24*time.Hour)).Hours() / 24)
}
