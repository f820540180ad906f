package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/thecr7guy2/agent-trading/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Sources struct {
		SocialURL   string   `yaml:"social_url"`
		InsiderURL  string   `yaml:"insider_url"`
		ScreenerURL string   `yaml:"screener_url"`
		EarningsURL string   `yaml:"earnings_url"`
		NewsAPIKey  string   `yaml:"news_api_key"`
		NewsURL     string   `yaml:"news_url"`
		Priority    []string `yaml:"priority"` // declared feed priority order
	} `yaml:"sources"`
	Scoring struct {
		LookbackDays         int     `yaml:"lookback_days"`
		TopN                 int     `yaml:"top_n"`
		DecayRate            float64 `yaml:"decay_rate"`
		MinInsiders          int     `yaml:"min_insiders_for_cluster"`
		CSuiteStakeThreshold float64 `yaml:"csuite_stake_threshold_pct"`
	} `yaml:"scoring"`
	Merge struct {
		CandidateLimit  int `yaml:"candidate_limit"`
		EnrichWorkers   int `yaml:"enrich_workers"`
		EnrichTimeoutMS int `yaml:"enrich_timeout_ms"`
	} `yaml:"merge"`
	Cooldown struct {
		Days      int    `yaml:"days"`
		StateFile string `yaml:"state_file"`
	} `yaml:"cooldown"`
	Schedule struct {
		CycleCron     string `yaml:"cycle_cron"`
		SellCheckCron string `yaml:"sell_check_cron"`
		MinGapDays    int    `yaml:"min_gap_days"`
		CycleTimeoutS int    `yaml:"cycle_timeout_s"`
		MarkerFile    string `yaml:"marker_file"`
	} `yaml:"schedule"`
	Strategies []model.StrategyConfig `yaml:"strategies"`
	Database   struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides, then defaults.
func Load(path string) (*Config, error) {
	// Best effort: a missing .env is fine.
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("NEWS_API_KEY"); v != "" {
		cfg.Sources.NewsAPIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CYCLE_CRON"); v != "" {
		cfg.Schedule.CycleCron = v
	}
	if v := os.Getenv("BUDGET_PER_RUN"); v != "" {
		if budget, err := strconv.ParseFloat(v, 64); err == nil {
			for i := range cfg.Strategies {
				cfg.Strategies[i].BudgetPerRun = budget
			}
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Scoring.LookbackDays == 0 {
		c.Scoring.LookbackDays = 7
	}
	if c.Scoring.TopN == 0 {
		c.Scoring.TopN = 25
	}
	if c.Scoring.DecayRate == 0 {
		c.Scoring.DecayRate = 0.2
	}
	if c.Scoring.MinInsiders == 0 {
		c.Scoring.MinInsiders = 2
	}
	if c.Scoring.CSuiteStakeThreshold == 0 {
		c.Scoring.CSuiteStakeThreshold = 3.0
	}
	if c.Merge.CandidateLimit == 0 {
		c.Merge.CandidateLimit = 25
	}
	if c.Merge.EnrichWorkers == 0 {
		c.Merge.EnrichWorkers = 5
	}
	if c.Merge.EnrichTimeoutMS == 0 {
		c.Merge.EnrichTimeoutMS = 10000
	}
	if c.Cooldown.Days == 0 {
		c.Cooldown.Days = 3
	}
	if c.Cooldown.StateFile == "" {
		c.Cooldown.StateFile = "data/recently_traded.json"
	}
	if c.Schedule.CycleCron == "" {
		c.Schedule.CycleCron = "0 0 9 * * 1-5"
	}
	if c.Schedule.SellCheckCron == "" {
		c.Schedule.SellCheckCron = "0 30 15 * * 1-5"
	}
	if c.Schedule.MinGapDays == 0 {
		c.Schedule.MinGapDays = 1
	}
	if c.Schedule.CycleTimeoutS == 0 {
		c.Schedule.CycleTimeoutS = 900
	}
	if c.Schedule.MarkerFile == "" {
		c.Schedule.MarkerFile = "data/last_run.json"
	}
	if len(c.Sources.Priority) == 0 {
		c.Sources.Priority = []string{"social", "insider", "screener", "earnings"}
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/agent_trading.db"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8090"
	}
	if len(c.Strategies) == 0 {
		c.Strategies = []model.StrategyConfig{{Name: "conservative", AccountID: "live"}}
	}
	for i := range c.Strategies {
		s := &c.Strategies[i]
		if s.BudgetPerRun == 0 {
			s.BudgetPerRun = 10
		}
		if s.MaxPicks == 0 {
			s.MaxPicks = 5
		}
		if s.MinTradeUnit == 0 {
			s.MinTradeUnit = 1
		}
		if s.StopLossPct == 0 {
			s.StopLossPct = 10
		}
		if s.TakeProfitPct == 0 {
			s.TakeProfitPct = 15
		}
		if s.MaxHoldDays == 0 {
			s.MaxHoldDays = 5
		}
	}
}

// Validate checks that all required fields are set. Telegram is
// optional, but a half-configured pair is rejected.
func (c *Config) Validate() error {
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	if c.Telegram.BotToken == "" && c.Telegram.ChatID != "" {
		return fmt.Errorf("telegram.bot_token is required when telegram.chat_id is set")
	}
	if len(c.Strategies) == 0 {
		return fmt.Errorf("at least one strategy is required")
	}
	seen := map[string]bool{}
	for _, s := range c.Strategies {
		if s.Name == "" {
			return fmt.Errorf("strategy name is required")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate strategy name %q", s.Name)
		}
		seen[s.Name] = true
		if s.BudgetPerRun <= 0 {
			return fmt.Errorf("strategy %s: budget_per_run must be positive", s.Name)
		}
		if s.MinTradeUnit <= 0 {
			return fmt.Errorf("strategy %s: min_trade_unit must be positive", s.Name)
		}
	}
	if c.Cooldown.Days < 0 {
		return fmt.Errorf("cooldown.days must not be negative")
	}
	return nil
}
