package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thecr7guy2/agent-trading/internal/broker"
	"github.com/thecr7guy2/agent-trading/internal/collector"
	"github.com/thecr7guy2/agent-trading/internal/config"
	"github.com/thecr7guy2/agent-trading/internal/conviction"
	"github.com/thecr7guy2/agent-trading/internal/cooldown"
	"github.com/thecr7guy2/agent-trading/internal/decision"
	"github.com/thecr7guy2/agent-trading/internal/executor"
	"github.com/thecr7guy2/agent-trading/internal/merger"
	"github.com/thecr7guy2/agent-trading/internal/notifier"
	"github.com/thecr7guy2/agent-trading/internal/recorder"
	"github.com/thecr7guy2/agent-trading/internal/scheduler"
	"github.com/thecr7guy2/agent-trading/internal/sellrules"
	"github.com/thecr7guy2/agent-trading/internal/web"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] agent-trading starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Conviction scorer + signal feeds
	scorer := conviction.NewScorer(
		cfg.Scoring.DecayRate,
		cfg.Scoring.LookbackDays,
		cfg.Scoring.MinInsiders,
		cfg.Scoring.CSuiteStakeThreshold,
		cfg.Scoring.TopN,
	)

	feedsByName := map[string]merger.Feed{}
	if cfg.Sources.SocialURL != "" {
		feedsByName["social"] = collector.NewSocialFeed(cfg.Sources.SocialURL, cfg.Proxy)
	}
	if cfg.Sources.InsiderURL != "" {
		events := collector.NewHTTPEventSource(cfg.Sources.InsiderURL, cfg.Proxy)
		feedsByName["insider"] = collector.NewInsiderFeed(events, scorer)
	}
	if cfg.Sources.ScreenerURL != "" {
		feedsByName["screener"] = collector.NewScreenerFeed(cfg.Sources.ScreenerURL, cfg.Proxy)
	}
	if cfg.Sources.EarningsURL != "" {
		feedsByName["earnings"] = collector.NewEarningsFeed(cfg.Sources.EarningsURL, cfg.Proxy)
	}

	// Declared priority order decides merge tie-breaks.
	var feeds []merger.Feed
	for _, name := range cfg.Sources.Priority {
		if f, ok := feedsByName[name]; ok {
			feeds = append(feeds, f)
		}
	}
	if len(feeds) == 0 {
		log.Fatalf("[FATAL] no signal sources configured")
	}
	log.Printf("[INFO] %d signal source(s) configured", len(feeds))

	// Cooldown blacklist
	cooldownStore := cooldown.NewFileStore(cfg.Cooldown.StateFile)
	tracker := cooldown.NewTracker(cooldownStore, cfg.Cooldown.Days)

	// Headline enricher (optional)
	var enricher merger.Enricher
	if cfg.Sources.NewsAPIKey != "" {
		enricher = collector.NewNewsEnricher(cfg.Sources.NewsURL, cfg.Sources.NewsAPIKey, cfg.Proxy)
	}

	m := merger.New(merger.Options{
		Feeds:          feeds,
		Cooldown:       tracker,
		Enricher:       enricher,
		CandidateLimit: cfg.Merge.CandidateLimit,
		EnrichWorkers:  cfg.Merge.EnrichWorkers,
		EnrichTimeout:  time.Duration(cfg.Merge.EnrichTimeoutMS) * time.Millisecond,
	})

	// Execution venue. The live venue client is wired in at this boundary;
	// the in-tree implementation is the paper simulator.
	var venue broker.Broker = broker.NewPaperBroker(nil)
	log.Printf("[INFO] execution venue: %s", venue.Name())

	// Strategies
	var strategies []scheduler.Strategy
	maxPicks := 0
	for _, sc := range cfg.Strategies {
		strategies = append(strategies, scheduler.Strategy{
			Config:   sc,
			Executor: executor.New(venue, tracker, sc),
			Sell:     sellrules.NewEngine(sc),
			Broker:   venue,
		})
		if sc.MaxPicks > maxPicks {
			maxPicks = sc.MaxPicks
		}
		log.Printf("[INFO] strategy %s: budget %.2f, max %d picks", sc.Name, sc.BudgetPerRun, sc.MaxPicks)
	}

	// Init Telegram notifier (optional)
	var note notifier.Notifier = notifier.Disabled{}
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		note = tn
	} else {
		log.Println("[WARN] no Telegram token configured, notifications disabled")
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, scheduler.Options{
		Merger:       m,
		Decider:      decision.NewRankDecider(maxPicks),
		Strategies:   strategies,
		Cooldown:     tracker,
		Notifier:     note,
		Recorder:     rec,
		Marker:       cooldown.NewFileStore(cfg.Schedule.MarkerFile),
		CooldownDays: cfg.Cooldown.Days,
		MinGapDays:   cfg.Schedule.MinGapDays,
		CycleTimeout: time.Duration(cfg.Schedule.CycleTimeoutS) * time.Second,
	})
	if err := sched.RegisterAll(cfg.Schedule.CycleCron, cfg.Schedule.SellCheckCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Status server
	srv := web.NewServer(sched)
	go func() {
		if err := srv.Start(cfg.Server.Addr); err != nil {
			log.Printf("[ERROR] status server: %v", err)
		}
	}()

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing decision cycle now")
		go sched.RunCycleNow()
	}

	log.Println("[INFO] agent-trading is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] agent-trading stopped")
}
