package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"

	"navbot/internal/config"
	"navbot/internal/persistence/trace"
	"navbot/internal/persistence/visitdb"
	"navbot/internal/session"
	"navbot/internal/transport/wsclient"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to bot.yaml (optional)")
		url        = flag.String("url", "", "ws url (overrides config)")
		name       = flag.String("name", "", "agent name (overrides config)")
		dataDir    = flag.String("data", "", "runtime data directory (overrides config)")
		debug      = flag.Bool("debug", false, "log per-tick debug output")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if *url != "" {
		cfg.URL = *url
	}
	if *name != "" {
		cfg.AgentName = *name
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *debug {
		cfg.Debug = true
	}

	runID := uuid.NewString()
	logger.Printf("run %s connecting to %s as %q", runID, cfg.URL, cfg.AgentName)

	client, welcome, err := wsclient.Dial(cfg.URL, cfg.AgentName, logger)
	if err != nil {
		logger.Fatalf("connect: %v", err)
	}
	defer client.Close()
	logger.Printf("WELCOME agent_id=%s tick_rate=%d beacons=%d seed=%d",
		welcome.AgentID, welcome.WorldParams.TickRateHz, len(welcome.Beacons), welcome.WorldParams.Seed)

	opts := session.Options{RunID: runID, Debug: cfg.Debug}

	if cfg.Trace {
		tw := trace.NewWriter(filepath.Join(cfg.DataDir, "trace"), "trace")
		defer tw.Close()
		opts.Trace = tw
	}
	if cfg.VisitDB {
		visits, err := visitdb.Open(filepath.Join(cfg.DataDir, "visits.db"))
		if err != nil {
			logger.Fatalf("open visit db: %v", err)
		}
		defer visits.Close()
		if err := visits.StartRun(runID, cfg.AgentName); err != nil {
			logger.Fatalf("record run: %v", err)
		}
		opts.Visits = visits
	}

	s, err := session.New(client, welcome, logger, opts)
	if err != nil {
		logger.Fatalf("session: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.Run(ctx); err != nil {
		logger.Fatalf("session ended: %v", err)
	}
	logger.Printf("run %s stopped", runID)
}
