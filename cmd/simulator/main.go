// Command simulator serves scripted timing sessions over a websocket so the
// client can be exercised without a live relay.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/pitwall/internal/simulator"
	"github.com/okian/pitwall/pkg/logger"
)

func main() {
	cfg := &simulator.Config{}
	var help bool

	flag.StringVar(&cfg.Addr, "addr", ":50000", "listen address")
	flag.IntVar(&cfg.Cars, "cars", 8, "number of cars in the field")
	flag.IntVar(&cfg.Classes, "classes", 2, "number of car classes")
	flag.IntVar(&cfg.QualTicks, "qual-ticks", 20, "ticks spent in qualifying")
	flag.IntVar(&cfg.RaceLaps, "race-laps", 30, "laps in the race session")
	flag.DurationVar(&cfg.Tick, "tick", time.Second, "interval between update bursts")
	flag.IntVar(&cfg.ProbeEveryN, "probe-every", 5, "send a liveness probe every N ticks")
	flag.IntVar(&cfg.NoticeEvery, "notice-every", 15, "send a banner every N ticks")
	flag.StringVar(&cfg.LogFile, "log", "", "log file (default simulator_log_TIMESTAMP.log)")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "enable verbose logging")
	flag.BoolVar(&help, "help", false, "show help")
	flag.Parse()

	if help {
		simulator.ShowHelp()
		return
	}

	if err := simulator.SetupLogging(cfg.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "logging setup failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Get().Named("simulator")

	if cfg.Verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := simulator.NewServer(cfg)
	log.Info(ctx, "simulator starting",
		logger.String("addr", cfg.Addr),
		logger.Int("cars", cfg.Cars),
		logger.Int("classes", cfg.Classes),
	)

	if err := srv.Run(ctx); err != nil {
		log.Error(ctx, "simulator failed", logger.Error(err))
		os.Exit(1)
	}

	stats := srv.Stats()
	log.Info(context.Background(), "simulator stopped",
		logger.Int("clients_served", stats.ClientsServed),
		logger.Int("frames_sent", stats.FramesSent),
		logger.Int("pongs_received", stats.PongsReceived),
	)
}
