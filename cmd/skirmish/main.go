// Package main runs a skirmish: a randomly recruited party fights its way
// through the monster bands placed in the world, narrating every round.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/warband/internal/config"
	"github.com/cory-johannsen/warband/internal/observability"
	"github.com/cory-johannsen/warband/internal/server"
	"github.com/cory-johannsen/warband/internal/skirmish"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/warband.yaml", "path to configuration file")
	seed := flag.Int64("seed", -1, "random seed; overrides combat.seed when >= 0")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *seed >= 0 {
		cfg.Combat.Seed = *seed
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	runner, err := skirmish.New(cfg, logger, os.Stdout)
	if err != nil {
		logger.Fatal("preparing skirmish", zap.Error(err))
	}

	lc := server.NewLifecycle(logger)
	lc.Add("skirmish", runner)
	if err := lc.Run(context.Background()); err != nil {
		logger.Fatal("skirmish failed", zap.Error(err))
	}

	sum := runner.Summary()
	logger.Info("done",
		zap.Int64("seed", sum.Seed),
		zap.Int("fought", sum.Fought),
		zap.Int("won", sum.Won),
		zap.Int("gold", sum.Gold),
		zap.Int("survivors", sum.Survivors),
		zap.Duration("elapsed", time.Since(start)),
	)
	if sum.PartyDefeated {
		_ = logger.Sync()
		os.Exit(1)
	}
}
