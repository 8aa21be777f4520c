// Package main runs batches of AI-versus-AI encounters from configuration and
// logs each outcome.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/encounter"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/component"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	encounters := flag.Int("encounters", -1, "override simulation.encounters")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *encounters >= 0 {
		cfg.Simulation.Encounters = *encounters
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	content, err := encounter.LoadContent(cfg.Content)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("skills", content.Skills.Len()),
		zap.Int("effects", content.Effects.Len()),
		zap.Int("mobs", len(content.Mobs.IDs())),
	)

	rules, err := combat.RulesFromConfig(cfg.Combat)
	if err != nil {
		logger.Fatal("building combat rules", zap.Error(err))
	}

	team1, err := roster(cfg.Simulation.Team1)
	if err != nil {
		logger.Fatal("parsing team1", zap.Error(err))
	}
	team2, err := roster(cfg.Simulation.Team2)
	if err != nil {
		logger.Fatal("parsing team2", zap.Error(err))
	}

	sources := sourceFactory(cfg.Simulation.Seed)
	var scripts *scripting.Manager
	if cfg.Content.ScriptsDir != "" {
		// Encounters bind their own roller; this one only backs VMs loaded without one.
		scripts = scripting.NewManager(dice.NewLoggedRoller(dice.NewCryptoSource(), logger.Named("script-dice")), logger.Named("scripting"), cfg.Content.ScriptInstructionLimit)
		defer scripts.Close()
	}
	mgr := encounter.NewManager(content, rules, sources, scripts, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wins [2]atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Simulation.Concurrency)
	for i := range cfg.Simulation.Encounters {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return run(gctx, mgr, i, team1, team2, &wins, logger)
		})
	}
	if err := g.Wait(); err != nil {
		logger.Fatal("simulation failed", zap.Error(err))
	}

	logger.Info("simulation complete",
		zap.Int("encounters", cfg.Simulation.Encounters),
		zap.Int64("team1_wins", wins[0].Load()),
		zap.Int64("team2_wins", wins[1].Load()),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// run plays one encounter to completion and records the winner.
func run(ctx context.Context, mgr *encounter.Manager, n int, team1, team2 []encounter.Member, wins *[2]atomic.Int64, logger *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	enc, err := mgr.Start(team1, team2)
	if err != nil {
		return fmt.Errorf("encounter %d: %w", n, err)
	}
	defer mgr.Remove(enc.ID)

	out := enc.Outcome()
	if !out.Ended {
		logger.Warn("encounter is waiting on a player combatant; abandoning",
			zap.String("encounter", enc.ID),
			zap.Int("rounds", out.Rounds),
		)
		return nil
	}
	if out.Winner == component.Team1 {
		wins[0].Add(1)
	} else {
		wins[1].Add(1)
	}
	logger.Info("encounter outcome",
		zap.Int("n", n),
		zap.String("encounter", enc.ID),
		zap.String("winner", string(out.Winner)),
		zap.Int("rounds", out.Rounds),
		zap.Int("defeated", out.Defeated),
		zap.Uint64("events", out.Events),
	)
	return nil
}

// sourceFactory returns a dice source constructor. A zero seed draws from
// crypto/rand; otherwise the k-th call is seeded with seed+k.
func sourceFactory(seed uint64) func() dice.Source {
	if seed == 0 {
		return dice.NewCryptoSource
	}
	var next atomic.Uint64
	return func() dice.Source {
		return dice.NewSeededSource(seed + next.Add(1) - 1)
	}
}

func roster(entries []config.RosterEntry) ([]encounter.Member, error) {
	out := make([]encounter.Member, 0, len(entries))
	for _, e := range entries {
		row, err := component.ParseRow(e.Row)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", e.Template, err)
		}
		out = append(out, encounter.Member{Template: e.Template, Row: row})
	}
	return out, nil
}
