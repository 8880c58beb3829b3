package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"arenashooter/config"
	"arenashooter/engine"
	"arenashooter/game"
	"arenashooter/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	log, cleanup, err := server.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	emitters := engine.NewEmitterRegistry()
	game.RegisterEmitters(emitters)

	var frameOut io.Writer
	if cfg.Debug.FrameLog {
		frameOut = os.Stdout
	}
	eng := engine.New(engine.Config{
		AssetRoot: cfg.Assets.Root,
		FrameOut:  frameOut,
		Emitters:  emitters,
	})

	queue := engine.NewEventQueue(cfg.Loop.EventQueueSize)
	hub := server.NewHub(queue, log)

	g := game.NewGame(eng, queue, game.Options{
		SaveBinaryPath: cfg.Save.BinaryPath,
		SaveTextPath:   cfg.Save.TextPath,
		Stats:          hub,
	}, log)
	defer g.Shutdown()

	loop := game.NewLoop(game.LoopConfig{
		TicksPerSecond:  cfg.Loop.TicksPerSecond,
		TargetFPS:       cfg.Loop.TargetFPS,
		MaxCatchUpSteps: cfg.Loop.MaxCatchUpSteps,
	}, game.NewRealClock(), g.Router(), g, log)
	metrics := server.NewLoopMetrics(g.Router().Stats, queue.Dropped)
	loop.SetObserver(metrics)

	if cfg.Debug.Addr != "" {
		admin := server.NewAdmin(loop, hub, metrics, log)
		go func() {
			if err := admin.Serve(ctx, cfg.Debug.Addr); err != nil {
				log.Error("debug server stopped", zap.Error(err))
			}
		}()
	}

	log.Info("arenashooter started",
		zap.Int("ticksPerSecond", cfg.Loop.TicksPerSecond),
		zap.Int("targetFps", cfg.Loop.TargetFPS),
		zap.String("debugAddr", cfg.Debug.Addr))

	if err := loop.Run(ctx); err != nil {
		log.Error("loop failed", zap.Error(err))
		return err
	}
	log.Info("shutting down")
	return nil
}
