package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"blaze/app"
	"blaze/hal"
	"blaze/internal/buildinfo"
	"blaze/internal/config"
	"blaze/internal/logging"
	"blaze/internal/metrics"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(logging.Config{
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Service:     "blaze",
		Version:     buildinfo.Short(),
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log.Info("starting", append(buildinfo.Fields(), zap.Bool("headless", cfg.Headless))...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		srv := metrics.NewServer(cfg.MetricsAddr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server", zap.Error(err))
			}
		}()
		defer func() { _ = srv.Close() }()
		log.Info("metrics listening", zap.String("addr", cfg.MetricsAddr))
	}

	var a *app.App
	newApp := func(h hal.HAL) (func() error, error) {
		var err error
		a, err = app.New(ctx, h, cfg)
		if err != nil {
			return nil, err
		}
		return a.Step, nil
	}

	base := hal.Config{Width: cfg.Width, Height: cfg.Height, SampleRate: cfg.SampleRate}
	if cfg.Headless {
		err = hal.RunHeadless(ctx, hal.HeadlessConfig{
			Config:   base,
			Hz:       cfg.Hz,
			Ticks:    cfg.Ticks,
			Terminal: cfg.Terminal,
			// Unbounded runs are watched live; bounded ones render as fast as they can.
			Realtime: cfg.Ticks == 0,
		}, log, newApp)
	} else {
		err = hal.RunWindow(hal.WindowConfig{
			Config: base,
			Title:  buildinfo.Title(cfg.Title),
		}, log, newApp)
	}
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if a != nil {
		err = errors.Join(err, a.Close())
	}
	if err != nil {
		log.Error("exited", zap.Error(err))
		return err
	}
	log.Info("stopped")
	return nil
}
