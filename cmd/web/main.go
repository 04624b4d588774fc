package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/minaorangina/flip7/config"
	"github.com/minaorangina/flip7/eventlog"
	"github.com/minaorangina/flip7/server"
	"github.com/minaorangina/flip7/store"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("could not load config")
	}
	logger := cfg.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	hub := eventlog.NewHub()
	go hub.Listen(ctx)

	s := server.NewServer(server.Opts{
		Store:    store.NewInMemoryGameStore(),
		Hub:      hub,
		Defaults: cfg.MatchOpts(),
		Logger:   logger,
		Context:  ctx,
	})
	s.Addr = cfg.Addr

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("shutdown failed")
		}
	}()

	logger.WithField("addr", cfg.Addr).Info("listening")
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("server stopped")
	}
}
