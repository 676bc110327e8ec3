package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func (app *application) serve() error {
	server := &http.Server{
		Addr:         app.Config.GetServerAddr(),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	if err := app.Reminder.Start(); err != nil {
		return err
	}

	// Sweep idle rate-limit buckets so the map tracks active clients only.
	stopSweep := make(chan struct{})
	if app.Limiter != nil {
		go func() {
			t := time.NewTicker(time.Minute)
			defer t.Stop()
			for {
				select {
				case <-t.C:
					app.Limiter.Sweep(10 * time.Minute)
				case <-stopSweep:
					return
				}
			}
		}()
	}

	shutdownErr := make(chan error, 1)
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.Logger.Info("shutting down server", zap.String("signal", s.String()))
		close(stopSweep)

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		app.Reminder.Stop(ctx)
		shutdownErr <- server.Shutdown(ctx)
	}()

	app.Logger.Info("starting server", zap.String("addr", server.Addr), zap.String("env", app.Config.Env))

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	if err := <-shutdownErr; err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	app.Logger.Info("server stopped")
	return nil
}
