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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	httpAdapter "github.com/comalice/riskbox/internal/adapters/http"
	"github.com/comalice/riskbox/internal/core"
	"github.com/comalice/riskbox/internal/extensibility"
	"github.com/comalice/riskbox/internal/game"
	"github.com/comalice/riskbox/internal/production"
	"github.com/comalice/riskbox/realtime"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the game behind an HTTP API",
	Long: `Starts a game and exposes it over HTTP: GET /snapshot, POST /events,
GET /graph/{machine} and GET /metrics. With --redis-addr every snapshot is also
published on a Redis channel.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		addr, _ := cmd.Flags().GetString("addr")
		redisAddr, _ := cmd.Flags().GetString("redis-addr")
		channel, _ := cmd.Flags().GetString("redis-channel")
		tickRate, _ := cmd.Flags().GetDuration("tick")

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err := production.NewMetrics(reg)
		if err != nil {
			return err
		}

		sys, machines, err := game.New(cfg, nil,
			core.WithLogger(logger),
			core.WithObserver(metrics),
			core.WithActionRunner(extensibility.NewLoggingActionRunner(nil, logger)))
		if err != nil {
			return err
		}
		defer sys.Stop()

		if redisAddr != "" {
			pub := production.NewRedisPublisher(redisAddr, "", 0, production.WithChannel(channel))
			defer pub.Close()
			detach := production.Attach(sys, pub, logger)
			defer detach()
			logger.Info("publishing snapshots", "redis", redisAddr, "channel", pub.Channel())
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt := realtime.NewRuntime(sys, realtime.Config{
			TickRate: tickRate,
			Logger:   logger,
			OnError: func(err error) {
				logger.Warn("tick failed", "error", err)
			},
		})
		if err := rt.Start(ctx); err != nil {
			return err
		}
		defer rt.Stop()

		srv := &http.Server{
			Addr:              addr,
			Handler:           httpAdapter.NewHandler(sys, machines, reg, logger),
			ReadHeaderTimeout: 5 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting riskbox server", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-ctx.Done():
			logger.Info("shutting down")
		}

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown did not complete", "error", err)
			return srv.Close()
		}
		logger.Info("riskbox server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().String("redis-addr", "", "Redis address for snapshot publishing (disabled when empty)")
	serveCmd.Flags().String("redis-channel", production.DefaultChannel, "Redis channel for snapshots")
	serveCmd.Flags().Duration("tick", 20*time.Millisecond, "Timer resolution of the game loop")
}
