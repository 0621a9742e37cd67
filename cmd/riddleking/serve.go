// ABOUTME: Scheduled mode: runs the publish cycle on the configured cron schedule.
// ABOUTME: Also serves Prometheus metrics when metrics.addr is set.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/2389-research/riddleking/internal/bot"
	"github.com/2389-research/riddleking/internal/metrics"
)

const shutdownTimeout = 30 * time.Second

func runScheduled(ctx context.Context, cycle *bot.Cycle) error {
	cfg := globalConfig
	logger := globalLogger

	sched, err := bot.NewScheduler(cfg.Schedule.Cron, cfg.Schedule.Timezone, cycle, logger.WithPrefix("schedule"))
	if err != nil {
		return err
	}
	sched.SetTimeout(cfg.Schedule.RunTimeout)

	var metricsServer *http.Server
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		metricsServer = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", "addr", cfg.Metrics.Addr, "err", err)
			}
		}()
		logger.Info("Serving metrics", "addr", cfg.Metrics.Addr, "path", "/metrics")
	}

	sched.Start()

	fmt.Println("🧩 Riddle King Bot Started!")
	fmt.Printf("Scheduled to post %q in %s\n", cfg.Schedule.Cron, sched.Location())
	fmt.Printf("Current time: %s\n", time.Now().In(sched.Location()).Format(time.RFC3339))
	fmt.Printf("Next post: %s\n", sched.Next().Format(time.RFC3339))
	fmt.Println("Bot is running... Press Ctrl+C to stop")
	fmt.Println()

	<-ctx.Done()
	logger.Info("Shutting down...")

	stopped := sched.Stop()
	select {
	case <-stopped.Done():
	case <-time.After(shutdownTimeout):
		logger.Warn("Timed out waiting for the running cycle to finish")
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	return nil
}
