package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"intelrelay/internal/config"
	"intelrelay/internal/metrics"
	"intelrelay/internal/notify"
	"intelrelay/internal/telemetry"
	"intelrelay/internal/web"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP report relay",
	Long: `Starts the HTTP server. POST report payloads to /notify; liveness is
at /healthz and Prometheus metrics at /metrics.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "", "listen address (overrides config, default :8080)")
	viper.BindPFlag("listen_addr", serveCmd.Flags().Lookup("listen"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.FromViper()
	telemetry.InitLogger(cfg.Verbose, cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	notifier := notify.NewSlackNotifier(cfg.SlackToken, cfg.SlackChannel, cfg.SlackUsername, cfg.SlackIconEmoji, slackOptions()...)
	m := metrics.NewMetrics(prometheus.DefaultRegisterer)
	server := web.NewServer(cfg, notifier, m)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Start(ctx)
}
