package main

import (
	"fmt"
	"io"
	"os"

	"intelrelay/internal/config"
	"intelrelay/internal/notify"
	"intelrelay/internal/report"
	"intelrelay/internal/telemetry"

	"github.com/spf13/cobra"
)

var (
	sendSource    string
	sendTimestamp string
)

var sendCmd = &cobra.Command{
	Use:   "send [file]",
	Short: "Deliver a single report from a file or stdin",
	Long: `Formats and delivers one report through the same pipeline as the HTTP
handler. Reads the report text from the given file, or from stdin when no
file is provided.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVar(&sendSource, "source", "cli", "source label for the message footer")
	sendCmd.Flags().StringVar(&sendTimestamp, "timestamp", "", "generation time (RFC 3339 or epoch), defaults to unknown")
}

func runSend(cmd *cobra.Command, args []string) error {
	cfg := config.FromViper()
	telemetry.InitLogger(cfg.Verbose, cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if len(args) == 1 {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}

	in := report.InboundReport{
		Report:    string(data),
		Timestamp: report.ParseTimestamp(sendTimestamp),
		Source:    sendSource,
	}
	if err := in.Validate(); err != nil {
		return err
	}

	formatter := report.Formatter{MaxLength: cfg.MaxMessageLength}
	text := formatter.Format(in)

	notifier := notify.NewSlackNotifier(cfg.SlackToken, cfg.SlackChannel, cfg.SlackUsername, cfg.SlackIconEmoji, slackOptions()...)
	messageTS, err := notifier.Send(cmd.Context(), text)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Delivered to %s (%d chars, ts %s)\n",
		cfg.SlackChannel, report.Length(text), messageTS)
	return nil
}
