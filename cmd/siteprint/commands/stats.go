package commands

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vulntor/siteprint/cmd/siteprint/internal/bind"
	"github.com/vulntor/siteprint/cmd/siteprint/internal/format"
	"github.com/vulntor/siteprint/pkg/appctx"
	"github.com/vulntor/siteprint/pkg/fingerprint"
)

// NewStatsCommand creates a command for analyzing telemetry data.
func NewStatsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats [telemetry-file]",
		Short: "Aggregate detection telemetry into run and technology statistics",
		Long: `Stats reads a telemetry JSONL file written by analyze or serve and reports run
counts, match rate, detections per category and the most frequently detected
technologies. Without an argument the configured telemetry.file is used.`,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE:    runStats,
	}

	cmd.Flags().String("category", "", "Filter by category (e.g. bot-protection, cdn)")
	cmd.Flags().String("target", "", "Filter by target label")
	cmd.Flags().String("since", "", "Start time filter (RFC3339 format: 2025-01-01T00:00:00Z)")
	cmd.Flags().String("until", "", "End time filter (RFC3339 format: 2025-01-31T23:59:59Z)")
	cmd.Flags().Int("top-n", 10, "Number of top technologies to include")

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	formatter := format.FromCommand(cmd)
	cfg := appctx.ConfigOrDefault(cmd.Context())

	opts, err := bind.BindStatsOptions(cmd, args, cfg.Telemetry.File)
	if err != nil {
		var timeErr *bind.TimeFlagError
		if errors.As(err, &timeErr) {
			return formatter.PrintTotalFailureSummary("parse --"+timeErr.Flag+" flag", timeErr.Err, "INVALID_TIME_FORMAT")
		}
		return formatter.PrintTotalFailureSummary("analyze telemetry", err, "")
	}
	if opts.Path == "" {
		return formatter.PrintTotalFailureSummary("analyze telemetry", errors.New("no telemetry file given"), "TELEMETRY_ANALYSIS_FAILED")
	}
	if opts.Filter.Category != "" && !opts.Filter.Category.Valid() {
		return formatter.PrintTotalFailureSummary("analyze telemetry", errors.New("unknown category "+string(opts.Filter.Category)), "")
	}

	stats, err := fingerprint.AnalyzeTelemetry(opts.Path, &opts.Filter)
	if err != nil {
		return formatter.PrintTotalFailureSummary("analyze telemetry", err, "TELEMETRY_ANALYSIS_FAILED")
	}

	if err := formatter.PrintStats(stats, &opts.Filter); err != nil {
		return err
	}

	log.Debug().
		Int("total_events", stats.TotalEvents).
		Int("runs", stats.Runs).
		Float64("match_rate", stats.MatchRate).
		Msg("telemetry analysis complete")
	return nil
}
