package bind

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/vulntor/siteprint/pkg/fingerprint"
)

// StatsOptions holds the telemetry file and its filter.
type StatsOptions struct {
	Path   string
	Filter fingerprint.StatsFilter
}

// TimeFlagError reports an unparsable --since or --until value.
type TimeFlagError struct {
	Flag string
	Err  error
}

func (e *TimeFlagError) Error() string {
	return "parse --" + e.Flag + ": " + e.Err.Error()
}

func (e *TimeFlagError) Unwrap() error { return e.Err }

// BindStatsOptions reads the telemetry path from args, falling back to fallbackPath
// (the configured telemetry file), and parses the RFC3339 time filters.
func BindStatsOptions(cmd *cobra.Command, args []string, fallbackPath string) (StatsOptions, error) {
	category, _ := cmd.Flags().GetString("category")
	target, _ := cmd.Flags().GetString("target")
	sinceStr, _ := cmd.Flags().GetString("since")
	untilStr, _ := cmd.Flags().GetString("until")
	topN, _ := cmd.Flags().GetInt("top-n")

	opts := StatsOptions{
		Path: fallbackPath,
		Filter: fingerprint.StatsFilter{
			Category: fingerprint.Category(category),
			Target:   target,
			TopN:     topN,
		},
	}
	if len(args) > 0 {
		opts.Path = args[0]
	}

	if sinceStr != "" {
		since, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			return opts, &TimeFlagError{Flag: "since", Err: err}
		}
		opts.Filter.Since = &since
	}
	if untilStr != "" {
		until, err := time.Parse(time.RFC3339, untilStr)
		if err != nil {
			return opts, &TimeFlagError{Flag: "until", Err: err}
		}
		opts.Filter.Until = &until
	}
	return opts, nil
}
