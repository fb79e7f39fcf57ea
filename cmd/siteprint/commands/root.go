package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vulntor/siteprint/cmd/siteprint/internal/format"
	"github.com/vulntor/siteprint/pkg/appctx"
	"github.com/vulntor/siteprint/pkg/config"
	"github.com/vulntor/siteprint/pkg/fingerprint"
	"github.com/vulntor/siteprint/pkg/logging"
	"github.com/vulntor/siteprint/pkg/server"
	"github.com/vulntor/siteprint/pkg/workspace"
)

const cliExecutable = "siteprint"

// NewCommand constructs the top-level siteprint CLI command, wiring global flags,
// configuration loading, logging and shared workspace preparation.
func NewCommand() *cobra.Command {
	var (
		configFile        string
		workspaceDisabled bool
		verbosityCount    int
	)

	cmd := &cobra.Command{
		Use:   cliExecutable,
		Short: "siteprint fingerprints WAF, CDN and bot protection from HTTP evidence",
		Long: `siteprint reads recorded HTTP responses and reports the protection and hosting
stack behind a site: bot management, WAFs, CAPTCHAs, CDNs, servers and frameworks,
together with cookie classification and a security header audit.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			mgr := config.NewManager()
			if err := mgr.Load(cmd.Flags(), configFile); err != nil {
				return format.FromCommand(cmd).PrintTotalFailureSummary("load configuration", err, "CONFIG_INVALID")
			}
			cfg := mgr.Get()

			logging.ConfigureGlobalLogging(verbosityLevel(cfg.Log.Level, verbosityCount), cfg.Log.Format)

			ctx := appctx.WithConfig(cmd.Context(), mgr)

			if !workspaceDisabled {
				prepared, err := workspace.Prepare(cfg.Workspace.Dir)
				if err != nil {
					return fmt.Errorf("prepare workspace: %w", err)
				}
				ctx = workspace.WithContext(ctx, prepared)
				log.Debug().Str("workspace", prepared).Msg("workspace ready")
			} else {
				log.Debug().Msg("workspace disabled for this run")
			}

			cmd.SetContext(ctx)
			if root := cmd.Root(); root != nil && root != cmd {
				root.SetContext(ctx)
			}
			return nil
		},
	}

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path")
	cmd.PersistentFlags().BoolVar(&workspaceDisabled, "no-workspace", false, "Disable workspace persistence for this run")
	cmd.PersistentFlags().CountVarP(&verbosityCount, "verbosity", "v", "Increase logging verbosity (repeatable)")
	cmd.PersistentFlags().StringP("output", "o", string(format.ModeTable), "Output format: table | json")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress summary messages")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	config.BindFlags(cmd.PersistentFlags())

	cmd.AddGroup(&cobra.Group{ID: "core", Title: "Core Commands"})
	cmd.AddGroup(&cobra.Group{ID: "catalog", Title: "Catalog Commands"})

	cmd.AddCommand(NewAnalyzeCommand())
	cmd.AddCommand(NewCatalogCommand())
	cmd.AddCommand(NewConfigCommand())
	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewStatsCommand())
	cmd.AddCommand(NewVersionCommand(cliExecutable))

	return cmd
}

// verbosityLevel raises the configured level by one step per -v, stopping at trace.
func verbosityLevel(level string, count int) string {
	switch {
	case count >= 2:
		return "trace"
	case count == 1 && level != "trace":
		return "debug"
	default:
		return level
	}
}

// ExitCode maps a command error onto the process exit status.
func ExitCode(err error) int {
	if code := server.ExitCode(err); code != 1 {
		return code
	}
	return fingerprint.ExitCode(err)
}
