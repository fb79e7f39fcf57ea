package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vulntor/siteprint/cmd/siteprint/internal/format"
	"github.com/vulntor/siteprint/pkg/appctx"
	"github.com/vulntor/siteprint/pkg/paths"
)

// configSections are the top-level keys of the configuration file. Other keys in the
// merged space come from CLI-only flags such as --output.
var configSections = []string{"log", "catalog", "telemetry", "workspace", "server"}

const redacted = "********"

// NewConfigCommand groups configuration inspection commands.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Inspect configuration",
		GroupID: "core",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration after merging file, environment and flags",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the default configuration file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), paths.ConfigFile())
			return err
		},
	})

	return cmd
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	formatter := format.FromCommand(cmd)

	mgr, ok := appctx.Config(cmd.Context())
	if !ok {
		return formatter.PrintTotalFailureSummary("show configuration", fmt.Errorf("configuration not loaded"), "CONFIG_INVALID")
	}

	effective := effectiveConfig(mgr.Koanf().Raw())
	if formatter.IsJSON() {
		return formatter.PrintJSON(effective)
	}

	out, err := yaml.Marshal(effective)
	if err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// effectiveConfig keeps the configuration sections of raw and masks secrets.
func effectiveConfig(raw map[string]any) map[string]any {
	effective := make(map[string]any, len(configSections))
	for _, section := range configSections {
		if v, ok := raw[section]; ok {
			effective[section] = v
		}
	}
	if srv, ok := effective["server"].(map[string]any); ok {
		if token, _ := srv["auth_token"].(string); strings.TrimSpace(token) != "" {
			masked := make(map[string]any, len(srv))
			for k, v := range srv {
				masked[k] = v
			}
			masked["auth_token"] = redacted
			effective["server"] = masked
		}
	}
	return effective
}
