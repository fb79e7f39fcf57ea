package config

import (
	"time"

	"github.com/spf13/pflag"
)

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:           "127.0.0.1",
		Port:           8080,
		APIEnabled:     true,
		MetricsEnabled: true,
		StoreReports:   false,
		MaxBodyBytes:   8 << 20,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
	}
}

// BindServerFlags binds server flags to the provided FlagSet. Flags are namespaced under
// 'server.' so that they map directly onto config keys, e.g. --server.port.
func BindServerFlags(flags *pflag.FlagSet) {
	defaults := DefaultServerConfig()

	flags.String("server.addr", defaults.Addr, "Server listen address (use 0.0.0.0 for all interfaces)")
	flags.Int("server.port", defaults.Port, "Server listen port")
	flags.Bool("server.api_enabled", defaults.APIEnabled, "Enable REST API endpoints")
	flags.Bool("server.metrics_enabled", defaults.MetricsEnabled, "Expose Prometheus metrics")
	flags.Bool("server.store_reports", defaults.StoreReports, "Persist fingerprint results under the workspace")
	flags.String("server.auth_token", "", "Bearer token required for /api/ routes (prefer SITEPRINT_SERVER_AUTH_TOKEN)")
	flags.Int64("server.max_body_bytes", defaults.MaxBodyBytes, "Maximum request body size in bytes")
	flags.Duration("server.read_timeout", defaults.ReadTimeout, "HTTP read timeout")
	flags.Duration("server.write_timeout", defaults.WriteTimeout, "HTTP write timeout")
	flags.Bool("catalog.watch", false, "Reload custom catalogs when the files change")
}

// BindCatalogFlags binds the custom catalog and telemetry flags shared by analyze and serve.
func BindCatalogFlags(flags *pflag.FlagSet) {
	flags.String("catalog.rules_file", "", "Custom fingerprint rules YAML appended to the built-in catalog")
	flags.String("catalog.cookies_file", "", "Custom cookie signatures YAML evaluated before the built-in ones")
	flags.String("telemetry.file", "", "Append detection events to this JSONL file")
}
