package config

import "time"

// Config is the root configuration structure for siteprint.
type Config struct {
	Log       LogConfig       `description:"Logging configuration" koanf:"log"`
	Catalog   CatalogConfig   `description:"Fingerprint catalog configuration" koanf:"catalog"`
	Telemetry TelemetryConfig `description:"Detection telemetry" koanf:"telemetry"`
	Workspace WorkspaceConfig `description:"Workspace configuration" koanf:"workspace"`
	Server    ServerConfig    `description:"Server configuration" koanf:"server"`
}

// LogConfig holds logging related configuration.
type LogConfig struct {
	Level  string `description:"Log level" koanf:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	Format string `description:"Log format: console | json" koanf:"format" validate:"omitempty,oneof=console json"`
}

// CatalogConfig points at custom catalog files that extend the built-in catalog.
type CatalogConfig struct {
	RulesFile   string `description:"Custom fingerprint rules YAML" koanf:"rules_file"`
	CookiesFile string `description:"Custom cookie signatures YAML" koanf:"cookies_file"`
	Watch       bool   `description:"Reload custom catalogs when they change (server only)" koanf:"watch"`
}

// TelemetryConfig controls the detection event log.
type TelemetryConfig struct {
	File string `description:"JSONL file receiving detection events; empty disables telemetry" koanf:"file"`
}

// WorkspaceConfig holds the workspace location.
type WorkspaceConfig struct {
	Dir string `description:"Workspace root; defaults to $SITEPRINT_WORKSPACE or the data directory" koanf:"dir"`
}

// ServerConfig holds configuration for the HTTP API server.
type ServerConfig struct {
	Addr string `description:"Server listen address" koanf:"addr" validate:"required"`
	Port int    `description:"Server listen port" koanf:"port" validate:"min=1,max=65535"`

	APIEnabled     bool `description:"Enable REST API endpoints" koanf:"api_enabled"`
	MetricsEnabled bool `description:"Expose Prometheus metrics on /metrics" koanf:"metrics_enabled"`
	StoreReports   bool `description:"Persist fingerprint results under the workspace" koanf:"store_reports"`

	MaxBodyBytes int64 `description:"Maximum request body size" koanf:"max_body_bytes" validate:"min=1024"`

	// AuthToken, when set, is required as "Authorization: Bearer <token>" on /api/ routes.
	AuthToken string `description:"Bearer token required for API routes; empty disables auth" koanf:"auth_token"`

	ReadTimeout  time.Duration `description:"HTTP read timeout" koanf:"read_timeout"`
	WriteTimeout time.Duration `description:"HTTP write timeout" koanf:"write_timeout"`
}
