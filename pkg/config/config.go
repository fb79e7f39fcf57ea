// Package config loads layered siteprint configuration with koanf.
package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/vulntor/siteprint/pkg/paths"
)

// Manager handles loading and accessing application configuration.
type Manager struct {
	koanfInstance *koanf.Koanf
	currentConfig Config
	mu            sync.RWMutex
}

// NewManager creates a Manager with an empty koanf instance.
func NewManager() *Manager {
	return &Manager{
		koanfInstance: koanf.New("."),
		currentConfig: DefaultConfig(),
	}
}

// DefaultConfig returns a Config populated with hardcoded default values.
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Server: DefaultServerConfig(),
	}
}

// Load merges defaults, the config file, SITEPRINT_* environment variables and flags, in
// that order. When customConfigFilePath is empty the default location is used and may be
// absent; an explicit path must exist.
func (m *Manager) Load(flags *pflag.FlagSet, customConfigFilePath string) error {
	var debug bool
	if flags != nil {
		if f := flags.Lookup("debug"); f != nil {
			debug = f.Value.String() == "true"
		}
	}

	sources := DefaultSources(customConfigFilePath, flags, debug)
	if customConfigFilePath == "" {
		sources[1] = &FileSource{Path: paths.ConfigFile()}
	} else {
		sources[1] = &FileSource{Path: customConfigFilePath, Required: true}
	}
	return m.LoadSources(sources...)
}

// LoadSources loads the given sources into a fresh koanf instance, validates the result
// and swaps it in. On error the previous configuration is kept.
func (m *Manager) LoadSources(sources ...ConfigSource) error {
	sortSources(sources)

	k := koanf.New(".")
	for _, src := range sources {
		if err := src.Load(k); err != nil {
			return err
		}
		log.Debug().Str("source", src.Name()).Msg("Loaded config source")
	}

	var newCfg Config
	if err := k.UnmarshalWithConf("", &newCfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("error unmarshaling final config: %w", err)
	}
	if err := Validate(newCfg); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.koanfInstance = k
	m.currentConfig = newCfg
	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentConfig
}

// Koanf exposes the merged key space, e.g. for printing the effective configuration.
func (m *Manager) Koanf() *koanf.Koanf {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.koanfInstance
}

var configValidator = validator.New()

// Validate checks value constraints that koanf cannot express.
func Validate(cfg Config) error {
	err := configValidator.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, fmt.Errorf("%s: failed '%s' (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %w", errors.Join(errs...))
}

// DefaultConfigAsMap flattens DefaultConfig for koanf's confmap provider.
func DefaultConfigAsMap() map[string]any {
	def := DefaultConfig()
	return map[string]any{
		"log.level":  def.Log.Level,
		"log.format": def.Log.Format,

		"catalog.rules_file":   def.Catalog.RulesFile,
		"catalog.cookies_file": def.Catalog.CookiesFile,
		"catalog.watch":        def.Catalog.Watch,

		"telemetry.file": def.Telemetry.File,
		"workspace.dir":  def.Workspace.Dir,

		"server.addr":            def.Server.Addr,
		"server.port":            def.Server.Port,
		"server.api_enabled":     def.Server.APIEnabled,
		"server.metrics_enabled": def.Server.MetricsEnabled,
		"server.store_reports":   def.Server.StoreReports,
		"server.max_body_bytes":  def.Server.MaxBodyBytes,
		"server.auth_token":      def.Server.AuthToken,
		"server.read_timeout":    def.Server.ReadTimeout,
		"server.write_timeout":   def.Server.WriteTimeout,
	}
}

// BindFlags defines the global flags that feed the configuration.
func BindFlags(flags *pflag.FlagSet) {
	def := DefaultConfig()
	flags.Bool("debug", false, "Enable debug logging")
	flags.String("log.level", def.Log.Level, "Log level (trace, debug, info, warn, error)")
	flags.String("log.format", def.Log.Format, "Log format (console, json)")
	flags.String("workspace.dir", "", "Workspace root directory")
}
