package bind

import (
	"github.com/vulntor/siteprint/pkg/config"
	srv "github.com/vulntor/siteprint/pkg/server"
)

// BindServerOptions validates the merged server configuration. Flags already reach it
// through the config manager, so the command passes the loaded values in.
//
// Returns an error if the port is out of range or if both the API and metrics are off.
func BindServerOptions(cfg config.ServerConfig) (config.ServerConfig, error) {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return config.ServerConfig{}, srv.NewInvalidPortError(cfg.Port)
	}

	if !cfg.APIEnabled && !cfg.MetricsEnabled {
		return config.ServerConfig{}, srv.NewFeaturesDisabledError()
	}

	return cfg, nil
}
