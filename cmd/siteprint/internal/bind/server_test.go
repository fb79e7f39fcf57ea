package bind

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vulntor/siteprint/pkg/config"
	srv "github.com/vulntor/siteprint/pkg/server"
)

func TestBindServerOptions(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*config.ServerConfig)
		wantCode string
	}{
		{name: "defaults", mutate: func(*config.ServerConfig) {}},
		{name: "metrics only", mutate: func(c *config.ServerConfig) { c.APIEnabled = false }},
		{name: "port zero", mutate: func(c *config.ServerConfig) { c.Port = 0 }, wantCode: "SERVER_INVALID_PORT"},
		{name: "port too high", mutate: func(c *config.ServerConfig) { c.Port = 70000 }, wantCode: "SERVER_INVALID_PORT"},
		{
			name: "everything disabled",
			mutate: func(c *config.ServerConfig) {
				c.APIEnabled = false
				c.MetricsEnabled = false
			},
			wantCode: "SERVER_FEATURES_DISABLED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultServerConfig()
			tt.mutate(&cfg)

			got, err := BindServerOptions(cfg)
			if tt.wantCode != "" {
				require.Error(t, err)
				require.Equal(t, tt.wantCode, srv.ErrorCode(err))
				return
			}
			require.NoError(t, err)
			require.Equal(t, cfg, got)
		})
	}
}
