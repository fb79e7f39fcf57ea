package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, 30*time.Second, cfg.HandlerTimeout)
	require.Equal(t, int64(8<<20), cfg.MaxBodyBytes)
	require.Equal(t, 100, cfg.MaxResponses)
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{"zero timeout allowed", Config{MaxBodyBytes: 1}, nil},
		{"negative timeout", Config{HandlerTimeout: -time.Second, MaxBodyBytes: 1}, ErrInvalidTimeout},
		{"zero body limit", Config{HandlerTimeout: time.Second}, ErrInvalidBodyLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
