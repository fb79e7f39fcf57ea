package appctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vulntor/siteprint/pkg/config"
)

func TestWithConfig(t *testing.T) {
	manager := config.NewManager()
	ctx := WithConfig(context.Background(), manager)

	retrieved, ok := Config(ctx)
	require.True(t, ok)
	require.Same(t, manager, retrieved)
}

func TestConfig_Missing(t *testing.T) {
	_, ok := Config(context.Background())
	require.False(t, ok)

	//nolint:staticcheck // nil context is tolerated
	_, ok = Config(nil)
	require.False(t, ok)

	_, ok = Config(WithConfig(context.Background(), nil))
	require.False(t, ok)
}

func TestConfigOrDefault(t *testing.T) {
	require.Equal(t, config.DefaultConfig(), ConfigOrDefault(context.Background()))

	manager := config.NewManager()
	require.NoError(t, manager.LoadSources(&config.DefaultSource{}, &config.FlagSource{Debug: true}))
	require.Equal(t, "debug", ConfigOrDefault(WithConfig(context.Background(), manager)).Log.Level)
}
