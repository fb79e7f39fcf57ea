package paths

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigDir(t *testing.T) {
	t.Run("XDGOverride", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
		require.Equal(t, filepath.Join("/tmp/xdg-config", "siteprint"), ConfigDir())
		require.Equal(t, filepath.Join("/tmp/xdg-config", "siteprint", "config.yaml"), ConfigFile())
	})

	t.Run("PlatformDefault", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("home layout differs on windows")
		}
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("HOME", "/home/tester")
		require.Equal(t, filepath.Join("/home/tester", ".config", "siteprint"), ConfigDir())
	})
}

func TestDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	require.Equal(t, filepath.Join("/tmp/xdg-data", "siteprint"), DataDir())

	if runtime.GOOS != "windows" {
		t.Setenv("XDG_DATA_HOME", "")
		t.Setenv("HOME", "/home/tester")
		require.Equal(t, filepath.Join("/home/tester", ".local", "share", "siteprint"), DataDir())
	}
}
