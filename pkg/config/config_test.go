package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)
	BindServerFlags(flags)
	BindCatalogFlags(flags)
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestManager_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	m := NewManager()
	require.NoError(t, m.Load(nil, ""))

	cfg := m.Get()
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, DefaultServerConfig(), cfg.Server)
	assert.Empty(t, cfg.Catalog.RulesFile)
	assert.Empty(t, cfg.Telemetry.File)
}

func TestManager_Precedence(t *testing.T) {
	path := writeConfig(t, `
log:
  level: warn
  format: json
catalog:
  rules_file: /etc/siteprint/rules.yaml
server:
  port: 9000
  read_timeout: 5s
`)
	t.Setenv("SITEPRINT_SERVER_PORT", "9100")
	t.Setenv("SITEPRINT_CATALOG_COOKIES_FILE", "/env/cookies.yaml")
	t.Setenv("SITEPRINT_WORKSPACE", "/env/ws")

	m := NewManager()
	require.NoError(t, m.Load(newFlags(t, "--server.port=9200", "--log.format=console"), path))

	cfg := m.Get()
	assert.Equal(t, "warn", cfg.Log.Level, "file overrides default")
	assert.Equal(t, "console", cfg.Log.Format, "changed flag overrides file")
	assert.Equal(t, 9200, cfg.Server.Port, "flag overrides env")
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "/etc/siteprint/rules.yaml", cfg.Catalog.RulesFile, "unchanged flag keeps file value")
	assert.Equal(t, "/env/cookies.yaml", cfg.Catalog.CookiesFile)
	assert.Equal(t, "/env/ws", cfg.Workspace.Dir)
	assert.Equal(t, "warn", m.Koanf().String("log.level"))
}

func TestManager_DebugFlag(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	m := NewManager()
	require.NoError(t, m.Load(newFlags(t, "--debug"), ""))
	assert.Equal(t, "debug", m.Get().Log.Level)
}

func TestManager_ExplicitFileMustExist(t *testing.T) {
	m := NewManager()
	err := m.Load(nil, filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, "info", m.Get().Log.Level, "previous config is kept")
}

func TestManager_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"bad format": "log:\n  format: xml\n",
		"bad level":  "log:\n  level: chatty\n",
		"bad port":   "server:\n  port: 70000\n",
		"tiny body":  "server:\n  max_body_bytes: 10\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			err := NewManager().Load(nil, writeConfig(t, content))
			require.ErrorContains(t, err, "invalid config")
		})
	}
}

func TestManager_MalformedFile(t *testing.T) {
	err := NewManager().Load(nil, writeConfig(t, "log: [unterminated"))
	require.Error(t, err)
}

func TestSources(t *testing.T) {
	assert.Equal(t, 10, (&DefaultSource{}).Priority())
	assert.Equal(t, 20, (&FileSource{}).Priority())
	assert.Equal(t, "file:/x.yaml", (&FileSource{Path: "/x.yaml"}).Name())
	assert.Equal(t, 30, (&EnvSource{}).Priority())
	assert.Equal(t, 40, (&FlagSource{}).Priority())

	k := koanf.New(".")
	require.NoError(t, (&FileSource{}).Load(k))
	require.NoError(t, (&FileSource{Path: "/nonexistent/config.yaml"}).Load(k))
	require.Error(t, (&FileSource{Path: "/nonexistent/config.yaml", Required: true}).Load(k))
}

func TestLoadSources_SortsByPriority(t *testing.T) {
	path := writeConfig(t, "log:\n  level: error\n")

	m := NewManager()
	require.NoError(t, m.LoadSources(&FileSource{Path: path}, &DefaultSource{}))
	assert.Equal(t, "error", m.Get().Log.Level)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "log.level", envKey(EnvPrefix, "SITEPRINT_LOG_LEVEL"))
	assert.Equal(t, "server.max_body_bytes", envKey(EnvPrefix, "SITEPRINT_SERVER_MAX_BODY_BYTES"))
	assert.Equal(t, "workspace.dir", envKey(EnvPrefix, "SITEPRINT_WORKSPACE"))
}

func TestBindServerFlags(t *testing.T) {
	flags := newFlags(t, "--server.addr=0.0.0.0", "--server.write_timeout=1m", "--catalog.watch")

	addr, err := flags.GetString("server.addr")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", addr)

	timeout, err := flags.GetDuration("server.write_timeout")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, timeout)

	watch, err := flags.GetBool("catalog.watch")
	require.NoError(t, err)
	assert.True(t, watch)
}
