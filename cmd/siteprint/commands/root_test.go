package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vulntor/siteprint/pkg/fingerprint"
	"github.com/vulntor/siteprint/pkg/server"
)

type runResult struct {
	stdout string
	stderr string
	err    error
}

// isolate points the workspace and config lookup at temp dirs and returns the workspace.
func isolate(t *testing.T) string {
	t.Helper()
	ws := t.TempDir()
	t.Setenv("SITEPRINT_WORKSPACE", ws)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return ws
}

func run(t *testing.T, stdin string, args ...string) runResult {
	t.Helper()
	return runContext(t, context.Background(), stdin, args...)
}

func runContext(t *testing.T, ctx context.Context, stdin string, args ...string) runResult {
	t.Helper()
	cmd := NewCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--no-color"}, args...))

	err := cmd.ExecuteContext(ctx)
	return runResult{stdout: out.String(), stderr: errOut.String(), err: err}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootCommandPreparesWorkspaceAndRunsVersion(t *testing.T) {
	ws := isolate(t)

	res := run(t, "", "version", "--short")
	require.NoError(t, res.err)
	require.Equal(t, "siteprint version: dev\n", res.stdout)

	for _, sub := range []string{"cache", "reports", "logs"} {
		_, err := os.Stat(filepath.Join(ws, sub))
		require.NoError(t, err, "workspace subdirectory %s should exist", sub)
	}
}

func TestRootCommand_NoWorkspace(t *testing.T) {
	ws := filepath.Join(t.TempDir(), "never-created")
	t.Setenv("SITEPRINT_WORKSPACE", ws)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	res := run(t, "", "--no-workspace", "version", "--short")
	require.NoError(t, res.err)

	_, err := os.Stat(ws)
	require.True(t, os.IsNotExist(err))
}

func TestRootCommand_MissingConfigFile(t *testing.T) {
	isolate(t)

	res := run(t, "", "--config", filepath.Join(t.TempDir(), "absent.yaml"), "version")
	require.Error(t, res.err)
	require.Contains(t, res.stderr, "Failed to load configuration")
	require.Contains(t, res.stderr, "siteprint config show")
}

func TestVersionCommand(t *testing.T) {
	isolate(t)

	res := run(t, "", "version")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "siteprint version: dev")
	require.Contains(t, res.stdout, "Go Version: go")

	res = run(t, "", "-o", "json", "version")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, `"version": "dev"`)
}

func TestVerbosityLevel(t *testing.T) {
	tests := []struct {
		level string
		count int
		want  string
	}{
		{"info", 0, "info"},
		{"info", 1, "debug"},
		{"trace", 1, "trace"},
		{"warn", 2, "trace"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, verbosityLevel(tt.level, tt.count))
	}
}

func TestExitCode(t *testing.T) {
	require.Equal(t, 0, ExitCode(nil))
	require.Equal(t, 1, ExitCode(errors.New("boom")))
	require.Equal(t, 2, ExitCode(fingerprint.NewSourceRequiredError()))
	require.Equal(t, 2, ExitCode(fingerprint.NewInvalidEvidenceError(errors.New("x"))))
	require.Equal(t, 3, ExitCode(fingerprint.NewValidationError(1, 0)))
	require.Equal(t, 2, ExitCode(server.NewFeaturesDisabledError()))
	require.Equal(t, 3, ExitCode(server.WrapCatalogLoad(errors.New("x"))))
	require.Equal(t, 7, ExitCode(server.WrapStorageInit(errors.New("x"))))
}

func TestErrorCode(t *testing.T) {
	require.Equal(t, "", errorCode(errors.New("plain")))
	require.Equal(t, "CATALOG_SOURCE_REQUIRED", errorCode(fingerprint.NewSourceRequiredError()))
}
