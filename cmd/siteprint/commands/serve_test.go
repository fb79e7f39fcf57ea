package commands

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestServe_FeaturesDisabled(t *testing.T) {
	isolate(t)

	res := run(t, "", "serve", "--server.api_enabled=false", "--server.metrics_enabled=false")
	require.Error(t, res.err)
	require.Equal(t, 2, ExitCode(res.err))
	require.Contains(t, res.stderr, "Failed to start server")
}

func TestServe_InvalidCatalog(t *testing.T) {
	isolate(t)
	rules := writeFile(t, t.TempDir(), "rules.yaml", "schema_version: \"2.0.0\"\nrules: []\n")

	res := run(t, "", "serve", "--server.port", strconv.Itoa(freePort(t)), "--catalog.rules_file", rules)
	require.Error(t, res.err)
	require.Equal(t, 3, ExitCode(res.err))
}

func TestServe_RunsUntilCanceled(t *testing.T) {
	isolate(t)
	port := freePort(t)
	base := fmt.Sprintf("http://127.0.0.1:%d", port)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan runResult, 1)
	go func() {
		done <- runContext(t, ctx, "", "serve", "--server.port", strconv.Itoa(port), "--server.store_reports")
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/readyz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	body := `{"target": "example.com", "responses": [` + cfRayEvidence + `]}`
	resp, err := http.Post(base+"/api/v1/fingerprint", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/api/v1/reports")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case res := <-done:
		require.NoError(t, res.err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop after cancellation")
	}
}
