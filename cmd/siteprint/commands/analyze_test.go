package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vulntor/siteprint/pkg/fingerprint"
)

const cfRayEvidence = `{"status_code": 200, "headers": {"cf-ray": "abc123", "server": "cloudflare"}, "cookies": {}}`

const botCookiesEvidence = `{"status_code": 403, "headers": {}, "cookies": {"__cf_bm": "x", "cf_clearance": "y"}}`

func stackNames(result fingerprint.Result) []string {
	names := make([]string, 0, len(result.Stack))
	for _, s := range result.Stack {
		names = append(names, s.Name)
	}
	return names
}

func TestAnalyze_FileJSON(t *testing.T) {
	isolate(t)
	path := writeFile(t, t.TempDir(), "probe.json", cfRayEvidence)

	res := run(t, "", "-o", "json", "analyze", path)
	require.NoError(t, res.err)

	var result fingerprint.Result
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &result))
	require.Contains(t, stackNames(result), "Cloudflare")

	var evidence []string
	for _, m := range result.Matches {
		evidence = append(evidence, m.Evidence...)
	}
	require.Contains(t, evidence, "Header: cf-ray: abc123")
}

func TestAnalyze_StdinTable(t *testing.T) {
	isolate(t)

	res := run(t, botCookiesEvidence, "analyze")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "Cloudflare Bot Management")
	require.Contains(t, res.stdout, "__cf_bm")
	require.Contains(t, res.stdout, "Security Headers")
}

func TestAnalyze_Grouped(t *testing.T) {
	isolate(t)

	res := run(t, botCookiesEvidence, "analyze", "--groups")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "Bot Protection (")
}

func TestAnalyze_MultipleInputsMerge(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", cfRayEvidence)
	b := writeFile(t, dir, "b.jsonl", botCookiesEvidence+"\n")

	res := run(t, "", "-o", "json", "analyze", a, b)
	require.NoError(t, res.err)

	var result fingerprint.Result
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &result))
	names := stackNames(result)
	require.Contains(t, names, "Cloudflare")
	require.Contains(t, names, "Cloudflare Bot Management")
	require.Equal(t, "abc123", result.Raw.Headers["cf-ray"])
}

func TestAnalyze_InvalidEvidence(t *testing.T) {
	isolate(t)

	res := run(t, "", "analyze")
	require.ErrorIs(t, res.err, fingerprint.ErrInvalidEvidence)
	require.Equal(t, 2, ExitCode(res.err))
	require.Contains(t, res.stderr, "Failed to read evidence")
	require.Contains(t, res.stderr, "JSON Lines")
}

func TestAnalyze_MissingFile(t *testing.T) {
	isolate(t)

	res := run(t, "", "analyze", filepath.Join(t.TempDir(), "absent.json"))
	require.ErrorIs(t, res.err, fingerprint.ErrInvalidEvidence)
	require.Contains(t, res.stderr, "absent.json")
}

func TestAnalyze_CustomRules(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	rules := writeFile(t, dir, "rules.yaml", `schema_version: "1.0.0"
rules:
  - id: inhouse-waf
    name: In-House WAF
    category: firewall
    confidence: high
    match: { header: x-inhouse-waf }
    description: Corporate WAF marker
`)
	probe := writeFile(t, dir, "probe.json", `{"status_code": 200, "headers": {"x-inhouse-waf": "1"}}`)

	res := run(t, "", "-o", "json", "analyze", "--catalog.rules_file", rules, probe)
	require.NoError(t, res.err)

	var result fingerprint.Result
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &result))
	require.Contains(t, stackNames(result), "In-House WAF")
}

func TestAnalyze_IncompatibleCatalog(t *testing.T) {
	isolate(t)
	rules := writeFile(t, t.TempDir(), "rules.yaml", "schema_version: \"2.0.0\"\nrules: []\n")

	res := run(t, cfRayEvidence, "analyze", "--catalog.rules_file", rules)
	require.ErrorIs(t, res.err, fingerprint.ErrInvalidCatalog)
	require.Equal(t, 3, ExitCode(res.err))
}

func TestAnalyze_SaveAndTelemetry(t *testing.T) {
	ws := isolate(t)
	telemetry := filepath.Join(t.TempDir(), "events.jsonl")

	res := run(t, cfRayEvidence, "analyze", "--save", "--target", "example.com", "--telemetry.file", telemetry)
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "Report ")

	entries, err := os.ReadDir(filepath.Join(ws, "reports"))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	stats, err := fingerprint.AnalyzeTelemetry(telemetry, &fingerprint.StatsFilter{Target: "example.com"})
	require.NoError(t, err)
	require.Equal(t, 1, stats.Runs)
	require.Positive(t, stats.Detections)
}

func TestAnalyze_SaveWithoutWorkspace(t *testing.T) {
	isolate(t)

	res := run(t, cfRayEvidence, "--no-workspace", "analyze", "--save")
	require.Error(t, res.err)
	require.Contains(t, res.stderr, "Failed to store report")
}
