package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vulntor/siteprint/pkg/fingerprint"
)

const inhouseRules = `schema_version: "1.0.0"
rules:
  - id: inhouse-waf
    name: In-House WAF
    category: firewall
    confidence: high
    match: { header: x-inhouse-waf }
    description: Corporate WAF marker
`

const brokenRules = `rules:
  - id: broken
    name: Broken
    category: firewall
    confidence: high
    match: { body: '([' }
    description: bad pattern
`

func TestCatalogRules_CategoryFilter(t *testing.T) {
	isolate(t)

	res := run(t, "", "-o", "json", "catalog", "rules", "--category", "cdn")
	require.NoError(t, res.err)

	var rules []fingerprint.Rule
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &rules))
	require.NotEmpty(t, rules)
	for _, r := range rules {
		require.Equal(t, fingerprint.CategoryCDN, r.Category)
	}
}

func TestCatalogRules_Table(t *testing.T) {
	isolate(t)

	res := run(t, "", "catalog", "rules")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "CHECKS")
	require.Contains(t, res.stdout, "header cf-ray")
	require.Contains(t, res.stdout, "rules\n")
}

func TestCatalogRules_InvalidCategory(t *testing.T) {
	isolate(t)

	res := run(t, "", "catalog", "rules", "--category", "nope")
	require.Error(t, res.err)
	require.Contains(t, res.stderr, `invalid category "nope"`)
}

func TestCatalogCookies(t *testing.T) {
	isolate(t)

	res := run(t, "", "-o", "json", "catalog", "cookies")
	require.NoError(t, res.err)

	var signatures []fingerprint.CookieSignature
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &signatures))
	require.Equal(t, fingerprint.Default().SignatureCount(), len(signatures))
}

func TestCatalogValidate_BuiltIn(t *testing.T) {
	isolate(t)

	res := run(t, "", "catalog", "validate")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "✓ Validate completed")
}

func TestCatalogValidate_File(t *testing.T) {
	isolate(t)
	path := writeFile(t, t.TempDir(), "rules.yaml", inhouseRules)

	res := run(t, "", "catalog", "validate", path)
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "Checked 1 rules and 0 cookie signatures")
}

func TestCatalogValidate_Invalid(t *testing.T) {
	isolate(t)
	path := writeFile(t, t.TempDir(), "rules.yaml", brokenRules)

	res := run(t, "", "catalog", "validate", path)
	require.ErrorIs(t, res.err, fingerprint.ErrInvalidCatalog)
	require.Equal(t, 3, ExitCode(res.err))
	require.Contains(t, res.stdout, "broken")
	require.Contains(t, res.stderr, "Failed to validate catalog")

	res = run(t, "", "-o", "json", "catalog", "validate", path)
	require.ErrorIs(t, res.err, fingerprint.ErrInvalidCatalog)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &doc))
	require.Equal(t, false, doc["valid"])
}

func TestCatalogSync_FileIntoWorkspace(t *testing.T) {
	ws := isolate(t)
	path := writeFile(t, t.TempDir(), "rules.yaml", inhouseRules)

	res := run(t, "", "catalog", "sync", "--file", path)
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "✓ Sync completed: 1 rules cached at")

	_, err := os.Stat(filepath.Join(ws, "cache", "fingerprint", fingerprint.CachedRulesFile))
	require.NoError(t, err)

	// later commands pick up the synced catalog
	res = run(t, "", "-o", "json", "catalog", "rules", "--category", "firewall")
	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "inhouse-waf")
}

func TestCatalogSync_SourceErrors(t *testing.T) {
	isolate(t)

	res := run(t, "", "catalog", "sync")
	require.ErrorIs(t, res.err, fingerprint.ErrSourceRequired)
	require.Equal(t, 2, ExitCode(res.err))
	require.Contains(t, res.stderr, "--file <path> or --url <address>")

	res = run(t, "", "catalog", "sync", "--file", "a.yaml", "--url", "https://example.com/rules.yaml")
	require.ErrorIs(t, res.err, fingerprint.ErrSourceConflict)
}

func TestCatalogSync_InvalidCatalogNotStored(t *testing.T) {
	ws := isolate(t)
	path := writeFile(t, t.TempDir(), "rules.yaml", brokenRules)

	res := run(t, "", "catalog", "sync", "--file", path)
	require.ErrorIs(t, res.err, fingerprint.ErrInvalidCatalog)

	_, err := os.Stat(filepath.Join(ws, "cache", "fingerprint", fingerprint.CachedRulesFile))
	require.True(t, os.IsNotExist(err))
}

func TestCatalogSync_NoWorkspace(t *testing.T) {
	isolate(t)
	path := writeFile(t, t.TempDir(), "rules.yaml", inhouseRules)

	res := run(t, "", "--no-workspace", "catalog", "sync", "--file", path)
	require.ErrorIs(t, res.err, fingerprint.ErrStorageDisabled)
	require.Equal(t, 7, ExitCode(res.err))
}
