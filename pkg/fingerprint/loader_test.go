package fingerprint

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const customRulesYAML = `schema_version: "1.2.0"
rules:
  - id: custom-waf
    name: In-House WAF
    category: firewall
    confidence: high
    match: { header: x-inhouse-waf }
    description: Corporate WAF marker
  - id: broken
    name: Broken
    category: firewall
    confidence: high
    match: { body: '([' }
    description: skipped
`

const customCookiesYAML = `signatures:
  - pattern: '^_abck$'
    provider: Overridden Akamai
    purpose: test
    category: bot-protection
    risk: low
    bypass_required: false
    details: custom signatures win
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseRulesYAML(t *testing.T) {
	t.Run("bare list", func(t *testing.T) {
		rules, err := parseRulesYAML([]byte(`
- id: a
  name: A
  category: cdn
  confidence: low
  match: { header: x-a }
`))
		require.NoError(t, err)
		require.Len(t, rules, 1)
		require.Equal(t, "x-a", rules[0].Match.Header)
	})

	t.Run("wrapper with prefix flag", func(t *testing.T) {
		rules, err := parseRulesYAML([]byte(`rules:
  - id: fam
    name: Fam
    category: cdn
    confidence: low
    match: { header: x-fam-, header_prefix: true, status: 403 }
`))
		require.NoError(t, err)
		require.True(t, rules[0].Match.HeaderPrefix)
		require.Equal(t, 403, rules[0].Match.Status)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := parseRulesYAML([]byte("rules: []\n"))
		require.ErrorIs(t, err, ErrInvalidCatalog)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := parseRulesYAML([]byte("rules: [unterminated"))
		require.ErrorIs(t, err, ErrInvalidCatalog)
	})
}

func TestCheckSchemaVersion(t *testing.T) {
	require.NoError(t, checkSchemaVersion(""))
	require.NoError(t, checkSchemaVersion("1.0.0"))
	require.NoError(t, checkSchemaVersion("1.9"))
	require.ErrorIs(t, checkSchemaVersion("2.0.0"), ErrInvalidCatalog)
	require.ErrorIs(t, checkSchemaVersion("0.9.0"), ErrInvalidCatalog)
	require.ErrorIs(t, checkSchemaVersion("latest"), ErrInvalidCatalog)
}

func TestLoadCatalogFiles(t *testing.T) {
	rulesPath := writeFile(t, "rules.yaml", customRulesYAML)
	cookiesPath := writeFile(t, "cookies.yaml", customCookiesYAML)

	catalog, err := LoadCatalogFiles(rulesPath, cookiesPath, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, Default().RuleCount()+1, catalog.RuleCount(), "invalid custom rule must be skipped")
	require.Equal(t, Default().SignatureCount()+1, catalog.SignatureCount())

	result := NewEngine(catalog).Fingerprint([]Response{{
		Headers: map[string]string{"X-Inhouse-Waf": "on"},
		Cookies: map[string]string{"_abck": "x"},
	}})
	require.Contains(t, matchNames(result.Matches), "In-House WAF")
	require.Equal(t, "Overridden Akamai", result.CookieAnalysis[0].Provider)

	// The built-in catalog is untouched.
	row, ok := Default().ClassifyCookie("_abck", "x")
	require.True(t, ok)
	require.Equal(t, "Akamai Bot Manager", row.Provider)
}

func TestLoadCatalogFiles_NoFiles(t *testing.T) {
	catalog, err := LoadCatalogFiles("", "", zerolog.Nop())
	require.NoError(t, err)
	require.Same(t, Default(), catalog)
}

func TestLoadCatalogFiles_Errors(t *testing.T) {
	_, err := LoadCatalogFiles(filepath.Join(t.TempDir(), "missing.yaml"), "", zerolog.Nop())
	require.Error(t, err)

	future := writeFile(t, "future.yaml", "schema_version: \"2.0.0\"\nrules:\n  - id: a\n")
	_, err = LoadCatalogFiles(future, "", zerolog.Nop())
	require.ErrorIs(t, err, ErrInvalidCatalog)

	_, err = LoadCatalogFiles("", writeFile(t, "c.yaml", "signatures: []\n"), zerolog.Nop())
	require.ErrorIs(t, err, ErrInvalidCatalog)
}

func TestLoadCachedCatalog(t *testing.T) {
	_, err := LoadCachedCatalog("", zerolog.Nop())
	require.Error(t, err)

	dir := t.TempDir()
	_, err = LoadCachedCatalog(dir, zerolog.Nop())
	require.True(t, errors.Is(err, fs.ErrNotExist))

	require.NoError(t, os.WriteFile(filepath.Join(dir, CachedRulesFile), []byte(customRulesYAML), 0o644))
	catalog, err := LoadCachedCatalog(dir, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, Default().RuleCount()+1, catalog.RuleCount())
}

func TestResolveCatalog(t *testing.T) {
	logger := zerolog.Nop()

	catalog, err := ResolveCatalog("", "", "", logger)
	require.NoError(t, err)
	require.Same(t, Default(), catalog)

	emptyCache := t.TempDir()
	catalog, err = ResolveCatalog("", "", emptyCache, logger)
	require.NoError(t, err)
	require.Same(t, Default(), catalog)

	cache := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cache, CachedRulesFile), []byte(customRulesYAML), 0o644))
	catalog, err = ResolveCatalog("", "", cache, logger)
	require.NoError(t, err)
	require.Equal(t, Default().RuleCount()+1, catalog.RuleCount())

	// Explicit files take precedence over the cache.
	cookies := writeFile(t, "cookies.yaml", customCookiesYAML)
	catalog, err = ResolveCatalog("", cookies, cache, logger)
	require.NoError(t, err)
	require.Equal(t, Default().RuleCount(), catalog.RuleCount())
	require.Equal(t, Default().SignatureCount()+1, catalog.SignatureCount())
}
