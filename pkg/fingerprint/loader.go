package fingerprint

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// CachedRulesFile is the file name catalog sync writes into the cache directory.
const CachedRulesFile = "rules.yaml"

//go:embed data/rules.yaml
var embeddedRulesYAML []byte

//go:embed data/cookies.yaml
var embeddedCookiesYAML []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalog compiled from the embedded YAML. It is built once.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog = loadBuiltinCatalog(log.With().Str("component", "fingerprint").Logger())
	})
	return defaultCatalog
}

// loadBuiltinCatalog parses the embedded catalogs. A parse failure leaves that half of the
// catalog empty rather than failing the process.
func loadBuiltinCatalog(logger zerolog.Logger) *Catalog {
	rules, err := parseRulesYAML(embeddedRulesYAML)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load embedded fingerprint rules")
	}
	signatures, err := parseCookiesYAML(embeddedCookiesYAML)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load embedded cookie signatures")
	}
	return NewCatalog(rules, signatures, logger)
}

// LoadCatalogFiles extends the built-in catalog with custom rule and cookie signature
// files. Either path may be empty. A file that cannot be read or parsed, or that declares
// an unsupported schema_version, fails the whole load; individual invalid entries are
// skipped and logged.
func LoadCatalogFiles(rulesPath, cookiesPath string, logger zerolog.Logger) (*Catalog, error) {
	var (
		rules      []Rule
		signatures []CookieSignature
		err        error
	)
	if rulesPath != "" {
		if rules, err = LoadRulesFromFile(rulesPath); err != nil {
			return nil, err
		}
	}
	if cookiesPath != "" {
		if signatures, err = LoadCookieSignaturesFromFile(cookiesPath); err != nil {
			return nil, err
		}
	}

	catalog := Default()
	if len(rules) == 0 && len(signatures) == 0 {
		return catalog, nil
	}
	extended := catalog.Extend(rules, signatures, logger)
	logger.Info().
		Str("rules_file", rulesPath).
		Str("cookies_file", cookiesPath).
		Int("custom_rules", extended.RuleCount()-catalog.RuleCount()).
		Int("custom_signatures", extended.SignatureCount()-catalog.SignatureCount()).
		Msg("Loaded custom fingerprint catalog")
	return extended, nil
}

// LoadCachedCatalog extends the built-in catalog with the rules stored by catalog sync in
// cacheDir. A missing cache file yields fs.ErrNotExist.
func LoadCachedCatalog(cacheDir string, logger zerolog.Logger) (*Catalog, error) {
	if cacheDir == "" {
		return nil, errors.New("cache directory not specified")
	}
	cachedPath := filepath.Join(cacheDir, CachedRulesFile)
	if _, err := os.Stat(cachedPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("stat cache: %w", err)
	}
	catalog, err := LoadCatalogFiles(cachedPath, "", logger)
	if err != nil {
		return nil, fmt.Errorf("parse cache: %w", err)
	}
	return catalog, nil
}

// LoadRulesFromFile reads and parses a rules YAML file without validating individual rules.
func LoadRulesFromFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	rules, err := parseRulesYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// LoadCookieSignaturesFromFile reads and parses a cookie signature YAML file.
func LoadCookieSignaturesFromFile(path string) ([]CookieSignature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cookie signatures file: %w", err)
	}
	signatures, err := parseCookiesYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return signatures, nil
}

// ResolveCatalog picks the catalog a command should run with: explicit custom files
// first, then a catalog previously stored by sync in cacheDir, then the built-in one.
func ResolveCatalog(rulesPath, cookiesPath, cacheDir string, logger zerolog.Logger) (*Catalog, error) {
	if rulesPath != "" || cookiesPath != "" {
		return LoadCatalogFiles(rulesPath, cookiesPath, logger)
	}
	if cacheDir == "" {
		return Default(), nil
	}
	catalog, err := LoadCachedCatalog(cacheDir, logger)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return catalog, err
}
