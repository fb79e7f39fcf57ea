package fingerprint

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// SchemaVersion is the catalog file format version written by this build.
const SchemaVersion = "1.0.0"

// schemaConstraint accepts every 1.x catalog.
const schemaConstraint = "^1.0.0"

type ruleFile struct {
	SchemaVersion string `yaml:"schema_version"`
	Rules         []Rule `yaml:"rules"`
}

type cookieFile struct {
	SchemaVersion string            `yaml:"schema_version"`
	Signatures    []CookieSignature `yaml:"signatures"`
}

// parseRulesYAML parses raw YAML bytes into rules. It accepts a bare list of rules or a
// document with a "rules" key and an optional schema_version.
func parseRulesYAML(data []byte) ([]Rule, error) {
	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err == nil && len(rules) > 0 {
		return rules, nil
	}

	var wrapper ruleFile
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, invalidCatalogError(fmt.Errorf("failed to parse rules YAML: %w", err))
	}
	if err := checkSchemaVersion(wrapper.SchemaVersion); err != nil {
		return nil, err
	}
	if len(wrapper.Rules) == 0 {
		return nil, invalidCatalogError(fmt.Errorf("no fingerprint rules found"))
	}
	return wrapper.Rules, nil
}

// parseCookiesYAML parses cookie signatures. Like rules, a bare list or a document with a
// "signatures" key is accepted.
func parseCookiesYAML(data []byte) ([]CookieSignature, error) {
	var sigs []CookieSignature
	if err := yaml.Unmarshal(data, &sigs); err == nil && len(sigs) > 0 {
		return sigs, nil
	}

	var wrapper cookieFile
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, invalidCatalogError(fmt.Errorf("failed to parse cookie signatures YAML: %w", err))
	}
	if err := checkSchemaVersion(wrapper.SchemaVersion); err != nil {
		return nil, err
	}
	if len(wrapper.Signatures) == 0 {
		return nil, invalidCatalogError(fmt.Errorf("no cookie signatures found"))
	}
	return wrapper.Signatures, nil
}

// checkSchemaVersion rejects catalogs written for an incompatible format. Files without a
// schema_version are accepted.
func checkSchemaVersion(raw string) error {
	if raw == "" {
		return nil
	}
	version, err := semver.NewVersion(raw)
	if err != nil {
		return invalidCatalogError(fmt.Errorf("schema_version %q: %w", raw, err))
	}
	constraint, err := semver.NewConstraint(schemaConstraint)
	if err != nil {
		return err
	}
	if !constraint.Check(version) {
		return invalidCatalogError(fmt.Errorf("schema_version %s is not supported (want %s)", version, schemaConstraint))
	}
	return nil
}

// ParseRules parses a rules catalog document. Individual rules are not validated.
func ParseRules(data []byte) ([]Rule, error) {
	return parseRulesYAML(data)
}

// ParseCookieSignatures parses a cookie signature catalog document.
func ParseCookieSignatures(data []byte) ([]CookieSignature, error) {
	return parseCookiesYAML(data)
}
