package fingerprint

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// compiledRule is a Rule with its patterns compiled once at catalog build time.
type compiledRule struct {
	Rule
	header      string
	cookie      *regexp.Regexp
	headerValue *regexp.Regexp
	body        *regexp.Regexp
}

type compiledSignature struct {
	CookieSignature
	pattern *regexp.Regexp
}

// Catalog is an immutable, compiled set of detection rules and cookie signatures.
// A Catalog is safe for concurrent use.
type Catalog struct {
	rules      []compiledRule
	signatures []compiledSignature
}

// NewCatalog compiles rules and signatures. Invalid entries and rules whose ID repeats an
// earlier rule are skipped and logged; the remaining entries keep their declaration order.
func NewCatalog(rules []Rule, signatures []CookieSignature, logger zerolog.Logger) *Catalog {
	return &Catalog{
		rules:      compileRules(rules, make(map[string]struct{}), logger),
		signatures: compileSignatures(signatures, logger),
	}
}

// Extend returns a new catalog with rules appended after the receiver's rules and
// signatures evaluated before the receiver's signatures. The receiver is not modified.
func (c *Catalog) Extend(rules []Rule, signatures []CookieSignature, logger zerolog.Logger) *Catalog {
	seen := make(map[string]struct{}, len(c.rules))
	for _, r := range c.rules {
		seen[r.ID] = struct{}{}
	}

	extended := &Catalog{
		rules:      make([]compiledRule, 0, len(c.rules)+len(rules)),
		signatures: make([]compiledSignature, 0, len(c.signatures)+len(signatures)),
	}
	extended.rules = append(extended.rules, c.rules...)
	extended.rules = append(extended.rules, compileRules(rules, seen, logger)...)
	extended.signatures = append(extended.signatures, compileSignatures(signatures, logger)...)
	extended.signatures = append(extended.signatures, c.signatures...)
	return extended
}

// Rules returns a copy of the catalog's rules in evaluation order.
func (c *Catalog) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.Rule
	}
	return out
}

// CookieSignatures returns a copy of the catalog's cookie signatures in evaluation order.
func (c *Catalog) CookieSignatures() []CookieSignature {
	out := make([]CookieSignature, len(c.signatures))
	for i, s := range c.signatures {
		out[i] = s.CookieSignature
	}
	return out
}

// RuleCount returns the number of compiled rules.
func (c *Catalog) RuleCount() int { return len(c.rules) }

// SignatureCount returns the number of compiled cookie signatures.
func (c *Catalog) SignatureCount() int { return len(c.signatures) }

func compileRules(rules []Rule, seen map[string]struct{}, logger zerolog.Logger) []compiledRule {
	v := NewValidator(false)
	out := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		if errs := v.ruleErrors(rule); len(errs) > 0 {
			logger.Warn().
				Str("rule_id", rule.ID).
				Str("field", errs[0].Field).
				Str("reason", errs[0].Message).
				Msg("Skipping invalid fingerprint rule")
			continue
		}
		if _, dup := seen[rule.ID]; dup {
			logger.Warn().Str("rule_id", rule.ID).Msg("Skipping fingerprint rule with duplicate ID")
			continue
		}
		compiled, err := compileRule(rule)
		if err != nil {
			logger.Warn().Err(err).Str("rule_id", rule.ID).Msg("Skipping invalid fingerprint rule")
			continue
		}
		seen[rule.ID] = struct{}{}
		out = append(out, compiled)
	}
	return out
}

func compileRule(rule Rule) (compiledRule, error) {
	compiled := compiledRule{Rule: rule, header: strings.ToLower(rule.Match.Header)}
	var err error
	if rule.Match.Cookie != "" {
		if compiled.cookie, err = compilePattern(rule.Match.Cookie); err != nil {
			return compiledRule{}, fmt.Errorf("cookie pattern: %w", err)
		}
	}
	if rule.Match.HeaderValue != "" {
		if compiled.headerValue, err = compilePattern(rule.Match.HeaderValue); err != nil {
			return compiledRule{}, fmt.Errorf("header_value pattern: %w", err)
		}
	}
	if rule.Match.Body != "" {
		if compiled.body, err = compilePattern(rule.Match.Body); err != nil {
			return compiledRule{}, fmt.Errorf("body pattern: %w", err)
		}
	}
	return compiled, nil
}

func compileSignatures(signatures []CookieSignature, logger zerolog.Logger) []compiledSignature {
	v := NewValidator(false)
	out := make([]compiledSignature, 0, len(signatures))
	for _, sig := range signatures {
		if errs := v.signatureErrors(sig); len(errs) > 0 {
			logger.Warn().
				Str("pattern", sig.Pattern).
				Str("field", errs[0].Field).
				Str("reason", errs[0].Message).
				Msg("Skipping invalid cookie signature")
			continue
		}
		re, err := compilePattern(sig.Pattern)
		if err != nil {
			logger.Warn().Err(err).Str("pattern", sig.Pattern).Msg("Skipping invalid cookie signature")
			continue
		}
		out = append(out, compiledSignature{CookieSignature: sig, pattern: re})
	}
	return out
}

// compilePattern compiles a catalog pattern for case-insensitive matching.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + pattern)
}
