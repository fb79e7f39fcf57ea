package fingerprint

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	severityError   = "error"
	severityWarning = "warning"
)

// ValidationError represents a validation finding with severity and location information.
type ValidationError struct {
	RuleID   string `json:"rule_id"`  // Rule ID or cookie pattern where the finding occurred
	Field    string `json:"field"`    // YAML field name
	Message  string `json:"message"`  // Human readable description
	Severity string `json:"severity"` // "error" or "warning"
}

// ValidationReport contains the results of a catalog validation run.
type ValidationReport struct {
	Errors         []ValidationError `json:"errors"`
	Warnings       []ValidationError `json:"warnings"`
	RuleCount      int               `json:"rule_count"`
	SignatureCount int               `json:"signature_count"`
	strict         bool
}

// IsValid returns true if there are no errors. In strict mode warnings also fail validation.
func (r *ValidationReport) IsValid() bool {
	if len(r.Errors) > 0 {
		return false
	}
	return !r.strict || len(r.Warnings) == 0
}

// Merge folds other into r.
func (r *ValidationReport) Merge(other *ValidationReport) {
	if other == nil {
		return
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.RuleCount += other.RuleCount
	r.SignatureCount += other.SignatureCount
}

func (r *ValidationReport) add(finding ValidationError) {
	if finding.Severity == severityWarning {
		r.Warnings = append(r.Warnings, finding)
		return
	}
	r.Errors = append(r.Errors, finding)
}

// Validator validates rule and cookie signature catalogs.
type Validator struct {
	strict   bool // Treat warnings as errors
	validate *validator.Validate
}

// NewValidator creates a new Validator instance.
func NewValidator(strict bool) *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{strict: strict, validate: v}
}

// ValidateRules validates a list of rules, including duplicate ID detection.
func (v *Validator) ValidateRules(rules []Rule) *ValidationReport {
	report := &ValidationReport{
		Errors:    make([]ValidationError, 0),
		Warnings:  make([]ValidationError, 0),
		RuleCount: len(rules),
		strict:    v.strict,
	}

	seenIDs := make(map[string]bool)
	for _, rule := range rules {
		for _, finding := range v.ruleFindings(rule) {
			report.add(finding)
		}
		if rule.ID != "" && seenIDs[rule.ID] {
			report.add(ValidationError{
				RuleID:   rule.ID,
				Field:    "id",
				Message:  fmt.Sprintf("duplicate rule ID '%s'", rule.ID),
				Severity: severityError,
			})
		}
		seenIDs[rule.ID] = true
	}
	return report
}

// ValidateCookieSignatures validates an ordered list of cookie signatures.
func (v *Validator) ValidateCookieSignatures(signatures []CookieSignature) *ValidationReport {
	report := &ValidationReport{
		Errors:         make([]ValidationError, 0),
		Warnings:       make([]ValidationError, 0),
		SignatureCount: len(signatures),
		strict:         v.strict,
	}

	seen := make(map[string]bool)
	for _, sig := range signatures {
		for _, finding := range v.signatureFindings(sig) {
			report.add(finding)
		}
		if sig.Pattern != "" && seen[sig.Pattern] {
			report.add(ValidationError{
				RuleID:   sig.Pattern,
				Field:    "pattern",
				Message:  "duplicate pattern; only the first occurrence can ever match",
				Severity: severityWarning,
			})
		}
		seen[sig.Pattern] = true
	}
	return report
}

// ruleErrors returns only the error-level findings for a single rule.
func (v *Validator) ruleErrors(rule Rule) []ValidationError {
	var errs []ValidationError
	for _, finding := range v.ruleFindings(rule) {
		if finding.Severity == severityError {
			errs = append(errs, finding)
		}
	}
	return errs
}

func (v *Validator) signatureErrors(sig CookieSignature) []ValidationError {
	var errs []ValidationError
	for _, finding := range v.signatureFindings(sig) {
		if finding.Severity == severityError {
			errs = append(errs, finding)
		}
	}
	return errs
}

func (v *Validator) ruleFindings(rule Rule) []ValidationError {
	findings := v.structFindings(rule.ID, rule)
	m := rule.Match

	if m.Empty() {
		findings = append(findings, ValidationError{
			RuleID:   rule.ID,
			Field:    "match",
			Message:  "rule has no checks and can never match",
			Severity: severityError,
		})
	}

	for _, p := range []struct{ field, pattern string }{
		{"match.cookie", m.Cookie},
		{"match.header_value", m.HeaderValue},
		{"match.body", m.Body},
	} {
		if p.pattern == "" {
			continue
		}
		if _, err := compilePattern(p.pattern); err != nil {
			findings = append(findings, ValidationError{
				RuleID:   rule.ID,
				Field:    p.field,
				Message:  fmt.Sprintf("invalid regex syntax: %v", err),
				Severity: severityError,
			})
		}
	}

	if m.Header == "" && (m.HeaderValue != "" || m.HeaderPrefix) {
		findings = append(findings, ValidationError{
			RuleID:   rule.ID,
			Field:    "match.header",
			Message:  "header_value and header_prefix require a header name",
			Severity: severityError,
		})
	}
	if strings.ContainsAny(m.Header, " :\t") {
		findings = append(findings, ValidationError{
			RuleID:   rule.ID,
			Field:    "match.header",
			Message:  fmt.Sprintf("header name %q must not contain spaces or colons", m.Header),
			Severity: severityError,
		})
	}

	if strings.TrimSpace(rule.Description) == "" {
		findings = append(findings, ValidationError{
			RuleID:   rule.ID,
			Field:    "description",
			Message:  "description field is empty (recommended)",
			Severity: severityWarning,
		})
	}
	if rule.BypassHint != "" && !protectionCategory(rule.Category) {
		findings = append(findings, ValidationError{
			RuleID:   rule.ID,
			Field:    "bypass_hint",
			Message:  fmt.Sprintf("bypass_hint on a %s rule is never shown as a protection hint", rule.Category),
			Severity: severityWarning,
		})
	}
	if m.HeaderPrefix && !strings.HasSuffix(m.Header, "-") && !strings.HasSuffix(m.Header, "_") {
		findings = append(findings, ValidationError{
			RuleID:   rule.ID,
			Field:    "match.header",
			Message:  "header family prefix should end with '-' or '_' to avoid matching unrelated headers",
			Severity: severityWarning,
		})
	}
	if m.Status != 0 && m.Cookie == "" && m.Header == "" && m.Body == "" {
		findings = append(findings, ValidationError{
			RuleID:   rule.ID,
			Field:    "match.status",
			Message:  fmt.Sprintf("status-only rule matches every response with status %d", m.Status),
			Severity: severityWarning,
		})
	}
	return findings
}

func (v *Validator) signatureFindings(sig CookieSignature) []ValidationError {
	findings := v.structFindings(sig.Pattern, sig)
	if sig.Pattern != "" {
		if _, err := compilePattern(sig.Pattern); err != nil {
			findings = append(findings, ValidationError{
				RuleID:   sig.Pattern,
				Field:    "pattern",
				Message:  fmt.Sprintf("invalid regex syntax: %v", err),
				Severity: severityError,
			})
		}
	}
	if strings.TrimSpace(sig.Purpose) == "" {
		findings = append(findings, ValidationError{
			RuleID:   sig.Pattern,
			Field:    "purpose",
			Message:  "purpose field is empty (recommended)",
			Severity: severityWarning,
		})
	}
	return findings
}

// structFindings converts go-playground tag failures into validation errors.
func (v *Validator) structFindings(id string, value any) []ValidationError {
	err := v.validate.Struct(value)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{RuleID: id, Message: err.Error(), Severity: severityError}}
	}

	findings := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		var msg string
		switch fe.Tag() {
		case "required":
			msg = fmt.Sprintf("required field '%s' is empty or missing", field)
		case "oneof":
			msg = fmt.Sprintf("%q is not one of: %s", fmt.Sprint(fe.Value()), fe.Param())
		case "min", "max":
			msg = fmt.Sprintf("%v is outside the range 100-599", fe.Value())
		default:
			msg = fmt.Sprintf("failed '%s' validation", fe.Tag())
		}
		findings = append(findings, ValidationError{
			RuleID:   id,
			Field:    field,
			Message:  msg,
			Severity: severityError,
		})
	}
	return findings
}

// protectionCategory reports whether hints for c describe an access control.
func protectionCategory(c Category) bool {
	switch c {
	case CategoryBotProtection, CategoryFirewall, CategoryCaptcha, CategoryCDN:
		return true
	default:
		return false
	}
}

// NewValidationError creates a validation failure error with error and warning counts.
func NewValidationError(errorCount, warningCount int) error {
	return invalidCatalogError(fmt.Errorf("validation failed: %d errors, %d warnings", errorCount, warningCount))
}
