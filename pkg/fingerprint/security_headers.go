package fingerprint

import "strings"

var securityHeaderNames = []string{
	"strict-transport-security",
	"content-security-policy",
	"content-security-policy-report-only",
	"x-frame-options",
	"x-content-type-options",
	"x-xss-protection",
	"referrer-policy",
	"permissions-policy",
	"access-control-allow-origin",
	"cross-origin-opener-policy",
	"cross-origin-resource-policy",
	"cross-origin-embedder-policy",
}

// SecurityHeaderNames returns the audited header names in report order.
func SecurityHeaderNames() []string {
	return append([]string(nil), securityHeaderNames...)
}

// AuditSecurityHeaders reports every audited header exactly once, in fixed order, with its
// value when present. Header names in headers are matched case-insensitively.
func AuditSecurityHeaders(headers map[string]string) []SecurityHeader {
	lowered := headers
	for name := range headers {
		if name != strings.ToLower(name) {
			lowered = normalize(Response{Headers: headers}).Headers
			break
		}
	}

	report := make([]SecurityHeader, len(securityHeaderNames))
	for i, name := range securityHeaderNames {
		value, ok := lowered[name]
		report[i] = SecurityHeader{Name: name, Present: ok, Value: value}
	}
	return report
}
