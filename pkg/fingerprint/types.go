// Package fingerprint classifies the protection and technology stack of a site from HTTP
// evidence that has already been collected by a probe.
//
// The engine is a pure function over a list of Response records: every catalog Rule is
// matched against every record, matches sharing a display name are merged, unnamed
// Server / X-Powered-By banners are surfaced by auto-detection, and the merged matches are
// summarised into a technology Stack, a security header audit and a cookie risk analysis.
// The built-in catalogs are embedded YAML, compiled once and never mutated.
package fingerprint

// Category classifies what kind of technology a Rule detects.
type Category string

// Rule categories. The declaration order of categoryPriority below is the display and sort
// order of matches.
const (
	CategoryBotProtection  Category = "bot-protection"
	CategoryFirewall       Category = "firewall"
	CategoryCaptcha        Category = "captcha"
	CategoryCDN            Category = "cdn"
	CategoryServer         Category = "server"
	CategoryFramework      Category = "framework"
	CategoryCMS            Category = "cms"
	CategoryHosting        Category = "hosting"
	CategoryIdentity       Category = "identity"
	CategoryAnalytics      Category = "analytics"
	CategoryTracking       Category = "tracking"
	CategorySecurityHeader Category = "security-header"
)

var categoryPriority = []Category{
	CategoryBotProtection,
	CategoryFirewall,
	CategoryCaptcha,
	CategoryCDN,
	CategoryServer,
	CategoryFramework,
	CategoryCMS,
	CategoryHosting,
	CategoryIdentity,
	CategoryAnalytics,
	CategoryTracking,
	CategorySecurityHeader,
}

// Categories returns all known rule categories in priority order.
func Categories() []Category {
	return append([]Category(nil), categoryPriority...)
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c.priority() < len(categoryPriority)
}

// priority returns the sort rank of c. Unknown categories sort after every known one.
func (c Category) priority() int {
	for i, known := range categoryPriority {
		if known == c {
			return i
		}
	}
	return len(categoryPriority)
}

// Confidence is the certainty tier of a Rule.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Valid reports whether c is a known confidence tier.
func (c Confidence) Valid() bool {
	return c.rank() < 3
}

// rank orders confidence tiers: high=0, medium=1, low=2, unknown=3.
func (c Confidence) rank() int {
	switch c {
	case ConfidenceHigh:
		return 0
	case ConfidenceMedium:
		return 1
	case ConfidenceLow:
		return 2
	default:
		return 3
	}
}

// Higher reports whether c is strictly more confident than other.
func (c Confidence) Higher(other Confidence) bool {
	return c.rank() < other.rank()
}

// Risk is the severity tier of a cookie signature.
type Risk string

const (
	RiskCritical Risk = "critical"
	RiskHigh     Risk = "high"
	RiskMedium   Risk = "medium"
	RiskLow      Risk = "low"
)

// Rank orders risk tiers: critical=0, high=1, medium=2, low=3, unranked=4.
func (r Risk) Rank() int {
	switch r {
	case RiskCritical:
		return 0
	case RiskHigh:
		return 1
	case RiskMedium:
		return 2
	case RiskLow:
		return 3
	default:
		return 4
	}
}

// CookieCategory classifies what a cookie is used for.
type CookieCategory string

const (
	CookieBotProtection CookieCategory = "bot-protection"
	CookieSession       CookieCategory = "session"
	CookieAnalytics     CookieCategory = "analytics"
	CookieTracking      CookieCategory = "tracking"
	CookieFunctional    CookieCategory = "functional"
	CookieUnknown       CookieCategory = "unknown"
)

// MatchSpec describes which parts of a Response a Rule inspects. Every field is optional;
// a MatchSpec with no field set never matches.
type MatchSpec struct {
	Cookie       string `yaml:"cookie,omitempty" json:"cookie,omitempty"`
	Header       string `yaml:"header,omitempty" json:"header,omitempty"`
	HeaderPrefix bool   `yaml:"header_prefix,omitempty" json:"header_prefix,omitempty"`
	HeaderValue  string `yaml:"header_value,omitempty" json:"header_value,omitempty"`
	Body         string `yaml:"body,omitempty" json:"body,omitempty"`
	Status       int    `yaml:"status,omitempty" json:"status,omitempty" validate:"omitempty,min=100,max=599"`
}

// Empty reports whether no check is specified.
func (m MatchSpec) Empty() bool {
	return m.Cookie == "" && m.Header == "" && m.Body == "" && m.Status == 0
}

// Rule is a single named detection signature.
type Rule struct {
	ID          string     `yaml:"id" json:"id" validate:"required"`
	Name        string     `yaml:"name" json:"name" validate:"required"`
	Category    Category   `yaml:"category" json:"category" validate:"required,oneof=bot-protection firewall captcha cdn server framework cms hosting identity analytics tracking security-header"`
	Confidence  Confidence `yaml:"confidence" json:"confidence" validate:"required,oneof=high medium low"`
	Match       MatchSpec  `yaml:"match" json:"match"`
	Description string     `yaml:"description" json:"description"`
	BypassHint  string     `yaml:"bypass_hint,omitempty" json:"bypass_hint,omitempty"`
	Details     string     `yaml:"details,omitempty" json:"details,omitempty"`
}

// CookieSignature maps a cookie name pattern to provider and risk metadata.
type CookieSignature struct {
	Pattern        string         `yaml:"pattern" json:"pattern" validate:"required"`
	Provider       string         `yaml:"provider" json:"provider" validate:"required"`
	Purpose        string         `yaml:"purpose" json:"purpose"`
	Category       CookieCategory `yaml:"category" json:"category" validate:"required,oneof=bot-protection session analytics tracking functional unknown"`
	Risk           Risk           `yaml:"risk" json:"risk" validate:"required,oneof=critical high medium low"`
	BypassRequired bool           `yaml:"bypass_required" json:"bypass_required"`
	Details        string         `yaml:"details" json:"details"`
}

// Response is one evidence record produced by a probe: status code, headers, cookies and
// an optional body. Header names are case-insensitive.
type Response struct {
	StatusCode int               `json:"status_code" yaml:"status_code"`
	Headers    map[string]string `json:"headers" yaml:"headers"`
	Cookies    map[string]string `json:"cookies" yaml:"cookies"`
	Body       string            `json:"body,omitempty" yaml:"body,omitempty"`
}

// Match pairs a Rule with the evidence that triggered it.
type Match struct {
	Rule     Rule     `json:"rule"`
	Evidence []string `json:"evidence"`
}

// StackEntry is one row of the deduplicated technology summary.
type StackEntry struct {
	Name       string     `json:"name"`
	Category   Category   `json:"category"`
	Confidence Confidence `json:"confidence"`
}

// SecurityHeader reports the presence of one hardening header.
type SecurityHeader struct {
	Name    string `json:"name"`
	Present bool   `json:"present"`
	Value   string `json:"value,omitempty"`
}

// CookieAnalysis is the classification of one observed cookie.
type CookieAnalysis struct {
	Name           string         `json:"name"`
	Value          string         `json:"value"`
	Provider       string         `json:"provider"`
	Purpose        string         `json:"purpose"`
	Category       CookieCategory `json:"category"`
	Risk           Risk           `json:"risk"`
	BypassRequired bool           `json:"bypass_required"`
	Details        string         `json:"details"`
}

// RawEvidence is the merge of every supplied record. Later records overwrite earlier
// headers and cookies of the same name; bodies are concatenated.
type RawEvidence struct {
	Headers map[string]string `json:"headers"`
	Cookies map[string]string `json:"cookies"`
	Body    string            `json:"body,omitempty"`
}

// Result is the output of one fingerprint run.
type Result struct {
	Stack           []StackEntry     `json:"stack"`
	Matches         []Match          `json:"matches"`
	SecurityHeaders []SecurityHeader `json:"security_headers"`
	CookieAnalysis  []CookieAnalysis `json:"cookie_analysis"`
	Raw             RawEvidence      `json:"raw"`
}
