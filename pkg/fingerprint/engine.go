package fingerprint

import (
	"cmp"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// Engine runs a compiled catalog over evidence records. An Engine never changes after
// construction and is safe for concurrent use.
type Engine struct {
	catalog *Catalog
	logger  zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug output. Without it the engine logs nothing.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine returns an engine over catalog. A nil catalog selects Default().
func NewEngine(catalog *Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.catalog == nil {
		e.catalog = Default()
	}
	return e
}

// Catalog returns the catalog the engine evaluates.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Fingerprint classifies the supplied records. Records are matched individually in input
// order and merged only for Result.Raw. An empty input yields an empty result with the
// full security header list, every entry absent.
func (e *Engine) Fingerprint(responses []Response) *Result {
	records := make([]Response, len(responses))
	for i, resp := range responses {
		records[i] = normalize(resp)
	}

	matches := e.aggregate(records)
	raw := mergeRaw(records)

	e.logger.Debug().
		Int("records", len(records)).
		Int("matches", len(matches)).
		Msg("Fingerprint complete")

	return &Result{
		Stack:           BuildStack(matches),
		Matches:         matches,
		SecurityHeaders: AuditSecurityHeaders(raw.Headers),
		CookieAnalysis:  e.catalog.classifyRecords(records),
		Raw:             raw,
	}
}

// aggregate runs every rule over every record, merges matches by display name, adds
// auto-detected banners and sorts the outcome.
func (e *Engine) aggregate(records []Response) []Match {
	set := newMatchSet()
	for i := range e.catalog.rules {
		rule := &e.catalog.rules[i]
		for _, record := range records {
			if evidence := rule.match(record); len(evidence) > 0 {
				set.add(rule.Rule, evidence)
			}
		}
	}
	autodetect(set, records)

	matches := set.matches
	slices.SortStableFunc(matches, func(a, b Match) int {
		if c := cmp.Compare(a.Rule.Category.priority(), b.Rule.Category.priority()); c != 0 {
			return c
		}
		return cmp.Compare(a.Rule.Confidence.rank(), b.Rule.Confidence.rank())
	})
	return matches
}

// banner describes a header whose raw value names a technology.
type banner struct {
	header      string
	id          string
	category    Category
	description string
}

var banners = []banner{
	{header: "server", id: "auto-server", category: CategoryServer, description: "Server banner"},
	{header: "x-powered-by", id: "auto-powered-by", category: CategoryFramework, description: "X-Powered-By banner"},
}

// autodetect surfaces Server and X-Powered-By values that no catalog rule of the same
// category already cites.
func autodetect(set *matchSet, records []Response) {
	for _, record := range records {
		for _, b := range banners {
			value, ok := record.Headers[b.header]
			if !ok {
				continue
			}
			name := strings.TrimSpace(value)
			if name == "" {
				continue
			}
			evidence := headerEvidence(b.header, value)
			if set.cites(b.category, evidence) {
				continue
			}
			set.add(Rule{
				ID:          b.id,
				Name:        name,
				Category:    b.category,
				Confidence:  ConfidenceHigh,
				Description: b.description + ": " + name,
			}, []string{evidence})
		}
	}
}

// matchSet accumulates matches keyed by rule display name in first-seen order.
type matchSet struct {
	matches []Match
	index   map[string]int
	cited   []map[string]struct{}
}

func newMatchSet() *matchSet {
	return &matchSet{
		matches: make([]Match, 0),
		index:   make(map[string]int),
	}
}

// add merges evidence for rule. The retained rule is replaced only by a rule of strictly
// higher confidence, so a match's confidence never decreases.
func (s *matchSet) add(rule Rule, evidence []string) {
	i, ok := s.index[rule.Name]
	if !ok {
		i = len(s.matches)
		s.index[rule.Name] = i
		s.matches = append(s.matches, Match{Rule: rule, Evidence: make([]string, 0, len(evidence))})
		s.cited = append(s.cited, make(map[string]struct{}, len(evidence)))
	} else if rule.Confidence.Higher(s.matches[i].Rule.Confidence) {
		s.matches[i].Rule = rule
	}

	for _, ev := range evidence {
		if _, dup := s.cited[i][ev]; dup {
			continue
		}
		s.cited[i][ev] = struct{}{}
		s.matches[i].Evidence = append(s.matches[i].Evidence, ev)
	}
}

// cites reports whether any match of category already lists evidence.
func (s *matchSet) cites(category Category, evidence string) bool {
	for i, m := range s.matches {
		if m.Rule.Category != category {
			continue
		}
		if _, ok := s.cited[i][evidence]; ok {
			return true
		}
	}
	return false
}

// mergeRaw folds records into one view. Later headers and cookies overwrite earlier ones
// and bodies are concatenated in order.
func mergeRaw(records []Response) RawEvidence {
	raw := RawEvidence{
		Headers: make(map[string]string),
		Cookies: make(map[string]string),
	}
	var body strings.Builder
	for _, record := range records {
		for name, value := range record.Headers {
			raw.Headers[name] = value
		}
		for name, value := range record.Cookies {
			raw.Cookies[name] = value
		}
		body.WriteString(record.Body)
	}
	raw.Body = body.String()
	return raw
}
