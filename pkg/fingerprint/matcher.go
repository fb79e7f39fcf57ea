package fingerprint

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/vulntor/siteprint/pkg/stringutil"
)

// match runs every check of the rule against one record and returns the evidence it
// produced. A nil result means the rule did not match the record.
func (r *compiledRule) match(resp Response) []string {
	m := r.Match
	if m.Empty() {
		return nil
	}
	if m.Status != 0 && resp.StatusCode != m.Status {
		return nil
	}

	var evidence []string
	if r.cookie != nil {
		for _, name := range sortedKeys(resp.Cookies) {
			if r.cookie.MatchString(name) {
				evidence = append(evidence, cookieEvidence(name, resp.Cookies[name]))
			}
		}
	}

	if r.header != "" {
		if m.HeaderPrefix {
			for _, name := range sortedKeys(resp.Headers) {
				if strings.HasPrefix(name, r.header) && r.valueMatches(resp.Headers[name]) {
					evidence = append(evidence, headerEvidence(name, resp.Headers[name]))
				}
			}
		} else if value, ok := resp.Headers[r.header]; ok && r.valueMatches(value) {
			evidence = append(evidence, headerEvidence(r.header, value))
		}
	}

	if r.body != nil && resp.Body != "" && r.body.MatchString(resp.Body) {
		evidence = append(evidence, bodyEvidence(m.Body))
	}

	if m.Status != 0 {
		if m.Cookie == "" && m.Header == "" && m.Body == "" {
			return []string{statusEvidence(m.Status)}
		}
		if len(evidence) == 0 {
			return nil
		}
		evidence = append(evidence, statusEvidence(m.Status))
	}
	return evidence
}

func (r *compiledRule) valueMatches(value string) bool {
	return r.headerValue == nil || r.headerValue.MatchString(value)
}

func cookieEvidence(name, value string) string {
	return "Cookie: " + name + "=" + stringutil.Preview(value)
}

func headerEvidence(name, value string) string {
	return "Header: " + name + ": " + stringutil.Preview(value)
}

func bodyEvidence(pattern string) string {
	return "Body: matched /" + pattern + "/"
}

func statusEvidence(code int) string {
	return "Status: " + strconv.Itoa(code)
}

// normalize lower-cases header names. When two names differ only by case the value of the
// name that sorts last wins, which keeps the outcome independent of map iteration order.
func normalize(resp Response) Response {
	out := Response{StatusCode: resp.StatusCode, Cookies: resp.Cookies, Body: resp.Body}
	if len(resp.Headers) > 0 {
		out.Headers = make(map[string]string, len(resp.Headers))
		for _, name := range sortedKeys(resp.Headers) {
			out.Headers[strings.ToLower(name)] = resp.Headers[name]
		}
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
