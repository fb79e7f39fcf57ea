package fingerprint

import (
	"slices"
	"strings"

	"github.com/vulntor/siteprint/pkg/stringutil"
)

const (
	unknownProvider = "Unknown"
	unknownPurpose  = "Unrecognized private/tracking cookie"
	unknownDetails  = "Private-prefix cookie with no known provider match. Could be custom bot protection, analytics, or session management."
)

// ClassifyCookie looks up the first signature whose pattern matches name. Names starting
// with "_" that match nothing are reported as an unknown medium risk cookie; any other
// unmatched name returns false.
func (c *Catalog) ClassifyCookie(name, value string) (CookieAnalysis, bool) {
	for _, sig := range c.signatures {
		if sig.pattern.MatchString(name) {
			return CookieAnalysis{
				Name:           name,
				Value:          stringutil.Preview(value),
				Provider:       sig.Provider,
				Purpose:        sig.Purpose,
				Category:       sig.Category,
				Risk:           sig.Risk,
				BypassRequired: sig.BypassRequired,
				Details:        sig.Details,
			}, true
		}
	}
	if strings.HasPrefix(name, "_") {
		return CookieAnalysis{
			Name:     name,
			Value:    stringutil.Preview(value),
			Provider: unknownProvider,
			Purpose:  unknownPurpose,
			Category: CookieUnknown,
			Risk:     RiskMedium,
			Details:  unknownDetails,
		}, true
	}
	return CookieAnalysis{}, false
}

// ClassifyCookies classifies every distinct cookie name across responses, keeping the
// first value seen for each name, and orders rows by risk with critical first.
func (c *Catalog) ClassifyCookies(responses []Response) []CookieAnalysis {
	return c.classifyRecords(responses)
}

func (c *Catalog) classifyRecords(records []Response) []CookieAnalysis {
	firstSeen := make(map[string]string)
	for _, record := range records {
		for name, value := range record.Cookies {
			if _, ok := firstSeen[name]; !ok {
				firstSeen[name] = value
			}
		}
	}

	analysis := make([]CookieAnalysis, 0, len(firstSeen))
	for _, name := range sortedKeys(firstSeen) {
		if row, ok := c.ClassifyCookie(name, firstSeen[name]); ok {
			analysis = append(analysis, row)
		}
	}
	slices.SortStableFunc(analysis, func(a, b CookieAnalysis) int {
		return a.Risk.Rank() - b.Risk.Rank()
	})
	return analysis
}
