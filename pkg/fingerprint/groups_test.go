package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroupMatches(t *testing.T) {
	matches := []Match{
		{Rule: Rule{Name: "Cloudflare Bot Management", Category: CategoryBotProtection}},
		{Rule: Rule{Name: "Cloudflare", Category: CategoryCDN}},
		{Rule: Rule{Name: "Fastly CDN", Category: CategoryCDN}},
		{Rule: Rule{Name: "HSTS", Category: CategorySecurityHeader}},
		{Rule: Rule{Name: "Meta Pixel", Category: CategoryTracking}},
		{Rule: Rule{Name: "Auth0", Category: CategoryIdentity}},
	}

	groups := GroupMatches(matches)
	require.Len(t, groups, 5)

	labels := make([]string, len(groups))
	icons := make([]string, len(groups))
	for i, g := range groups {
		labels[i] = g.Label
		icons[i] = g.Icon
	}
	require.Equal(t, []string{"Bot Protection", "CDN", "Ad Tracking", "Identity", "Security Headers"}, labels)
	require.Equal(t, []string{"shield-x", "globe", "target", "user", "lock"}, icons)
	require.Equal(t, []string{"Cloudflare", "Fastly CDN"}, matchNames(groups[1].Matches))
}

func TestGroupMatches_Empty(t *testing.T) {
	require.Empty(t, GroupMatches(nil))
}

func TestGroupStylesCoverEveryCategory(t *testing.T) {
	require.Len(t, groupStyles, len(Categories()))
	for _, c := range Categories() {
		found := false
		for _, s := range groupStyles {
			if s.category == c {
				found = true
				break
			}
		}
		require.True(t, found, "missing group for %s", c)
	}
}
