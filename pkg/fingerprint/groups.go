package fingerprint

// Group is a display section of matches sharing a category.
type Group struct {
	Category Category `json:"category"`
	Label    string   `json:"label"`
	Icon     string   `json:"icon"`
	Matches  []Match  `json:"matches"`
}

type groupStyle struct {
	category Category
	label    string
	icon     string
}

var groupStyles = []groupStyle{
	{CategoryBotProtection, "Bot Protection", "shield-x"},
	{CategoryFirewall, "WAF / Firewall", "shield"},
	{CategoryCaptcha, "CAPTCHA", "puzzle"},
	{CategoryCDN, "CDN", "globe"},
	{CategoryServer, "Server", "server"},
	{CategoryFramework, "Framework", "code"},
	{CategoryCMS, "CMS", "layers"},
	{CategoryHosting, "Hosting Platform", "cloud"},
	{CategoryAnalytics, "Analytics / RUM", "bar-chart"},
	{CategoryTracking, "Ad Tracking", "target"},
	{CategoryIdentity, "Identity", "user"},
	{CategorySecurityHeader, "Security Headers", "lock"},
}

// GroupMatches buckets matches into the fixed display groups. Empty groups are omitted and
// matches keep their relative order inside a group.
func GroupMatches(matches []Match) []Group {
	byCategory := make(map[Category][]Match)
	for _, m := range matches {
		byCategory[m.Rule.Category] = append(byCategory[m.Rule.Category], m)
	}

	groups := make([]Group, 0, len(byCategory))
	for _, style := range groupStyles {
		members := byCategory[style.category]
		if len(members) == 0 {
			continue
		}
		groups = append(groups, Group{
			Category: style.category,
			Label:    style.label,
			Icon:     style.icon,
			Matches:  members,
		})
	}
	return groups
}
