package fingerprint

// BuildStack summarises ordered matches into one entry per display name, skipping
// security header matches. The first occurrence of a name wins.
func BuildStack(matches []Match) []StackEntry {
	stack := make([]StackEntry, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if m.Rule.Category == CategorySecurityHeader {
			continue
		}
		if _, dup := seen[m.Rule.Name]; dup {
			continue
		}
		seen[m.Rule.Name] = struct{}{}
		stack = append(stack, StackEntry{
			Name:       m.Rule.Name,
			Category:   m.Rule.Category,
			Confidence: m.Rule.Confidence,
		})
	}
	return stack
}
