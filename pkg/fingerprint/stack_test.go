package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildStack(t *testing.T) {
	matches := []Match{
		{Rule: Rule{Name: "Cloudflare", Category: CategoryCDN, Confidence: ConfidenceHigh}},
		{Rule: Rule{Name: "nginx", Category: CategoryServer, Confidence: ConfidenceMedium}},
		{Rule: Rule{Name: "Cloudflare", Category: CategoryBotProtection, Confidence: ConfidenceLow}},
	}

	stack := BuildStack(matches)
	require.Equal(t, []StackEntry{
		{Name: "Cloudflare", Category: CategoryCDN, Confidence: ConfidenceHigh},
		{Name: "nginx", Category: CategoryServer, Confidence: ConfidenceMedium},
	}, stack)

	require.Empty(t, BuildStack(nil))
}

func TestAuditSecurityHeaders(t *testing.T) {
	audit := AuditSecurityHeaders(map[string]string{
		"Strict-Transport-Security": "max-age=31536000",
		"x-frame-options":           "DENY",
	})
	require.Len(t, audit, len(SecurityHeaderNames()))

	byName := make(map[string]SecurityHeader)
	for _, h := range audit {
		byName[h.Name] = h
	}
	require.True(t, byName["strict-transport-security"].Present)
	require.Equal(t, "max-age=31536000", byName["strict-transport-security"].Value)
	require.True(t, byName["x-frame-options"].Present)
	require.False(t, byName["content-security-policy"].Present)
	require.Empty(t, byName["content-security-policy"].Value)

	for i, name := range SecurityHeaderNames() {
		require.Equal(t, name, audit[i].Name)
	}
}
