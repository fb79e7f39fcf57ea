package fingerprint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyCookie(t *testing.T) {
	catalog := Default()

	tests := []struct {
		name     string
		cookie   string
		ok       bool
		provider string
		risk     Risk
		bypass   bool
	}{
		{name: "akamai", cookie: "_abck", ok: true, provider: "Akamai Bot Manager", risk: RiskCritical, bypass: true},
		{name: "case insensitive", cookie: "DATADOME", ok: true, provider: "DataDome", risk: RiskCritical, bypass: true},
		{name: "f5 ts cookie", cookie: "TS01a2b3c4", ok: true, provider: "F5 BIG-IP / Shape Security", risk: RiskHigh, bypass: false},
		{name: "session", cookie: "JSESSIONID", ok: true, provider: "Application Session", risk: RiskMedium},
		{name: "analytics", cookie: "_gid", ok: true, provider: "Google Analytics", risk: RiskLow},
		{name: "double underscore fallback", cookie: "__custom", ok: true, provider: "Unknown", risk: RiskMedium},
		{name: "single underscore fallback", cookie: "_x", ok: true, provider: "Unknown", risk: RiskMedium},
		{name: "plain unknown omitted", cookie: "lang", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, ok := catalog.ClassifyCookie(tt.cookie, "value")
			require.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			require.Equal(t, tt.cookie, row.Name)
			require.Equal(t, tt.provider, row.Provider)
			require.Equal(t, tt.risk, row.Risk)
			require.Equal(t, tt.bypass, row.BypassRequired)
		})
	}
}

func TestClassifyCookie_ValuePreview(t *testing.T) {
	row, ok := Default().ClassifyCookie("datadome", strings.Repeat("d", 100))
	require.True(t, ok)
	require.Equal(t, strings.Repeat("d", 40)+"...", row.Value)
}

func TestClassifyCookies_SortedByRisk(t *testing.T) {
	rows := Default().ClassifyCookies([]Response{{
		Cookies: map[string]string{
			"_ga":       "GA1",
			"PHPSESSID": "s",
			"_abc":      "q",
			"__cf_bm":   "t",
			"lang":      "en",
		},
	}})

	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	require.Equal(t, []string{"__cf_bm", "PHPSESSID", "_abc", "_ga"}, names)

	for i := 1; i < len(rows); i++ {
		require.LessOrEqual(t, rows[i-1].Risk.Rank(), rows[i].Risk.Rank())
	}
}

func TestRiskRank(t *testing.T) {
	require.Equal(t, 0, RiskCritical.Rank())
	require.Equal(t, 3, RiskLow.Rank())
	require.Equal(t, 4, Risk("").Rank())
}
