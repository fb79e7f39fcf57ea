package fingerprint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustCompile(t *testing.T, rule Rule) *compiledRule {
	t.Helper()
	compiled, err := compileRule(rule)
	require.NoError(t, err)
	return &compiled
}

func TestCompiledRule_Match(t *testing.T) {
	tests := []struct {
		name string
		spec MatchSpec
		resp Response
		want []string
	}{
		{
			name: "no checks never match",
			spec: MatchSpec{},
			resp: Response{StatusCode: 200, Headers: map[string]string{"server": "x"}},
			want: nil,
		},
		{
			name: "cookie pattern is case-insensitive and sorted",
			spec: MatchSpec{Cookie: "^incap_ses_"},
			resp: Response{Cookies: map[string]string{"INCAP_SES_2": "b", "incap_ses_1": "a", "other": "c"}},
			want: []string{"Cookie: INCAP_SES_2=b", "Cookie: incap_ses_1=a"},
		},
		{
			name: "exact header presence",
			spec: MatchSpec{Header: "X-Sucuri-ID"},
			resp: Response{Headers: map[string]string{"x-sucuri-id": "1234"}},
			want: []string{"Header: x-sucuri-id: 1234"},
		},
		{
			name: "exact header does not match family members",
			spec: MatchSpec{Header: "x-kpsdk-"},
			resp: Response{Headers: map[string]string{"x-kpsdk-ct": "1"}},
			want: nil,
		},
		{
			name: "header value must match",
			spec: MatchSpec{Header: "server", HeaderValue: "^nginx"},
			resp: Response{Headers: map[string]string{"server": "Apache"}},
			want: nil,
		},
		{
			name: "header value case-insensitive",
			spec: MatchSpec{Header: "server", HeaderValue: "^NGINX"},
			resp: Response{Headers: map[string]string{"server": "nginx/1.25"}},
			want: []string{"Header: server: nginx/1.25"},
		},
		{
			name: "prefix family lists every member",
			spec: MatchSpec{Header: "x-amz-cf-", HeaderPrefix: true},
			resp: Response{Headers: map[string]string{"x-amz-cf-pop": "FRA56", "x-amz-cf-id": "abc", "x-amzn-trace": "t"}},
			want: []string{"Header: x-amz-cf-id: abc", "Header: x-amz-cf-pop: FRA56"},
		},
		{
			name: "prefix family with value filter",
			spec: MatchSpec{Header: "x-cache-", HeaderPrefix: true, HeaderValue: "hit"},
			resp: Response{Headers: map[string]string{"x-cache-a": "HIT", "x-cache-b": "MISS"}},
			want: []string{"Header: x-cache-a: HIT"},
		},
		{
			name: "body pattern quotes the pattern",
			spec: MatchSpec{Body: `hcaptcha\.com`},
			resp: Response{Body: `<script src="https://HCAPTCHA.com/1/api.js">`},
			want: []string{`Body: matched /hcaptcha\.com/`},
		},
		{
			name: "empty body never matches",
			spec: MatchSpec{Body: ".*"},
			resp: Response{},
			want: nil,
		},
		{
			name: "status only rule is self sufficient",
			spec: MatchSpec{Status: 429},
			resp: Response{StatusCode: 429},
			want: []string{"Status: 429"},
		},
		{
			name: "status mismatch rejects",
			spec: MatchSpec{Header: "x-datadome", Status: 403},
			resp: Response{StatusCode: 200, Headers: map[string]string{"x-datadome": "protected"}},
			want: nil,
		},
		{
			name: "status alone is not enough when other checks exist",
			spec: MatchSpec{Header: "x-datadome", Status: 403},
			resp: Response{StatusCode: 403},
			want: nil,
		},
		{
			name: "status appended after other evidence",
			spec: MatchSpec{Header: "x-datadome", Status: 403},
			resp: Response{StatusCode: 403, Headers: map[string]string{"x-datadome": "protected"}},
			want: []string{"Header: x-datadome: protected", "Status: 403"},
		},
		{
			name: "checks contribute in cookie header body order",
			spec: MatchSpec{Cookie: "^dd$", Header: "x-dd", Body: "dd"},
			resp: Response{Headers: map[string]string{"x-dd": "1"}, Cookies: map[string]string{"dd": "v"}, Body: "dd"},
			want: []string{"Cookie: dd=v", "Header: x-dd: 1", "Body: matched /dd/"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := mustCompile(t, Rule{ID: "t", Name: "T", Category: CategoryFirewall, Confidence: ConfidenceHigh, Match: tt.spec})
			require.Equal(t, tt.want, rule.match(normalize(tt.resp)))
		})
	}
}

func TestEvidencePreview(t *testing.T) {
	long := strings.Repeat("v", 41)
	require.Equal(t, "Cookie: c="+strings.Repeat("v", 40)+"...", cookieEvidence("c", long))
	require.Equal(t, "Header: h: "+strings.Repeat("v", 40)+"...", headerEvidence("h", long))
	require.Equal(t, "Header: h: "+strings.Repeat("v", 40), headerEvidence("h", strings.Repeat("v", 40)))
}

func TestNormalize(t *testing.T) {
	out := normalize(Response{
		StatusCode: 301,
		Headers:    map[string]string{"Server": "upper", "server": "lower", "Via": "1.1 vegur"},
		Cookies:    map[string]string{"Session": "keep-case"},
	})
	require.Equal(t, 301, out.StatusCode)
	require.Equal(t, map[string]string{"server": "lower", "via": "1.1 vegur"}, out.Headers)
	require.Equal(t, map[string]string{"Session": "keep-case"}, out.Cookies)
}
