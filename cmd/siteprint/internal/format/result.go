package format

import (
	"fmt"
	"strings"

	"github.com/vulntor/siteprint/pkg/fingerprint"
	"github.com/vulntor/siteprint/pkg/fingerprint/catalogsync"
)

type groupedView struct {
	Stack           []fingerprint.StackEntry     `json:"stack"`
	Groups          []fingerprint.Group          `json:"groups"`
	SecurityHeaders []fingerprint.SecurityHeader `json:"security_headers"`
	CookieAnalysis  []fingerprint.CookieAnalysis `json:"cookie_analysis"`
}

// PrintResult renders a fingerprint run. In table mode the stack comes first, followed by
// either a flat match list or one section per display group.
func (f *formatter) PrintResult(result *fingerprint.Result, grouped bool) error {
	if result == nil {
		return nil
	}
	if f.mode == ModeJSON {
		if grouped {
			return f.PrintJSON(groupedView{
				Stack:           result.Stack,
				Groups:          fingerprint.GroupMatches(result.Matches),
				SecurityHeaders: result.SecurityHeaders,
				CookieAnalysis:  result.CookieAnalysis,
			})
		}
		return f.PrintJSON(result)
	}

	if len(result.Stack) == 0 {
		if err := f.line("No technologies detected."); err != nil {
			return err
		}
	} else {
		if err := f.section("Stack"); err != nil {
			return err
		}
		rows := make([][]string, 0, len(result.Stack))
		for _, s := range result.Stack {
			rows = append(rows, []string{s.Name, string(s.Category), string(s.Confidence)})
		}
		if err := f.PrintTable([]string{"name", "category", "confidence"}, rows); err != nil {
			return err
		}
	}

	if grouped {
		for _, g := range fingerprint.GroupMatches(result.Matches) {
			if err := f.printGroup(g); err != nil {
				return err
			}
		}
	} else if len(result.Matches) > 0 {
		if err := f.section("Matches"); err != nil {
			return err
		}
		rows := make([][]string, 0, len(result.Matches))
		for _, m := range result.Matches {
			rows = append(rows, []string{m.Rule.ID, m.Rule.Name, string(m.Rule.Category), strings.Join(m.Evidence, "; ")})
		}
		if err := f.PrintTable([]string{"id", "name", "category", "evidence"}, rows); err != nil {
			return err
		}
	}

	if len(result.CookieAnalysis) > 0 {
		if err := f.section("Cookies"); err != nil {
			return err
		}
		rows := make([][]string, 0, len(result.CookieAnalysis))
		for _, c := range result.CookieAnalysis {
			rows = append(rows, []string{c.Name, c.Provider, string(c.Category), string(c.Risk), yesNo(c.BypassRequired)})
		}
		if err := f.PrintTable([]string{"cookie", "provider", "category", "risk", "bypass"}, rows); err != nil {
			return err
		}
	}

	if len(result.SecurityHeaders) > 0 {
		if err := f.section("Security Headers"); err != nil {
			return err
		}
		for _, h := range result.SecurityHeaders {
			mark := f.style(missingStyle, "✗")
			if h.Present {
				mark = f.style(presentStyle, "✓")
			}
			if err := f.line(fmt.Sprintf("  %s %s", mark, h.Name)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *formatter) printGroup(g fingerprint.Group) error {
	if err := f.section(fmt.Sprintf("%s (%d)", g.Label, len(g.Matches))); err != nil {
		return err
	}
	for _, m := range g.Matches {
		if err := f.line(fmt.Sprintf("  %s %s", m.Rule.Name, f.style(labelStyle, "["+string(m.Rule.Confidence)+"]"))); err != nil {
			return err
		}
		for _, ev := range m.Evidence {
			if err := f.line("      " + f.style(labelStyle, ev)); err != nil {
				return err
			}
		}
		if m.Rule.BypassHint != "" {
			if err := f.line("      " + f.style(hintStyle, "hint: "+m.Rule.BypassHint)); err != nil {
				return err
			}
		}
	}
	return nil
}

// PrintValidationReport lists every finding, errors first.
func (f *formatter) PrintValidationReport(report *fingerprint.ValidationReport) error {
	if report == nil {
		return nil
	}
	if f.mode == ModeJSON {
		return f.PrintJSON(map[string]any{
			"valid":  report.IsValid(),
			"report": report,
		})
	}

	if err := f.line(fmt.Sprintf("Checked %d rules and %d cookie signatures", report.RuleCount, report.SignatureCount)); err != nil {
		return err
	}
	findings := append(append([]fingerprint.ValidationError(nil), report.Errors...), report.Warnings...)
	if len(findings) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(findings))
	for _, e := range findings {
		rows = append(rows, []string{e.Severity, e.RuleID, e.Field, e.Message})
	}
	return f.PrintTable([]string{"severity", "rule", "field", "message"}, rows)
}

// PrintSyncResult reports where the synced catalog was written.
func (f *formatter) PrintSyncResult(result *catalogsync.Result) error {
	if result == nil {
		return nil
	}
	if f.mode == ModeJSON {
		return f.PrintJSON(result)
	}
	warnings := 0
	if result.Report != nil {
		warnings = len(result.Report.Warnings)
	}
	return f.PrintSuccessSummary("sync", fmt.Sprintf("%d rules cached at %s (%d warnings)", result.RuleCount, result.Path, warnings))
}

func (f *formatter) section(title string) error {
	_, err := fmt.Fprintf(f.stdout, "\n%s\n", f.style(sectionStyle, title))
	return err
}

func (f *formatter) line(s string) error {
	_, err := fmt.Fprintln(f.stdout, s)
	return err
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
