package format

import "github.com/charmbracelet/lipgloss"

var (
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	hintStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("214"))
	presentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	missingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// style renders s with st when colored output is on.
func (f *formatter) style(st lipgloss.Style, s string) string {
	if !f.color {
		return s
	}
	return st.Render(s)
}
