// Package render formats classifications and stats reports for the terminal.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"yashubustudio/entityclassifier/entity"
	"yashubustudio/entityclassifier/stats"
)

// Theme defines the color scheme for console output
type Theme struct {
	Name       lipgloss.Style
	Confidence lipgloss.Style
	Dim        lipgloss.Style
	Summary    lipgloss.Style
	Categories map[entity.Category]lipgloss.Style
}

// DefaultTheme is the default color scheme
var DefaultTheme = Theme{
	Name:       lipgloss.NewStyle().Bold(true),
	Confidence: lipgloss.NewStyle().Foreground(lipgloss.Color("221")),
	Dim:        lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	Summary:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82")),
	Categories: map[entity.Category]lipgloss.Style{
		entity.Individual: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		entity.FamilyFirm: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		entity.Company:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("82")),
		entity.Government: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208")),
	},
}

// Printer writes styled output to w.
type Printer struct {
	w     io.Writer
	theme Theme
}

// NewPrinter returns a Printer using DefaultTheme.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, theme: DefaultTheme}
}

func (p *Printer) category(c entity.Category) string {
	if style, ok := p.theme.Categories[c]; ok {
		return style.Render(c.Label())
	}
	return c.Label()
}

// Result prints one line per classification.
func (p *Printer) Result(name string, res entity.Result) {
	label := p.category(res.Category)
	if !res.HasSignal() {
		label = p.theme.Dim.Render("no signal")
	}
	fmt.Fprintf(p.w, "%s  %s %s\n", p.theme.Name.Render(name), label,
		p.theme.Confidence.Render(fmt.Sprintf("%d%%", res.Confidence)))
}

// Analysis prints a result followed by the languages, patterns and scores behind it.
func (p *Printer) Analysis(a entity.Analysis) {
	p.Result(a.Name, a.Result)
	for _, l := range a.Languages {
		fmt.Fprintf(p.w, "    %s %s\n", p.theme.Dim.Render("language"), l.Name+": "+strings.Join(l.Words, ", "))
	}
	for _, m := range a.Patterns {
		fmt.Fprintf(p.w, "    %s %s: %s\n", p.theme.Dim.Render("pattern"), m.Type, m.Match)
	}
	s := a.Result.Scores
	fmt.Fprintf(p.w, "    %s individual=%d family_firm=%d company=%d government=%d\n",
		p.theme.Dim.Render("scores"), s.Individual, s.FamilyFirm, s.Company, s.Government)
	fmt.Fprintf(p.w, "    %s\n", p.theme.Dim.Render(a.Result.Reasoning))
}

// Summary prints the totals of a batch run.
func (p *Printer) Summary(report stats.Report, path string) {
	fmt.Fprintf(p.w, "Classified %s records, results saved to %s\n",
		p.theme.Summary.Render(fmt.Sprintf("%d", report.TotalRecords)), path)
}

// StatsMarkdown renders a report as markdown tables.
func StatsMarkdown(title string, report stats.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "**Total records:** %d\n\n", report.TotalRecords)
	writeTable(&sb, "Language", report.Languages, report.TotalRecords)
	writeTable(&sb, "Entity type", report.EntityTypes, report.TotalRecords)
	return sb.String()
}

func writeTable(sb *strings.Builder, heading string, counts map[string]int, total int) {
	fmt.Fprintf(sb, "## %s\n\n", heading)
	if len(counts) == 0 {
		sb.WriteString("_none_\n\n")
		return
	}
	labels := make([]string, 0, len(counts))
	for k := range counts {
		labels = append(labels, k)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] == counts[labels[j]] {
			return labels[i] < labels[j]
		}
		return counts[labels[i]] > counts[labels[j]]
	})
	fmt.Fprintf(sb, "| %s | Records | Share |\n|---|---:|---:|\n", heading)
	for _, l := range labels {
		share := 0.0
		if total > 0 {
			share = float64(counts[l]) / float64(total) * 100
		}
		fmt.Fprintf(sb, "| %s | %d | %.1f%% |\n", l, counts[l], share)
	}
	sb.WriteString("\n")
}

// Markdown renders md for the terminal. An empty style picks one from the
// terminal background.
func Markdown(md, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
