package stats

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var languageNames = map[string]string{
	"en":    "English",
	"local": "Local",
	"ar":    "Arabic",
	"es":    "Spanish",
	"fr":    "French",
	"pt":    "Portuguese",
	"ru":    "Russian",
	"sw":    "Swahili",
}

var titleCaser = cases.Title(language.Und)

var (
	reTotalPhrase = regexp.MustCompile(`Total (?:Records|Entries)`)
	textReplacer  = strings.NewReplacer("\r", " ", "\n", " ", ":", ";")
	labelReplacer = strings.NewReplacer("\r", " ", "\n", " ", ":", ";", "(", "[", ")", "]")
)

// freeText rewrites title, correction and note text so no part of it reads back
// as a total or a distribution line. Every such line needs a colon.
func freeText(s string) string {
	return strings.TrimSpace(textReplacer.Replace(s))
}

// reportLabel rewrites a distribution label into a form Parse returns unchanged.
// It is idempotent.
func reportLabel(s string) string {
	s = strings.TrimSpace(labelReplacer.Replace(s))
	s = reTotalPhrase.ReplaceAllStringFunc(s, strings.ToLower)
	if s == "" {
		return "Unknown"
	}
	return s
}

// LanguageName returns the report label for a language code. Unknown codes are
// title-cased ("xh" -> "Xh"); an empty code is reported as "Unknown".
func LanguageName(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return "Unknown"
	}
	if name, ok := languageNames[code]; ok {
		return name
	}
	return titleCaser.String(code)
}

// LanguageCode is the inverse of LanguageName.
func LanguageCode(name string) string {
	for code, n := range languageNames {
		if strings.EqualFold(n, name) {
			return code
		}
	}
	if strings.EqualFold(name, "Unknown") {
		return "unknown"
	}
	return strings.ToLower(name)
}

// Builder accumulates per-row language and entity type counts into a Report.
type Builder struct {
	report Report
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{report: NewReport()}
}

// Add counts one record. Labels are stored in the form Format writes them, so
// parentheses become brackets and colons become semicolons.
func (b *Builder) Add(languageCode, entityType string) {
	b.report.TotalRecords++
	b.report.Languages[reportLabel(LanguageName(languageCode))]++
	if entityType = strings.TrimSpace(entityType); entityType != "" {
		b.report.EntityTypes[reportLabel(entityType)]++
	}
}

// Report returns a copy of the accumulated counts.
func (b *Builder) Report() Report {
	out := NewReport()
	out.TotalRecords = b.report.TotalRecords
	for k, v := range b.report.Languages {
		out.Languages[k] = v
	}
	for k, v := range b.report.EntityTypes {
		out.EntityTypes[k] = v
	}
	return out
}

// Document is a report plus the free-text parts of the canonical template.
type Document struct {
	Title       string
	Report      Report
	Corrections []string
	Notes       []string
}

// Format writes doc in the canonical template read by Parse. Distribution lines
// are ordered by count, largest first, then by label. Labels and free text are
// rewritten as needed so the output parses back to the same counts.
func Format(w io.Writer, doc Document) error {
	bw := bufio.NewWriter(w)
	r := doc.Report

	fmt.Fprintf(bw, "%s Processing Statistics\n", freeText(doc.Title))
	fmt.Fprintln(bw, "================================")
	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "Total Records: %d\n", r.TotalRecords)
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, languageHeader)
	for _, kv := range sortedCounts(r.Languages) {
		fmt.Fprintf(bw, "- %s (%s): %d records (%s)\n", kv.label, LanguageCode(kv.label), kv.count, percent(kv.count, r.TotalRecords))
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, entityHeader)
	for _, kv := range sortedCounts(r.EntityTypes) {
		fmt.Fprintf(bw, "- %s: %d records (%s)\n", kv.label, kv.count, percent(kv.count, r.TotalRecords))
	}
	fmt.Fprintln(bw)

	writeList(bw, "Corrections Made:", doc.Corrections)
	fmt.Fprintln(bw)
	writeList(bw, "Notes:", doc.Notes)

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write stats report: %w", err)
	}
	return nil
}

// String renders doc with Format.
func (doc Document) String() string {
	var sb strings.Builder
	_ = Format(&sb, doc)
	return sb.String()
}

type labelCount struct {
	label string
	count int
}

func sortedCounts(m map[string]int) []labelCount {
	merged := make(map[string]int, len(m))
	for k, v := range m {
		merged[reportLabel(k)] += v
	}
	out := make([]labelCount, 0, len(merged))
	for k, v := range merged {
		out = append(out, labelCount{label: k, count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count == out[j].count {
			return out[i].label < out[j].label
		}
		return out[i].count > out[j].count
	})
	return out
}

func percent(n, total int) string {
	if total <= 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)/float64(total)*100)
}

func writeList(w io.Writer, header string, items []string) {
	fmt.Fprintln(w, header)
	if len(items) == 0 {
		fmt.Fprintln(w, "- None")
		return
	}
	for _, it := range items {
		fmt.Fprintf(w, "- %s\n", freeText(it))
	}
}
