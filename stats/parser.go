// Package stats reads and writes the per-country processing statistics report.
//
// The report is semi-structured text: a "Total Records: N" line, a
// "Language Distribution:" section and an "Entity Type Distribution:" section whose
// lines start with "-". Parse is tolerant: lines it does not understand are skipped,
// so a garbled report degrades to a partially filled Report instead of an error.
package stats

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

const (
	languageHeader = "Language Distribution:"
	entityHeader   = "Entity Type Distribution:"
)

var (
	reTotal = regexp.MustCompile(`Total (?:Records|Entries):\s*(\d+)`)

	reLanguageRecords = regexp.MustCompile(`- ([^(]+) \(([^)]+)\): (\d+) records`)
	reLanguageEntries = regexp.MustCompile(`- ([^(]+) \(([^)]+)\): (\d+) entries`)

	reEntityRecords = regexp.MustCompile(`- ([^:]+): (\d+) records`)
	reEntityEntries = regexp.MustCompile(`- ([^:]+): (\d+) entries`)
)

// entryLabels maps the plural labels of the "entries" report variant to the
// singular labels used by the "records" variant.
var entryLabels = map[string]string{
	"Companies":           "Company",
	"Individuals":         "Individual",
	"Government Entities": "Government",
	"Family Firms":        "Family Firm",
}

// Report holds the counts extracted from one statistics report.
type Report struct {
	TotalRecords int            `json:"totalRecords"`
	Languages    map[string]int `json:"languages"`
	EntityTypes  map[string]int `json:"entityTypes"`
}

// NewReport returns an empty report with non-nil maps.
func NewReport() Report {
	return Report{
		Languages:   map[string]int{},
		EntityTypes: map[string]int{},
	}
}

// Parse extracts the totals and both distributions from text. It never fails.
func Parse(text string) Report {
	p := newParser()
	for _, line := range strings.Split(text, "\n") {
		p.line(line)
	}
	return p.report
}

// ParseReader is Parse over a stream. Only read errors are returned.
func ParseReader(r io.Reader) (Report, error) {
	p := newParser()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)
	for scanner.Scan() {
		p.line(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return p.report, fmt.Errorf("scan stats report: %w", err)
	}
	return p.report, nil
}

type parser struct {
	report     Report
	inLanguage bool
	inEntity   bool
}

func newParser() *parser {
	return &parser{report: NewReport()}
}

func (p *parser) line(raw string) {
	line := strings.TrimSpace(raw)

	if m := reTotal.FindStringSubmatch(line); m != nil {
		if n, ok := atoi(m[1]); ok {
			p.report.TotalRecords = n
		}
	}

	switch line {
	case languageHeader:
		p.inLanguage, p.inEntity = true, false
		return
	case entityHeader:
		p.inLanguage, p.inEntity = false, true
		return
	}

	if !strings.HasPrefix(line, "-") {
		return
	}
	switch {
	case p.inLanguage:
		m := reLanguageRecords.FindStringSubmatch(line)
		if m == nil {
			m = reLanguageEntries.FindStringSubmatch(line)
		}
		if m == nil {
			return
		}
		if n, ok := atoi(m[3]); ok {
			p.report.Languages[strings.TrimSpace(m[1])] = n
		}
	case p.inEntity:
		label, count, ok := matchEntity(line)
		if ok {
			p.report.EntityTypes[label] = count
		}
	}
}

func matchEntity(line string) (string, int, bool) {
	if m := reEntityRecords.FindStringSubmatch(line); m != nil {
		n, ok := atoi(m[2])
		return strings.TrimSpace(m[1]), n, ok
	}
	m := reEntityEntries.FindStringSubmatch(line)
	if m == nil {
		return "", 0, false
	}
	n, ok := atoi(m[2])
	label := strings.TrimSpace(m[1])
	if canonical, found := entryLabels[label]; found {
		label = canonical
	}
	return label, n, ok
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
