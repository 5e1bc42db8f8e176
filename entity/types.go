package entity

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category is one of the four classification outcomes.
type Category string

const (
	// Individual is a natural person.
	Individual Category = "individual"
	// FamilyFirm is a business run by a family ("& SONS", "FAMILIA", ...).
	FamilyFirm Category = "family_firm"
	// Company is any other commercial entity.
	Company Category = "company"
	// Government covers ministries, central banks and state enterprises.
	Government Category = "government"
)

// Categories lists every category in declared order. Ties resolve to the earliest entry.
var Categories = []Category{Individual, FamilyFirm, Company, Government}

var categoryLabels = map[Category]string{
	Individual: "Individual",
	FamilyFirm: "Family Firm",
	Company:    "Company",
	Government: "Government",
}

// Label returns the human readable name used in stats reports.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// valid reports whether c is one of the declared categories.
func (c Category) valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// ParseCategory accepts either the identifier ("family_firm") or the label
// ("Family Firm"), ignoring case and surrounding space.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, c.Label()) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// PatternType tags which pattern check produced a PatternMatch.
type PatternType int

const (
	PersonalTitle PatternType = iota
	FamilyIndicator
	CompanySuffix
	BusinessTerms
	GovernmentTerms
	ArabicNames
	SpanishNames
	RussianPatterns
	PortugueseTerms
)

var patternTypeNames = [...]string{
	PersonalTitle:   "Personal Title",
	FamilyIndicator: "Family Indicator",
	CompanySuffix:   "Company Suffix",
	BusinessTerms:   "Business Terms",
	GovernmentTerms: "Government Terms",
	ArabicNames:     "Arabic Names",
	SpanishNames:    "Spanish Names",
	RussianPatterns: "Russian Patterns",
	PortugueseTerms: "Portuguese Terms",
}

// String returns the display label, e.g. "Company Suffix".
func (t PatternType) String() string {
	if int(t) >= 0 && int(t) < len(patternTypeNames) {
		return patternTypeNames[t]
	}
	return fmt.Sprintf("PatternType(%d)", int(t))
}

// MarshalJSON encodes the pattern type as its display label.
func (t PatternType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// LanguageGroup is a language whose keyword set matched at least one token of a name.
type LanguageGroup struct {
	Name  string   `json:"name"`
	Words []string `json:"words"`
}

// PatternMatch records one fired pattern check and the text it matched.
type PatternMatch struct {
	Type  PatternType `json:"type"`
	Match string      `json:"match"`
}

// Scores holds the additive per-category rule weights for one name.
type Scores struct {
	Individual int `json:"individual"`
	FamilyFirm int `json:"family_firm"`
	Company    int `json:"company"`
	Government int `json:"government"`
}

// Get returns the score of c, or 0 for an unknown category.
func (s Scores) Get(c Category) int {
	switch c {
	case Individual:
		return s.Individual
	case FamilyFirm:
		return s.FamilyFirm
	case Company:
		return s.Company
	case Government:
		return s.Government
	}
	return 0
}

func (s *Scores) add(c Category, w int) {
	switch c {
	case Individual:
		s.Individual += w
	case FamilyFirm:
		s.FamilyFirm += w
	case Company:
		s.Company += w
	case Government:
		s.Government += w
	}
}

// Total is the sum over all categories.
func (s Scores) Total() int {
	return s.Individual + s.FamilyFirm + s.Company + s.Government
}

// Max returns the first category in declared order holding the highest score.
func (s Scores) Max() (Category, int) {
	best := Categories[0]
	bestScore := s.Get(best)
	for _, c := range Categories[1:] {
		if v := s.Get(c); v > bestScore {
			best, bestScore = c, v
		}
	}
	return best, bestScore
}

// Result is the final classification of a name.
type Result struct {
	Category   Category `json:"category"`
	Confidence int      `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	Scores     Scores   `json:"scores"`
}

// HasSignal reports whether any rule fired. A result without signal still names
// Individual as its category, so callers that need "unclassified" should check this.
func (r Result) HasSignal() bool {
	return r.Scores.Total() > 0
}

// Analysis bundles every intermediate step of a classification.
type Analysis struct {
	Name      string          `json:"name"`
	Words     []string        `json:"words"`
	Languages []LanguageGroup `json:"languages"`
	Patterns  []PatternMatch  `json:"patterns"`
	Result    Result          `json:"result"`
}
