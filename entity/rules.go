package entity

import (
	"regexp"
	"strings"
)

// LanguageRule is a keyword set used for language detection. When the language also
// feeds a pattern check, PatternExclude lists words that count for detection only.
type LanguageRule struct {
	Name           string   `json:"name" toml:"name"`
	Words          []string `json:"words" toml:"words"`
	PatternExclude []string `json:"patternExclude,omitempty" toml:"pattern_exclude,omitempty"`
}

// RuleSet is the overridable part of the rule table. Regex scoring rules are fixed.
type RuleSet struct {
	Languages []LanguageRule `json:"languages" toml:"languages"`
}

var rawLanguageRules = []LanguageRule{
	{
		Name:  "Arabic",
		Words: []string{"MOHAMMED", "AHMED", "KHAN", "ABDUL", "ALI", "HUSSEIN", "AZIZ", "RAHMAN", "ZAHRA"},
	},
	{
		Name:           "Spanish",
		Words:          []string{"MARIA", "GARCIA", "RODRIGUEZ", "FAMILIA", "HIJOS", "EMPRESA"},
		PatternExclude: []string{"EMPRESA"},
	},
	{
		Name:  "African",
		Words: []string{"DENNIS", "KAPUTO", "CHIWELE"},
	},
	{
		Name: "English",
		Words: []string{
			"MR.", "MRS.", "MS.", "DR.", "PROF.", "SHEIKH",
			"LTD", "LIMITED", "INC", "CORP", "COMPANY",
			"&", "AND", "GLOBAL", "MARINE", "SHIPPING", "SERVICES", "INVESTMENTS", "TRADING",
			"GOVERNMENT", "MINISTRY", "DEPARTMENT", "BANK", "RESERVE", "CENTRAL", "NATIONAL",
			"FAMILY", "HOLDINGS", "GROUP", "PARTNERS", "ENTERPRISES",
		},
	},
	{
		Name:  "Russian",
		Words: []string{"KOMPANIYA", "KORPORATSIYA", "KHOLDING"},
	},
	{
		Name:  "Portuguese",
		Words: []string{"EMPRESA", "NACIONAL", "DE", "HIDROCARBONETOS"},
	},
}

// languagePatterns maps the languages whose keyword hits are also reported as
// pattern matches. Languages missing here only take part in detection.
var languagePatterns = map[string]PatternType{
	"Arabic":     ArabicNames,
	"Spanish":    SpanishNames,
	"Russian":    RussianPatterns,
	"Portuguese": PortugueseTerms,
}

var (
	reTitle             = regexp.MustCompile(`(?i)^(MR\.|MRS\.|MS\.|DR\.|PROF\.|SHEIKH)`)
	reFamilyPhrase      = regexp.MustCompile(`(?i)& (SONS|BROTHERS|PARTNERS)`)
	reFamilyWord        = regexp.MustCompile(`(?i)(FAMILY|FAMILIA)`)
	reHeirs             = regexp.MustCompile(`(?i)(HIJOS|PARTNERS)`)
	reCompanySuffix     = regexp.MustCompile(`(?i)(LTD|LIMITED|INC|CORP|COMPANY|PVT|CO)$`)
	reBusinessTerms     = regexp.MustCompile(`(?i)(INVESTMENTS|TRADING|SERVICES|SHIPPING|MARINE|FOODS|HOLDINGS|GROUP|ENTERPRISES)`)
	reInternational     = regexp.MustCompile(`(?i)(GLOBAL|INTERNATIONAL|NATIONAL)`)
	reGovernmentTerms   = regexp.MustCompile(`(?i)(GOVERNMENT|MINISTRY|DEPARTMENT|BANK|RESERVE|CENTRAL|NATIONAL)`)
	reGovernmentBody    = regexp.MustCompile(`(?i)(GOVERNMENT|MINISTRY|DEPARTMENT)`)
	reGovernmentFinance = regexp.MustCompile(`(?i)(BANK|RESERVE|CENTRAL|NATIONAL)`)
	reStateEnterprise   = regexp.MustCompile(`(?i)EMPRESA NACIONAL`)

	// Case-sensitive: only literal upper-case words count as a bare "FIRST LAST" name.
	reTrailingCapsPair = regexp.MustCompile(`[A-Z]{2,}\s[A-Z]{2,}$`)
)

// patternRule reports the first expression that matches. Exprs are tried in order.
type patternRule struct {
	Type  PatternType
	Exprs []*regexp.Regexp
}

var patternRules = []patternRule{
	{Type: PersonalTitle, Exprs: []*regexp.Regexp{reTitle}},
	{Type: FamilyIndicator, Exprs: []*regexp.Regexp{reFamilyPhrase, reFamilyWord}},
	{Type: CompanySuffix, Exprs: []*regexp.Regexp{reCompanySuffix}},
	{Type: BusinessTerms, Exprs: []*regexp.Regexp{reBusinessTerms}},
	{Type: GovernmentTerms, Exprs: []*regexp.Regexp{reGovernmentTerms}},
}

// scoreRule adds Weight to Category when Expr matches. Rules never short-circuit.
type scoreRule struct {
	Category Category
	Expr     *regexp.Regexp
	Weight   int
}

var scoreRules = []scoreRule{
	{Category: Individual, Expr: reTitle, Weight: 45},
	{Category: Individual, Expr: reTrailingCapsPair, Weight: 15},
	{Category: FamilyFirm, Expr: reFamilyPhrase, Weight: 60},
	{Category: FamilyFirm, Expr: reFamilyWord, Weight: 40},
	{Category: FamilyFirm, Expr: reHeirs, Weight: 35},
	{Category: Company, Expr: reCompanySuffix, Weight: 30},
	{Category: Company, Expr: reBusinessTerms, Weight: 20},
	{Category: Company, Expr: reInternational, Weight: 15},
	{Category: Government, Expr: reGovernmentBody, Weight: 50},
	{Category: Government, Expr: reGovernmentFinance, Weight: 45},
	{Category: Government, Expr: reStateEnterprise, Weight: 40},
}

var reasons = map[Category]string{
	Individual: "personal titles and simple structure",
	FamilyFirm: "family business indicators",
	Company:    "business terminology and legal structure",
	Government: "institutional and governmental terms",
}

type compiledLanguage struct {
	name       string
	words      map[string]struct{}
	pattern    PatternType
	hasPattern bool
	excluded   map[string]struct{}
}

// DefaultRuleSet returns a copy of the built-in language keyword table.
func DefaultRuleSet() RuleSet {
	return RuleSet{Languages: cloneLanguageRules(rawLanguageRules)}
}

func compileLanguages(rules []LanguageRule) []compiledLanguage {
	out := make([]compiledLanguage, 0, len(rules))
	for _, r := range rules {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		lang := compiledLanguage{
			name:     name,
			words:    keywordSet(r.Words),
			excluded: keywordSet(r.PatternExclude),
		}
		lang.pattern, lang.hasPattern = languagePatterns[name]
		out = append(out, lang)
	}
	return out
}

func keywordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToUpper(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

func cloneLanguageRules(src []LanguageRule) []LanguageRule {
	out := make([]LanguageRule, len(src))
	for i, r := range src {
		out[i] = LanguageRule{
			Name:           r.Name,
			Words:          append([]string(nil), r.Words...),
			PatternExclude: append([]string(nil), r.PatternExclude...),
		}
	}
	return out
}
