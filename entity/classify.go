// Package entity classifies entity names (people, family firms, companies and
// government bodies) with a fixed table of keyword and regex rules.
//
// Classification is a pure function of the name: every rule that matches adds its
// weight to exactly one category, the highest total wins and ties resolve in the
// order of Categories. Nothing fails; a name that matches no rule yields a zero
// result, which Result.HasSignal reports.
//
// All functions and Classifier values are safe for concurrent use.
package entity

import (
	"fmt"
	"math"
	"strings"
)

// Classifier applies a compiled rule table. The zero value is not usable; build one
// with NewClassifier or use the package-level functions.
type Classifier struct {
	languages []compiledLanguage
}

// NewClassifier compiles rules. Languages with an empty name are dropped. The
// language lists drive DetectLanguages and DetectPatterns; Classify always scores
// with the built-in table.
func NewClassifier(rules RuleSet) *Classifier {
	return &Classifier{languages: compileLanguages(rules.Languages)}
}

var defaultClassifier = NewClassifier(DefaultRuleSet())

// Default returns the classifier built from the built-in rule table.
func Default() *Classifier {
	return defaultClassifier
}

// Classify scores name against the built-in rules and returns the best category.
func Classify(name string) Result {
	return defaultClassifier.Classify(name)
}

// Analyze runs every classification step with the built-in rules.
func Analyze(name string) Analysis {
	return defaultClassifier.Analyze(name)
}

// DetectLanguages reports the language keyword groups matched by the tokens of name.
func DetectLanguages(name string) []LanguageGroup {
	return defaultClassifier.DetectLanguages(name)
}

// DetectPatterns runs the nine independent pattern checks with the built-in rules.
func DetectPatterns(name string) []PatternMatch {
	return defaultClassifier.DetectPatterns(name)
}

// Classify scores name with the built-in table and returns the best category.
func (c *Classifier) Classify(name string) Result {
	return Finalize(CalculateScores(name))
}

// Analyze returns tokens, languages, patterns and the final result for name.
func (c *Classifier) Analyze(name string) Analysis {
	return Analysis{
		Name:      name,
		Words:     strings.Fields(name),
		Languages: c.DetectLanguages(name),
		Patterns:  c.DetectPatterns(name),
		Result:    c.Classify(name),
	}
}

// DetectLanguages collects, per language, the tokens whose upper-cased form is in the
// language keyword set. A token may appear in several groups.
func (c *Classifier) DetectLanguages(name string) []LanguageGroup {
	tokens := strings.Fields(name)
	var out []LanguageGroup
	for _, lang := range c.languages {
		words := matchTokens(tokens, lang.words, nil)
		if len(words) == 0 {
			continue
		}
		out = append(out, LanguageGroup{Name: lang.name, Words: words})
	}
	return out
}

// DetectPatterns applies every pattern check independently and returns the ones
// that fired, in rule order.
func (c *Classifier) DetectPatterns(name string) []PatternMatch {
	var out []PatternMatch
	for _, rule := range patternRules {
		for _, re := range rule.Exprs {
			if m := re.FindStringIndex(name); m != nil {
				out = append(out, PatternMatch{Type: rule.Type, Match: name[m[0]:m[1]]})
				break
			}
		}
	}
	tokens := strings.Fields(name)
	for _, lang := range c.languages {
		if !lang.hasPattern {
			continue
		}
		words := matchTokens(tokens, lang.words, lang.excluded)
		if len(words) == 0 {
			continue
		}
		out = append(out, PatternMatch{Type: lang.pattern, Match: strings.Join(words, ", ")})
	}
	return out
}

// CalculateScores sums the weights of every matching score rule.
func CalculateScores(name string) Scores {
	var s Scores
	for _, rule := range scoreRules {
		if rule.Expr.MatchString(name) {
			s.add(rule.Category, rule.Weight)
		}
	}
	return s
}

// Finalize picks the winning category, its confidence and a reasoning sentence.
func Finalize(scores Scores) Result {
	category, best := scores.Max()
	confidence := 0
	if total := scores.Total(); total > 0 {
		confidence = int(math.Round(float64(best) / float64(total) * 100))
	}
	return Result{
		Category:   category,
		Confidence: confidence,
		Reasoning:  reasoning(category, scores),
		Scores:     scores,
	}
}

func reasoning(category Category, scores Scores) string {
	var parts []string
	if scores.Get(category) > 0 {
		parts = append(parts, reasons[category])
	}
	// Only a note: individual weight never moves the family_firm score.
	if category == FamilyFirm && scores.Individual > 0 {
		parts = append(parts, "personal elements")
	}
	return fmt.Sprintf("Classified as %s due to %s", category, strings.Join(parts, " and "))
}

func matchTokens(tokens []string, set, excluded map[string]struct{}) []string {
	var out []string
	for _, tok := range tokens {
		upper := strings.ToUpper(tok)
		if _, ok := set[upper]; !ok {
			continue
		}
		if _, skip := excluded[upper]; skip {
			continue
		}
		out = append(out, tok)
	}
	return out
}
