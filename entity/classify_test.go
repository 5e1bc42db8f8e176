package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		category   Category
		confidence int
		scores     Scores
		reasoning  string
	}{
		{
			name:       "title and two trailing words",
			in:         "MR. JOHN SMITH",
			category:   Individual,
			confidence: 100,
			scores:     Scores{Individual: 60},
			reasoning:  "Classified as individual due to personal titles and simple structure",
		},
		{
			name:       "sons suffix",
			in:         "AL RAHMAN & SONS",
			category:   FamilyFirm,
			confidence: 100,
			scores:     Scores{FamilyFirm: 60},
			reasoning:  "Classified as family_firm due to family business indicators",
		},
		{
			name:       "company terms with trailing caps pair",
			in:         "GLOBAL TRADING INVESTMENTS LTD",
			category:   Company,
			confidence: 81,
			scores:     Scores{Individual: 15, Company: 65},
			reasoning:  "Classified as company due to business terminology and legal structure",
		},
		{
			name:       "family firm with personal elements",
			in:         "MR. AHMED & SONS",
			category:   FamilyFirm,
			confidence: 57,
			scores:     Scores{Individual: 45, FamilyFirm: 60},
			reasoning:  "Classified as family_firm due to family business indicators and personal elements",
		},
		{
			name:       "all family rules fire together",
			in:         "AHMED FAMILY & PARTNERS",
			category:   FamilyFirm,
			confidence: 100,
			scores:     Scores{FamilyFirm: 135},
			reasoning:  "Classified as family_firm due to family business indicators",
		},
		{
			name:       "state enterprise",
			in:         "EMPRESA NACIONAL DE HIDROCARBONETOS",
			category:   Government,
			confidence: 73,
			scores:     Scores{Individual: 15, Government: 40},
			reasoning:  "Classified as government due to institutional and governmental terms",
		},
		{
			name:       "central bank",
			in:         "CENTRAL BANK OF KENYA",
			category:   Government,
			confidence: 75,
			scores:     Scores{Individual: 15, Government: 45},
			reasoning:  "Classified as government due to institutional and governmental terms",
		},
		{
			name:       "national scores company and government",
			in:         "NATIONAL",
			category:   Government,
			confidence: 75,
			scores:     Scores{Company: 15, Government: 45},
			reasoning:  "Classified as government due to institutional and governmental terms",
		},
		{
			name:       "suffix match is not word bounded",
			in:         "TOBACCO",
			category:   Company,
			confidence: 100,
			scores:     Scores{Company: 30},
			reasoning:  "Classified as company due to business terminology and legal structure",
		},
		{
			name:       "lower case title ignores caps pair rule",
			in:         "mr. john smith",
			category:   Individual,
			confidence: 100,
			scores:     Scores{Individual: 45},
			reasoning:  "Classified as individual due to personal titles and simple structure",
		},
		{
			name:       "mixed case heirs",
			in:         "Garcia e Hijos",
			category:   FamilyFirm,
			confidence: 100,
			scores:     Scores{FamilyFirm: 35},
			reasoning:  "Classified as family_firm due to family business indicators",
		},
		{
			name:       "tie resolves to declared order",
			in:         "DR. BANK",
			category:   Individual,
			confidence: 50,
			scores:     Scores{Individual: 45, Government: 45},
			reasoning:  "Classified as individual due to personal titles and simple structure",
		},
		{
			name:       "empty name",
			in:         "",
			category:   Individual,
			confidence: 0,
			scores:     Scores{},
			reasoning:  "Classified as individual due to ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.in)
			assert.Equal(t, tt.category, got.Category)
			assert.Equal(t, tt.confidence, got.Confidence)
			assert.Equal(t, tt.scores, got.Scores)
			assert.Equal(t, tt.reasoning, got.Reasoning)
		})
	}
}

func TestClassifyNoSignal(t *testing.T) {
	for _, in := range []string{"", "   ", "john", "12345"} {
		res := Classify(in)
		assert.False(t, res.HasSignal(), in)
		assert.Equal(t, 0, res.Confidence, in)
		assert.Equal(t, Individual, res.Category, in)
	}
	assert.True(t, Classify("ACME LTD").HasSignal())
}

func TestDetectLanguages(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []LanguageGroup
	}{
		{
			name: "arabic and english",
			in:   "AL RAHMAN & SONS",
			want: []LanguageGroup{
				{Name: "Arabic", Words: []string{"RAHMAN"}},
				{Name: "English", Words: []string{"&"}},
			},
		},
		{
			name: "token shared by spanish and portuguese",
			in:   "EMPRESA NACIONAL DE HIDROCARBONETOS",
			want: []LanguageGroup{
				{Name: "Spanish", Words: []string{"EMPRESA"}},
				{Name: "Portuguese", Words: []string{"EMPRESA", "NACIONAL", "DE", "HIDROCARBONETOS"}},
			},
		},
		{
			name: "input spelling is kept",
			in:   "Dennis Kaputo Ltd",
			want: []LanguageGroup{
				{Name: "African", Words: []string{"Dennis", "Kaputo"}},
				{Name: "English", Words: []string{"Ltd"}},
			},
		},
		{
			name: "russian holding",
			in:   "KHOLDING  KOMPANIYA",
			want: []LanguageGroup{
				{Name: "Russian", Words: []string{"KHOLDING", "KOMPANIYA"}},
			},
		},
		{
			name: "no match",
			in:   "XYZ",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguages(tt.in))
		})
	}
}

func TestDetectPatterns(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []PatternMatch
	}{
		{
			name: "title",
			in:   "MR. JOHN SMITH",
			want: []PatternMatch{{Type: PersonalTitle, Match: "MR."}},
		},
		{
			name: "family phrase wins over family word",
			in:   "AHMED FAMILY & PARTNERS",
			want: []PatternMatch{
				{Type: FamilyIndicator, Match: "& PARTNERS"},
				{Type: ArabicNames, Match: "AHMED"},
			},
		},
		{
			name: "company suffix and leftmost business term",
			in:   "GLOBAL TRADING INVESTMENTS LTD",
			want: []PatternMatch{
				{Type: CompanySuffix, Match: "LTD"},
				{Type: BusinessTerms, Match: "TRADING"},
			},
		},
		{
			name: "spanish pattern excludes empresa",
			in:   "EMPRESA NACIONAL DE HIDROCARBONETOS",
			want: []PatternMatch{
				{Type: PortugueseTerms, Match: "EMPRESA, NACIONAL, DE, HIDROCARBONETOS"},
			},
		},
		{
			name: "case insensitive government term",
			in:   "Ministry of Finance",
			want: []PatternMatch{{Type: GovernmentTerms, Match: "Ministry"}},
		},
		{
			name: "spanish names",
			in:   "Garcia e Hijos",
			want: []PatternMatch{{Type: SpanishNames, Match: "Garcia, Hijos"}},
		},
		{
			name: "empty",
			in:   "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectPatterns(tt.in))
		})
	}
}

func TestFinalizeTieOrder(t *testing.T) {
	res := Finalize(Scores{Company: 10, Government: 10})
	assert.Equal(t, Company, res.Category)
	assert.Equal(t, 50, res.Confidence)

	res = Finalize(Scores{FamilyFirm: 20, Company: 20, Government: 20})
	assert.Equal(t, FamilyFirm, res.Category)
	assert.Equal(t, 33, res.Confidence)
}

func TestAnalyze(t *testing.T) {
	a := Analyze("AL RAHMAN & SONS")
	assert.Equal(t, []string{"AL", "RAHMAN", "&", "SONS"}, a.Words)
	assert.Len(t, a.Languages, 2)
	assert.Equal(t, []PatternMatch{
		{Type: FamilyIndicator, Match: "& SONS"},
		{Type: ArabicNames, Match: "RAHMAN"},
	}, a.Patterns)
	assert.Equal(t, FamilyFirm, a.Result.Category)

	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"Family Indicator"`)
	assert.Contains(t, string(data), `"category":"family_firm"`)
}

func TestCategoryLabels(t *testing.T) {
	assert.Equal(t, "Family Firm", FamilyFirm.Label())
	for _, c := range Categories {
		got, err := ParseCategory(c.Label())
		require.NoError(t, err)
		assert.Equal(t, c, got)
		got, err = ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCategory("nonprofit")
	assert.Error(t, err)
	for _, c := range Categories {
		assert.True(t, c.valid(), c)
	}
	assert.False(t, Category("nonprofit").valid())
	assert.Equal(t, "PatternType(42)", PatternType(42).String())
}

func TestConcurrentClassify(t *testing.T) {
	names := []string{"MR. JOHN SMITH", "AL RAHMAN & SONS", "CENTRAL BANK OF KENYA", ""}
	want := make([]Result, len(names))
	for i, n := range names {
		want[i] = Classify(n)
	}
	for i := 0; i < 8; i++ {
		t.Run("worker", func(t *testing.T) {
			t.Parallel()
			for j, n := range names {
				assert.Equal(t, want[j], Classify(n))
			}
		})
	}
}
