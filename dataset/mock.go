package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"path"
	"regexp"
	"strings"

	"yashubustudio/entityclassifier/stats"
)

var mockCountries = []string{
	"AD", "AF", "AG", "AI", "AM", "AO", "AR", "AW", "BB", "BD", "BF", "BH", "BI", "BJ", "BN", "BO",
	"BS", "BT", "CD", "CG", "CI", "CM", "CR", "CU", "CV", "DJ", "DM", "DO", "DZ", "ET", "FJ", "GA",
	"GE", "GM", "GN", "GQ", "GT", "GW", "GY", "HN", "HT", "IQ", "IR", "JM", "JO", "KE", "KG", "KH",
	"KI", "KM", "KN", "KP", "KV", "LA", "LC", "LK", "LR", "LS", "LY", "MC", "MG", "ML", "MM", "MN",
}

var (
	reMockCSV   = regexp.MustCompile(`_([A-Z]{2})_data\.csv$`)
	reMockStats = regexp.MustCompile(`_([A-Z]{2})_data_stats\.txt$`)
)

// MockFiles returns a stand-in listing for a missing data directory named base.
// The same seed always yields the same sizes and record counts.
func MockFiles(base string, seed int64) []File {
	rng := rand.New(rand.NewSource(seed))
	between := func(min, max float64) float64 {
		return math.Round((rng.Float64()*(max-min)+min)*10) / 10
	}
	files := make([]File, 0, len(mockCountries)*2)
	for _, code := range mockCountries {
		records := 2 + rng.Intn(98)
		csvName := filePrefix + code + csvSuffix
		statsName := filePrefix + code + statsSuffix
		files = append(files,
			File{
				CountryCode: code,
				Name:        csvName,
				Type:        TypeCSV,
				Path:        path.Join(base, csvName),
				Size:        between(1, 30),
				Records:     &records,
			},
			File{
				CountryCode: code,
				Name:        statsName,
				Type:        TypeStats,
				Path:        path.Join(base, statsName),
				Size:        between(0.5, 2),
			},
		)
	}
	return files
}

// MockContent returns stand-in content for a listed path. It reports false for
// paths that are neither an entity CSV nor a statistics report.
func MockContent(p string) (string, bool) {
	switch {
	case strings.HasSuffix(p, ".csv"):
		return mockCSV(mockCode(reMockCSV, p)), true
	case strings.HasSuffix(p, ".txt"):
		return mockStats(mockCode(reMockStats, p)), true
	}
	return "", false
}

func mockCode(re *regexp.Regexp, p string) string {
	if m := re.FindStringSubmatch(p); m != nil {
		return m[1]
	}
	return "XX"
}

func mockCSV(code string) string {
	var sb strings.Builder
	sb.WriteString("parent_name,parent_id,parent_city,language,entity_type\n")
	rows := []struct{ label, typ string }{
		{"COMPANY 1", "company"},
		{"INDIVIDUAL 1", "individual"},
		{"FAMILY FIRM 1", "family_firm"},
		{"GOVERNMENT 1", "government"},
		{"COMPANY 2", "company"},
	}
	for i, r := range rows {
		fmt.Fprintf(&sb, "\"%s %s\",%s*%d,%s,en,%s\n", code, r.label, code, 1000001+i, code, r.typ)
	}
	return sb.String()
}

func mockStats(code string) string {
	report := stats.NewReport()
	report.TotalRecords = 25
	report.Languages["English"] = 20
	report.Languages["Local"] = 5
	report.EntityTypes["Company"] = 15
	report.EntityTypes["Individual"] = 5
	report.EntityTypes["Family Firm"] = 3
	report.EntityTypes["Government"] = 2
	return stats.Document{
		Title:  code + "_data.csv",
		Report: report,
		Notes: []string{
			"Standard distribution for " + code,
			"Most entities are companies",
			"Good mix of entity types",
		},
	}.String()
}
