package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yashubustudio/entityclassifier/dataset"
	"yashubustudio/entityclassifier/internal/config"
	"yashubustudio/entityclassifier/stats"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-input", " names.csv ", "-stdout", "-name-column", "#2"})
	require.NoError(t, err)
	assert.Equal(t, "names.csv", opts.inputPath)
	assert.Equal(t, "#2", opts.nameColumn)
	assert.True(t, opts.stdout)

	_, err = parseFlags(nil)
	assert.ErrorContains(t, err, "required")

	opts, err = parseFlags([]string{"-write-config", " conf/config.toml "})
	require.NoError(t, err)
	assert.Equal(t, "conf/config.toml", opts.writeConfig)

	_, err = parseFlags([]string{"-name", "ACME LTD", "-stats-out", "out.txt"})
	assert.ErrorContains(t, err, "--stats-out needs --input")
}

func TestSplitNames(t *testing.T) {
	assert.Equal(t, []string{"ACME LTD", "MR. JOHN SMITH"}, splitNames(" ACME LTD, ,MR. JOHN SMITH,"))
	assert.Nil(t, splitNames(""))
}

func TestResolveOutputPath(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 8, 1, 9, 30, 0, 0, time.UTC)

	got, err := resolveOutputPath("", dir, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "result_20250801093000.csv"), got)

	explicit := filepath.Join(dir, "out", "r.csv")
	got, err = resolveOutputPath(explicit, "", now)
	require.NoError(t, err)
	assert.Equal(t, explicit, got)
}

func TestStatsDocument(t *testing.T) {
	rows := []dataset.ResultRow{
		{Record: dataset.Record{Name: "ACME LTD", Language: "en", EntityType: "company"}},
		{Record: dataset.Record{Name: "xyz", Language: "en"}},
	}
	rows[0].Result.Category = "company"
	rows[0].Result.Scores.Company = 30
	rows[1].Result.Category = "individual"

	doc := statsDocument("data/done_processed_KE_data.csv", rows)
	assert.Equal(t, "done_processed_KE_data.csv", doc.Title)
	assert.Empty(t, doc.Corrections)
	assert.Equal(t, []string{
		"Most entities are classified as Company",
		"1 names matched no rule and default to Individual",
	}, doc.Notes)
	assert.Equal(t, doc.Report, stats.Parse(doc.String()))
}

func TestRunInputFile(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENTITY_DATA_DIR", "")
	dir := t.TempDir()
	input := filepath.Join(dir, "done_processed_KE_data.csv")
	require.NoError(t, os.WriteFile(input, []byte(
		"parent_name,parent_id,language,entity_type\n"+
			"MR. JOHN SMITH,1,en,company\n"+
			"AL RAHMAN & SONS,2,ar,family_firm\n"+
			"CENTRAL BANK OF KENYA,3,en,government\n"), 0o644))

	output := filepath.Join(dir, "out", "result.csv")
	statsOut := filepath.Join(dir, "out", "stats.txt")
	err := run(cliOptions{
		configPath: filepath.Join(dir, "config.json"),
		inputPath:  input,
		outputPath: output,
		statsOut:   statsOut,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[3], "CENTRAL BANK OF KENYA,3,en,government,government,75,"))

	text, err := os.ReadFile(statsOut)
	require.NoError(t, err)
	report := stats.Parse(string(text))
	assert.Equal(t, 3, report.TotalRecords)
	assert.Equal(t, map[string]int{"English": 2, "Arabic": 1}, report.Languages)
	assert.Equal(t, map[string]int{"Individual": 1, "Family Firm": 1, "Government": 1}, report.EntityTypes)
	assert.Contains(t, string(text), "- MR. JOHN SMITH changed from Company to Individual\n")
}

func TestRunWriteRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	require.NoError(t, run(cliOptions{writeRules: path}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[[languages]]")
}

func TestRunWriteConfig(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENTITY_DATA_DIR", "")
	path := filepath.Join(t.TempDir(), "conf", "config.toml")
	require.NoError(t, run(cliOptions{writeConfig: path}))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}
