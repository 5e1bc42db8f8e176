package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yashubustudio/entityclassifier/entity"
)

func sampleRows(t *testing.T) []ResultRow {
	t.Helper()
	records := []Record{
		{Line: 2, Name: "MR. JOHN SMITH", ID: "KE*3", Language: "en", EntityType: "company"},
		{Line: 3, Name: "AL RAHMAN & SONS", ID: "KE*4", Language: "ar", EntityType: "family_firm"},
	}
	calls := 0
	rows := Classify(entity.Default(), records, func() { calls++ })
	assert.Equal(t, len(records), calls)
	return rows
}

func TestWriteResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, sampleRows(t)))
	want := "parent_name,parent_id,language,entity_type,predicted_type,confidence,reasoning\n" +
		"MR. JOHN SMITH,KE*3,en,company,individual,100,Classified as individual due to personal titles and simple structure\n" +
		"AL RAHMAN & SONS,KE*4,ar,family_firm,family_firm,100,Classified as family_firm due to family business indicators\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteResultsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "csv", "result.csv")
	require.NoError(t, WriteResultsFile(path, sampleRows(t)))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "AL RAHMAN & SONS")
}

func TestSummarizeAndCorrections(t *testing.T) {
	rows := sampleRows(t)
	report := Summarize(rows)
	assert.Equal(t, 2, report.TotalRecords)
	assert.Equal(t, map[string]int{"English": 1, "Arabic": 1}, report.Languages)
	assert.Equal(t, map[string]int{"Individual": 1, "Family Firm": 1}, report.EntityTypes)

	assert.Equal(t, []string{"MR. JOHN SMITH changed from Company to Individual"}, Corrections(rows))
}
