package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"yashubustudio/entityclassifier/entity"
	"yashubustudio/entityclassifier/stats"
)

// ResultRow pairs an input record with its classification.
type ResultRow struct {
	Record Record        `json:"record"`
	Result entity.Result `json:"result"`
}

var resultHeader = []string{
	"parent_name", "parent_id", "language", "entity_type",
	"predicted_type", "confidence", "reasoning",
}

// Classify runs c over every record. progress, when non-nil, is called after each row.
func Classify(c *entity.Classifier, records []Record, progress func()) []ResultRow {
	rows := make([]ResultRow, len(records))
	for i, rec := range records {
		rows[i] = ResultRow{Record: rec, Result: c.Classify(rec.Name)}
		if progress != nil {
			progress()
		}
	}
	return rows
}

// WriteResults writes rows as CSV with a header line.
func WriteResults(w io.Writer, rows []ResultRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(resultHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		rec := []string{
			row.Record.Name,
			row.Record.ID,
			row.Record.Language,
			row.Record.EntityType,
			string(row.Result.Category),
			strconv.Itoa(row.Result.Confidence),
			row.Result.Reasoning,
		}
		if err := writer.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush result: %w", err)
	}
	return nil
}

// WriteResultsFile creates path, and its directory, and writes rows to it.
func WriteResultsFile(path string, rows []ResultRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create result file: %w", err)
	}
	if err := WriteResults(f, rows); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close result file: %w", err)
	}
	return nil
}

// Summarize counts rows by language and predicted entity type.
func Summarize(rows []ResultRow) stats.Report {
	b := stats.NewBuilder()
	for _, row := range rows {
		b.Add(row.Record.Language, row.Result.Category.Label())
	}
	return b.Report()
}

// Corrections lists the rows whose predicted type differs from the type already
// recorded in the file. Rows without a recorded type are not listed.
func Corrections(rows []ResultRow) []string {
	var out []string
	for _, row := range rows {
		if row.Record.EntityType == "" {
			continue
		}
		recorded, err := entity.ParseCategory(row.Record.EntityType)
		if err != nil || recorded == row.Result.Category {
			continue
		}
		out = append(out, fmt.Sprintf("%s changed from %s to %s", row.Record.Name, recorded.Label(), row.Result.Category.Label()))
	}
	return out
}
