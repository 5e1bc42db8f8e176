// Package dataset reads the per-country entity CSV files and the data directory
// that holds them next to their statistics reports.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Record is one row of an entity CSV file.
type Record struct {
	Line       int    `json:"line"`
	Name       string `json:"parent_name"`
	ID         string `json:"parent_id,omitempty"`
	City       string `json:"parent_city,omitempty"`
	Language   string `json:"language,omitempty"`
	EntityType string `json:"entity_type,omitempty"`
}

// ColumnCandidates lists the header names tried, case-insensitively, for each field.
type ColumnCandidates struct {
	Name       []string `json:"name" toml:"name"`
	ID         []string `json:"id" toml:"id"`
	City       []string `json:"city" toml:"city"`
	Language   []string `json:"language" toml:"language"`
	EntityType []string `json:"entity_type" toml:"entity_type"`
}

// DefaultColumnCandidates returns the built-in header names.
func DefaultColumnCandidates() ColumnCandidates {
	return ColumnCandidates{
		Name:       []string{"parent_name", "name", "entity_name"},
		ID:         []string{"parent_id", "id"},
		City:       []string{"parent_city", "city"},
		Language:   []string{"language", "lang"},
		EntityType: []string{"entity_type", "type", "category"},
	}
}

// withDefaults fills nil fields from the built-in candidates.
func (c ColumnCandidates) withDefaults() ColumnCandidates {
	d := DefaultColumnCandidates()
	pick := func(custom, fallback []string) []string {
		if custom == nil {
			return fallback
		}
		return custom
	}
	return ColumnCandidates{
		Name:       pick(c.Name, d.Name),
		ID:         pick(c.ID, d.ID),
		City:       pick(c.City, d.City),
		Language:   pick(c.Language, d.Language),
		EntityType: pick(c.EntityType, d.EntityType),
	}
}

// ParseOptions selects columns explicitly. Each field takes a header name or a
// 1-based "#N" index and overrides auto-detection for that field.
type ParseOptions struct {
	NameColumn       string
	IDColumn         string
	CityColumn       string
	LanguageColumn   string
	EntityTypeColumn string
	Comma            rune
	Candidates       ColumnCandidates
}

// ReadRecords opens path and parses it with ParseRecords. Files ending in .tsv are
// read tab-separated unless opts.Comma is set.
func ReadRecords(path string, opts ParseOptions) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	if opts.Comma == 0 && strings.EqualFold(filepath.Ext(path), ".tsv") {
		opts.Comma = '\t'
	}
	records, err := ParseRecords(f, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return records, nil
}

// ParseRecords reads delimited rows from r. Rows without a name are skipped.
func ParseRecords(r io.Reader, opts ParseOptions) ([]Record, error) {
	reader := csv.NewReader(r)
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	reader.FieldsPerRecord = -1

	first, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty file")
	}
	if err != nil {
		return nil, err
	}
	header := make([]string, len(first))
	for i, cell := range first {
		header[i] = cleanCell(cell)
	}
	cols, skipHeader, err := resolveColumns(header, opts)
	if err != nil {
		return nil, err
	}

	var records []Record
	add := func(row []string, line int) {
		rec := Record{
			Line:       line,
			Name:       cols.name.value(row),
			ID:         cols.id.value(row),
			City:       cols.city.value(row),
			Language:   cols.language.value(row),
			EntityType: cols.entityType.value(row),
		}
		if rec.Name == "" {
			return
		}
		records = append(records, rec)
	}
	if !skipHeader {
		add(first, 1)
	}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		add(row, line)
	}
	return records, nil
}

func cleanCell(v string) string {
	v = strings.TrimPrefix(v, "\ufeff")
	v = norm.NFKC.String(v)
	v = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\t' && r != '\n' {
			return -1
		}
		return r
	}, v)
	return strings.TrimSpace(v)
}

type column struct {
	index      int
	fromHeader bool
}

func (c column) value(row []string) string {
	if c.index < 0 || c.index >= len(row) {
		return ""
	}
	return cleanCell(row[c.index])
}

type resolvedColumns struct {
	name, id, city, language, entityType column
}

func resolveColumns(header []string, opts ParseOptions) (resolvedColumns, bool, error) {
	cand := opts.Candidates.withDefaults()
	var res resolvedColumns
	var err error
	if res.name, err = pickColumn(header, opts.NameColumn, cand.Name); err != nil {
		return res, false, err
	}
	if res.id, err = pickColumn(header, opts.IDColumn, cand.ID); err != nil {
		return res, false, err
	}
	if res.city, err = pickColumn(header, opts.CityColumn, cand.City); err != nil {
		return res, false, err
	}
	if res.language, err = pickColumn(header, opts.LanguageColumn, cand.Language); err != nil {
		return res, false, err
	}
	if res.entityType, err = pickColumn(header, opts.EntityTypeColumn, cand.EntityType); err != nil {
		return res, false, err
	}
	skipHeader := res.name.fromHeader || res.id.fromHeader || res.city.fromHeader ||
		res.language.fromHeader || res.entityType.fromHeader
	if res.name.index < 0 {
		if skipHeader {
			return res, false, errors.New("no name column found")
		}
		// Headerless file: names are in the first column.
		res.name = column{index: 0}
	}
	return res, skipHeader, nil
}

func pickColumn(header []string, explicit string, candidates []string) (column, error) {
	if strings.TrimSpace(explicit) != "" {
		idx, fromHeader, err := matchExplicitColumn(header, explicit)
		if err != nil {
			return column{index: -1}, err
		}
		return column{index: idx, fromHeader: fromHeader}, nil
	}
	for _, cand := range candidates {
		for i, col := range header {
			if strings.EqualFold(col, cand) {
				return column{index: i, fromHeader: true}, nil
			}
		}
	}
	return column{index: -1}, nil
}

func matchExplicitColumn(header []string, explicit string) (int, bool, error) {
	trimmed := strings.TrimSpace(explicit)
	for i, col := range header {
		if strings.EqualFold(col, trimmed) {
			return i, true, nil
		}
	}
	if strings.HasPrefix(trimmed, "#") {
		idx, err := parseColumnIndex(trimmed)
		if err != nil {
			return -1, false, err
		}
		if idx >= len(header) {
			return -1, false, fmt.Errorf("column index %s is out of range", trimmed)
		}
		return idx, false, nil
	}
	return -1, false, fmt.Errorf("column %q not found", explicit)
}

func parseColumnIndex(token string) (int, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(token, "#"))
	idx, err := strconv.Atoi(trimmed)
	if err != nil {
		return -1, fmt.Errorf("invalid column index %q", token)
	}
	if idx <= 0 {
		return -1, fmt.Errorf("column indices are 1-based: %q", token)
	}
	return idx - 1, nil
}
