package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecordsDetectsColumns(t *testing.T) {
	in := "\ufeffparent_name,parent_id,parent_city,language,entity_type\n" +
		"\"ＡＣＭＥ LTD\",KE*1,Nairobi,en,company\n" +
		",KE*2,,en,individual\n" +
		"  MR. JOHN SMITH ,KE*3,,en,individual\n"

	got, err := ParseRecords(strings.NewReader(in), ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, []Record{
		{Line: 2, Name: "ACME LTD", ID: "KE*1", City: "Nairobi", Language: "en", EntityType: "company"},
		{Line: 4, Name: "MR. JOHN SMITH", ID: "KE*3", Language: "en", EntityType: "individual"},
	}, got)
}

func TestParseRecordsOptions(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opts ParseOptions
		want []Record
	}{
		{
			name: "alternate header names and separator",
			in:   "Lang;Name;Type\nar;KHAN & BROTHERS;family_firm\n",
			opts: ParseOptions{Comma: ';'},
			want: []Record{{Line: 2, Name: "KHAN & BROTHERS", Language: "ar", EntityType: "family_firm"}},
		},
		{
			name: "headerless file uses the first column",
			in:   "ACME LTD,1\nKHAN & BROTHERS,2\n",
			want: []Record{{Line: 1, Name: "ACME LTD"}, {Line: 2, Name: "KHAN & BROTHERS"}},
		},
		{
			name: "explicit index",
			in:   "1,CENTRAL BANK OF KENYA\n2,NATIONAL\n",
			opts: ParseOptions{NameColumn: "#2", IDColumn: "#1"},
			want: []Record{
				{Line: 1, Name: "CENTRAL BANK OF KENYA", ID: "1"},
				{Line: 2, Name: "NATIONAL", ID: "2"},
			},
		},
		{
			name: "explicit header name wins over detection",
			in:   "name,owner\nACME LTD,MR. JOHN SMITH\n",
			opts: ParseOptions{NameColumn: "owner"},
			want: []Record{{Line: 2, Name: "MR. JOHN SMITH"}},
		},
		{
			name: "custom candidates",
			in:   "firma,land\nACME LTD,KE\n",
			opts: ParseOptions{Candidates: ColumnCandidates{Name: []string{"firma"}, City: []string{"land"}}},
			want: []Record{{Line: 2, Name: "ACME LTD", City: "KE"}},
		},
		{
			name: "header only",
			in:   "parent_name,parent_id\n",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecords(strings.NewReader(tt.in), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRecordsErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opts ParseOptions
		msg  string
	}{
		{name: "empty", in: "", msg: "empty file"},
		{name: "missing column", in: "a,b\n", opts: ParseOptions{NameColumn: "owner"}, msg: `column "owner" not found`},
		{name: "index out of range", in: "a,b\n", opts: ParseOptions{NameColumn: "#3"}, msg: "out of range"},
		{name: "zero index", in: "a,b\n", opts: ParseOptions{NameColumn: "#0"}, msg: "1-based"},
		{name: "header without names", in: "id,lang\n1,en\n", msg: "no name column found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecords(strings.NewReader(tt.in), tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestReadRecordsTSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.tsv")
	require.NoError(t, os.WriteFile(path, []byte("entity_name\tcity\nMinistry of Finance\tLusaka\n"), 0o644))

	got, err := ReadRecords(path, ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, []Record{{Line: 2, Name: "Ministry of Finance", City: "Lusaka"}}, got)

	_, err = ReadRecords(filepath.Join(t.TempDir(), "missing.csv"), ParseOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "missing.csv")
}
