package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	filePrefix  = "done_processed_"
	csvSuffix   = "_data.csv"
	statsSuffix = "_data_stats.txt"
)

var (
	// ErrNotFound is returned for paths that do not name a regular file.
	ErrNotFound = errors.New("file not found")
	// ErrOutsideRoot is returned for paths that resolve outside the data directory.
	ErrOutsideRoot = errors.New("path outside data directory")
)

// FileType tells entity CSVs from statistics reports.
type FileType string

const (
	TypeCSV   FileType = "csv"
	TypeStats FileType = "stats"
)

// File describes one data file. Size is in KB rounded to one decimal. Records is
// the data row count for CSV files and nil for statistics reports.
type File struct {
	CountryCode string   `json:"countryCode"`
	Name        string   `json:"fileName"`
	Type        FileType `json:"fileType"`
	Path        string   `json:"filePath"`
	Size        float64  `json:"size"`
	Records     *int     `json:"records"`
}

// Country groups the CSV and statistics file of one country code.
type Country struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	CSV          *File   `json:"csvFile"`
	Stats        *File   `json:"statsFile"`
	TotalRecords int     `json:"totalRecords"`
	TotalSize    float64 `json:"totalSize"`
}

// ScanDir lists the recognized files in dir sorted by name. Paths are reported as
// "<base of dir>/<file name>", the form accepted by Resolve.
func ScanDir(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}
	base := filepath.Base(filepath.Clean(dir))
	var files []File
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		code, typ, ok := splitFileName(name)
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		file := File{
			CountryCode: code,
			Name:        name,
			Type:        typ,
			Path:        base + "/" + name,
			Size:        kilobytes(info.Size()),
		}
		if typ == TypeCSV {
			// An unreadable CSV is still listed, without a count.
			if n, err := CountRecords(filepath.Join(dir, name)); err == nil {
				file.Records = &n
			}
		}
		files = append(files, file)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func splitFileName(name string) (string, FileType, bool) {
	if !strings.HasPrefix(name, filePrefix) {
		return "", "", false
	}
	switch {
	case strings.HasSuffix(name, statsSuffix) && len(name) > len(filePrefix)+len(statsSuffix):
		return name[len(filePrefix) : len(name)-len(statsSuffix)], TypeStats, true
	case strings.HasSuffix(name, csvSuffix) && len(name) > len(filePrefix)+len(csvSuffix):
		return name[len(filePrefix) : len(name)-len(csvSuffix)], TypeCSV, true
	}
	return "", "", false
}

func kilobytes(n int64) float64 {
	return math.Round(float64(n)/1024*10) / 10
}

// CountRecords counts the non-blank lines after the header line.
func CountRecords(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	return countLines(f)
}

func countLines(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)
	lines := 0
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			lines++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("scan records: %w", err)
	}
	if lines == 0 {
		return 0, nil
	}
	return lines - 1, nil
}

// Organize groups files by country code, sorted by code. Underscores are dropped
// from codes, so "KE_" and "KE" land in the same country.
func Organize(files []File) []Country {
	byCode := make(map[string]*Country)
	for i := range files {
		f := files[i]
		code := strings.ReplaceAll(f.CountryCode, "_", "")
		c, ok := byCode[code]
		if !ok {
			c = &Country{Code: code, Name: CountryName(code)}
			byCode[code] = c
		}
		switch f.Type {
		case TypeCSV:
			c.CSV = &f
			c.TotalRecords = 0
			if f.Records != nil {
				c.TotalRecords = *f.Records
			}
		case TypeStats:
			c.Stats = &f
		}
		c.TotalSize = math.Round((c.TotalSize+f.Size)*10) / 10
	}
	out := make([]Country, 0, len(byCode))
	for _, c := range byCode {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Filter keeps the countries whose code or name contains term, ignoring case. An
// empty term keeps everything.
func Filter(countries []Country, term string) []Country {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return countries
	}
	var out []Country
	for _, c := range countries {
		if strings.Contains(strings.ToLower(c.Code), term) || strings.Contains(strings.ToLower(c.Name), term) {
			out = append(out, c)
		}
	}
	return out
}

// Find returns the country with code, ignoring case.
func Find(countries []Country, code string) (Country, bool) {
	for _, c := range countries {
		if strings.EqualFold(c.Code, code) {
			return c, true
		}
	}
	return Country{}, false
}

// Resolve maps a listed file path to a path inside root. The path may carry the
// base name of root as its first element, as ScanDir reports it. Symlinks are
// followed, and a link that leads out of root is rejected with ErrOutsideRoot.
func Resolve(root, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return "", ErrNotFound
	}
	rel := filepath.Clean(filepath.FromSlash(requested))
	if filepath.IsAbs(rel) {
		return "", ErrOutsideRoot
	}
	base := filepath.Base(filepath.Clean(root))
	if prefix := base + string(filepath.Separator); strings.HasPrefix(rel, prefix) {
		rel = strings.TrimPrefix(rel, prefix)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	full := filepath.Join(root, rel)
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("stat %s: %w", filepath.Base(full), err)
	}
	if !info.Mode().IsRegular() {
		return "", ErrNotFound
	}
	if err := checkInside(root, full); err != nil {
		return "", err
	}
	return full, nil
}

// checkInside reports ErrOutsideRoot when full, with symlinks followed, lies
// outside root.
func checkInside(root, full string) error {
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	realFull, err := filepath.EvalSymlinks(full)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", filepath.Base(full), err)
	}
	rel, err := filepath.Rel(realRoot, realFull)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ErrOutsideRoot
	}
	return nil
}

var countryNames = map[string]string{
	"AD": "Andorra", "AF": "Afghanistan", "AG": "Antigua & Barbuda", "AI": "Anguilla",
	"AM": "Armenia", "AO": "Angola", "AR": "Argentina", "AW": "Aruba",
	"BB": "Barbados", "BD": "Bangladesh", "BF": "Burkina Faso", "BH": "Bahrain",
	"BI": "Burundi", "BJ": "Benin", "BN": "Brunei", "BO": "Bolivia",
	"BS": "Bahamas", "BT": "Bhutan", "BW": "Botswana",
	"CD": "DR Congo", "CG": "Congo", "CI": "Ivory Coast", "CM": "Cameroon",
	"CR": "Costa Rica", "CU": "Cuba", "CV": "Cape Verde",
	"DJ": "Djibouti", "DM": "Dominica", "DO": "Dominican Republic", "DZ": "Algeria",
	"ET": "Ethiopia",
	"FJ": "Fiji",
	"GA": "Gabon", "GE": "Georgia", "GM": "Gambia", "GN": "Guinea",
	"GQ": "Equatorial Guinea", "GT": "Guatemala", "GW": "Guinea-Bissau", "GY": "Guyana",
	"HN": "Honduras", "HT": "Haiti",
	"IQ": "Iraq", "IR": "Iran",
	"JM": "Jamaica", "JO": "Jordan",
	"KE": "Kenya", "KG": "Kyrgyzstan", "KH": "Cambodia", "KI": "Kiribati",
	"KM": "Comoros", "KN": "St. Kitts & Nevis", "KP": "North Korea", "KV": "Kosovo",
	"LA": "Laos", "LC": "St. Lucia", "LK": "Sri Lanka", "LR": "Liberia",
	"LS": "Lesotho", "LY": "Libya",
	"MC": "Monaco", "MG": "Madagascar", "ML": "Mali", "MM": "Myanmar", "MN": "Mongolia",
}

// CountryName returns the display name for a country code, or the code itself.
func CountryName(code string) string {
	if name, ok := countryNames[strings.ToUpper(code)]; ok {
		return name
	}
	return code
}
