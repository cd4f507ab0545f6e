// Package tabular loads CSV and spreadsheet data sources into header-keyed rows.
//
// Every cell is read as a string. Missing cells become "", fully blank rows are
// skipped and repeated header names are made unique by suffixing ".1", ".2", ...
package tabular

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alnah/go-docmerge/internal/fileutil"
)

// Sentinel errors for data loading.
var (
	ErrUnsupportedFormat = errors.New("unsupported data file format")
	ErrUnknownEncoding   = errors.New("unknown text encoding")
	ErrSheetNotFound     = errors.New("sheet not found")
	ErrInvalidDelimiter  = errors.New("invalid delimiter")
)

// Extensions accepted by Load.
var (
	csvExtensions   = []string{".csv", ".txt", ".tsv"}
	sheetExtensions = []string{".xlsx", ".xlsm", ".xltx", ".xltm"}
)

// Table is a loaded data source.
type Table struct {
	Headers []string
	Rows    []map[string]string
}

// Option configures a Load or Headers call.
type Option func(*options)

type options struct {
	sheetName  string
	sheetIndex int
	encoding   string
	delimiter  rune
	sniff      bool
}

func defaultOptions() options {
	return options{sheetIndex: -1}
}

// WithSheetName selects a worksheet by name. It takes precedence over WithSheetIndex.
func WithSheetName(name string) Option {
	return func(o *options) { o.sheetName = name }
}

// WithSheetIndex selects a worksheet by zero-based position. Negative values
// select the first sheet.
func WithSheetIndex(i int) Option {
	return func(o *options) { o.sheetIndex = i }
}

// WithEncoding decodes CSV input from the named encoding (WHATWG labels such
// as "windows-1252" or "latin1"). Empty means UTF-8.
func WithEncoding(label string) Option {
	return func(o *options) { o.encoding = label }
}

// WithDelimiter sets the CSV field separator. Zero keeps the default comma.
func WithDelimiter(r rune) Option {
	return func(o *options) { o.delimiter = r }
}

// WithSniffing guesses the CSV separator from the first line when no
// delimiter was given.
func WithSniffing() Option {
	return func(o *options) { o.sniff = true }
}

// ParseDelimiter turns a user-facing delimiter setting into a rune.
// Accepts a single character or one of "tab", "\t", "comma", "semicolon", "pipe".
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	case "pipe":
		return '|', nil
	}
	r := []rune(s)
	if len(r) != 1 || r[0] == '"' || r[0] == '\r' || r[0] == '\n' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDelimiter, s)
	}
	return r[0], nil
}

// Load reads the data source at path.
func Load(path string, opts ...Option) (*Table, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var records [][]string
	var err error
	switch {
	case fileutil.HasExtension(path, sheetExtensions...):
		records, err = readSheet(path, o)
	case fileutil.HasExtension(path, csvExtensions...):
		if fileutil.HasExtension(path, ".tsv") && o.delimiter == 0 {
			o.delimiter = '\t'
		}
		records, err = readCSV(path, o)
	default:
		return nil, fmt.Errorf("%w: %s (expected .csv or .xlsx)", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, err
	}
	return shape(records), nil
}

// Headers returns only the column headers of the data source at path.
func Headers(path string, opts ...Option) ([]string, error) {
	t, err := Load(path, opts...)
	if err != nil {
		return nil, err
	}
	return t.Headers, nil
}

// shape turns raw records into a Table. The first non-blank record is the header.
func shape(records [][]string) *Table {
	t := &Table{}
	i := 0
	for i < len(records) && blank(records[i]) {
		i++
	}
	if i == len(records) {
		return t
	}
	t.Headers = uniqueHeaders(records[i])

	for _, rec := range records[i+1:] {
		if blank(rec) {
			continue
		}
		row := make(map[string]string, len(t.Headers))
		for j, h := range t.Headers {
			if j < len(rec) {
				row[h] = rec[j]
			} else {
				row[h] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// uniqueHeaders trims header names and suffixes repeats: a, a.1, a.2.
// Empty names become "Unnamed: <i>".
func uniqueHeaders(raw []string) []string {
	out := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		for n := 1; used[name]; n++ {
			name = h + "." + strconv.Itoa(n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}
