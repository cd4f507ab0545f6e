package tabular

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// sniffCandidates are the separators considered by WithSniffing, in tie-break order.
var sniffCandidates = []rune{',', ';', '\t', '|'}

func readCSV(path string, o options) ([][]string, error) {
	f, err := os.Open(path) // #nosec G304 -- data path is user-provided
	if err != nil {
		return nil, fmt.Errorf("opening data file: %w", err)
	}
	defer f.Close()

	r, err := decoder(f, o.encoding)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(r)
	delim := o.delimiter
	if delim == 0 && o.sniff {
		delim = sniff(br)
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if delim != 0 {
		cr.Comma = delim
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return records, nil
}

// decoder wraps r so it yields UTF-8. A leading byte order mark always wins
// over the configured encoding and is removed.
func decoder(r io.Reader, label string) (io.Reader, error) {
	if label == "" || strings.EqualFold(label, "utf-8") || strings.EqualFold(label, "utf8") {
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, label)
	}
	return transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder())), nil
}

// sniff picks the candidate separator that occurs most often in the first
// line, ignoring quoted sections. It falls back to a comma.
func sniff(br *bufio.Reader) rune {
	line, err := br.Peek(br.Size())
	if err != nil && len(line) == 0 {
		return ','
	}
	if i := strings.IndexAny(string(line), "\r\n"); i >= 0 {
		line = line[:i]
	}

	counts := make(map[rune]int, len(sniffCandidates))
	quoted := false
	for _, c := range string(line) {
		if c == '"' {
			quoted = !quoted
			continue
		}
		if !quoted {
			counts[c]++
		}
	}

	best, bestCount := ',', 0
	for _, c := range sniffCandidates {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}
