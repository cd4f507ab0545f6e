// Package docx implements mail merge over Office Open XML word documents.
//
// A Template is read once and is safe for concurrent use: every merge parses
// its own copy of the prepared XML parts. Both MERGEFIELD encodings Word emits
// are recognized, the simple form (w:fldSimple) and the complex form
// (w:fldChar begin/instrText/separate/end runs). Complex fields are collapsed
// into simple ones when the template is opened so merging only has to handle
// one shape.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"time"

	"github.com/beevik/etree"
)

const (
	documentPart = "word/document.xml"
	settingsPart = "word/settings.xml"
)

// Sentinel errors for template handling.
var (
	ErrNotPackage      = errors.New("not a DOCX package")
	ErrMissingDocument = errors.New("word/document.xml not found")
	ErrNoBody          = errors.New("document has no body")
	ErrNoRecords       = errors.New("no records to merge")
)

type entry struct {
	name     string
	method   uint16
	modified time.Time
	data     []byte
}

// Template is a parsed DOCX package ready for merging.
type Template struct {
	entries []entry
	// prepared holds collapsed XML for the parts that carry merge fields.
	// The main document part is always present.
	prepared map[string][]byte
	fields   []string
}

// Open reads the template at path.
func Open(path string) (*Template, error) {
	zr, err := zip.OpenReader(path) // #nosec G304 -- template path is user-provided
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPackage, err)
	}
	defer zr.Close()

	return read(&zr.Reader)
}

// Read parses a template from r.
func Read(r io.ReaderAt, size int64) (*Template, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPackage, err)
	}
	return read(zr)
}

func read(zr *zip.Reader) (*Template, error) {
	t := &Template{prepared: make(map[string][]byte)}
	seen := make(map[string]struct{})

	for _, f := range zr.File {
		data, err := readEntry(f)
		if err != nil {
			return nil, err
		}

		switch {
		case f.Name == settingsPart:
			if data, err = stripMailMerge(data); err != nil {
				return nil, fmt.Errorf("%s: %w", f.Name, err)
			}
		case isMergePart(f.Name):
			prepared, names, err := prepare(data)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Name, err)
			}
			if len(names) > 0 || f.Name == documentPart {
				t.prepared[f.Name] = prepared
			}
			for _, n := range names {
				if _, dup := seen[n]; !dup {
					seen[n] = struct{}{}
					t.fields = append(t.fields, n)
				}
			}
		}

		t.entries = append(t.entries, entry{
			name:     f.Name,
			method:   f.Method,
			modified: f.Modified,
			data:     data,
		})
	}

	if _, ok := t.prepared[documentPart]; !ok {
		return nil, ErrMissingDocument
	}
	sort.Strings(t.fields)
	return t, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	return data, nil
}

// isMergePart reports whether a package part can contain merge fields.
func isMergePart(name string) bool {
	if name == documentPart {
		return true
	}
	for _, pattern := range []string{"word/header*.xml", "word/footer*.xml"} {
		if ok, _ := path.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// Fields returns the distinct MERGEFIELD names in the template, sorted.
func (t *Template) Fields() []string {
	return append([]string(nil), t.fields...)
}

// MergePages writes a DOCX to w holding one copy of the document body per
// record, separated by page breaks. Header and footer fields take the values
// of the first record. Fields without a value in the record are left as is.
func (t *Template) MergePages(records []map[string]string, w io.Writer) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	zw := zip.NewWriter(w)
	for _, e := range t.entries {
		data := e.data
		if base, ok := t.prepared[e.name]; ok {
			var err error
			if e.name == documentPart {
				data, err = mergeBody(base, records)
			} else {
				data, err = fillPart(base, records[0])
			}
			if err != nil {
				return fmt.Errorf("%s: %w", e.name, err)
			}
		}

		method := e.method
		if method != zip.Store {
			method = zip.Deflate
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: method, Modified: e.modified})
		if err != nil {
			return fmt.Errorf("writing %s: %w", e.name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("writing %s: %w", e.name, err)
		}
	}
	return zw.Close()
}

// MergeFile is MergePages into a new file at dest. A failed merge removes dest.
func (t *Template) MergeFile(records []map[string]string, dest string) (err error) {
	f, err := os.Create(dest) // #nosec G304 -- dest is inside the run workspace
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(dest)
		}
	}()

	return t.MergePages(records, f)
}

// AngleTokens returns the distinct <<name>> and «name» tokens written as plain
// text in the document body. Templates that use them instead of real merge
// fields are reported by the analyzer.
func (t *Template) AngleTokens() ([]string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(t.prepared[documentPart]); err != nil {
		return nil, err
	}
	return scanTokens(doc.Root()), nil
}

// mergeBody repeats the body blocks once per record.
func mergeBody(base []byte, records []map[string]string) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(base); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, ErrNoBody
	}
	body := root.SelectElement("w:body")
	if body == nil {
		return nil, ErrNoBody
	}

	var blocks []*etree.Element
	var sectPr *etree.Element
	for _, el := range body.ChildElements() {
		if isTag(el, "sectPr") {
			sectPr = el.Copy()
			continue
		}
		blocks = append(blocks, el.Copy())
	}
	body.Child = nil

	for i, rec := range records {
		if i > 0 {
			body.AddChild(pageBreak())
		}
		for _, b := range blocks {
			c := b.Copy()
			fill(c, rec)
			body.AddChild(c)
		}
	}
	if sectPr != nil {
		body.AddChild(sectPr)
	}

	return doc.WriteToBytes()
}

func fillPart(base []byte, rec map[string]string) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(base); err != nil {
		return nil, err
	}
	if root := doc.Root(); root != nil {
		fill(root, rec)
	}
	return doc.WriteToBytes()
}

func pageBreak() *etree.Element {
	p := etree.NewElement("w:p")
	br := p.CreateElement("w:r").CreateElement("w:br")
	br.CreateAttr("w:type", "page")
	return p
}

// stripMailMerge drops the w:mailMerge data source binding so renderers do
// not try to reconnect to the original data source.
func stripMailMerge(data []byte) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return data, nil
	}
	mm := root.SelectElement("w:mailMerge")
	if mm == nil {
		return data, nil
	}
	root.RemoveChild(mm)

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
