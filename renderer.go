package docmerge

import (
	"context"
	"fmt"

	"github.com/alnah/go-docmerge/internal/docx"
)

// DocumentRenderer fills a template with records and writes one document.
// Implementations must be safe for concurrent Render calls.
type DocumentRenderer interface {
	// Fields returns the distinct variable names found in the template.
	Fields() []string
	// Render writes a document holding one page set per record to dest.
	Render(ctx context.Context, records []Record, dest string) error
}

// RendererFactory opens a template for rendering.
type RendererFactory func(templatePath string) (DocumentRenderer, error)

// DocxRenderer renders MERGEFIELD templates.
type DocxRenderer struct {
	tmpl *docx.Template
}

// OpenDocxRenderer parses the template at path.
func OpenDocxRenderer(path string) (DocumentRenderer, error) {
	tmpl, err := docx.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateRead, err)
	}
	return &DocxRenderer{tmpl: tmpl}, nil
}

// Fields returns the template's merge field names.
func (r *DocxRenderer) Fields() []string {
	return r.tmpl.Fields()
}

// Render merges records into dest. ctx is checked before work starts; a
// single merge is not interruptible.
func (r *DocxRenderer) Render(ctx context.Context, records []Record, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.tmpl.MergeFile(records, dest)
}
