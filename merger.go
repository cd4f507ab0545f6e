package docmerge

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/alnah/go-docmerge/internal/fileutil"
)

// ArtifactMerger concatenates PDFs, in the given order, into dest.
// Nothing may be left at dest when Merge fails.
type ArtifactMerger interface {
	Merge(ctx context.Context, inputs []string, dest string) error
}

// PageCounter reads the page count of a PDF.
type PageCounter interface {
	PageCount(path string) (int, error)
}

var disableConfigDir sync.Once

// PDFMerger merges with pdfcpu.
type PDFMerger struct {
	conf *model.Configuration
}

// NewPDFMerger creates a PDFMerger using relaxed validation, which accepts
// the small PDF standard deviations found in some LibreOffice output.
func NewPDFMerger() *PDFMerger {
	// pdfcpu otherwise writes a config directory under the user's home
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFMerger{conf: conf}
}

// Merge writes the concatenation of inputs to dest through a temporary
// sibling file, so dest only ever holds a complete document.
func (m *PDFMerger) Merge(ctx context.Context, inputs []string, dest string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("%w: no PDFs to merge", ErrMerge)
	}
	if dest == "" {
		return ErrMissingOutput
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrMerge, err)
	}

	err := fileutil.AtomicWrite(dest, func(tmp string) error {
		if len(inputs) == 1 {
			return copyFile(inputs[0], tmp)
		}
		return api.MergeCreateFile(inputs, tmp, false, m.conf)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMerge, err)
	}
	return nil
}

// PageCount returns the number of pages in the PDF at path.
func (m *PDFMerger) PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("counting pages of %s: %w", path, err)
	}
	return n, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 -- src is a workspace artifact
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst) // #nosec G304 -- dst is a temp file next to the output
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
