package docmerge

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alnah/go-docmerge/internal/fileutil"
)

// DefaultExportFilter is the --convert-to argument. Empty pages are skipped so
// a trailing page break does not add a blank page per chunk.
const DefaultExportFilter = "pdf:writer_pdf_Export:IsSkipEmptyPages=true"

// maxOutputInError caps renderer output quoted in errors.
const maxOutputInError = 2048

// ConvertRequest describes one conversion.
type ConvertRequest struct {
	Input      string // DOCX to convert
	OutDir     string // Directory receiving <stem>.pdf
	ProfileDir string // Isolated renderer profile; empty uses the user's profile
}

// DocumentConverter turns a rendered document into a PDF.
// Implementations must tolerate concurrent calls with distinct profiles.
type DocumentConverter interface {
	Convert(ctx context.Context, req ConvertRequest) (pdfPath string, err error)
}

// SofficeConverter converts documents with headless LibreOffice.
type SofficeConverter struct {
	binary string
	filter string
	runner CommandRunner
}

// ConverterOption configures a SofficeConverter.
type ConverterOption func(*SofficeConverter)

// WithExportFilter overrides DefaultExportFilter.
func WithExportFilter(filter string) ConverterOption {
	return func(c *SofficeConverter) {
		if filter != "" {
			c.filter = filter
		}
	}
}

// WithCommandRunner replaces process execution (used by tests).
func WithCommandRunner(r CommandRunner) ConverterOption {
	return func(c *SofficeConverter) {
		if r != nil {
			c.runner = r
		}
	}
}

// NewSofficeConverter resolves the renderer binary once through loc.
// When nothing is found the converter is still returned and every Convert
// fails with ErrRendererNotFound.
func NewSofficeConverter(loc Locator, opts ...ConverterOption) *SofficeConverter {
	c := &SofficeConverter{filter: DefaultExportFilter, runner: ExecRunner{}}
	if loc != nil {
		if p, ok := loc.Locate(); ok {
			c.binary = p
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Binary returns the resolved renderer path, or "" when none was found.
func (c *SofficeConverter) Binary() string {
	return c.binary
}

// Convert runs the renderer on req.Input and returns the produced PDF path.
func (c *SofficeConverter) Convert(ctx context.Context, req ConvertRequest) (string, error) {
	if c.binary == "" {
		return "", ErrRendererNotFound
	}

	outDir := req.OutDir
	if outDir == "" {
		outDir = filepath.Dir(req.Input)
	}
	outDir, err := filepath.Abs(outDir)
	if err != nil {
		return "", fmt.Errorf("%w: resolving output dir: %v", ErrConversion, err)
	}

	args := []string{"--headless", "--norestore", "--invisible"}
	if req.ProfileDir != "" {
		uri, err := fileutil.FileURI(req.ProfileDir)
		if err != nil {
			return "", fmt.Errorf("%w: profile: %v", ErrConversion, err)
		}
		args = append(args, "-env:UserInstallation="+uri)
	}
	args = append(args, "--convert-to", c.filter, "--outdir", outDir, req.Input)

	out, err := c.runner.Run(ctx, c.binary, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%w: %v", ErrConversion, ctxErr)
		}
		return "", fmt.Errorf("%w: %v%s", ErrRendererFailed, err, quoteOutput(out))
	}

	produced := filepath.Join(outDir, fileutil.Stem(req.Input)+".pdf")
	if !fileutil.FileExists(produced) {
		return "", fmt.Errorf("%w: expected %s%s", ErrArtifactMissing, produced, quoteOutput(out))
	}
	return produced, nil
}

// Version returns the first line of `soffice --version`.
func (c *SofficeConverter) Version(ctx context.Context) (string, error) {
	if c.binary == "" {
		return "", ErrRendererNotFound
	}
	out, err := c.runner.Run(ctx, c.binary, "--version")
	if err != nil {
		return "", fmt.Errorf("%w: %v%s", ErrRendererFailed, err, quoteOutput(out))
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(line), nil
}

// quoteOutput formats renderer output for an error message.
func quoteOutput(out []byte) string {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return ""
	}
	truncated := false
	if len(out) > maxOutputInError {
		out = out[:maxOutputInError]
		truncated = true
	}

	var b strings.Builder
	b.WriteString(": ")
	sc := bufio.NewScanner(bytes.NewReader(out))
	first := true
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !first {
			b.WriteString(" | ")
		}
		b.WriteString(line)
		first = false
	}
	if truncated {
		b.WriteString(" ...")
	}
	return b.String()
}
