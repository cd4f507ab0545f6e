// Package analyze discovers the variables of a template and the headers of a
// data source, the two lists a caller needs to build a mapping document.
//
// The three discovery tasks (merge fields, plain-text <<tokens>>, data headers)
// run in parallel and each is given the same bounded wait. A task that fails or
// runs late contributes an empty list and the analysis carries on.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alnah/go-docmerge/internal/await"
	"github.com/alnah/go-docmerge/internal/docx"
	"github.com/alnah/go-docmerge/internal/fileutil"
	"github.com/alnah/go-docmerge/internal/tabular"
)

// DefaultTimeout bounds each discovery task.
const DefaultTimeout = 30 * time.Second

// Template sources reported in Result.TemplateSource.
const (
	SourceMergeField  = "mergefield"
	SourceAngleTokens = "angle_tokens"
	SourceNone        = "none"
)

// AngleTokensNote is attached when only plain-text tokens were found.
const AngleTokensNote = "Found only <<var>> tokens. For generation, please convert to real Mail Merge fields."

// ErrTemplateType is returned for templates without a .docx extension.
var ErrTemplateType = errors.New("Template must be a .docx file")

// Request describes one analysis.
type Request struct {
	Template string
	Data     string
	// Timeout bounds each task. Zero uses DefaultTimeout, negative waits forever.
	Timeout      time.Duration
	TableOptions []tabular.Option
}

// Result is the analysis outcome, serialized as the command's JSON line.
type Result struct {
	Success           bool     `json:"success"`
	TemplateVariables []string `json:"template_variables"`
	CSVHeaders        []string `json:"csv_headers"`
	TemplateSource    string   `json:"template_source"`
	Notes             string   `json:"notes"`
}

// Discoverer finds names in a file. Implementations should return promptly
// when ctx is canceled.
type Discoverer func(ctx context.Context, path string) ([]string, error)

// Analyzer runs the discovery tasks.
type Analyzer struct {
	logger  *slog.Logger
	fields  Discoverer
	tokens  Discoverer
	headers func(ctx context.Context, path string, opts ...tabular.Option) ([]string, error)
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithFieldDiscoverer replaces merge-field discovery.
func WithFieldDiscoverer(d Discoverer) Option {
	return func(a *Analyzer) { a.fields = d }
}

// WithTokenDiscoverer replaces plain-text token discovery.
func WithTokenDiscoverer(d Discoverer) Option {
	return func(a *Analyzer) { a.tokens = d }
}

// WithHeaderReader replaces data header discovery.
func WithHeaderReader(fn func(ctx context.Context, path string, opts ...tabular.Option) ([]string, error)) Option {
	return func(a *Analyzer) { a.headers = fn }
}

// New creates an Analyzer backed by the docx and tabular packages.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		fields:  mergeFields,
		tokens:  angleTokens,
		headers: dataHeaders,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "analyze")
	return a
}

// Analyze runs the three discovery tasks and combines their results.
// Only an invalid template type or a canceled ctx is an error.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Result, error) {
	if !fileutil.HasExtension(req.Template, ".docx") {
		return nil, ErrTemplateType
	}
	timeout := req.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	fFields := await.Go(ctx, func(ctx context.Context) ([]string, error) { return a.fields(ctx, req.Template) })
	fTokens := await.Go(ctx, func(ctx context.Context) ([]string, error) { return a.tokens(ctx, req.Template) })
	fHeaders := await.Go(ctx, func(ctx context.Context) ([]string, error) {
		return a.headers(ctx, req.Data, req.TableOptions...)
	})

	fields, err := a.collect(ctx, fFields, timeout, "mergefields")
	if err != nil {
		return nil, err
	}
	tokens, err := a.collect(ctx, fTokens, timeout, "token scan")
	if err != nil {
		return nil, err
	}
	headers, err := a.collect(ctx, fHeaders, timeout, "header read")
	if err != nil {
		return nil, err
	}

	res := &Result{
		Success:           true,
		TemplateVariables: fields,
		CSVHeaders:        headers,
		TemplateSource:    SourceMergeField,
	}
	switch {
	case len(fields) > 0:
	case len(tokens) > 0:
		res.TemplateVariables = tokens
		res.TemplateSource = SourceAngleTokens
		res.Notes = AngleTokensNote
	default:
		res.TemplateSource = SourceNone
	}
	return res, nil
}

// collect waits for one task. Task failures and timeouts are logged and
// yield an empty list, never nil, so the JSON output carries [].
func (a *Analyzer) collect(ctx context.Context, f *await.Future[[]string], timeout time.Duration, name string) ([]string, error) {
	v, ok, err := f.Wait(ctx, timeout, nil)
	switch {
	case !ok && err != nil:
		return nil, fmt.Errorf("analyze %s: %w", name, err)
	case !ok:
		a.logger.Warn(name+" timed out", "timeout", timeout)
		return []string{}, nil
	case err != nil:
		a.logger.Warn(name+" error", "error", err)
		return []string{}, nil
	case v == nil:
		return []string{}, nil
	}
	return v, nil
}

func mergeFields(_ context.Context, path string) ([]string, error) {
	t, err := docx.Open(path)
	if err != nil {
		return nil, err
	}
	return t.Fields(), nil
}

func angleTokens(_ context.Context, path string) ([]string, error) {
	t, err := docx.Open(path)
	if err != nil {
		return nil, err
	}
	return t.AngleTokens()
}

func dataHeaders(_ context.Context, path string, opts ...tabular.Option) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	return tabular.Headers(path, append([]tabular.Option{tabular.WithSniffing()}, opts...)...)
}
