package docmerge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/alnah/go-docmerge/internal/fileutil"
	"github.com/alnah/go-docmerge/internal/tabular"
)

// Job describes one generation run.
type Job struct {
	Template string // .docx with MERGEFIELDs
	Data     string // .csv/.xlsx; may be empty when every rule is constant
	Output   string // destination PDF
	Mapping  string // mapping document path; ignored when Rules is set
	Rules    Mapping

	ChunkSize      int // 0 = DefaultChunkSize
	RenderWorkers  int // 0 = derived
	ConvertWorkers int // 0 = derived

	TableOptions []tabular.Option
}

// TableLoader reads a data source.
type TableLoader func(path string, opts ...tabular.Option) (*tabular.Table, error)

// Generator runs the merge pipeline: records, chunks, rendering, conversion
// and the final PDF merge.
type Generator struct {
	logger       *slog.Logger
	progress     io.Writer
	workDir      string
	maxWorkers   int
	openRenderer RendererFactory
	converter    DocumentConverter
	merger       ArtifactMerger
	counter      PageCounter
	loadTable    TableLoader
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithProgressWriter sets where the JSON-lines progress stream goes.
func WithProgressWriter(w io.Writer) Option {
	return func(g *Generator) {
		if w != nil {
			g.progress = w
		}
	}
}

// WithWorkDir sets the parent directory of the run's scratch directory.
func WithWorkDir(dir string) Option {
	return func(g *Generator) { g.workDir = dir }
}

// WithMaxWorkers sets the ceiling applied to derived pool sizes.
func WithMaxWorkers(n int) Option {
	return func(g *Generator) { g.maxWorkers = n }
}

// WithRendererFactory replaces template opening.
func WithRendererFactory(f RendererFactory) Option {
	return func(g *Generator) {
		if f != nil {
			g.openRenderer = f
		}
	}
}

// WithConverter replaces the document converter.
func WithConverter(c DocumentConverter) Option {
	return func(g *Generator) {
		if c != nil {
			g.converter = c
		}
	}
}

// WithMerger replaces the PDF merger. If m also implements PageCounter it is
// used for the page count check.
func WithMerger(m ArtifactMerger) Option {
	return func(g *Generator) {
		if m != nil {
			g.merger = m
			g.counter, _ = m.(PageCounter)
		}
	}
}

// WithTableLoader replaces data source loading.
func WithTableLoader(l TableLoader) Option {
	return func(g *Generator) {
		if l != nil {
			g.loadTable = l
		}
	}
}

// NewGenerator creates a Generator. Without WithConverter the renderer is
// discovered once, here.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		progress:     io.Discard,
		maxWorkers:   DefaultMaxPoolSize,
		openRenderer: OpenDocxRenderer,
		loadTable:    tabular.Load,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.converter == nil {
		g.converter = NewSofficeConverter(NewLocator("", nil))
	}
	if g.merger == nil {
		m := NewPDFMerger()
		g.merger, g.counter = m, m
	}
	return g
}

// Generate runs the pipeline and writes meta and progress events.
// It does not write the final result line; see Run.
func (g *Generator) Generate(ctx context.Context, job Job) (*Result, error) {
	rep, log := g.begin()
	return g.generate(ctx, job, rep, log)
}

// Run is Generate followed by the final result line, success or failure.
func (g *Generator) Run(ctx context.Context, job Job) (Result, error) {
	rep, log := g.begin()

	res, err := g.generate(ctx, job, rep, log)
	var final Result
	if err != nil {
		log.Error("generation failed", "error", err)
		final = Failed(err)
	} else {
		log.Info("done", "pages", res.PageCount, "output", res.OutputPath)
		final = *res
	}

	if werr := rep.Result(final); werr != nil && err == nil {
		err = fmt.Errorf("writing result: %w", werr)
	}
	return final, err
}

func (g *Generator) begin() (*Reporter, *slog.Logger) {
	log := g.logger.With("component", "pipeline", "run_id", uuid.NewString())
	return NewReporter(g.progress, log), log
}

func (g *Generator) generate(ctx context.Context, job Job, rep *Reporter, log *slog.Logger) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	log.Info("starting generator",
		"template", job.Template, "data", job.Data, "output", job.Output, "chunk_size", job.ChunkSize)

	if !fileutil.HasExtension(job.Template, ".docx") {
		return nil, ErrTemplateType
	}
	if job.Output == "" {
		return nil, ErrMissingOutput
	}
	if dir := filepath.Dir(job.Output); !fileutil.DirExists(dir) {
		return nil, fmt.Errorf("%w: %s", ErrOutputDir, dir)
	}
	chunkSize := job.ChunkSize
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkSize < 0 {
		return nil, ErrInvalidChunkSize
	}

	mapping := job.Rules
	if mapping == nil {
		if mapping, err = LoadMapping(job.Mapping); err != nil {
			return nil, err
		}
	}
	log.Info("mapping loaded", "variables", len(mapping))
	log.Debug("mapping variables", "names", mapping.Variables())

	var rows []Row
	if job.Data != "" {
		t, err := g.loadTable(job.Data, job.TableOptions...)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDataSource, err)
		}
		rows = t.Rows
		log.Info("data loaded", "rows", len(rows), "columns", len(t.Headers))
	}

	records, err := BuildRecords(mapping, rows)
	if err != nil {
		return nil, err
	}
	csvRules, constRules := mapping.Counts()
	if mapping.AllConstant() {
		log.Info("all mappings are constant, generating a single record")
	}
	log.Info("mapping breakdown", "csv", csvRules, "constant", constRules, "records", len(records))

	renderer, err := g.openRenderer(job.Template)
	if err != nil {
		return nil, err
	}
	chunks, err := PlanChunks(records, chunkSize)
	if err != nil {
		return nil, err
	}

	total := len(records)
	if err := rep.Meta(total); err != nil {
		return nil, fmt.Errorf("writing progress: %w", err)
	}

	ws, err := NewWorkspace(g.workDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := ws.Close(); cerr != nil {
			log.Warn("workspace cleanup failed", "error", cerr)
			return
		}
		log.Debug("cleaned workspace", "dir", ws.Root())
	}()

	renderN := ResolvePoolSize(job.RenderWorkers, g.maxWorkers)
	convertN := ResolvePoolSize(job.ConvertWorkers, g.maxWorkers)
	log.Info("chunking",
		"chunks", len(chunks), "last_chunk", len(chunks[len(chunks)-1].Records),
		"render_workers", renderN, "convert_workers", convertN, "workspace", ws.Root())

	rendered, err := g.render(ctx, renderer, ws, chunks, renderN)
	if err != nil {
		return nil, err
	}

	log.Info("starting conversion")
	converted, err := g.convert(ctx, ws, rendered, convertN, total, rep, log)
	if err != nil {
		return nil, err
	}

	log.Info("merging PDFs", "inputs", len(converted))
	paths := make([]string, len(converted))
	for i, c := range converted {
		paths[i] = c.Path
	}
	if err := g.merger.Merge(ctx, paths, job.Output); err != nil {
		return nil, err
	}
	g.checkPages(job.Output, total, log)

	return &Result{
		Success:         true,
		PageCount:       total,
		VariablesFound:  len(renderer.Fields()),
		VariablesMapped: len(mapping),
		OutputPath:      job.Output,
	}, nil
}

// render fills one document per chunk and returns them in index order.
func (g *Generator) render(ctx context.Context, r DocumentRenderer, ws *Workspace, chunks []Chunk, workers int) ([]RenderedChunk, error) {
	pool := NewPool(workers, func(ctx context.Context, c Chunk) (RenderedChunk, error) {
		dest := ws.ChunkPath(c.Index, ".docx")
		if err := r.Render(ctx, c.Records, dest); err != nil {
			return RenderedChunk{}, err
		}
		return RenderedChunk{Index: c.Index, Size: len(c.Records), Path: dest}, nil
	})

	b := pool.Start(ctx, chunks)
	out := make([]RenderedChunk, 0, len(chunks))
	for o := range b.Results() {
		if o.Err != nil {
			b.Abandon()
			return nil, chunkError(StageRender, o.Task.Index, o.Err)
		}
		out = append(out, o.Value)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

// convert turns every rendered chunk into a PDF, reporting progress as each
// finishes, and returns them in index order.
func (g *Generator) convert(ctx context.Context, ws *Workspace, rendered []RenderedChunk, workers, total int, rep *Reporter, log *slog.Logger) ([]ConvertedChunk, error) {
	clog := log.With("component", "converter")
	pool := NewPool(workers, func(ctx context.Context, rc RenderedChunk) (ConvertedChunk, error) {
		profile, release, err := ws.NewProfile(rc.Index)
		if err != nil {
			return ConvertedChunk{}, err
		}
		defer func() {
			if rerr := release(); rerr != nil {
				clog.Warn("profile cleanup failed", "chunk", rc.Index, "error", rerr)
			}
		}()

		pdf, err := g.converter.Convert(ctx, ConvertRequest{Input: rc.Path, OutDir: ws.Root(), ProfileDir: profile})
		if err != nil {
			return ConvertedChunk{}, err
		}
		clog.Debug("converted", "chunk", rc.Index, "pdf", pdf)
		return ConvertedChunk{Index: rc.Index, Size: rc.Size, Path: pdf}, nil
	})

	b := pool.Start(ctx, rendered)
	out := make([]ConvertedChunk, 0, len(rendered))
	processed := 0
	for o := range b.Results() {
		if o.Err != nil {
			b.Abandon()
			return nil, chunkError(StageConvert, o.Task.Index, o.Err)
		}
		processed += o.Value.Size
		if err := rep.Progress(processed, total, StageConverting); err != nil {
			b.Abandon()
			return nil, fmt.Errorf("writing progress: %w", err)
		}
		out = append(out, o.Value)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

// checkPages compares the merged page count with the record count. Templates
// longer than one page make them differ legitimately, so it only warns.
func (g *Generator) checkPages(path string, records int, log *slog.Logger) {
	if g.counter == nil {
		return
	}
	n, err := g.counter.PageCount(path)
	if err != nil {
		log.Warn("cannot read merged page count", "error", err)
		return
	}
	if n != records {
		log.Warn("merged page count differs from record count", "pages", n, "records", records)
	}
}

func chunkError(stage Stage, index int, err error) error {
	var ce *ChunkError
	if errors.As(err, &ce) {
		return err
	}
	return &ChunkError{Stage: stage, Index: index, Err: err}
}
