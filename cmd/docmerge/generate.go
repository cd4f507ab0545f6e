package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-docmerge"
	"github.com/alnah/go-docmerge/internal/config"
	"github.com/alnah/go-docmerge/internal/hints"
	"github.com/alnah/go-docmerge/internal/tabular"
)

// Sentinel errors for CLI usage.
var (
	ErrUsage          = errors.New("invalid usage")
	ErrUnexpectedArgs = fmt.Errorf("%w: unexpected arguments", ErrUsage)
)

// runGenerateCmd executes the generate command and returns an exit code.
// stdout only ever carries JSON lines, ending with exactly one result line.
func runGenerateCmd(args []string, env *Environment) int {
	flags, positional, err := parseGenerateFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		err = fmt.Errorf("%w: %v", ErrUsage, err)
		writeFailure(env.Stdout, err)
		fmt.Fprintln(env.Stderr, "error:", err)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := runGenerate(ctx, flags, positional, env); err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, generateHint(err, flags))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runGenerate resolves settings and runs the pipeline. Errors raised before
// the pipeline starts are written as a failure line here; the pipeline
// writes its own.
func runGenerate(ctx context.Context, flags *generateFlags, positional []string, env *Environment) error {
	warnUnknownEnvVars(env.Stderr)

	job, cfg, err := buildJob(flags, positional, loadEnvConfig())
	if err != nil {
		writeFailure(env.Stdout, err)
		return err
	}

	logger := newLogger(env.Stderr, flags.common)

	converter := env.Converter
	if converter == nil {
		sc := docmerge.NewSofficeConverter(
			docmerge.NewLocator(cfg.Renderer.Path, cfg.Renderer.Candidates),
			docmerge.WithExportFilter(cfg.Renderer.ExportFilter),
		)
		if sc.Binary() != "" {
			logger.Debug("renderer discovered", "path", sc.Binary())
		}
		converter = sc
	}

	gen := docmerge.NewGenerator(
		docmerge.WithLogger(logger),
		docmerge.WithProgressWriter(env.Stdout),
		docmerge.WithWorkDir(cfg.Workspace.Dir),
		docmerge.WithMaxWorkers(cfg.Generate.MaxWorkers),
		docmerge.WithConverter(converter),
		docmerge.WithMerger(env.Merger),
	)

	_, err = gen.Run(ctx, job)
	return err
}

// buildJob merges config file, environment and flags into a Job.
func buildJob(flags *generateFlags, positional []string, envCfg *envConfig) (docmerge.Job, *config.Config, error) {
	if len(positional) > 0 {
		return docmerge.Job{}, nil, fmt.Errorf("%w: %s", ErrUnexpectedArgs, strings.Join(positional, " "))
	}

	cfg, err := loadSettings(flags.common.config, envCfg)
	if err != nil {
		return docmerge.Job{}, nil, err
	}
	mergeGenerateFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return docmerge.Job{}, nil, err
	}

	opts, err := tableOptions(cfg.Data)
	if err != nil {
		return docmerge.Job{}, nil, err
	}

	return docmerge.Job{
		Template:       flags.template,
		Data:           flags.data,
		Output:         flags.output,
		Mapping:        flags.mapping,
		ChunkSize:      cfg.Generate.ChunkSize,
		RenderWorkers:  cfg.Generate.RenderWorkers,
		ConvertWorkers: cfg.Generate.ConvertWorkers,
		TableOptions:   opts,
	}, cfg, nil
}

// mergeGenerateFlags applies explicitly set flags over cfg.
// Zero values mean "not set"; negative values reach Validate and fail there.
func mergeGenerateFlags(f *generateFlags, cfg *config.Config) {
	if f.pool.chunkSize != 0 {
		cfg.Generate.ChunkSize = f.pool.chunkSize
	}
	if f.pool.renderWorkers != 0 {
		cfg.Generate.RenderWorkers = f.pool.renderWorkers
	}
	if f.pool.convertWorkers != 0 {
		cfg.Generate.ConvertWorkers = f.pool.convertWorkers
	}
	if f.pool.maxWorkers != 0 {
		cfg.Generate.MaxWorkers = f.pool.maxWorkers
	}

	if f.renderer.soffice != "" {
		cfg.Renderer.Path = f.renderer.soffice
	}
	if f.renderer.exportFilter != "" {
		cfg.Renderer.ExportFilter = f.renderer.exportFilter
	}
	if f.renderer.workDir != "" {
		cfg.Workspace.Dir = f.renderer.workDir
	}

	mergeDataFlags(&f.source, cfg)
}

// writeFailure writes a single failure line to the JSON channel.
func writeFailure(w io.Writer, err error) {
	_ = json.NewEncoder(w).Encode(docmerge.Failed(err))
}

// generateHint returns an actionable hint for err, or "".
func generateHint(err error, flags *generateFlags) string {
	switch {
	case errors.Is(err, docmerge.ErrRendererNotFound):
		return hints.ForRendererNotFound()
	case errors.Is(err, docmerge.ErrRendererFailed):
		return hints.ForRendererFailure()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(searchedPaths(err))
	case errors.Is(err, docmerge.ErrOutputDir):
		return hints.ForOutputDirectory()
	case errors.Is(err, docmerge.ErrNoRecords):
		return hints.ForNoRecords()
	case errors.Is(err, tabular.ErrUnknownEncoding):
		return hints.ForEncoding()
	case errors.Is(err, tabular.ErrSheetNotFound):
		sheets, _ := tabular.Sheets(flags.data)
		return hints.ForSheetNotFound(sheets)
	}
	return ""
}

// searchedPaths extracts the locations listed by a config-not-found error.
func searchedPaths(err error) []string {
	_, list, ok := strings.Cut(err.Error(), "tried ")
	if !ok {
		return nil
	}
	return strings.Split(list, ", ")
}
