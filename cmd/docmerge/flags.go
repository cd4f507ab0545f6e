package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// dataFlags holds data source reading flags.
type dataFlags struct {
	sheetName  string
	sheetIndex int
	encoding   string
	delimiter  string
}

// poolFlags holds pipeline sizing flags.
type poolFlags struct {
	chunkSize      int
	renderWorkers  int
	convertWorkers int
	maxWorkers     int
}

// rendererFlags holds external renderer flags.
type rendererFlags struct {
	soffice      string
	exportFilter string
	workDir      string
}

// generateFlags holds all flags for the generate command.
type generateFlags struct {
	common   commonFlags
	template string
	data     string
	output   string
	mapping  string
	pool     poolFlags
	renderer rendererFlags
	source   dataFlags
}

// analyzeFlags holds all flags for the analyze command.
type analyzeFlags struct {
	common   commonFlags
	template string
	data     string
	timeout  string
	source   dataFlags
}

// addCommonFlags adds flags shared by generate and analyze.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only log errors and warnings")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log debug details")
}

// addDataFlags adds data source reading flags.
func addDataFlags(fs *flag.FlagSet, f *dataFlags) {
	fs.StringVar(&f.sheetName, "sheet-name", "", "XLSX sheet name")
	fs.IntVar(&f.sheetIndex, "sheet-index", -1, "XLSX sheet index, 0-based (-1 = first sheet)")
	fs.StringVar(&f.encoding, "encoding", "", "CSV encoding, e.g. windows-1252 (default UTF-8)")
	fs.StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: a single character or \"tab\"")
}

// addPoolFlags adds chunking and worker flags. The original short names
// --gen-workers and --conv-workers stay accepted as aliases.
func addPoolFlags(fs *flag.FlagSet, f *poolFlags) {
	fs.IntVar(&f.chunkSize, "chunk-size", 0, "records per rendered document (default 200)")
	fs.IntVar(&f.renderWorkers, "render-workers", 0, "parallel template fills (0 = auto)")
	fs.IntVar(&f.renderWorkers, "gen-workers", 0, "alias for --render-workers")
	fs.IntVar(&f.convertWorkers, "convert-workers", 0, "parallel LibreOffice conversions (0 = auto)")
	fs.IntVar(&f.convertWorkers, "conv-workers", 0, "alias for --convert-workers")
	fs.IntVar(&f.maxWorkers, "max-workers", 0, "ceiling for auto worker counts (default 8)")
	_ = fs.MarkHidden("gen-workers")
	_ = fs.MarkHidden("conv-workers")
}

// addRendererFlags adds external renderer flags.
func addRendererFlags(fs *flag.FlagSet, f *rendererFlags) {
	fs.StringVar(&f.soffice, "soffice", "", "path to the soffice binary")
	fs.StringVar(&f.exportFilter, "export-filter", "", "LibreOffice --convert-to filter")
	fs.StringVar(&f.workDir, "workdir", "", "parent directory for scratch files")
}

// parseGenerateFlags parses generate command flags and returns positional args.
func parseGenerateFlags(args []string) (*generateFlags, []string, error) {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	f := &generateFlags{}

	fs.StringVarP(&f.template, "template", "t", "", "DOCX template with MERGEFIELDs")
	fs.StringVarP(&f.data, "data", "d", "", "CSV or XLSX data file")
	fs.StringVarP(&f.output, "output", "o", "", "merged PDF path")
	fs.StringVarP(&f.mapping, "mapping", "m", "", "mapping file (.json, .yaml)")

	addCommonFlags(fs, &f.common)
	addPoolFlags(fs, &f.pool)
	addRendererFlags(fs, &f.renderer)
	addDataFlags(fs, &f.source)

	fs.Usage = func() { printGenerateUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// parseAnalyzeFlags parses analyze command flags and returns positional args.
func parseAnalyzeFlags(args []string) (*analyzeFlags, []string, error) {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	f := &analyzeFlags{}

	fs.StringVarP(&f.template, "template", "t", "", "DOCX template")
	fs.StringVarP(&f.data, "data", "d", "", "CSV or XLSX data file")
	fs.StringVar(&f.timeout, "timeout", "", "per-task timeout (e.g. 30, 30s, 2m)")

	addCommonFlags(fs, &f.common)
	addDataFlags(fs, &f.source)

	fs.Usage = func() { printAnalyzeUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
