package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/alnah/go-docmerge/internal/config"
	"github.com/alnah/go-docmerge/internal/tabular"
)

// loadSettings resolves the configuration for one command:
// config file (flag, else DOCMERGE_CONFIG) then environment overrides.
// Flags are applied by the caller.
func loadSettings(configFlag string, envCfg *envConfig) (*config.Config, error) {
	name := configFlag
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		var err error
		if cfg, err = config.LoadConfig(name); err != nil {
			return nil, err
		}
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

// mergeDataFlags applies explicitly set data flags over cfg.
func mergeDataFlags(f *dataFlags, cfg *config.Config) {
	if f.sheetName != "" {
		cfg.Data.SheetName = f.sheetName
	}
	if f.sheetIndex >= 0 {
		cfg.Data.SheetIndex = f.sheetIndex
	}
	if f.encoding != "" {
		cfg.Data.Encoding = f.encoding
	}
	if f.delimiter != "" {
		cfg.Data.Delimiter = f.delimiter
	}
}

// tableOptions converts the data section into tabular options.
func tableOptions(d config.DataConfig) ([]tabular.Option, error) {
	var opts []tabular.Option
	if d.SheetName != "" {
		opts = append(opts, tabular.WithSheetName(d.SheetName))
	}
	if d.SheetIndex >= 0 {
		opts = append(opts, tabular.WithSheetIndex(d.SheetIndex))
	}
	if d.Encoding != "" {
		opts = append(opts, tabular.WithEncoding(d.Encoding))
	}
	delim, err := tabular.ParseDelimiter(d.Delimiter)
	if err != nil {
		return nil, fmt.Errorf("--delimiter: %w", err)
	}
	if delim != 0 {
		opts = append(opts, tabular.WithDelimiter(delim))
	}
	return opts, nil
}

// newLogger builds the stderr diagnostic logger.
// Verbose lowers the level to debug, quiet raises it to warn.
func newLogger(w io.Writer, f commonFlags) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case f.verbose:
		level = slog.LevelDebug
	case f.quiet:
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
