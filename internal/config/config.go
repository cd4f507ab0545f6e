package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-docmerge/internal/fileutil"
	"github.com/alnah/go-docmerge/internal/tabular"
	"github.com/alnah/go-docmerge/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrFieldRange      = errors.New("field out of range")
)

// Field limits.
const (
	MaxChunkSize       = 100000
	MaxWorkerCount     = 64
	MaxPathLength      = 4096
	MaxFilterLength    = 200 // "pdf:writer_pdf_Export:{...}"
	MaxSheetNameLength = 31  // Excel limit
	MaxEncodingLength  = 40
	MaxCandidates      = 32
)

// Defaults mirrored by the library when a field is left at zero.
const (
	DefaultChunkSize    = 200
	DefaultMaxWorkers   = 8
	DefaultExportFilter = "pdf:writer_pdf_Export:IsSkipEmptyPages=true"
	DefaultTimeout      = 30 * time.Second
)

// Config holds all configuration for merge runs.
type Config struct {
	Generate  GenerateConfig  `yaml:"generate"`
	Renderer  RendererConfig  `yaml:"renderer"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Data      DataConfig      `yaml:"data"`
	Analyze   AnalyzeConfig   `yaml:"analyze"`
}

// GenerateConfig sizes the pipeline.
type GenerateConfig struct {
	ChunkSize      int `yaml:"chunkSize"`      // Records per rendered document (0 = default)
	RenderWorkers  int `yaml:"renderWorkers"`  // 0 = derived from GOMAXPROCS
	ConvertWorkers int `yaml:"convertWorkers"` // 0 = derived from GOMAXPROCS
	MaxWorkers     int `yaml:"maxWorkers"`     // Ceiling for derived pool sizes
}

// RendererConfig locates and drives the external renderer.
type RendererConfig struct {
	Path         string   `yaml:"path"`         // Explicit soffice binary (empty = discover)
	Candidates   []string `yaml:"candidates"`   // Extra install locations probed after PATH
	ExportFilter string   `yaml:"exportFilter"` // --convert-to argument
}

// WorkspaceConfig places the scratch directory.
type WorkspaceConfig struct {
	Dir string `yaml:"dir"` // Parent for the run's scratch dir (empty = os.TempDir)
}

// DataConfig tunes data source reading.
type DataConfig struct {
	SheetName  string `yaml:"sheetName"`
	SheetIndex int    `yaml:"sheetIndex"` // -1 = first sheet
	Encoding   string `yaml:"encoding"`   // CSV encoding label (empty = UTF-8)
	Delimiter  string `yaml:"delimiter"`  // CSV separator (empty = comma)
}

// AnalyzeConfig bounds the discovery tasks.
type AnalyzeConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// Validate checks ranges and field lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateRange("generate.chunkSize", c.Generate.ChunkSize, 0, MaxChunkSize); err != nil {
		return err
	}
	if err := validateRange("generate.renderWorkers", c.Generate.RenderWorkers, 0, MaxWorkerCount); err != nil {
		return err
	}
	if err := validateRange("generate.convertWorkers", c.Generate.ConvertWorkers, 0, MaxWorkerCount); err != nil {
		return err
	}
	if err := validateRange("generate.maxWorkers", c.Generate.MaxWorkers, 0, MaxWorkerCount); err != nil {
		return err
	}

	if err := validateFieldLength("renderer.path", c.Renderer.Path, MaxPathLength); err != nil {
		return err
	}
	if len(c.Renderer.Candidates) > MaxCandidates {
		return fmt.Errorf("%w: renderer.candidates (%d entries, max %d)", ErrFieldRange, len(c.Renderer.Candidates), MaxCandidates)
	}
	for i, cand := range c.Renderer.Candidates {
		if err := validateFieldLength(fmt.Sprintf("renderer.candidates[%d]", i), cand, MaxPathLength); err != nil {
			return err
		}
	}
	if err := validateFieldLength("renderer.exportFilter", c.Renderer.ExportFilter, MaxFilterLength); err != nil {
		return err
	}
	if c.Renderer.ExportFilter != "" && !strings.HasPrefix(c.Renderer.ExportFilter, "pdf") {
		return fmt.Errorf("renderer.exportFilter: invalid value %q (must produce pdf)", c.Renderer.ExportFilter)
	}

	if err := validateFieldLength("workspace.dir", c.Workspace.Dir, MaxPathLength); err != nil {
		return err
	}

	if err := validateFieldLength("data.sheetName", c.Data.SheetName, MaxSheetNameLength); err != nil {
		return err
	}
	if c.Data.SheetIndex < -1 {
		return fmt.Errorf("%w: data.sheetIndex must be -1 or greater, got %d", ErrFieldRange, c.Data.SheetIndex)
	}
	if err := validateFieldLength("data.encoding", c.Data.Encoding, MaxEncodingLength); err != nil {
		return err
	}
	if _, err := tabular.ParseDelimiter(c.Data.Delimiter); err != nil {
		return fmt.Errorf("data.delimiter: %w", err)
	}

	if c.Analyze.Timeout < 0 {
		return fmt.Errorf("%w: analyze.timeout must not be negative, got %s", ErrFieldRange, c.Analyze.Timeout)
	}

	return nil
}

func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func validateRange(fieldName string, value, lo, hi int) error {
	if value < lo || value > hi {
		return fmt.Errorf("%w: %s must be between %d and %d, got %d", ErrFieldRange, fieldName, lo, hi, value)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Generate: GenerateConfig{ChunkSize: DefaultChunkSize, MaxWorkers: DefaultMaxWorkers},
		Renderer: RendererConfig{ExportFilter: DefaultExportFilter},
		Data:     DataConfig{SheetIndex: -1},
		Analyze:  AnalyzeConfig{Timeout: DefaultTimeout},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields missing from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.Decode(data, cfg, yamlutil.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-docmerge/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-docmerge", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
