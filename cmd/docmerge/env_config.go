package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-docmerge/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string // DOCMERGE_CONFIG: config file name or path

	// Pipeline sizing
	ChunkSize      int // DOCMERGE_CHUNK_SIZE
	RenderWorkers  int // DOCMERGE_RENDER_WORKERS
	ConvertWorkers int // DOCMERGE_CONVERT_WORKERS
	MaxWorkers     int // DOCMERGE_MAX_WORKERS

	// Renderer and workspace
	Soffice string // DOCMERGE_SOFFICE: explicit soffice binary
	WorkDir string // DOCMERGE_WORKDIR: scratch parent directory

	// Data and analysis
	Encoding       string        // DOCMERGE_ENCODING: CSV encoding label
	AnalyzeTimeout time.Duration // DOCMERGE_ANALYZE_TIMEOUT: analyze per-task timeout
}

// knownEnvVars lists valid DOCMERGE_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"DOCMERGE_CONFIG":          true,
	"DOCMERGE_CHUNK_SIZE":      true,
	"DOCMERGE_RENDER_WORKERS":  true,
	"DOCMERGE_CONVERT_WORKERS": true,
	"DOCMERGE_MAX_WORKERS":     true,
	"DOCMERGE_SOFFICE":         true,
	"DOCMERGE_WORKDIR":         true,
	"DOCMERGE_ENCODING":        true,
	"DOCMERGE_ANALYZE_TIMEOUT": true,
	// Read by doctor to force container detection.
	"DOCMERGE_CONTAINER": true,
}

// loadEnvConfig reads configuration from environment variables.
// Invalid or non-positive numbers are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:     os.Getenv("DOCMERGE_CONFIG"),
		Soffice:        os.Getenv("DOCMERGE_SOFFICE"),
		WorkDir:        os.Getenv("DOCMERGE_WORKDIR"),
		Encoding:       os.Getenv("DOCMERGE_ENCODING"),
		ChunkSize:      positiveInt("DOCMERGE_CHUNK_SIZE"),
		RenderWorkers:  positiveInt("DOCMERGE_RENDER_WORKERS"),
		ConvertWorkers: positiveInt("DOCMERGE_CONVERT_WORKERS"),
		MaxWorkers:     positiveInt("DOCMERGE_MAX_WORKERS"),
	}

	// Parse duration for timeout; bare integers are seconds
	if timeout := os.Getenv("DOCMERGE_ANALYZE_TIMEOUT"); timeout != "" {
		if d, err := parseTimeout(timeout); err == nil {
			cfg.AnalyzeTimeout = d
		}
	}

	return cfg
}

func positiveInt(name string) int {
	v := os.Getenv(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// warnUnknownEnvVars logs warnings for unrecognized DOCMERGE_* variables.
// Helps catch typos like DOCMERGE_CHUNKSIZE instead of DOCMERGE_CHUNK_SIZE.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "DOCMERGE_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Environment values override the file, and flags are applied afterwards,
// giving: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.ChunkSize > 0 {
		cfg.Generate.ChunkSize = env.ChunkSize
	}
	if env.RenderWorkers > 0 {
		cfg.Generate.RenderWorkers = env.RenderWorkers
	}
	if env.ConvertWorkers > 0 {
		cfg.Generate.ConvertWorkers = env.ConvertWorkers
	}
	if env.MaxWorkers > 0 {
		cfg.Generate.MaxWorkers = env.MaxWorkers
	}

	if env.Soffice != "" {
		cfg.Renderer.Path = env.Soffice
	}
	if env.WorkDir != "" {
		cfg.Workspace.Dir = env.WorkDir
	}
	if env.Encoding != "" {
		cfg.Data.Encoding = env.Encoding
	}
	if env.AnalyzeTimeout > 0 {
		cfg.Analyze.Timeout = env.AnalyzeTimeout
	}
}
