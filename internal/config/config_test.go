package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Generate.ChunkSize != DefaultChunkSize {
		t.Errorf("Generate.ChunkSize = %d, want %d", cfg.Generate.ChunkSize, DefaultChunkSize)
	}
	if cfg.Generate.MaxWorkers != DefaultMaxWorkers {
		t.Errorf("Generate.MaxWorkers = %d, want %d", cfg.Generate.MaxWorkers, DefaultMaxWorkers)
	}
	if cfg.Generate.RenderWorkers != 0 || cfg.Generate.ConvertWorkers != 0 {
		t.Errorf("worker counts = %d/%d, want 0/0 (derived)", cfg.Generate.RenderWorkers, cfg.Generate.ConvertWorkers)
	}
	if cfg.Renderer.ExportFilter != DefaultExportFilter {
		t.Errorf("Renderer.ExportFilter = %q, want %q", cfg.Renderer.ExportFilter, DefaultExportFilter)
	}
	if cfg.Data.SheetIndex != -1 {
		t.Errorf("Data.SheetIndex = %d, want -1", cfg.Data.SheetIndex)
	}
	if cfg.Analyze.Timeout != DefaultTimeout {
		t.Errorf("Analyze.Timeout = %v, want %v", cfg.Analyze.Timeout, DefaultTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestValidateFieldLength(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		maxLength int
		wantErr   bool
	}{
		{"empty value", "", 10, false},
		{"at limit", strings.Repeat("a", 10), 10, false},
		{"over limit", strings.Repeat("a", 11), 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFieldLength("field", tt.value, tt.maxLength)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFieldLength() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrFieldTooLong) {
				t.Errorf("error = %v, want ErrFieldTooLong", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
		wantMsg string
	}{
		{
			name:   "defaults are valid",
			modify: func(*Config) {},
		},
		{
			name:   "zero chunk size means default",
			modify: func(c *Config) { c.Generate.ChunkSize = 0 },
		},
		{
			name:    "negative chunk size",
			modify:  func(c *Config) { c.Generate.ChunkSize = -1 },
			wantErr: ErrFieldRange,
			wantMsg: "generate.chunkSize",
		},
		{
			name:    "chunk size over limit",
			modify:  func(c *Config) { c.Generate.ChunkSize = MaxChunkSize + 1 },
			wantErr: ErrFieldRange,
		},
		{
			name:    "render workers over limit",
			modify:  func(c *Config) { c.Generate.RenderWorkers = MaxWorkerCount + 1 },
			wantErr: ErrFieldRange,
			wantMsg: "generate.renderWorkers",
		},
		{
			name:    "negative convert workers",
			modify:  func(c *Config) { c.Generate.ConvertWorkers = -2 },
			wantErr: ErrFieldRange,
			wantMsg: "generate.convertWorkers",
		},
		{
			name:    "max workers over limit",
			modify:  func(c *Config) { c.Generate.MaxWorkers = 1000 },
			wantErr: ErrFieldRange,
		},
		{
			name:    "renderer path too long",
			modify:  func(c *Config) { c.Renderer.Path = strings.Repeat("p", MaxPathLength+1) },
			wantErr: ErrFieldTooLong,
		},
		{
			name: "too many candidates",
			modify: func(c *Config) {
				c.Renderer.Candidates = make([]string, MaxCandidates+1)
			},
			wantErr: ErrFieldRange,
		},
		{
			name:    "candidate too long",
			modify:  func(c *Config) { c.Renderer.Candidates = []string{strings.Repeat("c", MaxPathLength+1)} },
			wantErr: ErrFieldTooLong,
			wantMsg: "renderer.candidates[0]",
		},
		{
			name:    "non-pdf export filter",
			modify:  func(c *Config) { c.Renderer.ExportFilter = "docx" },
			wantMsg: "renderer.exportFilter",
		},
		{
			name:   "custom pdf export filter",
			modify: func(c *Config) { c.Renderer.ExportFilter = "pdf:writer_pdf_Export" },
		},
		{
			name:    "sheet name too long",
			modify:  func(c *Config) { c.Data.SheetName = strings.Repeat("s", MaxSheetNameLength+1) },
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "sheet index below -1",
			modify:  func(c *Config) { c.Data.SheetIndex = -2 },
			wantErr: ErrFieldRange,
		},
		{
			name:    "invalid delimiter",
			modify:  func(c *Config) { c.Data.Delimiter = ";;" },
			wantMsg: "data.delimiter",
		},
		{
			name:   "named delimiter",
			modify: func(c *Config) { c.Data.Delimiter = "semicolon" },
		},
		{
			name:    "negative timeout",
			modify:  func(c *Config) { c.Analyze.Timeout = -time.Second },
			wantErr: ErrFieldRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil && tt.wantMsg == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Validate() error = %q, want containing %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("valid file path loads config", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "test.yaml")
		content := `generate:
  chunkSize: 50
  convertWorkers: 3
renderer:
  path: /opt/libreoffice/program/soffice
data:
  encoding: windows-1252
  delimiter: ";"
analyze:
  timeout: 5s
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		cfg, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Generate.ChunkSize != 50 {
			t.Errorf("Generate.ChunkSize = %d, want 50", cfg.Generate.ChunkSize)
		}
		if cfg.Generate.ConvertWorkers != 3 {
			t.Errorf("Generate.ConvertWorkers = %d, want 3", cfg.Generate.ConvertWorkers)
		}
		if cfg.Renderer.Path != "/opt/libreoffice/program/soffice" {
			t.Errorf("Renderer.Path = %q", cfg.Renderer.Path)
		}
		if cfg.Data.Encoding != "windows-1252" || cfg.Data.Delimiter != ";" {
			t.Errorf("Data = %+v", cfg.Data)
		}
		if cfg.Analyze.Timeout != 5*time.Second {
			t.Errorf("Analyze.Timeout = %v, want 5s", cfg.Analyze.Timeout)
		}
	})

	t.Run("missing fields keep defaults", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "partial.yaml")
		if err := os.WriteFile(configPath, []byte("workspace:\n  dir: /var/tmp\n"), 0600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		cfg, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Workspace.Dir != "/var/tmp" {
			t.Errorf("Workspace.Dir = %q, want /var/tmp", cfg.Workspace.Dir)
		}
		if cfg.Generate.ChunkSize != DefaultChunkSize {
			t.Errorf("Generate.ChunkSize = %d, want default %d", cfg.Generate.ChunkSize, DefaultChunkSize)
		}
		if cfg.Data.SheetIndex != -1 {
			t.Errorf("Data.SheetIndex = %d, want -1", cfg.Data.SheetIndex)
		}
	})

	t.Run("nonexistent file path returns ErrConfigNotFound", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("unknown field returns ErrConfigParse", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "typo.yaml")
		if err := os.WriteFile(configPath, []byte("generate:\n  chunksize: 10\n"), 0600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid values fail validation", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "bad.yaml")
		if err := os.WriteFile(configPath, []byte("generate:\n  chunkSize: -5\n"), 0600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrFieldRange) {
			t.Errorf("error = %v, want ErrFieldRange", err)
		}
	})

	t.Run("config name resolves yaml in current directory", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "myconfig.yaml"), []byte("generate:\n  chunkSize: 7\n"), 0600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		originalWd, err := os.Getwd()
		if err != nil {
			t.Fatalf("failed to get working directory: %v", err)
		}
		defer os.Chdir(originalWd)
		if err := os.Chdir(dir); err != nil {
			t.Fatalf("chdir: %v", err)
		}

		cfg, err := LoadConfig("myconfig")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Generate.ChunkSize != 7 {
			t.Errorf("Generate.ChunkSize = %d, want 7", cfg.Generate.ChunkSize)
		}
	})

	t.Run("config name resolves yml when yaml not found", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "myconfig.yml"), []byte("generate:\n  chunkSize: 9\n"), 0600); err != nil {
			t.Fatalf("setup: %v", err)
		}

		originalWd, err := os.Getwd()
		if err != nil {
			t.Fatalf("failed to get working directory: %v", err)
		}
		defer os.Chdir(originalWd)
		if err := os.Chdir(dir); err != nil {
			t.Fatalf("chdir: %v", err)
		}

		cfg, err := LoadConfig("myconfig")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Generate.ChunkSize != 9 {
			t.Errorf("Generate.ChunkSize = %d, want 9", cfg.Generate.ChunkSize)
		}
	})

	t.Run("config name not found lists tried paths", func(t *testing.T) {
		dir := t.TempDir()

		originalWd, err := os.Getwd()
		if err != nil {
			t.Fatalf("failed to get working directory: %v", err)
		}
		defer os.Chdir(originalWd)
		if err := os.Chdir(dir); err != nil {
			t.Fatalf("chdir: %v", err)
		}

		_, err = LoadConfig("nonexistent")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
		if !strings.Contains(err.Error(), "nonexistent.yaml") || !strings.Contains(err.Error(), "nonexistent.yml") {
			t.Errorf("error = %q, want both extensions listed", err)
		}
	})
}
