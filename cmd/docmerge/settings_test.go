package main

// Notes:
// - tableOptions: options are opaque closures, so we count them and check
//   their effect through tabular.Load on a real file.
// - newLogger: we test level selection through what reaches the writer.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-docmerge/internal/config"
	"github.com/alnah/go-docmerge/internal/tabular"
)

// ---------------------------------------------------------------------------
// TestTableOptions - Data section to tabular options
// ---------------------------------------------------------------------------

func TestTableOptions(t *testing.T) {
	t.Parallel()

	t.Run("defaults yield no options", func(t *testing.T) {
		t.Parallel()

		opts, err := tableOptions(config.DefaultConfig().Data)
		if err != nil {
			t.Fatalf("tableOptions() unexpected error: %v", err)
		}
		if len(opts) != 0 {
			t.Errorf("got %d options, want 0", len(opts))
		}
	})

	t.Run("delimiter reaches the reader", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, t.TempDir(), "people.csv", "Name|City\nAda|London\n")
		opts, err := tableOptions(config.DataConfig{SheetIndex: -1, Delimiter: "pipe"})
		if err != nil {
			t.Fatalf("tableOptions() unexpected error: %v", err)
		}
		table, err := tabular.Load(path, opts...)
		if err != nil {
			t.Fatalf("Load() unexpected error: %v", err)
		}
		if diff := cmp.Diff([]string{"Name", "City"}, table.Headers); diff != "" {
			t.Errorf("headers mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("invalid delimiter", func(t *testing.T) {
		t.Parallel()

		_, err := tableOptions(config.DataConfig{Delimiter: "::"})
		if !errors.Is(err, tabular.ErrInvalidDelimiter) {
			t.Errorf("tableOptions() error = %v, want ErrInvalidDelimiter", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestMergeDataFlags - Only set flags override the config
// ---------------------------------------------------------------------------

func TestMergeDataFlags(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Data.SheetName = "FromFile"
	cfg.Data.Encoding = "latin1"

	mergeDataFlags(&dataFlags{sheetIndex: 2, delimiter: ";"}, cfg)

	want := config.DataConfig{SheetName: "FromFile", SheetIndex: 2, Encoding: "latin1", Delimiter: ";"}
	if cfg.Data != want {
		t.Errorf("Data = %+v, want %+v", cfg.Data, want)
	}
}

// ---------------------------------------------------------------------------
// TestNewLogger - Level selection
// ---------------------------------------------------------------------------

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		flags     commonFlags
		wantDebug bool
		wantInfo  bool
	}{
		{"default", commonFlags{}, false, true},
		{"verbose", commonFlags{verbose: true}, true, true},
		{"quiet", commonFlags{quiet: true}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			log := newLogger(&buf, tt.flags)
			log.Debug("debug line")
			log.Info("info line")
			log.Warn("warn line")

			out := buf.String()
			if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}
			if got := strings.Contains(out, "info line"); got != tt.wantInfo {
				t.Errorf("info logged = %v, want %v", got, tt.wantInfo)
			}
			if !strings.Contains(out, "warn line") {
				t.Error("warnings must always be logged")
			}
		})
	}
}
