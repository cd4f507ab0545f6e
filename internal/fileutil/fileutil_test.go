package fileutil_test

// Notes:
// - AtomicWrite rename failure: not tested because forcing os.Rename to fail
//   after a successful CreateTemp in the same directory is platform-specific.
// - FileURI on Windows drive paths is covered by the string-shape test only on
//   Unix runners.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-docmerge/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestHasExtension - Extension matching
// ---------------------------------------------------------------------------

func TestHasExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		exts []string
		want bool
	}{
		{"exact match", "letters/template.docx", []string{".docx"}, true},
		{"case-insensitive", "TEMPLATE.DOCX", []string{".docx"}, true},
		{"second candidate", "rows.xlsx", []string{".csv", ".xlsx"}, true},
		{"no match", "template.doc", []string{".docx"}, false},
		{"no extension", "template", []string{".docx"}, false},
		{"no candidates", "template.docx", nil, false},
		{"extension only in directory", "dir.docx/file", []string{".docx"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.HasExtension(tt.path, tt.exts...); got != tt.want {
				t.Errorf("HasExtension(%q, %v) = %v, want %v", tt.path, tt.exts, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestStem - Base name without extension
// ---------------------------------------------------------------------------

func TestStem(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"/tmp/work/chunk_0001.docx", "chunk_0001"},
		{"chunk.tar.gz", "chunk.tar"},
		{"noext", "noext"},
	}

	for _, tt := range tests {
		if got := fileutil.Stem(tt.path); got != tt.want {
			t.Errorf("Stem(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestFileExists / TestDirExists - Path existence checks
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "test.txt")
	if err := os.WriteFile(testFile, []byte("content"), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	tests := []struct {
		name     string
		path     string
		wantFile bool
		wantDir  bool
	}{
		{"existing file", testFile, true, false},
		{"directory", tempDir, false, true},
		{"nonexistent path", filepath.Join(tempDir, "missing"), false, false},
		{"empty path", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.FileExists(tt.path); got != tt.wantFile {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.wantFile)
			}
			if got := fileutil.DirExists(tt.path); got != tt.wantDir {
				t.Errorf("DirExists(%q) = %v, want %v", tt.path, got, tt.wantDir)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestIsFilePath - File path detection
// ---------------------------------------------------------------------------

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"production", false},
		{"./merge.yaml", true},
		{"../shared/merge.yaml", true},
		{"/etc/docmerge/merge.yaml", true},
		{"C:\\config\\merge.yaml", true},
		{"name.with.dots", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := fileutil.IsFilePath(tt.input); got != tt.want {
			t.Errorf("IsFilePath(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestFileURI - file:// conversion for renderer profiles
// ---------------------------------------------------------------------------

func TestFileURI(t *testing.T) {
	t.Parallel()

	t.Run("absolute path", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		got, err := fileutil.FileURI(dir)
		if err != nil {
			t.Fatalf("FileURI() error: %v", err)
		}
		if !strings.HasPrefix(got, "file:///") {
			t.Errorf("FileURI(%q) = %q, want file:/// prefix", dir, got)
		}
	})

	t.Run("spaces are escaped", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "lo profile")
		got, err := fileutil.FileURI(dir)
		if err != nil {
			t.Fatalf("FileURI() error: %v", err)
		}
		if !strings.HasSuffix(got, "lo%20profile") {
			t.Errorf("FileURI(%q) = %q, want escaped space", dir, got)
		}
	})

	t.Run("relative path is made absolute", func(t *testing.T) {
		t.Parallel()

		got, err := fileutil.FileURI("profile")
		if err != nil {
			t.Fatalf("FileURI() error: %v", err)
		}
		if !strings.HasPrefix(got, "file:///") || !strings.HasSuffix(got, "/profile") {
			t.Errorf("FileURI(profile) = %q", got)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		if _, err := fileutil.FileURI(""); !errors.Is(err, fileutil.ErrEmptyPath) {
			t.Errorf("FileURI(\"\") error = %v, want ErrEmptyPath", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestAtomicWrite - Destination appears only on success
// ---------------------------------------------------------------------------

func TestAtomicWrite(t *testing.T) {
	t.Parallel()

	t.Run("success renames into place", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		dest := filepath.Join(dir, "out.pdf")

		err := fileutil.AtomicWrite(dest, func(tmp string) error {
			if filepath.Dir(tmp) != dir {
				t.Errorf("temp file %q not in destination dir %q", tmp, dir)
			}
			return os.WriteFile(tmp, []byte("%PDF"), 0o644)
		})
		if err != nil {
			t.Fatalf("AtomicWrite() error: %v", err)
		}

		got, err := os.ReadFile(dest)
		if err != nil {
			t.Fatalf("reading dest: %v", err)
		}
		if string(got) != "%PDF" {
			t.Errorf("dest content = %q, want %%PDF", got)
		}
		assertOnlyEntry(t, dir, "out.pdf")
	})

	t.Run("failure leaves nothing behind", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		dest := filepath.Join(dir, "out.pdf")
		boom := errors.New("boom")

		err := fileutil.AtomicWrite(dest, func(tmp string) error {
			_ = os.WriteFile(tmp, []byte("partial"), 0o644)
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("AtomicWrite() error = %v, want boom", err)
		}
		if fileutil.FileExists(dest) {
			t.Error("dest exists after failed write")
		}
		assertOnlyEntry(t, dir, "")
	})

	t.Run("failure keeps previous destination", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		dest := filepath.Join(dir, "out.pdf")
		if err := os.WriteFile(dest, []byte("old"), 0o644); err != nil {
			t.Fatal(err)
		}

		_ = fileutil.AtomicWrite(dest, func(string) error { return errors.New("fail") })

		got, _ := os.ReadFile(dest)
		if string(got) != "old" {
			t.Errorf("dest content = %q, want old", got)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		t.Parallel()

		dest := filepath.Join(t.TempDir(), "missing", "out.pdf")
		err := fileutil.AtomicWrite(dest, func(string) error { return nil })
		if err == nil {
			t.Fatal("expected error for missing directory")
		}
	})
}

// assertOnlyEntry fails unless dir contains exactly want (or nothing if want is "").
func assertOnlyEntry(t *testing.T, dir, want string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	switch {
	case want == "" && len(names) != 0:
		t.Errorf("dir entries = %v, want none", names)
	case want != "" && (len(names) != 1 || names[0] != want):
		t.Errorf("dir entries = %v, want [%s]", names, want)
	}
}
