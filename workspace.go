package docmerge

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Workspace naming.
const (
	workspacePrefix = "merge_chunks_"
	profilePattern  = "lo_profile_%02d_"
	chunkPattern    = "chunk_%04d"
)

// Workspace is the scratch directory of one run. Rendered documents,
// converted PDFs and renderer profiles all live inside it.
type Workspace struct {
	root string

	mu     sync.Mutex
	closed bool
}

// NewWorkspace creates a uniquely named scratch directory under parent.
// An empty parent uses os.TempDir.
func NewWorkspace(parent string) (*Workspace, error) {
	root, err := os.MkdirTemp(parent, workspacePrefix)
	if err != nil {
		return nil, fmt.Errorf("%w: creating scratch directory: %v", ErrWorkspace, err)
	}
	return &Workspace{root: root}, nil
}

// Root returns the scratch directory.
func (w *Workspace) Root() string {
	return w.root
}

// ChunkPath returns the path of chunk index with the given extension (".docx", ".pdf").
func (w *Workspace) ChunkPath(index int, ext string) string {
	return filepath.Join(w.root, fmt.Sprintf(chunkPattern, index)+ext)
}

// NewProfile creates a fresh renderer profile directory for one conversion.
// The returned release removes it and must be called when the conversion ends.
func (w *Workspace) NewProfile(index int) (string, func() error, error) {
	dir, err := os.MkdirTemp(w.root, fmt.Sprintf(profilePattern, index))
	if err != nil {
		return "", nil, fmt.Errorf("%w: creating renderer profile: %v", ErrWorkspace, err)
	}
	release := func() error {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("%w: removing renderer profile: %v", ErrWorkspace, err)
		}
		return nil
	}
	return dir, release, nil
}

// Close removes the scratch directory and everything in it.
// Calling Close more than once is a no-op.
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	if err := os.RemoveAll(w.root); err != nil {
		return fmt.Errorf("%w: removing %s: %v", ErrWorkspace, w.root, err)
	}
	return nil
}
