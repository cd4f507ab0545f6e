package docmerge

import (
	"os/exec"
	"runtime"

	"github.com/alnah/go-docmerge/internal/fileutil"
)

// Locator finds the external renderer binary.
type Locator interface {
	Locate() (path string, ok bool)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func() (string, bool)

func (f LocatorFunc) Locate() (string, bool) { return f() }

// StaticLocator is an explicitly configured binary: a path, or a bare name
// looked up on PATH.
type StaticLocator string

func (s StaticLocator) Locate() (string, bool) {
	p := string(s)
	if p == "" {
		return "", false
	}
	if fileutil.IsFilePath(p) {
		return p, fileutil.FileExists(p)
	}
	found, err := exec.LookPath(p)
	return found, err == nil
}

// PathLocator searches PATH for each name in turn.
type PathLocator []string

func (names PathLocator) Locate() (string, bool) {
	for _, n := range names {
		if found, err := exec.LookPath(n); err == nil {
			return found, true
		}
	}
	return "", false
}

// CandidateLocator probes fixed install locations.
type CandidateLocator []string

func (paths CandidateLocator) Locate() (string, bool) {
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, true
		}
	}
	return "", false
}

// ChainLocator returns the first hit of its locators.
type ChainLocator []Locator

func (c ChainLocator) Locate() (string, bool) {
	for _, l := range c {
		if l == nil {
			continue
		}
		if p, ok := l.Locate(); ok {
			return p, true
		}
	}
	return "", false
}

// DefaultCandidates lists the usual LibreOffice install locations for the
// current platform.
func DefaultCandidates() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"/Applications/LibreOffice.app/Contents/MacOS/soffice"}
	case "windows":
		return []string{
			`C:\Program Files\LibreOffice\program\soffice.exe`,
			`C:\Program Files (x86)\LibreOffice\program\soffice.exe`,
		}
	default:
		return []string{
			"/usr/bin/soffice",
			"/usr/local/bin/soffice",
			"/usr/lib/libreoffice/program/soffice",
			"/opt/libreoffice/program/soffice",
			"/snap/bin/libreoffice",
		}
	}
}

// NewLocator builds the discovery chain: an explicit binary when given,
// otherwise PATH, then extra candidates, then the platform defaults.
// An explicit binary that cannot be found is not replaced by discovery.
func NewLocator(explicit string, extra []string) Locator {
	if explicit != "" {
		return StaticLocator(explicit)
	}
	return ChainLocator{
		PathLocator{"soffice", "libreoffice"},
		CandidateLocator(extra),
		CandidateLocator(DefaultCandidates()),
	}
}
