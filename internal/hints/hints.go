// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-docmerge/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForRendererNotFound returns hints for a missing LibreOffice installation.
// Suggests a package install in containers and the explicit path override.
func ForRendererNotFound() string {
	var hints []string

	if IsInContainer() {
		hints = append(hints, "install it in the image (apt-get install -y libreoffice-writer)")
	} else {
		hints = append(hints, "install LibreOffice")
	}

	if os.Getenv("DOCMERGE_SOFFICE") == "" {
		hints = append(hints, "or set DOCMERGE_SOFFICE / --soffice to the soffice binary")
	}

	return formatHints(hints)
}

// ForRendererFailure returns a hint for renderer processes that exited with an error.
func ForRendererFailure() string {
	return format("run 'docmerge doctor' to check the renderer; lower --convert-workers if the host is short on memory")
}

// ForTimeout returns a hint about increasing the analysis timeout.
func ForTimeout() string {
	return format("for large files, use --timeout flag")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-docmerge/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-docmerge") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output path errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForSheetNotFound returns hints listing the workbook's sheets.
func ForSheetNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available sheets: " + strings.Join(available, ", "))
}

// ForEncoding returns a hint for CSV files that are not UTF-8.
func ForEncoding() string {
	return format("use --encoding windows-1252 for CSV files exported by Excel on Windows")
}

// ForNoRecords returns a hint for runs that resolved to zero records.
func ForNoRecords() string {
	return format("check the data file has rows below its header, or map every variable as a constant")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
