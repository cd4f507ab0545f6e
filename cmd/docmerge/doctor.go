package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/alnah/go-docmerge"
	"github.com/alnah/go-docmerge/internal/await"
	"github.com/alnah/go-docmerge/internal/config"
	"github.com/alnah/go-docmerge/internal/yamlutil"
)

// versionProbeTimeout bounds `soffice --version`, which starts a full office
// process on first run.
const versionProbeTimeout = 30 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status    string       `json:"status"` // "ready", "warnings", "errors"
	CheckedAt time.Time    `json:"checked_at"`
	Renderer  rendererInfo `json:"renderer"`
	Env       envInfo      `json:"environment"`
	System    systemInfo   `json:"system"`
	Pools     poolInfo     `json:"pools"`
	Warnings  []string     `json:"warnings,omitempty"`
	Errors    []string     `json:"errors,omitempty"`
}

// rendererInfo holds LibreOffice detection results.
type rendererInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	Soffice       string `json:"docmerge_soffice"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable      bool   `json:"temp_writable"`
	WorkspaceDir      string `json:"workspace_dir"`
	WorkspaceWritable bool   `json:"workspace_writable"`
}

// poolInfo holds the pool sizes a default run would use.
type poolInfo struct {
	GOMAXPROCS     int `json:"gomaxprocs"`
	MaxWorkers     int `json:"max_workers"`
	RenderWorkers  int `json:"render_workers"`
	ConvertWorkers int `json:"convert_workers"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput := false
	configName := ""
	for i, arg := range args {
		switch arg {
		case "--json":
			jsonOutput = true
		case "-h", "--help":
			printDoctorUsage(env.Stdout)
			return ExitSuccess
		case "-c", "--config":
			if i+1 < len(args) {
				configName = args[i+1]
			}
		}
	}

	envCfg := loadEnvConfig()
	cfg, err := loadSettings(configName, envCfg)
	if err != nil {
		fmt.Fprintln(env.Stderr, "error:", err)
		return exitCodeFor(err)
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	result := runDoctor(ctx, cfg, env)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
		printEffectiveConfig(env.Stdout, cfg)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, cfg *config.Config, env *Environment) *doctorResult {
	result := &doctorResult{
		Status:    "ready",
		CheckedAt: env.Now().UTC(),
		Env: envInfo{
			OS:      runtime.GOOS,
			Arch:    runtime.GOARCH,
			Soffice: os.Getenv("DOCMERGE_SOFFICE"),
		},
	}

	checkRenderer(ctx, result, cfg, env.Runner)
	checkEnvironment(result)
	checkSystem(result, cfg.Workspace.Dir)
	checkPools(result, cfg)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkRenderer discovers LibreOffice the way generate does and probes its version.
func checkRenderer(ctx context.Context, result *doctorResult, cfg *config.Config, runner docmerge.CommandRunner) {
	conv := docmerge.NewSofficeConverter(
		docmerge.NewLocator(cfg.Renderer.Path, cfg.Renderer.Candidates),
		docmerge.WithCommandRunner(runner),
	)
	if conv.Binary() == "" {
		if cfg.Renderer.Path != "" {
			result.Errors = append(result.Errors,
				fmt.Sprintf("LibreOffice not found at %s", cfg.Renderer.Path))
		} else {
			result.Errors = append(result.Errors,
				"LibreOffice (soffice) not found. Install it or set DOCMERGE_SOFFICE")
		}
		return
	}

	result.Renderer.Found = true
	result.Renderer.Path = conv.Binary()

	version, ok, err := await.Within(ctx, versionProbeTimeout, "", conv.Version)
	if !ok && err == nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("LibreOffice version probe timed out after %s", versionProbeTimeout))
		return
	}
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get LibreOffice version: %v", err))
		return
	}
	result.Renderer.Version = version
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if result.Env.Container && result.Env.Soffice == "" && !result.Renderer.Found {
		result.Warnings = append(result.Warnings,
			"Container detected without LibreOffice. Install libreoffice-writer in the image")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	// Explicit override (highest priority)
	if os.Getenv("DOCMERGE_CONTAINER") == "1" {
		return true, "DOCMERGE_CONTAINER=1"
	}
	// Docker
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn / general container indicator
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	// Kubernetes
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp and workspace directories accept files.
func checkSystem(result *doctorResult, workDir string) {
	tmpDir := os.TempDir()
	if writable(tmpDir) {
		result.System.TempWritable = true
	} else {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	}

	if workDir == "" {
		workDir = tmpDir
	}
	result.System.WorkspaceDir = workDir
	if writable(workDir) {
		result.System.WorkspaceWritable = true
	} else {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Workspace directory not writable: %s", workDir))
	}
}

func writable(dir string) bool {
	testFile := filepath.Join(dir, "docmerge-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return false
	}
	_ = os.Remove(testFile)
	return true
}

// checkPools reports the sizes a run with this configuration would use.
func checkPools(result *doctorResult, cfg *config.Config) {
	ceiling := cfg.Generate.MaxWorkers
	if ceiling <= 0 {
		ceiling = docmerge.DefaultMaxPoolSize
	}
	result.Pools = poolInfo{
		GOMAXPROCS:     runtime.GOMAXPROCS(0),
		MaxWorkers:     ceiling,
		RenderWorkers:  docmerge.ResolvePoolSize(cfg.Generate.RenderWorkers, ceiling),
		ConvertWorkers: docmerge.ResolvePoolSize(cfg.Generate.ConvertWorkers, ceiling),
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "docmerge doctor")
	fmt.Fprintln(w)

	// Renderer section
	fmt.Fprintln(w, "LibreOffice")
	if r.Renderer.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Renderer.Path)
		if r.Renderer.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Renderer.Version)
		}
	} else {
		fmt.Fprintln(w, "  [ERROR] Not found")
	}
	fmt.Fprintln(w)

	// Environment section
	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	// System section
	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	if r.System.WorkspaceWritable {
		fmt.Fprintf(w, "  [OK] Workspace: %s writable\n", r.System.WorkspaceDir)
	} else {
		fmt.Fprintf(w, "  [ERROR] Workspace: %s not writable\n", r.System.WorkspaceDir)
	}
	fmt.Fprintln(w)

	// Pools section
	fmt.Fprintln(w, "Pools")
	fmt.Fprintf(w, "  [OK] GOMAXPROCS: %d (ceiling %d)\n", r.Pools.GOMAXPROCS, r.Pools.MaxWorkers)
	fmt.Fprintf(w, "  [OK] Render workers: %d\n", r.Pools.RenderWorkers)
	fmt.Fprintf(w, "  [OK] Convert workers: %d\n", r.Pools.ConvertWorkers)
	fmt.Fprintln(w)

	// Warnings
	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	// Errors
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	// Final status
	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to generate")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

// printEffectiveConfig prints the configuration after file and env overrides.
func printEffectiveConfig(w io.Writer, cfg *config.Config) {
	out, err := yamlutil.Encode(cfg)
	if err != nil {
		fmt.Fprintf(w, "\nConfiguration\n  [WARN] cannot render: %v\n", err)
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration")
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
}
