package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-docmerge/internal/analyze"
	"github.com/alnah/go-docmerge/internal/config"
	"github.com/alnah/go-docmerge/internal/hints"
)

// ErrInvalidTimeout is returned for unparseable or non-positive timeouts.
var ErrInvalidTimeout = errors.New("invalid timeout")

// analyzeFailure is the JSON line written when analysis cannot run.
type analyzeFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// runAnalyzeCmd executes the analyze command and returns an exit code.
// Exit codes: 0 = analysis ran (tasks may have timed out), non-zero otherwise.
func runAnalyzeCmd(args []string, env *Environment) int {
	flags, positional, err := parseAnalyzeFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		err = fmt.Errorf("%w: %v", ErrUsage, err)
		writeAnalyzeFailure(env, err)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	res, err := runAnalyze(ctx, flags, positional, env)
	if err != nil {
		writeAnalyzeFailure(env, err)
		return exitCodeFor(err)
	}

	if err := json.NewEncoder(env.Stdout).Encode(res); err != nil {
		fmt.Fprintln(env.Stderr, "error:", err)
		return ExitGeneral
	}
	return ExitSuccess
}

func runAnalyze(ctx context.Context, flags *analyzeFlags, positional []string, env *Environment) (*analyze.Result, error) {
	warnUnknownEnvVars(env.Stderr)

	if len(positional) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedArgs, strings.Join(positional, " "))
	}

	envCfg := loadEnvConfig()
	cfg, err := loadSettings(flags.common.config, envCfg)
	if err != nil {
		return nil, err
	}
	mergeDataFlags(&flags.source, cfg)

	timeout, err := resolveTimeoutWithEnv(flags.timeout, envCfg.AnalyzeTimeout, cfg.Analyze.Timeout)
	if err != nil {
		return nil, err
	}
	opts, err := tableOptions(cfg.Data)
	if err != nil {
		return nil, err
	}

	logger := newLogger(env.Stderr, flags.common)
	a := analyze.New(analyze.WithLogger(logger))

	res, err := a.Analyze(ctx, analyze.Request{
		Template:     flags.template,
		Data:         flags.data,
		Timeout:      timeout,
		TableOptions: opts,
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// writeAnalyzeFailure reports err on both channels: the JSON line on stdout
// and the message with a hint on stderr.
func writeAnalyzeFailure(env *Environment, err error) {
	_ = json.NewEncoder(env.Stdout).Encode(analyzeFailure{Success: false, Error: err.Error()})
	fmt.Fprintf(env.Stderr, "error: %v%s\n", err, analyzeHint(err))
}

func analyzeHint(err error) string {
	switch {
	case errors.Is(err, ErrInvalidTimeout):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(searchedPaths(err))
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	}
	return ""
}

// resolveTimeoutWithEnv picks the analysis timeout.
// Priority: flag > env > config.
func resolveTimeoutWithEnv(flagTimeout string, envTimeout, cfgTimeout time.Duration) (time.Duration, error) {
	if flagTimeout != "" {
		return parseTimeout(flagTimeout)
	}
	if envTimeout > 0 {
		return envTimeout, nil
	}
	if cfgTimeout > 0 {
		return cfgTimeout, nil
	}
	return config.DefaultTimeout, nil
}

// parseTimeout accepts a Go duration ("90s", "2m") or a bare number of seconds.
func parseTimeout(s string) (time.Duration, error) {
	var d time.Duration
	if n, err := strconv.Atoi(s); err == nil {
		d = time.Duration(n) * time.Second
	} else if d, err = time.ParseDuration(s); err != nil {
		return 0, fmt.Errorf("%w: %q (use e.g. 30, 30s or 2m)", ErrInvalidTimeout, s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidTimeout, s)
	}
	return d, nil
}
