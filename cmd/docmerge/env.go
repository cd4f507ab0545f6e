package main

import (
	"io"
	"os"
	"time"

	"github.com/alnah/go-docmerge"
)

// Environment holds injectable dependencies for testability.
// Converter and Merger stay nil in production: generate builds them from
// the resolved configuration.
type Environment struct {
	Now       func() time.Time
	Stdout    io.Writer
	Stderr    io.Writer
	Converter docmerge.DocumentConverter
	Merger    docmerge.ArtifactMerger
	Runner    docmerge.CommandRunner // used by doctor for the version probe
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Runner: docmerge.ExecRunner{},
	}
}
