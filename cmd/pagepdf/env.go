package main

import (
	"io"
	"os"
	"time"

	"golang.org/x/term"

	pagepdf "github.com/alnah/go-pagepdf"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// StdinIsTerminal reports whether stdin is attached to a terminal.
	// Piped stdin is read as a single document when no input is given.
	StdinIsTerminal func() bool

	// NewPool builds the converter pool for a batch.
	NewPool func(size int, opts ...pagepdf.Option) Pool
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:    time.Now,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		StdinIsTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) // #nosec G115 -- fd fits in int
		},
		NewPool: newConverterPool,
	}
}
