package main

import (
	"io"
	"os"
	"time"

	"github.com/google/uuid"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, the process environment, and build identifiers.
type Environment struct {
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
	Getenv  func(string) string
	Environ func() []string
	BuildID func() string
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Getenv:  os.Getenv,
		Environ: os.Environ,
		BuildID: func() string { return uuid.NewString() },
	}
}
