package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	pagepdf "github.com/alnah/go-pagepdf"
)

// fakeConverter records inputs and returns a canned result.
type fakeConverter struct {
	mu     sync.Mutex
	inputs []pagepdf.Input
	err    error
}

func (f *fakeConverter) Convert(_ context.Context, in pagepdf.Input) (*pagepdf.Result, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, in)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &pagepdf.Result{
		PDF:   []byte("%PDF-1.4 fake"),
		HTML:  []byte("<html><body>fake</body></html>"),
		Pages: 2,
	}, nil
}

func (f *fakeConverter) received() []pagepdf.Input {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]pagepdf.Input(nil), f.inputs...)
}

// fakePool hands out one shared converter.
type fakePool struct {
	conv       CLIConverter
	acquireErr error
	size       int
	opts       []pagepdf.Option
	closed     bool
}

func (p *fakePool) Acquire() (CLIConverter, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	return p.conv, nil
}
func (p *fakePool) Release(CLIConverter) {}
func (p *fakePool) Size() int           { return p.size }
func (p *fakePool) Close() error        { p.closed = true; return nil }

// testEnv returns an environment writing to buffers, with a terminal
// stdin and a pool built around conv.
func testEnv(conv CLIConverter) (*Environment, *bytes.Buffer, *bytes.Buffer, *fakePool) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	pool := &fakePool{conv: conv}
	env := &Environment{
		Now:             func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) },
		Stdin:           strings.NewReader(""),
		Stdout:          stdout,
		Stderr:          stderr,
		StdinIsTerminal: func() bool { return true },
		NewPool: func(size int, opts ...pagepdf.Option) Pool {
			pool.size = size
			pool.opts = opts
			return pool
		},
	}
	return env, stdout, stderr, pool
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
