package preprocess

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

type tempState int

const (
	tempWritten tempState = iota + 1
	tempConsumed
)

// TempFiles owns a scratch directory. Every file is registered when it is
// created, and Close removes them all, whatever state the run ended in.
//
// Writing a name twice, or opening a file that was already read, is a bug
// in the caller. It is logged as a warning and counted, but the operation
// still goes ahead.
type TempFiles struct {
	dir string
	log zerolog.Logger

	mu       sync.Mutex
	files    map[string]tempState
	warnings int
}

// NewTempFiles creates a scratch directory under parent, or under the
// system temp dir if parent is empty.
func NewTempFiles(parent string, log zerolog.Logger) (*TempFiles, error) {
	dir, err := os.MkdirTemp(parent, "westie-build-")
	if err != nil {
		return nil, fmt.Errorf("error creating temp dir: %w", err)
	}
	return &TempFiles{dir: dir, log: log, files: map[string]tempState{}}, nil
}

func (t *TempFiles) Dir() string { return t.dir }

func (t *TempFiles) path(name string) string {
	return filepath.Join(t.dir, name)
}

// Create opens name for writing.
func (t *TempFiles) Create(name string) (*os.File, error) {
	t.mu.Lock()
	if _, ok := t.files[name]; ok {
		t.warn(name, "temp file written twice")
	}
	t.files[name] = tempWritten
	t.mu.Unlock()

	f, err := os.Create(t.path(name))
	if err != nil {
		return nil, fmt.Errorf("error creating temp file '%s': %w", name, err)
	}
	return f, nil
}

// Open opens name for its one read. The file is consumed from then on.
func (t *TempFiles) Open(name string) (*os.File, error) {
	t.mu.Lock()
	switch t.files[name] {
	case tempConsumed:
		t.warn(name, "temp file read after it was consumed")
	case 0:
		t.warn(name, "temp file read before it was written")
	}
	t.files[name] = tempConsumed
	t.mu.Unlock()

	f, err := os.Open(t.path(name))
	if err != nil {
		return nil, fmt.Errorf("error opening temp file '%s': %w", name, err)
	}
	return f, nil
}

// must be called with mu held
func (t *TempFiles) warn(name, msg string) {
	t.warnings++
	t.log.Warn().Str("file", name).Msg(msg)
}

// Warnings counts the misuses seen so far.
func (t *TempFiles) Warnings() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.warnings
}

// Close deletes every file and the directory itself.
func (t *TempFiles) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.files = map[string]tempState{}
	if err := os.RemoveAll(t.dir); err != nil {
		return fmt.Errorf("error removing temp dir '%s': %w", t.dir, err)
	}
	return nil
}
