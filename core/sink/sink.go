// Package sink provides destinations for generated text units.
//
// The code generator never touches storage directly: it hands (path, text)
// pairs to a Sink. Paths are slash-separated and relative to the sink's
// root; the empty path names the root itself.
package sink

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Sink receives generated files.
type Sink interface {
	// EnsureDirectory creates a directory and its parents if needed.
	EnsureDirectory(dir string) error

	// Write stores text at path, replacing any previous content.
	Write(path, text string) error
}

// FS writes files below a base directory on disk.
type FS struct {
	base string
}

// NewFS creates a file system sink rooted at base.
func NewFS(base string) *FS {
	return &FS{base: base}
}

// Base returns the root directory.
func (s *FS) Base() string { return s.base }

// Resolve maps a sink path to a file system path.
func (s *FS) Resolve(p string) string {
	return filepath.Join(s.base, filepath.FromSlash(p))
}

// EnsureDirectory creates dir below the base.
func (s *FS) EnsureDirectory(dir string) error {
	if err := os.MkdirAll(s.Resolve(dir), 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

// Write writes text to path below the base.
func (s *FS) Write(p, text string) error {
	if err := os.WriteFile(s.Resolve(p), []byte(text), 0644); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}

// Clean removes the base directory and everything below it.
func (s *FS) Clean() error {
	base := filepath.Clean(s.base)
	if base == "." || base == string(filepath.Separator) || s.base == "" {
		return fmt.Errorf("refusing to clean %q", s.base)
	}
	if err := os.RemoveAll(base); err != nil {
		return fmt.Errorf("clean %s: %w", base, err)
	}
	return nil
}

// Memory keeps files in memory. It is safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	files map[string]string
	dirs  map[string]bool
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{
		files: make(map[string]string),
		dirs:  make(map[string]bool),
	}
}

// EnsureDirectory records dir and its parents.
func (m *Memory) EnsureDirectory(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for d := path.Clean(dir); d != "." && d != "/"; d = path.Dir(d) {
		m.dirs[d] = true
	}
	return nil
}

// Write stores text at p. The parent directory must have been ensured.
func (m *Memory) Write(p, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if dir := path.Dir(p); dir != "." && !m.dirs[dir] {
		return fmt.Errorf("write %s: directory %s does not exist", p, dir)
	}
	m.files[p] = text
	return nil
}

// Read returns the content stored at p.
func (m *Memory) Read(p string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	text, ok := m.files[p]
	return text, ok
}

// Paths returns all written paths, sorted.
func (m *Memory) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Dirs returns all ensured directories, sorted.
func (m *Memory) Dirs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dirs := make([]string, 0, len(m.dirs))
	for d := range m.dirs {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}

// Files returns a copy of all files keyed by path.
func (m *Memory) Files() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(m.files))
	for p, text := range m.files {
		out[p] = text
	}
	return out
}

// Log decorates a sink with a log line per operation.
// With a nil Next it only logs, which gives a dry run.
type Log struct {
	Next   Sink
	Logger zerolog.Logger
}

// NewLog creates a logging sink.
func NewLog(next Sink, logger zerolog.Logger) *Log {
	return &Log{Next: next, Logger: logger}
}

// EnsureDirectory logs and forwards.
func (l *Log) EnsureDirectory(dir string) error {
	l.Logger.Debug().Str("dir", dir).Bool("dry_run", l.Next == nil).Msg("ensure directory")
	if l.Next == nil {
		return nil
	}
	if err := l.Next.EnsureDirectory(dir); err != nil {
		l.Logger.Error().Err(err).Str("dir", dir).Msg("ensure directory failed")
		return err
	}
	return nil
}

// Write logs and forwards.
func (l *Log) Write(p, text string) error {
	l.Logger.Debug().
		Str("path", p).
		Int("bytes", len(text)).
		Int("lines", strings.Count(text, "\n")+1).
		Bool("dry_run", l.Next == nil).
		Msg("write file")
	if l.Next == nil {
		return nil
	}
	if err := l.Next.Write(p, text); err != nil {
		l.Logger.Error().Err(err).Str("path", p).Msg("write failed")
		return err
	}
	return nil
}
