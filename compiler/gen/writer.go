package gen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/google/renameio/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// ManifestFile is the name of the manifest kept by FeatureManifest.
const ManifestFile = ".forge.manifest"

// Sink receives rendered files. Implementations must be safe for
// concurrent use; Write is called from several workers.
type Sink interface {
	Write(ctx context.Context, name string, content []byte) error
}

// Flusher is implemented by sinks holding state to persist after a run.
type Flusher interface {
	Flush(run string) error
}

// WriterMetrics tracks the files handled by a DirSink.
type WriterMetrics struct {
	FilesWritten int
	FilesSkipped int
	TotalBytes   int64
}

// DirSink writes files below a directory. Each file is replaced atomically,
// so readers never observe a partially written file.
type DirSink struct {
	dir      string
	manifest bool

	mu      sync.Mutex
	hashes  map[string]string
	metrics WriterMetrics
}

// manifest is the on-disk record of generated files.
type manifest struct {
	Version int               `msgpack:"version"`
	Run     string            `msgpack:"run"`
	Files   map[string]string `msgpack:"files"`
}

const manifestVersion = 1

// NewDirSink returns a sink writing below dir. With useManifest set, content
// hashes of previous runs are loaded from the manifest and unchanged files
// are not rewritten.
func NewDirSink(dir string, useManifest bool) (*DirSink, error) {
	s := &DirSink{dir: dir, manifest: useManifest, hashes: make(map[string]string)}
	if !useManifest {
		return s, nil
	}
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m manifest
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if m.Version == manifestVersion && m.Files != nil {
		s.hashes = m.Files
	}
	return s, nil
}

// Dir returns the output directory.
func (s *DirSink) Dir() string { return s.dir }

// Metrics returns a snapshot of the sink metrics.
func (s *DirSink) Metrics() WriterMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics
}

// Write writes content to name below the sink directory.
func (s *DirSink) Write(ctx context.Context, name string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.dir, name)
	sum := hash(content)
	if s.manifest && s.unchanged(name, path, sum) {
		s.mu.Lock()
		s.metrics.FilesSkipped++
		s.mu.Unlock()
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", name, err)
	}
	if err := renameio.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	s.mu.Lock()
	s.hashes[name] = sum
	s.metrics.FilesWritten++
	s.metrics.TotalBytes += int64(len(content))
	s.mu.Unlock()
	return nil
}

func (s *DirSink) unchanged(name, path, sum string) bool {
	s.mu.Lock()
	prev := s.hashes[name]
	s.mu.Unlock()
	if prev != sum {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Flush persists the manifest of run when the sink keeps one.
func (s *DirSink) Flush(run string) error {
	if !s.manifest {
		return nil
	}
	s.mu.Lock()
	m := manifest{Version: manifestVersion, Run: run, Files: make(map[string]string, len(s.hashes))}
	for k, v := range s.hashes {
		m.Files[k] = v
	}
	s.mu.Unlock()
	data, err := msgpack.Marshal(&m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return renameio.WriteFile(filepath.Join(s.dir, ManifestFile), data, 0o644)
}

func hash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// MemorySink collects rendered files in memory.
type MemorySink struct {
	mu    sync.Mutex
	files map[string][]byte
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// Write records content under name.
func (s *MemorySink) Write(ctx context.Context, name string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = slices.Clone(content)
	return nil
}

// Files returns the names of the recorded files in sorted order.
func (s *MemorySink) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// File returns the content recorded under name.
func (s *MemorySink) File(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.files[name]
	return b, ok
}
