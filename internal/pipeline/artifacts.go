package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// NewRunID generates the run's identity, a filesystem-safe timestamp
// token. Generated once per invocation; every artifact of the run lives
// under it.
func NewRunID() string {
	return time.Now().UTC().Format("2006-01-02T15-04-05")
}

// ArtifactStore persists stage outputs under a run-scoped directory.
// Files are named by sequence and label, write-once, append-only: the
// file count never decreases, which bounds data loss to the currently
// executing stage if the process is killed.
type ArtifactStore struct {
	dir string
	seq int
}

// NewArtifactStore creates the run's artifact directory.
func NewArtifactStore(baseDir, runID string) (*ArtifactStore, error) {
	dir := filepath.Join(baseDir, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &ArtifactStore{dir: dir}, nil
}

// Dir returns the run's artifact directory.
func (s *ArtifactStore) Dir() string {
	return s.dir
}

// RunID returns the run identity the store was created for.
func (s *ArtifactStore) RunID() string {
	return filepath.Base(s.dir)
}

// Count returns the number of artifacts written so far.
func (s *ArtifactStore) Count() int {
	return s.seq
}

// SaveJSON writes v as the next JSON artifact and returns its path.
func (s *ArtifactStore) SaveJSON(label string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal artifact %s: %w", label, err)
	}
	return s.write(label, "json", data)
}

// SaveText writes content as the next text artifact and returns its path.
func (s *ArtifactStore) SaveText(label, ext, content string) (string, error) {
	return s.write(label, ext, []byte(content))
}

func (s *ArtifactStore) write(label, ext string, data []byte) (string, error) {
	s.seq++
	path := filepath.Join(s.dir, fmt.Sprintf("%02d-%s.%s", s.seq, label, ext))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.seq--
		return "", fmt.Errorf("write artifact %s: %w", label, err)
	}
	return path, nil
}
