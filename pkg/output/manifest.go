package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"

	"github.com/yahsan2/backlog-import/pkg/importer"
)

// Manifest records one import run
type Manifest struct {
	RunID      string           `json:"runId"`
	ProjectKey string           `json:"projectKey"`
	Source     string           `json:"source"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt"`
	Result     *importer.Result `json:"result,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// NewManifest starts a manifest for a run
func NewManifest(projectKey, source string) *Manifest {
	return &Manifest{
		RunID:      uuid.NewString(),
		ProjectKey: projectKey,
		Source:     source,
		StartedAt:  time.Now().UTC(),
	}
}

// Complete records the outcome of the run
func (m *Manifest) Complete(result *importer.Result, err error) {
	m.FinishedAt = time.Now().UTC()
	m.Result = result
	if err != nil {
		m.Error = err.Error()
	}
}

// FileName returns the manifest file name
func (m *Manifest) FileName() string {
	return fmt.Sprintf("import-%s-%s.json", m.ProjectKey, m.RunID)
}

// Write saves the manifest atomically under dir and returns its path
func (m *Manifest) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create manifest directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal manifest: %w", err)
	}

	path := filepath.Join(dir, m.FileName())
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return path, nil
}
