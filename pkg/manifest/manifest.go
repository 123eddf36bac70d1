// Package manifest records the progress of a sweep in a YAML file.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Status represents the state of one sweep iteration.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Entry is the record of a single iteration.
type Entry struct {
	Index      int       `yaml:"index"`
	X          float64   `yaml:"x"`
	Y          float64   `yaml:"y"`
	Z          float64   `yaml:"z"`
	D          float64   `yaml:"d"`
	Status     Status    `yaml:"status"`
	Archive    string    `yaml:"archive,omitempty"`
	ExitCode   int       `yaml:"exit_code,omitempty"`
	Error      string    `yaml:"error,omitempty"`
	StartedAt  time.Time `yaml:"started_at,omitempty"`
	DurationMS int64     `yaml:"duration_ms,omitempty"`
}

// Manifest describes one sweep run.
type Manifest struct {
	RunID      string     `yaml:"run_id"`
	Mode       string     `yaml:"mode"`
	Template   string     `yaml:"template"`
	Binary     string     `yaml:"binary"`
	Seed       uint64     `yaml:"seed,omitempty"`
	Total      int        `yaml:"total"`
	StartedAt  time.Time  `yaml:"started_at"`
	FinishedAt *time.Time `yaml:"finished_at,omitempty"`
	Entries    []Entry    `yaml:"entries"`
}

// New starts a manifest with a fresh run ID.
func New(mode, template, binary string, total int) *Manifest {
	return &Manifest{
		RunID:     uuid.New().String(),
		Mode:      mode,
		Template:  template,
		Binary:    binary,
		Total:     total,
		StartedAt: time.Now(),
	}
}

// Load reads a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// Save writes the manifest to path. The file is replaced atomically so an
// interrupted sweep never leaves a truncated manifest behind.
func (m *Manifest) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".manifest-*.yml")
	if err != nil {
		return fmt.Errorf("create temp manifest: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close manifest: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

// Record stores e, replacing an earlier entry with the same index.
func (m *Manifest) Record(e Entry) {
	for i := range m.Entries {
		if m.Entries[i].Index == e.Index {
			m.Entries[i] = e
			return
		}
	}
	m.Entries = append(m.Entries, e)
	sort.SliceStable(m.Entries, func(i, j int) bool {
		return m.Entries[i].Index < m.Entries[j].Index
	})
}

// Finish stamps the finish time.
func (m *Manifest) Finish(at time.Time) {
	m.FinishedAt = &at
}

// Counts tallies entries per status. Points not yet recorded count as pending.
func (m *Manifest) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, e := range m.Entries {
		counts[e.Status]++
	}
	if missing := m.Total - len(m.Entries); missing > 0 {
		counts[StatusPending] += missing
	}
	return counts
}

// Failed returns the entries whose iteration failed.
func (m *Manifest) Failed() []Entry {
	var failed []Entry
	for _, e := range m.Entries {
		if e.Status == StatusFailed {
			failed = append(failed, e)
		}
	}
	return failed
}
