// Package production provides production integrations for inspecting a
// running chart from outside the interpreter loop: point-in-time
// snapshot export, DOT/JSON visualization, and event publishing
// (SPEC_FULL §12 — debugging/visualization tooling, not resumable
// cross-process persistence, which spec.md §1's Non-goals exclude).
package production

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/scxml-go/scxml/internal/data"
)

// RuntimeSnapshot is the serializable, point-in-time view of a running
// chart: its active configuration, data store, and history store
// (§3.3). Unlike the teacher's MachineSnapshot this carries no queued
// events — nothing here is meant to resume a run, only to inspect one.
type RuntimeSnapshot struct {
	ChartID   string              `json:"chartID" yaml:"chartID"`
	Config    []string            `json:"config" yaml:"config"`
	Store     map[string]any      `json:"store" yaml:"store"`
	Shallow   map[string]string   `json:"shallowHistory,omitempty" yaml:"shallowHistory,omitempty"`
	Deep      map[string][]string `json:"deepHistory,omitempty" yaml:"deepHistory,omitempty"`
	Timestamp time.Time           `json:"timestamp" yaml:"timestamp"`
}

// BuildSnapshot reads rt's current state into a RuntimeSnapshot. Only
// the history store read is mutex-guarded; the configuration and data
// store are read without locking, so it is called from the loop's own
// goroutine between macrosteps (§5).
func BuildSnapshot(chartID string, rt *data.RuntimeState, now time.Time) RuntimeSnapshot {
	shallow, deep := rt.History.Snapshot()
	return RuntimeSnapshot{
		ChartID:   chartID,
		Config:    rt.ConfigSnapshot(),
		Store:     rt.Store.Snapshot(),
		Shallow:   shallow,
		Deep:      deep,
		Timestamp: now,
	}
}

// Persister writes and reads a RuntimeSnapshot by chart id, the same
// narrow shape as the teacher's core.Persister.
type Persister interface {
	Save(ctx context.Context, snapshot RuntimeSnapshot) error
	Load(ctx context.Context, chartID string) (RuntimeSnapshot, error)
}

// JSONPersister is a stdlib-only file-based Persister.
type JSONPersister struct {
	dir string
}

// NewJSONPersister creates dir if needed and returns a JSONPersister
// rooted there.
func NewJSONPersister(dir string) (*JSONPersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &JSONPersister{dir: dir}, nil
}

func (p *JSONPersister) Save(ctx context.Context, snapshot RuntimeSnapshot) error {
	body, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	fn := filepath.Join(p.dir, snapshot.ChartID+".json")
	if err := os.WriteFile(fn, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

func (p *JSONPersister) Load(ctx context.Context, chartID string) (RuntimeSnapshot, error) {
	fn := filepath.Join(p.dir, chartID+".json")
	body, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RuntimeSnapshot{}, fmt.Errorf("chart %q: %w", chartID, os.ErrNotExist)
		}
		return RuntimeSnapshot{}, fmt.Errorf("read %s: %w", fn, err)
	}
	var snapshot RuntimeSnapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return RuntimeSnapshot{}, fmt.Errorf("json unmarshal: %w", err)
	}
	snapshot.ChartID = chartID
	return snapshot, nil
}

// YAMLPersister is a file-based Persister using gopkg.in/yaml.v3,
// carried over from the teacher's own YAMLPersister.
type YAMLPersister struct {
	dir string
}

// NewYAMLPersister creates dir if needed and returns a YAMLPersister
// rooted there.
func NewYAMLPersister(dir string) (*YAMLPersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &YAMLPersister{dir: dir}, nil
}

func (p *YAMLPersister) Save(ctx context.Context, snapshot RuntimeSnapshot) error {
	body, err := yaml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}
	fn := filepath.Join(p.dir, snapshot.ChartID+".yaml")
	if err := os.WriteFile(fn, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

func (p *YAMLPersister) Load(ctx context.Context, chartID string) (RuntimeSnapshot, error) {
	fn := filepath.Join(p.dir, chartID+".yaml")
	body, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RuntimeSnapshot{}, fmt.Errorf("chart %q: %w", chartID, os.ErrNotExist)
		}
		return RuntimeSnapshot{}, fmt.Errorf("read %s: %w", fn, err)
	}
	var snapshot RuntimeSnapshot
	if err := yaml.Unmarshal(body, &snapshot); err != nil {
		return RuntimeSnapshot{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	snapshot.ChartID = chartID
	return snapshot, nil
}
