package production

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/scxml-go/scxml/internal/data"
)

func sampleSnapshot() RuntimeSnapshot {
	rt := data.NewRuntimeState()
	rt.Config = []string{"a", "a.b"}
	rt.Store.Set("count", float64(3.5))
	rt.History.RecordShallow("a.hist", "a.b")
	return BuildSnapshot("chart-1", rt, time.Unix(0, 0).UTC())
}

func TestJSONPersisterRoundTrips(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snapshots")
	p, err := NewJSONPersister(dir)
	if err != nil {
		t.Fatalf("NewJSONPersister: %v", err)
	}
	snap := sampleSnapshot()
	if err := p.Save(context.Background(), snap); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := p.Load(context.Background(), "chart-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Config) != 2 || got.Config[1] != "a.b" {
		t.Fatalf("got config %v", got.Config)
	}
	if got.Shallow["a.hist"] != "a.b" {
		t.Fatalf("got shallow history %v", got.Shallow)
	}
}

func TestJSONPersisterLoadMissingReturnsNotExist(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snapshots")
	p, err := NewJSONPersister(dir)
	if err != nil {
		t.Fatalf("NewJSONPersister: %v", err)
	}
	if _, err := p.Load(context.Background(), "nope"); err == nil {
		t.Fatal("expected an error loading a missing snapshot")
	}
}

func TestYAMLPersisterRoundTrips(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snapshots")
	p, err := NewYAMLPersister(dir)
	if err != nil {
		t.Fatalf("NewYAMLPersister: %v", err)
	}
	snap := sampleSnapshot()
	if err := p.Save(context.Background(), snap); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := p.Load(context.Background(), "chart-1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Store["count"].(float64) != 3.5 {
		t.Fatalf("got store %v", got.Store)
	}
}
