package server

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/arrestflow/internal/pipeline"
	"github.com/ppiankov/arrestflow/internal/render"
	"github.com/ppiankov/arrestflow/internal/rules"
)

func writeRules(t *testing.T, path string, g *rules.Graph) {
	t.Helper()
	var buf bytes.Buffer
	if err := rules.Export(g, &buf); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func waitFor(t *testing.T, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return false
}

func TestWatchRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	writeRules(t, path, rules.CriminalCode())

	p := pipeline.New(rules.CriminalCode(), nil, render.DefaultOptions())
	initial := p.Fingerprint()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- WatchRules(ctx, path, p, nil) }()
	time.Sleep(100 * time.Millisecond)

	small := rules.MustValidate(rules.NewGraph(
		[]rules.Node{{ID: "a", Label: "A"}, {ID: "b", Label: "B"}},
		[]rules.Edge{{From: "a", To: "b"}},
	))
	writeRules(t, path, small)

	if !waitFor(t, func() bool { return p.Fingerprint() != initial }) {
		t.Fatal("graph was not reloaded")
	}
	if len(p.Graph().Nodes) != 2 {
		t.Errorf("expected reloaded graph with 2 nodes, got %d", len(p.Graph().Nodes))
	}

	// a broken file keeps the previous graph
	reloaded := p.Fingerprint()
	if err := os.WriteFile(path, []byte("nodes: [\n"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(3 * reloadDelay)
	if p.Fingerprint() != reloaded {
		t.Error("invalid rules file replaced the graph")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("WatchRules: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WatchRules did not stop on cancel")
	}
}

func TestWatchRules_MissingDir(t *testing.T) {
	p := pipeline.New(rules.CriminalCode(), nil, render.DefaultOptions())
	err := WatchRules(context.Background(), filepath.Join(t.TempDir(), "missing", "rules.yaml"), p, nil)
	if err == nil {
		t.Error("expected an error for a missing directory")
	}
}
