package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ppiankov/arrestflow/internal/facts"
	"github.com/ppiankov/arrestflow/internal/view"
)

func TestGraphvizRenderer_SVG(t *testing.T) {
	opts := DefaultOptions()
	opts.Link = func(n view.NodeView, current facts.Facts) string {
		return "/select/" + n.ID
	}
	r, err := New(FormatSVG, opts)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := r.Render(context.Background(), sampleView(facts.Facts{ArrestingPerson: facts.PersonPolice}), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"<svg", "/select/citizen", "[s. 494]", opts.IrrelevantFill, opts.RelevantFill} {
		if !strings.Contains(out, want) {
			t.Errorf("svg missing %q", want)
		}
	}
}

func TestGraphvizRenderer_DOT(t *testing.T) {
	r, err := New(FormatDOT, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := r.Render(context.Background(), sampleView(facts.Facts{}), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"digraph", "start", "citizen", "Police officer"} {
		if !strings.Contains(out, want) {
			t.Errorf("dot output missing %q:\n%s", want, out)
		}
	}
}

func TestGraphvizRenderer_PNG(t *testing.T) {
	r, err := New(FormatPNG, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := r.Render(context.Background(), sampleView(facts.Facts{}), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("expected PNG signature")
	}
}
