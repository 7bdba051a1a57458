package render

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/arrestflow/internal/view"
)

// MermaidRenderer writes a Mermaid flowchart
type MermaidRenderer struct {
	opts Options
}

// Render implements Renderer
func (r *MermaidRenderer) Render(ctx context.Context, v view.View, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	dir := "TD"
	if r.opts.RankDir == "LR" {
		dir = "LR"
	}

	fmt.Fprintf(bw, "flowchart %s\n", dir)
	fmt.Fprintf(bw, "  classDef relevant fill:%s,stroke:#4a6785\n", r.opts.RelevantFill)
	fmt.Fprintf(bw, "  classDef irrelevant fill:%s,stroke:%s,color:%s,stroke-dasharray:4 3\n",
		r.opts.IrrelevantFill, r.opts.IrrelevantFont, r.opts.IrrelevantFont)
	fmt.Fprintln(bw)

	for _, n := range v.Nodes {
		fmt.Fprintf(bw, "  %s[\"%s\"]\n", n.ID, mermaidText(displayLabel(n)))
	}
	fmt.Fprintln(bw)

	var dimmed []string
	for i, e := range v.Edges {
		if e.Label != "" {
			fmt.Fprintf(bw, "  %s -->|%s| %s\n", e.From, mermaidText(e.Label), e.To)
		} else {
			fmt.Fprintf(bw, "  %s --> %s\n", e.From, e.To)
		}
		if !e.Relevant {
			dimmed = append(dimmed, fmt.Sprint(i))
		}
	}
	fmt.Fprintln(bw)

	var relevant, irrelevant []string
	for _, n := range v.Nodes {
		if n.Relevant {
			relevant = append(relevant, n.ID)
		} else {
			irrelevant = append(irrelevant, n.ID)
		}
	}
	if len(relevant) > 0 {
		fmt.Fprintf(bw, "  class %s relevant\n", strings.Join(relevant, ","))
	}
	if len(irrelevant) > 0 {
		fmt.Fprintf(bw, "  class %s irrelevant\n", strings.Join(irrelevant, ","))
	}
	if len(dimmed) > 0 {
		fmt.Fprintf(bw, "  linkStyle %s stroke:%s,stroke-dasharray:4 3\n", strings.Join(dimmed, ","), r.opts.IrrelevantFont)
	}

	for _, n := range v.Nodes {
		if n.Select == nil || r.opts.Link == nil {
			continue
		}
		if href := r.opts.Link(n, v.Facts); href != "" {
			fmt.Fprintf(bw, "  click %s \"%s\" \"%s\"\n", n.ID, href, mermaidText(n.Detail))
		}
	}

	return bw.Flush()
}

// mermaidText escapes text for a quoted Mermaid label
func mermaidText(s string) string {
	s = strings.ReplaceAll(s, "\"", "#quot;")
	return strings.ReplaceAll(s, "\n", "<br/>")
}
