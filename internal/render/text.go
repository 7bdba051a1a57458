package render

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ppiankov/arrestflow/internal/view"
)

// TextRenderer prints the graph as an indented outline from its entry nodes
type TextRenderer struct {
	color      bool
	relevant   lipgloss.Style
	irrelevant lipgloss.Style
	detail     lipgloss.Style
	edge       lipgloss.Style
}

// NewTextRenderer builds a text renderer. Styles apply only when opts.Color is set.
func NewTextRenderer(opts Options) *TextRenderer {
	return &TextRenderer{
		color:      opts.Color,
		relevant:   lipgloss.NewStyle().Bold(true),
		irrelevant: lipgloss.NewStyle().Faint(true).Strikethrough(true),
		detail:     lipgloss.NewStyle().Faint(true).Italic(true),
		edge:       lipgloss.NewStyle().Foreground(lipgloss.Color("#2196F3")),
	}
}

func (r *TextRenderer) style(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}

// Render implements Renderer
func (r *TextRenderer) Render(ctx context.Context, v view.View, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Facts: %s\n", v.Facts.Key())
	fmt.Fprintf(bw, "Relevant: %d/%d\n\n", len(v.Relevant()), len(v.Nodes))

	printed := make(map[string]bool, len(v.Nodes))
	var walk func(id, via string, depth int)
	walk = func(id, via string, depth int) {
		n, ok := v.Node(id)
		if !ok {
			return
		}
		indent := strings.Repeat("  ", depth)

		prefix := ""
		if via != "" {
			prefix = r.style(r.edge, "["+via+"]") + " "
		}

		label := strings.ReplaceAll(n.Label, "\n", " ")
		if printed[id] {
			fmt.Fprintf(bw, "%s%s-> %s\n", indent, prefix, label)
			return
		}
		printed[id] = true

		if n.Relevant {
			fmt.Fprintf(bw, "%s%s+ %s\n", indent, prefix, r.style(r.relevant, label))
			if n.Detail != "" {
				fmt.Fprintf(bw, "%s    %s\n", indent, r.style(r.detail, n.Detail))
			}
		} else {
			fmt.Fprintf(bw, "%s%s- %s  (%s)\n", indent, prefix, r.style(r.irrelevant, label), n.Reason)
		}

		for _, e := range v.Outgoing(id) {
			walk(e.To, e.Label, depth+1)
		}
	}

	for i, root := range v.Roots() {
		if i > 0 {
			fmt.Fprintln(bw)
		}
		walk(root, "", 0)
	}

	return bw.Flush()
}
