package render

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/ppiankov/arrestflow/internal/view"
)

// The graphviz C library keeps global layout state
var graphvizMu sync.Mutex

// GraphvizRenderer lays the graph out with graphviz and emits dot, svg or png
type GraphvizRenderer struct {
	format Format
	opts   Options
}

// Render implements Renderer
func (r *GraphvizRenderer) Render(ctx context.Context, v view.View, w io.Writer) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	var gvFormat graphviz.Format
	switch r.format {
	case FormatSVG:
		gvFormat = graphviz.SVG
	case FormatPNG:
		gvFormat = graphviz.PNG
	case FormatDOT:
		gvFormat = graphviz.XDOT
	default:
		return fmt.Errorf("%w: graphviz cannot emit %q", ErrUnknownFormat, r.format)
	}

	graphvizMu.Lock()
	defer graphvizMu.Unlock()

	g := graphviz.New()
	graph, err := g.Graph()
	if err != nil {
		return fmt.Errorf("create graph: %w", err)
	}
	defer func() {
		if closeErr := graph.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close graph: %w", closeErr)
		}
		_ = g.Close()
	}()

	if err := r.build(graph, v); err != nil {
		return err
	}

	if err := g.Render(graph, gvFormat, w); err != nil {
		return fmt.Errorf("render %s: %w", r.format, err)
	}
	return nil
}

func (r *GraphvizRenderer) build(graph *cgraph.Graph, v view.View) error {
	switch r.opts.RankDir {
	case "LR":
		graph.SetRankDir(cgraph.LRRank)
	default:
		graph.SetRankDir(cgraph.TBRank)
	}

	nodes := make(map[string]*cgraph.Node, len(v.Nodes))
	for _, nv := range v.Nodes {
		n, err := graph.CreateNode(nv.ID)
		if err != nil {
			return fmt.Errorf("create node %s: %w", nv.ID, err)
		}
		n.SetLabel(displayLabel(nv))
		n.SetShape(cgraph.BoxShape)

		if nv.Relevant {
			n.SetStyle(cgraph.NodeStyle("rounded,filled"))
			n.SetFillColor(r.opts.RelevantFill)
		} else {
			n.SetStyle(cgraph.NodeStyle("rounded,filled,dashed"))
			n.SetFillColor(r.opts.IrrelevantFill)
			n.SetFontColor(r.opts.IrrelevantFont)
			n.SetColor(r.opts.IrrelevantFont)
		}

		if nv.Detail != "" {
			n.SetTooltip(nv.Detail)
		}
		if nv.Select != nil && r.opts.Link != nil {
			if href := r.opts.Link(nv, v.Facts); href != "" {
				n.SetURL(href)
			}
		}
		nodes[nv.ID] = n
	}

	for i, ev := range v.Edges {
		from, to := nodes[ev.From], nodes[ev.To]
		if from == nil || to == nil {
			return fmt.Errorf("edge %s -> %s: undefined node", ev.From, ev.To)
		}
		e, err := graph.CreateEdge(strconv.Itoa(i), from, to)
		if err != nil {
			return fmt.Errorf("create edge %s -> %s: %w", ev.From, ev.To, err)
		}
		if ev.Label != "" {
			e.SetLabel(ev.Label)
		}
		if !ev.Relevant {
			e.SetStyle(cgraph.DashedEdgeStyle)
			e.SetColor(r.opts.IrrelevantFont)
			e.SetFontColor(r.opts.IrrelevantFont)
		}
	}
	return nil
}
