// Package rules holds the legal rule graph: nodes annotated with the facts
// that rule them out, directed edges between them, the relevance filter and
// the load-time validation of the graph.
package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/ppiankov/arrestflow/internal/facts"
)

// Node is one step of the decision flow: a question, a statement of law or
// an outcome
type Node struct {
	ID     string
	Label  string
	Detail string // optional citation or explanation, shown as a tooltip

	// IrrelevantWhen lists, in evaluation order, the facts that rule this
	// node out. Empty means the node always applies.
	IrrelevantWhen []Condition

	// Select is the fact a click on this node toggles, if any
	Select *facts.Interaction
}

// Relevant reports whether the node applies under f
func (n Node) Relevant(f facts.Facts) bool {
	return IsRelevant(n.IrrelevantWhen, f)
}

// Edge is a directed transition, optionally labelled with its condition
type Edge struct {
	From  string
	To    string
	Label string
}

// Graph is an ordered set of nodes and the edges between them
type Graph struct {
	Nodes []Node
	Edges []Edge

	index map[string]int
}

// NewGraph builds a graph and indexes its nodes. It does not validate.
func NewGraph(nodes []Node, edges []Edge) *Graph {
	g := &Graph{Nodes: nodes, Edges: edges}
	g.reindex()
	return g
}

func (g *Graph) reindex() {
	g.index = make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		if _, dup := g.index[n.ID]; !dup {
			g.index[n.ID] = i
		}
	}
}

// Node looks up a node by id
func (g *Graph) Node(id string) (Node, bool) {
	if g.index == nil {
		for _, n := range g.Nodes {
			if n.ID == id {
				return n, true
			}
		}
		return Node{}, false
	}
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// Children returns the outgoing edges of a node in declaration order
func (g *Graph) Children(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// Roots returns the ids of nodes without incoming edges, in node order
func (g *Graph) Roots() []string {
	incoming := make(map[string]bool, len(g.Nodes))
	for _, e := range g.Edges {
		incoming[e.To] = true
	}

	var roots []string
	for _, n := range g.Nodes {
		if !incoming[n.ID] {
			roots = append(roots, n.ID)
		}
	}
	return roots
}

// Fingerprint is a stable hash of the graph content, used to key rendered
// output. Func predicates contribute only their description.
func Fingerprint(g *Graph) string {
	h := sha256.New()
	for _, n := range g.Nodes {
		writeField(h, "node", n.ID, n.Label, n.Detail)
		for _, c := range n.IrrelevantWhen {
			writeField(h, "when", string(c.Field), c.String())
		}
		if n.Select != nil {
			writeField(h, "select", string(n.Select.Field), n.Select.Value)
		}
	}
	for _, e := range g.Edges {
		writeField(h, "edge", e.From, e.To, e.Label)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeField(w io.Writer, parts ...string) {
	for _, p := range parts {
		fmt.Fprintf(w, "%d:%s;", len(p), p)
	}
	_, _ = io.WriteString(w, "\n")
}
