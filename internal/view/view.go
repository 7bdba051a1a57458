// Package view builds the per-fact view of the rule graph that renderers draw.
package view

import (
	"github.com/ppiankov/arrestflow/internal/facts"
	"github.com/ppiankov/arrestflow/internal/rules"
)

// NodeView is a node as drawn under the current facts
type NodeView struct {
	ID       string             `json:"id"`
	Label    string             `json:"label"`
	Detail   string             `json:"detail,omitempty"`
	Relevant bool               `json:"relevant"`
	Reason   string             `json:"reason,omitempty"` // the condition that ruled the node out
	Select   *facts.Interaction `json:"select,omitempty"`
}

// EdgeView is an edge as drawn under the current facts. An edge is relevant
// when both of its endpoints are.
type EdgeView struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Label    string `json:"label,omitempty"`
	Relevant bool   `json:"relevant"`
}

// View is the graph with every node classified for one fact set
type View struct {
	Facts facts.Facts `json:"facts"`
	Nodes []NodeView  `json:"nodes"`
	Edges []EdgeView  `json:"edges"`

	index map[string]int
}

// Build classifies every node of g under f. It does not modify g and always
// returns the same view for the same inputs.
func Build(g *rules.Graph, f facts.Facts) View {
	v := View{
		Facts: f,
		Nodes: make([]NodeView, 0, len(g.Nodes)),
		Edges: make([]EdgeView, 0, len(g.Edges)),
		index: make(map[string]int, len(g.Nodes)),
	}

	for _, n := range g.Nodes {
		nv := NodeView{
			ID:       n.ID,
			Label:    n.Label,
			Detail:   n.Detail,
			Relevant: true,
		}
		if i := rules.FirstFired(n.IrrelevantWhen, f); i >= 0 {
			nv.Relevant = false
			nv.Reason = n.IrrelevantWhen[i].String()
		}
		if n.Select != nil {
			sel := *n.Select
			nv.Select = &sel
		}
		v.index[n.ID] = len(v.Nodes)
		v.Nodes = append(v.Nodes, nv)
	}

	for _, e := range g.Edges {
		from, _ := v.Node(e.From)
		to, _ := v.Node(e.To)
		v.Edges = append(v.Edges, EdgeView{
			From:     e.From,
			To:       e.To,
			Label:    e.Label,
			Relevant: from.Relevant && to.Relevant,
		})
	}

	return v
}

// Node looks up a node view by id
func (v View) Node(id string) (NodeView, bool) {
	i, ok := v.index[id]
	if !ok {
		return NodeView{}, false
	}
	return v.Nodes[i], true
}

// Relevant returns the ids of relevant nodes in graph order
func (v View) Relevant() []string {
	var out []string
	for _, n := range v.Nodes {
		if n.Relevant {
			out = append(out, n.ID)
		}
	}
	return out
}

// Irrelevant returns the ids of irrelevant nodes in graph order
func (v View) Irrelevant() []string {
	var out []string
	for _, n := range v.Nodes {
		if !n.Relevant {
			out = append(out, n.ID)
		}
	}
	return out
}

// Outgoing returns the edges leaving id in graph order
func (v View) Outgoing(id string) []EdgeView {
	var out []EdgeView
	for _, e := range v.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// Roots returns ids of nodes without incoming edges
func (v View) Roots() []string {
	incoming := make(map[string]bool, len(v.Nodes))
	for _, e := range v.Edges {
		incoming[e.To] = true
	}
	var out []string
	for _, n := range v.Nodes {
		if !incoming[n.ID] {
			out = append(out, n.ID)
		}
	}
	return out
}
