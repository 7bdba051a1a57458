package view

import (
	"fmt"
	"sync"

	"github.com/ppiankov/arrestflow/internal/facts"
	"github.com/ppiankov/arrestflow/internal/rules"
)

// Controller owns the current fact set for one interactive session. The fact
// set is replaced wholesale on every interaction, never edited in place.
type Controller struct {
	mu    sync.Mutex
	graph *rules.Graph
	facts facts.Facts
}

// NewController starts a session with every fact unset
func NewController(g *rules.Graph) *Controller {
	return &Controller{graph: g}
}

// Facts returns the current fact set
func (c *Controller) Facts() facts.Facts {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.facts
}

// View builds the view for the current facts
func (c *Controller) View() View {
	c.mu.Lock()
	g, f := c.graph, c.facts
	c.mu.Unlock()
	return Build(g, f)
}

// Apply runs the form reducer for one interaction and returns the new view.
// On error the current facts are kept.
func (c *Controller) Apply(in facts.Interaction, form facts.FormState) (View, error) {
	c.mu.Lock()
	next, err := facts.Reduce(c.facts, in, form)
	if err != nil {
		c.mu.Unlock()
		return View{}, err
	}
	c.facts = next
	g := c.graph
	c.mu.Unlock()

	return Build(g, next), nil
}

// Select toggles the fact attached to a node, as a click on the node does
func (c *Controller) Select(nodeID string) (View, error) {
	c.mu.Lock()
	n, ok := c.graph.Node(nodeID)
	if !ok {
		c.mu.Unlock()
		return View{}, fmt.Errorf("select %q: no such node", nodeID)
	}
	if n.Select == nil {
		c.mu.Unlock()
		return View{}, fmt.Errorf("select %q: node is not selectable", nodeID)
	}

	next, err := facts.Toggle(c.facts, n.Select.Field, n.Select.Value)
	if err != nil {
		c.mu.Unlock()
		return View{}, fmt.Errorf("select %q: %w", nodeID, err)
	}
	c.facts = next
	g := c.graph
	c.mu.Unlock()

	return Build(g, next), nil
}

// Reset clears every fact
func (c *Controller) Reset() View {
	c.mu.Lock()
	c.facts = facts.Facts{}
	g := c.graph
	c.mu.Unlock()
	return Build(g, facts.Facts{})
}
