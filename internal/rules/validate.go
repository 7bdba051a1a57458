package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/arrestflow/internal/facts"
)

// Validate checks the graph once at load time. It reports every problem it
// finds, joined into a single error.
func Validate(g *Graph) error {
	if g == nil || len(g.Nodes) == 0 {
		return errors.New("graph has no nodes")
	}

	var errs []error
	seen := make(map[string]bool, len(g.Nodes))

	for i, n := range g.Nodes {
		if n.ID == "" {
			errs = append(errs, fmt.Errorf("node %d: empty id", i))
			continue
		}
		if seen[n.ID] {
			errs = append(errs, fmt.Errorf("node %q: duplicate id", n.ID))
		}
		seen[n.ID] = true

		if strings.TrimSpace(n.Label) == "" {
			errs = append(errs, fmt.Errorf("node %q: empty label", n.ID))
		}
		errs = append(errs, validateConditions(n)...)

		if n.Select != nil {
			if _, err := facts.ParseField(string(n.Select.Field)); err != nil {
				errs = append(errs, fmt.Errorf("node %q: select: %w", n.ID, err))
			} else if !n.Select.Field.Accepts(n.Select.Value) {
				errs = append(errs, fmt.Errorf("node %q: select: %w: %s %q",
					n.ID, facts.ErrUnknownValue, n.Select.Field, n.Select.Value))
			}
		}
	}

	type pair struct{ from, to string }
	edges := make(map[pair]bool, len(g.Edges))
	for _, e := range g.Edges {
		if !seen[e.From] {
			errs = append(errs, fmt.Errorf("edge %s -> %s: undefined node %q", e.From, e.To, e.From))
		}
		if !seen[e.To] {
			errs = append(errs, fmt.Errorf("edge %s -> %s: undefined node %q", e.From, e.To, e.To))
		}
		if e.From == e.To {
			errs = append(errs, fmt.Errorf("edge %s -> %s: self loop", e.From, e.To))
		}
		k := pair{e.From, e.To}
		if edges[k] {
			errs = append(errs, fmt.Errorf("edge %s -> %s: duplicate", e.From, e.To))
		}
		edges[k] = true
	}

	if cycle := findCycle(g); cycle != nil {
		errs = append(errs, fmt.Errorf("cycle: %s", strings.Join(cycle, " -> ")))
	}
	if len(g.Roots()) == 0 {
		errs = append(errs, errors.New("graph has no entry node"))
	}

	return errors.Join(errs...)
}

// MustValidate panics if the graph is inconsistent. Use it on authored data
// at startup.
func MustValidate(g *Graph) *Graph {
	if err := Validate(g); err != nil {
		panic(fmt.Sprintf("invalid rule graph:\n%v", err))
	}
	return g
}

func validateConditions(n Node) []error {
	var errs []error
	for _, c := range n.IrrelevantWhen {
		if _, err := facts.ParseField(string(c.Field)); err != nil {
			errs = append(errs, fmt.Errorf("node %q: %w", n.ID, err))
			continue
		}

		p := c.Predicate
		switch p.Kind() {
		case KindLiteral:
			if !c.Field.Accepts(p.Literal()) {
				errs = append(errs, fmt.Errorf("node %q: %s: %w: %q",
					n.ID, c.Field, facts.ErrUnknownValue, p.Literal()))
			}
		case KindRule:
			for _, tok := range p.Operands() {
				if !c.Field.Accepts(tok) {
					errs = append(errs, fmt.Errorf("node %q: %s: %w: %q",
						n.ID, c.Field, facts.ErrUnknownValue, tok))
				}
			}
			// a rule may only rule a node out on a concrete value
			if p.Unguarded("") {
				errs = append(errs, fmt.Errorf("node %q: %s %s fires on an unset fact",
					n.ID, c.Field, p))
			}
		}
	}
	return errs
}

// findCycle returns the node ids of one cycle, or nil
func findCycle(g *Graph) []string {
	const (
		white = iota
		grey
		black
	)

	succ := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		succ[e.From] = append(succ[e.From], e.To)
	}

	color := make(map[string]int, len(g.Nodes))
	var stack []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = grey
		stack = append(stack, id)
		for _, next := range succ[id] {
			switch color[next] {
			case grey:
				for i, s := range stack {
					if s == next {
						cycle = append(append([]string{}, stack[i:]...), next)
						break
					}
				}
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return false
	}

	for _, n := range g.Nodes {
		if color[n.ID] == white && visit(n.ID) {
			return cycle
		}
	}
	return nil
}
