package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/arrestflow/internal/facts"
)

// ErrNotSerializable is returned when exporting a graph with Func predicates
var ErrNotSerializable = errors.New("predicate cannot be written to a rules file")

var documentValidate = validator.New()

// Document is the YAML form of a rule graph
type Document struct {
	Nodes []NodeDoc `yaml:"nodes" validate:"required,min=1,dive"`
	Edges []EdgeDoc `yaml:"edges" validate:"omitempty,dive"`
}

// NodeDoc is one node in a rules file
type NodeDoc struct {
	ID             string             `yaml:"id" validate:"required"`
	Label          string             `yaml:"label" validate:"required"`
	Detail         string             `yaml:"detail,omitempty"`
	Select         *facts.Interaction `yaml:"select,omitempty" validate:"omitempty"`
	IrrelevantWhen []ConditionDoc     `yaml:"irrelevant_when,omitempty" validate:"omitempty,dive"`
}

// ConditionDoc is one irrelevance condition. Exactly one of Equals, Known,
// OneOf and NoneOf must be given.
type ConditionDoc struct {
	Field  facts.Field `yaml:"field" validate:"required,oneof=arrestingPerson warrant offenceCategory"`
	Equals string      `yaml:"equals,omitempty"`
	Known  bool        `yaml:"known,omitempty"`
	OneOf  []string    `yaml:"one_of,omitempty" validate:"omitempty,min=1"`
	NoneOf []string    `yaml:"none_of,omitempty" validate:"omitempty,min=1"`
}

// EdgeDoc is one edge in a rules file
type EdgeDoc struct {
	From  string `yaml:"from" validate:"required"`
	To    string `yaml:"to" validate:"required"`
	Label string `yaml:"label,omitempty"`
}

// Load reads a YAML rules file and returns the validated graph
func Load(r io.Reader) (*Graph, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}

	g, err := doc.Graph()
	if err != nil {
		return nil, err
	}
	if err := Validate(g); err != nil {
		return nil, fmt.Errorf("invalid rule graph: %w", err)
	}
	return g, nil
}

// LoadFile reads a rules file from disk
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	g, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Graph converts the document into a graph. The graph is not validated.
func (d Document) Graph() (*Graph, error) {
	if err := documentValidate.Struct(d); err != nil {
		return nil, fmt.Errorf("rules document: %w", err)
	}

	nodes := make([]Node, 0, len(d.Nodes))
	for _, nd := range d.Nodes {
		n := Node{ID: nd.ID, Label: nd.Label, Detail: nd.Detail}
		if nd.Select != nil {
			sel := *nd.Select
			n.Select = &sel
		}
		for i, cd := range nd.IrrelevantWhen {
			p, err := cd.predicate()
			if err != nil {
				return nil, fmt.Errorf("node %q condition %d: %w", nd.ID, i, err)
			}
			n.IrrelevantWhen = append(n.IrrelevantWhen, When(cd.Field, p))
		}
		nodes = append(nodes, n)
	}

	edges := make([]Edge, 0, len(d.Edges))
	for _, ed := range d.Edges {
		edges = append(edges, Edge(ed))
	}

	return NewGraph(nodes, edges), nil
}

func (c ConditionDoc) predicate() (Predicate, error) {
	var found []Predicate
	if c.Equals != "" {
		found = append(found, Equals(c.Equals))
	}
	if c.Known {
		found = append(found, Known())
	}
	if len(c.OneOf) > 0 {
		found = append(found, OneOf(c.OneOf...))
	}
	if len(c.NoneOf) > 0 {
		found = append(found, NoneOf(c.NoneOf...))
	}

	if len(found) != 1 {
		return Predicate{}, fmt.Errorf("%s: want exactly one of equals, known, one_of, none_of; got %d", c.Field, len(found))
	}
	return found[0], nil
}

// ToDocument converts a graph into its YAML form
func ToDocument(g *Graph) (Document, error) {
	doc := Document{
		Nodes: make([]NodeDoc, 0, len(g.Nodes)),
		Edges: make([]EdgeDoc, 0, len(g.Edges)),
	}

	for _, n := range g.Nodes {
		nd := NodeDoc{ID: n.ID, Label: n.Label, Detail: n.Detail}
		if n.Select != nil {
			sel := *n.Select
			nd.Select = &sel
		}
		for _, c := range n.IrrelevantWhen {
			cd := ConditionDoc{Field: c.Field}
			switch c.Predicate.Op() {
			case OpEquals:
				cd.Equals = c.Predicate.Literal()
			case OpKnown:
				cd.Known = true
			case OpOneOf:
				cd.OneOf = c.Predicate.Operands()
			case OpNoneOf:
				cd.NoneOf = c.Predicate.Operands()
			default:
				return Document{}, fmt.Errorf("node %q: %s: %w", n.ID, c, ErrNotSerializable)
			}
			nd.IrrelevantWhen = append(nd.IrrelevantWhen, cd)
		}
		doc.Nodes = append(doc.Nodes, nd)
	}

	for _, e := range g.Edges {
		doc.Edges = append(doc.Edges, EdgeDoc(e))
	}
	return doc, nil
}

// Export writes the graph as a YAML rules file
func Export(g *Graph, w io.Writer) error {
	doc, err := ToDocument(g)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}
	return enc.Close()
}
