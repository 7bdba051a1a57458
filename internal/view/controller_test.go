package view

import (
	"errors"
	"sync"
	"testing"

	"github.com/ppiankov/arrestflow/internal/facts"
	"github.com/ppiankov/arrestflow/internal/rules"
)

func TestController_StartsUnset(t *testing.T) {
	c := NewController(rules.CriminalCode())
	if !c.Facts().IsZero() {
		t.Errorf("expected unset facts, got %s", c.Facts())
	}
	if irr := c.View().Irrelevant(); len(irr) != 0 {
		t.Errorf("expected no irrelevant nodes, got %v", irr)
	}
}

func TestController_ApplyToggle(t *testing.T) {
	c := NewController(rules.CriminalCode())
	form := facts.FormState{facts.FieldArrestingPerson: "citizen"}
	click := facts.Interaction{Field: facts.FieldArrestingPerson, Value: "citizen"}

	v, err := c.Apply(click, form)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if v.Facts.ArrestingPerson != facts.PersonCitizen {
		t.Fatalf("expected citizen, got %s", v.Facts)
	}
	if n, _ := v.Node(rules.NodePoliceArresting); n.Relevant {
		t.Error("policeArresting should be irrelevant after choosing citizen")
	}

	v, err = c.Apply(click, form)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if v.Facts.ArrestingPerson != facts.PersonUnset {
		t.Errorf("second click should clear, got %s", v.Facts)
	}
	if c.Facts() != v.Facts {
		t.Error("controller state and returned view disagree")
	}
}

func TestController_ApplyErrorKeepsFacts(t *testing.T) {
	c := NewController(rules.CriminalCode())
	if _, err := c.Apply(facts.Interaction{Field: facts.FieldWarrant, Value: "true"}, facts.FormState{facts.FieldWarrant: "true"}); err != nil {
		t.Fatal(err)
	}

	_, err := c.Apply(facts.Interaction{Field: facts.FieldOffenceCategory, Value: "bogus"}, facts.FormState{facts.FieldOffenceCategory: "bogus"})
	if !errors.Is(err, facts.ErrUnknownValue) {
		t.Fatalf("expected ErrUnknownValue, got %v", err)
	}
	if c.Facts().Warrant != facts.WarrantYes {
		t.Errorf("facts changed after a failed interaction: %s", c.Facts())
	}
}

func TestController_Select(t *testing.T) {
	c := NewController(rules.CriminalCode())

	v, err := c.Select(rules.NodeCitizenArresting)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if v.Facts.ArrestingPerson != facts.PersonCitizen {
		t.Errorf("expected citizen, got %s", v.Facts)
	}

	v, err = c.Select(rules.NodePoliceArresting)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if v.Facts.ArrestingPerson != facts.PersonPolice {
		t.Errorf("expected police, got %s", v.Facts)
	}

	v, err = c.Select(rules.NodePoliceArresting)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if v.Facts.ArrestingPerson != facts.PersonUnset {
		t.Errorf("expected toggle off, got %s", v.Facts)
	}

	if _, err := c.Select("missing"); err == nil {
		t.Error("expected error for missing node")
	}
	if _, err := c.Select(rules.NodeWhoArresting); err == nil {
		t.Error("expected error for a node without a selection")
	}
}

func TestController_Reset(t *testing.T) {
	c := NewController(rules.CriminalCode())
	if _, err := c.Select(rules.NodeCitizenArresting); err != nil {
		t.Fatal(err)
	}
	v := c.Reset()
	if !v.Facts.IsZero() || !c.Facts().IsZero() {
		t.Errorf("expected reset facts, got %s", c.Facts())
	}
}

func TestController_ConcurrentReads(t *testing.T) {
	c := NewController(rules.CriminalCode())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = c.View()
				_, _ = c.Select(rules.NodeCitizenArresting)
			}
		}()
	}
	wg.Wait()
}
