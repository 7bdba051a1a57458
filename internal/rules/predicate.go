package rules

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ppiankov/arrestflow/internal/facts"
)

// Kind tags the two predicate variants
type Kind int

const (
	// KindLiteral fires when the fact equals a fixed token
	KindLiteral Kind = iota
	// KindRule fires when a function of the fact returns true
	KindRule
)

// Op names the built-in rule shapes. Rules built from an Op can be written
// back to YAML; OpFunc rules cannot.
type Op string

const (
	OpEquals Op = "equals"
	OpKnown  Op = "known"
	OpOneOf  Op = "one_of"
	OpNoneOf Op = "none_of"
	OpFunc   Op = "func"
)

// Predicate says when a node stops applying, given the value of one fact.
// Use the constructors; the zero value never fires.
type Predicate struct {
	kind     Kind
	op       Op
	literal  string
	operands []string
	desc     string
	rule     func(value string) bool
}

// Equals is the literal variant: fires when the fact holds exactly token
func Equals(token string) Predicate {
	return Predicate{kind: KindLiteral, op: OpEquals, literal: token}
}

// Known fires as soon as the fact has any value
func Known() Predicate {
	return Predicate{
		kind: KindRule,
		op:   OpKnown,
		rule: func(v string) bool { return v != "" },
	}
}

// OneOf fires when the fact holds one of tokens
func OneOf(tokens ...string) Predicate {
	set := slices.Clone(tokens)
	return Predicate{
		kind:     KindRule,
		op:       OpOneOf,
		operands: set,
		rule:     func(v string) bool { return slices.Contains(set, v) },
	}
}

// NoneOf fires when the fact holds a value outside tokens. An unset fact
// never fires it.
func NoneOf(tokens ...string) Predicate {
	set := slices.Clone(tokens)
	return Predicate{
		kind:     KindRule,
		op:       OpNoneOf,
		operands: set,
		rule:     func(v string) bool { return v != "" && !slices.Contains(set, v) },
	}
}

// Func wraps an arbitrary rule. fn should return false for "" (unset);
// Validate audits that.
func Func(desc string, fn func(value string) bool) Predicate {
	return Predicate{kind: KindRule, op: OpFunc, desc: desc, rule: fn}
}

// Kind returns the variant tag
func (p Predicate) Kind() Kind { return p.kind }

// Op returns the rule shape
func (p Predicate) Op() Op { return p.op }

// Literal returns the token of a literal predicate
func (p Predicate) Literal() string { return p.literal }

// Operands returns the token list of a OneOf or NoneOf rule
func (p Predicate) Operands() []string { return slices.Clone(p.operands) }

// Fires evaluates the predicate on a fact token ("" = unset). A rule is never
// evaluated on an unset value: only a concrete fact can rule a node out.
func (p Predicate) Fires(value string) bool {
	switch p.kind {
	case KindLiteral:
		return p.literal != "" && p.literal == value
	case KindRule:
		if value == "" || p.rule == nil {
			return false
		}
		return p.rule(value)
	}
	return false
}

// Unguarded calls the underlying rule without the unset guard. Only the
// audit in Validate uses it.
func (p Predicate) Unguarded(value string) bool {
	if p.kind == KindLiteral {
		return p.literal == value
	}
	if p.rule == nil {
		return false
	}
	return p.rule(value)
}

// String renders the predicate the way it reads in the rules file
func (p Predicate) String() string {
	switch p.op {
	case OpEquals:
		return fmt.Sprintf("= %s", p.literal)
	case OpKnown:
		return "is known"
	case OpOneOf:
		return "in [" + strings.Join(p.operands, ", ") + "]"
	case OpNoneOf:
		return "not in [" + strings.Join(p.operands, ", ") + "]"
	case OpFunc:
		if p.desc != "" {
			return p.desc
		}
		return "func"
	}
	return "never"
}

// Condition pairs a fact field with the predicate evaluated on it
type Condition struct {
	Field     facts.Field
	Predicate Predicate
}

// When builds a condition
func When(field facts.Field, p Predicate) Condition {
	return Condition{Field: field, Predicate: p}
}

// String implements fmt.Stringer
func (c Condition) String() string {
	return string(c.Field) + " " + c.Predicate.String()
}

// IsRelevant reports whether a node still applies under f. Conditions are
// checked in order and the first one that fires makes the node irrelevant.
// No conditions means always relevant.
func IsRelevant(conds []Condition, f facts.Facts) bool {
	for _, c := range conds {
		if c.Predicate.Fires(f.Value(c.Field)) {
			return false
		}
	}
	return true
}

// FirstFired returns the index of the condition that rules a node out under
// f, or -1 when the node is relevant
func FirstFired(conds []Condition, f facts.Facts) int {
	for i, c := range conds {
		if c.Predicate.Fires(f.Value(c.Field)) {
			return i
		}
	}
	return -1
}
