// Package facts models the three user-supplied facts that decide which
// arrest and release rules apply, and the form reducer that updates them.
package facts

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrUnknownField is returned for a field name outside the three facts
	ErrUnknownField = errors.New("unknown fact field")
	// ErrUnknownValue is returned for a token outside a field's domain
	ErrUnknownValue = errors.New("unknown fact value")
)

// Field names one fact. The string values match the form input names.
type Field string

const (
	FieldArrestingPerson Field = "arrestingPerson"
	FieldWarrant         Field = "warrant"
	FieldOffenceCategory Field = "offenceCategory"
)

// Fields lists every fact field in declaration order
func Fields() []Field {
	return []Field{FieldArrestingPerson, FieldWarrant, FieldOffenceCategory}
}

// ParseField parses a form input name
func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldArrestingPerson, FieldWarrant, FieldOffenceCategory:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Tokens returns the concrete wire tokens a field accepts (unset excluded)
func (f Field) Tokens() []string {
	switch f {
	case FieldArrestingPerson:
		return []string{string(PersonCitizen), string(PersonPolice)}
	case FieldWarrant:
		return []string{WarrantYes.String(), WarrantNo.String()}
	case FieldOffenceCategory:
		out := make([]string, 0, len(categories))
		for _, c := range categories {
			out = append(out, string(c))
		}
		return out
	}
	return nil
}

// Accepts reports whether token is a concrete value of the field
func (f Field) Accepts(token string) bool {
	for _, t := range f.Tokens() {
		if t == token {
			return true
		}
	}
	return false
}

// Person is who makes the arrest. The zero value is unset.
type Person string

const (
	PersonUnset   Person = ""
	PersonCitizen Person = "citizen"
	PersonPolice  Person = "police"
)

// ParsePerson parses an arrestingPerson token; empty means unset
func ParsePerson(s string) (Person, error) {
	switch p := Person(s); p {
	case PersonUnset, PersonCitizen, PersonPolice:
		return p, nil
	}
	return PersonUnset, fmt.Errorf("%w: arrestingPerson %q", ErrUnknownValue, s)
}

// Warrant is a tri-state: unknown, yes or no
type Warrant int8

const (
	WarrantUnknown Warrant = iota
	WarrantYes
	WarrantNo
)

// String returns the form token: "true", "false" or "" when unknown
func (w Warrant) String() string {
	switch w {
	case WarrantYes:
		return "true"
	case WarrantNo:
		return "false"
	}
	return ""
}

// Known reports whether the warrant question has been answered
func (w Warrant) Known() bool {
	return w != WarrantUnknown
}

// ParseWarrant maps "true" and "false" to a concrete answer. Any other
// input, including the empty string, is unknown.
func ParseWarrant(s string) Warrant {
	switch s {
	case "true":
		return WarrantYes
	case "false":
		return WarrantNo
	}
	return WarrantUnknown
}

// Category is the offence category. The zero value is unset.
type Category string

const (
	CategoryUnset           Category = ""
	CategorySummary         Category = "summary"
	CategoryHybrid          Category = "hybrid"
	CategoryS553            Category = "s553"
	CategoryIndictableShort Category = "indictableShort"
	CategoryIndictableLong  Category = "indictableLong"
	CategoryS469            Category = "s469"
)

var categories = []Category{
	CategorySummary,
	CategoryHybrid,
	CategoryS553,
	CategoryIndictableShort,
	CategoryIndictableLong,
	CategoryS469,
}

// ParseCategory parses an offenceCategory token; empty means unset
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return CategoryUnset, nil
	}
	for _, c := range categories {
		if string(c) == s {
			return c, nil
		}
	}
	return CategoryUnset, fmt.Errorf("%w: offenceCategory %q", ErrUnknownValue, s)
}

// Facts is the full fact set. The zero value has every field unset, which is
// the startup state. Facts is a value type: operations return new values.
type Facts struct {
	ArrestingPerson Person
	Warrant         Warrant
	OffenceCategory Category
}

// Value returns the wire token for a field, or "" when the field is unset
func (f Facts) Value(field Field) string {
	switch field {
	case FieldArrestingPerson:
		return string(f.ArrestingPerson)
	case FieldWarrant:
		return f.Warrant.String()
	case FieldOffenceCategory:
		return string(f.OffenceCategory)
	}
	return ""
}

// IsSet reports whether a field holds a concrete value
func (f Facts) IsSet(field Field) bool {
	return f.Value(field) != ""
}

// IsZero reports whether every field is unset
func (f Facts) IsZero() bool {
	return f == Facts{}
}

// With returns a copy of f with one field replaced by token.
// An empty token unsets the field.
func (f Facts) With(field Field, token string) (Facts, error) {
	switch field {
	case FieldArrestingPerson:
		p, err := ParsePerson(token)
		if err != nil {
			return f, err
		}
		f.ArrestingPerson = p
	case FieldWarrant:
		w := ParseWarrant(token)
		if token != "" && !w.Known() {
			return f, fmt.Errorf("%w: warrant %q", ErrUnknownValue, token)
		}
		f.Warrant = w
	case FieldOffenceCategory:
		c, err := ParseCategory(token)
		if err != nil {
			return f, err
		}
		f.OffenceCategory = c
	default:
		return f, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return f, nil
}

// Key is a stable, human readable identity used for cache keys and file names
func (f Facts) Key() string {
	part := func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	}
	return "person=" + part(string(f.ArrestingPerson)) +
		",warrant=" + part(f.Warrant.String()) +
		",category=" + part(string(f.OffenceCategory))
}

// String implements fmt.Stringer
func (f Facts) String() string {
	return f.Key()
}

// Values encodes the set fields as query parameters
func (f Facts) Values() url.Values {
	v := url.Values{}
	for _, field := range Fields() {
		if tok := f.Value(field); tok != "" {
			v.Set(string(field), tok)
		}
	}
	return v
}

// FromValues decodes facts from query parameters. Missing parameters are unset.
func FromValues(v url.Values) (Facts, error) {
	var f Facts
	var errs []error
	for _, field := range Fields() {
		next, err := f.With(field, strings.TrimSpace(v.Get(string(field))))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		f = next
	}
	return f, errors.Join(errs...)
}

// All enumerates every fact combination, unset values included, in a fixed order
func All() []Facts {
	persons := []Person{PersonUnset, PersonCitizen, PersonPolice}
	warrants := []Warrant{WarrantUnknown, WarrantYes, WarrantNo}
	cats := append([]Category{CategoryUnset}, categories...)

	out := make([]Facts, 0, len(persons)*len(warrants)*len(cats))
	for _, p := range persons {
		for _, w := range warrants {
			for _, c := range cats {
				out = append(out, Facts{ArrestingPerson: p, Warrant: w, OffenceCategory: c})
			}
		}
	}
	return out
}
