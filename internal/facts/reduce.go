package facts

import (
	"errors"
	"fmt"
)

// Interaction is a single click on a form choice
type Interaction struct {
	Field Field  `json:"field" yaml:"field" validate:"required,oneof=arrestingPerson warrant offenceCategory"`
	Value string `json:"value" yaml:"value"`
}

// FormState holds the raw value of each form input group. A missing or
// empty entry means nothing is checked in that group.
type FormState map[Field]string

// Form returns the form as it looks while f is displayed: each group has
// the current value of its field checked
func (f Facts) Form() FormState {
	all := Fields()
	form := make(FormState, len(all))
	for _, field := range all {
		form[field] = f.Value(field)
	}
	return form
}

// Reduce computes the fact set that follows an interaction. Each field is
// read from the form, except that clicking the choice a field already holds
// clears it. prev is never modified.
func Reduce(prev Facts, in Interaction, form FormState) (Facts, error) {
	if _, err := ParseField(string(in.Field)); err != nil {
		return prev, err
	}

	var next Facts
	var errs []error
	for _, field := range Fields() {
		if field == in.Field {
			clicked, err := canonical(field, in.Value)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if clicked != "" && clicked == prev.Value(field) {
				// already unset in next
				continue
			}
		}

		token, err := canonical(field, form[field])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		next, _ = next.With(field, token)
	}

	if err := errors.Join(errs...); err != nil {
		return prev, fmt.Errorf("reduce %s: %w", in.Field, err)
	}
	return next, nil
}

// Toggle sets field to token unless it already holds it, in which case the
// field is cleared. Used for clicks on graph nodes.
func Toggle(prev Facts, field Field, token string) (Facts, error) {
	tok, err := canonical(field, token)
	if err != nil {
		return prev, err
	}
	if tok != "" && prev.Value(field) == tok {
		return prev.With(field, "")
	}
	return prev.With(field, tok)
}

// canonical normalizes a raw form value. Warrant values that are not "true"
// or "false" read as unknown; enum fields reject unknown tokens.
func canonical(field Field, raw string) (string, error) {
	switch field {
	case FieldWarrant:
		return ParseWarrant(raw).String(), nil
	case FieldArrestingPerson:
		p, err := ParsePerson(raw)
		return string(p), err
	case FieldOffenceCategory:
		c, err := ParseCategory(raw)
		return string(c), err
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
}
