package facts

import (
	"encoding/json"
	"fmt"
)

// wireFacts is the JSON shape: unset fields are null, warrant is a boolean
type wireFacts struct {
	ArrestingPerson *string `json:"arrestingPerson"`
	Warrant         *bool   `json:"warrant"`
	OffenceCategory *string `json:"offenceCategory"`
}

// MarshalJSON encodes unset fields as null
func (f Facts) MarshalJSON() ([]byte, error) {
	var w wireFacts
	if f.ArrestingPerson != PersonUnset {
		s := string(f.ArrestingPerson)
		w.ArrestingPerson = &s
	}
	if f.Warrant.Known() {
		b := f.Warrant == WarrantYes
		w.Warrant = &b
	}
	if f.OffenceCategory != CategoryUnset {
		s := string(f.OffenceCategory)
		w.OffenceCategory = &s
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts null or a concrete value for each field
func (f *Facts) UnmarshalJSON(data []byte) error {
	var w wireFacts
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode facts: %w", err)
	}

	var next Facts
	if w.ArrestingPerson != nil {
		p, err := ParsePerson(*w.ArrestingPerson)
		if err != nil {
			return err
		}
		next.ArrestingPerson = p
	}
	if w.Warrant != nil {
		if *w.Warrant {
			next.Warrant = WarrantYes
		} else {
			next.Warrant = WarrantNo
		}
	}
	if w.OffenceCategory != nil {
		c, err := ParseCategory(*w.OffenceCategory)
		if err != nil {
			return err
		}
		next.OffenceCategory = c
	}

	*f = next
	return nil
}
