package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/arrestflow/internal/facts"
)

// factFlags holds the --person, --warrant and --category flags of a command
type factFlags struct {
	person   string
	warrant  string
	category string
}

func (ff *factFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ff.person, "person", "", "who is arresting (citizen, police)")
	cmd.Flags().StringVar(&ff.warrant, "warrant", "", "is there a warrant (true, false)")
	cmd.Flags().StringVar(&ff.category, "category", "", "offence category ("+strings.Join(facts.FieldOffenceCategory.Tokens(), ", ")+")")
}

// facts parses the flags. Empty flags leave the fact unset.
func (ff *factFlags) facts() (facts.Facts, error) {
	var f facts.Facts
	var errs []error
	raw := map[facts.Field]string{
		facts.FieldArrestingPerson: ff.person,
		facts.FieldWarrant:         normalizeWarrant(ff.warrant),
		facts.FieldOffenceCategory: ff.category,
	}
	for _, field := range facts.Fields() {
		next, err := f.With(field, strings.TrimSpace(raw[field]))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		f = next
	}
	return f, errors.Join(errs...)
}

// normalizeWarrant accepts yes/no as well as true/false on the command line
func normalizeWarrant(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y":
		return facts.WarrantYes.String()
	case "no", "n":
		return facts.WarrantNo.String()
	}
	return strings.ToLower(strings.TrimSpace(s))
}
