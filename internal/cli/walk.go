package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/arrestflow/internal/facts"
	"github.com/ppiankov/arrestflow/internal/render"
	"github.com/ppiankov/arrestflow/internal/view"
)

var walkNoColor bool

// walkCmd represents the walk command
var walkCmd = &cobra.Command{
	Use:   "walk",
	Short: "Step through the flowchart one answer at a time",
	Long: `Walk reads commands from stdin and keeps the facts between them, the
way the web form does. Answering a question with the value it already holds
clears it.

Commands:
  person <citizen|police>     answer who is arresting
  warrant <yes|no>            answer whether there is a warrant
  category <token>            pick the offence category
  select <node>               click a node in the chart
  show                        print the chart for the current facts
  reset                       clear every answer
  quit

Example:
  printf 'person police\nwarrant no\nshow\n' | arrestflow walk`,
	Args: cobra.NoArgs,
	RunE: runWalk,
}

func init() {
	rootCmd.AddCommand(walkCmd)

	walkCmd.Flags().BoolVar(&walkNoColor, "no-color", false, "disable ANSI styling")
}

var walkFields = map[string]facts.Field{
	"person":   facts.FieldArrestingPerson,
	"warrant":  facts.FieldWarrant,
	"category": facts.FieldOffenceCategory,
}

func runWalk(cmd *cobra.Command, args []string) error {
	_, p, err := setup()
	if err != nil {
		return err
	}

	opts := p.Options()
	if walkNoColor {
		opts.Color = false
	}
	w := &walker{
		ctrl: view.NewController(p.Graph()),
		text: render.NewTextRenderer(opts),
		out:  cmd.OutOrStdout(),
	}
	return w.run(context.Background(), cmd.InOrStdin())
}

// walker drives one interactive session
type walker struct {
	ctrl *view.Controller
	text *render.TextRenderer
	out  io.Writer
}

func (w *walker) run(ctx context.Context, in io.Reader) error {
	w.status(w.ctrl.View())
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		verb, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		var (
			v   view.View
			err error
		)
		switch verb {
		case "quit", "exit":
			return nil
		case "reset":
			v = w.ctrl.Reset()
		case "show":
			if err := w.text.Render(ctx, w.ctrl.View(), w.out); err != nil {
				return fmt.Errorf("walk: %w", err)
			}
			continue
		case "select":
			v, err = w.ctrl.Select(arg)
		default:
			field, ok := walkFields[verb]
			if !ok {
				fmt.Fprintf(w.out, "unknown command %q\n", verb)
				continue
			}
			v, err = w.answer(field, arg)
		}
		if err != nil {
			fmt.Fprintf(w.out, "error: %v\n", err)
			continue
		}
		w.status(v)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("walk: read input: %w", err)
	}
	return nil
}

// answer submits the current form with one choice changed
func (w *walker) answer(field facts.Field, value string) (view.View, error) {
	if field == facts.FieldWarrant {
		value = normalizeWarrant(value)
	}
	in := facts.Interaction{Field: field, Value: value}
	form := w.ctrl.Facts().Form()
	form[field] = value
	return w.ctrl.Apply(in, form)
}

// status prints the answered facts and how many steps still apply
func (w *walker) status(v view.View) {
	f := v.Facts
	if f.IsZero() {
		fmt.Fprintf(w.out, "no answers yet, %d steps\n", len(v.Nodes))
		return
	}

	var parts []string
	for _, field := range facts.Fields() {
		if f.IsSet(field) {
			parts = append(parts, fmt.Sprintf("%s=%s", field, f.Value(field)))
		}
	}
	fmt.Fprintf(w.out, "%s, %d of %d steps apply\n", strings.Join(parts, " "), len(v.Relevant()), len(v.Nodes))
}
