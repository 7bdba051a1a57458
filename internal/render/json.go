package render

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ppiankov/arrestflow/internal/view"
)

// JSONRenderer writes the view as a JSON document
type JSONRenderer struct {
	Indent bool
}

type jsonDocument struct {
	view.View
	Roots []string `json:"roots"`
}

// Render implements Renderer
func (r *JSONRenderer) Render(ctx context.Context, v view.View, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	if r.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(jsonDocument{View: v, Roots: v.Roots()}); err != nil {
		return fmt.Errorf("encode view: %w", err)
	}
	return nil
}
