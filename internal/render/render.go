// Package render draws a view of the rule graph. Relevant nodes are drawn
// normally and nodes ruled out by the current facts are dimmed.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ppiankov/arrestflow/internal/facts"
	"github.com/ppiankov/arrestflow/internal/view"
)

// ErrUnknownFormat is returned by New for an unsupported output format
var ErrUnknownFormat = errors.New("unknown output format")

// Format is an output format
type Format string

const (
	FormatDOT     Format = "dot"
	FormatSVG     Format = "svg"
	FormatPNG     Format = "png"
	FormatMermaid Format = "mermaid"
	FormatJSON    Format = "json"
	FormatText    Format = "text"
)

// Formats lists every supported format
func Formats() []Format {
	return []Format{FormatDOT, FormatSVG, FormatPNG, FormatMermaid, FormatJSON, FormatText}
}

// ParseFormat parses a format name, case-insensitively
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Extension returns the file extension for the format
func (f Format) Extension() string {
	switch f {
	case FormatMermaid:
		return ".mmd"
	case FormatText:
		return ".txt"
	}
	return "." + string(f)
}

// Renderer draws a view to w
type Renderer interface {
	Render(ctx context.Context, v view.View, w io.Writer) error
}

// LinkFunc returns the URL a click on a selectable node should follow, or ""
type LinkFunc func(n view.NodeView, current facts.Facts) string

// Options controls styling shared by the renderers
type Options struct {
	RankDir        string // TB or LR
	RelevantFill   string
	IrrelevantFill string
	IrrelevantFont string
	Link           LinkFunc
	Color          bool // ANSI styling for the text renderer
}

// Fingerprint identifies the options that change rendered output. Two
// option sets with the same fingerprint draw the same bytes for a view.
func (o Options) Fingerprint() string {
	link := "nolink"
	if o.Link != nil {
		link = "link"
	}
	return strings.Join([]string{
		"rank=" + o.RankDir,
		"fill=" + o.RelevantFill,
		"dimfill=" + o.IrrelevantFill,
		"dimfont=" + o.IrrelevantFont,
		"color=" + strconv.FormatBool(o.Color),
		link,
	}, ";")
}

// DefaultOptions returns the standard styling
func DefaultOptions() Options {
	return Options{
		RankDir:        "TB",
		RelevantFill:   "#e8f1fb",
		IrrelevantFill: "#f4f4f4",
		IrrelevantFont: "#a8a8a8",
	}
}

// New returns the renderer for a format
func New(format Format, opts Options) (Renderer, error) {
	switch format {
	case FormatDOT, FormatSVG, FormatPNG:
		return &GraphvizRenderer{format: format, opts: opts}, nil
	case FormatMermaid:
		return &MermaidRenderer{opts: opts}, nil
	case FormatJSON:
		return &JSONRenderer{Indent: true}, nil
	case FormatText:
		return NewTextRenderer(opts), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// detailMarker is appended to the label of nodes that carry a tooltip
const detailMarker = " (?)"

func displayLabel(n view.NodeView) string {
	if n.Detail == "" {
		return n.Label
	}
	return n.Label + detailMarker
}
