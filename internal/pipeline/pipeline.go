// Package pipeline turns a fact set into a rendered graph: build the view,
// render it, and cache the bytes.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/ppiankov/arrestflow/internal/cache"
	"github.com/ppiankov/arrestflow/internal/facts"
	"github.com/ppiankov/arrestflow/internal/model"
	"github.com/ppiankov/arrestflow/internal/render"
	"github.com/ppiankov/arrestflow/internal/rules"
	"github.com/ppiankov/arrestflow/internal/view"
)

// loaded is a rule graph together with its fingerprint
type loaded struct {
	graph       *rules.Graph
	fingerprint string
}

// Pipeline renders views of the current rule graph
type Pipeline struct {
	current atomic.Pointer[loaded]
	cache   cache.Cache
	opts    render.Options
}

// NewPipeline creates a pipeline over g with the given configuration
func NewPipeline(cfg *model.Config, g *rules.Graph) *Pipeline {
	var c cache.Cache = cache.Nop{}
	if cfg.Cache.Enabled {
		if cfg.Cache.Dir != "" {
			c = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		} else {
			c = cache.NewMemoryCache(cfg.Cache.MemoryTTL, 10*time.Minute)
		}
	}

	return New(g, c, OptionsFromConfig(cfg))
}

// New creates a pipeline with an explicit cache and render options
func New(g *rules.Graph, c cache.Cache, opts render.Options) *Pipeline {
	if c == nil {
		c = cache.Nop{}
	}
	p := &Pipeline{cache: c, opts: opts}
	p.ReplaceGraph(g)
	return p
}

// OptionsFromConfig maps the render section of the config onto renderer options
func OptionsFromConfig(cfg *model.Config) render.Options {
	opts := render.DefaultOptions()
	if cfg.Render.RankDir != "" {
		opts.RankDir = cfg.Render.RankDir
	}
	if cfg.Render.RelevantFill != "" {
		opts.RelevantFill = cfg.Render.RelevantFill
	}
	if cfg.Render.IrrelevantFill != "" {
		opts.IrrelevantFill = cfg.Render.IrrelevantFill
	}
	if cfg.Render.IrrelevantFont != "" {
		opts.IrrelevantFont = cfg.Render.IrrelevantFont
	}
	opts.Color = cfg.Render.Color
	return opts
}

// SetLink installs the link builder used for selectable nodes. Call before
// the pipeline is shared.
func (p *Pipeline) SetLink(fn render.LinkFunc) {
	p.opts.Link = fn
}

// Options returns the renderer options
func (p *Pipeline) Options() render.Options {
	return p.opts
}

// Graph returns the current rule graph
func (p *Pipeline) Graph() *rules.Graph {
	return p.current.Load().graph
}

// Fingerprint returns the fingerprint of the current rule graph
func (p *Pipeline) Fingerprint() string {
	return p.current.Load().fingerprint
}

// ReplaceGraph swaps in a new rule graph. Renders already in flight finish
// against the graph they started with.
func (p *Pipeline) ReplaceGraph(g *rules.Graph) {
	p.current.Store(&loaded{graph: g, fingerprint: rules.Fingerprint(g)})
}

// Explain builds the view for f without rendering it
func (p *Pipeline) Explain(f facts.Facts) view.View {
	return view.Build(p.Graph(), f)
}

// Renderer returns a renderer for format with the pipeline's options
func (p *Pipeline) Renderer(format render.Format) (render.Renderer, error) {
	return render.New(format, p.opts)
}

// RenderFacts renders the graph under f. Output is cached per graph, fact
// set and format.
func (p *Pipeline) RenderFacts(ctx context.Context, f facts.Facts, format render.Format) ([]byte, error) {
	cur := p.current.Load()
	key := cache.CacheKey(cur.fingerprint, p.opts.Fingerprint(), f.Key(), string(format))
	if data, ok := p.cache.Get(key); ok {
		return data, nil
	}

	r, err := p.Renderer(format)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := r.Render(ctx, view.Build(cur.graph, f), &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}

	data := buf.Bytes()
	// a failed cache write only costs a re-render
	_ = p.cache.Set(key, data, 0)
	return data, nil
}

// RenderToFile renders the graph under f into path, creating parent
// directories as needed
func (p *Pipeline) RenderToFile(ctx context.Context, f facts.Facts, format render.Format, path string) (int, error) {
	data, err := p.RenderFacts(ctx, f, format)
	if err != nil {
		return 0, err
	}
	if err := WriteFile(path, data); err != nil {
		return 0, err
	}
	return len(data), nil
}

// WriteFile writes data to path, creating parent directories
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// ClearCache drops every cached render
func (p *Pipeline) ClearCache() error {
	return p.cache.Clear()
}
