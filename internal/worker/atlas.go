package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/ppiankov/arrestflow/internal/facts"
	"github.com/ppiankov/arrestflow/internal/model"
	"github.com/ppiankov/arrestflow/internal/pipeline"
	"github.com/ppiankov/arrestflow/internal/render"
	"github.com/ppiankov/arrestflow/internal/view"
)

// Renderer defines the interface for rendering one fact set
type Renderer interface {
	RenderFacts(ctx context.Context, f facts.Facts, format render.Format) ([]byte, error)
	Explain(f facts.Facts) view.View
	Fingerprint() string
}

// RenderJob renders the graph under one fact combination
type RenderJob struct {
	Index    int
	Facts    facts.Facts
	Format   render.Format
	Renderer Renderer
}

// Execute executes the render job
func (j *RenderJob) Execute(ctx context.Context) Result {
	res := &RenderResult{Index: j.Index, Facts: j.Facts}
	if err := ctx.Err(); err != nil {
		res.Error = err
		return res
	}

	data, err := j.Renderer.RenderFacts(ctx, j.Facts, j.Format)
	if err != nil {
		res.Error = fmt.Errorf("render %s: %w", j.Facts.Key(), err)
		return res
	}
	res.Data = data

	v := j.Renderer.Explain(j.Facts)
	res.Relevant = len(v.Relevant())
	res.Irrelevant = len(v.Irrelevant())
	return res
}

// RenderResult represents the result of a render job
type RenderResult struct {
	Index      int
	Facts      facts.Facts
	Data       []byte
	Relevant   int
	Irrelevant int
	Error      error
}

// GetError returns the error from the render result
func (r *RenderResult) GetError() error {
	return r.Error
}

// AtlasProcessor renders many fact combinations concurrently
type AtlasProcessor struct {
	renderer    Renderer
	concurrency int
}

// NewAtlasProcessor creates a new atlas processor
func NewAtlasProcessor(renderer Renderer, concurrency int) *AtlasProcessor {
	return &AtlasProcessor{
		renderer:    renderer,
		concurrency: concurrency,
	}
}

// RenderAll renders every fact set in fs. Results come back in input order;
// a failed combination carries its error and does not stop the others.
func (a *AtlasProcessor) RenderAll(ctx context.Context, fs []facts.Facts, format render.Format) []*RenderResult {
	if len(fs) == 0 {
		return []*RenderResult{}
	}

	pool := NewPool(ctx, a.concurrency)
	pool.Start()

	for i, f := range fs {
		pool.Submit(&RenderJob{
			Index:    i,
			Facts:    f,
			Format:   format,
			Renderer: a.renderer,
		})
	}

	results := pool.Wait()

	out := make([]*RenderResult, len(fs))
	for _, r := range results {
		rr := r.(*RenderResult)
		out[rr.Index] = rr
	}
	// jobs dropped by cancellation never produced a result
	for i := range out {
		if out[i] == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			out[i] = &RenderResult{Index: i, Facts: fs[i], Error: err}
		}
	}

	return out
}

// WriteAtlas renders every fact combination into dir, one file each, and
// writes an index.json describing them
func (a *AtlasProcessor) WriteAtlas(ctx context.Context, dir string, format render.Format) (*model.AtlasReport, error) {
	results := a.RenderAll(ctx, facts.All(), format)

	report := &model.AtlasReport{
		GeneratedAt: time.Now().UTC(),
		Format:      string(format),
		Graph:       a.renderer.Fingerprint(),
		Entries:     make([]model.AtlasEntry, 0, len(results)),
	}

	for _, r := range results {
		entry := model.AtlasEntry{
			Facts:      r.Facts,
			Relevant:   r.Relevant,
			Irrelevant: r.Irrelevant,
		}
		if r.Error == nil {
			name := model.FileName(r.Facts, format.Extension())
			if err := pipeline.WriteFile(filepath.Join(dir, name), r.Data); err != nil {
				r.Error = err
			} else {
				entry.File = name
				entry.Bytes = len(r.Data)
			}
		}
		if r.Error != nil {
			entry.Error = r.Error.Error()
			report.Failures++
		}
		report.Entries = append(report.Entries, entry)
	}

	sort.SliceStable(report.Entries, func(i, j int) bool {
		return report.Entries[i].Facts.Key() < report.Entries[j].Facts.Key()
	})

	index, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal index: %w", err)
	}
	if err := pipeline.WriteFile(filepath.Join(dir, "index.json"), index); err != nil {
		return nil, fmt.Errorf("write index: %w", err)
	}

	return report, nil
}
