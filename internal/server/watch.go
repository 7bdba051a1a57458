package server

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ppiankov/arrestflow/internal/pipeline"
	"github.com/ppiankov/arrestflow/internal/rules"
)

// reloadDelay coalesces the burst of events an editor save produces
const reloadDelay = 200 * time.Millisecond

// WatchRules reloads the rules file into p whenever it changes, until ctx is
// cancelled. A file that fails to load is logged and the previous graph kept.
func WatchRules(ctx context.Context, path string, p *pipeline.Pipeline, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// watch the directory so rename-on-save editors keep working
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(dir, filepath.Base(abs))
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	logger.Info("watching rules", zap.String("file", abs))

	timer := time.NewTimer(reloadDelay)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(reloadDelay)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		case <-timer.C:
			reload(abs, p, logger)
		}
	}
}

func reload(path string, p *pipeline.Pipeline, logger *zap.Logger) {
	g, err := rules.LoadFile(path)
	if err != nil {
		ruleReloads.WithLabelValues("error").Inc()
		logger.Error("rules reload failed, keeping previous graph", zap.String("file", path), zap.Error(err))
		return
	}

	before := p.Fingerprint()
	p.ReplaceGraph(g)
	ruleReloads.WithLabelValues("ok").Inc()
	logger.Info("rules reloaded",
		zap.String("file", path),
		zap.String("previous", before),
		zap.String("graph", p.Fingerprint()),
		zap.Int("nodes", len(g.Nodes)),
	)
}
