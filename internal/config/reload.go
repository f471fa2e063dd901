// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	xglog "github.com/ManuGH/twconfig/internal/log"
	"github.com/ManuGH/twconfig/internal/metrics"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// reloadDebounce coalesces bursts of file events (editors write in steps).
const reloadDebounce = 250 * time.Millisecond

// Holder holds the current descriptor and swaps it atomically on reload.
// Descriptors handed out by Get are never mutated afterwards.
type Holder struct {
	mu      sync.RWMutex
	current Descriptor
	loader  *Loader
	logger  zerolog.Logger

	// loadMu serializes Reload so an older load never replaces a newer one.
	loadMu sync.Mutex

	watchMu sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}

	reloadMu        sync.RWMutex
	reloadListeners []chan<- Descriptor
}

// NewHolder creates a holder with an initial descriptor.
func NewHolder(initial Descriptor, loader *Loader) *Holder {
	return &Holder{
		current: initial,
		loader:  loader,
		logger:  xglog.WithComponent("config"),
	}
}

// Get returns the current descriptor (thread-safe read).
func (h *Holder) Get() Descriptor {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload loads the descriptor again. If loading or validation fails the
// previous descriptor is kept and the error is returned.
func (h *Holder) Reload(ctx context.Context) error {
	h.loadMu.Lock()
	defer h.loadMu.Unlock()

	h.logger.Debug().Str(xglog.FieldEvent, "descriptor.reload_start").Msg("reloading descriptor")

	next, err := h.loader.Load(ctx)
	metrics.RecordReload(err)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "descriptor.reload_failed").
			Str(xglog.FieldPath, h.loader.Path()).
			Msg("descriptor reload failed, keeping previous descriptor")
		return fmt.Errorf("reload descriptor: %w", err)
	}

	h.mu.Lock()
	old := h.current
	h.current = next
	h.mu.Unlock()

	changes := Diff(old, next)
	h.logChanges(changes)
	if !changes.Empty() {
		h.notifyListeners(next)
	}

	h.logger.Info().
		Str(xglog.FieldEvent, "descriptor.reload_success").
		Strs("changed", changes.ChangedFields).
		Msg("descriptor reloaded")
	return nil
}

// StartWatcher watches the descriptor file and reloads on change. The
// parent directory is watched so atomic replace-by-rename is seen too.
func (h *Holder) StartWatcher(ctx context.Context) error {
	h.watchMu.Lock()
	defer h.watchMu.Unlock()
	if h.watcher != nil {
		return fmt.Errorf("watcher already started")
	}

	target, err := filepath.Abs(h.loader.Path())
	if err != nil {
		return fmt.Errorf("resolve descriptor path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch descriptor dir: %w", err)
	}

	h.watcher = watcher
	h.done = make(chan struct{})

	h.logger.Info().
		Str(xglog.FieldEvent, "descriptor.watcher_started").
		Str(xglog.FieldPath, target).
		Msg("watching descriptor for changes")

	go h.watchLoop(ctx, watcher, target, h.done)
	return nil
}

func (h *Holder) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, target string, done chan struct{}) {
	defer close(done)

	// Reloads run on this goroutine, so Stop waits for an in-flight one.
	var (
		debounce *time.Timer
		fire     <-chan time.Time
	)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str(xglog.FieldEvent, "descriptor.watcher_stopped").Msg("descriptor watcher stopped")
			_ = watcher.Close()
			return

		case <-fire:
			fire = nil
			// Reload logs its own failure.
			_ = h.Reload(ctx)

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			h.logger.Debug().
				Str(xglog.FieldEvent, "descriptor.file_changed").
				Str("op", event.Op.String()).
				Msg("descriptor file changed")

			if debounce == nil {
				debounce = time.NewTimer(reloadDebounce)
			} else {
				debounce.Reset(reloadDebounce)
			}
			fire = debounce.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().
				Err(err).
				Str(xglog.FieldEvent, "descriptor.watcher_error").
				Msg("descriptor watcher error")
		}
	}
}

// Stop stops the watcher (if running) and waits for its loop, including
// a reload in progress, to exit.
func (h *Holder) Stop() {
	h.watchMu.Lock()
	watcher, done := h.watcher, h.done
	h.watcher, h.done = nil, nil
	h.watchMu.Unlock()

	if watcher == nil {
		return
	}
	_ = watcher.Close()
	<-done
}

// RegisterListener registers a channel that receives the new descriptor
// after every reload that changed something. Sends never block; a full
// channel misses the update. The caller owns the channel.
func (h *Holder) RegisterListener(ch chan<- Descriptor) {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()
	h.reloadListeners = append(h.reloadListeners, ch)
}

func (h *Holder) notifyListeners(next Descriptor) {
	h.reloadMu.RLock()
	defer h.reloadMu.RUnlock()

	for _, ch := range h.reloadListeners {
		select {
		case ch <- next:
		default:
			h.logger.Warn().
				Str(xglog.FieldEvent, "descriptor.listener_skip").
				Msg("skipped notifying listener (channel full)")
		}
	}
}

func (h *Holder) logChanges(s ChangeSummary) {
	for _, p := range s.ContentAdded {
		h.logger.Info().Str(xglog.FieldPattern, p).Msg("descriptor changed: content pattern added")
	}
	for _, p := range s.ContentRemoved {
		h.logger.Info().Str(xglog.FieldPattern, p).Msg("descriptor changed: content pattern removed")
	}
	if len(s.SafelistAdded) > 0 || len(s.SafelistRemoved) > 0 {
		h.logger.Info().
			Strs("added", s.SafelistAdded).
			Strs("removed", s.SafelistRemoved).
			Msg("descriptor changed: safelist")
	}
}
