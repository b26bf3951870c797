package cli

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deeptime/pkg/observability"
)

// logHooks reports pipeline, cache and session events at debug level and
// counts cache traffic for the end-of-run summary.
type logHooks struct {
	logger *log.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

func (h *logHooks) OnPassStart(_ context.Context, width, k float64) {
	h.logger.Debug("pass start", "width", width, "k", k)
}

func (h *logHooks) OnPassComplete(_ context.Context, entities int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("pass failed", "err", err)
		return
	}
	h.logger.Debug("pass done", "entities", entities, "duration", d.Round(time.Microsecond))
}

func (h *logHooks) OnArtifactStart(_ context.Context, format string) {
	h.logger.Debug("artifact start", "format", format)
}

func (h *logHooks) OnArtifactComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("artifact failed", "format", format, "err", err)
		return
	}
	h.logger.Debug("artifact done", "format", format, "bytes", size, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.hits.Add(1)
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.misses.Add(1)
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnPublish(_ context.Context, backend, id string, err error) {
	if err != nil {
		h.logger.Debug("view publish failed", "backend", backend, "id", id, "err", err)
		return
	}
	h.logger.Debug("view published", "backend", backend, "id", id)
}

func (h *logHooks) OnCoalesced(_ context.Context, dropped int) {
	h.logger.Debug("view updates coalesced", "dropped", dropped)
}

// installHooks registers h for render, cache and session events.
func installHooks(h *logHooks) {
	observability.SetRenderHooks(h)
	observability.SetCacheHooks(h)
	observability.SetSessionHooks(h)
}
