package pipeline

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deeptime/pkg/cache"
	"github.com/matzehuels/deeptime/pkg/dataset"
	"github.com/matzehuels/deeptime/pkg/errors"
	"github.com/matzehuels/deeptime/pkg/layout"
	"github.com/matzehuels/deeptime/pkg/render"
	"github.com/matzehuels/deeptime/pkg/view"
)

// Result contains the outputs of a pipeline run.
type Result struct {
	// Dataset is the prepared dataset the run used.
	Dataset *dataset.Prepared

	// DatasetHash is the content hash of the dataset.
	DatasetHash string

	// Snapshot is the frame geometry (nil for the tree visualization).
	Snapshot *render.Snapshot

	// SnapshotHash is the content hash of the snapshot.
	SnapshotHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Entities   int
	LoadTime   time.Duration
	PassTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	DatasetHit  bool // dataset was already prepared by this runner
	SnapshotHit bool // snapshot came from the cache
	RenderHit   bool // all artifacts came from the cache
}

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use it to avoid duplicating caching logic.
//
// Multiple goroutines can safely use the same Runner with different
// options. Prepared datasets and their orchestrators are kept for the
// Runner's lifetime.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	Engine *layout.Engine

	data datasets

	mu            sync.Mutex
	orchestrators map[string]*render.Orchestrator
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:         c,
		Keyer:         keyer,
		Logger:        logger,
		Engine:        layout.New(),
		orchestrators: make(map[string]*render.Orchestrator),
	}
}

// Execute runs the complete load → pass → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Load
	loadStart := time.Now()
	l, dataHit, err := r.data.load(ctx, opts.Dataset, opts.Refresh)
	if err != nil {
		return nil, err
	}
	result.Dataset = l.data
	result.DatasetHash = l.hash
	result.Stats.LoadTime = time.Since(loadStart)
	result.CacheInfo.DatasetHit = dataHit

	opts.Logger.Debug("loaded dataset",
		"source", datasetName(opts.Dataset),
		"intervals", len(l.data.Intervals()),
		"species", len(l.data.Species),
		"events", len(l.data.Events),
		"duration", result.Stats.LoadTime)

	if opts.VizType == VizTree {
		renderStart := time.Now()
		artifacts, hit, err := r.renderTreeCached(ctx, l, opts)
		if err != nil {
			return nil, err
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)
		result.CacheInfo.RenderHit = hit
		return result, nil
	}

	// Stage 2: Pass
	passStart := time.Now()
	snap, snapHash, snapHit, err := r.SnapshotWithCacheInfo(ctx, l.data, l.hash, opts)
	if err != nil {
		return nil, err
	}
	result.Snapshot = snap
	result.SnapshotHash = snapHash
	result.Stats.PassTime = time.Since(passStart)
	result.Stats.Entities = snap.EntityCount()
	result.CacheInfo.SnapshotHit = snapHit

	opts.Logger.Info("computed snapshot",
		"k", snap.Transform.K,
		"entities", result.Stats.Entities,
		"context", snap.Nav.Context.Name,
		"duration", result.Stats.PassTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, snap, snapHash, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load returns the prepared dataset at path (builtin when empty) and its
// hash.
func (r *Runner) Load(ctx context.Context, path string) (*dataset.Prepared, string, error) {
	l, _, err := r.data.load(ctx, path, false)
	return l.data, l.hash, err
}

// Orchestrator returns the shared orchestrator for a prepared dataset.
func (r *Runner) Orchestrator(data *dataset.Prepared, hash string) *render.Orchestrator {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orchestrators[hash]; ok {
		return o
	}
	o := render.New(data, render.WithLayoutEngine(r.Engine))
	r.orchestrators[hash] = o
	return o
}

// ResolveTransform returns the transform the options ask for: the framing of
// the requested range, or the explicit X and K. A degenerate range keeps the
// explicit transform.
func (r *Runner) ResolveTransform(o *render.Orchestrator, opts Options) (view.Transform, error) {
	t := opts.Transform()
	if !opts.HasRange() {
		return t, nil
	}
	nav, err := o.Navigator(render.Viewport{Width: opts.Width, Height: opts.Height})
	if err != nil {
		return view.Transform{}, err
	}
	nav.Set(t)
	nav.ZoomTo(opts.Start, opts.End)
	return nav.Transform(), nil
}

// SnapshotWithCacheInfo runs a layout pass with caching and returns the
// snapshot, its hash and whether it came from the cache.
func (r *Runner) SnapshotWithCacheInfo(ctx context.Context, data *dataset.Prepared, dataHash string, opts Options) (*render.Snapshot, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, "", false, err
	}
	o := r.Orchestrator(data, dataHash)
	t, err := r.ResolveTransform(o, opts)
	if err != nil {
		return nil, "", false, err
	}
	if err := view.Validate(t); err != nil {
		return nil, "", false, err
	}

	cacheKey := r.Keyer.SnapshotKey(dataHash, opts.SnapshotKeyOpts(t))
	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if snap, err := unmarshalSnapshot(cached); err == nil {
				return snap, cache.Hash(cached), true, nil
			}
		}
	}

	vp := render.Viewport{Width: opts.Width, Height: opts.Height}
	snap, err := o.Pass(ctx, vp, t)
	if err != nil {
		return nil, "", false, err
	}
	encoded, err := json.Marshal(snap)
	if err != nil {
		return nil, "", false, errors.Wrap(errors.ErrCodeInternal, err, "serialize snapshot")
	}
	if err := r.Cache.Set(ctx, cacheKey, encoded, cache.TTLSnapshot); err != nil {
		opts.Logger.Warn("snapshot not cached", "err", err)
	}
	return snap, cache.Hash(encoded), false, nil
}

// Snapshot is a convenience wrapper that discards the hash and cache info.
func (r *Runner) Snapshot(ctx context.Context, opts Options) (*render.Snapshot, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	l, _, err := r.data.load(ctx, opts.Dataset, opts.Refresh)
	if err != nil {
		return nil, err
	}
	snap, _, _, err := r.SnapshotWithCacheInfo(ctx, l.data, l.hash, opts)
	return snap, err
}

// RenderWithCacheInfo encodes a snapshot with caching and reports whether
// every artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, snap *render.Snapshot, snapHash string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := !opts.Refresh
	for _, format := range opts.Formats {
		if !allCached {
			break
		}
		key := r.Keyer.ArtifactKey(snapHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
		}
	}
	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered, err := RenderSnapshot(ctx, snap, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(snapHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

func (r *Runner) renderTreeCached(ctx context.Context, l loaded, opts Options) (map[string][]byte, bool, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := !opts.Refresh
	for _, format := range opts.Formats {
		if !allCached {
			break
		}
		key := r.Keyer.ArtifactKey(l.hash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
		}
	}
	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered, err := RenderTree(ctx, l.data, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		_ = r.Cache.Set(ctx, r.Keyer.ArtifactKey(l.hash, opts.ArtifactKeyOpts(format)), data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func unmarshalSnapshot(data []byte) (*render.Snapshot, error) {
	var snap render.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	snap.Metrics.Class = layout.Classify(snap.Metrics.Width)
	return &snap, nil
}

func datasetName(path string) string {
	if path == "" {
		return "builtin"
	}
	return path
}
