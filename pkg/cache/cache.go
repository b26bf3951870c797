// Package cache stores rendered snapshots and artifacts keyed by their inputs.
//
// A render is a pure function of the prepared dataset, the viewport and the
// view transform, so a content hash of those inputs identifies its output.
// The pipeline consults the cache before running a layout pass and again
// before encoding each artifact.
//
// # Backends
//
//   - [FileCache]: sharded JSON files on disk, used by the CLI
//   - [NullCache]: stores nothing, used when caching is disabled
//
// # Keys
//
// A [Keyer] derives keys from inputs. [ScopedKeyer] prefixes every key so
// several tenants can share one backend.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/deeptime/pkg/observability"
)

// Default lifetimes per entry kind.
const (
	TTLSnapshot = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the entry and whether it was found. Expired entries are
	// misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero keeps the entry forever.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// SnapshotKeyOpts are the inputs of a layout pass besides the dataset.
type SnapshotKeyOpts struct {
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
	X      float64 `json:"x"`
	K      float64 `json:"k"`
}

// ArtifactKeyOpts are the encoding inputs of a rendered artifact.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Theme      string  `json:"theme,omitempty"`
	Title      string  `json:"title,omitempty"`
	Scale      float64 `json:"scale,omitempty"`
	Rasterizer string  `json:"raster,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// SnapshotKey identifies the snapshot of a dataset at a viewport and
	// transform.
	SnapshotKey(datasetHash string, opts SnapshotKeyOpts) string

	// ArtifactKey identifies an encoded artifact of a snapshot.
	ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SnapshotKey returns "snapshot:<hash>". Transform fields are keyed at full
// precision; a pass at k=1.004 and one at k=1.001 lay out differently.
func (DefaultKeyer) SnapshotKey(datasetHash string, opts SnapshotKeyOpts) string {
	return hashKey("snapshot", datasetHash, opts)
}

// ArtifactKey returns "artifact:<format>:<hash>".
func (DefaultKeyer) ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+opts.Format, snapshotHash, opts)
}

// NullCache misses every lookup and drops every write. The pipeline uses it
// when caching is disabled.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	observability.Cache().OnCacheMiss(ctx, key)
	return nil, false, nil
}

func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }
