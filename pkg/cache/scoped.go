package cache

// ScopedKeyer wraps a Keyer with a prefix so tenants sharing one backend
// get separate namespaces.
//
// Example usage:
//
//	// Keys for a custom uploaded dataset
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "user:abc123:")
//
//	// Shared keys for the builtin dataset
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SnapshotKey generates a prefixed snapshot key.
func (k *ScopedKeyer) SnapshotKey(datasetHash string, opts SnapshotKeyOpts) string {
	return k.prefix + k.inner.SnapshotKey(datasetHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(snapshotHash, opts)
}
