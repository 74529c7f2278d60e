package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one backend, for example a Redis instance used by staging and production.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
//	keyer.ArtifactKey(110, 2, ArtifactKeyOpts{Format: "svg"}) // "staging:artifact:2:110:..."
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

// AnalysisKey generates a prefixed key for analyses.
func (k *ScopedKeyer) AnalysisKey(rule, states int, opts AnalysisKeyOpts) string {
	return k.prefix + k.inner.AnalysisKey(rule, states, opts)
}

// ArtifactKey generates a prefixed key for rendered artifacts.
func (k *ScopedKeyer) ArtifactKey(rule, states int, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(rule, states, opts)
}
