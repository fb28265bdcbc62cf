package cache

// ScopedKeyer wraps a Keyer with a prefix so that several servers can share
// one backend. mapsvg serve scopes its keys with MAPSVG_CACHE_PREFIX:
//
//	keys := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// TopologyKey generates a prefixed topology key.
func (k *ScopedKeyer) TopologyKey(source string) string {
	return k.prefix + k.inner.TopologyKey(source)
}

// DataKey generates a prefixed region data key.
func (k *ScopedKeyer) DataKey(source, dataType string) string {
	return k.prefix + k.inner.DataKey(source, dataType)
}

// RenderKey generates a prefixed render key.
func (k *ScopedKeyer) RenderKey(optionsHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(optionsHash, opts)
}
