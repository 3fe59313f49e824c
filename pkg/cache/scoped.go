package cache

// ScopedKeyer prefixes every key of an inner Keyer. The server scopes keys
// per definition file so that reloading one radar never serves another's
// artifacts:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "radar:team-a:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SourceKey returns the prefixed source key.
func (k *ScopedKeyer) SourceKey(namespace, key string) string {
	return k.prefix + k.inner.SourceKey(namespace, key)
}

// LayoutKey returns the prefixed layout key.
func (k *ScopedKeyer) LayoutKey(definitionHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(definitionHash, opts)
}

// ArtifactKey returns the prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
