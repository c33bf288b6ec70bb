package cache

// ScopedKeyer prefixes every key of an inner Keyer. The CLI's --workspace
// flag uses it so several capability maps can share one Redis instance:
//
//	keyer := NewScopedKeyer(nil, "workspace:airport:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) LayoutKey(hierarchyHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(hierarchyHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
