package cache

import "strings"

// DefaultNamespace is the prefix the CLI uses for enumeration results, so a
// shared Redis or Mongo instance can hold other data alongside the trees.
const DefaultNamespace = "trees:"

// ScopedKeyer wraps a Keyer with a namespace prefix.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "trees:")
//	keyer.TreesKey(4, 2) // "trees:4:2"
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

// TreesKey generates a prefixed key for an enumeration result.
func (k *ScopedKeyer) TreesKey(size, n int) string {
	return k.prefix + k.inner.TreesKey(size, n)
}

// ParseTreesKey strips the prefix and delegates to the inner keyer.
func (k *ScopedKeyer) ParseTreesKey(key string) (size, n int, ok bool) {
	rest, found := strings.CutPrefix(key, k.prefix)
	if !found {
		return 0, 0, false
	}
	return k.inner.ParseTreesKey(rest)
}

// Prefix returns the namespace followed by the inner keyer's prefix.
func (k *ScopedKeyer) Prefix() string {
	return k.prefix + k.inner.Prefix()
}
