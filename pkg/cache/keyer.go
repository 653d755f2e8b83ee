package cache

import (
	"fmt"
	"strconv"
	"strings"
)

// Keyer generates cache keys for enumeration results.
type Keyer interface {
	// TreesKey returns the key holding every tree of the given size over n
	// labels.
	TreesKey(size, n int) string

	// ParseTreesKey inverts TreesKey. ok is false for keys this keyer did
	// not produce.
	ParseTreesKey(key string) (size, n int, ok bool)

	// Prefix is the common prefix of all keys produced by this keyer.
	Prefix() string
}

// DefaultKeyer produces keys of the form "<size>:<n>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the unprefixed keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) TreesKey(size, n int) string {
	return fmt.Sprintf("%d:%d", size, n)
}

func (DefaultKeyer) ParseTreesKey(key string) (size, n int, ok bool) {
	return ParseTreesKey(key)
}

func (DefaultKeyer) Prefix() string { return "" }

// ParseTreesKey parses a "<size>:<n>" key.
func ParseTreesKey(key string) (size, n int, ok bool) {
	s, l, found := strings.Cut(key, ":")
	if !found {
		return 0, 0, false
	}
	size, err := strconv.Atoi(s)
	if err != nil || size < 1 {
		return 0, 0, false
	}
	n, err = strconv.Atoi(l)
	if err != nil || n < 1 {
		return 0, 0, false
	}
	return size, n, true
}
