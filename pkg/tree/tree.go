package tree

import (
	"encoding/binary"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/matzehuels/treeseq/pkg/errors"
)

// Tree is an immutable labeled rooted tree with ordered children.
//
// Trees are built bottom-up with [Leaf] and [New] and are never modified
// afterwards, so a single *Tree may safely appear as a child of many parents
// and be shared across goroutines. Size and structural hash are computed once
// at construction.
//
// The zero value is not usable.
type Tree struct {
	label    int
	children []*Tree
	size     int
	hash     uint64
}

// Leaf returns a single-node tree.
func Leaf(label int) *Tree {
	return New(label)
}

// New returns a tree with the given root label and children, in order.
// The children slice is copied; nil children are not allowed.
func New(label int, children ...*Tree) *Tree {
	t := &Tree{label: label, size: 1}
	if len(children) > 0 {
		t.children = slices.Clone(children)
	}
	for _, c := range t.children {
		t.size += c.size
	}
	t.hash = structuralHash(label, t.children)
	return t
}

// structuralHash mixes the label, the arity and the ordered child hashes.
// Arity is included so that 1(2(3)) and 1(2,3) cannot share a digest by
// concatenation alone.
func structuralHash(label int, children []*Tree) uint64 {
	buf := make([]byte, 0, 16+8*len(children))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(label))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(children)))
	for _, c := range children {
		buf = binary.LittleEndian.AppendUint64(buf, c.hash)
	}
	return xxhash.Sum64(buf)
}

// Label returns the root label.
func (t *Tree) Label() int { return t.label }

// Size returns the number of nodes in the tree.
func (t *Tree) Size() int { return t.size }

// Hash returns the structural hash. Structurally equal trees have equal hashes.
func (t *Tree) Hash() uint64 { return t.hash }

// IsLeaf reports whether the root has no children.
func (t *Tree) IsLeaf() bool { return len(t.children) == 0 }

// NumChildren returns the number of direct children of the root.
func (t *Tree) NumChildren() int { return len(t.children) }

// Child returns the i-th child of the root. It panics if i is out of range.
func (t *Tree) Child(i int) *Tree { return t.children[i] }

// Children returns a copy of the root's child list.
func (t *Tree) Children() []*Tree { return slices.Clone(t.children) }

// Depth returns the number of nodes on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	d := 0
	for _, c := range t.children {
		d = max(d, c.Depth())
	}
	return d + 1
}

// MaxLabel returns the largest label appearing anywhere in the tree.
func (t *Tree) MaxLabel() int {
	m := t.label
	for _, c := range t.children {
		m = max(m, c.MaxLabel())
	}
	return m
}

// Equal reports whether t and u are structurally identical: same labels in
// the same shape with children in the same order.
func (t *Tree) Equal(u *Tree) bool {
	if t == u {
		return true
	}
	if t == nil || u == nil {
		return false
	}
	if t.hash != u.hash || t.size != u.size || t.label != u.label || len(t.children) != len(u.children) {
		return false
	}
	for i := range t.children {
		if !t.children[i].Equal(u.children[i]) {
			return false
		}
	}
	return true
}

// Validate checks that every label lies in 1..n.
func (t *Tree) Validate(n int) error {
	if t.label < 1 || t.label > n {
		return errors.New(errors.ErrCodeInvalidInput, "label %d outside 1..%d", t.label, n)
	}
	for _, c := range t.children {
		if err := c.Validate(n); err != nil {
			return err
		}
	}
	return nil
}

// Key returns the canonical bracket encoding of t, e.g. "1(2,3(1))".
// Two trees are equal exactly when their keys are equal.
func (t *Tree) Key() string {
	var b strings.Builder
	t.writeKey(&b)
	return b.String()
}

// String is an alias for [Tree.Key].
func (t *Tree) String() string { return t.Key() }

func (t *Tree) writeKey(b *strings.Builder) {
	b.WriteString(strconv.Itoa(t.label))
	if len(t.children) == 0 {
		return
	}
	b.WriteByte('(')
	for i, c := range t.children {
		if i > 0 {
			b.WriteByte(',')
		}
		c.writeKey(b)
	}
	b.WriteByte(')')
}

// Set is an insertion-ordered set of structurally distinct trees.
// The zero value is not usable; use [NewSet].
type Set struct {
	buckets map[uint64][]*Tree
	order   []*Tree
}

// NewSet returns an empty set with room for capacity trees.
func NewSet(capacity int) *Set {
	return &Set{
		buckets: make(map[uint64][]*Tree, capacity),
		order:   make([]*Tree, 0, capacity),
	}
}

// Add inserts t unless a structurally equal tree is already present.
// It reports whether t was inserted.
func (s *Set) Add(t *Tree) bool {
	bucket := s.buckets[t.hash]
	for _, u := range bucket {
		if u.Equal(t) {
			return false
		}
	}
	s.buckets[t.hash] = append(bucket, t)
	s.order = append(s.order, t)
	return true
}

// Contains reports whether a tree structurally equal to t is present.
func (s *Set) Contains(t *Tree) bool {
	for _, u := range s.buckets[t.hash] {
		if u.Equal(t) {
			return true
		}
	}
	return false
}

// Len returns the number of trees in the set.
func (s *Set) Len() int { return len(s.order) }

// Trees returns the retained trees in insertion order.
func (s *Set) Trees() []*Tree { return slices.Clone(s.order) }
