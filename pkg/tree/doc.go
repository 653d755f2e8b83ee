// Package tree provides immutable labeled rooted trees and the topological
// embedding relation between them.
//
// # Trees
//
// A [Tree] is a node carrying a positive integer label and an ordered list of
// children. Trees are values: once built with [Leaf] or [New] they never
// change, which lets the enumerator share subtrees freely between the trees
// it produces.
//
// Structural identity is computed at construction. [Tree.Hash] combines the
// label with the ordered child hashes and [Tree.Equal] confirms a match, so a
// [Set] can deduplicate millions of trees without building string keys.
//
// # Encodings
//
// [Tree.Key] renders the bracket notation used throughout the CLI:
//
//	1(2,3(1))
//
// and [Parse] reads it back. For storage, [MarshalList] and [UnmarshalList]
// encode tree lists as JSON:
//
//	[{"label":1,"children":[{"label":2}]}]
//
// # Embedding
//
// [Embeds] decides whether one tree topologically embeds into another:
// labels are preserved, ancestors stay ancestors and siblings keep their
// left-to-right order, while intermediate generations of the target may be
// skipped. A sequence in which no earlier tree embeds into a later one is
// called bad; the search in package search looks for long bad sequences.
//
//	a := tree.MustParse("1(2)")
//	b := tree.MustParse("1(3,2)")
//	tree.Embeds(a, b) // true
package tree
