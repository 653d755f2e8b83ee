package tree

// Embeds reports whether pattern a topologically embeds into target b.
//
// An embedding maps the nodes of a injectively onto nodes of b so that labels
// are preserved, ancestors map to ancestors and left-to-right sibling order is
// kept. Generations of b may be skipped. This is the relation used to define
// bad sequences for TREE(n).
//
// Embeds tries every node of b as the image of a's root.
func Embeds(a, b *Tree) bool {
	if a.size > b.size {
		return false
	}
	if RootEmbeds(a, b) {
		return true
	}
	for _, c := range b.children {
		if Embeds(a, c) {
			return true
		}
	}
	return false
}

// RootEmbeds reports whether a embeds into b with a's root mapped onto b's root.
func RootEmbeds(a, b *Tree) bool {
	if a.label != b.label {
		return false
	}
	if len(a.children) == 0 {
		return true
	}
	if a.size > b.size {
		return false
	}
	return matchChildren(a.children, b.children)
}

// matchChildren embeds the ordered forest pkids into the ordered forest tkids.
//
// At every target child two moves are tried: map the first pattern child onto
// it and continue with the remaining pattern children to its right, or descend
// into it and embed the whole remaining pattern forest among its children.
func matchChildren(pkids, tkids []*Tree) bool {
	if len(pkids) == 0 {
		return true
	}
	first := pkids[0]
	for i, tc := range tkids {
		if RootEmbeds(first, tc) && matchChildren(pkids[1:], tkids[i+1:]) {
			return true
		}
		if matchChildren(pkids, tc.children) {
			return true
		}
	}
	return false
}
