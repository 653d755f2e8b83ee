package tree

import (
	"fmt"
	"testing"
)

func TestEmbeds(t *testing.T) {
	tests := []struct {
		name   string
		a, b   string
		embeds bool
	}{
		{name: "label mismatch", a: "1", b: "2", embeds: false},
		{name: "leaf into root", a: "1", b: "1(2)", embeds: true},
		{name: "leaf into descendant", a: "2", b: "1(3(2))", embeds: true},
		{name: "subsequence of children", a: "1(2)", b: "1(3,2)", embeds: true},
		{name: "order violated", a: "1(2,3)", b: "1(3,2)", embeds: false},
		{name: "order kept", a: "1(2,3)", b: "1(2,1,3)", embeds: true},
		{name: "skip generation", a: "1(2)", b: "1(3(2))", embeds: true},
		{name: "skip two generations", a: "1(2)", b: "1(3(1(2)))", embeds: true},
		{name: "embed below root", a: "1(2)", b: "3(1(2))", embeds: true},
		{name: "pattern larger than target", a: "1(1,1)", b: "1(1)", embeds: false},
		{name: "children collapse into one target child", a: "1(2,3)", b: "1(4(2,3))", embeds: true},
		{name: "ancestor relation required", a: "1(2(3))", b: "1(2,3)", embeds: false},
		{name: "no root label anywhere", a: "2(1)", b: "1(1,1)", embeds: false},
		{name: "repeated labels", a: "1(1,1)", b: "1(1(1),1)", embeds: true},
		// The forest matcher never splits a pattern forest between a
		// skipped generation and a later sibling.
		{name: "split across skipped generation", a: "1(2,3)", b: "1(5(2),3)", embeds: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := MustParse(tt.a), MustParse(tt.b)
			if got := Embeds(a, b); got != tt.embeds {
				t.Errorf("Embeds(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.embeds)
			}
		})
	}
}

func TestRootEmbeds(t *testing.T) {
	if RootEmbeds(MustParse("1(2)"), MustParse("3(1(2))")) {
		t.Error("RootEmbeds must not descend below the target root")
	}
	if !RootEmbeds(Leaf(1), MustParse("1(2,3)")) {
		t.Error("leaf pattern should root-embed on matching label")
	}
}

func TestEmbedsReflexive(t *testing.T) {
	for _, s := range []string{"1", "2(1)", "1(2,3)", "1(2(3,1),2(2))", "3(3(3(3)),1)"} {
		tr := MustParse(s)
		if !Embeds(tr, tr) {
			t.Errorf("Embeds(%s, %s) should be true", s, s)
		}
	}
}

func TestMatchChildrenEmptyPattern(t *testing.T) {
	if !matchChildren(nil, nil) {
		t.Error("empty pattern forest should always match")
	}
	if !matchChildren(nil, []*Tree{Leaf(1)}) {
		t.Error("empty pattern forest should match any target forest")
	}
	if matchChildren([]*Tree{Leaf(1)}, nil) {
		t.Error("non-empty pattern cannot match empty target")
	}
}

func TestEmbedsSingleLabelAlwaysTrueFromLeaf(t *testing.T) {
	leaf := Leaf(1)
	for _, s := range []string{"1", "1(1)", "1(1,1)", "1(1(1))"} {
		if !Embeds(leaf, MustParse(s)) {
			t.Errorf("leaf 1 should embed into %s", s)
		}
	}
}

func ExampleEmbeds() {
	pattern := MustParse("1(2)")
	fmt.Println(Embeds(pattern, MustParse("1(3,2)")))
	fmt.Println(Embeds(pattern, MustParse("1(3(2))")))
	fmt.Println(Embeds(MustParse("1(2,3)"), MustParse("1(3,2)")))
	// Output:
	// true
	// true
	// false
}
