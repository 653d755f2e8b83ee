package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/treeseq/pkg/tree"
)

func TestToDOT(t *testing.T) {
	trees := []*tree.Tree{tree.MustParse("1(2,3)"), tree.MustParse("2")}
	dot := ToDOT(trees, Options{Title: "best = 2", Index: true})

	for _, want := range []string{
		"digraph G {",
		`label="best = 2";`,
		"subgraph cluster_0 {",
		`label="1: 1(2,3)";`,
		`t0_0 [label="1"];`,
		`t0_1 [label="2"];`,
		`t0_2 [label="3"];`,
		"t0_0 -> t0_1;",
		"t0_0 -> t0_2;",
		"subgraph cluster_1 {",
		`label="2: 2";`,
		"t0_0 -> t1_0 [style=invis];",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
}

func TestToDOTPreorderIDs(t *testing.T) {
	dot := ToDOT([]*tree.Tree{tree.MustParse("1(2(3),4)")}, Options{})
	for _, want := range []string{"t0_0 -> t0_1;", "t0_1 -> t0_2;", "t0_0 -> t0_3;", `t0_3 [label="4"];`} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "rank=same") {
		t.Error("single tree should not emit ordering edges")
	}
}

func TestRenderDOTFormat(t *testing.T) {
	trees := []*tree.Tree{tree.Leaf(1)}
	out, err := Render(trees, FormatDOT, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != ToDOT(trees, Options{}) {
		t.Error("dot format should return the DOT source")
	}
	if _, err := Render(trees, "gif", Options{}); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(ToDOT([]*tree.Tree{tree.MustParse("1(2)")}, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG error: %v", err)
	}
	if !bytes.Contains(svg, []byte(`viewBox="0 0 `)) {
		t.Errorf("viewBox not normalized: %s", svg[:min(200, len(svg))])
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="62pt" height="116pt" viewBox="0.00 0.00 62.00 116.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 62.00 116.00" width="62" height="116"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox =\n%s\nwant\n%s", got, want)
	}
	if out := normalizeViewBox([]byte("<svg></svg>")); string(out) != "<svg></svg>" {
		t.Error("svg without viewBox should be unchanged")
	}
}
