package tree

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/matzehuels/treeseq/pkg/errors"
)

// Parse decodes the bracket notation produced by [Tree.Key].
// Whitespace between tokens is ignored.
//
//	1           a leaf labeled 1
//	2(1,1)      a root labeled 2 with two leaf children labeled 1
//	1(2(3),1)   nested children
func Parse(s string) (*Tree, error) {
	p := &parser{src: s}
	t, err := p.tree()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos])
	}
	return t, nil
}

// MustParse is like [Parse] but panics on malformed input. Intended for tests
// and package-level fixtures.
func MustParse(s string) *Tree {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseList parses each string with [Parse].
func ParseList(keys []string) ([]*Tree, error) {
	trees := make([]*Tree, 0, len(keys))
	for _, k := range keys {
		t, err := Parse(k)
		if err != nil {
			return nil, err
		}
		trees = append(trees, t)
	}
	return trees, nil
}

// Keys returns the bracket encoding of every tree, in order.
func Keys(trees []*Tree) []string {
	keys := make([]string, len(trees))
	for i, t := range trees {
		keys[i] = t.Key()
	}
	return keys
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidInput, "parse tree at offset %d: "+format, append([]any{p.pos}, args...)...)
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && strings.ContainsRune(" \t\r\n", rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *parser) tree() (*Tree, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if start == p.pos {
		if p.pos == len(p.src) {
			return nil, p.errorf("expected label, got end of input")
		}
		return nil, p.errorf("expected label, got %q", p.src[p.pos])
	}
	label, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil || label < 1 {
		return nil, p.errorf("invalid label %q", p.src[start:p.pos])
	}

	p.skipSpace()
	if p.pos == len(p.src) || p.src[p.pos] != '(' {
		return Leaf(label), nil
	}
	p.pos++

	var children []*Tree
	for {
		child, err := p.tree()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
		p.skipSpace()
		if p.pos == len(p.src) {
			return nil, p.errorf("unterminated child list")
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return New(label, children...), nil
		default:
			return nil, p.errorf("unexpected %q in child list", p.src[p.pos])
		}
	}
}

// jsonTree is the wire form of a Tree.
type jsonTree struct {
	Label    int         `json:"label"`
	Children []*jsonTree `json:"children,omitempty"`
}

func toJSON(t *Tree) *jsonTree {
	jt := &jsonTree{Label: t.label}
	if len(t.children) > 0 {
		jt.Children = make([]*jsonTree, len(t.children))
		for i, c := range t.children {
			jt.Children[i] = toJSON(c)
		}
	}
	return jt
}

func fromJSON(jt *jsonTree) (*Tree, error) {
	if jt == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "null tree")
	}
	if jt.Label < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid label %d", jt.Label)
	}
	children := make([]*Tree, len(jt.Children))
	for i, c := range jt.Children {
		child, err := fromJSON(c)
		if err != nil {
			return nil, err
		}
		children[i] = child
	}
	return New(jt.Label, children...), nil
}

// MarshalJSON encodes t as {"label":1,"children":[...]}.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(toJSON(t))
}

// UnmarshalJSON decodes the form written by [Tree.MarshalJSON].
func (t *Tree) UnmarshalJSON(data []byte) error {
	var jt jsonTree
	if err := json.Unmarshal(data, &jt); err != nil {
		return err
	}
	decoded, err := fromJSON(&jt)
	if err != nil {
		return err
	}
	*t = *decoded
	return nil
}

// MarshalList encodes trees as a JSON array, preserving order.
func MarshalList(trees []*Tree) ([]byte, error) {
	wire := make([]*jsonTree, len(trees))
	for i, t := range trees {
		wire[i] = toJSON(t)
	}
	return json.Marshal(wire)
}

// UnmarshalList decodes an array written by [MarshalList].
func UnmarshalList(data []byte) ([]*Tree, error) {
	var wire []*jsonTree
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	trees := make([]*Tree, len(wire))
	for i, jt := range wire {
		t, err := fromJSON(jt)
		if err != nil {
			return nil, err
		}
		trees[i] = t
	}
	return trees, nil
}
