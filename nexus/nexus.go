// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package nexus implements a reader
// for BEAST tree files
// (i.e., posterior tree samples
// stored as tree statements
// in a NEXUS file).
//
// Only the parts of the NEXUS format
// produced by BEAST are supported:
// an optional TRANSLATE block
// that maps numeric taxon IDs to taxon labels,
// and one 'tree <name> = <newick>;' statement per sample,
// in which the tree name carries the sampled state
// as 'STATE_<number>'.
// Branch annotations in square brackets
// (such as '[&rate=0.123]')
// are ignored.
package nexus

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// A Collection is an ordered set of trees
// read from a single tree file,
// with the translation table of the file,
// if any.
type Collection struct {
	trees     []*Tree
	translate map[string]string
}

// Trees returns the trees of the collection
// in reading order.
func (c *Collection) Trees() []*Tree {
	return c.trees
}

// Translate returns the taxon translation table of the file,
// or nil if the file has no TRANSLATE block.
func (c *Collection) Translate() map[string]string {
	return c.translate
}

// Burnin removes burn-in samples from the collection.
// First the initial tree samples are removed
// (i.e., a burn-in by tree count),
// and then only trees with a state
// greater than the states value are kept.
func (c *Collection) Burnin(trees int, states int64) {
	if trees > len(c.trees) {
		trees = len(c.trees)
	}
	kept := make([]*Tree, 0, len(c.trees)-trees)
	for _, t := range c.trees[trees:] {
		if states > 0 && t.state <= states {
			continue
		}
		kept = append(kept, t)
	}
	c.trees = kept
}

// A Tree is a single posterior tree sample.
// Nodes are identified by consecutive IDs,
// with the root at ID 0.
type Tree struct {
	name  string
	state int64
	nodes []node
}

type node struct {
	parent   int
	children []int
	taxon    string
	length   float64
}

// Name returns the name of the tree,
// in the form '<file>_tree_STATE<state>'.
func (t *Tree) Name() string {
	return t.name
}

// State returns the posterior state of the sample.
func (t *Tree) State() int64 {
	return t.state
}

// Root returns the ID of the root node.
func (t *Tree) Root() int {
	return 0
}

// Children returns the IDs of the children of a node.
func (t *Tree) Children(id int) []int {
	return t.nodes[id].children
}

// IsTerm returns true if a node is a terminal.
func (t *Tree) IsTerm(id int) bool {
	return len(t.nodes[id].children) == 0
}

// Taxon returns the raw taxon identifier of a terminal node,
// as it appears in the tree file.
func (t *Tree) Taxon(id int) string {
	return t.nodes[id].taxon
}

// Length returns the length of the branch
// between a node and its parent.
// The root has no branch and always returns 0.
func (t *Tree) Length(id int) float64 {
	return t.nodes[id].length
}

// Terms returns the raw taxon identifiers of the tree,
// in the order they appear in the tree statement.
func (t *Tree) Terms() []string {
	var terms []string
	for _, n := range t.nodes {
		if len(n.children) == 0 {
			terms = append(terms, n.taxon)
		}
	}
	return terms
}

// Open opens a tree file for reading.
// Files with the suffix ".gz"
// are expected to be compressed with gzip.
func Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(name, ".gz") {
		return f, nil
	}
	z, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return &gzFile{z: z, f: f}, nil
}

// A gzFile couples a gzip stream
// with its underlying file on close.
type gzFile struct {
	z *gzip.Reader
	f *os.File
}

func (g *gzFile) Read(p []byte) (int, error) { return g.z.Read(p) }

func (g *gzFile) Close() error {
	err := g.z.Close()
	if e := g.f.Close(); e != nil && err == nil {
		err = e
	}
	return err
}

// Read reads the trees from a BEAST tree file.
// The name argument is the file name,
// used to name the trees:
// a file 'hiv.trees' with a sample at state 10000
// produces the tree 'hiv_tree_STATE10000'.
func Read(r io.Reader, name string) (*Collection, error) {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, ".gz")
	base = strings.TrimSuffix(base, ".trees")

	c := &Collection{}
	br := bufio.NewReader(r)
	for ln := 1; ; ln++ {
		line, err := br.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("on file %q: line %d: %v", name, ln, err)
			}
			if strings.TrimSpace(line) == "" {
				break
			}
		}
		s := strings.TrimSpace(line)

		switch {
		case strings.EqualFold(s, "translate"):
			tr, lines, err := readTranslate(br)
			if err != nil {
				return nil, fmt.Errorf("on file %q: line %d: %v", name, ln+lines, err)
			}
			ln += lines
			c.translate = tr
		case len(s) >= 5 && strings.EqualFold(s[:5], "tree "):
			t, err := readTree(s, base)
			if err != nil {
				return nil, fmt.Errorf("on file %q: line %d: %v", name, ln, err)
			}
			c.trees = append(c.trees, t)
		case strings.EqualFold(s, "end;"):
			if len(c.trees) > 0 {
				return c, nil
			}
		}

		if err != nil {
			break
		}
	}
	return c, nil
}

// ReadTranslate reads the ID-label pairs of a TRANSLATE block.
// Each line is of the form "<ID> <label>," with the last pair
// closed by a semicolon.
func readTranslate(br *bufio.Reader) (map[string]string, int, error) {
	tr := make(map[string]string)
	for ln := 1; ; ln++ {
		line, err := br.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return nil, ln, err
			}
			if strings.TrimSpace(line) == "" {
				return nil, ln, fmt.Errorf("translate block without closing %q", ";")
			}
		}
		s := strings.TrimSpace(line)
		if s == ";" {
			return tr, ln, nil
		}

		end := strings.HasSuffix(s, ";")
		s = strings.TrimRight(s, ",;")
		f := strings.Fields(s)
		if len(f) < 2 {
			return nil, ln, fmt.Errorf("invalid translation %q", s)
		}
		id := f[0]
		label := strings.Trim(strings.Join(f[1:], " "), "'")
		tr[id] = label
		if end {
			return tr, ln, nil
		}
	}
}

// ReadTree parses a tree statement of the form
// "tree <header> = <newick>;".
func readTree(s, base string) (*Tree, error) {
	head, body, ok := strings.Cut(s, " = ")
	if !ok {
		head, body, ok = strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("tree statement without %q", "=")
		}
	}

	state := extractState(head)
	t := &Tree{
		name:  fmt.Sprintf("%s_tree_STATE%d", base, state),
		state: state,
	}

	p := &parser{s: stripAnnotations(strings.TrimSpace(body))}
	if err := p.tree(t); err != nil {
		return nil, fmt.Errorf("tree %q: %v", t.name, err)
	}
	return t, nil
}

// ExtractState retrieves the state number
// from a tree statement header
// such as "tree STATE_25000".
// Headers without a state return 0.
func extractState(head string) int64 {
	up := strings.ToUpper(head)
	i := strings.Index(up, "STATE_")
	if i < 0 {
		return 0
	}
	digits := head[i+len("STATE_"):]
	end := 0
	for end < len(digits) && digits[end] >= '0' && digits[end] <= '9' {
		end++
	}
	st, err := strconv.ParseInt(digits[:end], 10, 64)
	if err != nil {
		return 0
	}
	return st
}

// StripAnnotations removes BEAST branch annotations
// (square bracket comments such as "[&rate=0.123]")
// from a newick string.
func stripAnnotations(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	depth := 0
	for _, r := range s {
		switch {
		case r == '[':
			depth++
		case r == ']':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// A parser is a recursive descent parser
// for newick strings.
type parser struct {
	s   string
	pos int
}

// Tree parses a whole newick statement
// into the node table of t.
func (p *parser) tree(t *Tree) error {
	p.skipSpaces()
	if p.peek() != '(' {
		return fmt.Errorf("at position %d: expecting %q", p.pos+1, "(")
	}
	if err := p.subtree(t, -1); err != nil {
		return err
	}
	p.skipSpaces()
	if p.peek() != ';' {
		return fmt.Errorf("at position %d: expecting %q", p.pos+1, ";")
	}
	return nil
}

// Subtree parses a leaf or a parenthesized group,
// with its optional label and branch length,
// adding the nodes to t.
func (p *parser) subtree(t *Tree, parent int) error {
	p.skipSpaces()

	id := len(t.nodes)
	t.nodes = append(t.nodes, node{parent: parent})
	if parent >= 0 {
		t.nodes[parent].children = append(t.nodes[parent].children, id)
	}

	if p.peek() == '(' {
		p.pos++
		for {
			if err := p.subtree(t, id); err != nil {
				return err
			}
			p.skipSpaces()
			if p.peek() != ',' {
				break
			}
			p.pos++
		}
		if p.peek() != ')' {
			return fmt.Errorf("at position %d: expecting %q", p.pos+1, ")")
		}
		p.pos++

		// an internal node label, if any, is ignored
		p.label()
	} else {
		tax := p.label()
		if tax == "" {
			return fmt.Errorf("at position %d: expecting a taxon name", p.pos+1)
		}
		t.nodes[id].taxon = tax
	}

	p.skipSpaces()
	if p.peek() == ':' {
		p.pos++
		v, err := p.number()
		if err != nil {
			return err
		}
		t.nodes[id].length = v
	}
	return nil
}

// Label reads a node label,
// unquoting it if it is a quoted label.
func (p *parser) label() string {
	p.skipSpaces()
	if p.peek() == '\'' {
		p.pos++
		start := p.pos
		for p.pos < len(p.s) && p.s[p.pos] != '\'' {
			p.pos++
		}
		lb := p.s[start:p.pos]
		if p.pos < len(p.s) {
			p.pos++
		}
		return lb
	}

	start := p.pos
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if c == '(' || c == ')' || c == ',' || c == ':' || c == ';' || c == ' ' || c == '\t' {
			break
		}
		p.pos++
	}
	return p.s[start:p.pos]
}

// Number reads a branch length.
func (p *parser) number() (float64, error) {
	p.skipSpaces()
	start := p.pos
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if (c < '0' || c > '9') && c != '.' && c != '-' && c != '+' && c != 'e' && c != 'E' {
			break
		}
		p.pos++
	}
	v, err := strconv.ParseFloat(p.s[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("at position %d: invalid branch length %q", start+1, p.s[start:p.pos])
	}
	return v, nil
}

func (p *parser) peek() byte {
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.s) {
		if c := p.s[p.pos]; c != ' ' && c != '\t' {
			return
		}
		p.pos++
	}
}
