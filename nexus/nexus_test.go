// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package nexus_test

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/js-arias/treedist/nexus"
)

var beastFile = `#NEXUS

Begin taxa;
	Dimensions ntax=5;
	Taxlabels
		'Homo sapiens'
		'Pan'
		'Gorilla'
		'Pongo'
		'Hylobates'
		;
End;
Begin trees;
	Translate
		1 'Homo sapiens',
		2 'Pan',
		3 'Gorilla',
		4 'Pongo',
		5 'Hylobates'
		;
tree STATE_100 [&lnP=-123.45] = [&R] (((1:[&rate=0.9]1.5,2:[&rate=1.1]1.5):[&rate=1]1.0,3:2.5):1.5,(4:3.0,5:3.0):1.0);
tree STATE_200 = [&R] (((1:1.0,2:1.0):1.0,3:2.0):2.0,(4:3.0,5:3.0):1.0);
tree STATE_300 = [&R] (((1:1.0,3:1.0):1.0,2:2.0):2.0,(4:3.0,5:3.0):1.0);
tree STATE_400 = [&R] ((1:1.0,2:1.0):3.0,(3:2.0,(4:1.0,5:1.0):1.0):2.0);
End;
`

func TestRead(t *testing.T) {
	c, err := nexus.Read(strings.NewReader(beastFile), "hominid.trees")
	if err != nil {
		t.Fatalf("unable to read tree file: %v", err)
	}

	translate := map[string]string{
		"1": "Homo sapiens",
		"2": "Pan",
		"3": "Gorilla",
		"4": "Pongo",
		"5": "Hylobates",
	}
	if g := c.Translate(); !reflect.DeepEqual(g, translate) {
		t.Errorf("translate: got %v, want %v", g, translate)
	}

	trees := c.Trees()
	if len(trees) != 4 {
		t.Fatalf("trees: got %d, want %d", len(trees), 4)
	}

	states := []int64{100, 200, 300, 400}

	// taxa in tree statement order
	terms := [][]string{
		{"1", "2", "3", "4", "5"},
		{"1", "2", "3", "4", "5"},
		{"1", "3", "2", "4", "5"},
		{"1", "2", "3", "4", "5"},
	}

	for i, tr := range trees {
		if g := tr.State(); g != states[i] {
			t.Errorf("tree %d: state: got %d, want %d", i, g, states[i])
		}
		wn := fmt.Sprintf("hominid_tree_STATE%d", states[i])
		if g := tr.Name(); g != wn {
			t.Errorf("tree %d: name: got %q, want %q", i, g, wn)
		}
		if g := tr.Terms(); !reflect.DeepEqual(g, terms[i]) {
			t.Errorf("tree %d: terms: got %v, want %v", i, g, terms[i])
		}
	}
}

func TestReadTopology(t *testing.T) {
	c, err := nexus.Read(strings.NewReader(beastFile), "hominid.trees")
	if err != nil {
		t.Fatalf("unable to read tree file: %v", err)
	}
	tr := c.Trees()[0]

	root := tr.Root()
	if tr.IsTerm(root) {
		t.Fatalf("root should not be a terminal")
	}
	if g := tr.Length(root); g != 0 {
		t.Errorf("root length: got %.6f, want %.6f", g, 0.0)
	}
	children := tr.Children(root)
	if len(children) != 2 {
		t.Fatalf("root children: got %d, want %d", len(children), 2)
	}

	// first child: ((1,2),3) with branch length 1.5
	in := children[0]
	if g := tr.Length(in); g != 1.5 {
		t.Errorf("node length: got %.6f, want %.6f", g, 1.5)
	}

	// terminals with annotated branch lengths
	hp := tr.Children(tr.Children(in)[0])
	if g := tr.Taxon(hp[0]); g != "1" {
		t.Errorf("taxon: got %q, want %q", g, "1")
	}
	if g := tr.Length(hp[0]); g != 1.5 {
		t.Errorf("terminal length: got %.6f, want %.6f", g, 1.5)
	}
}

func TestReadErrors(t *testing.T) {
	bad := []string{
		"Begin trees;\ntree STATE_0 (1:1.0,2:1.0);\nEnd;\n",
		"Begin trees;\ntree STATE_0 = ((1:1.0,2:1.0):1.0,3:2.0;\nEnd;\n",
		"Begin trees;\ntree STATE_0 = ((1:1.0,2:xx):1.0,3:2.0);\nEnd;\n",
		"Begin trees;\ntree STATE_0 = ((1:1.0,:2.0):1.0,3:2.0);\nEnd;\n",
	}
	for i, s := range bad {
		if _, err := nexus.Read(strings.NewReader(s), "bad.trees"); err == nil {
			t.Errorf("file %d: expecting parse error", i)
		}
	}
}

func TestBurnin(t *testing.T) {
	tests := map[string]struct {
		trees  int
		states int64
		want   []int64
	}{
		"no burn-in":   {want: []int64{100, 200, 300, 400}},
		"by count":     {trees: 2, want: []int64{300, 400}},
		"by state":     {states: 250, want: []int64{300, 400}},
		"count, state": {trees: 1, states: 150, want: []int64{200, 300, 400}},
		"both filters": {trees: 1, states: 250, want: []int64{300, 400}},
		"all trees":    {trees: 10, want: []int64{}},
		"all states":   {states: 400, want: []int64{}},
	}

	for name, test := range tests {
		c, err := nexus.Read(strings.NewReader(beastFile), "hominid.trees")
		if err != nil {
			t.Fatalf("%s: unable to read tree file: %v", name, err)
		}
		c.Burnin(test.trees, test.states)

		got := make([]int64, 0, len(c.Trees()))
		for _, tr := range c.Trees() {
			got = append(got, tr.State())
		}
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("%s: retained states: got %v, want %v", name, got, test.want)
		}
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "hominid.trees")
	if err := os.WriteFile(plain, []byte(beastFile), 0644); err != nil {
		t.Fatalf("unable to write file %q: %v", plain, err)
	}

	var b bytes.Buffer
	z := gzip.NewWriter(&b)
	if _, err := z.Write([]byte(beastFile)); err != nil {
		t.Fatalf("unable to compress tree file: %v", err)
	}
	if err := z.Close(); err != nil {
		t.Fatalf("unable to compress tree file: %v", err)
	}
	comp := filepath.Join(dir, "hominid.trees.gz")
	if err := os.WriteFile(comp, b.Bytes(), 0644); err != nil {
		t.Fatalf("unable to write file %q: %v", comp, err)
	}

	for _, name := range []string{plain, comp} {
		f, err := nexus.Open(name)
		if err != nil {
			t.Fatalf("unable to open file %q: %v", name, err)
		}
		c, err := nexus.Read(f, name)
		if err != nil {
			t.Fatalf("unable to read tree file %q: %v", name, err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("unable to close file %q: %v", name, err)
		}

		if g := len(c.Trees()); g != 4 {
			t.Errorf("file %q: trees: got %d, want %d", name, g, 4)
		}
		if g := c.Trees()[0].Name(); g != "hominid_tree_STATE100" {
			t.Errorf("file %q: tree name: got %q, want %q", name, g, "hominid_tree_STATE100")
		}
	}

	if _, err := nexus.Open(filepath.Join(dir, "missing.trees")); err == nil {
		t.Errorf("expecting an error opening a missing file")
	}
}

func TestReadQuotedLabels(t *testing.T) {
	file := "Begin trees;\ntree STATE_0 = (('Homo sapiens':1.0,'Pan':1.0):1.0,('Gorilla':2.0,'Pongo':2.0):1.0);\nEnd;\n"
	c, err := nexus.Read(strings.NewReader(file), "apes.trees.gz")
	if err != nil {
		t.Fatalf("unable to read tree file: %v", err)
	}

	trees := c.Trees()
	if len(trees) != 1 {
		t.Fatalf("trees: got %d, want %d", len(trees), 1)
	}
	tr := trees[0]
	if g := tr.Name(); g != "apes_tree_STATE0" {
		t.Errorf("tree name: got %q, want %q", g, "apes_tree_STATE0")
	}
	want := []string{"Homo sapiens", "Pan", "Gorilla", "Pongo"}
	if g := tr.Terms(); !reflect.DeepEqual(g, want) {
		t.Errorf("terms: got %v, want %v", g, want)
	}
}
