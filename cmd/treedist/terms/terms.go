// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package terms implements a command to print
// the list of taxa in a set of tree files.
package terms

import (
	"fmt"
	"io"
	"slices"

	"github.com/js-arias/command"
	"github.com/js-arias/treedist/nexus"
)

var Command = &command.Command{
	Usage: "terms [--real-taxa] [<tree-file>...]",
	Short: "print a list of the taxa in a tree file",
	Long: `
Command terms reads one or more BEAST tree files and prints the taxa found
in the trees in the standard output.

One or more tree files can be given as arguments. If no file is given the
trees will be read from the standard input. Files with the suffix '.gz' are
expected to be compressed with gzip.

By default, the taxa are printed as they appear in the tree statements
(numeric IDs in most BEAST files). If the flag --real-taxa is defined, the
IDs will be translated to the taxon names given in the TRANSLATE block of
each file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var realTaxa bool

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&realTaxa, "real-taxa", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) == 0 {
		args = append(args, "-")
	}

	terms := make(map[string]bool)
	for _, a := range args {
		coll, err := readTreeFile(c.Stdin(), a)
		if err != nil {
			return err
		}

		var translate map[string]string
		if realTaxa {
			translate = coll.Translate()
		}
		for _, t := range coll.Trees() {
			for _, tax := range t.Terms() {
				if v, ok := translate[tax]; ok {
					tax = v
				}
				terms[tax] = true
			}
		}
	}

	ls := make([]string, 0, len(terms))
	for tax := range terms {
		ls = append(ls, tax)
	}
	slices.Sort(ls)
	for _, tax := range ls {
		fmt.Fprintf(c.Stdout(), "%s\n", tax)
	}
	return nil
}

func readTreeFile(r io.Reader, name string) (*nexus.Collection, error) {
	if name != "-" {
		f, err := nexus.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	} else {
		name = "stdin"
	}
	return nexus.Read(r, name)
}
