// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package list implements a command to print
// the list of trees in a set of tree files.
package list

import (
	"fmt"
	"io"

	"github.com/js-arias/command"
	"github.com/js-arias/treedist/nexus"
)

var Command = &command.Command{
	Usage: "list [<tree-file>...]",
	Short: "print a list of the trees in a tree file",
	Long: `
Command list reads one or more BEAST tree files and prints the name, the
state, and the number of taxa of each tree sample in the standard output.

One or more tree files can be given as arguments. If no file is given the
trees will be read from the standard input. Files with the suffix '.gz' are
expected to be compressed with gzip.
	`,
	Run: run,
}

func run(c *command.Command, args []string) error {
	if len(args) == 0 {
		args = append(args, "-")
	}

	for _, a := range args {
		coll, err := readTreeFile(c.Stdin(), a)
		if err != nil {
			return err
		}
		for _, t := range coll.Trees() {
			fmt.Fprintf(c.Stdout(), "%s\t%d\t%d\n", t.Name(), t.State(), len(t.Terms()))
		}
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
