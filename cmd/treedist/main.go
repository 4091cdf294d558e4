// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// TreeDist is a tool to compute pairwise distances
// between phylogenetic trees
// sampled from a Bayesian posterior.
package main

import (
	"github.com/js-arias/command"
	"github.com/js-arias/treedist/cmd/treedist/list"
	"github.com/js-arias/treedist/cmd/treedist/matrix"
	"github.com/js-arias/treedist/cmd/treedist/terms"
)

var app = &command.Command{
	Usage: "treedist <command> [<argument>...]",
	Short: "a tool to compute distances between posterior tree samples",
}

func init() {
	app.Add(matrix.Command)
	app.Add(list.Command)
	app.Add(terms.Command)
}

func main() {
	app.Main()
}
