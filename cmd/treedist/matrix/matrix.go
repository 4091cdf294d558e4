// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package matrix implements a command to compute
// a pairwise distance matrix
// for a set of posterior tree samples.
package matrix

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/js-arias/command"
	"github.com/js-arias/timetree"
	"github.com/js-arias/treedist/dist"
	"github.com/js-arias/treedist/nexus"
	"github.com/js-arias/treedist/snapshot"
	"github.com/js-arias/treedist/taxa"
)

var Command = &command.Command{
	Usage: `matrix [--metric <metric>]
	[--burnin-trees <number>] [--burnin-states <number>]
	[--real-taxa] [--trees]
	[--cpu <number>] [-o|--output <file>] [-q|--quiet]
	[<tree-file>...]`,
	Short: "compute a pairwise tree distance matrix",
	Long: `
Command matrix reads one or more tree files with posterior tree samples and
writes the matrix of the distances between every pair of trees as a TSV
table, with the tree names as row and column labels.

One or more tree files can be given as arguments. If no file is given, the
trees will be read from the standard input. Files with the suffix '.gz' are
expected to be compressed with gzip. By default, the input files are read as
BEAST tree files (NEXUS format); if the flag --trees is defined, the files
are read as tab-delimited tree files with time calibrated trees, and branch
lengths are age differences in million years.

By default, the distance is the Robinson-Foulds distance ("rf"), the number
of bipartitions found in only one of the two trees. Use the flag --metric to
select a different distance: "weighted" is the Robinson-Foulds distance
weighted by branch lengths (shared bipartitions add the absolute difference
of their branch lengths, unshared bipartitions add their full length); "kf"
is the Kuhner-Felsenstein distance, the euclidean distance of the branch
lengths over the bipartitions of both trees.

The flags --burnin-trees and --burnin-states discard burn-in samples from
each input file: first the given number of trees is removed from the start
of the file, and then only samples with a state greater than the given state
are kept. Burn-in by state is ignored for tab-delimited tree files.

In BEAST tree files the taxa of each tree are numeric IDs. If the flag
--real-taxa is defined, the IDs will be translated to the taxon names given
in the TRANSLATE block of the file. Use this flag to compare trees from
different files, as the IDs of each file are independent. All the trees must
have the same taxon set.

By default, the matrix is written to the standard output. Use the flag
--output, or -o, to define an output file; if the file name ends with '.gz'
the output will be compressed with gzip. A single '-' also means the
standard output.

By default, all available CPUs will be used to compute the distances. Set
the flag --cpu to use a different number of CPUs. The resulting matrix is
identical for any number of CPUs.

The flag -q, or --quiet, suppresses the progress messages.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var metricFlag string
var burninTrees int
var burninStates int64
var realTaxa bool
var timedTrees bool
var numCPU int
var output string
var quiet bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&metricFlag, "metric", "rf", "")
	c.Flags().IntVar(&burninTrees, "burnin-trees", 0, "")
	c.Flags().Int64Var(&burninStates, "burnin-states", 0, "")
	c.Flags().BoolVar(&realTaxa, "real-taxa", false, "")
	c.Flags().BoolVar(&timedTrees, "trees", false, "")
	c.Flags().IntVar(&numCPU, "cpu", runtime.GOMAXPROCS(0), "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().BoolVar(&quiet, "quiet", false, "")
	c.Flags().BoolVar(&quiet, "q", false, "")
}

// A sample is a parsed tree
// with the translation table of its source file.
type sample struct {
	t         snapshot.Tree
	translate map[string]string
}

func run(c *command.Command, args []string) error {
	metric, err := dist.ParseMetric(metricFlag)
	if err != nil {
		return c.UsageError(err.Error())
	}
	if len(args) == 0 {
		args = append(args, "-")
	}

	start := time.Now()
	var samples []sample
	for _, a := range args {
		var ns []sample
		var err error
		if timedTrees {
			ns, err = readTimedTrees(c.Stdin(), a)
		} else {
			ns, err = readBeastTrees(c.Stdin(), a)
		}
		if err != nil {
			return err
		}
		samples = append(samples, ns...)
	}
	if len(samples) == 0 {
		return fmt.Errorf("no trees retained after burn-in removal")
	}
	progress(c, "reading %d trees: %v\n", len(samples), time.Since(start))

	start = time.Now()
	reg := taxa.NewRegistry()
	for _, s := range samples {
		snapshot.Register(reg, s.t, s.translate)
	}
	reg.Freeze()

	snaps := make([]*snapshot.Snapshot, 0, len(samples))
	for _, s := range samples {
		snaps = append(snaps, snapshot.New(reg, s.t, s.translate))
	}
	progress(c, "encoding snapshots for %d taxa: %v\n", reg.Len(), time.Since(start))

	start = time.Now()
	n := len(snaps)
	progress(c, "computing %s distances for %d pairs\n", metric, n*(n-1)/2)
	m, err := dist.Pairwise(snaps, metric, numCPU)
	if err != nil {
		return err
	}
	progress(c, "computing distances: %v\n", time.Since(start))

	start = time.Now()
	if err := writeMatrix(c.Stdout(), m); err != nil {
		return err
	}
	progress(c, "writing %s matrix for %d trees: %v\n", m.Metric(), m.Len(), time.Since(start))
	return nil
}

func progress(c *command.Command, format string, args ...any) {
	if quiet {
		return
	}
	fmt.Fprintf(c.Stderr(), format, args...)
}

// ReadBeastTrees reads the samples of a BEAST tree file,
// removing the burn-in samples.
func readBeastTrees(r io.Reader, name string) ([]sample, error) {
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

	coll, err := nexus.Read(r, name)
	if err != nil {
		return nil, err
	}
	coll.Burnin(burninTrees, burninStates)

	var translate map[string]string
	if realTaxa {
		translate = coll.Translate()
	}

	samples := make([]sample, 0, len(coll.Trees()))
	for _, t := range coll.Trees() {
		samples = append(samples, sample{t: t, translate: translate})
	}
	return samples, nil
}

// ReadTimedTrees reads a tab-delimited file
// with time calibrated trees,
// removing the burn-in
// (by tree count only,
// as time calibrated trees have no states).
func readTimedTrees(r io.Reader, name string) ([]sample, error) {
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

	coll, err := timetree.ReadTSV(r)
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}

	names := coll.Names()
	if burninTrees < len(names) {
		names = names[burninTrees:]
	} else {
		names = nil
	}

	samples := make([]sample, 0, len(names))
	for _, tn := range names {
		t := coll.Tree(tn)
		if t == nil {
			continue
		}
		samples = append(samples, sample{t: snapshot.Timed(t)})
	}
	return samples, nil
}

func writeMatrix(stdout io.Writer, m *dist.Matrix) (err error) {
	if output == "" || output == "-" {
		return m.TSV(stdout)
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	var w io.Writer = f
	if strings.HasSuffix(output, ".gz") {
		z := gzip.NewWriter(f)
		defer func() {
			e := z.Close()
			if e != nil && err == nil {
				err = e
			}
		}()
		w = z
	}

	if err := m.TSV(w); err != nil {
		return fmt.Errorf("while writing to %q: %v", output, err)
	}
	return nil
}
