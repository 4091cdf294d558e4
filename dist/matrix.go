// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package dist

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// A Matrix is a symmetric distance matrix
// between a set of trees,
// with rows and columns labeled by the tree names,
// in snapshot order.
type Matrix struct {
	metric Metric
	names  []string
	vals   [][]float64
}

// Len returns the number of trees in the matrix.
func (m *Matrix) Len() int {
	return len(m.names)
}

// Metric returns the metric used to build the matrix.
func (m *Matrix) Metric() Metric {
	return m.metric
}

// Names returns the tree names
// used as row and column labels.
func (m *Matrix) Names() []string {
	return m.names
}

// Value returns the distance
// between the trees at rows i and j.
func (m *Matrix) Value(i, j int) float64 {
	return m.vals[i][j]
}

// TSV writes the matrix as a TSV table.
// The first row is a header with the tree names,
// and each following row starts with a tree name
// followed by the distances of that tree.
// Robinson-Foulds distances are written as integers.
func (m *Matrix) TSV(w io.Writer) error {
	tsv := csv.NewWriter(w)
	tsv.Comma = '\t'
	tsv.UseCRLF = false

	header := make([]string, 0, len(m.names)+1)
	header = append(header, "")
	header = append(header, m.names...)
	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}

	row := make([]string, len(m.names)+1)
	for i, name := range m.names {
		row[0] = name
		for j, v := range m.vals[i] {
			row[j+1] = m.format(v)
		}
		if err := tsv.Write(row); err != nil {
			return fmt.Errorf("while writing row %q: %v", name, err)
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("while writing matrix: %v", err)
	}
	return nil
}

func (m *Matrix) format(v float64) string {
	if m.metric == RobinsonFoulds {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
