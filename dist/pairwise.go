// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package dist

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/js-arias/treedist/snapshot"
)

type pairChunk struct {
	start, end int
}

// Pairwise computes the distance
// between every pair of snapshots
// under a given metric,
// returning the labeled distance matrix.
// Use cpu to define the number of concurrent processes;
// the default (zero) uses all available CPUs.
//
// Every snapshot must contain
// the full taxon set of the registry;
// otherwise the bipartitions of different trees
// are not comparable
// and the whole computation is rejected.
//
// The resulting matrix is identical
// for any number of CPUs:
// each pair is computed independently
// and written to its own matrix cell,
// and the distance of a pair
// is accumulated in the canonical split order.
func Pairwise(snaps []*snapshot.Snapshot, m Metric, cpu int) (*Matrix, error) {
	if len(snaps) == 0 {
		return nil, errors.New("no trees to compare")
	}
	if err := checkUniverse(snaps); err != nil {
		return nil, err
	}
	if cpu <= 0 {
		cpu = runtime.GOMAXPROCS(0)
	}

	n := len(snaps)
	mx := &Matrix{
		metric: m,
		names:  make([]string, n),
		vals:   make([][]float64, n),
	}
	for i, s := range snaps {
		mx.names[i] = s.Name()
		mx.vals[i] = make([]float64, n)
	}

	total := n * (n - 1) / 2
	size := total / (cpu * 8)
	if size == 0 {
		size = 1
	}

	var wg sync.WaitGroup
	chunkChan := make(chan pairChunk, cpu*2)
	for range cpu {
		go func() {
			for c := range chunkChan {
				for k := c.start; k < c.end; k++ {
					i, j := pairAt(k, n)
					mx.vals[i][j] = Pair(m, snaps[i], snaps[j])
				}
				wg.Done()
			}
		}()
	}
	for start := 0; start < total; start += size {
		end := start + size
		if end > total {
			end = total
		}
		wg.Add(1)
		chunkChan <- pairChunk{start: start, end: end}
	}
	close(chunkChan)
	wg.Wait()

	// mirror the upper triangle
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			mx.vals[j][i] = mx.vals[i][j]
		}
	}

	return mx, nil
}

// CheckUniverse rejects snapshot sets
// with taxon sets that are not comparable.
func checkUniverse(snaps []*snapshot.Snapshot) error {
	for _, s := range snaps {
		if !s.Full() {
			return fmt.Errorf("tree %q: got %d taxa, want %d (all trees must share the same taxa)", s.Name(), s.NumTaxa(), s.Universe())
		}
	}
	return nil
}

// RowStart returns the flat index
// of the first pair of row i
// in the upper triangle pair space.
func rowStart(i, n int) int {
	return i*(2*n-i-1) / 2
}

// PairAt returns the tree pair
// at a flat index of the upper triangle pair space:
// index 0 is the pair (0, 1),
// index 1 is (0, 2),
// and so on.
func pairAt(k, n int) (int, int) {
	i := int((float64(2*n-1) - math.Sqrt(float64(2*n-1)*float64(2*n-1)-float64(8*k))) / 2)
	if i >= n {
		i = n - 1
	}
	for i > 0 && rowStart(i, n) > k {
		i--
	}
	for rowStart(i+1, n) <= k {
		i++
	}
	j := i + 1 + k - rowStart(i, n)
	return i, j
}
