// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

package importance

import (
	"fmt"
	"math"
	"sort"

	"github.com/pkg/errors"
)

// Bins is an equal-width partition of a numeric range into right-inclusive
// intervals. The lowest edge is pushed down by 0.1% of the range so that the
// minimum falls inside the first interval.
type Bins struct {
	Edges []float64
}

// NewBins spreads n bins over the range of vals.
func NewBins(vals []float64, n int) (*Bins, error) {
	if n < 1 {
		return nil, errors.Errorf("need at least one bin, got %d", n)
	}
	if len(vals) == 0 {
		return nil, errors.New("no values to bin")
	}
	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Errorf("can't bin %v", v)
		}
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	if min == max {
		adj := 0.001
		if min != 0 {
			adj = 0.001 * math.Abs(min)
		}
		return &Bins{Edges: linspace(min-adj, max+adj, n+1)}, nil
	}
	edges := linspace(min, max, n+1)
	edges[0] -= (max - min) * 0.001
	return &Bins{Edges: edges}, nil
}

func linspace(start, stop float64, num int) []float64 {
	ret := make([]float64, num)
	step := (stop - start) / float64(num-1)
	for i := range ret {
		ret[i] = start + step*float64(i)
	}
	ret[num-1] = stop
	return ret
}

// Len is the number of bins.
func (b *Bins) Len() int { return len(b.Edges) - 1 }

// Index returns the bin holding x, or false if x is outside every bin.
func (b *Bins) Index(x float64) (int, bool) {
	if math.IsNaN(x) || x <= b.Edges[0] || x > b.Edges[len(b.Edges)-1] {
		return 0, false
	}
	return sort.SearchFloat64s(b.Edges[1:], x), true
}

// Label renders bin i as a half-open interval.
func (b *Bins) Label(i int) string {
	return fmt.Sprintf("(%.3f, %.3f]", b.Edges[i], b.Edges[i+1])
}
