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
	"context"
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Forest is a random forest of gini CART trees over label encoded features.
// Features are given column-wise: X[f][row] is the id of row in feature f.
// Ids are treated as ordered, a split sends x <= threshold to the left.
type Forest struct {
	Trees           int
	MaxDepth        int // 0 means unlimited
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int // 0 means sqrt of the feature count
	Bootstrap       bool
	Seed            int64
	Concurrency     int

	trees     []*tree
	nFeatures int
	nClasses  int
}

// ForestOption configures a Forest.
type ForestOption func(f *Forest)

// OptForestTrees sets the number of trees.
func OptForestTrees(n int) ForestOption {
	return func(f *Forest) {
		f.Trees = n
	}
}

// OptForestMaxDepth limits the depth of every tree.
func OptForestMaxDepth(d int) ForestOption {
	return func(f *Forest) {
		f.MaxDepth = d
	}
}

// OptForestMaxFeatures sets the number of features drawn per split.
func OptForestMaxFeatures(n int) ForestOption {
	return func(f *Forest) {
		f.MaxFeatures = n
	}
}

// OptForestMinSamplesLeaf sets the smallest allowed leaf.
func OptForestMinSamplesLeaf(n int) ForestOption {
	return func(f *Forest) {
		f.MinSamplesLeaf = n
	}
}

// OptForestBootstrap turns bootstrap sampling on or off.
func OptForestBootstrap(b bool) ForestOption {
	return func(f *Forest) {
		f.Bootstrap = b
	}
}

// OptForestSeed seeds the forest. Tree i uses seed+i.
func OptForestSeed(seed int64) ForestOption {
	return func(f *Forest) {
		f.Seed = seed
	}
}

// OptForestConcurrency bounds the number of trees trained at once.
func OptForestConcurrency(c int) ForestOption {
	return func(f *Forest) {
		f.Concurrency = c
	}
}

// NewForest returns a Forest with 100 bootstrapped trees.
func NewForest(opts ...ForestOption) *Forest {
	f := &Forest{
		Trees:           100,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Bootstrap:       true,
		Concurrency:     4,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fit trains every tree. Labels must be small non-negative integers.
func (f *Forest) Fit(ctx context.Context, X [][]int, y []int) error {
	if f.Trees < 1 {
		return errors.Errorf("need at least one tree, got %d", f.Trees)
	}
	if len(X) == 0 {
		return errors.New("no features")
	}
	n := len(y)
	if n == 0 {
		return errors.New("no samples")
	}
	card := make([]int, len(X))
	for i, col := range X {
		if len(col) != n {
			return errors.Errorf("feature %d has %d values for %d labels", i, len(col), n)
		}
		for _, v := range col {
			if v < 0 {
				return errors.Errorf("negative id %d in feature %d", v, i)
			}
			if v+1 > card[i] {
				card[i] = v + 1
			}
		}
	}
	nClasses := 0
	for _, c := range y {
		if c < 0 {
			return errors.Errorf("negative label %d", c)
		}
		if c+1 > nClasses {
			nClasses = c + 1
		}
	}
	maxFeatures := f.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Sqrt(float64(len(X))))
	}
	if maxFeatures < 1 {
		maxFeatures = 1
	}
	if maxFeatures > len(X) {
		maxFeatures = len(X)
	}

	trees := make([]*tree, f.Trees)
	g, ctx := errgroup.WithContext(ctx)
	if f.Concurrency > 0 {
		g.SetLimit(f.Concurrency)
	}
	for i := range trees {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rnd := rand.New(rand.NewSource(f.Seed + int64(i)))
			idx := make([]int, n)
			for j := range idx {
				if f.Bootstrap {
					idx[j] = rnd.Intn(n)
				} else {
					idx[j] = j
				}
			}
			t := &tree{
				x:           X,
				y:           y,
				card:        card,
				nClasses:    nClasses,
				maxDepth:    f.MaxDepth,
				minSplit:    f.MinSamplesSplit,
				minLeaf:     f.MinSamplesLeaf,
				maxFeatures: maxFeatures,
				rnd:         rnd,
				importances: make([]float64, len(X)),
			}
			t.root = t.build(idx, 0)
			t.x, t.y, t.rnd = nil, nil, nil
			trees[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "fitting trees")
	}
	f.trees = trees
	f.nFeatures = len(X)
	f.nClasses = nClasses
	return nil
}

// FeatureImportances returns the mean decrease in impurity of each feature,
// normalized to sum to 1. Trees that never split are left out.
func (f *Forest) FeatureImportances() ([]float64, error) {
	if f.trees == nil {
		return nil, errors.New("forest is not fitted")
	}
	ret := make([]float64, f.nFeatures)
	used := 0
	for _, t := range f.trees {
		if t.root.leaf() {
			continue
		}
		used++
		for i, v := range t.normalized() {
			ret[i] += v
		}
	}
	if used == 0 {
		return ret, nil
	}
	var sum float64
	for i := range ret {
		ret[i] /= float64(used)
		sum += ret[i]
	}
	if sum > 0 {
		for i := range ret {
			ret[i] /= sum
		}
	}
	return ret, nil
}

// Predict returns the class with the highest mean probability over all
// trees for each row of X.
func (f *Forest) Predict(X [][]int) ([]int, error) {
	if f.trees == nil {
		return nil, errors.New("forest is not fitted")
	}
	if len(X) != f.nFeatures {
		return nil, errors.Errorf("forest was fitted on %d features, got %d", f.nFeatures, len(X))
	}
	n := len(X[0])
	row := make([]int, f.nFeatures)
	probs := make([]float64, f.nClasses)
	ret := make([]int, n)
	for r := 0; r < n; r++ {
		for i := range row {
			row[i] = X[i][r]
		}
		for c := range probs {
			probs[c] = 0
		}
		for _, t := range f.trees {
			for c, p := range t.predict(row) {
				probs[c] += p
			}
		}
		best := 0
		for c := range probs {
			if probs[c] > probs[best] {
				best = c
			}
		}
		ret[r] = best
	}
	return ret, nil
}

type node struct {
	feature   int
	threshold int
	left      *node
	right     *node
	probs     []float64
}

func (n *node) leaf() bool { return n.left == nil }

type tree struct {
	x           [][]int
	y           []int
	card        []int
	nClasses    int
	maxDepth    int
	minSplit    int
	minLeaf     int
	maxFeatures int
	rnd         *rand.Rand

	root        *node
	importances []float64
}

func (t *tree) classCounts(idx []int) []int {
	counts := make([]int, t.nClasses)
	for _, i := range idx {
		counts[t.y[i]]++
	}
	return counts
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		sum += p * p
	}
	return 1 - sum
}

func (t *tree) build(idx []int, depth int) *node {
	counts := t.classCounts(idx)
	n := len(idx)
	nd := &node{probs: make([]float64, t.nClasses)}
	for c, cnt := range counts {
		nd.probs[c] = float64(cnt) / float64(n)
	}
	impurity := gini(counts, n)
	if impurity == 0 || n < t.minSplit || n < 2*t.minLeaf || (t.maxDepth > 0 && depth >= t.maxDepth) {
		return nd
	}
	feature, threshold, gain, ok := t.bestSplit(idx, impurity)
	if !ok {
		return nd
	}
	t.importances[feature] += gain

	// partition idx in place, lefts first
	col := t.x[feature]
	l := 0
	for r := range idx {
		if col[idx[r]] <= threshold {
			idx[l], idx[r] = idx[r], idx[l]
			l++
		}
	}
	nd.feature = feature
	nd.threshold = threshold
	nd.left = t.build(idx[:l], depth+1)
	nd.right = t.build(idx[l:], depth+1)
	return nd
}

// bestSplit draws features at random until maxFeatures non-constant ones have
// been inspected and a valid split is known. gain is the weighted impurity
// decrease n*g - nl*gl - nr*gr.
func (t *tree) bestSplit(idx []int, impurity float64) (feature, threshold int, gain float64, ok bool) {
	n := len(idx)
	visited := 0
	for _, f := range t.rnd.Perm(len(t.x)) {
		if visited >= t.maxFeatures && ok {
			break
		}
		hist := make([][]int, t.card[f])
		col := t.x[f]
		present := 0
		for _, i := range idx {
			v := col[i]
			if hist[v] == nil {
				hist[v] = make([]int, t.nClasses)
				present++
			}
			hist[v][t.y[i]]++
		}
		if present < 2 {
			continue
		}
		visited++

		left := make([]int, t.nClasses)
		right := t.classCounts(idx)
		nl := 0
		for v := 0; v < len(hist)-1; v++ {
			if hist[v] == nil {
				continue
			}
			for c, cnt := range hist[v] {
				left[c] += cnt
				right[c] -= cnt
				nl += cnt
			}
			nr := n - nl
			if nr == 0 {
				break
			}
			if nl < t.minLeaf || nr < t.minLeaf {
				continue
			}
			g := float64(n)*impurity - float64(nl)*gini(left, nl) - float64(nr)*gini(right, nr)
			if g > 1e-12 && (!ok || g > gain) {
				feature, threshold, gain, ok = f, v, g, true
			}
		}
	}
	return feature, threshold, gain, ok
}

func (t *tree) normalized() []float64 {
	ret := make([]float64, len(t.importances))
	var sum float64
	for _, v := range t.importances {
		sum += v
	}
	if sum == 0 {
		return ret
	}
	for i, v := range t.importances {
		ret[i] = v / sum
	}
	return ret
}

func (t *tree) predict(row []int) []float64 {
	nd := t.root
	for !nd.leaf() {
		if row[nd.feature] <= nd.threshold {
			nd = nd.left
		} else {
			nd = nd.right
		}
	}
	return nd.probs
}
