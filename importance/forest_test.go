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
	"math/rand"
	"reflect"
	"testing"

	"github.com/pilosa/bankdata/test"
)

// separable returns a feature that decides the label and one that is
// balanced within each class.
func separable(n int) ([][]int, []int) {
	decides := make([]int, n)
	noise := make([]int, n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		y[i] = (i / 2) % 2
		decides[i] = y[i] + 3
		noise[i] = i % 2
	}
	return [][]int{noise, decides}, y
}

func TestForestSeparable(t *testing.T) {
	X, y := separable(40)
	f := NewForest(OptForestTrees(5), OptForestMaxFeatures(2), OptForestSeed(7))
	test.ErrNil(t, f.Fit(context.Background(), X, y), "Fit")

	imps, err := f.FeatureImportances()
	test.ErrNil(t, err, "FeatureImportances")
	test.MustBe(t, imps, []float64{0, 1})

	preds, err := f.Predict(X)
	test.ErrNil(t, err, "Predict")
	test.MustBe(t, preds, y)
}

func TestForestDeterministic(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))
	n := 200
	X := make([][]int, 4)
	for i := range X {
		X[i] = make([]int, n)
		for j := range X[i] {
			X[i][j] = rnd.Intn(5)
		}
	}
	y := make([]int, n)
	for j := range y {
		if X[0][j]+X[2][j] > 4 {
			y[j] = 1
		}
	}

	fit := func(concurrency int) []float64 {
		f := NewForest(OptForestTrees(12), OptForestSeed(11), OptForestConcurrency(concurrency))
		test.ErrNil(t, f.Fit(context.Background(), X, y), "Fit")
		imps, err := f.FeatureImportances()
		test.ErrNil(t, err, "FeatureImportances")
		return imps
	}
	a, b := fit(1), fit(8)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed gave different importances: %v, %v", a, b)
	}
	var sum float64
	for _, v := range a {
		if v < 0 {
			t.Fatalf("negative importance in %v", a)
		}
		sum += v
	}
	if sum < 0.999999 || sum > 1.000001 {
		t.Fatalf("importances don't sum to 1: %v", a)
	}
	if a[0]+a[2] < a[1]+a[3] {
		t.Fatalf("informative features should outrank noise: %v", a)
	}
}

func TestForestMaxDepth(t *testing.T) {
	X, y := separable(16)
	f := NewForest(OptForestTrees(1), OptForestMaxDepth(1), OptForestBootstrap(false), OptForestMaxFeatures(2))
	test.ErrNil(t, f.Fit(context.Background(), X, y), "Fit")
	root := f.trees[0].root
	if root.leaf() || !root.left.leaf() || !root.right.leaf() {
		t.Fatal("expected a single split")
	}
	test.MustBe(t, root.feature, 1)
	test.MustBe(t, root.threshold, 3)
}

func TestForestPureLabels(t *testing.T) {
	f := NewForest(OptForestTrees(2))
	test.ErrNil(t, f.Fit(context.Background(), [][]int{{0, 1, 2}}, []int{1, 1, 1}), "Fit")
	imps, err := f.FeatureImportances()
	test.ErrNil(t, err, "FeatureImportances")
	test.MustBe(t, imps, []float64{0})
}

func TestForestErrors(t *testing.T) {
	f := NewForest()
	if _, err := f.FeatureImportances(); err == nil {
		t.Error("expected error before Fit")
	}
	if _, err := f.Predict([][]int{{0}}); err == nil {
		t.Error("expected error predicting before Fit")
	}
	if err := f.Fit(context.Background(), [][]int{{0, 1}}, []int{0}); err == nil {
		t.Error("expected error for length mismatch")
	}
	if err := f.Fit(context.Background(), nil, []int{0}); err == nil {
		t.Error("expected error for no features")
	}
	if err := NewForest(OptForestTrees(0)).Fit(context.Background(), [][]int{{0}}, []int{0}); err == nil {
		t.Error("expected error for no trees")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := f.Fit(ctx, [][]int{{0, 1}}, []int{0, 1}); err == nil {
		t.Error("expected error for cancelled context")
	}
}
