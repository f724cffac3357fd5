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

// Package importance ranks the customer attributes of a processed bank
// marketing dataset by how much they explain the subscription outcome, using
// the mean decrease in impurity of a random forest.
package importance

import (
	"context"
	"sort"

	"github.com/pilosa/bankdata"
	"github.com/pkg/errors"
)

// DefaultFeatures are the attributes ranked when no others are given.
var DefaultFeatures = []string{
	bankdata.ColAge, bankdata.ColJob, bankdata.ColMarital, bankdata.ColEducation,
	bankdata.ColHousing, bankdata.ColLoan, bankdata.ColContact, bankdata.ColMonth,
}

// DefaultAgeBins is the number of equal-width age intervals.
const DefaultAgeBins = 12

// Importance is the share of the forest's impurity decrease credited to a
// feature.
type Importance struct {
	Feature string
	Score   float64
}

// Analyzer label encodes a dataset and fits a Forest to it.
type Analyzer struct {
	features   []string
	ageBins    int
	translator bankdata.Translator
	forestOpts []ForestOption
	log        bankdata.Logger
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(a *Analyzer)

// OptAnalyzerFeatures sets the ranked columns.
func OptAnalyzerFeatures(features ...string) AnalyzerOption {
	return func(a *Analyzer) {
		a.features = features
	}
}

// OptAnalyzerAgeBins sets the number of age intervals. 0 leaves age unbinned.
func OptAnalyzerAgeBins(n int) AnalyzerOption {
	return func(a *Analyzer) {
		a.ageBins = n
	}
}

// OptAnalyzerTranslator sets where label encodings are kept.
func OptAnalyzerTranslator(tr bankdata.Translator) AnalyzerOption {
	return func(a *Analyzer) {
		a.translator = tr
	}
}

// OptAnalyzerForest passes options through to the Forest.
func OptAnalyzerForest(opts ...ForestOption) AnalyzerOption {
	return func(a *Analyzer) {
		a.forestOpts = append(a.forestOpts, opts...)
	}
}

// OptAnalyzerLogger sets the logger.
func OptAnalyzerLogger(l bankdata.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		a.log = l
	}
}

// NewAnalyzer returns an Analyzer over DefaultFeatures with an in-memory
// translator.
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		features: DefaultFeatures,
		ageBins:  DefaultAgeBins,
		log:      bankdata.NopLogger{},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.translator == nil {
		a.translator = bankdata.NewMapTranslator()
	}
	return a
}

// Encoded is a dataset reduced to label ids, ready for a Forest.
type Encoded struct {
	Features []string
	X        [][]int
	Y        []int
	// AgeBins is nil unless age was binned.
	AgeBins *Bins
}

// Encode drops records with a missing outcome, bins age and label encodes
// every feature. Missing feature values get an id of their own.
func (a *Analyzer) Encode(ds *bankdata.Dataset) (*Encoded, error) {
	if len(a.features) == 0 {
		return nil, errors.New("no features to rank")
	}
	outcome, err := ds.Column(bankdata.ColY)
	if err != nil {
		return nil, errors.Wrap(err, "getting outcome")
	}
	known := ds.Filter(func(row int) bool { return !bankdata.IsMissing(outcome[row]) })
	sub, err := known.Select(append(append([]string{}, a.features...), bankdata.ColY)...)
	if err != nil {
		return nil, errors.Wrap(err, "selecting features")
	}
	if sub.Len() == 0 {
		return nil, errors.New("no records with a known outcome")
	}

	enc := &Encoded{Features: a.features}
	ys, _ := sub.Column(bankdata.ColY)
	enc.Y = make([]int, len(ys))
	for i, v := range ys {
		n, ok := v.(int64)
		if !ok || (n != 0 && n != 1) {
			return nil, errors.Errorf("outcome must be processed to 0 or 1, got %s", bankdata.FormatValue(v))
		}
		enc.Y[i] = int(n)
	}

	if a.ageBins > 0 && sub.HasColumn(bankdata.ColAge) {
		enc.AgeBins, err = binAge(sub, a.ageBins)
		if err != nil {
			return nil, errors.Wrap(err, "binning age")
		}
	}

	enc.X = make([][]int, len(a.features))
	for i, f := range a.features {
		ids, err := bankdata.EncodeColumn(a.translator, sub, f)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding %s", f)
		}
		col := make([]int, len(ids))
		for j, id := range ids {
			col[j] = int(id)
		}
		enc.X[i] = col
	}
	return enc, nil
}

// binAge replaces every known age in ds with the index of its bin.
func binAge(ds *bankdata.Dataset, n int) (*Bins, error) {
	ages, err := ds.Column(bankdata.ColAge)
	if err != nil {
		return nil, err
	}
	vals := make([]float64, 0, len(ages))
	for _, v := range ages {
		switch vt := v.(type) {
		case int64:
			vals = append(vals, float64(vt))
		case float64:
			vals = append(vals, vt)
		default:
			if !bankdata.IsMissing(v) {
				return nil, errors.Errorf("age %s is not numeric", bankdata.FormatValue(v))
			}
		}
	}
	if len(vals) == 0 {
		return nil, nil
	}
	bins, err := NewBins(vals, n)
	if err != nil {
		return nil, err
	}
	for row, v := range ages {
		if bankdata.IsMissing(v) {
			continue
		}
		var x float64
		switch vt := v.(type) {
		case int64:
			x = float64(vt)
		case float64:
			x = vt
		}
		i, ok := bins.Index(x)
		if !ok {
			return nil, errors.Errorf("age %v outside %v", x, bins.Edges)
		}
		if err := ds.Set(row, bankdata.ColAge, int64(i)); err != nil {
			return nil, err
		}
	}
	return bins, nil
}

// Compute ranks the features of ds. The result is sorted by ascending score.
func (a *Analyzer) Compute(ctx context.Context, ds *bankdata.Dataset) ([]Importance, error) {
	enc, err := a.Encode(ds)
	if err != nil {
		return nil, errors.Wrap(err, "encoding")
	}
	forest := NewForest(a.forestOpts...)
	a.log.Debugf("fitting %d trees on %d records and %d features", forest.Trees, len(enc.Y), len(enc.Features))
	if err := forest.Fit(ctx, enc.X, enc.Y); err != nil {
		return nil, err
	}
	scores, err := forest.FeatureImportances()
	if err != nil {
		return nil, err
	}
	ret := make([]Importance, len(scores))
	for i, s := range scores {
		ret[i] = Importance{Feature: enc.Features[i], Score: s}
	}
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].Score < ret[j].Score })
	return ret, nil
}
