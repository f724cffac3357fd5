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

// Package analysis answers the grouped questions asked of a canonical bank
// marketing dataset: per value of some column, how many customers were
// contacted, how many subscribed, and what share of the population the value
// accounts for.
//
// Grouping follows the usual dataframe conventions: rows whose key is Missing
// are dropped, groups are ordered by key, and rows whose outcome is Missing
// are left out of means, sums and counts.
package analysis

import (
	"math"
	"sort"

	"github.com/pilosa/bankdata"
	"github.com/pkg/errors"
)

// Analysis runs queries against one processed dataset. It never modifies the
// dataset.
type Analysis struct {
	ds      *bankdata.Dataset
	outcome []interface{}
}

// New returns an Analysis over ds, which must already have been through
// ProcessAll: its y column must hold only 0, 1 or Missing.
func New(ds *bankdata.Dataset) (*Analysis, error) {
	y, err := ds.Column(bankdata.ColY)
	if err != nil {
		return nil, errors.Wrap(err, "getting outcome")
	}
	for i, v := range y {
		if bankdata.IsMissing(v) {
			continue
		}
		if n, ok := v.(int64); !ok || (n != 0 && n != 1) {
			return nil, errors.Errorf("outcome of record %d is %v, want 0 or 1; was the dataset processed?", i, v)
		}
	}
	return &Analysis{ds: ds, outcome: y}, nil
}

// NewMarital returns an Analysis restricted to the marital and y columns of
// the records whose marital status is known.
func NewMarital(ds *bankdata.Dataset) (*Analysis, error) {
	marital, err := ds.Column(bankdata.ColMarital)
	if err != nil {
		return nil, errors.Wrap(err, "getting marital status")
	}
	known := ds.Filter(func(row int) bool {
		v := marital[row]
		return !bankdata.IsMissing(v) && v != "unknown"
	})
	sub, err := known.Select(bankdata.ColMarital, bankdata.ColY)
	if err != nil {
		return nil, err
	}
	return New(sub)
}

// Dataset returns the dataset being analysed.
func (a *Analysis) Dataset() *bankdata.Dataset { return a.ds }

// Columns returns the names of the analysed columns.
func (a *Analysis) Columns() []string { return a.ds.Header() }

// Column returns the values of column.
func (a *Analysis) Column(column string) ([]interface{}, error) {
	return a.ds.Column(column)
}

// Group is the outcome tally for one value of a column.
type Group struct {
	Key   interface{}
	Rows  int
	Count int
	Yes   int64
}

// No is the number of known negative outcomes.
func (g Group) No() int64 { return int64(g.Count) - g.Yes }

// Mean is Yes/Count, or NaN when no outcome in the group is known.
func (g Group) Mean() float64 {
	if g.Count == 0 {
		return math.NaN()
	}
	return float64(g.Yes) / float64(g.Count)
}

// Groups tallies the outcome for every non-missing value of column, in key
// order.
func (a *Analysis) Groups(column string) ([]Group, error) {
	keys, err := a.ds.Column(column)
	if err != nil {
		return nil, err
	}
	idx := make(map[interface{}]int)
	var groups []Group
	for i, k := range keys {
		if bankdata.IsMissing(k) {
			continue
		}
		gi, ok := idx[k]
		if !ok {
			gi = len(groups)
			idx[k] = gi
			groups = append(groups, Group{Key: k})
		}
		g := &groups[gi]
		g.Rows++
		if y, ok := a.outcome[i].(int64); ok {
			g.Count++
			g.Yes += y
		}
	}
	sort.Slice(groups, func(i, j int) bool { return bankdata.LessValue(groups[i].Key, groups[j].Key) })
	return groups, nil
}

// Stat is one value of a per-group statistic.
type Stat struct {
	Key   interface{}
	Value float64
}

func (a *Analysis) stats(column string, f func(Group) float64) ([]Stat, error) {
	groups, err := a.Groups(column)
	if err != nil {
		return nil, err
	}
	ret := make([]Stat, len(groups))
	for i, g := range groups {
		ret[i] = Stat{Key: g.Key, Value: f(g)}
	}
	return ret, nil
}

// Probabilities returns, per value of column, the share of customers who
// subscribed.
func (a *Analysis) Probabilities(column string) ([]Stat, error) {
	return a.stats(column, Group.Mean)
}

// SuccessCount returns, per value of column, the number of customers who
// subscribed.
func (a *Analysis) SuccessCount(column string) ([]Stat, error) {
	return a.stats(column, func(g Group) float64 { return float64(g.Yes) })
}

// Count returns, per value of column, the number of customers contacted.
func (a *Analysis) Count(column string) ([]Stat, error) {
	return a.stats(column, func(g Group) float64 { return float64(g.Count) })
}

// YesNo is the number of positive and negative outcomes for one key.
type YesNo struct {
	Key interface{}
	Yes int64
	No  int64
}

// YesNoCount returns, per value of column, the number of customers who did
// and did not subscribe.
func (a *Analysis) YesNoCount(column string) ([]YesNo, error) {
	groups, err := a.Groups(column)
	if err != nil {
		return nil, err
	}
	ret := make([]YesNo, len(groups))
	for i, g := range groups {
		ret[i] = YesNo{Key: g.Key, Yes: g.Yes, No: g.No()}
	}
	return ret, nil
}

// PercentageOfPopulation returns the share, in percent rounded to two
// decimals, of the non-missing values of column taken by each value. The
// most common value comes first.
func (a *Analysis) PercentageOfPopulation(column string) ([]Stat, error) {
	groups, err := a.Groups(column)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, g := range groups {
		total += g.Rows
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Rows > groups[j].Rows })
	ret := make([]Stat, len(groups))
	for i, g := range groups {
		ret[i] = Stat{Key: g.Key, Value: round2(float64(g.Rows) * 100 / float64(total))}
	}
	return ret, nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
