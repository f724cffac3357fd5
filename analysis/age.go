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

package analysis

import (
	"math"

	"github.com/pilosa/bankdata"
	"github.com/pkg/errors"
)

// AgeCount is the outcome tally for one age bracket.
type AgeCount struct {
	Bracket string
	Yes     int64
	No      int64
}

// MapAge buckets every record with a known age into the AgeBrackets and
// returns the outcome tally of each bracket, in bracket order. Ages outside
// the brackets are a *bankdata.SchemaViolation.
func (a *Analysis) MapAge() ([]AgeCount, error) {
	age, err := a.ds.Column(bankdata.ColAge)
	if err != nil {
		return nil, errors.Wrap(err, "getting age")
	}
	known := a.ds.Filter(func(row int) bool { return !bankdata.IsMissing(age[row]) })
	brackets, err := known.Select(bankdata.ColAge, bankdata.ColY)
	if err != nil {
		return nil, err
	}
	if err := brackets.Derive(bankdata.ColAge, bankdata.ColAgeBracket); err != nil {
		return nil, err
	}
	reg := bankdata.MustRegistry(bankdata.AgeBracketTable())
	if _, err := reg.Remap(brackets, bankdata.ColAgeBracket); err != nil {
		return nil, errors.Wrap(err, "remapping age")
	}
	if err := reg.Validate(brackets, bankdata.ColAgeBracket); err != nil {
		return nil, errors.Wrap(err, "validating age brackets")
	}

	sub, err := New(brackets)
	if err != nil {
		return nil, err
	}
	groups, err := sub.Groups(bankdata.ColAgeBracket)
	if err != nil {
		return nil, err
	}
	byLabel := make(map[interface{}]Group, len(groups))
	for _, g := range groups {
		byLabel[g.Key] = g
	}
	ret := make([]AgeCount, len(bankdata.AgeBrackets))
	for i, label := range bankdata.AgeBrackets {
		g := byLabel[label]
		ret[i] = AgeCount{Bracket: label, Yes: g.Yes, No: g.No()}
	}
	return ret, nil
}

// AgeSuccessProbability returns the percentage of customers in each bracket
// who subscribed. Brackets with no known outcome are NaN.
func AgeSuccessProbability(counts []AgeCount) []float64 {
	ret := make([]float64, len(counts))
	for i, c := range counts {
		total := c.Yes + c.No
		if total == 0 {
			ret[i] = math.NaN()
			continue
		}
		ret[i] = float64(c.Yes) / float64(total) * 100
	}
	return ret
}
