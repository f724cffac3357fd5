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

package bankdata

import "math"

// Remap replaces every value in column that is a source in the column's
// mapping table with its target. Each cell gets exactly one lookup against
// its original value, so a target can never be remapped again by a later pair
// within the same call. Values with no matching source are left alone for
// Validate to report. Remap returns the number of cells it replaced.
func (r *Registry) Remap(ds *Dataset, column string) (int, error) {
	t, err := r.MappingFor(column)
	if err != nil {
		return 0, err
	}
	return t.Remap(ds)
}

// Remap applies the table to its column of ds in place.
func (t *MappingTable) Remap(ds *Dataset) (int, error) {
	vals, err := ds.Column(t.column)
	if err != nil {
		return 0, err
	}
	replaced := 0
	for i, v := range vals {
		if tgt, ok := t.Lookup(v); ok {
			vals[i] = tgt
			replaced++
		}
	}
	return replaced, nil
}

// Validate checks that every value in column belongs to the column's domain.
// It never modifies ds. When values fall outside the domain it returns a
// *SchemaViolation listing all of them.
func (r *Registry) Validate(ds *Dataset, column string) error {
	t, err := r.MappingFor(column)
	if err != nil {
		return err
	}
	return t.Validate(ds)
}

// Validate checks ds's column against the table's domain.
func (t *MappingTable) Validate(ds *Dataset) error {
	vals, err := ds.Column(t.column)
	if err != nil {
		return err
	}
	var seen map[interface{}]struct{}
	var bad []interface{}
	// NaN never equals itself as a map key, so it is tracked on its own.
	sawNaN := false
	for _, v := range vals {
		if t.Contains(v) {
			continue
		}
		if f, ok := v.(float64); ok && math.IsNaN(f) {
			if !sawNaN {
				sawNaN = true
				bad = append(bad, v)
			}
			continue
		}
		if seen == nil {
			seen = make(map[interface{}]struct{})
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		bad = append(bad, v)
	}
	if len(bad) == 0 {
		return nil
	}
	SortValues(bad)
	return &SchemaViolation{Column: t.column, Values: bad}
}
