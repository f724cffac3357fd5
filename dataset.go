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

import (
	"github.com/pkg/errors"
)

// Dataset is an in-memory table with a fixed, ordered header. Values are
// stored column by column; every column has exactly Len() entries. Each value
// is a string, int64, float64 or Missing.
//
// A Dataset is not safe for concurrent mutation. While a Processor is working
// on it, the Processor is its only writer.
type Dataset struct {
	header []string
	pos    map[string]int
	cols   [][]interface{}
	n      int
}

// NewDataset returns an empty Dataset with the given header.
func NewDataset(header ...string) (*Dataset, error) {
	ds := &Dataset{
		header: make([]string, len(header)),
		pos:    make(map[string]int, len(header)),
		cols:   make([][]interface{}, len(header)),
	}
	for i, h := range header {
		if h == "" {
			return nil, errors.Errorf("header contains empty column name at %d: %v", i, header)
		}
		if prev, exists := ds.pos[h]; exists {
			return nil, errors.Errorf("%s appeared at both %d and %d in header", h, prev, i)
		}
		ds.pos[h] = i
		ds.header[i] = h
	}
	return ds, nil
}

// MustNewDataset is NewDataset for static headers; it panics on error.
func MustNewDataset(header ...string) *Dataset {
	ds, err := NewDataset(header...)
	if err != nil {
		panic(err)
	}
	return ds
}

// Header returns a copy of the column names in order.
func (d *Dataset) Header() []string {
	return append([]string(nil), d.header...)
}

// Len returns the number of records.
func (d *Dataset) Len() int { return d.n }

// HasColumn reports whether the header contains column.
func (d *Dataset) HasColumn(column string) bool {
	_, ok := d.pos[column]
	return ok
}

// Append adds one record. values must line up with the header and are
// normalized with NormalizeValue.
func (d *Dataset) Append(values ...interface{}) error {
	if len(values) != len(d.header) {
		return errors.Errorf("record has %d values, header has %d", len(values), len(d.header))
	}
	norm := make([]interface{}, len(values))
	for i, v := range values {
		nv, err := NormalizeValue(v)
		if err != nil {
			return errors.Wrapf(err, "column %s", d.header[i])
		}
		norm[i] = nv
	}
	for i, v := range norm {
		d.cols[i] = append(d.cols[i], v)
	}
	d.n++
	return nil
}

// AppendRecord adds a record given as a column->value map. Columns absent from
// the map are stored as Missing; keys not in the header are an error.
func (d *Dataset) AppendRecord(rec map[string]interface{}) error {
	values := make([]interface{}, len(d.header))
	for i := range values {
		values[i] = Missing
	}
	for k, v := range rec {
		i, ok := d.pos[k]
		if !ok {
			return &ColumnError{Column: k}
		}
		values[i] = v
	}
	return d.Append(values...)
}

// Column returns the live slice backing column. Callers other than the
// pipeline stages should treat it as read-only.
func (d *Dataset) Column(column string) ([]interface{}, error) {
	i, ok := d.pos[column]
	if !ok {
		return nil, &ColumnError{Column: column}
	}
	return d.cols[i], nil
}

// Value returns the value at row in column.
func (d *Dataset) Value(row int, column string) (interface{}, error) {
	col, err := d.Column(column)
	if err != nil {
		return nil, err
	}
	if row < 0 || row >= d.n {
		return nil, errors.Errorf("row %d out of range [0, %d)", row, d.n)
	}
	return col[row], nil
}

// Set replaces the value at row in column.
func (d *Dataset) Set(row int, column string, v interface{}) error {
	col, err := d.Column(column)
	if err != nil {
		return err
	}
	if row < 0 || row >= d.n {
		return errors.Errorf("row %d out of range [0, %d)", row, d.n)
	}
	nv, err := NormalizeValue(v)
	if err != nil {
		return errors.Wrapf(err, "column %s", column)
	}
	col[row] = nv
	return nil
}

// Record returns row as a column->value map.
func (d *Dataset) Record(row int) map[string]interface{} {
	rec := make(map[string]interface{}, len(d.header))
	for i, h := range d.header {
		rec[h] = d.cols[i][row]
	}
	return rec
}

// Row returns row's values in header order.
func (d *Dataset) Row(row int) []interface{} {
	vals := make([]interface{}, len(d.header))
	for i := range d.header {
		vals[i] = d.cols[i][row]
	}
	return vals
}

// Select returns a new Dataset holding copies of the named columns, in the
// order given.
func (d *Dataset) Select(columns ...string) (*Dataset, error) {
	out, err := NewDataset(columns...)
	if err != nil {
		return nil, errors.Wrap(err, "building projection")
	}
	for i, c := range columns {
		src, err := d.Column(c)
		if err != nil {
			return nil, err
		}
		out.cols[i] = append([]interface{}(nil), src...)
	}
	out.n = d.n
	return out, nil
}

// Filter returns a new Dataset with the rows for which keep returns true.
func (d *Dataset) Filter(keep func(row int) bool) *Dataset {
	out := MustNewDataset(d.header...)
	for r := 0; r < d.n; r++ {
		if !keep(r) {
			continue
		}
		for i := range d.header {
			out.cols[i] = append(out.cols[i], d.cols[i][r])
		}
		out.n++
	}
	return out
}

// Concat appends every record of other, which must have an identical header.
func (d *Dataset) Concat(other *Dataset) error {
	if len(other.header) != len(d.header) {
		return errors.Errorf("header mismatch: %v vs %v", d.header, other.header)
	}
	for i, h := range d.header {
		if other.header[i] != h {
			return errors.Errorf("header mismatch at %d: %s vs %s", i, h, other.header[i])
		}
	}
	for i := range d.cols {
		d.cols[i] = append(d.cols[i], other.cols[i]...)
	}
	d.n += other.n
	return nil
}

// Derive appends a new column dst holding a copy of src.
func (d *Dataset) Derive(src, dst string) error {
	col, err := d.Column(src)
	if err != nil {
		return err
	}
	if d.HasColumn(dst) {
		return errors.Errorf("column %s already exists", dst)
	}
	d.pos[dst] = len(d.header)
	d.header = append(d.header, dst)
	d.cols = append(d.cols, append([]interface{}(nil), col...))
	return nil
}

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	out := MustNewDataset(d.header...)
	for i := range d.cols {
		out.cols[i] = append([]interface{}(nil), d.cols[i]...)
	}
	out.n = d.n
	return out
}
