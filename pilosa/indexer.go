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

// Package pilosa imports a canonical bank marketing dataset into a Pilosa
// index, one Pilosa column per record.
package pilosa

import (
	"context"
	"io"
	"math"
	"strings"

	"github.com/pilosa/bankdata"
	gopilosa "github.com/pilosa/go-pilosa"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Client is the part of *gopilosa.Client used by the Indexer.
type Client interface {
	SyncSchema(schema *gopilosa.Schema) error
	EnsureField(field *gopilosa.Field) error
	ImportField(field *gopilosa.Field, iterator gopilosa.RecordIterator, options ...gopilosa.ImportOption) error
}

var _ Client = &gopilosa.Client{}

// FieldSpec describes how one dataset column is stored in Pilosa.
type FieldSpec struct {
	Column string
	Name   string
	Kind   bankdata.Kind
	// Scale is the number of decimal places kept when a float column is
	// stored in an int field.
	Scale int
	Min   int64
	Max   int64
}

// FieldName turns a column name into a valid Pilosa field name: lower case,
// starting with a letter, with anything outside [a-z0-9_-] replaced by '_'.
func FieldName(column string) string {
	name := []byte(strings.ToLower(column))
	for i, c := range name {
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' || c == '-') {
			name[i] = '_'
		}
	}
	if len(name) == 0 || name[0] < 'a' || name[0] > 'z' {
		return "f" + string(name)
	}
	return string(name)
}

// Plan returns a FieldSpec for every column of ds holding at least one value.
// Int and float columns become int fields spanning the observed range, string
// columns become keyed set fields.
func Plan(ds *bankdata.Dataset, scale int) ([]FieldSpec, error) {
	specs := make([]FieldSpec, 0, len(ds.Header()))
	names := make(map[string]string)
	for _, col := range ds.Header() {
		kind, err := bankdata.ColumnKind(ds, col)
		if err != nil {
			return nil, err
		}
		if kind == bankdata.KindEmpty {
			continue
		}
		spec := FieldSpec{Column: col, Name: FieldName(col), Kind: kind}
		if other, ok := names[spec.Name]; ok {
			return nil, errors.Errorf("columns %s and %s both map to field %s", other, col, spec.Name)
		}
		names[spec.Name] = col
		if kind == bankdata.KindFloat {
			spec.Scale = scale
		}
		if kind != bankdata.KindString {
			vals, _ := ds.Column(col)
			first := true
			for _, v := range vals {
				n, ok, err := spec.intValue(v)
				if err != nil {
					return nil, err
				}
				if !ok {
					continue
				}
				if first || n < spec.Min {
					spec.Min = n
				}
				if first || n > spec.Max {
					spec.Max = n
				}
				first = false
			}
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func (s FieldSpec) intValue(v interface{}) (int64, bool, error) {
	switch vt := v.(type) {
	case int64:
		if s.Scale == 0 {
			return vt, true, nil
		}
		return s.scaled(float64(vt))
	case float64:
		return s.scaled(vt)
	}
	if bankdata.IsMissing(v) {
		return 0, false, nil
	}
	return 0, false, errors.Errorf("column %s: %s is not numeric", s.Column, bankdata.FormatValue(v))
}

func (s FieldSpec) scaled(f float64) (int64, bool, error) {
	f = math.Round(f * math.Pow10(s.Scale))
	if math.IsNaN(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false, errors.Errorf("column %s: can't store %v with scale %d", s.Column, f, s.Scale)
	}
	return int64(f), true, nil
}

// Options returns the gopilosa options for the field.
func (s FieldSpec) Options() []gopilosa.FieldOption {
	if s.Kind == bankdata.KindString {
		return []gopilosa.FieldOption{
			gopilosa.OptFieldTypeSet(gopilosa.CacheTypeRanked, 50000),
			gopilosa.OptFieldKeys(true),
		}
	}
	return []gopilosa.FieldOption{gopilosa.OptFieldTypeInt(s.Min, s.Max)}
}

// Records converts the column of ds described by s into Pilosa records. The
// column id of a record is its row number. Missing values are skipped.
func (s FieldSpec) Records(ds *bankdata.Dataset) ([]gopilosa.Record, error) {
	vals, err := ds.Column(s.Column)
	if err != nil {
		return nil, err
	}
	recs := make([]gopilosa.Record, 0, len(vals))
	for row, v := range vals {
		if bankdata.IsMissing(v) {
			continue
		}
		if s.Kind == bankdata.KindString {
			recs = append(recs, gopilosa.Column{ColumnID: uint64(row), RowKey: bankdata.FormatValue(v)})
			continue
		}
		n, _, err := s.intValue(v)
		if err != nil {
			return nil, err
		}
		recs = append(recs, gopilosa.FieldValue{ColumnID: uint64(row), Value: n})
	}
	return recs, nil
}

// Indexer imports datasets into a Pilosa index.
type Indexer struct {
	client    Client
	index     string
	scale     int
	batchSize int
	log       bankdata.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(ix *Indexer)

// OptIndexerIndex sets the name of the Pilosa index.
func OptIndexerIndex(name string) IndexerOption {
	return func(ix *Indexer) {
		ix.index = name
	}
}

// OptIndexerScale sets the decimal places kept for float columns.
func OptIndexerScale(scale int) IndexerOption {
	return func(ix *Indexer) {
		ix.scale = scale
	}
}

// OptIndexerBatchSize sets the import batch size.
func OptIndexerBatchSize(size int) IndexerOption {
	return func(ix *Indexer) {
		ix.batchSize = size
	}
}

// OptIndexerLogger sets the logger.
func OptIndexerLogger(l bankdata.Logger) IndexerOption {
	return func(ix *Indexer) {
		ix.log = l
	}
}

// NewIndexer returns an Indexer importing through client.
func NewIndexer(client Client, opts ...IndexerOption) *Indexer {
	ix := &Indexer{
		client:    client,
		index:     "bank",
		scale:     3,
		batchSize: 100000,
		log:       bankdata.NopLogger{},
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Index creates a field per column of ds and imports every value, one field
// at a time per goroutine. It returns the fields that were imported.
func (ix *Indexer) Index(ctx context.Context, ds *bankdata.Dataset) ([]FieldSpec, error) {
	specs, err := Plan(ds, ix.scale)
	if err != nil {
		return nil, errors.Wrap(err, "planning fields")
	}
	schema := gopilosa.NewSchema()
	index := schema.Index(ix.index)
	fields := make([]*gopilosa.Field, len(specs))
	for i, spec := range specs {
		fields[i] = index.Field(spec.Name, spec.Options()...)
	}
	err = ix.client.SyncSchema(schema)
	if err != nil {
		return nil, errors.Wrap(err, "synchronizing schema")
	}

	// every column is converted before the first import starts, so a bad
	// value can't leave imports running after Index returns
	recs := make([][]gopilosa.Record, len(specs))
	for i, spec := range specs {
		recs[i], err = spec.Records(ds)
		if err != nil {
			return nil, errors.Wrapf(err, "converting %s", spec.Column)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		spec, field, recs := spec, fields[i], recs[i]
		g.Go(func() error {
			if err := ix.client.EnsureField(field); err != nil {
				return errors.Wrapf(err, "creating field '%s'", spec.Name)
			}
			ix.log.Debugf("importing %d records into %s", len(recs), spec.Name)
			err := ix.client.ImportField(field, &recordIterator{ctx: ctx, recs: recs}, gopilosa.OptImportBatchSize(ix.batchSize))
			return errors.Wrapf(err, "importing field '%s'", spec.Name)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	ix.log.Printf("indexed %d records into %d fields of %s", ds.Len(), len(specs), ix.index)
	return specs, nil
}

type recordIterator struct {
	ctx  context.Context
	recs []gopilosa.Record
}

func (it *recordIterator) NextRecord() (gopilosa.Record, error) {
	if err := it.ctx.Err(); err != nil {
		return nil, err
	}
	if len(it.recs) == 0 {
		return nil, io.EOF
	}
	rec := it.recs[0]
	it.recs = it.recs[1:]
	return rec, nil
}
