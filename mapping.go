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
	"strings"

	"github.com/pkg/errors"
)

// Pair maps one raw source value to its canonical target.
type Pair struct {
	Source interface{}
	Target interface{}
}

// P is shorthand for building a Pair.
func P(source, target interface{}) Pair {
	return Pair{Source: source, Target: target}
}

// MappingTable is the declarative mapping for one governed column: an ordered
// list of source->target pairs and the set of distinct targets (the column's
// valid domain). A MappingTable is immutable once built.
type MappingTable struct {
	column   string
	foldCase bool
	pairs    []Pair
	lookup   map[interface{}]interface{}
	domain   []interface{}
	inDomain map[interface{}]struct{}
}

// TableOption configures a MappingTable under construction.
type TableOption func(t *MappingTable)

// FoldCase makes lookups of string values case-insensitive. String sources
// are stored lower cased.
func FoldCase() TableOption {
	return func(t *MappingTable) {
		t.foldCase = true
	}
}

// NewMappingTable builds a table for column. Sources must be unique, and any
// target which is also a source must map to itself.
func NewMappingTable(column string, pairs []Pair, opts ...TableOption) (*MappingTable, error) {
	t := &MappingTable{
		column:   column,
		lookup:   make(map[interface{}]interface{}, len(pairs)),
		inDomain: make(map[interface{}]struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	for i, p := range pairs {
		src, err := NormalizeValue(p.Source)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: source of pair %d", column, i)
		}
		tgt, err := NormalizeValue(p.Target)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: target of pair %d", column, i)
		}
		src = t.key(src)
		if _, exists := t.lookup[src]; exists {
			return nil, errors.Wrapf(ErrDuplicateSource, "%s: %v", column, src)
		}
		t.lookup[src] = tgt
		t.pairs = append(t.pairs, Pair{Source: src, Target: tgt})
		if _, ok := t.inDomain[tgt]; !ok {
			t.inDomain[tgt] = struct{}{}
			t.domain = append(t.domain, tgt)
		}
	}
	for _, tgt := range t.domain {
		if next, ok := t.lookup[t.key(tgt)]; ok && next != tgt {
			return nil, errors.Wrapf(ErrNotIdempotent, "%s: %v maps to %v", column, tgt, next)
		}
	}
	return t, nil
}

// MustMappingTable is NewMappingTable for statically declared tables.
func MustMappingTable(column string, pairs []Pair, opts ...TableOption) *MappingTable {
	t, err := NewMappingTable(column, pairs, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *MappingTable) key(v interface{}) interface{} {
	if s, ok := v.(string); ok && t.foldCase {
		return strings.ToLower(s)
	}
	return v
}

// Column returns the name of the governed column.
func (t *MappingTable) Column() string { return t.column }

// Pairs returns a copy of the table's pairs in declaration order.
func (t *MappingTable) Pairs() []Pair {
	return append([]Pair(nil), t.pairs...)
}

// Domain returns the distinct targets in the order they were first declared.
func (t *MappingTable) Domain() []interface{} {
	return append([]interface{}(nil), t.domain...)
}

// Contains reports whether v is in the table's valid domain.
func (t *MappingTable) Contains(v interface{}) bool {
	_, ok := t.inDomain[v]
	return ok
}

// Lookup returns the target for a raw value, if the table has one.
func (t *MappingTable) Lookup(v interface{}) (interface{}, bool) {
	tgt, ok := t.lookup[t.key(v)]
	return tgt, ok
}

// Registry holds mapping tables by column, in declaration order. A Registry
// is read-only after NewRegistry returns and may be shared freely between
// goroutines.
type Registry struct {
	tables []*MappingTable
	byName map[string]*MappingTable
}

// NewRegistry builds a Registry. Two tables for the same column is an error.
func NewRegistry(tables ...*MappingTable) (*Registry, error) {
	r := &Registry{
		tables: make([]*MappingTable, 0, len(tables)),
		byName: make(map[string]*MappingTable, len(tables)),
	}
	for _, t := range tables {
		if _, exists := r.byName[t.column]; exists {
			return nil, errors.Wrap(ErrDuplicateColumn, t.column)
		}
		r.byName[t.column] = t
		r.tables = append(r.tables, t)
	}
	return r, nil
}

// MustRegistry is NewRegistry for static registries.
func MustRegistry(tables ...*MappingTable) *Registry {
	r, err := NewRegistry(tables...)
	if err != nil {
		panic(err)
	}
	return r
}

// MappingFor returns the table governing column, or a *ConfigurationError.
func (r *Registry) MappingFor(column string) (*MappingTable, error) {
	t, ok := r.byName[column]
	if !ok {
		return nil, &ConfigurationError{Column: column}
	}
	return t, nil
}

// Columns returns the governed columns in declaration order.
func (r *Registry) Columns() []string {
	cols := make([]string, len(r.tables))
	for i, t := range r.tables {
		cols[i] = t.column
	}
	return cols
}

// Tables returns the registry's tables in declaration order.
func (r *Registry) Tables() []*MappingTable {
	return append([]*MappingTable(nil), r.tables...)
}

// With returns a new Registry holding r's tables followed by tables.
func (r *Registry) With(tables ...*MappingTable) (*Registry, error) {
	return NewRegistry(append(r.Tables(), tables...)...)
}
