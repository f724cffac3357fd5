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

package pilosa

import (
	"context"
	"io"
	"math"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/pilosa/bankdata"
	"github.com/pilosa/bankdata/test"
	gopilosa "github.com/pilosa/go-pilosa"
	"github.com/pkg/errors"
)

type fakeClient struct {
	mu      sync.Mutex
	synced  []string
	ensured []string
	records map[string][]gopilosa.Record
	failOn  string
	onSync  func()
}

func newFakeClient() *fakeClient {
	return &fakeClient{records: make(map[string][]gopilosa.Record)}
}

func (c *fakeClient) SyncSchema(schema *gopilosa.Schema) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, idx := range schema.Indexes() {
		for field := range idx.Fields() {
			c.synced = append(c.synced, name+"/"+field)
		}
	}
	sort.Strings(c.synced)
	if c.onSync != nil {
		c.onSync()
	}
	return nil
}

func (c *fakeClient) EnsureField(field *gopilosa.Field) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensured = append(c.ensured, field.Name())
	return nil
}

func (c *fakeClient) ImportField(field *gopilosa.Field, iterator gopilosa.RecordIterator, options ...gopilosa.ImportOption) error {
	if field.Name() == c.failOn {
		return errors.New("boom")
	}
	var recs []gopilosa.Record
	for {
		rec, err := iterator.NextRecord()
		if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		recs = append(recs, rec)
	}
	c.mu.Lock()
	c.records[field.Name()] = recs
	c.mu.Unlock()
	return nil
}

func canonical(t *testing.T) *bankdata.Dataset {
	ds := bankdata.MustNewDataset("age", "job", "euribor3m", "poutcome", "y")
	test.ErrNil(t, ds.Append(56, bankdata.LowerIncome, 4.857, nil, 0), "Append")
	test.ErrNil(t, ds.Append(nil, bankdata.HigherIncome, 1.2664, nil, 1), "Append")
	test.ErrNil(t, ds.Append(33, nil, -0.5, nil, 1), "Append")
	return ds
}

func TestFieldName(t *testing.T) {
	for col, want := range map[string]string{
		"age":            "age",
		"emp.var.rate":   "emp_var_rate",
		"cons.price.idx": "cons_price_idx",
		"day_of_week":    "day_of_week",
		"Y":              "y",
		"3m":             "f3m",
		"":               "f",
	} {
		test.MustBe(t, FieldName(col), want, col)
	}
}

func TestPlan(t *testing.T) {
	specs, err := Plan(canonical(t), 2)
	test.ErrNil(t, err, "Plan")
	// poutcome holds nothing but Missing
	test.MustBe(t, specs, []FieldSpec{
		{Column: "age", Name: "age", Kind: bankdata.KindInt, Min: 33, Max: 56},
		{Column: "job", Name: "job", Kind: bankdata.KindString},
		{Column: "euribor3m", Name: "euribor3m", Kind: bankdata.KindFloat, Scale: 2, Min: -50, Max: 486},
		{Column: "y", Name: "y", Kind: bankdata.KindInt, Min: 0, Max: 1},
	})

	clash := bankdata.MustNewDataset("a.b", "a_b")
	test.ErrNil(t, clash.Append(1, 2), "Append")
	if _, err := Plan(clash, 0); err == nil {
		t.Fatal("expected error for clashing field names")
	}
}

func TestRecords(t *testing.T) {
	ds := canonical(t)
	specs, err := Plan(ds, 3)
	test.ErrNil(t, err, "Plan")
	want := map[string][]gopilosa.Record{
		"age": {
			gopilosa.FieldValue{ColumnID: 0, Value: 56},
			gopilosa.FieldValue{ColumnID: 2, Value: 33},
		},
		"job": {
			gopilosa.Column{ColumnID: 0, RowKey: bankdata.LowerIncome},
			gopilosa.Column{ColumnID: 1, RowKey: bankdata.HigherIncome},
		},
		"euribor3m": {
			gopilosa.FieldValue{ColumnID: 0, Value: 4857},
			gopilosa.FieldValue{ColumnID: 1, Value: 1266},
			gopilosa.FieldValue{ColumnID: 2, Value: -500},
		},
	}
	for _, spec := range specs[:3] {
		recs, err := spec.Records(ds)
		test.ErrNil(t, err, spec.Column)
		test.MustBe(t, recs, want[spec.Column], spec.Column)
	}
}

func TestIndex(t *testing.T) {
	client := newFakeClient()
	ix := NewIndexer(client, OptIndexerIndex("marketing"), OptIndexerScale(1))
	specs, err := ix.Index(context.Background(), canonical(t))
	test.ErrNil(t, err, "Index")
	test.MustBe(t, len(specs), 4)
	test.MustBe(t, client.synced, []string{"marketing/age", "marketing/euribor3m", "marketing/job", "marketing/y"})
	sort.Strings(client.ensured)
	test.MustBe(t, client.ensured, []string{"age", "euribor3m", "job", "y"})
	test.MustBe(t, client.records["euribor3m"], []gopilosa.Record{
		gopilosa.FieldValue{ColumnID: 0, Value: 49},
		gopilosa.FieldValue{ColumnID: 1, Value: 13},
		gopilosa.FieldValue{ColumnID: 2, Value: -5},
	})
	test.MustBe(t, client.records["y"], []gopilosa.Record{
		gopilosa.FieldValue{ColumnID: 0, Value: 0},
		gopilosa.FieldValue{ColumnID: 1, Value: 1},
		gopilosa.FieldValue{ColumnID: 2, Value: 1},
	})

	client = newFakeClient()
	client.failOn = "job"
	_, err = NewIndexer(client).Index(context.Background(), canonical(t))
	if err == nil {
		t.Fatal("expected import error")
	}
}

func TestIndexConversionErrorStartsNoImports(t *testing.T) {
	ds := canonical(t)
	client := newFakeClient()
	// euribor3m comes after age and job, whose imports would otherwise
	// already be running when its conversion fails.
	client.onSync = func() {
		test.ErrNil(t, ds.Set(0, "euribor3m", math.NaN()), "Set")
	}
	_, err := NewIndexer(client).Index(context.Background(), ds)
	if err == nil || !strings.Contains(err.Error(), "converting euribor3m") {
		t.Fatalf("expected conversion error, got %v", err)
	}
	client.mu.Lock()
	defer client.mu.Unlock()
	test.MustBe(t, len(client.ensured), 0, "fields ensured")
	test.MustBe(t, len(client.records), 0, "fields imported")
}
