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

package bankdata_test

import (
	"testing"

	"github.com/pilosa/bankdata"
	"github.com/pilosa/bankdata/test"
)

func TestNewDatasetHeader(t *testing.T) {
	if _, err := bankdata.NewDataset("a", "b", "a"); err == nil {
		t.Fatal("expected error for duplicate column")
	}
	if _, err := bankdata.NewDataset("a", ""); err == nil {
		t.Fatal("expected error for empty column name")
	}
	ds, err := bankdata.NewDataset("a", "b")
	test.ErrNil(t, err, "NewDataset")
	test.MustBe(t, ds.Header(), []string{"a", "b"})
	test.MustBe(t, ds.Len(), 0)
}

func TestDatasetAppend(t *testing.T) {
	ds := bankdata.MustNewDataset("age", "job", "rate")
	test.ErrNil(t, ds.Append(41, "admin.", float32(1.5)), "Append")
	test.ErrNil(t, ds.AppendRecord(map[string]interface{}{"age": int64(30)}), "AppendRecord")
	if err := ds.Append(1, 2); err == nil {
		t.Fatal("expected error for short record")
	}
	if err := ds.Append(struct{}{}, "x", 1); err == nil {
		t.Fatal("expected error for unsupported value")
	}
	if err := ds.AppendRecord(map[string]interface{}{"salary": 1}); err == nil {
		t.Fatal("expected error for unknown column")
	}
	test.MustBe(t, ds.Len(), 2)
	test.MustBe(t, ds.Row(0), []interface{}{int64(41), "admin.", float64(1.5)})
	test.MustBe(t, ds.Record(1), map[string]interface{}{
		"age": int64(30), "job": bankdata.Missing, "rate": bankdata.Missing,
	})

	v, err := ds.Value(0, "job")
	test.ErrNil(t, err, "Value")
	test.MustBe(t, v, "admin.")
	if _, err := ds.Value(2, "job"); err == nil {
		t.Fatal("expected error for out of range row")
	}
	test.ErrNil(t, ds.Set(1, "job", "retired"), "Set")
	v, _ = ds.Value(1, "job")
	test.MustBe(t, v, "retired")

	_, err = ds.Column("salary")
	if ce, ok := err.(*bankdata.ColumnError); !ok || ce.Column != "salary" {
		t.Fatalf("expected ColumnError for salary, got %v", err)
	}
}

func TestDatasetSelectFilterConcat(t *testing.T) {
	ds := bankdata.MustNewDataset("age", "marital", "y")
	test.ErrNil(t, ds.Append(25, "single", 1), "Append")
	test.ErrNil(t, ds.Append(50, nil, 0), "Append")
	test.ErrNil(t, ds.Append(70, "married", 1), "Append")

	sel, err := ds.Select("y", "age")
	test.ErrNil(t, err, "Select")
	test.MustBe(t, sel.Header(), []string{"y", "age"})
	test.MustBe(t, sel.Row(2), []interface{}{int64(1), int64(70)})

	marital, _ := ds.Column("marital")
	known := ds.Filter(func(row int) bool { return !bankdata.IsMissing(marital[row]) })
	test.MustBe(t, known.Len(), 2)
	ages, _ := known.Column("age")
	test.MustBe(t, ages, []interface{}{int64(25), int64(70)})

	clone := ds.Clone()
	test.ErrNil(t, clone.Set(0, "age", 26), "Set")
	v, _ := ds.Value(0, "age")
	test.MustBe(t, v, int64(25), "clone is independent")

	test.ErrNil(t, ds.Concat(clone), "Concat")
	test.MustBe(t, ds.Len(), 6)
	v, _ = ds.Value(3, "age")
	test.MustBe(t, v, int64(26))
	if err := ds.Concat(sel); err == nil {
		t.Fatal("expected header mismatch")
	}

	test.ErrNil(t, ds.Derive("age", "age_bracket"), "Derive")
	test.MustBe(t, ds.Header(), []string{"age", "marital", "y", "age_bracket"})
	if err := ds.Derive("age", "y"); err == nil {
		t.Fatal("expected error deriving onto an existing column")
	}
}

func TestColumnKind(t *testing.T) {
	ds := bankdata.MustNewDataset("i", "f", "s", "e")
	test.ErrNil(t, ds.Append(1, 1, "a", nil), "Append")
	test.ErrNil(t, ds.Append(2, 2.5, 3, nil), "Append")
	for col, want := range map[string]bankdata.Kind{
		"i": bankdata.KindInt,
		"f": bankdata.KindFloat,
		"s": bankdata.KindString,
		"e": bankdata.KindEmpty,
	} {
		k, err := bankdata.ColumnKind(ds, col)
		test.ErrNil(t, err, col)
		if k != want {
			t.Errorf("%s: got %v, want %v", col, k, want)
		}
	}
}
