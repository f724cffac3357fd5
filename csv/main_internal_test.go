package csv

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/pilosa/bankdata"
	"github.com/pilosa/bankdata/test"
)

func TestParseS3URL(t *testing.T) {
	cases := []struct {
		url    string
		bucket string
		key    string
		err    bool
	}{
		{url: "s3://bank/data/bank-additional-full.csv", bucket: "bank", key: "data/bank-additional-full.csv"},
		{url: "s3://bank/x", bucket: "bank", key: "x"},
		{url: "s3://bank", err: true},
		{url: "s3://bank/", err: true},
		{url: "s3:///key", err: true},
	}
	for _, c := range cases {
		bucket, key, err := parseS3URL(c.url)
		if c.err {
			if err == nil {
				t.Errorf("%s: expected error", c.url)
			}
			continue
		}
		test.ErrNil(t, err, c.url)
		test.MustBe(t, bucket, c.bucket, c.url)
		test.MustBe(t, key, c.key, c.url)
	}
}

const mainFile = `"age";"job";"marital";"education";"default";"housing";"loan";"contact";"month";"day_of_week";"duration";"campaign";"pdays";"previous";"poutcome";"emp.var.rate";"cons.price.idx";"cons.conf.idx";"euribor3m";"nr.employed";"y"
56;"housemaid";"married";"basic.4y";"no";"no";"no";"telephone";"may";"mon";261;1;999;0;"nonexistent";1.1;93.994;-36.4;4.857;5191;"no"
41;"admin.";"unknown";"university.degree";"no";"yes";"no";"cellular";"jun";"fri";1575;1;3;1;"success";-1.8;92.893;-46.2;1.266;5099.1;"yes"
`

func TestMainRun(t *testing.T) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	m := NewMain()
	m.Files = []string{test.MustTempFile(t, mainFile)}
	m.Registry = "marital"
	m.SetOutput(stdout, stderr)
	test.ErrNil(t, m.Run(), "Run")

	out := stdout.String()
	line := func(v string, n int) string { return fmt.Sprintf("  %-20s %d\n", v, n) }
	for _, want := range []string{
		"records: 2\n",
		"poutcome:\n" + line("1", 1) + line("<missing>", 1),
		"marital:\n" + line("married", 1) + line("<missing>", 1),
		"job:\n" + line("higher income", 1) + line("lower income", 1),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestMainLoadViolation(t *testing.T) {
	m := NewMain()
	m.Files = []string{test.MustTempFile(t, strings.Replace(mainFile, `"admin."`, `"astronaut"`, 1))}
	m.SetOutput(&bytes.Buffer{}, &bytes.Buffer{})
	_, err := m.Load()
	sv, ok := bankdata.AsSchemaViolation(err)
	if !ok {
		t.Fatalf("expected SchemaViolation, got %v", err)
	}
	test.MustBe(t, sv.Column, "job")
}

func TestMainRegistryFile(t *testing.T) {
	m := NewMain()
	m.Files = []string{test.MustTempFile(t, mainFile)}
	m.RegistryFile = test.MustTempFile(t, `
extends: default
columns:
  - name: housing
    pairs:
      - {from: "yes", to: 1}
      - {from: "no", to: 0}
`)
	m.SetOutput(&bytes.Buffer{}, &bytes.Buffer{})
	ds, err := m.Load()
	test.ErrNil(t, err, "Load")
	housing, _ := ds.Column("housing")
	test.MustBe(t, housing, []interface{}{int64(0), int64(1)})

	m.Comma = ";;"
	if _, err := m.Load(); err == nil {
		t.Fatal("expected error for multi-character separator")
	}
}
