package importance_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pilosa/bankdata"
	"github.com/pilosa/bankdata/importance"
	"github.com/pilosa/bankdata/test"
)

func TestEncode(t *testing.T) {
	ds := bankdata.MustNewDataset("age", "job", "marital", "y")
	for _, r := range [][]interface{}{
		{20, bankdata.NoIncome, "single", 1},
		{40, bankdata.HigherIncome, "married", 0},
		{60, nil, "married", 0},
		{nil, bankdata.NoIncome, "single", 1},
		{30, bankdata.LowerIncome, "single", nil},
	} {
		test.ErrNil(t, ds.Append(r...), "Append")
	}
	a := importance.NewAnalyzer(
		importance.OptAnalyzerFeatures("age", "job"),
		importance.OptAnalyzerAgeBins(2),
	)
	enc, err := a.Encode(ds)
	test.ErrNil(t, err, "Encode")
	test.MustBe(t, enc.Features, []string{"age", "job"})
	test.MustBe(t, enc.Y, []int{1, 0, 0, 1})
	test.MustBe(t, enc.AgeBins.Len(), 2)
	// ages 20 and 40 share the first bin, Missing sorts last
	test.MustBe(t, enc.X[0], []int{0, 0, 1, 2})
	// higher income < no income < Missing
	test.MustBe(t, enc.X[1], []int{1, 0, 2, 1})

	// the input is untouched
	age, _ := ds.Value(0, "age")
	test.MustBe(t, age, int64(20))
}

func TestEncodeErrors(t *testing.T) {
	raw := bankdata.MustNewDataset("job", "y")
	test.ErrNil(t, raw.Append("admin.", "yes"), "Append")
	a := importance.NewAnalyzer(importance.OptAnalyzerFeatures("job"))
	if _, err := a.Encode(raw); err == nil {
		t.Error("expected error for unprocessed outcome")
	}
	if _, err := a.Encode(bankdata.MustNewDataset("job")); err == nil {
		t.Error("expected error without outcome")
	}
	a = importance.NewAnalyzer(importance.OptAnalyzerFeatures("salary"))
	if _, err := a.Encode(raw); err == nil {
		t.Error("expected error for absent feature")
	}
	empty := bankdata.MustNewDataset("job", "y")
	test.ErrNil(t, empty.Append("admin.", nil), "Append")
	if _, err := importance.NewAnalyzer(importance.OptAnalyzerFeatures("job")).Encode(empty); err == nil {
		t.Error("expected error with no known outcome")
	}
}

func jobDecides(t *testing.T) *bankdata.Dataset {
	ds := bankdata.MustNewDataset("age", "job", "y")
	for i := 0; i < 40; i++ {
		job, y := bankdata.NoIncome, 1
		if (i/2)%2 == 0 {
			job, y = bankdata.HigherIncome, 0
		}
		age := 20
		if i%2 == 0 {
			age = 60
		}
		test.ErrNil(t, ds.Append(age, job, y), "Append")
	}
	return ds
}

func TestCompute(t *testing.T) {
	tr := bankdata.NewMapTranslator()
	a := importance.NewAnalyzer(
		importance.OptAnalyzerFeatures("age", "job"),
		importance.OptAnalyzerTranslator(tr),
		importance.OptAnalyzerForest(
			importance.OptForestTrees(4),
			importance.OptForestMaxFeatures(2),
			importance.OptForestBootstrap(false),
		),
	)
	imps, err := a.Compute(context.Background(), jobDecides(t))
	test.ErrNil(t, err, "Compute")
	test.MustBe(t, imps, []importance.Importance{
		{Feature: "age", Score: 0},
		{Feature: "job", Score: 1},
	})

	// the encodings went through the given translator
	val, err := tr.Get("job", 0)
	test.ErrNil(t, err, "Get")
	test.MustBe(t, val, bankdata.HigherIncome)
}

func TestMainRun(t *testing.T) {
	file := test.MustTempFile(t, `"age";"job";"marital";"education";"default";"housing";"loan";"contact";"month";"day_of_week";"duration";"campaign";"pdays";"previous";"poutcome";"emp.var.rate";"cons.price.idx";"cons.conf.idx";"euribor3m";"nr.employed";"y"
56;"housemaid";"married";"basic.4y";"no";"no";"no";"telephone";"may";"mon";261;1;999;0;"nonexistent";1.1;93.994;-36.4;4.857;5191;"no"
41;"admin.";"unknown";"university.degree";"no";"yes";"no";"cellular";"jun";"fri";1575;1;3;1;"success";-1.8;92.893;-46.2;1.266;5099.1;"yes"
33;"student";"single";"unknown";"no";"yes";"yes";"cellular";"jun";"thu";310;2;999;0;"failure";-1.8;92.893;-46.2;1.266;5099.1;"yes"
`)
	for _, backend := range []string{"memory", "bolt", "leveldb"} {
		t.Run(backend, func(t *testing.T) {
			stdout := &bytes.Buffer{}
			m := importance.NewMain()
			m.Files = []string{file}
			m.Trees = 3
			m.Translator = backend
			m.TranslatorPath = filepath.Join(test.MustTempDir(t), "labels")
			m.SetOutput(stdout, &bytes.Buffer{})
			test.ErrNil(t, m.Run(), "Run")
			out := stdout.String()
			for _, f := range importance.DefaultFeatures {
				if !strings.Contains(out, f) {
					t.Errorf("output missing %q:\n%s", f, out)
				}
			}
		})
	}

	m := importance.NewMain()
	m.Files = []string{file}
	m.Translator = "redis"
	m.SetOutput(&bytes.Buffer{}, &bytes.Buffer{})
	if err := m.Run(); err == nil {
		t.Fatal("expected error for unknown translator")
	}
}
