package bankdata_test

import (
	"strings"
	"testing"

	"github.com/pilosa/bankdata"
	"github.com/pilosa/bankdata/test"
	"github.com/pkg/errors"
)

const contactRegistry = `
extends: default
columns:
  - name: contact
    fold_case: true
    pairs:
      - {from: cellular, to: 1}
      - {from: telephone, to: 0}
      - {from: unknown, to: null}
`

func TestLoadRegistry(t *testing.T) {
	reg, err := bankdata.LoadRegistry(strings.NewReader(contactRegistry))
	test.ErrNil(t, err, "LoadRegistry")
	test.MustBe(t, reg.Columns(),
		[]string{"y", "poutcome", "job", "education", "day_of_week", "month", "contact"})

	tbl, err := reg.MappingFor("contact")
	test.ErrNil(t, err, "MappingFor")
	test.MustBe(t, tbl.Domain(), []interface{}{int64(1), int64(0), bankdata.Missing})

	ds := bankdata.MustNewDataset("contact")
	test.ErrNil(t, ds.Append("Cellular"), "Append")
	test.ErrNil(t, ds.Append("unknown"), "Append")
	test.ErrNil(t, bankdata.NewProcessor(bankdata.OptProcessorRegistry(reg)).ProcessAll(ds), "ProcessAll")
	vals, _ := ds.Column("contact")
	test.MustBe(t, vals, []interface{}{int64(1), bankdata.Missing})
}

func TestLoadRegistryFile(t *testing.T) {
	path := test.MustTempFile(t, contactRegistry)
	reg, err := bankdata.LoadRegistryFile(path)
	test.ErrNil(t, err, "LoadRegistryFile")
	if _, err := reg.MappingFor("contact"); err != nil {
		t.Fatalf("contact not loaded: %v", err)
	}
	if _, err := bankdata.LoadRegistryFile(path + ".nope"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadRegistryErrors(t *testing.T) {
	cases := map[string]string{
		"duplicate source": `
columns:
  - name: y
    pairs:
      - {from: yes, to: 1}
      - {from: yes, to: 0}
`,
		"duplicate column": `
extends: default
columns:
  - name: y
    pairs:
      - {from: "yes", to: 1}
`,
		"bad extends": `
extends: other
`,
		"no name": `
columns:
  - pairs:
      - {from: a, to: b}
`,
		"no source": `
columns:
  - name: c
    pairs:
      - {to: b}
`,
		"bad yaml": `columns: [`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := bankdata.LoadRegistry(strings.NewReader(doc)); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	_, err := bankdata.LoadRegistry(strings.NewReader(cases["duplicate column"]))
	if errors.Cause(err) != bankdata.ErrDuplicateColumn {
		t.Fatalf("expected ErrDuplicateColumn, got %v", err)
	}
}
