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
	"fmt"
	"io"
	"math"
	"os"

	"github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"
	"github.com/pilosa/bankdata"
	"github.com/pilosa/bankdata/csv"
	"github.com/pkg/errors"
)

// Main holds the options for printing the outcome breakdown of a dataset.
type Main struct {
	Files        []string `help:"Comma separated list of files to load and concatenate."`
	RegistryFile string   `help:"YAML file describing the mapping registry."`
	Columns      []string `help:"Columns to break the outcome down by."`
	Marital      bool     `help:"Restrict the analysis to marital status, dropping unknown statuses."`
	Ages         bool     `help:"Also print the breakdown by age bracket."`
	S3Region     string   `help:"AWS region for s3:// URLs."`
	Verbose      bool     `help:"Enable debug logging."`

	stdout io.Writer
	stderr io.Writer
}

// NewMain returns a new Main.
func NewMain() *Main {
	return &Main{
		Files:   []string{"bank-additional-full.csv"},
		Columns: []string{bankdata.ColJob, bankdata.ColEducation, bankdata.ColMonth, bankdata.ColDayOfWeek, bankdata.ColPOutcome},
		Ages:    true,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

// SetOutput sets where the report and logs are written.
func (m *Main) SetOutput(stdout, stderr io.Writer) {
	m.stdout, m.stderr = stdout, stderr
}

// Run loads and processes the files and prints one table per column.
func (m *Main) Run() error {
	loader := csv.NewMain()
	loader.Files = m.Files
	loader.RegistryFile = m.RegistryFile
	loader.S3Region = m.S3Region
	loader.Verbose = m.Verbose
	loader.SetOutput(m.stdout, m.stderr)
	if m.Marital {
		loader.Registry = "marital"
	}
	ds, err := loader.Load()
	if err != nil {
		return err
	}

	var a *Analysis
	columns := m.Columns
	if m.Marital {
		a, err = NewMarital(ds)
		columns = []string{bankdata.ColMarital}
	} else {
		a, err = New(ds)
	}
	if err != nil {
		return errors.Wrap(err, "starting analysis")
	}

	for _, col := range columns {
		if err := m.writeColumn(a, col); err != nil {
			return errors.Wrapf(err, "analysing %s", col)
		}
	}
	if m.Ages && !m.Marital {
		counts, err := a.MapAge()
		if err != nil {
			return errors.Wrap(err, "mapping ages")
		}
		writeAges(m.stdout, counts)
	}
	return nil
}

func (m *Main) writeColumn(a *Analysis, column string) error {
	groups, err := a.Groups(column)
	if err != nil {
		return err
	}
	shares, err := a.PercentageOfPopulation(column)
	if err != nil {
		return err
	}
	share := make(map[interface{}]float64, len(shares))
	for _, s := range shares {
		share[s.Key] = s.Value
	}

	t := table.NewWriter()
	t.SetOutputMirror(m.stdout)
	t.Style().Format.Header = text.FormatDefault
	t.SetTitle("%s", column)
	t.AppendHeader(table.Row{column, "contacted", "yes", "no", "probability", "% of population"})
	for _, g := range groups {
		key, err := DisplayKey(column, g.Key)
		if err != nil {
			return err
		}
		t.AppendRow(table.Row{key, g.Count, g.Yes, g.No(), formatFloat(g.Mean(), 4), formatFloat(share[g.Key], 2)})
	}
	t.Render()
	fmt.Fprintln(m.stdout)
	return nil
}

func writeAges(w io.Writer, counts []AgeCount) {
	probs := AgeSuccessProbability(counts)
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.Style().Format.Header = text.FormatDefault
	t.SetTitle("%s", bankdata.ColAgeBracket)
	t.AppendHeader(table.Row{"age", "yes", "no", "% yes"})
	for i, c := range counts {
		t.AppendRow(table.Row{c.Bracket, c.Yes, c.No, formatFloat(probs[i], 2)})
	}
	t.Render()
}

// DisplayKey renders a group key for people: month and day_of_week indexes
// are turned back into abbreviated names.
func DisplayKey(column string, key interface{}) (string, error) {
	n, ok := key.(int64)
	switch {
	case ok && column == bankdata.ColMonth:
		return bankdata.NumberToMonth(n)
	case ok && column == bankdata.ColDayOfWeek:
		return bankdata.NumberToDayOfWeek(n)
	}
	return bankdata.FormatValue(key), nil
}

func formatFloat(f float64, prec int) string {
	if math.IsNaN(f) {
		return "-"
	}
	return fmt.Sprintf("%.*f", prec, f)
}
