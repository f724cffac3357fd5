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

package importance

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"
	"github.com/pilosa/bankdata"
	"github.com/pilosa/bankdata/boltdb"
	"github.com/pilosa/bankdata/csv"
	"github.com/pilosa/bankdata/leveldb"
	"github.com/pkg/errors"
)

// Main holds the options for ranking features of a dataset.
type Main struct {
	Files          []string `help:"Comma separated list of files to load and concatenate."`
	RegistryFile   string   `help:"YAML file describing the mapping registry."`
	S3Region       string   `help:"AWS region for s3:// URLs."`
	Features       []string `help:"Columns to rank."`
	AgeBins        int      `help:"Number of equal-width age intervals. 0 leaves age as is."`
	Trees          int      `help:"Number of trees in the forest."`
	MaxDepth       int      `help:"Maximum tree depth. 0 is unlimited."`
	Seed           int      `help:"Random seed."`
	Concurrency    int      `help:"Number of trees trained at once."`
	Translator     string   `help:"Where label encodings are kept: memory, bolt or leveldb."`
	TranslatorPath string   `help:"File (bolt) or directory (leveldb) for persistent label encodings."`
	Verbose        bool     `help:"Enable debug logging."`

	stdout io.Writer
	stderr io.Writer
}

// NewMain returns a new Main.
func NewMain() *Main {
	return &Main{
		Files:          []string{"bank-additional-full.csv"},
		Features:       DefaultFeatures,
		AgeBins:        DefaultAgeBins,
		Trees:          100,
		Concurrency:    4,
		Translator:     "memory",
		TranslatorPath: "bankdata-labels",
		stdout:         os.Stdout,
		stderr:         os.Stderr,
	}
}

// SetOutput sets where the ranking and logs are written.
func (m *Main) SetOutput(stdout, stderr io.Writer) {
	m.stdout, m.stderr = stdout, stderr
}

// Run loads and processes the files, fits the forest and prints the features
// from least to most important.
func (m *Main) Run() (err error) {
	loader := csv.NewMain()
	loader.Files = m.Files
	loader.RegistryFile = m.RegistryFile
	loader.S3Region = m.S3Region
	loader.Verbose = m.Verbose
	loader.SetOutput(m.stdout, m.stderr)
	ds, err := loader.Load()
	if err != nil {
		return err
	}

	tr, closer, err := m.openTranslator()
	if err != nil {
		return errors.Wrap(err, "opening translator")
	}
	defer func() {
		if cerr := closer(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "closing translator")
		}
	}()

	a := NewAnalyzer(
		OptAnalyzerFeatures(m.Features...),
		OptAnalyzerAgeBins(m.AgeBins),
		OptAnalyzerTranslator(tr),
		OptAnalyzerLogger(loader.Logger()),
		OptAnalyzerForest(
			OptForestTrees(m.Trees),
			OptForestMaxDepth(m.MaxDepth),
			OptForestSeed(int64(m.Seed)),
			OptForestConcurrency(m.Concurrency),
		),
	)
	imps, err := a.Compute(context.Background(), ds)
	if err != nil {
		return errors.Wrap(err, "computing importance")
	}
	writeImportances(m.stdout, imps)
	return nil
}

func (m *Main) openTranslator() (bankdata.Translator, func() error, error) {
	switch m.Translator {
	case "", "memory":
		return bankdata.NewMapTranslator(), func() error { return nil }, nil
	case "bolt":
		bt, err := boltdb.NewTranslator(m.TranslatorPath, m.Features...)
		if err != nil {
			return nil, nil, err
		}
		return bt, bt.Close, nil
	case "leveldb":
		lt, err := leveldb.NewTranslator(m.TranslatorPath, m.Features...)
		if err != nil {
			return nil, nil, err
		}
		return lt, lt.Close, nil
	}
	return nil, nil, errors.Errorf("unknown translator '%s'", m.Translator)
}

func writeImportances(w io.Writer, imps []Importance) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.Style().Format.Header = text.FormatDefault
	t.SetTitle("%s", "feature importance")
	t.AppendHeader(table.Row{"feature", "importance"})
	for _, imp := range imps {
		t.AppendRow(table.Row{imp.Feature, fmt.Sprintf("%.4f", imp.Score)})
	}
	t.Render()
}
