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

package csv

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"github.com/pilosa/bankdata"
	"github.com/pilosa/bankdata/termstat"
	"github.com/pkg/errors"
)

// Main holds the options for loading and cleaning bank marketing files.
type Main struct {
	Files        []string      `help:"Comma separated list of files to load and concatenate. Local paths, http(s):// and s3://bucket/key URLs are accepted."`
	Comma        string        `help:"Field separator."`
	NAValues     []string      `help:"Comma separated list of cell values read as missing."`
	Registry     string        `help:"Shipped mapping registry to apply: default or marital."`
	RegistryFile string        `help:"YAML file describing the mapping registry. Overrides --registry."`
	MaxRetries   int           `help:"Attempts per file before giving up."`
	S3Region     string        `help:"AWS region for s3:// URLs."`
	Stats        time.Duration `help:"Interval at which pipeline stats are written to stderr. 0 disables them."`
	Verbose      bool          `help:"Enable debug logging."`

	stdout io.Writer
	stderr io.Writer
}

// NewMain returns a new Main.
func NewMain() *Main {
	return &Main{
		Files:      []string{"bank-additional-full.csv"},
		Comma:      ";",
		NAValues:   DefaultNAValues,
		Registry:   "default",
		MaxRetries: 3,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}
}

// SetOutput sets where the summary and stats are written.
func (m *Main) SetOutput(stdout, stderr io.Writer) {
	m.stdout, m.stderr = stdout, stderr
}

// Logger returns the logger selected by the Verbose flag.
func (m *Main) Logger() bankdata.Logger {
	if m.Verbose {
		return bankdata.VerboseLogger{Logger: log.New(m.stderr, "", log.LstdFlags)}
	}
	return bankdata.StdLogger{Logger: log.New(m.stderr, "", log.LstdFlags)}
}

// LoadRegistry returns the registry chosen by the Registry and RegistryFile
// flags.
func (m *Main) LoadRegistry() (*bankdata.Registry, error) {
	if m.RegistryFile != "" {
		return bankdata.LoadRegistryFile(m.RegistryFile)
	}
	return bankdata.RegistryByName(m.Registry)
}

// Load reads and processes the configured files and returns the canonical
// dataset. Other commands embed this step.
func (m *Main) Load() (*bankdata.Dataset, error) {
	comma := []rune(m.Comma)
	if len(comma) != 1 {
		return nil, errors.Errorf("separator must be a single character, got %q", m.Comma)
	}
	logger := m.Logger()
	reg, err := m.LoadRegistry()
	if err != nil {
		return nil, errors.Wrap(err, "getting registry")
	}

	src := NewSource(
		WithURLs(m.Files),
		WithComma(comma[0]),
		WithNAValues(m.NAValues),
		WithRegistry(reg),
		WithMaxRetries(m.MaxRetries),
		WithS3Region(m.S3Region),
		WithLogger(logger),
	)
	ds, err := src.Load()
	if err != nil {
		return nil, errors.Wrap(err, "loading")
	}

	var stats bankdata.Statter = bankdata.NopStatter{}
	if m.Stats > 0 {
		coll := termstat.NewCollector(m.stderr, m.Stats)
		defer coll.Close()
		stats = coll
	}
	p := bankdata.NewProcessor(
		bankdata.OptProcessorRegistry(reg),
		bankdata.OptProcessorLogger(logger),
		bankdata.OptProcessorStatter(stats),
	)
	if err := p.ProcessAll(ds); err != nil {
		return nil, errors.Wrap(err, "processing")
	}
	return ds, nil
}

// Run loads and processes the files, then prints the number of records and
// the distribution of every governed column.
func (m *Main) Run() error {
	start := time.Now()
	ds, err := m.Load()
	if err != nil {
		return err
	}
	reg, err := m.LoadRegistry()
	if err != nil {
		return errors.Wrap(err, "getting registry")
	}
	fmt.Fprintf(m.stdout, "records: %d\n", ds.Len())
	for _, col := range reg.Columns() {
		if !ds.HasColumn(col) {
			continue
		}
		vals, _ := ds.Column(col)
		fmt.Fprintf(m.stdout, "%s:\n", col)
		for _, vc := range valueCounts(vals) {
			fmt.Fprintf(m.stdout, "  %-20s %d\n", label(vc.value), vc.count)
		}
	}
	m.Logger().Debugf("processed in %s", time.Since(start))
	return nil
}

type valueCount struct {
	value interface{}
	count int
}

func valueCounts(vals []interface{}) []valueCount {
	counts := make(map[interface{}]int)
	for _, v := range vals {
		counts[v]++
	}
	ret := make([]valueCount, 0, len(counts))
	for v, n := range counts {
		ret = append(ret, valueCount{value: v, count: n})
	}
	sort.Slice(ret, func(i, j int) bool { return bankdata.LessValue(ret[i].value, ret[j].value) })
	return ret
}

func label(v interface{}) string {
	if bankdata.IsMissing(v) {
		return "<missing>"
	}
	return bankdata.FormatValue(v)
}
