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
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pilosa/bankdata/csv"
	gopilosa "github.com/pilosa/go-pilosa"
	"github.com/pkg/errors"
)

// Main holds the options for importing a dataset into Pilosa.
type Main struct {
	Files        []string `help:"Comma separated list of files to load and concatenate."`
	RegistryFile string   `help:"YAML file describing the mapping registry."`
	S3Region     string   `help:"AWS region for s3:// URLs."`
	Hosts        []string `help:"Comma separated list of Pilosa hosts and ports."`
	Index        string   `help:"Pilosa index."`
	Scale        int      `help:"Decimal places kept for float columns."`
	BatchSize    int      `help:"Number of records to import at a time."`
	Verbose      bool     `help:"Enable debug logging."`

	stdout io.Writer
	stderr io.Writer
}

// NewMain returns a new Main.
func NewMain() *Main {
	return &Main{
		Files:     []string{"bank-additional-full.csv"},
		Hosts:     []string{"localhost:10101"},
		Index:     "bank",
		Scale:     3,
		BatchSize: 100000,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
	}
}

// SetOutput sets where the summary and logs are written.
func (m *Main) SetOutput(stdout, stderr io.Writer) {
	m.stdout, m.stderr = stdout, stderr
}

// Run loads and processes the files and imports the result.
func (m *Main) Run() error {
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

	client, err := gopilosa.NewClient(m.Hosts,
		gopilosa.OptClientSocketTimeout(time.Minute*60),
		gopilosa.OptClientConnectTimeout(time.Second*60))
	if err != nil {
		return errors.Wrap(err, "creating pilosa cluster client")
	}
	ix := NewIndexer(client,
		OptIndexerIndex(m.Index),
		OptIndexerScale(m.Scale),
		OptIndexerBatchSize(m.BatchSize),
		OptIndexerLogger(loader.Logger()),
	)
	specs, err := ix.Index(context.Background(), ds)
	if err != nil {
		return errors.Wrap(err, "indexing")
	}
	for _, s := range specs {
		fmt.Fprintf(m.stdout, "%-20s %-8s %s\n", s.Name, s.Kind, s.Column)
	}
	return nil
}
