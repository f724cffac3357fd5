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
	"io"
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// RegistryFile is the YAML form of a Registry. A null target means Missing.
//
//	extends: default
//	columns:
//	  - name: marital
//	    pairs:
//	      - {from: single, to: single}
//	      - {from: unknown, to: null}
type RegistryFile struct {
	// Extends names a shipped registry ("default" or "marital") whose tables
	// come first. Empty means start from nothing.
	Extends string        `yaml:"extends"`
	Columns []TableConfig `yaml:"columns"`
}

// TableConfig is the YAML form of a MappingTable.
type TableConfig struct {
	Name     string       `yaml:"name"`
	FoldCase bool         `yaml:"fold_case"`
	Pairs    []PairConfig `yaml:"pairs"`
}

// PairConfig is the YAML form of a Pair.
type PairConfig struct {
	From interface{} `yaml:"from"`
	To   interface{} `yaml:"to"`
}

// LoadRegistry decodes a RegistryFile from r and builds its Registry.
func LoadRegistry(r io.Reader) (*Registry, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading registry")
	}
	var rf RegistryFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, errors.Wrap(err, "decoding registry yaml")
	}
	return rf.Registry()
}

// LoadRegistryFile is LoadRegistry for a file on disk.
func LoadRegistryFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening registry file")
	}
	defer f.Close()
	reg, err := LoadRegistry(f)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return reg, nil
}

// Registry builds the Registry the file describes.
func (rf *RegistryFile) Registry() (*Registry, error) {
	var tables []*MappingTable
	if rf.Extends != "" {
		base, err := RegistryByName(rf.Extends)
		if err != nil {
			return nil, errors.Wrap(err, "extends")
		}
		tables = base.Tables()
	}
	for _, tc := range rf.Columns {
		if tc.Name == "" {
			return nil, errors.New("registry column with no name")
		}
		pairs := make([]Pair, len(tc.Pairs))
		for i, pc := range tc.Pairs {
			if pc.From == nil {
				return nil, errors.Errorf("%s: pair %d has no source", tc.Name, i)
			}
			pairs[i] = P(pc.From, pc.To)
		}
		var opts []TableOption
		if tc.FoldCase {
			opts = append(opts, FoldCase())
		}
		t, err := NewMappingTable(tc.Name, pairs, opts...)
		if err != nil {
			return nil, errors.Wrap(err, "building mapping table")
		}
		tables = append(tables, t)
	}
	return NewRegistry(tables...)
}
