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

package cmd

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pilosa/bankdata/test"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestSetAllConfig(t *testing.T) {
	cfg := test.MustTempFile(t, `registry = "nope"
files = ["train.csv", "test.csv"]
max-retries = 5
`)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	registry := fs.String("registry", "default", "")
	files := fs.StringSlice("files", []string{"bank-additional-full.csv"}, "")
	retries := fs.Int("max-retries", 3, "")
	comma := fs.String("comma", ";", "")
	test.ErrNil(t, fs.Parse([]string{"--config", cfg, "--max-retries", "7"}), "Parse")

	os.Setenv("BANKDATA_REGISTRY", "marital")
	defer os.Unsetenv("BANKDATA_REGISTRY")

	test.ErrNil(t, setAllConfig(viper.New(), fs, "BANKDATA"), "setAllConfig")
	test.MustBe(t, *registry, "marital", "env beats config")
	test.MustBe(t, *files, []string{"train.csv", "test.csv"}, "config beats default")
	test.MustBe(t, *retries, 7, "flag beats config")
	test.MustBe(t, *comma, ";", "default")
}

func TestSetAllConfigBadFile(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	test.ErrNil(t, fs.Parse([]string{"--config", "/does/not/exist.toml"}), "Parse")
	if err := setAllConfig(viper.New(), fs, "BANKDATA"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestRootCommand(t *testing.T) {
	file := test.MustTempFile(t, `"age";"job";"marital";"education";"default";"housing";"loan";"contact";"month";"day_of_week";"duration";"campaign";"pdays";"previous";"poutcome";"emp.var.rate";"cons.price.idx";"cons.conf.idx";"euribor3m";"nr.employed";"y"
56;"housemaid";"married";"basic.4y";"no";"no";"no";"telephone";"may";"mon";261;1;999;0;"nonexistent";1.1;93.994;-36.4;4.857;5191;"no"
41;"admin.";"unknown";"university.degree";"no";"yes";"no";"cellular";"jun";"fri";1575;1;3;1;"success";-1.8;92.893;-46.2;1.266;5099.1;"yes"
`)
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	rc := NewRootCommand(strings.NewReader(""), stdout, stderr)
	for _, name := range []string{"process", "analyze", "importance", "index", "publish"} {
		if _, _, err := rc.Find([]string{name}); err != nil {
			t.Errorf("finding %s: %v", name, err)
		}
	}

	rc.SetArgs([]string{"process", "--files", file})
	test.ErrNil(t, rc.Execute(), "process")
	if !strings.Contains(stdout.String(), "records: 2") {
		t.Fatalf("unexpected output:\n%s", stdout.String())
	}
	test.MustBe(t, ProcessMain.Files, []string{file})
}

func TestVersionCommand(t *testing.T) {
	stdout := &bytes.Buffer{}
	rc := NewRootCommand(strings.NewReader(""), stdout, &bytes.Buffer{})
	rc.SetArgs([]string{"version"})
	test.ErrNil(t, rc.Execute(), "version")
	test.MustBe(t, stdout.String(), "bankdata v0.0.0 (built not recorded)\n")
}

func TestReadConfigFileYAML(t *testing.T) {
	dir := test.MustTempDir(t)
	path := filepath.Join(dir, "bankdata.yaml")
	test.ErrNil(t, ioutil.WriteFile(path, []byte("registry: marital\n"), 0600), "WriteFile")
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	registry := fs.String("registry", "default", "")
	test.ErrNil(t, fs.Parse([]string{"--config", path}), "Parse")
	test.ErrNil(t, setAllConfig(viper.New(), fs, "BANKDATA"), "setAllConfig")
	test.MustBe(t, *registry, "marital")
}
