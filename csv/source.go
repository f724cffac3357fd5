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
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/pilosa/bankdata"
	"github.com/pkg/errors"
)

// DefaultNAValues are the cell values read as Missing unless WithNAValues says
// otherwise.
var DefaultNAValues = []string{"", "?", "NA"}

// Source loads semicolon separated bank marketing files into a single
// bankdata.Dataset. Files are read in the order they were added and
// concatenated, so a training file followed by a test file yields one
// dataset.
//
// The Source takes care of retrying failed reads/downloads. A retry always
// re-reads the whole file; rows from a failed attempt are discarded.
type Source struct {
	files      []OpenStringer
	maxRetries int
	comma      rune
	na         map[string]struct{}
	registry   *bankdata.Registry
	schema     Schema
	s3Region   string
	log        bankdata.Logger
}

// NewSource creates a Source. The files to read are set by using Options
// defined in this package. e.g.
//
// src := NewSource(WithURLs([]string{"train.csv", "https://example.com/test.csv", "s3://bucket/extra.csv"}))
func NewSource(options ...Option) *Source {
	src := &Source{
		maxRetries: 3,
		comma:      ';',
		schema:     BankAdditional,
		registry:   bankdata.DefaultRegistry(),
		log:        bankdata.NopLogger{},
	}
	src.setNA(DefaultNAValues)
	for _, opt := range options {
		opt(src)
	}
	return src
}

// Option is a functional option to pass to NewSource.
type Option func(*Source)

// WithURLs returns an Option which adds the slice of URLs to the set of files
// a Source will read from. The URLs may be HTTP(S), s3://bucket/key, or local
// files.
func WithURLs(urls []string) Option {
	return func(s *Source) {
		for _, url := range urls {
			s.files = append(s.files, urlOpener{url: url, src: s})
		}
	}
}

// WithOpenStringers returns an Option which adds the slice of OpenStringers to
// the set of files a Source will read from.
func WithOpenStringers(os []OpenStringer) Option {
	return func(s *Source) {
		s.files = append(s.files, os...)
	}
}

// WithMaxRetries returns an Option which sets the max number of attempts per
// file on a Source.
func WithMaxRetries(maxRetries int) Option {
	return func(s *Source) {
		if maxRetries > 0 {
			s.maxRetries = maxRetries
		}
	}
}

// WithNAValues replaces the set of cell values which are read as Missing.
func WithNAValues(na []string) Option {
	return func(s *Source) {
		s.setNA(na)
	}
}

// WithRegistry sets the registry the loaded data will be processed with. A
// cell that is an NA value but also a source in its column's mapping table is
// kept as read, so that the table decides what it means (an empty month is
// month 0, not Missing). A nil Registry applies the NA values everywhere.
func WithRegistry(reg *bankdata.Registry) Option {
	return func(s *Source) {
		s.registry = reg
	}
}

// WithComma sets the field separator. The bank files use ';'.
func WithComma(comma rune) Option {
	return func(s *Source) {
		s.comma = comma
	}
}

// WithSchema sets the columns every file must have and how they are parsed.
// A nil Schema accepts any header and reads every cell as a string.
func WithSchema(schema Schema) Option {
	return func(s *Source) {
		s.schema = schema
	}
}

// WithS3Region sets the AWS region used for s3:// URLs.
func WithS3Region(region string) Option {
	return func(s *Source) {
		s.s3Region = region
	}
}

// WithLogger sets the logger on which retries and per-file progress are
// reported.
func WithLogger(l bankdata.Logger) Option {
	return func(s *Source) {
		s.log = l
	}
}

func (s *Source) setNA(na []string) {
	s.na = make(map[string]struct{}, len(na))
	for _, v := range na {
		s.na[v] = struct{}{}
	}
}

// Opener is an interface to a resource which can be repeatedly Opened (and the
// returned ReadCloser can be subsequently read). Each call to Open should
// return a ReadCloser which reads from the beginning of the resource. In the
// case of an error while reading, Open will be called again to retry reading
// the entire resource.
type Opener interface {
	Open() (io.ReadCloser, error)
}

// OpenStringer is an Opener which also has a String method which should return
// the name of the resource being opened (e.g. a file or URL).
type OpenStringer interface {
	fmt.Stringer
	Opener
}

// urlOpener turns a URL or file name into an OpenStringer.
type urlOpener struct {
	url string
	src *Source
}

func (u urlOpener) Open() (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(u.url, "s3://"):
		bucket, key, err := parseS3URL(u.url)
		if err != nil {
			return nil, err
		}
		return openS3(u.src.s3Region, bucket, key)
	case strings.HasPrefix(u.url, "http://"), strings.HasPrefix(u.url, "https://"):
		resp, err := http.Get(u.url)
		if err != nil {
			return nil, errors.Wrap(err, "getting via http")
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, errors.Errorf("getting via http: status %s", resp.Status)
		}
		return resp.Body, nil
	default:
		f, err := os.Open(u.url)
		if err != nil {
			return nil, errors.Wrap(err, "opening file")
		}
		return f, nil
	}
}

func (u urlOpener) String() string {
	return u.url
}

// LoadError is a permanent problem with a file's contents: a bad header, a
// schema mismatch, or a cell which can't be parsed. Loading stops at the first
// one. Record is the 1-based data record number, or 0 for the header.
type LoadError struct {
	File   string
	Record int
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	switch {
	case e.Record == 0:
		return fmt.Sprintf("%s: header: %v", e.File, e.Err)
	case e.Column != "":
		return fmt.Sprintf("%s: record %d, column %s: %v", e.File, e.Record, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: record %d: %v", e.File, e.Record, e.Err)
}

// AsLoadError unwraps err and returns the LoadError at its root, if that is
// what it is.
func AsLoadError(err error) (*LoadError, bool) {
	le, ok := errors.Cause(err).(*LoadError)
	return le, ok
}

// Load reads every file and returns their concatenation. All files must have
// the same header.
func (s *Source) Load() (*bankdata.Dataset, error) {
	if len(s.files) == 0 {
		return nil, errors.New("no files to load")
	}
	var ds *bankdata.Dataset
	for _, f := range s.files {
		part, err := s.loadFile(f)
		if err != nil {
			return nil, err
		}
		s.log.Printf("loaded %d records from %s", part.Len(), f)
		if ds == nil {
			ds = part
			continue
		}
		if err := ds.Concat(part); err != nil {
			return nil, errors.Wrapf(err, "concatenating %s", f)
		}
	}
	return ds, nil
}

func (s *Source) loadFile(f OpenStringer) (*bankdata.Dataset, error) {
	var err error
	for try := 1; try <= s.maxRetries; try++ {
		var ds *bankdata.Dataset
		ds, err = s.loadTry(f)
		if err == nil {
			return ds, nil
		}
		if _, ok := err.(*LoadError); ok {
			return nil, err
		}
		s.log.Printf("reading %s failed (attempt %d of %d): %v", f, try, s.maxRetries, err)
	}
	return nil, errors.Wrapf(err, "couldn't fetch '%s' - tried %d times, latest", f, s.maxRetries)
}

func (s *Source) loadTry(f OpenStringer) (*bankdata.Dataset, error) {
	content, err := f.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening")
	}
	defer content.Close()

	r := csv.NewReader(content)
	r.Comma = s.comma
	r.ReuseRecord = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, &LoadError{File: f.String(), Err: errors.New("file is empty")}
	} else if err != nil {
		return nil, s.readError(f, 0, err)
	}
	header = append([]string(nil), header...)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	ds, err := bankdata.NewDataset(header...)
	if err != nil {
		return nil, &LoadError{File: f.String(), Err: err}
	}
	if err := s.schema.Check(header); err != nil {
		return nil, &LoadError{File: f.String(), Err: err}
	}
	kinds := make([]bankdata.Kind, len(header))
	tables := make([]*bankdata.MappingTable, len(header))
	for i, h := range header {
		kinds[i] = s.schema.Kind(h)
		tables[i] = s.table(h)
	}

	vals := make([]interface{}, len(header))
	for rec := 1; ; rec++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, s.readError(f, rec, err)
		}
		for i, cell := range row {
			v, err := s.parseCell(cell, kinds[i], tables[i])
			if err != nil {
				return nil, &LoadError{File: f.String(), Record: rec, Column: header[i], Err: err}
			}
			vals[i] = v
		}
		if err := ds.Append(vals...); err != nil {
			return nil, &LoadError{File: f.String(), Record: rec, Err: err}
		}
	}
	return ds, nil
}

// readError separates malformed CSV, which retrying won't fix, from I/O
// errors, which it might.
func (s *Source) readError(f OpenStringer, rec int, err error) error {
	if pe, ok := err.(*csv.ParseError); ok {
		return &LoadError{File: f.String(), Record: rec, Err: pe}
	}
	return errors.Wrapf(err, "reading record %d", rec)
}

// table returns the mapping table governing column, or nil.
func (s *Source) table(column string) *bankdata.MappingTable {
	if s.registry == nil {
		return nil
	}
	t, err := s.registry.MappingFor(column)
	if err != nil {
		return nil
	}
	return t
}

func (s *Source) parseCell(cell string, kind bankdata.Kind, t *bankdata.MappingTable) (interface{}, error) {
	if _, ok := s.na[cell]; ok {
		if t == nil || kind != bankdata.KindString {
			return bankdata.Missing, nil
		}
		if _, ok := t.Lookup(cell); !ok {
			return bankdata.Missing, nil
		}
	}
	return parseValue(cell, kind)
}
