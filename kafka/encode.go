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

package kafka

import (
	"encoding/binary"
	"encoding/json"
	"strings"

	"github.com/linkedin/goavro"
	"github.com/pilosa/bankdata"
	"github.com/pkg/errors"
)

// Encoder turns one record of a dataset into a message value.
type Encoder interface {
	Encode(ds *bankdata.Dataset, row int) ([]byte, error)
}

// JSONEncoder encodes records as JSON objects keyed by column name. Missing
// values are null.
type JSONEncoder struct{}

// Encode implements Encoder.
func (JSONEncoder) Encode(ds *bankdata.Dataset, row int) ([]byte, error) {
	return JSONRecord(ds, row)
}

// JSONRecord encodes row of ds as a JSON object.
func JSONRecord(ds *bankdata.Dataset, row int) ([]byte, error) {
	if row < 0 || row >= ds.Len() {
		return nil, errors.Errorf("row %d out of range [0, %d)", row, ds.Len())
	}
	rec := ds.Record(row)
	out := make(map[string]interface{}, len(rec))
	for k, v := range rec {
		if bankdata.IsMissing(v) {
			out[k] = nil
			continue
		}
		out[k] = v
	}
	data, err := json.Marshal(out)
	return data, errors.Wrap(err, "marshaling record")
}

type avroField struct {
	column string
	name   string
	kind   bankdata.Kind
	typ    string
}

// AvroEncoder encodes records with an Avro schema derived from the column
// kinds of a dataset. Every field is a union with null so that Missing
// values can be written.
type AvroEncoder struct {
	codec    *goavro.Codec
	fields   []avroField
	schemaID int32
	framed   bool
}

// AvroOption configures an AvroEncoder.
type AvroOption func(e *AvroEncoder)

// OptAvroSchemaID prefixes every message with the Confluent wire format
// header: a zero magic byte followed by the big endian schema id.
func OptAvroSchemaID(id int32) AvroOption {
	return func(e *AvroEncoder) {
		e.schemaID = id
		e.framed = true
	}
}

// AvroName turns a column name into a valid Avro field name.
func AvroName(column string) string {
	name := []byte(column)
	for i, c := range name {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_') {
			name[i] = '_'
		}
	}
	if len(name) == 0 || name[0] >= '0' && name[0] <= '9' {
		return "_" + string(name)
	}
	return string(name)
}

// AvroSchema derives a record schema from the columns of ds.
func AvroSchema(ds *bankdata.Dataset) (string, error) {
	_, schema, err := avroFields(ds)
	return schema, err
}

func avroFields(ds *bankdata.Dataset) ([]avroField, string, error) {
	fields := make([]avroField, 0, len(ds.Header()))
	names := make(map[string]string)
	parts := make([]string, 0, len(ds.Header()))
	for _, col := range ds.Header() {
		kind, err := bankdata.ColumnKind(ds, col)
		if err != nil {
			return nil, "", err
		}
		f := avroField{column: col, name: AvroName(col), kind: kind}
		if other, ok := names[f.name]; ok {
			return nil, "", errors.Errorf("columns %s and %s both map to avro field %s", other, col, f.name)
		}
		names[f.name] = col
		switch kind {
		case bankdata.KindInt:
			f.typ = "long"
		case bankdata.KindFloat:
			f.typ = "double"
		default:
			f.typ = "string"
		}
		fields = append(fields, f)
		parts = append(parts, `{"name":"`+f.name+`","type":["null","`+f.typ+`"],"default":null}`)
	}
	schema := `{"type":"record","name":"BankRecord","namespace":"com.pilosa.bankdata","fields":[` + strings.Join(parts, ",") + `]}`
	return fields, schema, nil
}

// NewAvroEncoder builds an encoder for records of ds.
func NewAvroEncoder(ds *bankdata.Dataset, opts ...AvroOption) (*AvroEncoder, error) {
	fields, schema, err := avroFields(ds)
	if err != nil {
		return nil, errors.Wrap(err, "deriving schema")
	}
	codec, err := goavro.NewCodec(schema)
	if err != nil {
		return nil, errors.Wrap(err, "compiling schema")
	}
	e := &AvroEncoder{codec: codec, fields: fields}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Schema returns the Avro schema of the encoder.
func (e *AvroEncoder) Schema() string {
	return e.codec.Schema()
}

// Native returns row of ds in the form goavro encodes.
func (e *AvroEncoder) Native(ds *bankdata.Dataset, row int) (map[string]interface{}, error) {
	if row < 0 || row >= ds.Len() {
		return nil, errors.Errorf("row %d out of range [0, %d)", row, ds.Len())
	}
	rec := make(map[string]interface{}, len(e.fields))
	for _, f := range e.fields {
		v, err := ds.Value(row, f.column)
		if err != nil {
			return nil, err
		}
		if bankdata.IsMissing(v) {
			rec[f.name] = nil
			continue
		}
		switch f.typ {
		case "long":
			n, ok := v.(int64)
			if !ok {
				return nil, errors.Errorf("column %s: %v is not an int", f.column, v)
			}
			rec[f.name] = map[string]interface{}{"long": n}
		case "double":
			var x float64
			switch vt := v.(type) {
			case int64:
				x = float64(vt)
			case float64:
				x = vt
			default:
				return nil, errors.Errorf("column %s: %v is not a number", f.column, v)
			}
			rec[f.name] = map[string]interface{}{"double": x}
		default:
			rec[f.name] = map[string]interface{}{"string": bankdata.FormatValue(v)}
		}
	}
	return rec, nil
}

// Encode implements Encoder.
func (e *AvroEncoder) Encode(ds *bankdata.Dataset, row int) ([]byte, error) {
	rec, err := e.Native(ds, row)
	if err != nil {
		return nil, err
	}
	var buf []byte
	if e.framed {
		buf = make([]byte, 5, 64)
		binary.BigEndian.PutUint32(buf[1:], uint32(e.schemaID))
	}
	data, err := e.codec.BinaryFromNative(buf, rec)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding row %d", row)
	}
	return data, nil
}
