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
	"context"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/Shopify/sarama"
	"github.com/Shopify/sarama/mocks"
	"github.com/elodina/go-avro"
	"github.com/pilosa/bankdata"
	"github.com/pilosa/bankdata/mock"
	"github.com/pilosa/bankdata/test"
	"github.com/pkg/errors"
)

func canonical(t *testing.T) *bankdata.Dataset {
	ds := bankdata.MustNewDataset("age", "job", "emp.var.rate", "poutcome", "y")
	test.ErrNil(t, ds.Append(56, bankdata.LowerIncome, 1.1, nil, 0), "Append")
	test.ErrNil(t, ds.Append(41, nil, -1.8, 1, 1), "Append")
	return ds
}

func TestJSONRecord(t *testing.T) {
	ds := canonical(t)
	data, err := JSONRecord(ds, 0)
	test.ErrNil(t, err, "JSONRecord")
	test.MustBe(t, string(data), `{"age":56,"emp.var.rate":1.1,"job":"lower income","poutcome":null,"y":0}`)
	data, err = JSONRecord(ds, 1)
	test.ErrNil(t, err, "JSONRecord")
	test.MustBe(t, string(data), `{"age":41,"emp.var.rate":-1.8,"job":null,"poutcome":1,"y":1}`)
	if _, err := JSONRecord(ds, 2); err == nil {
		t.Fatal("expected error for row out of range")
	}
}

func TestAvroSchema(t *testing.T) {
	schema, err := AvroSchema(canonical(t))
	test.ErrNil(t, err, "AvroSchema")
	for _, want := range []string{
		`{"name":"age","type":["null","long"],"default":null}`,
		`{"name":"job","type":["null","string"],"default":null}`,
		`{"name":"emp_var_rate","type":["null","double"],"default":null}`,
		`{"name":"poutcome","type":["null","long"],"default":null}`,
	} {
		if !strings.Contains(schema, want) {
			t.Errorf("schema missing %s:\n%s", want, schema)
		}
	}

	clash := bankdata.MustNewDataset("a.b", "a_b")
	if _, err := AvroSchema(clash); err == nil {
		t.Fatal("expected error for clashing names")
	}
	test.MustBe(t, AvroName("2nd"), "_2nd")
}

func decodeAvro(t *testing.T, schema string, data []byte) map[string]interface{} {
	t.Helper()
	codec, err := avro.ParseSchema(schema)
	if err != nil {
		t.Fatalf("parsing schema: %v", err)
	}
	reader := avro.NewGenericDatumReader()
	reader.SetSchema(codec)
	decoder := avro.NewBinaryDecoder(data)
	rec := avro.NewGenericRecord(codec)
	if err := reader.Read(rec, decoder); err != nil {
		t.Fatalf("reading generic datum: %v", err)
	}
	return rec.Map()
}

func TestAvroEncoder(t *testing.T) {
	ds := canonical(t)
	enc, err := NewAvroEncoder(ds)
	test.ErrNil(t, err, "NewAvroEncoder")
	data, err := enc.Encode(ds, 1)
	test.ErrNil(t, err, "Encode")

	got := decodeAvro(t, enc.Schema(), data)
	test.MustBe(t, got["age"], int64(41))
	test.MustBe(t, got["emp_var_rate"], -1.8)
	test.MustBe(t, got["poutcome"], int64(1))
	if got["job"] != nil {
		t.Fatalf("missing job should decode as null, got %v", got["job"])
	}

	framed, err := NewAvroEncoder(ds, OptAvroSchemaID(7))
	test.ErrNil(t, err, "NewAvroEncoder framed")
	fdata, err := framed.Encode(ds, 1)
	test.ErrNil(t, err, "Encode framed")
	test.MustBe(t, fdata[0], byte(0))
	test.MustBe(t, binary.BigEndian.Uint32(fdata[1:5]), uint32(7))
	test.MustBe(t, fdata[5:], data)
}

func TestPublish(t *testing.T) {
	ds := canonical(t)
	sp := mocks.NewSyncProducer(t, nil)
	var values []string
	for i := 0; i < ds.Len(); i++ {
		sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
			values = append(values, string(val))
			return nil
		})
	}
	stats := &mock.RecordingStatter{}
	p := NewPublisher(sp, OptPublisherTopic("marketing"), OptPublisherStatter(stats))
	n, err := p.Publish(context.Background(), ds)
	test.ErrNil(t, err, "Publish")
	test.MustBe(t, n, 2)
	test.ErrNil(t, sp.Close(), "Close")
	test.MustBe(t, len(values), 2)
	if !strings.HasPrefix(values[0], `{"age":56`) || !strings.HasPrefix(values[1], `{"age":41`) {
		t.Fatalf("records published out of order: %v", values)
	}
	test.MustBe(t, stats.Tagged["publish.messages|topic:marketing"], int64(2))
	test.MustBe(t, stats.Timings, []string{"publish.duration"})
}

func TestPublishFailure(t *testing.T) {
	ds := canonical(t)
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageAndSucceed()
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	n, err := NewPublisher(sp).Publish(context.Background(), ds)
	if errors.Cause(err) != sarama.ErrOutOfBrokers {
		t.Fatalf("expected out of brokers, got %v", err)
	}
	test.MustBe(t, n, 1)
	test.ErrNil(t, sp.Close(), "Close")
}

func TestPublishCancelled(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := NewPublisher(sp).Publish(ctx, canonical(t))
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	test.MustBe(t, n, 0)
	test.ErrNil(t, sp.Close(), "Close")
}
