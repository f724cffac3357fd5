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
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"

	"github.com/Shopify/sarama"
	"github.com/pilosa/bankdata/csv"
	"github.com/pkg/errors"
)

// Main holds the options for publishing a cleaned dataset to Kafka.
type Main struct {
	Files        []string `help:"Comma separated list of files to load and concatenate."`
	RegistryFile string   `help:"YAML file describing the mapping registry."`
	S3Region     string   `help:"AWS region for s3:// URLs."`
	Hosts        []string `help:"Comma separated list of Kafka hosts and ports"`
	Topic        string   `help:"Kafka topic"`
	Encoding     string   `help:"Message encoding: json or avro."`
	SchemaID     int      `help:"Schema registry id written in front of each Avro message. 0 writes bare Avro."`
	Verbose      bool     `help:"Enable debug logging."`

	stdout io.Writer
	stderr io.Writer
}

// NewMain returns a new Main.
func NewMain() *Main {
	return &Main{
		Files:    []string{"bank-additional-full.csv"},
		Hosts:    []string{"localhost:9092"},
		Topic:    "bank",
		Encoding: "json",
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
}

// SetOutput sets where the summary and logs are written.
func (m *Main) SetOutput(stdout, stderr io.Writer) {
	m.stdout, m.stderr = stdout, stderr
}

// Run loads and processes the files and publishes every record.
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

	var enc Encoder
	switch m.Encoding {
	case "json":
		enc = JSONEncoder{}
	case "avro":
		var opts []AvroOption
		if m.SchemaID != 0 {
			opts = append(opts, OptAvroSchemaID(int32(m.SchemaID)))
		}
		enc, err = NewAvroEncoder(ds, opts...)
		if err != nil {
			return errors.Wrap(err, "creating avro encoder")
		}
	default:
		return errors.Errorf("unsupported encoding: '%v'", m.Encoding)
	}

	sarama.Logger = log.New(ioutil.Discard, "", 0)
	config := sarama.NewConfig()
	config.Version = sarama.V0_10_0_0
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	producer, err := sarama.NewSyncProducer(m.Hosts, config)
	if err != nil {
		return errors.Wrap(err, "getting new producer")
	}
	defer producer.Close()

	p := NewPublisher(producer,
		OptPublisherTopic(m.Topic),
		OptPublisherEncoder(enc),
		OptPublisherLogger(loader.Logger()),
	)
	n, err := p.Publish(context.Background(), ds)
	if err != nil {
		return errors.Wrap(err, "publishing")
	}
	fmt.Fprintf(m.stdout, "published %d records to %s\n", n, m.Topic)
	return nil
}
