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
	"strconv"
	"time"

	"github.com/Shopify/sarama"
	"github.com/pilosa/bankdata"
	"github.com/pkg/errors"
)

// Publisher sends every record of a dataset to a Kafka topic. The message key
// is the record's row number.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	enc      Encoder
	log      bankdata.Logger
	stats    bankdata.Statter
}

// PublisherOption configures a Publisher.
type PublisherOption func(p *Publisher)

// OptPublisherTopic sets the topic.
func OptPublisherTopic(topic string) PublisherOption {
	return func(p *Publisher) {
		p.topic = topic
	}
}

// OptPublisherEncoder sets how records are encoded. JSON is the default.
func OptPublisherEncoder(enc Encoder) PublisherOption {
	return func(p *Publisher) {
		p.enc = enc
	}
}

// OptPublisherLogger sets the logger.
func OptPublisherLogger(l bankdata.Logger) PublisherOption {
	return func(p *Publisher) {
		p.log = l
	}
}

// OptPublisherStatter sets the statter.
func OptPublisherStatter(s bankdata.Statter) PublisherOption {
	return func(p *Publisher) {
		p.stats = s
	}
}

// NewPublisher returns a Publisher sending through producer.
func NewPublisher(producer sarama.SyncProducer, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		producer: producer,
		topic:    "bank",
		enc:      JSONEncoder{},
		log:      bankdata.NopLogger{},
		stats:    bankdata.NopStatter{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish sends the records of ds in order and returns how many were sent.
// It stops at the first failure.
func (p *Publisher) Publish(ctx context.Context, ds *bankdata.Dataset) (n int, err error) {
	start := time.Now()
	defer func() {
		p.stats.Timing("publish.duration", time.Since(start), 1)
	}()
	for row := 0; row < ds.Len(); row++ {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		value, err := p.enc.Encode(ds, row)
		if err != nil {
			return n, errors.Wrapf(err, "encoding record %d", row)
		}
		msg := &sarama.ProducerMessage{
			Topic: p.topic,
			Key:   sarama.StringEncoder(strconv.Itoa(row)),
			Value: sarama.ByteEncoder(value),
		}
		partition, offset, err := p.producer.SendMessage(msg)
		if err != nil {
			return n, errors.Wrapf(err, "sending record %d", row)
		}
		p.log.Debugf("record %d -> %s/%d@%d", row, p.topic, partition, offset)
		p.stats.Count("publish.messages", 1, 1, "topic:"+p.topic)
		n++
	}
	p.log.Printf("published %d records to %s", n, p.topic)
	return n, nil
}
