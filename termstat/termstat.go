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

// Package termstat provides a stats implementation which periodically logs the
// statistics to the given writer. It is meant to be used for watching a run
// at the terminal in lieu of an actual collector writing to an external tool
// like graphite or datadog. Counts are summed per name; timings keep the most
// recent value. Gauges, histograms and sets are ignored.
package termstat

import (
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Collector collects stats and prints them to the terminal.
type Collector struct {
	lock    sync.Mutex
	indexes map[string]int
	names   []string
	stats   []string
	counts  []int64
	changed bool
	out     io.Writer

	done chan struct{}
	wg   sync.WaitGroup
}

// NewCollector initializes and returns a new Collector which writes to out
// every interval until Close is called.
func NewCollector(out io.Writer, interval time.Duration) *Collector {
	ts := &Collector{
		indexes: make(map[string]int),
		out:     out,
		done:    make(chan struct{}),
	}
	ts.wg.Add(1)
	go func() {
		defer ts.wg.Done()
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for {
			select {
			case <-tick.C:
				ts.write()
			case <-ts.done:
				return
			}
		}
	}()
	return ts
}

// Close stops the periodic writes and writes the final state of every stat,
// followed by a newline.
func (t *Collector) Close() error {
	close(t.done)
	t.wg.Wait()
	t.write()
	_, err := fmt.Fprintln(t.out)
	return err
}

func (t *Collector) index(name string) int {
	idx, ok := t.indexes[name]
	if !ok {
		idx = len(t.names)
		t.names = append(t.names, name)
		t.stats = append(t.stats, "")
		t.counts = append(t.counts, 0)
		t.indexes[name] = idx
	}
	return idx
}

// Count adds value to the named stat at the specified rate.
func (t *Collector) Count(name string, value int64, rate float64, tags ...string) {
	if rate < 1 && rand.Float64() > rate {
		return
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	t.changed = true
	idx := t.index(name)
	t.counts[idx] += value
	t.stats[idx] = fmt.Sprintf("%d", t.counts[idx])
}

// Timing records the latest duration for the named stat.
func (t *Collector) Timing(name string, value time.Duration, rate float64, tags ...string) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.changed = true
	t.stats[t.index(name)] = value.String()
}

// Snapshot returns the current rendering of every stat, keyed by name.
func (t *Collector) Snapshot() map[string]string {
	t.lock.Lock()
	defer t.lock.Unlock()
	ret := make(map[string]string, len(t.names))
	for i, name := range t.names {
		ret[name] = t.stats[i]
	}
	return ret
}

func (t *Collector) write() {
	sb := strings.Builder{}
	t.lock.Lock()
	defer t.lock.Unlock()
	if !t.changed {
		return
	}
	for i := 0; i < len(t.names); i++ {
		_, _ = sb.WriteString(fmt.Sprintf("%s: %s ", t.names[i], t.stats[i]))
	}
	t.changed = false
	fmt.Fprint(t.out, "\r"+sb.String())
}

// Gauge does nothing.
func (t *Collector) Gauge(name string, value float64, rate float64, tags ...string) {}

// Histogram does nothing.
func (t *Collector) Histogram(name string, value float64, rate float64, tags ...string) {}

// Set does nothing.
func (t *Collector) Set(name string, value string, rate float64, tags ...string) {}
