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

package termstat_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pilosa/bankdata/termstat"
	"github.com/pilosa/bankdata/test"
)

func TestCollector(t *testing.T) {
	buf := &bytes.Buffer{}
	c := termstat.NewCollector(buf, time.Hour)
	c.Count("remap.replaced", 3, 1, "column:y")
	c.Count("remap.replaced", 4, 1, "column:job")
	c.Count("sampled.out", 1, 0)
	c.Timing("process.duration", 1500*time.Millisecond, 1)
	c.Gauge("ignored", 1, 1)

	test.MustBe(t, c.Snapshot(), map[string]string{
		"remap.replaced":   "7",
		"process.duration": "1.5s",
	})

	test.ErrNil(t, c.Close(), "Close")
	out := buf.String()
	if !strings.Contains(out, "remap.replaced: 7 ") || !strings.Contains(out, "process.duration: 1.5s ") {
		t.Fatalf("unexpected output %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("output should end with a newline: %q", out)
	}
}
