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
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

type missing struct{}

func (missing) String() string { return "<missing>" }

// Missing is the marker stored in a Dataset for unknown or not-applicable
// entries. It is comparable, so it can be used as a map key, and it is never
// equal to any string, int64 or float64.
var Missing interface{} = missing{}

// IsMissing reports whether v is the Missing marker.
func IsMissing(v interface{}) bool {
	_, ok := v.(missing)
	return ok
}

// Kind is the inferred storage type of a column.
type Kind int

const (
	// KindEmpty means the column holds nothing but Missing.
	KindEmpty Kind = iota
	KindInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ColumnKind inspects the non-missing values in a column. A mix of ints and
// floats is KindFloat, anything else mixed is KindString.
func ColumnKind(ds *Dataset, column string) (Kind, error) {
	vals, err := ds.Column(column)
	if err != nil {
		return KindEmpty, err
	}
	kind := KindEmpty
	for _, v := range vals {
		var k Kind
		switch v.(type) {
		case missing:
			continue
		case int64:
			k = KindInt
		case float64:
			k = KindFloat
		default:
			return KindString, nil
		}
		if k > kind {
			kind = k
		}
	}
	return kind, nil
}

// FormatValue renders a value for display. Missing renders as the empty
// string.
func FormatValue(v interface{}) string {
	switch vt := v.(type) {
	case missing:
		return ""
	case string:
		return vt
	case float64:
		return fmt.Sprintf("%g", vt)
	default:
		return fmt.Sprintf("%v", vt)
	}
}

// NormalizeValue converts the loose Go types produced by decoders (int, int32,
// float32, nil, []byte ...) into the four value types a Dataset holds.
func NormalizeValue(v interface{}) (interface{}, error) {
	switch vt := v.(type) {
	case nil:
		return Missing, nil
	case missing, string, int64, float64:
		return vt, nil
	case []byte:
		return string(vt), nil
	case int:
		return int64(vt), nil
	case int8:
		return int64(vt), nil
	case int16:
		return int64(vt), nil
	case int32:
		return int64(vt), nil
	case uint8:
		return int64(vt), nil
	case uint16:
		return int64(vt), nil
	case uint32:
		return int64(vt), nil
	case uint64:
		if vt > math.MaxInt64 {
			return nil, errors.Errorf("uint64 %d overflows int64", vt)
		}
		return int64(vt), nil
	case float32:
		return float64(vt), nil
	case bool:
		if vt {
			return int64(1), nil
		}
		return int64(0), nil
	default:
		return nil, errors.Errorf("unsupported value %v of type %[1]T", v)
	}
}

// value type tags for the byte encoding.
const (
	tagMissing byte = 'm'
	tagString  byte = 's'
	tagInt     byte = 'i'
	tagFloat   byte = 'f'
)

// ValueToBytes encodes a value so that distinct values have distinct
// encodings. It is used by the persistent translators as a key.
func ValueToBytes(v interface{}) ([]byte, error) {
	switch vt := v.(type) {
	case missing:
		return []byte{tagMissing}, nil
	case string:
		return append([]byte{tagString}, vt...), nil
	case int64:
		ret := make([]byte, 9)
		ret[0] = tagInt
		binary.BigEndian.PutUint64(ret[1:], uint64(vt))
		return ret, nil
	case float64:
		ret := make([]byte, 9)
		ret[0] = tagFloat
		binary.BigEndian.PutUint64(ret[1:], math.Float64bits(vt))
		return ret, nil
	default:
		return nil, errors.Errorf("can't encode %v of type %[1]T", v)
	}
}

// ValueFromBytes decodes the output of ValueToBytes.
func ValueFromBytes(b []byte) (interface{}, error) {
	if len(b) == 0 {
		return nil, errors.New("empty value encoding")
	}
	switch b[0] {
	case tagMissing:
		return Missing, nil
	case tagString:
		return string(b[1:]), nil
	case tagInt, tagFloat:
		if len(b) != 9 {
			return nil, errors.Errorf("numeric value encoding has length %d", len(b))
		}
		u := binary.BigEndian.Uint64(b[1:])
		if b[0] == tagInt {
			return int64(u), nil
		}
		return math.Float64frombits(u), nil
	}
	return nil, errors.Errorf("unknown value tag %q", b[0])
}

// rank orders value types: numbers, then strings, then Missing.
func rank(v interface{}) int {
	switch v.(type) {
	case int64, float64:
		return 0
	case string:
		return 1
	case missing:
		return 3
	}
	return 2
}

func toFloat(v interface{}) float64 {
	switch vt := v.(type) {
	case int64:
		return float64(vt)
	case float64:
		return vt
	}
	return 0
}

// LessValue is a total order over dataset values used wherever output has
// to be deterministic: numbers ascending, then strings, then Missing.
func LessValue(a, b interface{}) bool {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra < rb
	}
	switch ra {
	case 0:
		fa, fb := toFloat(a), toFloat(b)
		if fa != fb {
			return fa < fb
		}
		// 1 and 1.0 compare equal numerically; keep ints first.
		_, aInt := a.(int64)
		_, bInt := b.(int64)
		return aInt && !bInt
	case 1:
		return a.(string) < b.(string)
	case 2:
		return fmt.Sprintf("%v", a) < fmt.Sprintf("%v", b)
	}
	return false
}

// SortValues sorts vals in place with LessValue.
func SortValues(vals []interface{}) {
	sort.Slice(vals, func(i, j int) bool { return LessValue(vals[i], vals[j]) })
}

func formatValueList(vals []interface{}) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			parts[i] = fmt.Sprintf("%q", s)
			continue
		}
		parts[i] = fmt.Sprintf("%v", v)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
