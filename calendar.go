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
	"github.com/pkg/errors"
)

var dayAbbr = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

var monthAbbr = [13]string{"", "Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// NumberToDayOfWeek returns the abbreviated day name for a 0-based weekday
// index (0 is Monday). Indexes outside [0, 6] are an error.
func NumberToDayOfWeek(n int64) (string, error) {
	if n < 0 || n >= int64(len(dayAbbr)) {
		return "", errors.Errorf("day of week index %d out of range [0, 6]", n)
	}
	return dayAbbr[n], nil
}

// NumberToMonth returns the abbreviated month name for a month index. 0 means
// "no month" and returns the empty string. Indexes outside [0, 12] are an
// error.
func NumberToMonth(n int64) (string, error) {
	if n < 0 || n >= int64(len(monthAbbr)) {
		return "", errors.Errorf("month index %d out of range [0, 12]", n)
	}
	return monthAbbr[n], nil
}

// NumbersToDaysOfWeek applies NumberToDayOfWeek to every value, which must be
// integers. Missing values map to the empty string.
func NumbersToDaysOfWeek(vals []interface{}) ([]string, error) {
	return applyNames(vals, NumberToDayOfWeek)
}

// NumbersToMonths applies NumberToMonth to every value, which must be
// integers. Missing values map to the empty string.
func NumbersToMonths(vals []interface{}) ([]string, error) {
	return applyNames(vals, NumberToMonth)
}

func applyNames(vals []interface{}, name func(int64) (string, error)) ([]string, error) {
	ret := make([]string, len(vals))
	for i, v := range vals {
		switch vt := v.(type) {
		case missing:
			continue
		case int64:
			s, err := name(vt)
			if err != nil {
				return nil, errors.Wrapf(err, "value %d", i)
			}
			ret[i] = s
		default:
			return nil, errors.Errorf("value %d: %v of type %[2]T is not an integer index", i, v)
		}
	}
	return ret, nil
}
