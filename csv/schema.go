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
	"sort"
	"strconv"
	"strings"

	"github.com/pilosa/bankdata"
	"github.com/pkg/errors"
)

// Schema maps the columns a file must have to the kind their cells are parsed
// as. Columns a file has beyond the schema are read as strings.
type Schema map[string]bankdata.Kind

// BankAdditional is the schema of bank-additional.csv and
// bank-additional-full.csv.
var BankAdditional = Schema{
	bankdata.ColAge:        bankdata.KindInt,
	bankdata.ColJob:        bankdata.KindString,
	bankdata.ColMarital:    bankdata.KindString,
	bankdata.ColEducation:  bankdata.KindString,
	bankdata.ColDefault:    bankdata.KindString,
	bankdata.ColHousing:    bankdata.KindString,
	bankdata.ColLoan:       bankdata.KindString,
	bankdata.ColContact:    bankdata.KindString,
	bankdata.ColMonth:      bankdata.KindString,
	bankdata.ColDayOfWeek:  bankdata.KindString,
	bankdata.ColDuration:   bankdata.KindInt,
	bankdata.ColCampaign:   bankdata.KindInt,
	bankdata.ColPDays:      bankdata.KindInt,
	bankdata.ColPrevious:   bankdata.KindInt,
	bankdata.ColPOutcome:   bankdata.KindString,
	bankdata.ColEmpVarRate: bankdata.KindFloat,
	bankdata.ColConsPrice:  bankdata.KindFloat,
	bankdata.ColConsConf:   bankdata.KindFloat,
	bankdata.ColEuribor3m:  bankdata.KindFloat,
	bankdata.ColNrEmployed: bankdata.KindFloat,
	bankdata.ColY:          bankdata.KindString,
}

// Kind returns the kind cells of column are parsed as.
func (s Schema) Kind(column string) bankdata.Kind {
	if k, ok := s[column]; ok && k != bankdata.KindEmpty {
		return k
	}
	return bankdata.KindString
}

// Check returns an error naming every schema column missing from header.
func (s Schema) Check(header []string) error {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[h] = struct{}{}
	}
	var missing []string
	for col := range s {
		if _, ok := have[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return errors.Errorf("missing columns: %s", strings.Join(missing, ", "))
}

func parseValue(cell string, kind bankdata.Kind) (interface{}, error) {
	switch kind {
	case bankdata.KindInt:
		v, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "parsing int")
		}
		return v, nil
	case bankdata.KindFloat:
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return nil, errors.Wrap(err, "parsing float")
		}
		return v, nil
	}
	return cell, nil
}
