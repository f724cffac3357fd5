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
	"strings"

	"github.com/pkg/errors"
)

// Canonical job tiers.
const (
	NoIncome     = "no income"
	LowerIncome  = "lower income"
	HigherIncome = "higher income"
)

// Dropout is the canonical education tier for basic and high school
// education.
const Dropout = "Dropout"

// Column names of the bank-additional dataset.
const (
	ColAge        = "age"
	ColJob        = "job"
	ColMarital    = "marital"
	ColEducation  = "education"
	ColDefault    = "default"
	ColHousing    = "housing"
	ColLoan       = "loan"
	ColContact    = "contact"
	ColMonth      = "month"
	ColDayOfWeek  = "day_of_week"
	ColDuration   = "duration"
	ColCampaign   = "campaign"
	ColPDays      = "pdays"
	ColPrevious   = "previous"
	ColPOutcome   = "poutcome"
	ColEmpVarRate = "emp.var.rate"
	ColConsPrice  = "cons.price.idx"
	ColConsConf   = "cons.conf.idx"
	ColEuribor3m  = "euribor3m"
	ColNrEmployed = "nr.employed"
	ColY          = "y"
	ColAgeBracket = "age_bracket"
)

// BankAdditionalHeader lists the columns of bank-additional-full.csv in file
// order.
var BankAdditionalHeader = []string{
	ColAge, ColJob, ColMarital, ColEducation, ColDefault, ColHousing, ColLoan,
	ColContact, ColMonth, ColDayOfWeek, ColDuration, ColCampaign, ColPDays,
	ColPrevious, ColPOutcome, ColEmpVarRate, ColConsPrice, ColConsConf,
	ColEuribor3m, ColNrEmployed, ColY,
}

var (
	outcomeTable = MustMappingTable(ColY, []Pair{
		P("yes", 1),
		P("no", 0),
	})

	pOutcomeTable = MustMappingTable(ColPOutcome, []Pair{
		P("nonexistent", Missing),
		P("failure", 0),
		P("success", 1),
	})

	jobTable = MustMappingTable(ColJob, []Pair{
		P("housemaid", LowerIncome),
		P("services", LowerIncome),
		P("blue-collar", LowerIncome),
		P("self-employed", LowerIncome),
		P("retired", NoIncome),
		P("student", NoIncome),
		P("unemployed", NoIncome),
		P("admin", HigherIncome),
		P("admin.", HigherIncome),
		P("technician", HigherIncome),
		P("management", HigherIncome),
		P("entrepreneur", HigherIncome),
		P("unknown", Missing),
	})

	educationTable = MustMappingTable(ColEducation, []Pair{
		P("basic.4y", Dropout),
		P("basic.6y", Dropout),
		P("basic.9y", Dropout),
		P("high.school", Dropout),
		P("professional.course", "professional.course"),
		P("university.degree", "university.degree"),
		P("illiterate", "illiterate"),
		P("unknown", Missing),
	})

	dayOfWeekTable = MustMappingTable(ColDayOfWeek, calendarPairs(dayAbbr[:]), FoldCase())

	// month index 0 is "no month", keyed by the empty string.
	monthTable = MustMappingTable(ColMonth, calendarPairs(monthAbbr[:]), FoldCase())

	maritalTable = MustMappingTable(ColMarital, []Pair{
		P("single", "single"),
		P("married", "married"),
		P("divorced", "divorced"),
		P("unknown", Missing),
	})

	ageBracketTable = MustMappingTable(ColAgeBracket, ageBracketPairs())

	defaultRegistry = MustRegistry(
		outcomeTable,
		pOutcomeTable,
		jobTable,
		educationTable,
		dayOfWeekTable,
		monthTable,
	)

	maritalRegistry = MustRegistry(append(defaultRegistry.Tables(), maritalTable)...)
)

func calendarPairs(names []string) []Pair {
	pairs := make([]Pair, len(names))
	for i, name := range names {
		pairs[i] = P(strings.ToLower(name), i)
	}
	return pairs
}

// AgeBrackets are the labels of the derived age_bracket column, in order.
var AgeBrackets = []string{
	"(16, 20)", "(21, 30)", "(31, 40)", "(41, 50)", "(51, 60)",
	"(61, 70)", "(71, 80)", "(81, 90)", "(91, 100)",
}

func ageBracketPairs() []Pair {
	pairs := make([]Pair, 0, 85)
	for age := 16; age <= 100; age++ {
		var label string
		if age <= 20 {
			label = AgeBrackets[0]
		} else {
			label = AgeBrackets[(age-11)/10]
		}
		pairs = append(pairs, P(age, label))
	}
	return pairs
}

// AgeBracketLabel returns the bracket label for an age, or false when the age
// lies outside 16..100.
func AgeBracketLabel(age int64) (string, bool) {
	v, ok := ageBracketTable.Lookup(age)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// DefaultRegistry returns the registry for the bank-additional dataset:
// y, poutcome, job, education, day_of_week and month, in that order.
func DefaultRegistry() *Registry { return defaultRegistry }

// MaritalRegistry is DefaultRegistry plus the marital column, as used by the
// marital status analysis.
func MaritalRegistry() *Registry { return maritalRegistry }

// AgeBracketTable maps integer ages to the AgeBrackets labels. It governs the
// derived age_bracket column.
func AgeBracketTable() *MappingTable { return ageBracketTable }

// RegistryByName returns one of the shipped registries: "default" or
// "marital".
func RegistryByName(name string) (*Registry, error) {
	switch name {
	case "", "default":
		return defaultRegistry, nil
	case "marital":
		return maritalRegistry, nil
	}
	return nil, errors.Errorf("unknown registry %q, want default or marital", name)
}
