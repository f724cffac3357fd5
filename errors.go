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
	"fmt"

	"github.com/pkg/errors"
)

// Error is a constant error type.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrDuplicateSource is returned when a mapping table lists the same source
	// value twice.
	ErrDuplicateSource = Error("duplicate source value in mapping table")

	// ErrNotIdempotent is returned when a mapping table's target is also one of
	// its sources but does not map to itself, so remapping twice would change
	// already canonical data.
	ErrNotIdempotent = Error("mapping table target is a source mapped elsewhere")

	// ErrDuplicateColumn is returned when a registry receives two tables for
	// the same column.
	ErrDuplicateColumn = Error("duplicate column in registry")
)

// ConfigurationError means a column was referenced by Remap or Validate but
// has no mapping table in the registry. It indicates a programming or config
// defect and is never recovered from.
type ConfigurationError struct {
	Column string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("no mapping table registered for column %q", e.Column)
}

// SchemaViolation means that after remapping, a column still holds values
// outside its mapping table's domain. Values holds every offending value,
// sorted with LessValue.
type SchemaViolation struct {
	Column string
	Values []interface{}
}

func (e *SchemaViolation) Error() string {
	return fmt.Sprintf("%s contains values not found in mapping: %s", e.Column, formatValueList(e.Values))
}

// ColumnError means a dataset has no column of the given name.
type ColumnError struct {
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("dataset has no column %q", e.Column)
}

// AsSchemaViolation unwraps err and returns the SchemaViolation at its root,
// if that is what it is.
func AsSchemaViolation(err error) (*SchemaViolation, bool) {
	sv, ok := errors.Cause(err).(*SchemaViolation)
	return sv, ok
}

// AsConfigurationError unwraps err and returns the ConfigurationError at its
// root, if that is what it is.
func AsConfigurationError(err error) (*ConfigurationError, bool) {
	ce, ok := errors.Cause(err).(*ConfigurationError)
	return ce, ok
}
