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

// Package bankdata cleans and validates the UCI "bank additional" marketing
// dataset, and is the home of the pipeline every analysis in this repository
// runs its data through first.
//
// Of principal importance is the cleaning pipeline. The stages are listed
// below; column-specific behavior lives entirely in data (mapping tables), so
// there is one generic implementation of each stage.
//
// 1. Loading
//
//    The csv sub-package reads one or more semicolon separated files (local,
//    HTTP, or S3) into a Dataset. Placeholder tokens for unknown values become
//    the Missing marker, numeric columns are parsed, and a header which does not
//    match the expected schema is rejected before any row is read.
//
// 2. Mapping Table Registry
//
//    A Registry holds, per governed column, an ordered list of raw value ->
//    canonical value pairs and the set of canonical values (the domain). The
//    shipped registries are built once at init time and never change. Tables
//    reject duplicate sources and targets which would be remapped again, so
//    remapping is always idempotent.
//
// 3. Remap
//
//    Registry.Remap rewrites one column in place using a single keyed lookup
//    per cell. Values the table doesn't know are left as they are.
//
// 4. Validate
//
//    Registry.Validate checks that a remapped column holds nothing outside its
//    domain. If it does, the returned SchemaViolation names every offending
//    value, not just the first.
//
// 5. Process
//
//    Processor.ProcessAll runs remap then validate for each governed column in
//    registry order and stops at the first violation. Once it returns nil the
//    dataset is canonical and is handed to the analysis, importance, pilosa and
//    kafka packages, none of which modify it.
package bankdata
