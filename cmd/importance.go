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

package cmd

import (
	"io"

	"github.com/jaffee/commandeer"
	"github.com/pilosa/bankdata/importance"
	"github.com/spf13/cobra"
)

// ImportanceMain is wrapped by NewImportanceCommand and only exported for testing purposes.
var ImportanceMain *importance.Main

// NewImportanceCommand returns a new cobra command wrapping ImportanceMain.
func NewImportanceCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	ImportanceMain = importance.NewMain()
	ImportanceMain.SetOutput(stdout, stderr)
	com := &cobra.Command{
		Use:   "importance",
		Short: "rank customer attributes with a random forest",
		Long:  `Fits a random forest to the label encoded customer attributes and prints
the mean decrease in impurity of each one, least important first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ImportanceMain.Run()
		},
	}
	err := commandeer.Flags(com.Flags(), ImportanceMain)
	if err != nil {
		panic(err)
	}
	return com
}

func init() {
	subcommandFns["importance"] = NewImportanceCommand
}
