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
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	// Version of this software - filled in by ldflags at build time.
	Version = "v0.0.0"
	// BuildTime of this software - filled in by ldflags at build time.
	BuildTime = "not recorded"
)

// EnvPrefix is prepended (with an underscore) to every environment variable
// bankdata reads its configuration from.
const EnvPrefix = "BANKDATA"

// subcommandFns is filled in by the init functions of the files in this
// package, one per subcommand.
var subcommandFns = map[string]func(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command{}

// NewRootCommand builds the bankdata command with every registered subcommand
// attached. Each subcommand reads its configuration from flags, the
// environment and an optional config file.
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	rc := &cobra.Command{
		Use:   "bankdata",
		Short: "bankdata - clean and explore the bank marketing dataset",
		Long: `Loads the bank-additional marketing campaign files, maps every
categorical column onto its canonical values, validates the result and
feeds it to reports, feature ranking, Pilosa or Kafka.

Configuration is read from flags, then ` + EnvPrefix + `_* environment
variables, then the --config file.

Version: ` + Version + `
Build Time: ` + BuildTime + "\n",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setAllConfig(viper.New(), cmd.Flags(), EnvPrefix)
		},
		SilenceUsage: true,
	}
	rc.PersistentFlags().StringP("config", "c", "", "Configuration file (toml, yaml or json) to read from.")

	names := make([]string, 0, len(subcommandFns))
	for name := range subcommandFns {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rc.AddCommand(subcommandFns[name](stdin, stdout, stderr))
	}
	rc.AddCommand(newVersionCommand(stdout))
	rc.SetOutput(stderr)
	return rc
}

func newVersionCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the version and build time",
		Args:  cobra.NoArgs,
		// version needs no configuration
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "bankdata %s (built %s)\n", Version, BuildTime)
		},
	}
}

// setAllConfig fills every flag in flags that was not set on the command line
// from, in priority order, the environment and the config file named by the
// "config" flag. Environment variables are the upper-cased flag names with
// dashes replaced by underscores, prefixed with envPrefix and an underscore.
func setAllConfig(v *viper.Viper, flags *pflag.FlagSet, envPrefix string) error {
	if err := v.BindPFlags(flags); err != nil {
		return errors.Wrap(err, "binding flags")
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, v.GetString("config")); err != nil {
		return err
	}

	var flagErr error
	flags.VisitAll(func(f *pflag.Flag) {
		// flags given on the command line win, and setting a slice flag
		// again would append to it rather than replace it
		if flagErr != nil || f.Changed {
			return
		}
		if err := f.Value.Set(configValue(v, f)); err != nil {
			flagErr = errors.Wrapf(err, "setting %s", f.Name)
		}
	})
	return flagErr
}

// readConfigFile merges the file at path into v. The format is taken from the
// extension and defaults to toml.
func readConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	typ := strings.TrimPrefix(filepath.Ext(path), ".")
	switch typ {
	case "yaml", "yml", "json", "toml":
	default:
		typ = "toml"
	}
	v.SetConfigFile(path)
	v.SetConfigType(typ)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "reading configuration file '%s'", path)
	}
	return nil
}

// configValue renders the value viper holds for f in the form f.Value.Set
// accepts. A list in a config file comes back from GetString as "", so string
// slices are joined with commas.
func configValue(v *viper.Viper, f *pflag.Flag) string {
	if f.Value.Type() == "stringSlice" {
		return strings.Join(v.GetStringSlice(f.Name), ",")
	}
	return v.GetString(f.Name)
}
