// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/consensys/go-spindle/pkg/gen"
	"github.com/consensys/go-spindle/pkg/gen/backend"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [flags] root source_file(s)",
	Short: "generate a hardware artifact from a declaration.",
	Long: `Generate a hardware artifact (C99 or VHDL) for a given declaration,
whose arguments become the input ports and whose result becomes the single
output port.  The root may be any expression naming a declaration of the
given source files.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Configure log level
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		//
		if len(args) == 0 {
			fmt.Println(cmd.UsageString())
			os.Exit(exitUsage)
		}
		//
		var (
			manifest = openManifest()
			sources  = resolveSources(manifest, args[1:])
			name     = GetString(cmd, "backend")
			output   = GetString(cmd, "output")
			entity   = GetString(cmd, "entity")
			vectors  = GetUint(cmd, "vectors")
			seed     = GetUint64(cmd, "seed")
		)
		// Fill unset flags from the manifest
		if manifest != nil {
			if name == "" {
				name = manifest.Generate.Backend
			}
			//
			if output == "" {
				output = manifest.Generate.Output
			}
		}
		// Compile sources
		module, env := CompileSourceFiles(sources)
		//
		cfg := gen.Config{
			Root:   args[0],
			Module: module,
			Env:    env,
		}
		// Emit test vectors rather than an artifact when requested
		if vectors > 0 {
			trace, err := gen.Vectors(cfg, vectors, seed)
			if err != nil {
				reportGenerationError(err)
			}
			//
			writeOutput(output, []byte(trace))
			//
			return
		}
		// Render the artifact in full before touching the output, so that a
		// refused run leaves no file behind.
		var buf bytes.Buffer
		//
		cfg.Backend = selectBackend(name, entity)
		cfg.Output = &buf
		//
		if err := gen.Generate(cfg); err != nil {
			reportGenerationError(err)
		}
		//
		writeOutput(output, buf.Bytes())
	},
}

// Select the artifact backend by name, defaulting to C99.
func selectBackend(name string, entity string) gen.Backend {
	switch name {
	case "", "c":
		return backend.NewC99()
	case "vhdl":
		return backend.NewVHDL(entity)
	}
	//
	fmt.Printf("unknown backend %q\n", name)
	os.Exit(exitUsage)
	// unreachable
	return nil
}

// Report a failed generation run.  Front-end diagnostics get caret
// highlighting; any other refusal gets a single line naming its stage.
func reportGenerationError(err error) {
	var abort *gen.Abort
	//
	if errors.As(err, &abort) {
		if len(abort.Errors) > 0 {
			reportSyntaxErrors(abort.Errors)
		}
		//
		fmt.Println(abort.Error())
		os.Exit(exitSyntax)
	}
	//
	fmt.Println(err)
	os.Exit(exitIO)
}

// Write an artifact to a given file, or to stdout when no file was named.
func writeOutput(filename string, data []byte) {
	var err error
	//
	if filename == "" {
		_, err = os.Stdout.Write(data)
	} else {
		err = os.WriteFile(filename, data, 0644)
	}
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(exitIO)
	}
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringP("output", "o", "", "write artifact to given file (defaults to stdout)")
	generateCmd.Flags().String("backend", "", "artifact backend, either c or vhdl (defaults to c)")
	generateCmd.Flags().String("entity", "", "entity name used by the vhdl backend")
	generateCmd.Flags().Uint("vectors", 0, "emit given number of test vectors instead of an artifact")
	generateCmd.Flags().Uint64("seed", 0, "seed used when sampling test vectors")
}
