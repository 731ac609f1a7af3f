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
	"fmt"
	"os"

	"github.com/consensys/go-spindle/pkg/eval"
	"github.com/consensys/go-spindle/pkg/gen"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// evalCmd represents the eval command
var evalCmd = &cobra.Command{
	Use:   "eval [flags] expr source_file(s)",
	Short: "evaluate an expression against a set of source files.",
	Long: `Evaluate a given expression in the scope of the given source files
and print its value.  Values without a finite printed form, such as streams,
show a limited number of elements.`,
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
			limit    = GetUint(cmd, "limit")
		)
		// Compile sources
		module, env := CompileSourceFiles(sources)
		// Push the expression through the front end
		pipe := gen.NewPipeline(module, env)
		//
		expr, errs := pipe.ParseRoot(args[0])
		if len(errs) > 0 {
			reportSyntaxErrors(errs)
		}
		//
		expr, typ, errs := pipe.Elaborate(expr)
		if len(errs) > 0 {
			reportSyntaxErrors(errs)
		}
		// Close over residual ambiguity, since evaluation needs every width
		// pinned down.
		defaulted := pipe.Default(expr, typ)
		if defaulted.IsEmpty() {
			fmt.Printf("expression has polymorphic type %s\n", typ)
			os.Exit(exitSyntax)
		}
		//
		expr = defaulted.Unwrap().Right
		// Evaluate and print
		ops := eval.NewWordOps()
		value := eval.NewEvaluator(ops).Eval(pipe.Bindings(ops), expr)
		//
		fmt.Println(eval.Render(value, limit))
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().Uint("limit", 8, "number of stream elements to print")
}
