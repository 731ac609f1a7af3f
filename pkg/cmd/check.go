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

	"github.com/consensys/go-spindle/pkg/spindle"
	"github.com/consensys/go-spindle/pkg/util/source/sexp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [flags] source_file(s)",
	Short: "check a set of source files without generating anything.",
	Long: `Parse and elaborate a given set of source files, reporting any
syntax or type errors encountered.  Nothing is printed for well-formed
sources unless a listing is requested.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Configure log level
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		//
		var (
			manifest = openManifest()
			sources  = resolveSources(manifest, args)
			decls    = GetFlag(cmd, "decls")
			reprint  = GetFlag(cmd, "reprint")
		)
		// Compile sources, reporting any errors
		_, env := CompileSourceFiles(sources)
		//
		log.Debugf("elaborated %d declarations", len(env.Declarations()))
		//
		if decls {
			writeDeclarations(env)
		}
		//
		if reprint {
			writeElaboratedBodies(env)
		}
	},
}

// Write one signature line per declaration, in declaration order.
func writeDeclarations(env *spindle.ModuleEnv) {
	for _, decl := range env.Declarations() {
		fmt.Printf("%s : %s\n", decl.Name.String(), decl.Scheme.String())
	}
}

// Pretty-print the elaborated body of every declaration, fitted to the width
// of the terminal.
func writeElaboratedBodies(env *spindle.ModuleEnv) {
	formatter := sexp.NewFormatter(terminalWidth())
	formatter.Add(&sexp.SFormatter{Head: "let", Priority: 1})
	formatter.Add(&sexp.SFormatter{Head: "if", Priority: 1})
	formatter.Add(&sexp.SFormatter{Head: "fun", Priority: 1})
	//
	for _, decl := range env.Declarations() {
		// Uninterpreted declarations have no body to print.
		if decl.Extern {
			continue
		}
		//
		fmt.Printf("%s =\n", decl.Name)
		fmt.Println(formatter.Format(decl.Body.Lisp()))
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("decls", false, "list every declaration with its scheme")
	checkCmd.Flags().Bool("reprint", false, "print the elaborated form of every declaration")
}
