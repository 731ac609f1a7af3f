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
	"strings"

	"github.com/consensys/go-spindle/pkg/spindle"
	"github.com/consensys/go-spindle/pkg/util/source"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Exit codes used throughout: 1 for usage errors, 2 for I/O errors, 3 for
// errors in the source being processed, 4 for internal errors.
const (
	exitUsage    = 1
	exitIO       = 2
	exitSyntax   = 3
	exitInternal = 4
)

// GetFlag reads an expected boolean flag, or exits if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(exitInternal)
	}

	return r
}

// GetString reads an expected string flag, or exits if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(exitInternal)
	}

	return r
}

// GetUint reads an expected uint flag, or exits if an error arises.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(exitInternal)
	}

	return r
}

// GetUint64 reads an expected uint64 flag, or exits if an error arises.
func GetUint64(cmd *cobra.Command, flag string) uint64 {
	r, err := cmd.Flags().GetUint64(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(exitInternal)
	}

	return r
}

// CompileSourceFiles reads, parses and elaborates a set of source files into
// one shared environment.  This can result, for example, in one or more
// syntax errors, etc.  The module of the last file is returned as the main
// module, whose path qualifies unqualified names given on the command line.
func CompileSourceFiles(filenames []string) (*spindle.Module, *spindle.ModuleEnv) {
	var modules = make([]*spindle.Module, len(filenames))
	// Parse each file
	for i, n := range filenames {
		log.Debug(fmt.Sprintf("including source file %s", n))
		// Read source file
		bytes, err := os.ReadFile(n)
		// Sanity check for errors
		if err != nil {
			fmt.Println(err)
			os.Exit(exitIO)
		}
		//
		module, errors := spindle.Parse(source.NewSourceFile(n, bytes))
		// Check for errors
		if len(errors) != 0 {
			reportSyntaxErrors(errors)
		}
		//
		modules[i] = module
	}
	// Elaborate modules in file order
	env, errors := spindle.ElaborateModules(modules...)
	// Check for errors
	if len(errors) != 0 {
		reportSyntaxErrors(errors)
	}
	// Done
	return modules[len(modules)-1], env
}

// Report one or more syntax errors and fail.
func reportSyntaxErrors(errors []source.SyntaxError) {
	for _, err := range errors {
		printSyntaxError(&err)
	}
	//
	os.Exit(exitSyntax)
}

// Print a syntax error with appropriate highlighting.
func printSyntaxError(err *source.SyntaxError) {
	span := err.Span()
	line := err.FirstEnclosingLine()
	lineOffset := span.Start() - line.Start()
	// Calculate length (ensures don't overflow line)
	length := min(line.Length()-lineOffset, span.Length())
	// Print error + line number
	fmt.Printf("%s:%d:%d-%d %s\n", err.SourceFile().Filename(),
		line.Number(), 1+lineOffset, 1+lineOffset+length, err.Message())
	// Print separator line
	fmt.Println()
	// Print line
	fmt.Println(line.String())
	// Print indent (todo: account for tabs)
	fmt.Print(strings.Repeat(" ", lineOffset))
	// Print highlight
	fmt.Println(strings.Repeat("^", length))
}

// Determine a suitable width for formatted output, namely the width of the
// terminal when attached to one and a conventional default otherwise.
func terminalWidth() uint {
	if term.IsTerminal(0) {
		if width, _, err := term.GetSize(0); err == nil && width > 0 {
			return uint(width)
		}
	}
	//
	return 80
}
