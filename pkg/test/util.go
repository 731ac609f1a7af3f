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
package test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/consensys/go-spindle/pkg/gen"
	"github.com/consensys/go-spindle/pkg/spindle"
	"github.com/consensys/go-spindle/pkg/util/source"
	"github.com/stretchr/testify/require"
)

// TestDir determines the (relative) location of the test directory.  That is
// where the spindle test files (spin) are found.
const TestDir = "../../testdata"

// Compile reads, parses and elaborates the given test files into one shared
// environment, in file order, failing the test on any error.  The module of
// the last file is returned as the main module.
func Compile(t *testing.T, filenames ...string) (*spindle.Module, *spindle.ModuleEnv) {
	t.Helper()
	//
	modules := make([]*spindle.Module, len(filenames))
	//
	for i, n := range filenames {
		bytes, err := os.ReadFile(filepath.Join(TestDir, n))
		require.NoError(t, err)
		//
		module, errs := spindle.Parse(source.NewSourceFile(n, bytes))
		require.Empty(t, errs)
		//
		modules[i] = module
	}
	//
	env, errs := spindle.ElaborateModules(modules...)
	require.Empty(t, errs)
	//
	return modules[len(modules)-1], env
}

// Generate renders an artifact for a declaration of the given test files
// through a given backend, failing the test when the run aborts.
func Generate(t *testing.T, be gen.Backend, root string, filenames ...string) string {
	t.Helper()
	//
	var buf bytes.Buffer
	//
	module, env := Compile(t, filenames...)
	//
	err := gen.Generate(gen.Config{
		Root:    root,
		Module:  module,
		Env:     env,
		Backend: be,
		Output:  &buf,
	})
	require.NoError(t, err)
	//
	return buf.String()
}
