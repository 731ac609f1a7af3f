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

// Package gen drives code generation.  A generation run selects one
// declaration of a module as its root, pushes the selector through the front
// end (parsing, elaboration and defaulting), evaluates the root symbolically
// over fresh variables standing for its arguments, and finally decomposes the
// result into named ports which a backend renders as a target-specific
// artifact.  A run either completes in full or aborts cleanly beforehand;
// partial artifacts are never written.
package gen

import (
	"fmt"
	"io"

	"github.com/consensys/go-spindle/pkg/eval"
	"github.com/consensys/go-spindle/pkg/spindle"
	"github.com/consensys/go-spindle/pkg/spindle/ast"
	"github.com/consensys/go-spindle/pkg/util/source"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Config packages up everything a generation run needs: the module supplying
// declarations, its elaborated environment, a selector for the generation
// root, and the backend rendering the result.
type Config struct {
	// Root selects the generation root, usually just the name of a
	// declaration of Module.
	Root string
	// Module supplying the root and every declaration it depends upon.
	Module *spindle.Module
	// Env is the elaborated environment of Module.
	Env *spindle.ModuleEnv
	// Pipeline overrides the front end the root selector is pushed through.
	// When nil, the production pipeline over Module and Env is used.
	Pipeline Pipeline
	// Backend receives the declared ports of the run.
	Backend Backend
	// Output receives the rendered artifact.  A nil output suppresses
	// rendering altogether, leaving just the declarations.
	Output io.Writer
}

// Generate runs a full generation pass: front end, symbolic evaluation, port
// decomposition, and rendering through the configured backend.  Apart from
// failures of the output writer itself, every error returned is an *Abort
// describing a clean refusal at some stage of the pipeline.
func Generate(cfg Config) error {
	inputs, output, err := Ports(cfg)
	//
	if err != nil {
		return err
	}
	//
	for _, port := range inputs {
		log.Debugf("declared input port %s (u%d)", port.Name, port.Word.Width())
		cfg.Backend.DeclareInput(port.Name, port.Word)
	}
	//
	log.Debugf("declared output port %s (u%d)", output.Name, output.Word.Width())
	cfg.Backend.DeclareOutput(output.Name, output.Word)
	//
	if cfg.Output == nil {
		return nil
	}
	//
	return errors.Wrap(cfg.Backend.WriteTo(cfg.Output), "writing generated artifact")
}

// Ports runs the front-end and decomposition stages only, returning the
// input ports and output port of the generation root without involving a
// backend.
func Ports(cfg Config) ([]Port, Port, error) {
	pipe := cfg.Pipeline
	//
	if pipe == nil {
		pipe = NewPipeline(cfg.Module, cfg.Env)
	}
	// Parse the root selector.
	log.Debugf("parsing generation root %q", cfg.Root)
	//
	root, errs := pipe.ParseRoot(cfg.Root)
	if len(errs) > 0 {
		return nil, Port{}, &Abort{Stage: "parsing", Errors: errs}
	}
	// Resolve and type the root against the module.
	log.Debugf("elaborating generation root")
	//
	root, typ, errs := pipe.Elaborate(root)
	if len(errs) > 0 {
		return nil, Port{}, &Abort{Stage: "elaboration", Errors: errs}
	}
	// Close over residual type ambiguity, refusing polymorphic roots.
	log.Debugf("defaulting generation root of type %s", typ)
	//
	defaulted := pipe.Default(root, typ)
	if defaulted.IsEmpty() {
		return nil, Port{}, abortf("defaulting", "root has polymorphic type %s", typ)
	}
	//
	pair := defaulted.Unwrap()
	root, typ = pair.Right, ast.Substitute(pair.Left, typ)
	// The root must come down to a single named declaration, since ports are
	// named after it.
	v, ok := root.(*ast.Var)
	if !ok {
		return nil, Port{}, abortf("generation", "root must name a declaration")
	}
	//
	decl, ok := pipe.Resolve(v.Name)
	if !ok {
		panic(fmt.Sprintf("unknown symbol %s survived elaboration", v.Name))
	}
	// Evaluate the root and decompose it over fresh input variables.
	log.Debugf("evaluating generation root %s", decl.Name)
	//
	ops := eval.NewWordOps()
	value := eval.NewEvaluator(ops).Eval(pipe.Bindings(ops), root)
	//
	return decompose(decl, typ, value)
}

// ============================================================================
// Aborts
// ============================================================================

// Abort is the clean failure mode of the generation pipeline: the run stopped
// at a named stage, nothing was written, and either front-end diagnostics or
// a reason explain why.
type Abort struct {
	// Stage of the pipeline which refused.
	Stage string
	// Errors holds front-end diagnostics, when the stage produced any.
	Errors []source.SyntaxError
	// Reason describes the refusal, when no diagnostics exist.
	Reason string
}

var _ error = &Abort{}

// Error implementation for the error interface.
func (p *Abort) Error() string {
	if len(p.Errors) > 0 {
		return fmt.Sprintf("%s: %s", p.Stage, p.Errors[0].Message())
	}
	//
	return fmt.Sprintf("%s: %s", p.Stage, p.Reason)
}

// abortf constructs an abort at a given stage from a formatted reason.
func abortf(stage string, format string, args ...any) *Abort {
	return &Abort{Stage: stage, Reason: fmt.Sprintf(format, args...)}
}
