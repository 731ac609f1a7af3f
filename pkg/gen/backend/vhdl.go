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
package backend

import (
	"fmt"
	"io"
	"strings"

	"github.com/consensys/go-spindle/pkg/gen"
	"github.com/consensys/go-spindle/pkg/sym"
	"github.com/consensys/go-spindle/pkg/word"
)

// VHDL renders declared ports as a single entity whose ports are
// std_logic_vector of the matching widths.  Internally every distinct
// subterm becomes one intermediate unsigned (or std_logic) signal with a
// concurrent assignment, so shared subterms are shared signals.
type VHDL struct {
	entity  string
	inputs  []port
	outputs []port
}

var _ gen.Backend = (*VHDL)(nil)

// NewVHDL constructs an empty VHDL backend emitting an entity of the given
// name.
func NewVHDL(entity string) *VHDL {
	if entity == "" {
		entity = "spindle"
	}
	//
	return &VHDL{entity: entity}
}

// DeclareInput implementation for the gen.Backend interface.
func (p *VHDL) DeclareInput(name string, value word.Word) {
	p.inputs = append(p.inputs, port{name, value})
}

// DeclareOutput implementation for the gen.Backend interface.
func (p *VHDL) DeclareOutput(name string, value word.Word) {
	p.outputs = append(p.outputs, port{name, value})
}

// WriteTo implementation for the gen.Backend interface.
func (p *VHDL) WriteTo(w io.Writer) error {
	var builder strings.Builder
	//
	builder.WriteString(vhdlHeader)
	p.emitEntity(&builder)
	p.emitArchitecture(&builder)
	//
	_, err := io.WriteString(w, builder.String())
	//
	return err
}

const vhdlHeader = `-- Code generated by spindle. DO NOT EDIT.

library ieee;
use ieee.std_logic_1164.all;
use ieee.numeric_std.all;

`

func (p *VHDL) emitEntity(builder *strings.Builder) {
	ports := make([]string, 0, len(p.inputs)+len(p.outputs))
	//
	for _, input := range p.inputs {
		ports = append(ports, vhdlPort(input, "in"))
	}
	//
	for _, output := range p.outputs {
		ports = append(ports, vhdlPort(output, "out"))
	}
	//
	builder.WriteString(fmt.Sprintf("entity %s is\n  port (\n", p.entity))
	builder.WriteString(strings.Join(ports, ";\n"))
	builder.WriteString("\n  );\nend entity;\n\n")
}

func (p *VHDL) emitArchitecture(builder *strings.Builder) {
	emitter := newVhdlEmitter()
	// Render every output graph, then hook each up to its port.
	for _, output := range p.outputs {
		text := emitter.word(output.value.Payload())
		emitter.assigns = append(emitter.assigns,
			fmt.Sprintf("  %s <= std_logic_vector(%s);", output.name, text))
	}
	//
	builder.WriteString(fmt.Sprintf("architecture rtl of %s is\n", p.entity))
	//
	for _, signal := range emitter.signals {
		builder.WriteString(signal)
		builder.WriteString("\n")
	}
	//
	builder.WriteString("begin\n")
	//
	for _, assign := range emitter.assigns {
		builder.WriteString(assign)
		builder.WriteString("\n")
	}
	//
	builder.WriteString("end architecture;\n")
}

func vhdlPort(p port, direction string) string {
	return fmt.Sprintf("    %s : %s std_logic_vector(%d downto 0)",
		p.name, direction, p.value.Width()-1)
}

// ============================================================================
// Expression emitter
// ============================================================================

// vhdlEmitter renders an expression graph as intermediate signals with
// concurrent assignments.  Nodes are identified by pointer, so a subterm
// shared between several parents becomes a single signal.
type vhdlEmitter struct {
	// signals holds the signal declarations.
	signals []string
	// assigns holds the concurrent assignments, dependencies first.
	assigns []string
	words   map[sym.Word]string
	bits    map[sym.Bit]string
	count   uint
}

func newVhdlEmitter() *vhdlEmitter {
	return &vhdlEmitter{
		words: map[sym.Word]string{},
		bits:  map[sym.Bit]string{},
	}
}

// word renders a word node, returning an unsigned-typed expression: leaves
// render inline, everything else becomes a signal.
func (p *vhdlEmitter) word(w sym.Word) string {
	switch w := w.(type) {
	case *sym.Const:
		return vhdlConst(w)
	case *sym.Var:
		return fmt.Sprintf("unsigned(%s)", w.Name)
	}
	//
	if name, ok := p.words[w]; ok {
		return name
	}
	//
	name := p.fresh()
	p.signals = append(p.signals, fmt.Sprintf("  signal %s : unsigned(%d downto 0);", name, w.Width()-1))
	//
	if bits, ok := w.(*sym.FromBits); ok {
		// Assembled words assign one bit at a time.
		for i, b := range bits.Bits {
			p.assigns = append(p.assigns,
				fmt.Sprintf("  %s(%d) <= %s;", name, w.Width()-1-uint(i), p.bit(b)))
		}
	} else {
		p.assigns = append(p.assigns, fmt.Sprintf("  %s <= %s;", name, p.wordRhs(w)))
	}
	//
	p.words[w] = name
	//
	return name
}

func (p *vhdlEmitter) wordRhs(w sym.Word) string {
	switch w := w.(type) {
	case *sym.Bin:
		return p.binRhs(w)
	case *sym.Not:
		return fmt.Sprintf("not %s", p.word(w.Arg))
	case *sym.Mux:
		return fmt.Sprintf("%s when %s = '1' else %s",
			p.word(w.Then), p.bit(w.Cond), p.word(w.Else))
	default:
		panic(fmt.Sprintf("unknown symbolic word %s", w))
	}
}

func (p *vhdlEmitter) binRhs(w *sym.Bin) string {
	lhs := p.word(w.Lhs)
	//
	switch w.Op {
	case sym.ADD:
		return fmt.Sprintf("%s + %s", lhs, p.word(w.Rhs))
	case sym.SUB:
		return fmt.Sprintf("%s - %s", lhs, p.word(w.Rhs))
	case sym.MUL:
		// Unsigned multiplication doubles the width.
		return fmt.Sprintf("resize(%s * %s, %d)", lhs, p.word(w.Rhs), w.Width())
	case sym.DIV:
		return fmt.Sprintf("unsigned(signed(%s) / signed(%s))", lhs, p.word(w.Rhs))
	case sym.REM:
		return fmt.Sprintf("unsigned(signed(%s) rem signed(%s))", lhs, p.word(w.Rhs))
	case sym.AND:
		return fmt.Sprintf("%s and %s", lhs, p.word(w.Rhs))
	case sym.OR:
		return fmt.Sprintf("%s or %s", lhs, p.word(w.Rhs))
	case sym.XOR:
		return fmt.Sprintf("%s xor %s", lhs, p.word(w.Rhs))
	case sym.SHL:
		return p.shiftRhs("shift_left", lhs, w)
	case sym.SHR:
		return p.shiftRhs("shift_right", lhs, w)
	default:
		panic(fmt.Sprintf("unknown operation %s", w.Op))
	}
}

// shiftRhs renders a logical shift.  Amounts at or beyond the width yield
// zero, and the amount is narrowed before conversion so that oversized
// amounts cannot overflow the integer conversion.
func (p *vhdlEmitter) shiftRhs(fn string, lhs string, w *sym.Bin) string {
	rhs := p.word(w.Rhs)
	//
	return fmt.Sprintf("%s(%s, to_integer(resize(%s, 7))) when %s < %d else (others => '0')",
		fn, lhs, rhs, rhs, w.Width())
}

// bit renders a bit node, returning a std_logic-typed expression.  Constants
// and single-bit extractions render inline; everything else becomes a signal.
func (p *vhdlEmitter) bit(b sym.Bit) string {
	switch b := b.(type) {
	case *sym.BitConst:
		if value, _ := b.AsConstant(); value {
			return "'1'"
		}
		//
		return "'0'"
	case *sym.BitOf:
		// The index counts down from the most significant end, whilst vector
		// indices count up from the least significant.
		return fmt.Sprintf("%s(%d)", p.indexable(b.Arg), b.Arg.Width()-1-b.Index)
	}
	//
	if name, ok := p.bits[b]; ok {
		return name
	}
	//
	name := p.fresh()
	p.signals = append(p.signals, fmt.Sprintf("  signal %s : std_logic;", name))
	p.assigns = append(p.assigns, fmt.Sprintf("  %s <= %s;", name, p.bitRhs(b)))
	p.bits[b] = name
	//
	return name
}

func (p *vhdlEmitter) bitRhs(b sym.Bit) string {
	switch b := b.(type) {
	case *sym.BitNot:
		return fmt.Sprintf("not %s", p.bit(b.Arg))
	case *sym.BitBin:
		return fmt.Sprintf("%s %s %s", p.bit(b.Lhs), vhdlBitOp(b.Op), p.bit(b.Rhs))
	case *sym.Cmp:
		return fmt.Sprintf("'1' when %s %s %s else '0'",
			p.word(b.Lhs), vhdlCmpOp(b.Op), p.word(b.Rhs))
	case *sym.BitMux:
		return fmt.Sprintf("%s when %s = '1' else %s",
			p.bit(b.Then), p.bit(b.Cond), p.bit(b.Else))
	default:
		panic(fmt.Sprintf("unknown symbolic bit %s", b))
	}
}

// indexable renders a word node in a form legal to index: ports index
// directly, everything else through its signal.  Constants never reach here,
// since extracting a bit of a constant folds upstream.
func (p *vhdlEmitter) indexable(w sym.Word) string {
	if v, ok := w.(*sym.Var); ok {
		return v.Name
	}
	//
	return p.word(w)
}

func (p *vhdlEmitter) fresh() string {
	name := fmt.Sprintf("t%d", p.count)
	p.count++
	//
	return name
}

// vhdlConst renders a constant as a qualified hex literal of exactly the
// right width.
func vhdlConst(w *sym.Const) string {
	return fmt.Sprintf("unsigned'(x\"%0*X\")", int(w.Width()/4), w.AsConstant())
}

// vhdlBitOp returns the VHDL operator computing a given bit operation over
// std_logic operands.
func vhdlBitOp(op sym.BitOp) string {
	switch op {
	case sym.BAND:
		return "and"
	case sym.BOR:
		return "or"
	case sym.BXOR:
		return "xor"
	default:
		panic(fmt.Sprintf("unknown operation %s", op))
	}
}

// vhdlCmpOp returns the VHDL operator computing a given comparison.
func vhdlCmpOp(op sym.CmpOp) string {
	switch op {
	case sym.EQ:
		return "="
	case sym.NE:
		return "/="
	case sym.LT:
		return "<"
	case sym.LE:
		return "<="
	default:
		panic(fmt.Sprintf("unknown comparison %s", op))
	}
}
