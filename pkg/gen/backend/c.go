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

// Package backend provides the artifact emitters fed by the generation
// driver: a C99 emitter producing one function per output port, and a VHDL
// emitter producing an entity over std_logic_vector ports.  Both render the
// symbolic expression graph of each output with shared subterms computed
// exactly once.
package backend

import (
	"fmt"
	"io"
	"strings"

	"github.com/consensys/go-spindle/pkg/gen"
	"github.com/consensys/go-spindle/pkg/sym"
	"github.com/consensys/go-spindle/pkg/word"
)

// C99 renders declared ports as a C99 translation unit: one pure function per
// output port, taking every input port as a parameter of the matching exact
// width type.  Word semantics map directly onto unsigned arithmetic, with
// division and remainder cast through the signed types and shifts guarded
// against amounts at or beyond the width.
type C99 struct {
	inputs  []port
	outputs []port
}

// port is one declared port of a backend, input or output.
type port struct {
	name  string
	value word.Word
}

var _ gen.Backend = (*C99)(nil)

// NewC99 constructs an empty C99 backend.
func NewC99() *C99 {
	return &C99{}
}

// DeclareInput implementation for the gen.Backend interface.
func (p *C99) DeclareInput(name string, value word.Word) {
	p.inputs = append(p.inputs, port{name, value})
}

// DeclareOutput implementation for the gen.Backend interface.
func (p *C99) DeclareOutput(name string, value word.Word) {
	p.outputs = append(p.outputs, port{name, value})
}

// WriteTo implementation for the gen.Backend interface.
func (p *C99) WriteTo(w io.Writer) error {
	var builder strings.Builder
	//
	builder.WriteString(cHeader)
	//
	for _, output := range p.outputs {
		builder.WriteString("\n")
		p.emitFunction(&builder, output)
	}
	//
	_, err := io.WriteString(w, builder.String())
	//
	return err
}

const cHeader = `// Code generated by spindle. DO NOT EDIT.

#include <stdint.h>
`

// emitFunction renders one output port as a function over the input ports.
func (p *C99) emitFunction(builder *strings.Builder, output port) {
	builder.WriteString(fmt.Sprintf("%s %s(", cType(output.value.Width()), output.name))
	//
	if len(p.inputs) == 0 {
		builder.WriteString("void")
	}
	//
	for i, input := range p.inputs {
		if i != 0 {
			builder.WriteString(", ")
		}
		//
		builder.WriteString(fmt.Sprintf("%s %s", cType(input.value.Width()), input.name))
	}
	//
	builder.WriteString(") {\n")
	// Render the expression graph, collecting locals for shared subterms.
	emitter := newCemitter()
	emitter.countWord(output.value.Payload())
	result := emitter.word(output.value.Payload())
	//
	for _, line := range emitter.lines {
		builder.WriteString(line)
		builder.WriteString("\n")
	}
	//
	builder.WriteString(fmt.Sprintf("  return %s;\n", result))
	builder.WriteString("}\n")
}

// ============================================================================
// Expression emitter
// ============================================================================

// cemitter renders one expression graph as C text.  Nodes referenced more
// than once are bound to a const local the first time they are rendered, and
// referenced by name thereafter, so no subterm is ever computed twice.
type cemitter struct {
	// lines holds the local bindings, in dependency order.
	lines []string
	// words maps shared word nodes to the local naming them.
	words map[sym.Word]string
	// bits likewise for bit nodes.
	bits map[sym.Bit]string
	// wordRefs counts references to each word node.
	wordRefs map[sym.Word]uint
	// bitRefs counts references to each bit node.
	bitRefs map[sym.Bit]uint
	count   uint
}

func newCemitter() *cemitter {
	return &cemitter{
		words:    map[sym.Word]string{},
		bits:     map[sym.Bit]string{},
		wordRefs: map[sym.Word]uint{},
		bitRefs:  map[sym.Bit]uint{},
	}
}

// countWord tallies how often each node of a word graph is referenced,
// descending into each distinct node exactly once.
func (p *cemitter) countWord(w sym.Word) {
	p.wordRefs[w]++
	//
	if p.wordRefs[w] > 1 {
		return
	}
	//
	switch w := w.(type) {
	case *sym.Bin:
		p.countWord(w.Lhs)
		p.countWord(w.Rhs)
	case *sym.Not:
		p.countWord(w.Arg)
	case *sym.Mux:
		p.countBit(w.Cond)
		p.countWord(w.Then)
		p.countWord(w.Else)
	case *sym.FromBits:
		for _, b := range w.Bits {
			p.countBit(b)
		}
	}
}

func (p *cemitter) countBit(b sym.Bit) {
	p.bitRefs[b]++
	//
	if p.bitRefs[b] > 1 {
		return
	}
	//
	switch b := b.(type) {
	case *sym.BitNot:
		p.countBit(b.Arg)
	case *sym.BitBin:
		p.countBit(b.Lhs)
		p.countBit(b.Rhs)
	case *sym.Cmp:
		p.countWord(b.Lhs)
		p.countWord(b.Rhs)
	case *sym.BitMux:
		p.countBit(b.Cond)
		p.countBit(b.Then)
		p.countBit(b.Else)
	case *sym.BitOf:
		p.countWord(b.Arg)
	}
}

// word renders a word node, binding it to a local when shared.  Leaves
// render inline regardless of sharing.
func (p *cemitter) word(w sym.Word) string {
	switch w := w.(type) {
	case *sym.Const:
		return cConst(w)
	case *sym.Var:
		return w.Name
	}
	//
	if name, ok := p.words[w]; ok {
		return name
	}
	//
	text := p.wordExpr(w)
	//
	if p.wordRefs[w] > 1 {
		return p.bindWord(w, text)
	}
	//
	return text
}

// force renders a word node as a simple operand, binding composite nodes to
// a local even when unshared.
func (p *cemitter) force(w sym.Word) string {
	switch w.(type) {
	case *sym.Const, *sym.Var:
		return p.word(w)
	}
	//
	if name, ok := p.words[w]; ok {
		return name
	}
	//
	return p.bindWord(w, p.wordExpr(w))
}

func (p *cemitter) bindWord(w sym.Word, text string) string {
	name := p.fresh()
	p.lines = append(p.lines, fmt.Sprintf("  const %s %s = %s;", cType(w.Width()), name, text))
	p.words[w] = name
	//
	return name
}

func (p *cemitter) wordExpr(w sym.Word) string {
	switch w := w.(type) {
	case *sym.Bin:
		return p.binExpr(w)
	case *sym.Not:
		return fmt.Sprintf("(%s)(~%s)", cType(w.Width()), p.word(w.Arg))
	case *sym.Mux:
		return fmt.Sprintf("(%s ? %s : %s)", p.bit(w.Cond), p.word(w.Then), p.word(w.Else))
	case *sym.FromBits:
		return p.bitsExpr(w)
	default:
		panic(fmt.Sprintf("unknown symbolic word %s", w))
	}
}

func (p *cemitter) binExpr(w *sym.Bin) string {
	var (
		typ = cType(w.Width())
		lhs = p.word(w.Lhs)
	)
	// Results wider than the operands, or negative intermediates, must be
	// truncated back into range; a cast to the result type does both.
	switch w.Op {
	case sym.ADD:
		return fmt.Sprintf("(%s)(%s + %s)", typ, lhs, p.word(w.Rhs))
	case sym.SUB:
		return fmt.Sprintf("(%s)(%s - %s)", typ, lhs, p.word(w.Rhs))
	case sym.MUL:
		return fmt.Sprintf("(%s)(%s * %s)", typ, lhs, p.word(w.Rhs))
	case sym.DIV:
		return fmt.Sprintf("(%s)((%s)%s / (%s)%s)",
			typ, cSigned(w.Width()), lhs, cSigned(w.Width()), p.word(w.Rhs))
	case sym.REM:
		return fmt.Sprintf("(%s)((%s)%s %% (%s)%s)",
			typ, cSigned(w.Width()), lhs, cSigned(w.Width()), p.word(w.Rhs))
	case sym.AND:
		return fmt.Sprintf("(%s & %s)", lhs, p.word(w.Rhs))
	case sym.OR:
		return fmt.Sprintf("(%s | %s)", lhs, p.word(w.Rhs))
	case sym.XOR:
		return fmt.Sprintf("(%s ^ %s)", lhs, p.word(w.Rhs))
	case sym.SHL:
		// Shifting by the width or more is undefined in C, but zero here.
		rhs := p.force(w.Rhs)
		return fmt.Sprintf("(%s)(%s < %d ? (%s << %s) : 0)", typ, rhs, w.Width(), lhs, rhs)
	case sym.SHR:
		rhs := p.force(w.Rhs)
		return fmt.Sprintf("(%s)(%s < %d ? (%s >> %s) : 0)", typ, rhs, w.Width(), lhs, rhs)
	default:
		panic(fmt.Sprintf("unknown operation %s", w.Op))
	}
}

func (p *cemitter) bitsExpr(w *sym.FromBits) string {
	var (
		typ   = cType(w.Width())
		parts = make([]string, len(w.Bits))
	)
	//
	for i, b := range w.Bits {
		shift := w.Width() - 1 - uint(i)
		//
		if shift == 0 {
			parts[i] = p.bit(b)
		} else {
			parts[i] = fmt.Sprintf("((%s)%s << %d)", typ, p.bit(b), shift)
		}
	}
	//
	return fmt.Sprintf("(%s)(%s)", typ, strings.Join(parts, " | "))
}

// bit renders a bit node as an int-valued C expression which is always
// exactly zero or one.
func (p *cemitter) bit(b sym.Bit) string {
	if c, ok := b.(*sym.BitConst); ok {
		if value, _ := c.AsConstant(); value {
			return "1"
		}
		//
		return "0"
	}
	//
	if name, ok := p.bits[b]; ok {
		return name
	}
	//
	text := p.bitExpr(b)
	//
	if p.bitRefs[b] > 1 {
		name := p.fresh()
		p.lines = append(p.lines, fmt.Sprintf("  const uint8_t %s = %s;", name, text))
		p.bits[b] = name
		//
		return name
	}
	//
	return text
}

func (p *cemitter) bitExpr(b sym.Bit) string {
	switch b := b.(type) {
	case *sym.BitNot:
		return fmt.Sprintf("(!%s)", p.bit(b.Arg))
	case *sym.BitBin:
		return fmt.Sprintf("(%s %s %s)", p.bit(b.Lhs), cBitOp(b.Op), p.bit(b.Rhs))
	case *sym.Cmp:
		return fmt.Sprintf("(%s %s %s)", p.word(b.Lhs), cCmpOp(b.Op), p.word(b.Rhs))
	case *sym.BitMux:
		return fmt.Sprintf("(%s ? %s : %s)", p.bit(b.Cond), p.bit(b.Then), p.bit(b.Else))
	case *sym.BitOf:
		// The index counts down from the most significant end.
		return fmt.Sprintf("((%s >> %d) & 1)", p.word(b.Arg), b.Arg.Width()-1-b.Index)
	default:
		panic(fmt.Sprintf("unknown symbolic bit %s", b))
	}
}

func (p *cemitter) fresh() string {
	name := fmt.Sprintf("t%d", p.count)
	p.count++
	//
	return name
}

// ============================================================================
// Helpers
// ============================================================================

// cType returns the exact width unsigned type for a given width.
func cType(width uint) string {
	return fmt.Sprintf("uint%d_t", width)
}

// cSigned returns the exact width signed type for a given width.
func cSigned(width uint) string {
	return fmt.Sprintf("int%d_t", width)
}

// cConst renders a constant, suffixed so that the literal is in range for
// the wider widths.
func cConst(w *sym.Const) string {
	switch w.Width() {
	case 64:
		return fmt.Sprintf("%sull", w.AsConstant())
	case 32:
		return fmt.Sprintf("%su", w.AsConstant())
	default:
		return w.AsConstant().String()
	}
}

// cBitOp returns the C operator computing a given bit operation over
// operands known to be zero or one.
func cBitOp(op sym.BitOp) string {
	switch op {
	case sym.BAND:
		return "&"
	case sym.BOR:
		return "|"
	case sym.BXOR:
		return "^"
	default:
		panic(fmt.Sprintf("unknown operation %s", op))
	}
}

// cCmpOp returns the C operator computing a given comparison.
func cCmpOp(op sym.CmpOp) string {
	switch op {
	case sym.EQ:
		return "=="
	case sym.NE:
		return "!="
	case sym.LT:
		return "<"
	case sym.LE:
		return "<="
	default:
		panic(fmt.Sprintf("unknown comparison %s", op))
	}
}
