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
package eval

import (
	"fmt"
	"strings"
)

// DefaultDisplayLength is the number of elements of an unbounded sequence
// shown when no display length is given.
const DefaultDisplayLength uint = 5

// Render returns the textual form of a value, showing at most limit elements
// of any unbounded sequence followed by an ellipsis.  Rendering never forces
// a symbolic term to a concrete outcome: words of unknown value display as a
// width-tagged placeholder, and unknown bits display as "<bit>".
func Render(value Value, limit uint) string {
	switch value := value.(type) {
	case *Bit:
		if constant, ok := value.Term.AsConstant(); ok {
			return fmt.Sprintf("%t", constant)
		}
		//
		return "<bit>"
	case *Word:
		return value.Term.String()
	case *List:
		return renderItems("[", value.Items, "]", limit)
	case *Stream:
		return renderStream(value, limit)
	case *Tuple:
		return renderItems("(", value.Items, ")", limit)
	case *Record:
		return renderRecord(value, limit)
	case *Func:
		return "<function>"
	case *Poly:
		return "<polymorphic value>"
	default:
		panic(fmt.Sprintf("unknown value %v", value))
	}
}

func renderItems(opening string, items []Value, closing string, limit uint) string {
	var builder strings.Builder
	//
	builder.WriteString(opening)
	//
	for i, item := range items {
		if i != 0 {
			builder.WriteString(", ")
		}
		//
		builder.WriteString(Render(item, limit))
	}
	//
	builder.WriteString(closing)
	//
	return builder.String()
}

// renderStream renders the first limit elements of an unbounded sequence,
// followed by an ellipsis marker.  The sequence itself is never materialised
// beyond those elements.
func renderStream(stream *Stream, limit uint) string {
	var builder strings.Builder
	//
	builder.WriteString("[")
	//
	for i := uint(0); i < limit; i++ {
		builder.WriteString(Render(stream.Get(i), limit))
		builder.WriteString(", ")
	}
	//
	builder.WriteString("...]")
	//
	return builder.String()
}

func renderRecord(record *Record, limit uint) string {
	var builder strings.Builder
	//
	builder.WriteString("{")
	//
	for i, field := range record.Fields {
		if i != 0 {
			builder.WriteString(", ")
		}
		//
		builder.WriteString(field.Name)
		builder.WriteString(" = ")
		builder.WriteString(Render(field.Value, limit))
	}
	//
	builder.WriteString("}")
	//
	return builder.String()
}
