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
package gen

import (
	"math/big"
	"math/rand/v2"
	"strings"

	"github.com/consensys/go-spindle/pkg/sym"
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
)

// Vectors drives the same pipeline as Generate but, instead of rendering an
// artifact, samples a number of pseudorandom assignments of the root's input
// ports and evaluates its output port under each.  The result is a JSON
// trace mapping every port to its column of field elements, row for row,
// suitable as test vectors for a generated artifact.  The same seed always
// yields the same trace.
func Vectors(cfg Config, rows uint, seed uint64) (string, error) {
	inputs, output, err := Ports(cfg)
	//
	if err != nil {
		return "", err
	}
	//
	var (
		rnd     = rand.New(rand.NewPCG(seed, seed))
		columns = make([]column, len(inputs)+1)
	)
	//
	for i, port := range inputs {
		columns[i] = column{port.Name, make([]fr.Element, rows)}
	}
	//
	columns[len(inputs)] = column{output.Name, make([]fr.Element, rows)}
	//
	for row := uint(0); row < rows; row++ {
		assignment := sym.Assignment{}
		// Sample every input port.
		for i, port := range inputs {
			value := sample(rnd, port.Word.Width())
			assignment[port.Name] = value
			columns[i].data[row] = element(value)
		}
		// Evaluate the output under the sampled inputs.
		columns[len(inputs)].data[row] = element(output.Word.Payload().Eval(assignment))
	}
	//
	return toJson(columns), nil
}

// column is one port's worth of vector data: the port name against the field
// element the port took on each row.
type column struct {
	name string
	data []fr.Element
}

// sample draws a uniformly random value of a given bit width.
func sample(rnd *rand.Rand, width uint) *big.Int {
	value := rnd.Uint64()
	//
	if width < 64 {
		value >>= (64 - width)
	}
	//
	return new(big.Int).SetUint64(value)
}

// element converts an unsigned value into a field element.
func element(value *big.Int) fr.Element {
	var e fr.Element
	//
	e.SetBigInt(value)
	//
	return e
}

// toJson renders a set of columns as a JSON trace.
func toJson(columns []column) string {
	var builder strings.Builder
	//
	builder.WriteString("{")
	//
	for i, col := range columns {
		if i != 0 {
			builder.WriteString(", ")
		}
		//
		builder.WriteString("\"")
		builder.WriteString(col.name)
		builder.WriteString("\": [")
		//
		for j, item := range col.data {
			if j != 0 {
				builder.WriteString(", ")
			}
			//
			builder.WriteString(item.String())
		}
		//
		builder.WriteString("]")
	}
	//
	builder.WriteString("}")
	//
	return builder.String()
}
