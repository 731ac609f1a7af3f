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
package util

import (
	"slices"
	"strings"
)

// Path describes the position of a declaration within a tree of nested
// modules.  The outermost segment names the enclosing top-level module, and
// the innermost segment names the declaration itself.  An empty path denotes
// the root module.
type Path struct {
	// Segments in the path.
	segments []string
}

// NewPath constructs a new path from the given segments.
func NewPath(segments ...string) Path {
	return Path{segments}
}

// Depth returns the number of segments in this path.
func (p *Path) Depth() uint {
	return uint(len(p.segments))
}

// Head returns the first (i.e. outermost) segment in this path.
func (p *Path) Head() string {
	return p.segments[0]
}

// Tail returns the last (i.e. innermost) segment in this path.
func (p *Path) Tail() string {
	n := len(p.segments) - 1
	return p.segments[n]
}

// Parent returns this path with its innermost segment removed.
func (p *Path) Parent() Path {
	n := len(p.segments) - 1
	nsegments := make([]string, n)
	copy(nsegments, p.segments[:n])
	//
	return Path{nsegments}
}

// Extend returns this path extended with a new innermost segment.
func (p *Path) Extend(tail string) Path {
	nsegments := make([]string, len(p.segments)+1)
	copy(nsegments, p.segments)
	nsegments[len(p.segments)] = tail
	//
	return Path{nsegments}
}

// Equals determines whether two paths are the same.
func (p *Path) Equals(other Path) bool {
	return slices.Equal(p.segments, other.segments)
}

// Join returns the segments of this path joined with a given separator.  This
// is used, for example, when deriving an artifact-level identifier from a
// qualified name.
func (p *Path) Join(separator string) string {
	return strings.Join(p.segments, separator)
}

// Return a string representation of this path.
func (p *Path) String() string {
	return p.Join(".")
}
