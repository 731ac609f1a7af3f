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
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// ManifestFilename is the name a project manifest must carry to be found.
const ManifestFilename = "spindle.toml"

// Manifest describes an optional project file, spindle.toml, which supplies
// the source files of a project along with default generation settings.
// Values given on the command line always take precedence over those of the
// manifest.
type Manifest struct {
	// Project metadata and sources.
	Project ProjectSection `toml:"project"`
	// Default generation settings.
	Generate GenerateSection `toml:"generate"`
	// Directory containing the manifest, against which relative source paths
	// resolve.
	root string
}

// ProjectSection holds the [project] table of a manifest.
type ProjectSection struct {
	// Name of the project.
	Name string `toml:"name"`
	// Sources lists the project source files, in elaboration order, relative
	// to the manifest.
	Sources []string `toml:"sources"`
}

// GenerateSection holds the [generate] table of a manifest, supplying
// defaults for the corresponding command-line flags.
type GenerateSection struct {
	// Backend selects the default artifact backend.
	Backend string `toml:"backend"`
	// Output names the default artifact file.
	Output string `toml:"output"`
}

// SourcePaths returns the source files of the project, resolved against the
// directory of the manifest.
func (p *Manifest) SourcePaths() []string {
	paths := make([]string, len(p.Project.Sources))
	//
	for i, src := range p.Project.Sources {
		paths[i] = filepath.Join(p.root, filepath.FromSlash(src))
	}
	//
	return paths
}

// FindManifest walks up from a given directory looking for the nearest
// manifest file, as projects are routinely built from subdirectories.
func FindManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	//
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, errors.Wrap(err, "resolving start directory")
	}
	//
	for {
		candidate := filepath.Join(dir, ManifestFilename)
		//
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, errors.Wrapf(err, "stating %q", candidate)
		}
		// Stop at the filesystem root
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		//
		dir = parent
	}
	//
	return "", false, nil
}

// LoadManifest locates and parses the nearest manifest, returning false when
// none exists between the given directory and the filesystem root.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	var manifest Manifest
	//
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	//
	meta, err := toml.DecodeFile(path, &manifest)
	if err != nil {
		return nil, true, errors.Wrapf(err, "parsing %s", path)
	}
	// Sanity check required fields
	if !meta.IsDefined("project", "name") || manifest.Project.Name == "" {
		return nil, true, fmt.Errorf("%s: missing [project].name", path)
	}
	//
	manifest.root = filepath.Dir(path)
	//
	return &manifest, true, nil
}

// Load the nearest manifest if one exists, exiting on a malformed one.
func openManifest() *Manifest {
	manifest, ok, err := LoadManifest(".")
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(exitIO)
	} else if !ok {
		return nil
	}
	//
	return manifest
}

// Determine the source files of a run: those given on the command line when
// any are, otherwise those listed by the project manifest.
func resolveSources(manifest *Manifest, args []string) []string {
	if len(args) > 0 {
		return args
	} else if manifest != nil && len(manifest.Project.Sources) > 0 {
		return manifest.SourcePaths()
	}
	// No way to determine sources
	fmt.Println("no source files given (and no spindle.toml to supply them)")
	os.Exit(exitUsage)
	// unreachable
	return nil
}
