// Copyright 2018 The Jadep Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package classenv

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gojvm/hdrc/symbol"
)

// DirSource loads classes from an exploded directory of .class files,
// converting a binary name to a path the way a filesystem-based
// resolver converts a dotted class name to a source path: package
// separators become directory separators, with ".class" appended.
type DirSource struct {
	Root string
}

// Name implements Source.
func (d *DirSource) Name() string { return d.Root }

// Load implements Source.
func (d *DirSource) Load(sym symbol.Class) (data []byte, ok bool, err error) {
	path := filepath.Join(d.Root, filepath.FromSlash(string(sym))+".class")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

// JarSource loads classes from one jar file, keeping a directory of
// the class entries it contains (nested classes included,
// module-info.class excluded) so repeated Load calls for
// classes the jar does not provide don't re-scan the central
// directory (the same shape as listing the classes in a jar once up
// front rather than per lookup).
type JarSource struct {
	path string

	mu      sync.Mutex
	index   map[string]*zip.File
	indexed bool
}

// NewJarSource returns a JarSource for the jar at path. The jar is not
// opened until the first Load call.
func NewJarSource(path string) *JarSource {
	return &JarSource{path: path}
}

// Name implements Source.
func (j *JarSource) Name() string { return j.path }

func (j *JarSource) ensureIndex() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.indexed {
		return nil
	}
	r, err := zip.OpenReader(j.path)
	if err != nil {
		return fmt.Errorf("opening jar %s: %w", j.path, err)
	}
	defer r.Close()

	j.index = make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		name := f.Name
		if !strings.HasSuffix(name, ".class") || strings.HasSuffix(name, "module-info.class") {
			continue
		}
		binaryName := strings.TrimSuffix(name, ".class")
		j.index[binaryName] = f
	}
	j.indexed = true
	return nil
}

// Load implements Source.
func (j *JarSource) Load(sym symbol.Class) ([]byte, bool, error) {
	if err := j.ensureIndex(); err != nil {
		return nil, false, err
	}
	j.mu.Lock()
	f, ok := j.index[string(sym)]
	j.mu.Unlock()
	if !ok {
		return nil, false, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, false, fmt.Errorf("opening %s in jar %s: %w", f.Name, j.path, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// ListClasses returns the binary names of every top-level class the
// jar provides, enumerating the whole jar rather than resolving it
// symbol by symbol.
func (j *JarSource) ListClasses() ([]symbol.Class, error) {
	if err := j.ensureIndex(); err != nil {
		return nil, err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]symbol.Class, 0, len(j.index))
	for name := range j.index {
		if strings.Contains(name, "$") {
			continue // nested classes are reached via their enclosing top-level class
		}
		out = append(out, symbol.Class(name))
	}
	return out, nil
}

// ChainSource composes several Sources into one, first match wins,
// matching classpath precedence: earlier entries shadow later ones
// with the same binary name. It implements Source itself
// so it can be nested inside another ChainEnv or ChainSource.
type ChainSource struct {
	Sources []Source
}

// Name implements Source.
func (c *ChainSource) Name() string { return "chain" }

// Load implements Source, trying each inner source in order.
func (c *ChainSource) Load(sym symbol.Class) ([]byte, bool, error) {
	for _, src := range c.Sources {
		data, ok, err := src.Load(sym)
		if err != nil {
			return nil, false, fmt.Errorf("loading %s from %s: %w", sym, src.Name(), err)
		}
		if ok {
			return data, true, nil
		}
	}
	return nil, false, nil
}
