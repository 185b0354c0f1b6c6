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

// Package classenv implements the classpath half of the Env
// abstraction: a lazy, per-symbol lookup over
// compiled classes supplied from directories of .class files and from
// jars, decoded on first reference and cached thereafter.
package classenv

import (
	"fmt"

	"github.com/gojvm/hdrc/memo"
	"github.com/gojvm/hdrc/symbol"
	"github.com/gojvm/hdrc/types"
)

// Env resolves a class symbol to its fully-bound representation.
// Implementations never partially bind: a classpath-provided class is
// either fully decoded (every stage already complete, since it was
// compiled previously) or reported as absent.
type Env interface {
	Lookup(sym symbol.Class) (*types.Class, bool)
}

// Source loads the bytes of one compiled class, identified by its
// binary name (e.g. "java/util/List"), or reports that it does not
// provide that class.
type Source interface {
	// Name identifies the source for diagnostics, e.g. a jar path.
	Name() string
	// Load returns the raw bytes of sym's class file, or ok == false if
	// this source does not contain sym.
	Load(sym symbol.Class) (data []byte, ok bool, err error)
}

// ChainEnv is a compound Env consulting an ordered list of Sources,
// first match wins, matching classpath precedence: earlier entries
// shadow later ones with the same binary name. Decoded results are
// memoized per symbol in one table for the whole chain, so a class
// referenced from many compilation units is only decoded once.
type ChainEnv struct {
	sources []Source
	decoded *memo.Table[symbol.Class, *types.Class]
}

// NewChainEnv builds a ChainEnv over sources, consulted in order.
func NewChainEnv(sources ...Source) *ChainEnv {
	return &ChainEnv{sources: sources, decoded: memo.NewTable[symbol.Class, *types.Class]()}
}

// Lookup implements Env.
func (c *ChainEnv) Lookup(sym symbol.Class) (*types.Class, bool) {
	cls, err := c.decoded.Get(sym, func() (*types.Class, error) {
		for _, src := range c.sources {
			data, ok, err := src.Load(sym)
			if err != nil {
				return nil, fmt.Errorf("loading %s from %s: %w", sym, src.Name(), err)
			}
			if !ok {
				continue
			}
			return DecodeClass(data)
		}
		return nil, errNotFound
	})
	if err != nil {
		return nil, false
	}
	return cls, true
}

var errNotFound = fmt.Errorf("class not found in any classpath source")
