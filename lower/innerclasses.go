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

package lower

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/gojvm/hdrc/symbol"
	"github.com/gojvm/hdrc/types"
)

// innerClassesAttribute builds the InnerClasses attribute body listing
// cls itself (if nested), its nested enclosing classes, and every class
// nested inside cls, transitively (collectNestMembers). Nested classes
// that cls only references from a signature, a supertype or an
// annotation are not listed. Returns nil when none of these is nested,
// so the attribute is omitted entirely.
func innerClassesAttribute(p *pool, cls *types.Class, env Env) []byte {
	type entry struct {
		inner, outer symbol.Class
		hasOuter     bool
		simpleName   string
		flags        uint16
	}
	seen := make(map[symbol.Class]bool)
	var entries []entry

	add := func(sym symbol.Class) {
		if seen[sym] || sym.IsTopLevel() {
			return
		}
		seen[sym] = true
		outer, _ := sym.Outer()
		_, simple := sym.Split()
		var flags uint16
		if sym == cls.Sym {
			flags = classAccessFlags(cls)
		} else if env != nil {
			if c, ok := env.Lookup(sym); ok {
				flags = classAccessFlags(c)
			}
		}
		entries = append(entries, entry{inner: sym, outer: outer, hasOuter: true, simpleName: simple, flags: flags})
	}

	add(cls.Sym)
	if cls.Outer != nil {
		for o, ok := *cls.Outer, true; ok && !o.IsTopLevel(); o, ok = o.Outer() {
			add(o)
		}
	}
	for _, n := range collectNestMembers(cls, env) {
		add(n)
	}

	if len(entries) == 0 {
		return nil
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].inner < entries[j].inner })

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint16(len(entries)))
	for _, e := range entries {
		binary.Write(&buf, binary.BigEndian, p.class(e.inner))
		if e.hasOuter {
			binary.Write(&buf, binary.BigEndian, p.class(e.outer))
		} else {
			binary.Write(&buf, binary.BigEndian, uint16(0))
		}
		binary.Write(&buf, binary.BigEndian, p.utf8(e.simpleName))
		binary.Write(&buf, binary.BigEndian, e.flags)
	}
	return buf.Bytes()
}
