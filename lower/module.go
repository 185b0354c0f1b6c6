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

	"github.com/gojvm/hdrc/symbol"
	"github.com/gojvm/hdrc/types"
)

// Module emits module-info.class for m: a class file of its own shape
// (JVMS §4.7.25), with no this_class/super_class and a single Module
// attribute (plus ModulePackages/ModuleMainClass when applicable).
func Module(m types.Module, packages []string, mainClass string, opts Options) ([]byte, error) {
	p := newPool()

	moduleAttr := moduleAttribute(p, m)
	var attrs []rawAttr
	attrs = append(attrs, rawAttr{"Module", moduleAttr})
	if len(packages) > 0 {
		var buf bytes.Buffer
		binary.Write(&buf, binary.BigEndian, uint16(len(packages)))
		for _, pkg := range packages {
			binary.Write(&buf, binary.BigEndian, p.packageEntry(pkg))
		}
		attrs = append(attrs, rawAttr{"ModulePackages", buf.Bytes()})
	}
	if mainClass != "" {
		var buf bytes.Buffer
		binary.Write(&buf, binary.BigEndian, p.class(symbol.Class(mainClass)))
		attrs = append(attrs, rawAttr{"ModuleMainClass", buf.Bytes()})
	}

	for _, a := range attrs {
		p.utf8(a.name)
	}
	poolBytes, poolCount := p.bytesAndCount()

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint32(classMagic))
	binary.Write(&out, binary.BigEndian, opts.MinorVersion)
	binary.Write(&out, binary.BigEndian, opts.major())
	binary.Write(&out, binary.BigEndian, poolCount)
	out.Write(poolBytes)
	binary.Write(&out, binary.BigEndian, uint16(0x8000)) // ACC_MODULE
	binary.Write(&out, binary.BigEndian, uint16(0))       // this_class: none
	binary.Write(&out, binary.BigEndian, uint16(0))       // super_class: none
	binary.Write(&out, binary.BigEndian, uint16(0))       // no interfaces
	binary.Write(&out, binary.BigEndian, uint16(0))       // no fields
	binary.Write(&out, binary.BigEndian, uint16(0))       // no methods
	binary.Write(&out, binary.BigEndian, uint16(len(attrs)))
	for _, a := range attrs {
		writeAttr(&out, p, a.name, a.payload)
	}

	return out.Bytes(), nil
}

func moduleAttribute(p *pool, m types.Module) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, p.moduleEntry(m.Name))
	binary.Write(&buf, binary.BigEndian, moduleFlagsOf(m))
	if m.Version != "" {
		binary.Write(&buf, binary.BigEndian, p.utf8(m.Version))
	} else {
		binary.Write(&buf, binary.BigEndian, uint16(0))
	}

	binary.Write(&buf, binary.BigEndian, uint16(len(m.Requires)))
	for _, r := range m.Requires {
		binary.Write(&buf, binary.BigEndian, p.moduleEntry(r.Name))
		binary.Write(&buf, binary.BigEndian, requireFlagsOf(r.Flags))
		if r.Version != "" {
			binary.Write(&buf, binary.BigEndian, p.utf8(r.Version))
		} else {
			binary.Write(&buf, binary.BigEndian, uint16(0))
		}
	}

	binary.Write(&buf, binary.BigEndian, uint16(len(m.Exports)))
	for _, e := range m.Exports {
		binary.Write(&buf, binary.BigEndian, p.packageEntry(e.Package))
		binary.Write(&buf, binary.BigEndian, uint16(0))
		binary.Write(&buf, binary.BigEndian, uint16(len(e.To)))
		for _, to := range e.To {
			binary.Write(&buf, binary.BigEndian, p.moduleEntry(to))
		}
	}

	binary.Write(&buf, binary.BigEndian, uint16(len(m.Opens)))
	for _, o := range m.Opens {
		binary.Write(&buf, binary.BigEndian, p.packageEntry(o.Package))
		binary.Write(&buf, binary.BigEndian, uint16(0))
		binary.Write(&buf, binary.BigEndian, uint16(len(o.To)))
		for _, to := range o.To {
			binary.Write(&buf, binary.BigEndian, p.moduleEntry(to))
		}
	}

	binary.Write(&buf, binary.BigEndian, uint16(len(m.Uses)))
	for _, u := range m.Uses {
		binary.Write(&buf, binary.BigEndian, p.class(u))
	}

	binary.Write(&buf, binary.BigEndian, uint16(len(m.Provides)))
	for _, pr := range m.Provides {
		binary.Write(&buf, binary.BigEndian, p.class(symbol.Class(pr.Service)))
		binary.Write(&buf, binary.BigEndian, uint16(len(pr.Impls)))
		for _, impl := range pr.Impls {
			binary.Write(&buf, binary.BigEndian, p.class(impl))
		}
	}

	return buf.Bytes()
}

func moduleFlagsOf(m types.Module) uint16 {
	var f uint16
	if m.Flags&types.ModuleOpen != 0 {
		f |= 0x0020
	}
	if m.Flags&types.ModuleMandated != 0 {
		f |= 0x8000
	}
	return f
}

func requireFlagsOf(rf types.RequireFlag) uint16 {
	var f uint16
	if rf&types.RequireTransitive != 0 {
		f |= 0x0020
	}
	if rf&types.RequireStaticPhase != 0 {
		f |= 0x0040
	}
	if rf&types.RequireMandated != 0 {
		f |= 0x8000
	}
	return f
}

