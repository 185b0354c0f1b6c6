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
	"fmt"
	"math"

	"github.com/gojvm/hdrc/symbol"
)

// Constant pool tags (JVMS §4.4). Every tag the format defines is
// declared here, but the pool builder only has methods for the entries
// a header-only class file (no Code attribute) emits: Utf8, Integer,
// Float, Long, Double, Class, String, Module and Package. It has none
// for Fieldref, Methodref, InterfaceMethodref, NameAndType,
// MethodHandle, MethodType, Dynamic or InvokeDynamic.
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

// pool incrementally builds a class file's constant pool, deduplicating
// entries keyed by (tag, payload) so that identical strings share one
// Utf8 entry and a Class entry dedupes via its underlying Utf8 (spec
// §4.8). Entries are kept in first-insertion order, which is the
// emission order the format requires.
type pool struct {
	entries [][]byte // each entry's encoded tag+payload, ready to concatenate
	index   map[string]uint16
	next    uint16 // next index to hand out; starts at 1
}

func newPool() *pool {
	return &pool{index: make(map[string]uint16), next: 1}
}

// intern returns the existing index for key if present, else appends
// entry (encoded tag+payload) and assigns it the next index. slots is
// 1 for every tag except Long/Double, which consume two pool slots.
func (p *pool) intern(key string, entry []byte, slots uint16) uint16 {
	if idx, ok := p.index[key]; ok {
		return idx
	}
	idx := p.next
	p.index[key] = idx
	p.entries = append(p.entries, entry)
	p.next += slots
	return idx
}

func (p *pool) utf8(s string) uint16 {
	var buf bytes.Buffer
	buf.WriteByte(tagUtf8)
	binary.Write(&buf, binary.BigEndian, uint16(len(s)))
	buf.WriteString(s)
	return p.intern("u:"+s, buf.Bytes(), 1)
}

func (p *pool) class(sym symbol.Class) uint16 {
	nameIdx := p.utf8(string(sym))
	var buf bytes.Buffer
	buf.WriteByte(tagClass)
	binary.Write(&buf, binary.BigEndian, nameIdx)
	return p.intern(fmt.Sprintf("c:%d", nameIdx), buf.Bytes(), 1)
}

func (p *pool) moduleEntry(name string) uint16 {
	nameIdx := p.utf8(name)
	var buf bytes.Buffer
	buf.WriteByte(tagModule)
	binary.Write(&buf, binary.BigEndian, nameIdx)
	return p.intern(fmt.Sprintf("m:%d", nameIdx), buf.Bytes(), 1)
}

func (p *pool) packageEntry(name string) uint16 {
	nameIdx := p.utf8(name)
	var buf bytes.Buffer
	buf.WriteByte(tagPackage)
	binary.Write(&buf, binary.BigEndian, nameIdx)
	return p.intern(fmt.Sprintf("p:%d", nameIdx), buf.Bytes(), 1)
}

func (p *pool) stringConst(s string) uint16 {
	utf := p.utf8(s)
	var buf bytes.Buffer
	buf.WriteByte(tagString)
	binary.Write(&buf, binary.BigEndian, utf)
	return p.intern(fmt.Sprintf("s:%d", utf), buf.Bytes(), 1)
}

func (p *pool) integer(v int32) uint16 {
	var buf bytes.Buffer
	buf.WriteByte(tagInteger)
	binary.Write(&buf, binary.BigEndian, v)
	return p.intern(fmt.Sprintf("i:%d", v), buf.Bytes(), 1)
}

func (p *pool) long(v int64) uint16 {
	var buf bytes.Buffer
	buf.WriteByte(tagLong)
	binary.Write(&buf, binary.BigEndian, v)
	return p.intern(fmt.Sprintf("j:%d", v), buf.Bytes(), 2)
}

func (p *pool) float(v float32) uint16 {
	var buf bytes.Buffer
	buf.WriteByte(tagFloat)
	binary.Write(&buf, binary.BigEndian, v)
	return p.intern(fmt.Sprintf("f:%d", math.Float32bits(v)), buf.Bytes(), 1)
}

func (p *pool) double(v float64) uint16 {
	var buf bytes.Buffer
	buf.WriteByte(tagDouble)
	binary.Write(&buf, binary.BigEndian, v)
	return p.intern(fmt.Sprintf("d:%d", math.Float64bits(v)), buf.Bytes(), 2)
}

// bytesAndCount returns the pool contents encoded as the class file expects:
// a count one greater than the number of slots consumed, followed by
// each entry in insertion order.
func (p *pool) bytesAndCount() ([]byte, uint16) {
	var buf bytes.Buffer
	for _, e := range p.entries {
		buf.Write(e)
	}
	return buf.Bytes(), p.next
}
