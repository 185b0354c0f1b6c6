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

// Package lower emits API-only class-file bytes from a fully-bound
// types.Class: no Code attribute is ever produced, since every method
// body is a no-op placeholder for the purposes of a header artifact.
// The byte layout and the constant-pool dedup rule follow
// JVMS §4; no corpus library writes class files byte-exact (even
// Jacobin, the pack's JVM, only reads them), so this package is built
// directly on encoding/binary and bytes.Buffer, mirroring in the write
// direction the vocabulary classenv uses to read them.
package lower

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gojvm/hdrc/sig"
	"github.com/gojvm/hdrc/symbol"
	"github.com/gojvm/hdrc/types"
)

// Env resolves a class symbol to its bound representation, used only
// to look up access flags and simple names for entries this class's
// InnerClasses attribute must list.
type Env interface {
	Lookup(sym symbol.Class) (*types.Class, bool)
}

// Options controls the emitted class file's minor and major version.
type Options struct {
	MinorVersion uint16
	MajorVersion uint16 // 0 defaults to 61 (Java 17)
}

func (o Options) major() uint16 {
	if o.MajorVersion == 0 {
		return 61
	}
	return o.MajorVersion
}

// Class emits cls as a complete class-file byte sequence.
func Class(cls *types.Class, env Env, opts Options) ([]byte, error) {
	p := newPool()

	thisIdx := p.class(cls.Sym)
	var superIdx uint16
	if cls.Super != nil && cls.Super.Kind == types.KindClass {
		superIdx = p.class(cls.Super.InnermostClass())
	}

	ifaceIdxs := make([]uint16, len(cls.Interfaces))
	for i, iface := range cls.Interfaces {
		if iface.Kind == types.KindClass {
			ifaceIdxs[i] = p.class(iface.InnermostClass())
		}
	}

	fieldsBuf, err := writeFields(p, cls, env)
	if err != nil {
		return nil, fmt.Errorf("lower %s: %w", cls.Sym, err)
	}
	methodsBuf, err := writeMethods(p, cls, env)
	if err != nil {
		return nil, fmt.Errorf("lower %s: %w", cls.Sym, err)
	}
	classAttrs := writeClassAttributes(p, cls, env)
	for _, a := range classAttrs {
		p.utf8(a.name)
	}

	// The constant pool must be fully populated before it is emitted,
	// so every section that interns constants is built before this
	// point and only concatenated afterward.
	poolBytes, poolCount := p.bytesAndCount()

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint32(classMagic))
	binary.Write(&out, binary.BigEndian, opts.MinorVersion)
	binary.Write(&out, binary.BigEndian, opts.major())
	binary.Write(&out, binary.BigEndian, poolCount)
	out.Write(poolBytes)
	binary.Write(&out, binary.BigEndian, classAccessFlags(cls))
	binary.Write(&out, binary.BigEndian, thisIdx)
	binary.Write(&out, binary.BigEndian, superIdx)
	binary.Write(&out, binary.BigEndian, uint16(len(ifaceIdxs)))
	for _, idx := range ifaceIdxs {
		binary.Write(&out, binary.BigEndian, idx)
	}
	out.Write(fieldsBuf)
	out.Write(methodsBuf)
	binary.Write(&out, binary.BigEndian, uint16(len(classAttrs)))
	for _, a := range classAttrs {
		writeAttr(&out, p, a.name, a.payload)
	}

	return out.Bytes(), nil
}

// rawAttr is one attribute's name and already-encoded payload, queued
// until the whole class (and therefore the full constant pool) is
// known, since JVMS §4.7 requires the attribute count up front but the
// pool can still grow while later attributes are built.
type rawAttr struct {
	name    string
	payload []byte
}

func writeAttr(buf *bytes.Buffer, p *pool, name string, payload []byte) {
	binary.Write(buf, binary.BigEndian, p.utf8(name))
	binary.Write(buf, binary.BigEndian, uint32(len(payload)))
	buf.Write(payload)
}

func classAccessFlags(cls *types.Class) uint16 {
	var f uint16
	if cls.Flags&types.ClassPublic != 0 {
		f |= 0x0001
	}
	if cls.Flags&types.ClassFinal != 0 {
		f |= 0x0010
	}
	if cls.Flags&types.ClassSuper != 0 || cls.Kind == types.ClassKindClass {
		f |= 0x0020
	}
	if cls.Kind == types.ClassKindInterface || cls.Kind == types.ClassKindAnnotation {
		f |= 0x0200
	}
	if cls.Flags&types.ClassAbstract != 0 || cls.Kind == types.ClassKindInterface {
		f |= 0x0400
	}
	if cls.Flags&types.ClassSynthetic != 0 {
		f |= 0x1000
	}
	if cls.Kind == types.ClassKindAnnotation {
		f |= 0x2000
	}
	if cls.Kind == types.ClassKindEnum {
		f |= 0x4000
	}
	if cls.Flags&types.ClassModule != 0 {
		f |= 0x8000
	}
	return f
}

// writeClassAttributes builds every class-level attribute applicable
// to cls, following the subset JVMS §4.7 defines for a class (as
// opposed to a field or method).
func writeClassAttributes(p *pool, cls *types.Class, env Env) []rawAttr {
	var attrs []rawAttr

	if s, ok := sig.ClassSignature(cls.TypeParams, cls.Super, cls.Interfaces, interfaceLookup(env)); ok {
		attrs = append(attrs, rawAttr{"Signature", signaturePayload(p, s)})
	}

	if len(cls.Annotations) > 0 {
		vis, invis := splitAnnotationsByRetention(cls.Annotations, env)
		if len(vis) > 0 {
			attrs = append(attrs, rawAttr{"RuntimeVisibleAnnotations", annotationsAttribute(p, vis)})
		}
		if len(invis) > 0 {
			attrs = append(attrs, rawAttr{"RuntimeInvisibleAnnotations", annotationsAttribute(p, invis)})
		}
	}

	if inner := innerClassesAttribute(p, cls, env); inner != nil {
		attrs = append(attrs, rawAttr{"InnerClasses", inner})
	}

	if cls.Outer != nil && cls.Flags&types.ClassLocalOrAnonymous != 0 {
		attrs = append(attrs, rawAttr{"EnclosingMethod", enclosingMethodAttribute(p, *cls.Outer)})
	}

	if cls.Kind == types.ClassKindRecord {
		attrs = append(attrs, rawAttr{"Record", recordAttribute(p, cls)})
	}

	if len(cls.PermittedSubclasses) > 0 {
		var buf bytes.Buffer
		binary.Write(&buf, binary.BigEndian, uint16(len(cls.PermittedSubclasses)))
		for _, s := range cls.PermittedSubclasses {
			binary.Write(&buf, binary.BigEndian, p.class(s))
		}
		attrs = append(attrs, rawAttr{"PermittedSubclasses", buf.Bytes()})
	}

	if cls.Outer != nil {
		var buf bytes.Buffer
		binary.Write(&buf, binary.BigEndian, p.class(nestHostOf(*cls.Outer, env)))
		attrs = append(attrs, rawAttr{"NestHost", buf.Bytes()})
	} else if len(cls.Nested) > 0 {
		members := collectNestMembers(cls, env)
		if len(members) > 0 {
			var buf bytes.Buffer
			binary.Write(&buf, binary.BigEndian, uint16(len(members)))
			for _, m := range members {
				binary.Write(&buf, binary.BigEndian, p.class(m))
			}
			attrs = append(attrs, rawAttr{"NestMembers", buf.Bytes()})
		}
	}

	return attrs
}

func signaturePayload(p *pool, sig string) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, p.utf8(sig))
	return buf.Bytes()
}

// interfaceLookup adapts an Env into the isInterface predicate the sig
// package needs to distinguish a type parameter's class bound from its
// interface bounds; a class not found in env (e.g. it is still being
// bound in this same compilation) is conservatively treated as a class
// bound, matching sig.ClassSignature's documented nil-callback default.
func interfaceLookup(env Env) func(types.Type) bool {
	return func(t types.Type) bool {
		if env == nil || t.Kind != types.KindClass {
			return false
		}
		c, ok := env.Lookup(t.InnermostClass())
		return ok && c.Kind == types.ClassKindInterface
	}
}

func splitAnnotationsByRetention(annos []types.AnnoInfo, env Env) (visible, invisible []types.AnnoInfo) {
	for _, a := range annos {
		if isRuntimeVisible(a.Type, env) {
			visible = append(visible, a)
		} else {
			invisible = append(invisible, a)
		}
	}
	return visible, invisible
}

// isRuntimeVisible decides an annotation's retention by checking
// whether its own declaration carries @Retention(RUNTIME). Every other
// case (no @Retention, CLASS or SOURCE retention, or an annotation type
// env cannot resolve) reports false, so the annotation is emitted as
// invisible; SOURCE-retention annotations are not omitted.
func isRuntimeVisible(annoType symbol.Class, env Env) bool {
	if env == nil {
		return false
	}
	c, ok := env.Lookup(annoType)
	if !ok {
		return false
	}
	for _, a := range c.Annotations {
		if a.Type != "java/lang/annotation/Retention" {
			continue
		}
		v, ok := a.Elements["value"]
		if !ok || v.Kind != types.ConstEnum {
			continue
		}
		return v.EnumName == "RUNTIME"
	}
	return false
}

func enclosingMethodAttribute(p *pool, outer symbol.Class) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, p.class(outer))
	binary.Write(&buf, binary.BigEndian, uint16(0)) // method_index: 0 when not enclosed by a specific method
	return buf.Bytes()
}

func recordAttribute(p *pool, cls *types.Class) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint16(len(cls.RecordComponents)))
	for _, comp := range cls.RecordComponents {
		binary.Write(&buf, binary.BigEndian, p.utf8(comp.Sym.Name))
		binary.Write(&buf, binary.BigEndian, p.utf8(descriptorOf(comp.Type)))
		var compAttrs []rawAttr
		if s, ok := sig.FieldSignature(comp.Type); ok {
			compAttrs = append(compAttrs, rawAttr{"Signature", signaturePayload(p, s)})
		}
		binary.Write(&buf, binary.BigEndian, uint16(len(compAttrs)))
		for _, a := range compAttrs {
			writeAttr(&buf, p, a.name, a.payload)
		}
	}
	return buf.Bytes()
}

// nestHostOf walks from outer up the enclosing-class chain to the
// outermost class of the nest, since JVMS §4.7.28 defines the nest
// host as the top-level (or, for a nest rooted at a member class, the
// outermost member) class, never merely the immediate parent.
func nestHostOf(outer symbol.Class, env Env) symbol.Class {
	cur := outer
	for env != nil {
		c, ok := env.Lookup(cur)
		if !ok || c.Outer == nil {
			return cur
		}
		cur = *c.Outer
	}
	return cur
}

// collectNestMembers returns cls.Nested together with the transitive
// closure of their own Nested lists, since JVMS §4.7.29 requires every
// member of the nest, not only direct children.
func collectNestMembers(cls *types.Class, env Env) []symbol.Class {
	var out []symbol.Class
	seen := make(map[symbol.Class]bool)
	var walk func(symbol.Class)
	walk = func(sym symbol.Class) {
		if seen[sym] {
			return
		}
		seen[sym] = true
		out = append(out, sym)
		if env == nil {
			return
		}
		if c, ok := env.Lookup(sym); ok {
			for _, n := range c.Nested {
				walk(n)
			}
		}
	}
	for _, n := range cls.Nested {
		walk(n)
	}
	return out
}
