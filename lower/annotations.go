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

	"github.com/gojvm/hdrc/types"
)

// writeAnnotation encodes one AnnoInfo in the annotation structure
// shared by RuntimeVisible/InvisibleAnnotations, AnnotationDefault's
// nested case, and ParameterAnnotations (JVMS §4.7.16), mirroring in
// the write direction the tag vocabulary classenv.readAnnotation reads.
func writeAnnotation(buf *bytes.Buffer, p *pool, a types.AnnoInfo) {
	typeDesc := "L" + string(a.Type) + ";"
	binary.Write(buf, binary.BigEndian, p.utf8(typeDesc))
	binary.Write(buf, binary.BigEndian, uint16(len(a.ElementOrder)))
	for _, name := range a.ElementOrder {
		binary.Write(buf, binary.BigEndian, p.utf8(name))
		writeElementValue(buf, p, a.Elements[name])
	}
}

// writeElementValue encodes one element_value structure.
func writeElementValue(buf *bytes.Buffer, p *pool, c types.Const) {
	switch c.Kind {
	case types.ConstBoolean:
		buf.WriteByte('Z')
		v := int32(0)
		if c.Bool {
			v = 1
		}
		binary.Write(buf, binary.BigEndian, p.integer(v))
	case types.ConstByte:
		buf.WriteByte('B')
		binary.Write(buf, binary.BigEndian, p.integer(int32(c.Int64)))
	case types.ConstShort:
		buf.WriteByte('S')
		binary.Write(buf, binary.BigEndian, p.integer(int32(c.Int64)))
	case types.ConstChar:
		buf.WriteByte('C')
		binary.Write(buf, binary.BigEndian, p.integer(int32(c.Int64)))
	case types.ConstInt:
		buf.WriteByte('I')
		binary.Write(buf, binary.BigEndian, p.integer(int32(c.Int64)))
	case types.ConstLong:
		buf.WriteByte('J')
		binary.Write(buf, binary.BigEndian, p.long(c.Int64))
	case types.ConstFloat:
		buf.WriteByte('F')
		binary.Write(buf, binary.BigEndian, p.float(c.Float))
	case types.ConstDouble:
		buf.WriteByte('D')
		binary.Write(buf, binary.BigEndian, p.double(c.Double))
	case types.ConstString:
		buf.WriteByte('s')
		binary.Write(buf, binary.BigEndian, p.utf8(c.Str))
	case types.ConstEnum:
		buf.WriteByte('e')
		desc := "L" + string(c.EnumType) + ";"
		binary.Write(buf, binary.BigEndian, p.utf8(desc))
		binary.Write(buf, binary.BigEndian, p.utf8(c.EnumName))
	case types.ConstClass:
		buf.WriteByte('c')
		binary.Write(buf, binary.BigEndian, p.utf8(classLiteralDescriptor(*c.ClassLit)))
	case types.ConstAnno:
		buf.WriteByte('@')
		writeAnnotation(buf, p, *c.Anno)
	case types.ConstArray:
		buf.WriteByte('[')
		binary.Write(buf, binary.BigEndian, uint16(len(c.Elems)))
		for _, e := range c.Elems {
			writeElementValue(buf, p, e)
		}
	default:
		// Unreachable for a well-formed Const; treat as an empty string
		// rather than emit a malformed entry.
		buf.WriteByte('s')
		binary.Write(buf, binary.BigEndian, p.utf8(""))
	}
}

// classLiteralDescriptor renders the field-descriptor form a class
// literal's element_value expects (JVMS §4.7.16.1: primitive class
// literals use their descriptor letter and void.class uses "V"), the
// inverse of classenv.classLiteralType.
func classLiteralDescriptor(t types.Type) string {
	switch t.Kind {
	case types.KindVoid:
		return "V"
	case types.KindPrim:
		return t.Prim.Descriptor()
	case types.KindArray:
		return "[" + classLiteralDescriptor(*t.Elem)
	case types.KindClass:
		return "L" + string(t.InnermostClass()) + ";"
	default:
		return "Ljava/lang/Object;"
	}
}

// annotationsAttribute encodes a full RuntimeVisible/InvisibleAnnotations
// attribute body (not including the attribute name/length header).
func annotationsAttribute(p *pool, annos []types.AnnoInfo) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint16(len(annos)))
	for _, a := range annos {
		writeAnnotation(&buf, p, a)
	}
	return buf.Bytes()
}

// parameterAnnotationsAttribute encodes a RuntimeVisible/Invisible
// ParameterAnnotations attribute body for one method's full parameter
// list (JVMS §4.7.18/§4.7.19: a leading num_parameters byte, not a
// u2).
func parameterAnnotationsAttribute(p *pool, perParam [][]types.AnnoInfo) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(len(perParam)))
	for _, annos := range perParam {
		binary.Write(&buf, binary.BigEndian, uint16(len(annos)))
		for _, a := range annos {
			writeAnnotation(&buf, p, a)
		}
	}
	return buf.Bytes()
}
