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

	"github.com/gojvm/hdrc/sig"
	"github.com/gojvm/hdrc/types"
)

// descriptorOf renders t's erased field/parameter descriptor.
func descriptorOf(t types.Type) string {
	switch t.Kind {
	case types.KindVoid:
		return "V"
	case types.KindPrim:
		return t.Prim.Descriptor()
	case types.KindArray:
		return "[" + descriptorOf(*t.Elem)
	case types.KindClass:
		return "L" + string(t.InnermostClass()) + ";"
	default:
		return "Ljava/lang/Object;"
	}
}

func methodDescriptorOf(params []types.Param, ret types.Type) string {
	var sb bytes.Buffer
	sb.WriteByte('(')
	for _, p := range params {
		sb.WriteString(descriptorOf(p.Type))
	}
	sb.WriteByte(')')
	sb.WriteString(descriptorOf(ret))
	return sb.String()
}

func fieldAccessFlags(f types.Field) uint16 {
	var out uint16
	if f.Flags&types.FieldPublic != 0 {
		out |= 0x0001
	}
	if f.Flags&types.FieldPrivate != 0 {
		out |= 0x0002
	}
	if f.Flags&types.FieldProtected != 0 {
		out |= 0x0004
	}
	if f.Flags&types.FieldStatic != 0 {
		out |= 0x0008
	}
	if f.Flags&types.FieldFinal != 0 {
		out |= 0x0010
	}
	if f.Flags&types.FieldVolatile != 0 {
		out |= 0x0040
	}
	if f.Flags&types.FieldTransient != 0 {
		out |= 0x0080
	}
	if f.Flags&types.FieldSynthetic != 0 {
		out |= 0x1000
	}
	if f.Flags&types.FieldEnum != 0 {
		out |= 0x4000
	}
	return out
}

func methodAccessFlags(m types.Method) uint16 {
	var out uint16
	if m.Flags&types.MethodPublic != 0 {
		out |= 0x0001
	}
	if m.Flags&types.MethodPrivate != 0 {
		out |= 0x0002
	}
	if m.Flags&types.MethodProtected != 0 {
		out |= 0x0004
	}
	if m.Flags&types.MethodStatic != 0 {
		out |= 0x0008
	}
	if m.Flags&types.MethodFinal != 0 {
		out |= 0x0010
	}
	if m.Flags&types.MethodSynchronized != 0 {
		out |= 0x0020
	}
	if m.Flags&types.MethodBridge != 0 {
		out |= 0x0040
	}
	if m.Flags&types.MethodVarargs != 0 {
		out |= 0x0080
	}
	if m.Flags&types.MethodNative != 0 {
		out |= 0x0100
	}
	if m.Flags&types.MethodAbstract != 0 {
		out |= 0x0400
	}
	if m.Flags&types.MethodStrict != 0 {
		out |= 0x0800
	}
	if m.Flags&types.MethodSynthetic != 0 {
		out |= 0x1000
	}
	return out
}

// writeFields encodes the field_info table for every field cls
// declares, skipping nothing: a header artifact still needs every
// field's name, descriptor, and constant value.
func writeFields(p *pool, cls *types.Class, env Env) ([]byte, error) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint16(len(cls.Fields)))
	for _, f := range cls.Fields {
		binary.Write(&buf, binary.BigEndian, fieldAccessFlags(f))
		binary.Write(&buf, binary.BigEndian, p.utf8(f.Sym.Name))
		binary.Write(&buf, binary.BigEndian, p.utf8(descriptorOf(f.Type)))

		var attrs []rawAttr
		if sg, ok := sig.FieldSignature(f.Type); ok {
			attrs = append(attrs, rawAttr{"Signature", signaturePayload(p, sg)})
		}
		if f.ConstValue != nil {
			if idx, ok := constantValueIndex(p, *f.ConstValue); ok {
				var cv bytes.Buffer
				binary.Write(&cv, binary.BigEndian, idx)
				attrs = append(attrs, rawAttr{"ConstantValue", cv.Bytes()})
			}
		}
		if len(f.Annotations) > 0 {
			vis, invis := splitAnnotationsByRetention(f.Annotations, env)
			if len(vis) > 0 {
				attrs = append(attrs, rawAttr{"RuntimeVisibleAnnotations", annotationsAttribute(p, vis)})
			}
			if len(invis) > 0 {
				attrs = append(attrs, rawAttr{"RuntimeInvisibleAnnotations", annotationsAttribute(p, invis)})
			}
		}

		binary.Write(&buf, binary.BigEndian, uint16(len(attrs)))
		for _, a := range attrs {
			writeAttr(&buf, p, a.name, a.payload)
		}
	}
	return buf.Bytes(), nil
}

// constantValueIndex returns the constant-pool index for a
// ConstantValue attribute's sole entry, or (0, false) if c's kind has
// no ConstantValue representation (JVMS §4.7.2 permits only the
// primitive kinds and String).
func constantValueIndex(p *pool, c types.Const) (uint16, bool) {
	switch c.Kind {
	case types.ConstBoolean:
		v := int32(0)
		if c.Bool {
			v = 1
		}
		return p.integer(v), true
	case types.ConstByte, types.ConstShort, types.ConstChar, types.ConstInt:
		return p.integer(int32(c.Int64)), true
	case types.ConstLong:
		return p.long(c.Int64), true
	case types.ConstFloat:
		return p.float(c.Float), true
	case types.ConstDouble:
		return p.double(c.Double), true
	case types.ConstString:
		return p.stringConst(c.Str), true
	default:
		return 0, false
	}
}

// writeMethods encodes the method_info table for every method cls
// declares.
func writeMethods(p *pool, cls *types.Class, env Env) ([]byte, error) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint16(len(cls.Methods)))
	for _, m := range cls.Methods {
		binary.Write(&buf, binary.BigEndian, methodAccessFlags(m))
		binary.Write(&buf, binary.BigEndian, p.utf8(m.Sym.Name))
		binary.Write(&buf, binary.BigEndian, p.utf8(methodDescriptorOf(m.Params, m.Return)))

		isInterface := interfaceLookup(env)
		var attrs []rawAttr
		paramTypes := make([]types.Type, len(m.Params))
		for i, p2 := range m.Params {
			paramTypes[i] = p2.Type
		}
		if sg, ok := sig.MethodSignature(m.TypeParams, paramTypes, m.Return, m.Thrown, isInterface); ok {
			attrs = append(attrs, rawAttr{"Signature", signaturePayload(p, sg)})
		}

		if len(m.Thrown) > 0 {
			var ex bytes.Buffer
			binary.Write(&ex, binary.BigEndian, uint16(len(m.Thrown)))
			for _, t := range m.Thrown {
				if t.Kind == types.KindClass {
					binary.Write(&ex, binary.BigEndian, p.class(t.InnermostClass()))
				}
			}
			attrs = append(attrs, rawAttr{"Exceptions", ex.Bytes()})
		}

		if len(m.Params) > 0 {
			var mp bytes.Buffer
			mp.WriteByte(byte(len(m.Params)))
			for _, param := range m.Params {
				binary.Write(&mp, binary.BigEndian, p.utf8(param.Name))
				binary.Write(&mp, binary.BigEndian, paramAccessFlags(param))
			}
			attrs = append(attrs, rawAttr{"MethodParameters", mp.Bytes()})
		}

		if m.Default != nil {
			var dv bytes.Buffer
			writeElementValue(&dv, p, *m.Default)
			attrs = append(attrs, rawAttr{"AnnotationDefault", dv.Bytes()})
		}

		if len(m.Annotations) > 0 {
			vis, invis := splitAnnotationsByRetention(m.Annotations, env)
			if len(vis) > 0 {
				attrs = append(attrs, rawAttr{"RuntimeVisibleAnnotations", annotationsAttribute(p, vis)})
			}
			if len(invis) > 0 {
				attrs = append(attrs, rawAttr{"RuntimeInvisibleAnnotations", annotationsAttribute(p, invis)})
			}
		}
		if len(m.ParamAnnos) > 0 && anyParamAnnotated(m.ParamAnnos) {
			visParams, invisParams := splitParamAnnotationsByRetention(m.ParamAnnos, env)
			if anyParamAnnotated(visParams) {
				attrs = append(attrs, rawAttr{"RuntimeVisibleParameterAnnotations", parameterAnnotationsAttribute(p, visParams)})
			}
			if anyParamAnnotated(invisParams) {
				attrs = append(attrs, rawAttr{"RuntimeInvisibleParameterAnnotations", parameterAnnotationsAttribute(p, invisParams)})
			}
		}

		binary.Write(&buf, binary.BigEndian, uint16(len(attrs)))
		for _, a := range attrs {
			writeAttr(&buf, p, a.name, a.payload)
		}
	}
	return buf.Bytes(), nil
}

// splitParamAnnotationsByRetention splits each parameter's annotation
// list by retention the same way splitAnnotationsByRetention does for
// a single list, keeping both results parallel to perParam (one entry
// per parameter, possibly empty) so parameterAnnotationsAttribute's
// num_parameters count still matches the method's declared parameters.
func splitParamAnnotationsByRetention(perParam [][]types.AnnoInfo, env Env) (visible, invisible [][]types.AnnoInfo) {
	visible = make([][]types.AnnoInfo, len(perParam))
	invisible = make([][]types.AnnoInfo, len(perParam))
	for i, annos := range perParam {
		visible[i], invisible[i] = splitAnnotationsByRetention(annos, env)
	}
	return visible, invisible
}

func anyParamAnnotated(perParam [][]types.AnnoInfo) bool {
	for _, annos := range perParam {
		if len(annos) > 0 {
			return true
		}
	}
	return false
}

func paramAccessFlags(p types.Param) uint16 {
	var out uint16
	if p.Flags&types.MethodFinal != 0 {
		out |= 0x0010
	}
	if p.Flags&types.MethodSynthetic != 0 {
		out |= 0x1000
	}
	return out
}
