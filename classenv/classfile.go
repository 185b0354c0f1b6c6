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
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gojvm/hdrc/symbol"
	"github.com/gojvm/hdrc/types"
)

// Constant pool tags (JVMS §4.4).
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

const classMagic = 0xCAFEBABE

type cpEntry struct {
	tag      byte
	utf8     string
	classIdx uint16
	nameIdx  uint16 // NameAndType: name index; Fieldref/Methodref: class index reused via classIdx
	typeIdx  uint16
	intVal   int32
	longVal  int64
	floatVal float32
	doubleVal float64
	strIdx   uint16
}

// cpool is a parsed constant pool, 1-indexed per JVMS (index 0 unused).
type cpool []cpEntry

func (p cpool) utf8(idx uint16) (string, error) {
	if int(idx) >= len(p) || p[idx].tag != tagUtf8 {
		return "", fmt.Errorf("constant pool index %d is not Utf8", idx)
	}
	return p[idx].utf8, nil
}

func (p cpool) className(idx uint16) (string, error) {
	if idx == 0 {
		return "", nil
	}
	if int(idx) >= len(p) || p[idx].tag != tagClass {
		return "", fmt.Errorf("constant pool index %d is not Class", idx)
	}
	return p.utf8(p[idx].nameIdx)
}

// DecodeClass parses a JVM class file into its fully-bound header
// representation. Only the parts a header compiler needs are
// retained: this class's identity, its hierarchy, its declared
// members and their descriptors/signatures, and annotations; Code
// attributes and anything else method-body related are skipped
// entirely.
func DecodeClass(data []byte) (*types.Class, error) {
	r := bytes.NewReader(data)
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return nil, err
	}
	if magic != classMagic {
		return nil, fmt.Errorf("bad magic %#x", magic)
	}
	var minor, major uint16
	if err := binary.Read(r, binary.BigEndian, &minor); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &major); err != nil {
		return nil, err
	}

	pool, err := readConstantPool(r)
	if err != nil {
		return nil, err
	}

	var accessFlags, thisClassIdx, superClassIdx uint16
	if err := binary.Read(r, binary.BigEndian, &accessFlags); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &thisClassIdx); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &superClassIdx); err != nil {
		return nil, err
	}

	thisName, err := pool.className(thisClassIdx)
	if err != nil {
		return nil, err
	}
	sym := symbol.Class(thisName)

	var ifaceCount uint16
	if err := binary.Read(r, binary.BigEndian, &ifaceCount); err != nil {
		return nil, err
	}
	var rawIfaces []string
	for i := 0; i < int(ifaceCount); i++ {
		var idx uint16
		if err := binary.Read(r, binary.BigEndian, &idx); err != nil {
			return nil, err
		}
		n, err := pool.className(idx)
		if err != nil {
			return nil, err
		}
		rawIfaces = append(rawIfaces, n)
	}

	cls := &types.Class{Sym: sym, Stage: types.StageConstBound, Flags: decodeClassFlags(accessFlags)}
	cls.Kind = classKindFromFlags(cls.Flags)

	if superClassIdx != 0 {
		superName, err := pool.className(superClassIdx)
		if err != nil {
			return nil, err
		}
		superTy := types.Class(symbol.Class(superName))
		cls.Super = &superTy
	}
	for _, n := range rawIfaces {
		cls.Interfaces = append(cls.Interfaces, types.Class(symbol.Class(n)))
	}

	var fieldCount uint16
	if err := binary.Read(r, binary.BigEndian, &fieldCount); err != nil {
		return nil, err
	}
	for i := 0; i < int(fieldCount); i++ {
		f, err := readField(r, pool, sym)
		if err != nil {
			return nil, err
		}
		cls.Fields = append(cls.Fields, f)
	}

	var methodCount uint16
	if err := binary.Read(r, binary.BigEndian, &methodCount); err != nil {
		return nil, err
	}
	for i := 0; i < int(methodCount); i++ {
		m, err := readMethod(r, pool, sym)
		if err != nil {
			return nil, err
		}
		cls.Methods = append(cls.Methods, m)
	}

	var classAttrCount uint16
	if err := binary.Read(r, binary.BigEndian, &classAttrCount); err != nil {
		return nil, err
	}
	for i := 0; i < int(classAttrCount); i++ {
		name, payload, err := readAttribute(r, pool)
		if err != nil {
			return nil, err
		}
		switch name {
		case "Signature":
			sigIdx := binary.BigEndian.Uint16(payload)
			sig, err := pool.utf8(sigIdx)
			if err != nil {
				return nil, err
			}
			tparams, super, ifaces, err := parseClassSignature(sym, sig)
			if err == nil {
				cls.TypeParams = tparams
				cls.Super = &super
				cls.Interfaces = ifaces
			}
		case "RuntimeVisibleAnnotations", "RuntimeInvisibleAnnotations":
			annos, err := readAnnotations(payload, pool)
			if err == nil {
				cls.Annotations = append(cls.Annotations, annos...)
			}
		}
	}

	return cls, nil
}

func readConstantPool(r *bytes.Reader) (cpool, error) {
	var count uint16
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, err
	}
	pool := make(cpool, count)
	for i := 1; i < int(count); i++ {
		var tag byte
		if err := binary.Read(r, binary.BigEndian, &tag); err != nil {
			return nil, err
		}
		e := cpEntry{tag: tag}
		switch tag {
		case tagUtf8:
			var length uint16
			if err := binary.Read(r, binary.BigEndian, &length); err != nil {
				return nil, err
			}
			buf := make([]byte, length)
			if _, err := r.Read(buf); err != nil {
				return nil, err
			}
			e.utf8 = string(buf)
		case tagInteger:
			if err := binary.Read(r, binary.BigEndian, &e.intVal); err != nil {
				return nil, err
			}
		case tagFloat:
			if err := binary.Read(r, binary.BigEndian, &e.floatVal); err != nil {
				return nil, err
			}
		case tagLong:
			if err := binary.Read(r, binary.BigEndian, &e.longVal); err != nil {
				return nil, err
			}
			pool[i] = e
			i++ // longs and doubles occupy two constant pool slots
			continue
		case tagDouble:
			if err := binary.Read(r, binary.BigEndian, &e.doubleVal); err != nil {
				return nil, err
			}
			pool[i] = e
			i++
			continue
		case tagClass, tagMethodType, tagModule, tagPackage:
			if err := binary.Read(r, binary.BigEndian, &e.nameIdx); err != nil {
				return nil, err
			}
		case tagString:
			if err := binary.Read(r, binary.BigEndian, &e.strIdx); err != nil {
				return nil, err
			}
		case tagFieldref, tagMethodref, tagInterfaceMethodref:
			if err := binary.Read(r, binary.BigEndian, &e.classIdx); err != nil {
				return nil, err
			}
			if err := binary.Read(r, binary.BigEndian, &e.nameIdx); err != nil {
				return nil, err
			}
		case tagNameAndType:
			if err := binary.Read(r, binary.BigEndian, &e.nameIdx); err != nil {
				return nil, err
			}
			if err := binary.Read(r, binary.BigEndian, &e.typeIdx); err != nil {
				return nil, err
			}
		case tagMethodHandle:
			var refKind byte
			if err := binary.Read(r, binary.BigEndian, &refKind); err != nil {
				return nil, err
			}
			if err := binary.Read(r, binary.BigEndian, &e.nameIdx); err != nil {
				return nil, err
			}
		case tagDynamic, tagInvokeDynamic:
			var bootstrapIdx uint16
			if err := binary.Read(r, binary.BigEndian, &bootstrapIdx); err != nil {
				return nil, err
			}
			if err := binary.Read(r, binary.BigEndian, &e.nameIdx); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unknown constant pool tag %d at index %d", tag, i)
		}
		pool[i] = e
	}
	return pool, nil
}

func readField(r *bytes.Reader, pool cpool, owner symbol.Class) (types.Field, error) {
	var accessFlags, nameIdx, descIdx, attrCount uint16
	if err := binary.Read(r, binary.BigEndian, &accessFlags); err != nil {
		return types.Field{}, err
	}
	if err := binary.Read(r, binary.BigEndian, &nameIdx); err != nil {
		return types.Field{}, err
	}
	if err := binary.Read(r, binary.BigEndian, &descIdx); err != nil {
		return types.Field{}, err
	}
	name, err := pool.utf8(nameIdx)
	if err != nil {
		return types.Field{}, err
	}
	desc, err := pool.utf8(descIdx)
	if err != nil {
		return types.Field{}, err
	}
	ty, err := parseFieldDescriptor(desc)
	if err != nil {
		return types.Field{}, err
	}
	f := types.Field{Sym: symbol.Field{Owner: owner, Name: name}, Type: ty, Flags: decodeFieldFlags(accessFlags)}

	if err := binary.Read(r, binary.BigEndian, &attrCount); err != nil {
		return types.Field{}, err
	}
	for i := 0; i < int(attrCount); i++ {
		attrName, payload, err := readAttribute(r, pool)
		if err != nil {
			return types.Field{}, err
		}
		switch attrName {
		case "Signature":
			sigIdx := binary.BigEndian.Uint16(payload)
			sig, err := pool.utf8(sigIdx)
			if err == nil {
				if parsed, err := parseFieldTypeSignature(sig); err == nil {
					f.Type = parsed
				}
			}
		case "ConstantValue":
			idx := binary.BigEndian.Uint16(payload)
			if c, err := constantFromPool(pool, idx, f.Type); err == nil {
				f.ConstValue = &c
			}
		case "RuntimeVisibleAnnotations", "RuntimeInvisibleAnnotations":
			if annos, err := readAnnotations(payload, pool); err == nil {
				f.Annotations = append(f.Annotations, annos...)
			}
		}
	}
	return f, nil
}

func readMethod(r *bytes.Reader, pool cpool, owner symbol.Class) (types.Method, error) {
	var accessFlags, nameIdx, descIdx, attrCount uint16
	if err := binary.Read(r, binary.BigEndian, &accessFlags); err != nil {
		return types.Method{}, err
	}
	if err := binary.Read(r, binary.BigEndian, &nameIdx); err != nil {
		return types.Method{}, err
	}
	if err := binary.Read(r, binary.BigEndian, &descIdx); err != nil {
		return types.Method{}, err
	}
	name, err := pool.utf8(nameIdx)
	if err != nil {
		return types.Method{}, err
	}
	desc, err := pool.utf8(descIdx)
	if err != nil {
		return types.Method{}, err
	}
	paramTypes, ret, err := parseMethodDescriptor(desc)
	if err != nil {
		return types.Method{}, err
	}
	m := types.Method{Sym: symbol.Method{Owner: owner, Name: name, Descriptor: desc}, Return: ret, Flags: decodeMethodFlags(accessFlags)}
	for _, pt := range paramTypes {
		m.Params = append(m.Params, types.Param{Type: pt})
	}

	if err := binary.Read(r, binary.BigEndian, &attrCount); err != nil {
		return types.Method{}, err
	}
	for i := 0; i < int(attrCount); i++ {
		attrName, payload, err := readAttribute(r, pool)
		if err != nil {
			return types.Method{}, err
		}
		switch attrName {
		case "Signature":
			sigIdx := binary.BigEndian.Uint16(payload)
			sig, err := pool.utf8(sigIdx)
			if err == nil {
				tparams, params, ret, thrown, err := parseMethodSignature(m.Sym, sig)
				if err == nil {
					m.TypeParams = tparams
					m.Return = ret
					m.Thrown = thrown
					for i := range m.Params {
						if i < len(params) {
							m.Params[i].Type = params[i]
						}
					}
				}
			}
		case "Exceptions":
			for off := 2; off+2 <= len(payload); off += 2 {
				idx := binary.BigEndian.Uint16(payload[off : off+2])
				n, err := pool.className(idx)
				if err == nil {
					m.Thrown = append(m.Thrown, types.Class(symbol.Class(n)))
				}
			}
		case "RuntimeVisibleAnnotations", "RuntimeInvisibleAnnotations":
			if annos, err := readAnnotations(payload, pool); err == nil {
				m.Annotations = append(m.Annotations, annos...)
			}
		case "AnnotationDefault":
			c, _, err := readElementValue(payload, 0, pool)
			if err == nil {
				m.Default = &c
			}
		}
	}
	return m, nil
}

func readAttribute(r *bytes.Reader, pool cpool) (name string, payload []byte, err error) {
	var nameIdx uint16
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &nameIdx); err != nil {
		return "", nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return "", nil, err
	}
	name, err = pool.utf8(nameIdx)
	if err != nil {
		return "", nil, err
	}
	payload = make([]byte, length)
	if length > 0 {
		if _, err := r.Read(payload); err != nil {
			return "", nil, err
		}
	}
	return name, payload, nil
}

func decodeClassFlags(af uint16) types.ClassFlag {
	var f types.ClassFlag
	add := func(bit uint16, v types.ClassFlag) {
		if af&bit != 0 {
			f |= v
		}
	}
	add(0x0001, types.ClassPublic)
	add(0x0010, types.ClassFinal)
	add(0x0020, types.ClassSuper)
	add(0x0200, types.ClassInterface)
	add(0x0400, types.ClassAbstract)
	add(0x1000, types.ClassSynthetic)
	add(0x2000, types.ClassAnnotation)
	add(0x4000, types.ClassEnum)
	add(0x8000, types.ClassModule)
	return f
}

func classKindFromFlags(f types.ClassFlag) types.ClassKind {
	switch {
	case f&types.ClassAnnotation != 0:
		return types.ClassKindAnnotation
	case f&types.ClassEnum != 0:
		return types.ClassKindEnum
	case f&types.ClassInterface != 0:
		return types.ClassKindInterface
	default:
		return types.ClassKindClass
	}
}

func decodeFieldFlags(af uint16) types.FieldFlag {
	var f types.FieldFlag
	add := func(bit uint16, v types.FieldFlag) {
		if af&bit != 0 {
			f |= v
		}
	}
	add(0x0001, types.FieldPublic)
	add(0x0002, types.FieldPrivate)
	add(0x0004, types.FieldProtected)
	add(0x0008, types.FieldStatic)
	add(0x0010, types.FieldFinal)
	add(0x0040, types.FieldVolatile)
	add(0x0080, types.FieldTransient)
	add(0x1000, types.FieldSynthetic)
	add(0x4000, types.FieldEnum)
	return f
}

func decodeMethodFlags(af uint16) types.MethodFlag {
	var f types.MethodFlag
	add := func(bit uint16, v types.MethodFlag) {
		if af&bit != 0 {
			f |= v
		}
	}
	add(0x0001, types.MethodPublic)
	add(0x0002, types.MethodPrivate)
	add(0x0004, types.MethodProtected)
	add(0x0008, types.MethodStatic)
	add(0x0010, types.MethodFinal)
	add(0x0020, types.MethodSynchronized)
	add(0x0040, types.MethodBridge)
	add(0x0080, types.MethodVarargs)
	add(0x0100, types.MethodNative)
	add(0x0400, types.MethodAbstract)
	add(0x0800, types.MethodStrict)
	add(0x1000, types.MethodSynthetic)
	return f
}

func constantFromPool(pool cpool, idx uint16, ty types.Type) (types.Const, error) {
	if int(idx) >= len(pool) {
		return types.Const{}, fmt.Errorf("constant pool index %d out of range", idx)
	}
	e := pool[idx]
	switch e.tag {
	case tagInteger:
		return types.ConstInt(e.intVal), nil
	case tagLong:
		return types.ConstLongVal(e.longVal), nil
	case tagFloat:
		return types.Const{Kind: types.ConstFloat, Float: e.floatVal}, nil
	case tagDouble:
		return types.Const{Kind: types.ConstDouble, Double: e.doubleVal}, nil
	case tagString:
		s, err := pool.utf8(e.strIdx)
		if err != nil {
			return types.Const{}, err
		}
		return types.ConstStr(s), nil
	default:
		return types.Const{}, fmt.Errorf("constant pool index %d (tag %d) is not a constant value", idx, e.tag)
	}
}
