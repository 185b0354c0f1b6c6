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
	"encoding/binary"
	"fmt"

	"github.com/gojvm/hdrc/types"
)

// readAnnotations decodes the payload of a RuntimeVisibleAnnotations or
// RuntimeInvisibleAnnotations attribute (JVMS §4.7.16) into evaluated
// AnnoInfo values directly: a classpath-provided class's annotations
// require no further constant evaluation, unlike source-declared ones.
func readAnnotations(payload []byte, pool cpool) ([]types.AnnoInfo, error) {
	if len(payload) < 2 {
		return nil, nil
	}
	count := binary.BigEndian.Uint16(payload)
	off := 2
	var out []types.AnnoInfo
	for i := 0; i < int(count); i++ {
		a, n, err := readAnnotation(payload, off, pool)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
		off = n
	}
	return out, nil
}

func readAnnotation(b []byte, off int, pool cpool) (types.AnnoInfo, int, error) {
	if off+2 > len(b) {
		return types.AnnoInfo{}, 0, fmt.Errorf("truncated annotation")
	}
	typeIdx := binary.BigEndian.Uint16(b[off:])
	off += 2
	descriptor, err := pool.utf8(typeIdx)
	if err != nil {
		return types.AnnoInfo{}, 0, err
	}
	ty, err := parseFieldDescriptor(descriptor)
	if err != nil || ty.Kind != types.KindClass {
		return types.AnnoInfo{}, 0, fmt.Errorf("bad annotation type descriptor %q", descriptor)
	}

	if off+2 > len(b) {
		return types.AnnoInfo{}, 0, fmt.Errorf("truncated annotation")
	}
	numPairs := binary.BigEndian.Uint16(b[off:])
	off += 2

	info := types.AnnoInfo{Type: ty.InnermostClass(), Elements: make(map[string]types.Const)}
	for i := 0; i < int(numPairs); i++ {
		if off+2 > len(b) {
			return types.AnnoInfo{}, 0, fmt.Errorf("truncated annotation element")
		}
		nameIdx := binary.BigEndian.Uint16(b[off:])
		off += 2
		name, err := pool.utf8(nameIdx)
		if err != nil {
			return types.AnnoInfo{}, 0, err
		}
		var val types.Const
		val, off, err = readElementValue(b, off, pool)
		if err != nil {
			return types.AnnoInfo{}, 0, err
		}
		info.Elements[name] = val
		info.ElementOrder = append(info.ElementOrder, name)
	}
	return info, off, nil
}

// readElementValue decodes one element_value structure (JVMS
// §4.7.16.1), returning the value and the offset just past it.
func readElementValue(b []byte, off int, pool cpool) (types.Const, int, error) {
	if off >= len(b) {
		return types.Const{}, 0, fmt.Errorf("truncated element_value")
	}
	tag := b[off]
	off++
	switch tag {
	case 'B', 'C', 'I', 'S', 'Z':
		idx := binary.BigEndian.Uint16(b[off:])
		off += 2
		c, err := constantFromPool(pool, idx, types.Type{})
		return c, off, err
	case 'D', 'F', 'J':
		idx := binary.BigEndian.Uint16(b[off:])
		off += 2
		c, err := constantFromPool(pool, idx, types.Type{})
		return c, off, err
	case 's':
		idx := binary.BigEndian.Uint16(b[off:])
		off += 2
		s, err := pool.utf8(idx)
		return types.ConstStr(s), off, err
	case 'e':
		typeIdx := binary.BigEndian.Uint16(b[off:])
		off += 2
		nameIdx := binary.BigEndian.Uint16(b[off:])
		off += 2
		typeDesc, err := pool.utf8(typeIdx)
		if err != nil {
			return types.Const{}, 0, err
		}
		name, err := pool.utf8(nameIdx)
		if err != nil {
			return types.Const{}, 0, err
		}
		ty, err := parseFieldDescriptor(typeDesc)
		if err != nil {
			return types.Const{}, 0, err
		}
		return types.Const{Kind: types.ConstEnum, EnumType: ty.InnermostClass(), EnumName: name}, off, nil
	case 'c':
		idx := binary.BigEndian.Uint16(b[off:])
		off += 2
		desc, err := pool.utf8(idx)
		if err != nil {
			return types.Const{}, 0, err
		}
		ty, err := classLiteralType(desc)
		if err != nil {
			return types.Const{}, 0, err
		}
		return types.Const{Kind: types.ConstClass, ClassLit: &ty}, off, nil
	case '@':
		a, n, err := readAnnotation(b, off, pool)
		if err != nil {
			return types.Const{}, 0, err
		}
		return types.Const{Kind: types.ConstAnno, Anno: &a}, n, nil
	case '[':
		numValues := binary.BigEndian.Uint16(b[off:])
		off += 2
		var elems []types.Const
		for i := 0; i < int(numValues); i++ {
			var v types.Const
			var err error
			v, off, err = readElementValue(b, off, pool)
			if err != nil {
				return types.Const{}, 0, err
			}
			elems = append(elems, v)
		}
		return types.Const{Kind: types.ConstArray, Elems: elems}, off, nil
	default:
		return types.Const{}, 0, fmt.Errorf("unknown element_value tag %q", tag)
	}
}

// classLiteralType parses the special "Type.class" descriptor form
// used by element_value's 'c' tag, which is a field descriptor, or
// "V" for void.class.
func classLiteralType(desc string) (types.Type, error) {
	if desc == "V" {
		return types.Void, nil
	}
	return parseFieldDescriptor(desc)
}
