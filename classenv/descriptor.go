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
	"fmt"

	"github.com/gojvm/hdrc/symbol"
	"github.com/gojvm/hdrc/types"
)

// parseFieldDescriptor parses one erased field/array/primitive
// descriptor, as stored in a class file outside of a Signature
// attribute (JVMS §4.3.2). It never produces generics; callers prefer
// a parsed Signature attribute when one is present and fall back to
// this only for classes compiled without one.
func parseFieldDescriptor(d string) (types.Type, error) {
	t, rest, err := parseFieldType(d)
	if err != nil {
		return types.Type{}, err
	}
	if rest != "" {
		return types.Type{}, fmt.Errorf("trailing data after field descriptor %q: %q", d, rest)
	}
	return t, nil
}

func parseFieldType(d string) (types.Type, string, error) {
	if d == "" {
		return types.Type{}, "", fmt.Errorf("empty descriptor")
	}
	switch d[0] {
	case 'Z':
		return types.Prim(types.Boolean), d[1:], nil
	case 'B':
		return types.Prim(types.Byte), d[1:], nil
	case 'S':
		return types.Prim(types.Short), d[1:], nil
	case 'C':
		return types.Prim(types.Char), d[1:], nil
	case 'I':
		return types.Prim(types.Int), d[1:], nil
	case 'J':
		return types.Prim(types.Long), d[1:], nil
	case 'F':
		return types.Prim(types.Float), d[1:], nil
	case 'D':
		return types.Prim(types.Double), d[1:], nil
	case '[':
		elem, rest, err := parseFieldType(d[1:])
		if err != nil {
			return types.Type{}, "", err
		}
		return types.Array(elem), rest, nil
	case 'L':
		end := indexByte(d, ';')
		if end < 0 {
			return types.Type{}, "", fmt.Errorf("unterminated class descriptor %q", d)
		}
		return types.Class(symbol.Class(d[1:end])), d[end+1:], nil
	default:
		return types.Type{}, "", fmt.Errorf("bad descriptor %q", d)
	}
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// parseMethodDescriptor parses a method descriptor "(params)return"
// into parameter and return types, erased (no generics).
func parseMethodDescriptor(d string) (params []types.Type, ret types.Type, err error) {
	if len(d) == 0 || d[0] != '(' {
		return nil, types.Type{}, fmt.Errorf("bad method descriptor %q", d)
	}
	rest := d[1:]
	for len(rest) > 0 && rest[0] != ')' {
		var t types.Type
		t, rest, err = parseFieldType(rest)
		if err != nil {
			return nil, types.Type{}, err
		}
		params = append(params, t)
	}
	if len(rest) == 0 {
		return nil, types.Type{}, fmt.Errorf("unterminated method descriptor %q", d)
	}
	rest = rest[1:] // skip ')'
	if rest == "V" {
		return params, types.Void, nil
	}
	t, rest, err := parseFieldType(rest)
	if err != nil {
		return nil, types.Type{}, err
	}
	if rest != "" {
		return nil, types.Type{}, fmt.Errorf("trailing data after return type in %q", d)
	}
	return params, t, nil
}
