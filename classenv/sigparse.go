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

// sigParser is a small recursive-descent reader over the JVMS §4.7.9.1
// signature grammar (the inverse of the sig package's writer), used
// only to decode classpath-provided classes that carry a Signature
// attribute. A class-level signature's type variables are always
// scoped to owner; sigParser has no notion of a method's own
// type-variable owner until parseMethodSignature supplies one.
type sigParser struct {
	s   string
	pos int
}

func (p *sigParser) peek() byte {
	if p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *sigParser) take() byte {
	b := p.peek()
	p.pos++
	return b
}

func (p *sigParser) expect(b byte) error {
	if p.take() != b {
		return fmt.Errorf("signature %q: expected %q at offset %d", p.s, b, p.pos-1)
	}
	return nil
}

func (p *sigParser) readIdentifier() string {
	start := p.pos
	for p.pos < len(p.s) {
		switch p.s[p.pos] {
		case '.', ';', '[', '/', '<', '>', ':':
			goto done
		}
		p.pos++
	}
done:
	return p.s[start:p.pos]
}

// parseClassSignature parses a ClassSignature for owner, returning its
// type parameters, superclass, and superinterfaces.
func parseClassSignature(owner symbol.Class, sig string) (tparams []types.TypeParam, super types.Type, ifaces []types.Type, err error) {
	p := &sigParser{s: sig}
	if p.peek() == '<' {
		tparams, err = p.parseTypeParams(owner)
		if err != nil {
			return nil, types.Type{}, nil, err
		}
	}
	super, err = p.parseClassTypeSignature()
	if err != nil {
		return nil, types.Type{}, nil, err
	}
	for p.pos < len(p.s) {
		t, err := p.parseClassTypeSignature()
		if err != nil {
			return nil, types.Type{}, nil, err
		}
		ifaces = append(ifaces, t)
	}
	return tparams, super, ifaces, nil
}

// parseMethodSignature parses a MethodSignature, returning its type
// parameters, parameter types, return type, and thrown types.
func parseMethodSignature(owner symbol.Method, sig string) (tparams []types.TypeParam, params []types.Type, ret types.Type, thrown []types.Type, err error) {
	p := &sigParser{s: sig}
	if p.peek() == '<' {
		tparams, err = p.parseTypeParams(owner)
		if err != nil {
			return nil, nil, types.Type{}, nil, err
		}
	}
	if err := p.expect('('); err != nil {
		return nil, nil, types.Type{}, nil, err
	}
	for p.peek() != ')' {
		t, err := p.parseTypeSignature()
		if err != nil {
			return nil, nil, types.Type{}, nil, err
		}
		params = append(params, t)
	}
	if err := p.expect(')'); err != nil {
		return nil, nil, types.Type{}, nil, err
	}
	if p.peek() == 'V' {
		p.take()
		ret = types.Void
	} else {
		ret, err = p.parseTypeSignature()
		if err != nil {
			return nil, nil, types.Type{}, nil, err
		}
	}
	for p.peek() == '^' {
		p.take()
		var t types.Type
		if p.peek() == 'T' {
			t, err = p.parseTypeVariableSignature()
		} else {
			t, err = p.parseClassTypeSignature()
		}
		if err != nil {
			return nil, nil, types.Type{}, nil, err
		}
		thrown = append(thrown, t)
	}
	return tparams, params, ret, thrown, nil
}

// parseFieldTypeSignature parses a lone FieldSignature, as found on a
// field's Signature attribute.
func parseFieldTypeSignature(sig string) (types.Type, error) {
	p := &sigParser{s: sig}
	return p.parseTypeSignature()
}

func (p *sigParser) parseTypeParams(owner interface{}) ([]types.TypeParam, error) {
	if err := p.expect('<'); err != nil {
		return nil, err
	}
	var out []types.TypeParam
	for p.peek() != '>' {
		name := p.readIdentifier()
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		var bounds []types.Type
		if p.peek() != ':' && p.peek() != '>' {
			t, err := p.parseTypeSignature()
			if err != nil {
				return nil, err
			}
			bounds = append(bounds, t)
		}
		for p.peek() == ':' {
			p.take()
			t, err := p.parseTypeSignature()
			if err != nil {
				return nil, err
			}
			bounds = append(bounds, t)
		}
		out = append(out, types.TypeParam{
			Sym:   symbol.TyVar{Owner: owner, Name: name},
			Bound: types.Intersection(bounds...),
		})
	}
	return out, p.expect('>')
}

func (p *sigParser) parseTypeSignature() (types.Type, error) {
	switch p.peek() {
	case 'Z':
		p.take()
		return types.Prim(types.Boolean), nil
	case 'B':
		p.take()
		return types.Prim(types.Byte), nil
	case 'S':
		p.take()
		return types.Prim(types.Short), nil
	case 'C':
		p.take()
		return types.Prim(types.Char), nil
	case 'I':
		p.take()
		return types.Prim(types.Int), nil
	case 'J':
		p.take()
		return types.Prim(types.Long), nil
	case 'F':
		p.take()
		return types.Prim(types.Float), nil
	case 'D':
		p.take()
		return types.Prim(types.Double), nil
	case '[':
		p.take()
		elem, err := p.parseTypeSignature()
		if err != nil {
			return types.Type{}, err
		}
		return types.Array(elem), nil
	case 'T':
		return p.parseTypeVariableSignature()
	case 'L':
		return p.parseClassTypeSignature()
	default:
		return types.Type{}, fmt.Errorf("signature %q: unexpected %q at offset %d", p.s, p.peek(), p.pos)
	}
}

func (p *sigParser) parseTypeVariableSignature() (types.Type, error) {
	if err := p.expect('T'); err != nil {
		return types.Type{}, err
	}
	name := p.readIdentifier()
	if err := p.expect(';'); err != nil {
		return types.Type{}, err
	}
	return types.Var(symbol.TyVar{Name: name}), nil
}

func (p *sigParser) parseClassTypeSignature() (types.Type, error) {
	if err := p.expect('L'); err != nil {
		return types.Type{}, err
	}
	var parts []types.ClassPart
	pathStart := p.pos
	for {
		seg := p.readIdentifier()
		switch p.peek() {
		case '/':
			p.take()
			continue
		default:
			binary := p.s[pathStart:p.pos]
			_ = seg
			var args []types.Type
			if p.peek() == '<' {
				var err error
				args, err = p.parseTypeArguments()
				if err != nil {
					return types.Type{}, err
				}
			}
			parts = append(parts, types.ClassPart{Sym: symbol.Class(binary), Args: args})
		}
		if p.peek() == '.' {
			p.take()
			pathStart = p.pos
			continue
		}
		break
	}
	if err := p.expect(';'); err != nil {
		return types.Type{}, err
	}
	return types.Type{Kind: types.KindClass, ClassParts: parts}, nil
}

func (p *sigParser) parseTypeArguments() ([]types.Type, error) {
	if err := p.expect('<'); err != nil {
		return nil, err
	}
	var out []types.Type
	for p.peek() != '>' {
		switch p.peek() {
		case '*':
			p.take()
			out = append(out, types.WildcardUnbounded())
		case '+':
			p.take()
			t, err := p.parseTypeSignature()
			if err != nil {
				return nil, err
			}
			out = append(out, types.WildcardUpper(t))
		case '-':
			p.take()
			t, err := p.parseTypeSignature()
			if err != nil {
				return nil, err
			}
			out = append(out, types.WildcardLower(t))
		default:
			t, err := p.parseTypeSignature()
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
	}
	return out, p.expect('>')
}
