// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// ScalarKind tags the active arm of a Scalar.
type ScalarKind int

const (
	ScalarInt ScalarKind = iota
	ScalarFloat
	ScalarString
)

// Scalar is the wire-grammar's value type: an integer (`<digits>i`), a
// float (bare decimal/exponent), or a string (quoted or bare). It is an
// explicit tagged variant on purpose, rather than a universal any-typed
// value.
type Scalar struct {
	kind ScalarKind
	i    int64
	f    float64
	s    string
}

func NewInt(v int64) Scalar    { return Scalar{kind: ScalarInt, i: v} }
func NewFloat(v float64) Scalar { return Scalar{kind: ScalarFloat, f: v} }
func NewString(v string) Scalar { return Scalar{kind: ScalarString, s: v} }

func (s Scalar) Kind() ScalarKind { return s.kind }

func (s Scalar) IntV() int64 {
	switch s.kind {
	case ScalarInt:
		return s.i
	case ScalarFloat:
		return int64(s.f)
	default:
		return 0
	}
}

func (s Scalar) FloatV() float64 {
	switch s.kind {
	case ScalarFloat:
		return s.f
	case ScalarInt:
		return float64(s.i)
	default:
		return 0
	}
}

func (s Scalar) StringV() string {
	switch s.kind {
	case ScalarString:
		return s.s
	case ScalarInt:
		return strconv.FormatInt(s.i, 10)
	case ScalarFloat:
		return strconv.FormatFloat(s.f, 'f', 3, 64)
	default:
		return ""
	}
}

// ParseScalar parses a single wire-grammar token: a digit run followed
// by `i` is an int64, a quoted string (or one containing '.'/'e' that does
// not parse as a number) is a string, and anything else that parses as a
// float is a float64.
func ParseScalar(tok string) Scalar {
	if strings.HasPrefix(tok, `"`) && strings.HasSuffix(tok, `"`) && len(tok) >= 2 {
		return NewString(tok[1 : len(tok)-1])
	}

	if strings.HasSuffix(tok, "i") {
		if v, err := strconv.ParseInt(strings.TrimSuffix(tok, "i"), 10, 64); err == nil {
			return NewInt(v)
		}
	}

	if v, err := strconv.ParseFloat(tok, 64); err == nil {
		return NewFloat(v)
	}

	return NewString(tok)
}

// MarshalJSON renders the Scalar as its underlying JSON type -- a number
// for Int/Float, a string for String -- so wire consumers see plain JSON
// values rather than a tagged envelope.
func (s Scalar) MarshalJSON() ([]byte, error) {
	switch s.kind {
	case ScalarInt:
		return []byte(strconv.FormatInt(s.i, 10)), nil
	case ScalarFloat:
		return []byte(strconv.FormatFloat(s.f, 'g', -1, 64)), nil
	case ScalarString:
		return []byte(strconv.Quote(s.s)), nil
	default:
		return nil, fmt.Errorf("schema: scalar has no kind set")
	}
}

func (s *Scalar) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("schema: empty scalar")
	}
	if b[0] == '"' {
		str, err := strconv.Unquote(string(b))
		if err != nil {
			return err
		}
		*s = NewString(str)
		return nil
	}
	if strings.ContainsAny(string(b), ".eE") {
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return err
		}
		*s = NewFloat(f)
		return nil
	}
	i, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(string(b), 64)
		if ferr != nil {
			return err
		}
		*s = NewFloat(f)
		return nil
	}
	*s = NewInt(i)
	return nil
}

func (s Scalar) String() string { return s.StringV() }
