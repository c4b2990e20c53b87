package bencoding

import (
	"bytes"
	"strings"
)

// Kind identifies which of the four bencode productions a Value holds.
type Kind uint8

const (
	KindString Kind = iota + 1
	KindInteger
	KindList
	KindDict
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindList:
		return "list"
	case KindDict:
		return "dictionary"
	default:
		return "unknown"
	}
}

// Value is a decoded bencode document. It is implemented by exactly four
// types: Str, Int, List and Dict. A nil Value means "no value" and is never
// produced by the decoder.
type Value interface {
	// Kind reports which production the value belongs to.
	Kind() Kind
	// String returns the compact text rendering of the value.
	String() string

	value()
}

// Str is a byte string. It holds arbitrary bytes, not necessarily UTF-8.
type Str []byte

// Int is a bencode integer.
type Int int64

// List is an ordered sequence of values.
type List []Value

func (Str) value()  {}
func (Int) value()  {}
func (List) value() {}
func (Dict) value() {}

func (Str) Kind() Kind  { return KindString }
func (Int) Kind() Kind  { return KindInteger }
func (List) Kind() Kind { return KindList }
func (Dict) Kind() Kind { return KindDict }

func (s Str) String() string  { return render(s) }
func (i Int) String() string  { return render(i) }
func (l List) String() string { return render(l) }
func (d Dict) String() string { return render(d) }

// String returns a Str holding the bytes of s.
func String(s string) Str {
	return Str(s)
}

// Bytes returns a Str holding a copy of b.
func Bytes(b []byte) Str {
	return Str(bytes.Clone(b))
}

// NewList returns a List of the given values in order.
func NewList(vs ...Value) List {
	l := make(List, len(vs))
	copy(l, vs)
	return l
}

// Equal reports whether a and b are structurally identical. Values of
// different kinds are never equal, even when both are empty.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case Str:
		y, ok := b.(Str)
		return ok && bytes.Equal(x, y)
	case Int:
		y, ok := b.(Int)
		return ok && x == y
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Dict:
		y, ok := b.(Dict)
		if !ok || len(x.entries) != len(y.entries) {
			return false
		}
		for i := range x.entries {
			if !bytes.Equal(x.entries[i].Key, y.entries[i].Key) || !Equal(x.entries[i].Value, y.entries[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

func render(v Value) string {
	var sb strings.Builder
	// strings.Builder never returns a write error.
	_ = Format(&sb, v, 0)
	return sb.String()
}
