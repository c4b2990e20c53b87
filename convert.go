package bencoding

import (
	"encoding"
	"fmt"
	"math"
	"reflect"

	"github.com/LambdaP/bencoding/internal/structtag"
)

// Marshaler is the interface implemented by types that can marshal
// themselves into valid bencode.
type Marshaler interface {
	MarshalBencode() ([]byte, error)
}

var (
	valueType         = reflect.TypeFor[Value]()
	marshalerType     = reflect.TypeFor[Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// From converts a Go value into a Value.
//
// Strings, byte slices and byte arrays become Str; signed and unsigned
// integers become Int; other slices and arrays become List; maps with
// string keys and structs become Dict. Struct fields are keyed by the
// `bencode:"name,omitempty"` tag or the field name; a "-" tag skips the
// field and nil pointer or interface fields are left out. Values that
// implement Marshaler or encoding.TextMarshaler encode themselves.
//
// Floats, booleans and other types bencode cannot represent are errors,
// as are nil Values nested in v and cyclic data structures.
func From(v any) (Value, error) {
	if v == nil {
		return nil, fmt.Errorf("bencoding: cannot convert nil")
	}
	c := &converter{}
	return c.convert(reflect.ValueOf(v))
}

// Past this many nested pointers, maps and slices the converter starts
// tracking what it has entered so that cycles fail instead of overflowing
// the stack.
const startDetectingCyclesAfter = 1000

type converter struct {
	ptrLevel uint
	ptrSeen  map[any]struct{}
}

// enter records v, a non-nil pointer, map or slice, as being converted and
// returns the func that releases it.
func (c *converter) enter(v reflect.Value) (func(), error) {
	c.ptrLevel++
	if c.ptrLevel <= startDetectingCyclesAfter {
		return func() { c.ptrLevel-- }, nil
	}
	var key any = v.UnsafePointer()
	if v.Kind() == reflect.Slice {
		// Slices sharing an array but differing in length are distinct.
		key = struct {
			ptr any
			len int
		}{key, v.Len()}
	}
	if _, ok := c.ptrSeen[key]; ok {
		c.ptrLevel--
		return nil, fmt.Errorf("bencoding: encountered a cycle via %s", v.Type())
	}
	if c.ptrSeen == nil {
		c.ptrSeen = make(map[any]struct{})
	}
	c.ptrSeen[key] = struct{}{}
	return func() {
		delete(c.ptrSeen, key)
		c.ptrLevel--
	}, nil
}

func (c *converter) convertCustom(v reflect.Value) (Value, bool, error) {
	if !v.CanInterface() {
		return nil, false, nil
	}
	if (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) && v.IsNil() {
		return nil, false, nil
	}
	if v.Type().Implements(marshalerType) {
		b, err := v.Interface().(Marshaler).MarshalBencode()
		if err != nil {
			return nil, true, &MarshalerError{Type: v.Type(), Err: err}
		}
		// The marshaled output must be parsed back into a Value to be
		// integrated into the tree being built.
		val, err := DecodeExact(b)
		if err != nil {
			return nil, true, &MarshalerError{Type: v.Type(), Err: err}
		}
		return val, true, nil
	}
	if v.Type().Implements(textMarshalerType) {
		b, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return nil, true, &MarshalerError{Type: v.Type(), Err: err}
		}
		return Str(b), true, nil
	}
	return nil, false, nil
}

func (c *converter) convert(v reflect.Value) (Value, error) { //nolint:gocyclo
	if !v.IsValid() {
		return nil, fmt.Errorf("bencoding: cannot convert nil")
	}
	if v.Kind() != reflect.Pointer && v.Type().Implements(valueType) {
		if v.Kind() == reflect.Interface && v.IsNil() {
			return nil, fmt.Errorf("bencoding: cannot convert nil Value")
		}
		val := v.Interface().(Value)
		if err := checkValue(val); err != nil {
			return nil, err
		}
		return val, nil
	}

	// Check the value itself and, for addressable values, a pointer to it,
	// to handle both value and pointer receivers.
	if val, ok, err := c.convertCustom(v); ok || err != nil {
		return val, err
	}
	if k := v.Kind(); k != reflect.Pointer && k != reflect.Interface && v.CanInterface() {
		if pt := reflect.PointerTo(v.Type()); pt.Implements(marshalerType) || pt.Implements(textMarshalerType) {
			var pv reflect.Value
			if v.CanAddr() {
				pv = v.Addr()
			} else {
				// For non-addressable values (like struct literals), use a
				// pointer to a copy to reach pointer-receiver methods.
				pv = reflect.New(v.Type())
				pv.Elem().Set(v)
			}
			if val, ok, err := c.convertCustom(pv); ok || err != nil {
				return val, err
			}
		}
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil, fmt.Errorf("bencoding: cannot convert nil %s", v.Type())
		}
		if v.Kind() == reflect.Pointer {
			leave, err := c.enter(v)
			if err != nil {
				return nil, err
			}
			defer leave()
		}
		return c.convert(v.Elem())
	case reflect.String:
		return String(v.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := v.Uint()
		if n > math.MaxInt64 {
			return nil, fmt.Errorf("bencoding: cannot convert %s %d (overflows int64)", v.Type(), n)
		}
		return Int(int64(n)), nil
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return Bytes(v.Bytes()), nil
		}
		return c.convertList(v)
	case reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, v.Len())
			reflect.Copy(reflect.ValueOf(b), v)
			return Str(b), nil
		}
		return c.convertList(v)
	case reflect.Map:
		return c.convertMap(v)
	case reflect.Struct:
		return c.convertStruct(v)
	default:
		return nil, fmt.Errorf("bencoding: unsupported type %s", v.Type())
	}
}

func (c *converter) convertList(v reflect.Value) (Value, error) {
	if v.Kind() == reflect.Slice && !v.IsNil() {
		leave, err := c.enter(v)
		if err != nil {
			return nil, err
		}
		defer leave()
	}
	l := make(List, v.Len())
	for i := 0; i < v.Len(); i++ {
		elem, err := c.convert(v.Index(i))
		if err != nil {
			return nil, err
		}
		l[i] = elem
	}
	return l, nil
}

func (c *converter) convertMap(v reflect.Value) (Value, error) {
	if v.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("bencoding: map key type must be a string, got %s", v.Type().Key())
	}
	if !v.IsNil() {
		leave, err := c.enter(v)
		if err != nil {
			return nil, err
		}
		defer leave()
	}
	var d Dict
	iter := v.MapRange()
	for iter.Next() {
		elem, err := c.convert(iter.Value())
		if err != nil {
			return nil, err
		}
		d.set([]byte(iter.Key().String()), elem)
	}
	return d, nil
}

func (c *converter) convertStruct(v reflect.Value) (Value, error) {
	var d Dict
	for _, f := range structtag.Cached(v.Type()).Fields {
		fv, ok := fieldByIndex(v, f.Index)
		if !ok {
			continue
		}
		if (fv.Kind() == reflect.Pointer || fv.Kind() == reflect.Interface) && fv.IsNil() {
			continue
		}
		if f.OmitEmpty && isEmptyValue(fv) {
			continue
		}
		elem, err := c.convert(fv)
		if err != nil {
			return nil, err
		}
		d.set([]byte(f.Name), elem)
	}
	return d, nil
}

// fieldByIndex is reflect.Value.FieldByIndex that reports false instead of
// panicking when an embedded pointer on the path is nil.
func fieldByIndex(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}

// checkValue reports an error if v or any value nested in it is nil.
func checkValue(v Value) error {
	switch n := v.(type) {
	case nil:
		return fmt.Errorf("bencoding: cannot convert nil Value")
	case List:
		for _, elem := range n {
			if err := checkValue(elem); err != nil {
				return err
			}
		}
	case Dict:
		for _, e := range n.entries {
			if err := checkValue(e.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

// isEmptyValue reports whether the value v is empty.
// It is equivalent to the `encoding/json` definition of empty:
// false, 0, a nil pointer, a nil interface value, and any empty array,
// slice, map, or string.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}
	return false
}

// Native converts a Value into plain Go values: Str becomes string, Int
// becomes int64, List becomes []any and Dict becomes map[string]any.
func Native(v Value) any {
	switch n := v.(type) {
	case Str:
		return string(n)
	case Int:
		return int64(n)
	case List:
		out := make([]any, len(n))
		for i, elem := range n {
			out[i] = Native(elem)
		}
		return out
	case Dict:
		out := make(map[string]any, n.Len())
		for _, e := range n.entries {
			out[string(e.Key)] = Native(e.Value)
		}
		return out
	}
	return nil
}
