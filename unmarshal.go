package bencoding

import (
	"encoding"
	"fmt"
	"reflect"

	"github.com/LambdaP/bencoding/internal/structtag"
)

// Unmarshaler is the interface implemented by types that can unmarshal a
// bencoded representation of themselves. The input is a single canonical
// value; it can be retained after returning.
type Unmarshaler interface {
	UnmarshalBencode([]byte) error
}

var (
	unmarshalerType     = reflect.TypeFor[Unmarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// mapState maps a decoded value tree onto Go values.
type mapState struct{}

func (ms *mapState) mapRoot(v Value, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("bencoding: Unmarshal(non-pointer %T or nil)", out)
	}
	return ms.mapValue(v, rv.Elem())
}

func (ms *mapState) mapValue(v Value, rv reflect.Value) error { //nolint:gocyclo
	// A Value target, or one of the variant types matching v, takes the
	// tree as is. Other interfaces that Value happens to satisfy do not.
	if t := rv.Type(); (t == valueType || t == reflect.TypeOf(v)) && rv.CanSet() {
		rv.Set(reflect.ValueOf(v))
		return nil
	}

	// Attempt to use a custom unmarshaler if available.
	handled, err := ms.tryCustomUnmarshal(v, rv)
	if err != nil {
		return err
	}
	if handled {
		return nil
	}

	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			if !rv.CanSet() {
				return fmt.Errorf("bencoding: cannot set value of type %s", rv.Type())
			}
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return ms.mapValue(v, rv.Elem())
	}

	if rv.Kind() == reflect.Interface {
		if rv.NumMethod() != 0 {
			return fmt.Errorf("bencoding: cannot unmarshal into non-empty interface %s", rv.Type())
		}
		rv.Set(reflect.ValueOf(Native(v)))
		return nil
	}
	if !rv.CanSet() {
		return fmt.Errorf("bencoding: cannot set value of type %s", rv.Type())
	}

	switch node := v.(type) {
	case Str:
		return ms.mapString(node, rv)
	case Int:
		return ms.mapInt(node, rv)
	case List:
		switch rv.Kind() {
		case reflect.Slice:
			return ms.mapSlice(node, rv)
		case reflect.Array:
			return ms.mapArray(node, rv)
		}
	case Dict:
		switch rv.Kind() {
		case reflect.Struct:
			return ms.mapStruct(node, rv)
		case reflect.Map:
			return ms.mapMap(node, rv)
		}
	}
	return fmt.Errorf("bencoding: cannot unmarshal %s into Go value of type %s", v.Kind(), rv.Type())
}

// tryCustomUnmarshal attempts to use a custom unmarshaler (Unmarshaler or
// encoding.TextUnmarshaler) on the given reflect.Value. It returns true if a
// custom unmarshaler was found and used, in which case the caller should not
// proceed with default unmarshaling.
func (ms *mapState) tryCustomUnmarshal(v Value, rv reflect.Value) (bool, error) {
	if !rv.CanAddr() {
		return false, nil
	}
	pv := rv.Addr()
	if !pv.CanInterface() {
		return false, nil
	}

	if pv.Type().Implements(unmarshalerType) {
		if err := pv.Interface().(Unmarshaler).UnmarshalBencode(Encode(v)); err != nil {
			return true, &UnmarshalerError{Type: pv.Type(), Err: err}
		}
		return true, nil
	}

	if pv.Type().Implements(textUnmarshalerType) {
		s, isString := v.(Str)
		if !isString {
			// TextUnmarshaler can only be used on string values.
			return false, nil
		}
		if err := pv.Interface().(encoding.TextUnmarshaler).UnmarshalText(s); err != nil {
			return true, &UnmarshalerError{Type: pv.Type(), Err: err}
		}
		return true, nil
	}

	return false, nil
}

func (ms *mapState) mapString(s Str, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.String:
		rv.SetString(string(s))
		return nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			rv.SetBytes(append(make([]byte, 0, len(s)), s...))
			return nil
		}
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			if rv.Len() != len(s) {
				return fmt.Errorf("bencoding: cannot unmarshal string of length %d into Go array of length %d", len(s), rv.Len())
			}
			reflect.Copy(rv, reflect.ValueOf([]byte(s)))
			return nil
		}
	}
	return fmt.Errorf("bencoding: cannot unmarshal string into Go value of type %s", rv.Type())
}

func (ms *mapState) mapInt(i Int, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.OverflowInt(int64(i)) {
			return fmt.Errorf("bencoding: integer value %d overflows Go value of type %s", i, rv.Type())
		}
		rv.SetInt(int64(i))
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if i < 0 || rv.OverflowUint(uint64(i)) {
			return fmt.Errorf("bencoding: integer value %d overflows Go value of type %s", i, rv.Type())
		}
		rv.SetUint(uint64(i))
		return nil
	default:
		return fmt.Errorf("bencoding: cannot unmarshal integer into Go value of type %s", rv.Type())
	}
}

func (ms *mapState) mapSlice(l List, rv reflect.Value) error {
	newSlice := reflect.MakeSlice(rv.Type(), len(l), len(l))
	for i, elem := range l {
		if err := ms.mapValue(elem, newSlice.Index(i)); err != nil {
			return err
		}
	}
	rv.Set(newSlice)
	return nil
}

func (ms *mapState) mapArray(l List, rv reflect.Value) error {
	if rv.Len() != len(l) {
		return fmt.Errorf("bencoding: cannot unmarshal list of length %d into Go array of length %d", len(l), rv.Len())
	}
	for i, elem := range l {
		if err := ms.mapValue(elem, rv.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func (ms *mapState) mapMap(d Dict, rv reflect.Value) error {
	mapType := rv.Type()
	if mapType.Key().Kind() != reflect.String {
		return fmt.Errorf("bencoding: cannot unmarshal dictionary into map with non-string key type %s", mapType.Key())
	}
	if rv.IsNil() {
		rv.Set(reflect.MakeMap(mapType))
	} else {
		rv.Clear()
	}
	elemType := mapType.Elem()
	for _, e := range d.entries {
		newVal := reflect.New(elemType).Elem()
		if err := ms.mapValue(e.Value, newVal); err != nil {
			return err
		}
		key := reflect.ValueOf(string(e.Key)).Convert(mapType.Key())
		rv.SetMapIndex(key, newVal)
	}
	return nil
}

func (ms *mapState) mapStruct(d Dict, rv reflect.Value) error {
	layout := structtag.Cached(rv.Type())
	for _, e := range d.entries {
		f, ok := layout.Find(string(e.Key))
		if !ok {
			continue
		}
		fieldVal, err := ms.fieldForSet(rv, f.Index)
		if err != nil {
			return err
		}
		if err := ms.mapValue(e.Value, fieldVal); err != nil {
			return err
		}
	}
	return nil
}

// fieldForSet walks index from rv, allocating nil embedded struct
// pointers along the way.
func (ms *mapState) fieldForSet(rv reflect.Value, index []int) (reflect.Value, error) {
	for i, x := range index {
		if i > 0 && rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				if !rv.CanSet() {
					return reflect.Value{}, fmt.Errorf("bencoding: cannot set embedded pointer to unexported struct %s", rv.Type().Elem())
				}
				rv.Set(reflect.New(rv.Type().Elem()))
			}
			rv = rv.Elem()
		}
		rv = rv.Field(x)
	}
	return rv, nil
}
