// Package structtag caches the bencode view of Go struct types: which
// fields are encoded, under which dictionary key, and with which options.
package structtag

import (
	"reflect"
	"strings"
	"sync"
)

// TagName is the struct tag key read by this package.
const TagName = "bencode"

// Field is a single encodable struct field.
type Field struct {
	// Name is the dictionary key, from the tag or the Go field name.
	Name      string
	Index     []int
	OmitEmpty bool
}

// Struct is the cached field layout of a struct type.
type Struct struct {
	// Fields are in declaration order, with embedded struct fields promoted
	// in place.
	Fields []Field

	byName  map[string]int
	byLower map[string]int
}

// Find returns the field for a dictionary key. An exact match wins;
// otherwise the first field whose name matches case-insensitively is used.
func (s *Struct) Find(key string) (Field, bool) {
	if i, ok := s.byName[key]; ok {
		return s.Fields[i], true
	}
	if i, ok := s.byLower[strings.ToLower(key)]; ok {
		return s.Fields[i], true
	}
	return Field{}, false
}

// Parse splits a bencode struct tag into its name and the omitempty flag.
func Parse(tag string) (name string, omitEmpty bool) {
	name, opts, _ := strings.Cut(tag, ",")
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if strings.TrimSpace(opt) == "omitempty" {
			omitEmpty = true
		}
	}
	return name, omitEmpty
}

var cache sync.Map // map[reflect.Type]*Struct

// Cached returns the field layout of the struct type t. The result is
// computed once per type.
func Cached(t reflect.Type) *Struct {
	if s, ok := cache.Load(t); ok {
		return s.(*Struct)
	}

	var all []Field
	visiting := map[reflect.Type]bool{t: true}
	var walk func(t reflect.Type, idx []int)
	walk = func(t reflect.Type, idx []int) {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			tag := sf.Tag.Get(TagName)
			if tag == "-" {
				continue
			}
			index := append(append([]int(nil), idx...), i)

			if sf.Anonymous && tag == "" {
				ft := sf.Type
				if ft.Kind() == reflect.Pointer {
					ft = ft.Elem()
				}
				if ft.Kind() == reflect.Struct {
					if !visiting[ft] {
						visiting[ft] = true
						walk(ft, index)
						delete(visiting, ft)
					}
					continue
				}
			}
			if !sf.IsExported() {
				continue
			}

			name, omitEmpty := Parse(tag)
			if name == "" {
				name = sf.Name
			}
			all = append(all, Field{Name: name, Index: index, OmitEmpty: omitEmpty})
		}
	}
	walk(t, nil)

	// A shallower field hides deeper ones with the same key. At equal depth
	// the first in declaration order wins.
	best := make(map[string]int, len(all))
	for i, f := range all {
		if j, ok := best[f.Name]; !ok || len(f.Index) < len(all[j].Index) {
			best[f.Name] = i
		}
	}

	s := &Struct{
		byName:  make(map[string]int, len(best)),
		byLower: make(map[string]int, len(best)),
	}
	for i, f := range all {
		if best[f.Name] != i {
			continue
		}
		s.byName[f.Name] = len(s.Fields)
		if lower := strings.ToLower(f.Name); !hasKey(s.byLower, lower) {
			s.byLower[lower] = len(s.Fields)
		}
		s.Fields = append(s.Fields, f)
	}

	actual, _ := cache.LoadOrStore(t, s)
	return actual.(*Struct)
}

func hasKey(m map[string]int, k string) bool {
	_, ok := m[k]
	return ok
}
