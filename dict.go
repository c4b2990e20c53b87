package bencoding

import (
	"bytes"
	"iter"
	"slices"
)

// Entry is a single key/value pair of a Dict.
type Entry struct {
	Key   []byte
	Value Value
}

// Dict is a dictionary keyed by raw bytes. Its entries are always held in
// ascending byte-wise key order with unique keys, which is the canonical
// encoding order. The zero Dict is an empty dictionary.
type Dict struct {
	entries []Entry
}

// NewDict returns a Dict holding the given entries. Keys are copied and
// sorted; when a key appears more than once the last entry wins.
func NewDict(entries ...Entry) Dict {
	var d Dict
	for _, e := range entries {
		d.set(bytes.Clone(e.Key), e.Value)
	}
	return d
}

// DictOf returns a Dict built from a string-keyed map.
func DictOf(m map[string]Value) Dict {
	var d Dict
	for k, v := range m {
		d.set([]byte(k), v)
	}
	return d
}

// Len returns the number of entries.
func (d Dict) Len() int { return len(d.entries) }

// Get returns the value stored under key.
func (d Dict) Get(key []byte) (Value, bool) {
	i, found := d.search(key)
	if !found {
		return nil, false
	}
	return d.entries[i].Value, true
}

// Lookup is Get for a string key.
func (d Dict) Lookup(key string) (Value, bool) {
	return d.Get([]byte(key))
}

// Keys returns the keys in ascending order. The returned slices must not be
// modified.
func (d Dict) Keys() [][]byte {
	keys := make([][]byte, len(d.entries))
	for i, e := range d.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the entries in ascending key order.
func (d Dict) Entries() []Entry {
	return slices.Clone(d.entries)
}

// All iterates over the entries in ascending key order.
func (d Dict) All() iter.Seq2[[]byte, Value] {
	return func(yield func([]byte, Value) bool) {
		for _, e := range d.entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

func (d *Dict) search(key []byte) (int, bool) {
	return slices.BinarySearchFunc(d.entries, key, func(e Entry, k []byte) int {
		return bytes.Compare(e.Key, k)
	})
}

// set stores v under key and reports whether an existing entry was
// replaced. The key is retained, not copied.
func (d *Dict) set(key []byte, v Value) bool {
	// Appending in order is the common case for canonical input.
	if n := len(d.entries); n == 0 || bytes.Compare(d.entries[n-1].Key, key) < 0 {
		d.entries = append(d.entries, Entry{Key: key, Value: v})
		return false
	}
	i, found := d.search(key)
	if found {
		d.entries[i].Value = v
		return true
	}
	d.entries = slices.Insert(d.entries, i, Entry{Key: key, Value: v})
	return false
}
