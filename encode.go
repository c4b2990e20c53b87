package bencoding

import (
	"fmt"
	"strconv"
)

// Encode returns the canonical bencoding of v. Two structurally equal values
// always encode to identical bytes.
//
// v and every value nested in it must be non-nil; a nil Value is a
// programming error and causes a panic.
func Encode(v Value) []byte {
	return Append(make([]byte, 0, encodedLen(v)), v)
}

// Append appends the canonical bencoding of v to dst and returns the
// extended buffer.
func Append(dst []byte, v Value) []byte {
	switch n := v.(type) {
	case Str:
		dst = strconv.AppendInt(dst, int64(len(n)), 10)
		dst = append(dst, ':')
		return append(dst, n...)
	case Int:
		dst = append(dst, 'i')
		dst = strconv.AppendInt(dst, int64(n), 10)
		return append(dst, 'e')
	case List:
		dst = append(dst, 'l')
		for _, elem := range n {
			dst = Append(dst, elem)
		}
		return append(dst, 'e')
	case Dict:
		dst = append(dst, 'd')
		for _, e := range n.entries {
			dst = Append(dst, Str(e.Key))
			dst = Append(dst, e.Value)
		}
		return append(dst, 'e')
	case nil:
		panic("bencoding: cannot encode nil Value")
	}
	panic(fmt.Sprintf("bencoding: cannot encode value of type %T", v))
}

// encodedLen returns the exact number of bytes Append writes for v.
func encodedLen(v Value) int {
	switch n := v.(type) {
	case Str:
		return decimalLen(int64(len(n))) + 1 + len(n)
	case Int:
		return decimalLen(int64(n)) + 2
	case List:
		size := 2
		for _, elem := range n {
			size += encodedLen(elem)
		}
		return size
	case Dict:
		size := 2
		for _, e := range n.entries {
			size += decimalLen(int64(len(e.Key))) + 1 + len(e.Key)
			size += encodedLen(e.Value)
		}
		return size
	}
	return 0
}

func decimalLen(n int64) int {
	var buf [20]byte
	return len(strconv.AppendInt(buf[:0], n, 10))
}
