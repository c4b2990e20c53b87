package bencoding_test

import (
	"errors"
	"math"
	"net/netip"
	"testing"

	"github.com/LambdaP/bencoding"
	"github.com/stretchr/testify/require"
)

type infoFile struct {
	Length int64    `bencode:"length"`
	Path   []string `bencode:"path"`
	MD5    string   `bencode:"md5sum,omitempty"`
}

type common struct {
	Name    string `bencode:"name"`
	private int
}

type withEmbedded struct {
	common
	Count  uint8
	Skip   string `bencode:"-"`
	Ptr    *int   `bencode:"ptr"`
	Extra  any    `bencode:"extra"`
	Shadow string `bencode:"name"`
}

// peer marshals itself as a compact 2-element list.
type peer struct {
	IP   string
	Port int
}

func (p peer) MarshalBencode() ([]byte, error) {
	return bencoding.Marshal([]any{p.IP, p.Port})
}

// token has a pointer-receiver marshaler.
type token struct{ v string }

func (t *token) MarshalBencode() ([]byte, error) {
	return bencoding.Encode(bencoding.String("tok:" + t.v)), nil
}

type badMarshaler struct{ out string }

func (b badMarshaler) MarshalBencode() ([]byte, error) {
	if b.out == "" {
		return nil, errors.New("boom")
	}
	return []byte(b.out), nil
}

func TestFrom(t *testing.T) {
	n := 5
	testCases := []struct {
		name string
		in   any
		want bencoding.Value
	}{
		{name: "String", in: "spam", want: bencoding.String("spam")},
		{name: "Bytes", in: []byte{0, 1}, want: bencoding.Str{0, 1}},
		{name: "Byte array", in: [3]byte{'a', 'b', 'c'}, want: bencoding.String("abc")},
		{name: "Int", in: -7, want: bencoding.Int(-7)},
		{name: "Int8", in: int8(-128), want: bencoding.Int(-128)},
		{name: "Uint64", in: uint64(math.MaxInt64), want: bencoding.Int(math.MaxInt64)},
		{name: "Pointer", in: &n, want: bencoding.Int(5)},
		{name: "Slice", in: []int{1, 2}, want: bencoding.List{bencoding.Int(1), bencoding.Int(2)}},
		{name: "Empty slice", in: []string{}, want: bencoding.List{}},
		{name: "Array", in: [2]string{"a", "b"}, want: bencoding.List{bencoding.String("a"), bencoding.String("b")}},
		{
			name: "Map",
			in:   map[string]any{"z": 1, "a": "x"},
			want: dict("a", bencoding.String("x"), "z", bencoding.Int(1)),
		},
		{name: "Value passes through", in: bencoding.Int(3), want: bencoding.Int(3)},
		{
			name: "Nested Value passes through",
			in:   []bencoding.Value{dict("k", bencoding.List{})},
			want: bencoding.List{dict("k", bencoding.List{})},
		},
		{
			name: "Struct",
			in:   infoFile{Length: 10, Path: []string{"a", "b.txt"}},
			want: dict("length", bencoding.Int(10), "path", bencoding.List{bencoding.String("a"), bencoding.String("b.txt")}),
		},
		{
			name: "Struct with omitempty set",
			in:   infoFile{Length: 1, Path: []string{}, MD5: "abc"},
			want: dict("length", bencoding.Int(1), "md5sum", bencoding.String("abc"), "path", bencoding.List{}),
		},
		{
			name: "Embedded struct and skipped fields",
			in:   withEmbedded{common: common{Name: "promoted", private: 1}, Count: 2, Skip: "x", Shadow: "outer"},
			want: dict("Count", bencoding.Int(2), "name", bencoding.String("outer")),
		},
		{
			name: "Non-nil pointer and interface fields",
			in:   withEmbedded{Ptr: &n, Extra: []string{"e"}},
			want: dict(
				"Count", bencoding.Int(0),
				"extra", bencoding.List{bencoding.String("e")},
				"name", bencoding.Str{},
				"ptr", bencoding.Int(5),
			),
		},
		{
			name: "Value receiver Marshaler",
			in:   []peer{{IP: "10.0.0.1", Port: 6881}},
			want: bencoding.List{bencoding.List{bencoding.String("10.0.0.1"), bencoding.Int(6881)}},
		},
		{name: "Pointer receiver Marshaler", in: &token{v: "a"}, want: bencoding.String("tok:a")},
		{name: "Pointer receiver Marshaler on value", in: token{v: "b"}, want: bencoding.String("tok:b")},
		{name: "TextMarshaler", in: netip.MustParseAddr("192.168.1.1"), want: bencoding.String("192.168.1.1")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := bencoding.From(tc.in)
			require.NoError(t, err)
			requireValue(t, tc.want, got)
		})
	}
}

func TestFrom_Errors(t *testing.T) {
	var nilPtr *int
	testCases := []struct {
		name    string
		in      any
		wantErr string
	}{
		{name: "Nil", in: nil, wantErr: "bencoding: cannot convert nil"},
		{name: "Nil pointer", in: nilPtr, wantErr: "bencoding: cannot convert nil *int"},
		{name: "Float", in: 1.5, wantErr: "bencoding: unsupported type float64"},
		{name: "Bool", in: true, wantErr: "bencoding: unsupported type bool"},
		{name: "Float in list", in: []any{1, 2.5}, wantErr: "bencoding: unsupported type float64"},
		{name: "Uint overflow", in: uint64(math.MaxUint64), wantErr: "bencoding: cannot convert uint64 18446744073709551615 (overflows int64)"},
		{name: "Non-string map key", in: map[int]string{1: "a"}, wantErr: "bencoding: map key type must be a string, got int"},
		{name: "Nil Value in list", in: []bencoding.Value{nil}, wantErr: "bencoding: cannot convert nil Value"},
		{name: "Nil element in List", in: bencoding.List{bencoding.Int(1), nil}, wantErr: "bencoding: cannot convert nil Value"},
		{
			name:    "Nil value in Dict",
			in:      bencoding.NewDict(bencoding.Entry{Key: []byte("a")}),
			wantErr: "bencoding: cannot convert nil Value",
		},
		{
			name:    "Nil value deep in a Dict field",
			in:      struct{ D bencoding.Dict }{D: dict("x", bencoding.List{bencoding.List{nil}})},
			wantErr: "bencoding: cannot convert nil Value",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := bencoding.From(tc.in)
			require.EqualError(t, err, tc.wantErr)
		})
	}
}

func TestMarshal_NilValueIsAnError(t *testing.T) {
	require.NotPanics(t, func() {
		_, err := bencoding.Marshal(bencoding.List{nil})
		require.EqualError(t, err, "bencoding: cannot convert nil Value")
	})
}

type node struct {
	Name string `bencode:"name"`
	Next *node  `bencode:"next,omitempty"`
}

func TestFrom_Cycles(t *testing.T) {
	t.Run("Pointer", func(t *testing.T) {
		n := &node{Name: "a"}
		n.Next = &node{Name: "b", Next: n}
		_, err := bencoding.From(n)
		require.EqualError(t, err, "bencoding: encountered a cycle via *bencoding_test.node")
	})

	t.Run("Map", func(t *testing.T) {
		m := map[string]any{}
		m["self"] = m
		_, err := bencoding.Marshal(m)
		require.EqualError(t, err, "bencoding: encountered a cycle via map[string]interface {}")
	})

	t.Run("Slice", func(t *testing.T) {
		s := []any{nil}
		s[0] = s
		_, err := bencoding.Marshal(s)
		require.EqualError(t, err, "bencoding: encountered a cycle via []interface {}")
	})

	t.Run("Deep acyclic chain", func(t *testing.T) {
		head := &node{Name: "0"}
		for range 1500 {
			head = &node{Name: "n", Next: head}
		}
		_, err := bencoding.From(head)
		require.NoError(t, err)
	})

	t.Run("Shared non-cyclic pointer", func(t *testing.T) {
		shared := &node{Name: "s"}
		v, err := bencoding.From([]*node{shared, shared})
		require.NoError(t, err)
		requireValue(t, bencoding.List{dict("name", bencoding.String("s")), dict("name", bencoding.String("s"))}, v)
	})
}

func TestFrom_MarshalerErrors(t *testing.T) {
	t.Run("Method error", func(t *testing.T) {
		_, err := bencoding.From(badMarshaler{})
		var me *bencoding.MarshalerError
		require.ErrorAs(t, err, &me)
		require.EqualError(t, err, "bencoding: error calling MarshalBencode for type bencoding_test.badMarshaler: boom")
	})

	t.Run("Invalid output", func(t *testing.T) {
		_, err := bencoding.From(badMarshaler{out: "i1ei2e"})
		var me *bencoding.MarshalerError
		require.ErrorAs(t, err, &me)
		require.ErrorIs(t, err, bencoding.ErrTrailingData)
	})
}

func TestNative(t *testing.T) {
	v := dict(
		"s", bencoding.String("x"),
		"i", bencoding.Int(-1),
		"l", bencoding.List{bencoding.Int(1), bencoding.Dict{}},
	)
	require.Equal(t, map[string]any{
		"s": "x",
		"i": int64(-1),
		"l": []any{int64(1), map[string]any{}},
	}, bencoding.Native(v))
	require.Nil(t, bencoding.Native(nil))
}
