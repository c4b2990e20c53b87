package bencoding_test

import (
	"bytes"
	"testing"

	"github.com/LambdaP/bencoding"
	"github.com/LambdaP/bencoding/internal/testutil"
	"github.com/stretchr/testify/require"
)

func FuzzDecode(f *testing.F) {
	names, err := testutil.Fixtures("")
	if err != nil {
		f.Fatalf("failed to list seed files: %v", err)
	}
	for _, name := range names {
		data, err := testutil.ReadTestData(name + ".bencode")
		if err != nil {
			f.Fatalf("failed to read seed file %s: %v", name, err)
		}
		f.Add(data)
	}

	f.Add([]byte("0:"))
	f.Add([]byte("i-1e"))
	f.Add([]byte("le"))
	f.Add([]byte("de"))
	f.Add([]byte("d1:ai1e1:ai2ee"))
	f.Add([]byte("d1:bi0e1:ai0ee"))
	f.Add([]byte("9999999999:x"))

	f.Fuzz(func(t *testing.T, data []byte) {
		input := bytes.Clone(data)

		v, rest, err := bencoding.Decode(data)
		require.Equal(t, input, data, "Decode modified its input")
		if err != nil {
			require.Nil(t, v)
			var de *bencoding.DecodeError
			require.ErrorAs(t, err, &de)
			require.GreaterOrEqual(t, de.Offset, 0)
			require.LessOrEqual(t, de.Offset, len(data))
			return
		}
		require.NotNil(t, v)
		require.LessOrEqual(t, len(rest), len(data))

		// The encoder's output is always canonical and decodes to the
		// same tree under the strictest policy.
		enc := bencoding.Encode(v)
		v2, err := bencoding.DecodeExact(enc, bencoding.Strict())
		require.NoError(t, err, "re-decoding encoded output failed")
		require.True(t, bencoding.Equal(v, v2), "round trip changed the value")
		require.Equal(t, enc, bencoding.Encode(v2))

		// Input accepted by the strict decoder is already canonical.
		consumed := data[:len(data)-len(rest)]
		if _, err := bencoding.DecodeExact(consumed, bencoding.Strict()); err == nil {
			require.Equal(t, consumed, enc)
		}
	})
}
