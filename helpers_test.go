package bencoding_test

import (
	"testing"

	"github.com/LambdaP/bencoding"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// requireValue fails the test unless want and got are structurally equal,
// printing a diff of the two trees.
func requireValue(t *testing.T, want, got bencoding.Value) {
	t.Helper()
	require.True(t, bencoding.Equal(want, got), "value mismatch (-want +got):\n%s",
		cmp.Diff(want, got, cmp.AllowUnexported(bencoding.Dict{})))
}

func dict(kv ...any) bencoding.Dict {
	entries := make([]bencoding.Entry, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		entries = append(entries, bencoding.Entry{Key: []byte(kv[i].(string)), Value: kv[i+1].(bencoding.Value)})
	}
	return bencoding.NewDict(entries...)
}
