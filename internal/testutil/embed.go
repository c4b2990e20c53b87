// Package testutil exposes the bencode fixtures shared by the tests.
package testutil

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
)

// TestdataFS holds the embedded test data files.
//
//go:embed testdata
var TestdataFS embed.FS

// ReadTestData reads and returns the content of an embedded test file.
func ReadTestData(name string) ([]byte, error) {
	path := fmt.Sprintf("testdata/%s", name)
	data, err := fs.ReadFile(TestdataFS, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read test data file '%s': %w", name, err)
	}
	return data, nil
}

// Fixtures returns the names of the embedded .bencode inputs whose name
// starts with prefix, without directory or extension.
func Fixtures(prefix string) ([]string, error) {
	matches, err := fs.Glob(TestdataFS, "testdata/"+prefix+"*.bencode")
	if err != nil {
		return nil, err
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = strings.TrimSuffix(strings.TrimPrefix(m, "testdata/"), ".bencode")
	}
	return names, nil
}
