package bencoding

import (
	"fmt"
	"log/slog"
)

const defaultMaxDepth = 512

// Option configures decoding. Options are applied in order and an invalid
// option aborts the call that received it.
type Option func(*options) error

type options struct {
	maxDepth        int
	rejectDuplicate bool
	rejectUnsorted  bool
	logger          *slog.Logger
}

func newOptions(opts []Option) (*options, error) {
	o := &options{maxDepth: defaultMaxDepth}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// MaxDepth returns an Option that sets the maximum nesting depth of lists
// and dictionaries. This bounds recursion on adversarial input.
//
// The depth n must be a positive integer.
func MaxDepth(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("bencoding: max depth must be a positive integer")
		}
		o.maxDepth = n
		return nil
	}
}

// DisallowDuplicateKeys makes a repeated dictionary key a decode error
// (ErrDuplicateKey) instead of letting the last occurrence win.
func DisallowDuplicateKeys() Option {
	return func(o *options) error {
		o.rejectDuplicate = true
		return nil
	}
}

// DisallowUnsortedKeys makes a dictionary key that is not strictly greater
// than the previous key a decode error (ErrUnsortedKey).
func DisallowUnsortedKeys() Option {
	return func(o *options) error {
		o.rejectUnsorted = true
		return nil
	}
}

// Strict accepts only canonical dictionaries. It combines
// DisallowDuplicateKeys and DisallowUnsortedKeys.
func Strict() Option {
	return func(o *options) error {
		o.rejectDuplicate = true
		o.rejectUnsorted = true
		return nil
	}
}

// Logger sets a logger that receives debug records whenever the lenient
// dictionary policy changes the input: a duplicate key being replaced, or
// keys being re-sorted.
func Logger(l *slog.Logger) Option {
	return func(o *options) error {
		o.logger = l
		return nil
	}
}
