package bencoding

import (
	"errors"
	"fmt"
	"reflect"
)

// Decode error kinds. Every error returned by Decode, DecodeExact and
// Unmarshal for malformed input is a *DecodeError wrapping exactly one of
// these, so callers can match with errors.Is.
var (
	ErrUnexpectedEOF       = errors.New("unexpected end of input")
	ErrInvalidLengthPrefix = errors.New("invalid length prefix")
	ErrTruncatedString     = errors.New("truncated string")
	ErrMalformedInteger    = errors.New("malformed integer")
	ErrMissingTerminator   = errors.New("missing terminator")
	ErrDuplicateKey        = errors.New("duplicate dictionary key")
	ErrUnsortedKey         = errors.New("unsorted dictionary key")
	ErrDepthExceeded       = errors.New("nesting depth exceeded")
	ErrTrailingData        = errors.New("trailing data")
)

// A DecodeError describes malformed input. Offset is the byte position in
// the input where the offending production starts.
type DecodeError struct {
	Err    error
	Offset int
	Detail string
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("bencoding: %s at offset %d", e.Err, e.Offset)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

// A MarshalerError represents an error from calling a MarshalBencode method.
type MarshalerError struct {
	Type reflect.Type
	Err  error
}

func (e *MarshalerError) Error() string {
	return "bencoding: error calling MarshalBencode for type " + e.Type.String() + ": " + e.Err.Error()
}

func (e *MarshalerError) Unwrap() error { return e.Err }

// An UnmarshalerError represents an error from calling an UnmarshalBencode
// or UnmarshalText method.
type UnmarshalerError struct {
	Type reflect.Type
	Err  error
}

func (e *UnmarshalerError) Error() string {
	return "bencoding: error calling unmarshaler for type " + e.Type.String() + ": " + e.Err.Error()
}

func (e *UnmarshalerError) Unwrap() error { return e.Err }
