package bencoding

import (
	"fmt"
	"io"
)

// Encoder writes bencoded values to an output stream.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes the bencoding of v to the stream. v may be a Value or any
// Go value accepted by From.
func (e *Encoder) Encode(v any) error {
	val, err := From(v)
	if err != nil {
		return err
	}
	_, err = e.w.Write(Encode(val))
	return err
}

// Decoder reads and decodes a bencoded value from an input stream.
type Decoder struct {
	r    io.Reader
	opts []Option
}

// NewDecoder returns a new decoder that reads from r.
//
// Functional options can be provided to configure the decoding process,
// such as setting a maximum nesting depth with the MaxDepth option.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	return &Decoder{r: r, opts: opts}
}

// Decode reads the bencoded value from its input and stores it in the
// value pointed to by v. See Unmarshal for the conversion rules.
//
// Note: This is a non-streaming implementation. It reads the entire
// reader into memory first and requires it to hold exactly one value.
func (d *Decoder) Decode(v any) error {
	if d.r == nil {
		return fmt.Errorf("bencoding: Decode(nil reader)")
	}
	data, err := io.ReadAll(d.r)
	if err != nil {
		return err
	}
	return Unmarshal(data, v, d.opts...)
}
