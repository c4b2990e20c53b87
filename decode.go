package bencoding

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
)

// Decode parses the first bencoded value in data and returns it together
// with the bytes that follow it. Byte strings and dictionary keys in the
// result are copies; the returned tree never aliases data.
//
// Dictionaries are decoded leniently by default: keys may appear in any
// order and a repeated key keeps its last value. See DisallowDuplicateKeys,
// DisallowUnsortedKeys and Strict for the canonical-only alternative.
//
// Malformed input is reported as a *DecodeError wrapping one of the Err*
// kinds; on error the returned value and remainder are nil.
func Decode(data []byte, opts ...Option) (Value, []byte, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, nil, err
	}
	ds := &decodeState{data: data, opts: o}
	v, err := ds.value()
	if err != nil {
		return nil, nil, err
	}
	return v, data[ds.off:], nil
}

// DecodeExact is like Decode but requires data to hold exactly one value.
// Any byte left after it is reported as ErrTrailingData.
func DecodeExact(data []byte, opts ...Option) (Value, error) {
	v, rest, err := Decode(data, opts...)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		off := len(data) - len(rest)
		return nil, &DecodeError{Err: ErrTrailingData, Offset: off, Detail: fmt.Sprintf("%d bytes after value", len(rest))}
	}
	return v, nil
}

// decodeState is a recursive-descent parser over an immutable input. The
// grammar is disjoint on the leading byte of every production, so a single
// byte of lookahead selects the branch and nothing is ever backtracked.
type decodeState struct {
	data  []byte
	off   int
	depth int
	opts  *options
}

func (ds *decodeState) errorf(kind error, off int, format string, args ...any) *DecodeError {
	return &DecodeError{Err: kind, Offset: off, Detail: fmt.Sprintf(format, args...)}
}

func (ds *decodeState) eof() bool {
	return ds.off >= len(ds.data)
}

func (ds *decodeState) value() (Value, error) {
	if ds.eof() {
		return nil, ds.errorf(ErrUnexpectedEOF, ds.off, "expected value")
	}
	switch ds.data[ds.off] {
	case 'i':
		return ds.integer()
	case 'l':
		return ds.list()
	case 'd':
		return ds.dict()
	default:
		s, err := ds.str()
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// digits consumes a run of ASCII digits and returns it.
func (ds *decodeState) digits() []byte {
	start := ds.off
	for ds.off < len(ds.data) && isDigit(ds.data[ds.off]) {
		ds.off++
	}
	return ds.data[start:ds.off]
}

func (ds *decodeState) str() (Str, error) {
	start := ds.off
	if !isDigit(ds.data[ds.off]) {
		return nil, ds.errorf(ErrInvalidLengthPrefix, start, "unexpected byte %q", ds.data[ds.off])
	}
	lit := ds.digits()
	if ds.eof() {
		return nil, ds.errorf(ErrUnexpectedEOF, ds.off, "expected ':' after length %s", lit)
	}
	if c := ds.data[ds.off]; c != ':' {
		return nil, ds.errorf(ErrInvalidLengthPrefix, start, "unexpected byte %q in length", c)
	}
	if len(lit) > 1 && lit[0] == '0' {
		return nil, ds.errorf(ErrInvalidLengthPrefix, start, "leading zero in length %s", lit)
	}
	ds.off++ // Consume ':'

	avail := len(ds.data) - ds.off
	n, err := strconv.ParseInt(string(lit), 10, 64)
	if err != nil || n > int64(avail) {
		return nil, ds.errorf(ErrTruncatedString, start, "declared length %s, %d bytes available", lit, avail)
	}
	s := Str(bytes.Clone(ds.data[ds.off : ds.off+int(n)]))
	ds.off += int(n)
	return s, nil
}

func (ds *decodeState) integer() (Value, error) {
	start := ds.off
	ds.off++ // Consume 'i'

	neg := !ds.eof() && ds.data[ds.off] == '-'
	if neg {
		ds.off++
	}
	lit := ds.digits()
	if ds.eof() {
		return nil, ds.errorf(ErrUnexpectedEOF, ds.off, "unterminated integer")
	}
	if c := ds.data[ds.off]; c != 'e' {
		return nil, ds.errorf(ErrMalformedInteger, start, "unexpected byte %q", c)
	}
	ds.off++ // Consume 'e'

	switch {
	case len(lit) == 0:
		return nil, ds.errorf(ErrMalformedInteger, start, "no digits")
	case len(lit) > 1 && lit[0] == '0':
		return nil, ds.errorf(ErrMalformedInteger, start, "leading zero")
	case neg && lit[0] == '0':
		return nil, ds.errorf(ErrMalformedInteger, start, "negative zero")
	}

	text := string(lit)
	if neg {
		text = "-" + text
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, ds.errorf(ErrMalformedInteger, start, "%s overflows int64", text)
	}
	return Int(n), nil
}

// enter records one more level of nesting for the container opening at off.
func (ds *decodeState) enter(off int) error {
	ds.depth++
	if ds.depth > ds.opts.maxDepth {
		return ds.errorf(ErrDepthExceeded, off, "maximum depth %d", ds.opts.maxDepth)
	}
	return nil
}

func (ds *decodeState) list() (Value, error) {
	start := ds.off
	if err := ds.enter(start); err != nil {
		return nil, err
	}
	defer func() { ds.depth-- }()
	ds.off++ // Consume 'l'

	l := List{}
	for {
		if ds.eof() {
			return nil, ds.errorf(ErrMissingTerminator, start, "list not closed")
		}
		if ds.data[ds.off] == 'e' {
			ds.off++
			return l, nil
		}
		elem, err := ds.value()
		if err != nil {
			return nil, err
		}
		l = append(l, elem)
	}
}

func (ds *decodeState) dict() (Value, error) {
	start := ds.off
	if err := ds.enter(start); err != nil {
		return nil, err
	}
	defer func() { ds.depth-- }()
	ds.off++ // Consume 'd'

	var (
		d        Dict
		prev     []byte
		resorted bool
	)
	for {
		if ds.eof() {
			return nil, ds.errorf(ErrMissingTerminator, start, "dictionary not closed")
		}
		if ds.data[ds.off] == 'e' {
			ds.off++
			if resorted {
				ds.debug("re-sorted dictionary keys", start, nil)
			}
			return d, nil
		}

		keyOff := ds.off
		s, err := ds.str()
		if err != nil {
			return nil, err
		}
		key := []byte(s)
		if ds.eof() {
			return nil, ds.errorf(ErrUnexpectedEOF, ds.off, "missing value for key %q", key)
		}
		val, err := ds.value()
		if err != nil {
			return nil, err
		}

		if prev != nil && bytes.Compare(key, prev) <= 0 {
			if ds.opts.rejectDuplicate && bytes.Equal(key, prev) {
				return nil, ds.errorf(ErrDuplicateKey, keyOff, "key %q", key)
			}
			if ds.opts.rejectUnsorted {
				return nil, ds.errorf(ErrUnsortedKey, keyOff, "key %q follows %q", key, prev)
			}
		}
		prev = key

		if d.set(key, val) {
			if ds.opts.rejectDuplicate {
				return nil, ds.errorf(ErrDuplicateKey, keyOff, "key %q", key)
			}
			ds.debug("replaced duplicate dictionary key", keyOff, key)
		} else if n := d.Len(); n > 1 && !bytes.Equal(d.entries[n-1].Key, key) {
			// set inserted before the tail, so the input was out of order.
			resorted = true
		}
	}
}

func (ds *decodeState) debug(msg string, off int, key []byte) {
	l := ds.opts.logger
	if l == nil {
		return
	}
	attrs := []any{slog.Int("offset", off)}
	if key != nil {
		attrs = append(attrs, slog.String("key", strconv.Quote(string(key))))
	}
	l.Debug("bencoding: "+msg, attrs...)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
