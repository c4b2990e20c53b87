package bencoding

import (
	"io"
	"strconv"
	"strings"
)

// Format writes a human-readable rendering of v to w. Byte strings are
// written as Go-quoted strings so binary payloads stay legible, integers in
// decimal, lists as [...] and dictionaries as {key: value, ...}.
//
// With indent 0 the output is a single line. A positive indent puts every
// element on its own line, nested by that many spaces per level.
func Format(w io.Writer, v Value, indent int) error {
	f := &formatter{w: w}
	if indent > 0 {
		f.indent = strings.Repeat(" ", indent)
	}
	return f.writeValue(v)
}

// formatter writes a value tree to an output stream.
type formatter struct {
	w      io.Writer
	indent string
	depth  int
}

func (f *formatter) write(s string) error {
	_, err := io.WriteString(f.w, s)
	return err
}

func (f *formatter) writeIndent() error {
	for i := 0; i < f.depth; i++ {
		if err := f.write(f.indent); err != nil {
			return err
		}
	}
	return nil
}

// writeSeparator is called before every element after the opening bracket.
func (f *formatter) writeSeparator(first bool) error {
	if f.indent == "" {
		if first {
			return nil
		}
		return f.write(", ")
	}
	if err := f.write("\n"); err != nil {
		return err
	}
	return f.writeIndent()
}

func (f *formatter) writeClose(bracket string) error {
	if f.indent != "" {
		if err := f.write("\n"); err != nil {
			return err
		}
		if err := f.writeIndent(); err != nil {
			return err
		}
	}
	return f.write(bracket)
}

func (f *formatter) writeValue(v Value) error {
	switch n := v.(type) {
	case nil:
		return f.write("<nil>")
	case Str:
		return f.write(strconv.Quote(string(n)))
	case Int:
		return f.write(strconv.FormatInt(int64(n), 10))
	case List:
		if len(n) == 0 {
			return f.write("[]")
		}
		if err := f.write("["); err != nil {
			return err
		}
		f.depth++
		for i, elem := range n {
			if err := f.writeSeparator(i == 0); err != nil {
				return err
			}
			if err := f.writeValue(elem); err != nil {
				return err
			}
		}
		f.depth--
		return f.writeClose("]")
	case Dict:
		if n.Len() == 0 {
			return f.write("{}")
		}
		if err := f.write("{"); err != nil {
			return err
		}
		f.depth++
		for i, e := range n.entries {
			if err := f.writeSeparator(i == 0); err != nil {
				return err
			}
			if err := f.write(strconv.Quote(string(e.Key)) + ": "); err != nil {
				return err
			}
			if err := f.writeValue(e.Value); err != nil {
				return err
			}
		}
		f.depth--
		return f.writeClose("}")
	}
	return nil
}
