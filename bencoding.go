package bencoding

// Marshal returns the canonical bencoding of v. See From for how Go values
// are converted.
func Marshal(v any) ([]byte, error) {
	val, err := From(v)
	if err != nil {
		return nil, err
	}
	return Encode(val), nil
}

// Unmarshal parses exactly one bencoded value from data and stores the
// result in the value pointed to by v.
//
// A *Value (or a pointer to one of Str, Int, List, Dict) receives the
// decoded tree itself. An empty interface receives the Native form.
// Strings decode into string, []byte or a byte array of the same length;
// integers into any integer type that holds them; lists into slices and
// arrays; dictionaries into string-keyed maps and structs. Dictionary keys
// with no matching struct field are ignored.
func Unmarshal(data []byte, v any, opts ...Option) error {
	val, err := DecodeExact(data, opts...)
	if err != nil {
		return err
	}
	ms := &mapState{}
	return ms.mapRoot(val, v)
}
