/*
Package bencoding implements the bencode format used by BitTorrent for
torrent metadata and tracker and DHT messages.

Bencode has four productions: byte strings (4:spam), integers (i42e),
lists (l...e) and dictionaries (d...e). The package models a decoded
document as a Value, a closed set of four types: Str, Int, List and Dict.
Empty strings, empty lists and empty dictionaries are distinct values, so
every document survives a decode/encode round trip.

1. Value Trees

Decode parses bytes into a Value and Encode writes a Value back out in
canonical form: no leading zeros and dictionary keys in ascending byte
order.

	v, rest, err := bencoding.Decode([]byte("d3:cow3:moo4:spam4:eggse"))
	if err != nil {
		// errors.Is(err, bencoding.ErrTruncatedString), ...
	}
	d := v.(bencoding.Dict)
	moo, _ := d.Lookup("cow")
	out := bencoding.Encode(v) // identical to the input

Decoding is lenient about dictionaries by default: keys may arrive in any
order and a repeated key keeps its last value. Use Strict (or
DisallowDuplicateKeys and DisallowUnsortedKeys) to accept only canonical
input. Nesting is limited by MaxDepth so adversarial input cannot exhaust
the stack.

2. Go Values

Marshal and Unmarshal convert between bencode and ordinary Go values,
mirroring the standard `encoding/json` package:

	type File struct {
		Length int64    `bencode:"length"`
		Path   []string `bencode:"path"`
		MD5    string   `bencode:"md5sum,omitempty"`
	}

	var f File
	if err := bencoding.Unmarshal(data, &f); err != nil {
		// handle error
	}

Floats and booleans have no bencode representation and are rejected.
Customization is available by implementing the Marshaler and Unmarshaler
interfaces.
*/
package bencoding
