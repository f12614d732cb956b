package info

import "io"

// RequestOne asks for a single name over rw and returns its value.
// An empty string means the server returned the name without a value.
func RequestOne(rw io.ReadWriter, buf *Buffer, name string) (string, error) {
	if err := RoundTrip(rw, buf, 0, name); err != nil {
		return "", err
	}
	return ParseSingle(buf.Bytes(), name)
}

// RequestMany asks for several names over rw in a single round-trip.
// Response order is decided by the server; the result is keyed by name.
func RequestMany(rw io.ReadWriter, buf *Buffer, names ...string) (map[string]string, error) {
	if err := RoundTrip(rw, buf, 0, names...); err != nil {
		return nil, err
	}
	return ParseMulti(buf.Bytes()), nil
}

// RequestDefault sends an empty request, which makes the server return its
// default set of names and values.
func RequestDefault(rw io.ReadWriter, buf *Buffer) (map[string]string, error) {
	return RequestMany(rw, buf)
}

// RequestValues asks for a single name whose value is a list of name/value
// pairs and returns a cursor over them. The cursor reads buf directly and is
// only valid until buf is reused.
func RequestValues(rw io.ReadWriter, buf *Buffer, name string) (*NameValueParser, error) {
	if err := RoundTrip(rw, buf, 0, name); err != nil {
		return nil, err
	}
	return ValueCursor(buf.Bytes(), name)
}
