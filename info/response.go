package info

import (
	"bytes"
	"iter"
)

// ParseSingle extracts the value of a single-name response.
// Response format: <name>\t<value>\n or <name>\n
//
// The response must start with name followed by a separator, a terminator or
// the end of the payload; anything else is a ParseError. An empty string is
// returned when the name carries no value.
func ParseSingle(payload []byte, name string) (string, error) {
	start, err := skipEcho(payload, name)
	if err != nil {
		return "", err
	}
	if start >= len(payload) {
		return "", nil
	}

	value := payload[start:]
	if end := bytes.IndexByte(value, NameTerminator); end >= 0 {
		value = value[:end]
	}
	return string(value), nil
}

// skipEcho checks that payload echoes name and returns the offset of the
// value, or len(payload) when there is none.
func skipEcho(payload []byte, name string) (int, error) {
	n := len(name)
	if len(payload) < n || string(payload[:n]) != name {
		return 0, &ParseError{Message: "response does not include", Name: name}
	}
	if len(payload) == n {
		return n, nil
	}

	// A bare prefix match is not enough: "foo" must not accept "foobar\t..."
	switch payload[n] {
	case ValueSeparator:
		return n + 1, nil
	case NameTerminator:
		return len(payload), nil
	default:
		return 0, &ParseError{Message: "response does not include", Name: name}
	}
}

// ParseMulti parses a multi-name or default response into a map.
// Response format: (<name>\t<value>\n | <name>\n)*
//
// A trailing name without terminator is still included. Names without a
// value map to an empty string. When a name appears more than once the last
// value wins.
func ParseMulti(payload []byte) map[string]string {
	values := make(map[string]string)
	offset := 0
	begin := 0
	length := len(payload)

	for offset < length {
		b := payload[offset]

		switch b {
		case ValueSeparator:
			name := payload[begin:offset]
			offset++
			begin = offset

			for offset < length && payload[offset] != NameTerminator {
				offset++
			}

			if len(name) > 0 {
				values[string(name)] = string(payload[begin:offset])
			}
			offset++
			begin = offset

		case NameTerminator:
			if offset > begin {
				values[string(payload[begin:offset])] = ""
			}
			offset++
			begin = offset

		default:
			offset++
		}
	}

	if offset > begin {
		values[string(payload[begin:offset])] = ""
	}
	return values
}

// NameValueParser is a pull cursor over a value made of name/value pairs.
// Value format: <name1>=<value1>;<name2>=<value2>;...
//
// Scanning stops at the end of the buffer or at a newline. Name and Value
// read the current pair; NameBytes and ValueBytes return views into the
// underlying buffer without copying.
//
// A segment without '=' is returned as a name with no value and ends the
// iteration. An empty name ends the iteration.
type NameValueParser struct {
	buf        []byte
	offset     int
	nameBegin  int
	nameEnd    int
	valueBegin int
	valueEnd   int
	done       bool
}

// NewNameValueParser returns a cursor over value.
func NewNameValueParser(value []byte) *NameValueParser {
	return &NameValueParser{buf: value}
}

// ValueCursor returns a cursor over the value of a single-name response,
// after checking the response echoes name.
//
// Response format: <name>\t<name1>=<value1>;<name2>=<value2>;...\n
func ValueCursor(payload []byte, name string) (*NameValueParser, error) {
	start, err := skipEcho(payload, name)
	if err != nil {
		return nil, err
	}
	return &NameValueParser{buf: payload, offset: start}, nil
}

// Next moves the cursor to the next pair.
// It returns false once there are no more pairs.
func (p *NameValueParser) Next() bool {
	if p.done {
		return false
	}

	p.nameBegin = p.offset

	for p.offset < len(p.buf) {
		b := p.buf[p.offset]

		switch b {
		case PairAssign:
			if p.offset <= p.nameBegin {
				p.done = true
				return false
			}
			p.nameEnd = p.offset
			p.parseValue()
			return true

		case PairSeparator, NameTerminator:
			return p.bareName()
		}
		p.offset++
	}
	return p.bareName()
}

// bareName ends the scan on a segment that has no '='.
func (p *NameValueParser) bareName() bool {
	p.done = true
	p.nameEnd = p.offset
	p.valueBegin = p.offset
	p.valueEnd = p.offset
	return p.nameEnd > p.nameBegin
}

func (p *NameValueParser) parseValue() {
	p.offset++
	p.valueBegin = p.offset

	for p.offset < len(p.buf) {
		b := p.buf[p.offset]

		if b == PairSeparator {
			p.valueEnd = p.offset
			p.offset++
			return
		}
		if b == NameTerminator {
			// Nothing follows the value.
			p.valueEnd = p.offset
			p.offset = len(p.buf)
			return
		}
		p.offset++
	}
	p.valueEnd = p.offset
}

// Name returns the name of the current pair.
func (p *NameValueParser) Name() string {
	return string(p.NameBytes())
}

// NameBytes returns the name of the current pair without copying.
func (p *NameValueParser) NameBytes() []byte {
	return p.buf[p.nameBegin:p.nameEnd]
}

// Value returns the value of the current pair, or an empty string when the
// pair has no value.
func (p *NameValueParser) Value() string {
	return string(p.ValueBytes())
}

// ValueBytes returns the value of the current pair without copying, or nil
// when the pair has no value.
func (p *NameValueParser) ValueBytes() []byte {
	if p.valueEnd <= p.valueBegin {
		return nil
	}
	return p.buf[p.valueBegin:p.valueEnd]
}

// Pairs iterates over the name/value pairs of value.
//
//	for name, value := range info.Pairs("x=1;y=2") {
//	    ...
//	}
func Pairs(value string) iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		p := NewNameValueParser([]byte(value))
		for p.Next() {
			if !yield(p.Name(), p.Value()) {
				return
			}
		}
	}
}
