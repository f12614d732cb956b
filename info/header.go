package info

import (
	"encoding/binary"
	"strconv"
)

// Frame layout
const (
	// HeaderSize is the fixed size of the header preceding every payload.
	HeaderSize = 8

	// ProtocolVersion is the protocol marker stored in the top header byte.
	ProtocolVersion = 2

	// MessageTypeInfo is the message subtype for info messages.
	MessageTypeInfo = 1

	// MaxPayloadLength is the largest length the 48-bit size field can hold.
	MaxPayloadLength = 1<<48 - 1

	lengthMask = MaxPayloadLength
)

// Payload delimiters
const (
	NameTerminator = '\n'
	ValueSeparator = '\t'
	PairSeparator  = ';'
	PairAssign     = '='
)

// Header is a decoded frame header.
type Header struct {
	Version uint8
	Type    uint8
	Length  uint64
}

// PutHeader encodes an info frame header for a payload of the given length
// into dst[:HeaderSize]. dst must hold at least HeaderSize bytes.
func PutHeader(dst []byte, length uint64) error {
	if length > MaxPayloadLength {
		return &FrameError{Message: "payload length " + strconv.FormatUint(length, 10) + " exceeds 48 bits"}
	}
	size := length | uint64(ProtocolVersion)<<56 | uint64(MessageTypeInfo)<<48
	binary.BigEndian.PutUint64(dst[:HeaderSize], size)
	return nil
}

// DecodeHeader decodes the first HeaderSize bytes of src.
func DecodeHeader(src []byte) Header {
	size := binary.BigEndian.Uint64(src[:HeaderSize])
	return Header{
		Version: uint8(size >> 56),
		Type:    uint8(size >> 48),
		Length:  size & lengthMask,
	}
}

// Validate checks the protocol marker and message type.
func (h Header) Validate() error {
	if h.Version != ProtocolVersion {
		return &FrameError{Message: "unexpected protocol version " + strconv.Itoa(int(h.Version))}
	}
	if h.Type != MessageTypeInfo {
		return &FrameError{Message: "unexpected message type " + strconv.Itoa(int(h.Type))}
	}
	return nil
}
