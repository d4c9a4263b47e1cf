package bms

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Frame layout: [5A A5][len][src][tgt][cmd][index][payload...][csum_lo][csum_hi]
const (
	HeaderSize   = 7
	ChecksumSize = 2
	MinFrameSize = HeaderSize + ChecksumSize

	offsetLength = 2
	offsetSrc    = 3
	offsetTgt    = 4
	offsetCmd    = 5
	offsetIndex  = 6
)

// StartMarker opens every frame on the wire.
var StartMarker = []byte{0x5A, 0xA5}

var (
	ErrFrameTooShort  = errors.New("frame too short")
	ErrBadStartMarker = errors.New("frame does not begin with 5A A5")
	ErrLengthMismatch = errors.New("frame size does not match length byte")
)

// ChecksumError describes a structurally valid frame whose checksum did not
// verify.
type ChecksumError struct {
	Received uint16
	Computed uint16
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum error: got %04X, expected %04X", e.Received, e.Computed)
}

// Frame is one length-delimited protocol message.
type Frame struct {
	Length  byte
	Src     byte
	Tgt     byte
	Cmd     byte
	Index   byte
	Payload []byte

	ChecksumReceived uint16
	ChecksumComputed uint16
}

// FrameSize is the number of wire bytes occupied by a frame with the given
// payload length.
func FrameSize(length byte) int {
	return HeaderSize + int(length) + ChecksumSize
}

// ParseFrame splits one complete frame into its fields. The checksum is
// recorded, not enforced: use ChecksumOK or Err to check it.
func ParseFrame(raw []byte) (*Frame, error) {
	if len(raw) < MinFrameSize {
		return nil, fmt.Errorf("%w: got %d bytes, minimum is %d", ErrFrameTooShort, len(raw), MinFrameSize)
	}
	if raw[0] != StartMarker[0] || raw[1] != StartMarker[1] {
		return nil, fmt.Errorf("%w: got %02X %02X", ErrBadStartMarker, raw[0], raw[1])
	}

	length := raw[offsetLength]
	if len(raw) != FrameSize(length) {
		return nil, fmt.Errorf("%w: got %d bytes, length byte says %d", ErrLengthMismatch, len(raw), FrameSize(length))
	}

	payload := make([]byte, length)
	copy(payload, raw[HeaderSize:HeaderSize+int(length)])

	return &Frame{
		Length:           length,
		Src:              raw[offsetSrc],
		Tgt:              raw[offsetTgt],
		Cmd:              raw[offsetCmd],
		Index:            raw[offsetIndex],
		Payload:          payload,
		ChecksumReceived: binary.LittleEndian.Uint16(raw[len(raw)-ChecksumSize:]),
		ChecksumComputed: ComputeChecksum(raw),
	}, nil
}

// ChecksumOK reports whether the received checksum matches the computed one.
func (f *Frame) ChecksumOK() bool {
	return f.ChecksumReceived == f.ChecksumComputed
}

// Err returns a *ChecksumError when the checksum did not verify.
func (f *Frame) Err() error {
	if f.ChecksumOK() {
		return nil
	}
	return &ChecksumError{Received: f.ChecksumReceived, Computed: f.ChecksumComputed}
}

// Words groups the payload into little-endian 16-bit words. An odd trailing
// byte is dropped.
func (f *Frame) Words() []uint16 {
	words := make([]uint16, len(f.Payload)/2)
	for i := range words {
		words[i] = binary.LittleEndian.Uint16(f.Payload[2*i:])
	}
	return words
}

// Bytes re-encodes the frame with its received checksum.
func (f *Frame) Bytes() []byte {
	raw := make([]byte, 0, FrameSize(f.Length))
	raw = append(raw, StartMarker...)
	raw = append(raw, f.Length, f.Src, f.Tgt, f.Cmd, f.Index)
	raw = append(raw, f.Payload...)
	return binary.LittleEndian.AppendUint16(raw, f.ChecksumReceived)
}

func (f *Frame) String() string {
	return fmt.Sprintf("frame src=%02X tgt=%02X cmd=%02X index=%02X len=%d", f.Src, f.Tgt, f.Cmd, f.Index, f.Length)
}
