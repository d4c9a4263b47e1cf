package bms

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// Bus addresses.
const (
	AddressHost    byte = 0x3D
	AddressBattery byte = 0x22
)

// DefaultReadSize is the byte count asked for by the fixed requests.
const DefaultReadSize byte = 0x20

// Request names one of the fixed polling requests.
type Request string

const (
	RequestInfo   Request = "info"
	RequestStatus Request = "status"
	RequestCells  Request = "cells"
)

var ErrUnknownRequest = errors.New("unknown request")

// DefaultRequests is the polling order used by the monitor.
var DefaultRequests = []Request{RequestInfo, RequestStatus, RequestCells}

var requestFrames = map[Request][]byte{
	RequestInfo:   {0x5A, 0xA5, 0x01, 0x3D, 0x22, 0x01, 0x10, 0x20, 0x6E, 0xFF},
	RequestStatus: {0x5A, 0xA5, 0x01, 0x3D, 0x22, 0x01, 0x30, 0x20, 0x4E, 0xFF},
	RequestCells:  {0x5A, 0xA5, 0x01, 0x3D, 0x22, 0x01, 0x40, 0x20, 0x3E, 0xFF},
}

// ParseRequest maps a request name to a Request.
func ParseRequest(name string) (Request, error) {
	request := Request(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := requestFrames[request]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRequest, name)
	}
	return request, nil
}

// Encode returns the wire bytes of a fixed request. The slice is a copy.
func Encode(request Request) ([]byte, error) {
	frame, ok := requestFrames[request]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRequest, string(request))
	}
	return append([]byte(nil), frame...), nil
}

// BuildFrame encodes a frame with a freshly computed checksum. Payloads
// longer than 255 bytes are truncated.
func BuildFrame(src, tgt, cmd, index byte, payload []byte) []byte {
	if len(payload) > 0xFF {
		payload = payload[:0xFF]
	}
	frame := make([]byte, 0, FrameSize(byte(len(payload))))
	frame = append(frame, StartMarker...)
	frame = append(frame, byte(len(payload)), src, tgt, cmd, index)
	frame = append(frame, payload...)
	return binary.LittleEndian.AppendUint16(frame, computeChecksum(frame[len(StartMarker):]))
}

// ReadRequest builds a host-to-battery read of count bytes starting at index.
func ReadRequest(index, count byte) []byte {
	return BuildFrame(AddressHost, AddressBattery, CmdRead, index, []byte{count})
}
