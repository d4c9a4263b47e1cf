package bms

import "encoding/binary"

// computeChecksum sums the bytes and returns the one's complement of the
// 16-bit sum.
func computeChecksum(region []byte) uint16 {
	var sum uint16
	for _, singleByte := range region {
		sum += uint16(singleByte)
	}
	return ^sum
}

// ComputeChecksum returns the checksum of a complete frame: every byte
// between the start marker and the trailing checksum field.
func ComputeChecksum(frame []byte) uint16 {
	if len(frame) < MinFrameSize {
		return computeChecksum(nil)
	}
	return computeChecksum(frame[len(StartMarker) : len(frame)-ChecksumSize])
}

// VerifyChecksum recomputes the checksum of a complete frame and compares it
// to the little-endian value in its last two bytes.
func VerifyChecksum(frame []byte) bool {
	if len(frame) < MinFrameSize {
		return false
	}
	received := binary.LittleEndian.Uint16(frame[len(frame)-ChecksumSize:])
	return received == ComputeChecksum(frame)
}
