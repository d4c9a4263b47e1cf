package bms

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Command and sub-index values used by the battery.
const (
	CmdRead         byte = 0x01
	CmdReadResponse byte = 0x04

	IndexInfo    byte = 0x10
	IndexBlock20 byte = 0x20
	IndexStatus  byte = 0x30
	IndexCells   byte = 0x40
	IndexBlock50 byte = 0x50
)

const (
	serialNumberBytes = 14
	maxCells          = 10
	absentCell        = 0xFFFF
	temperatureOffset = 20
)

// Record is the result of decoding one frame.
type Record struct {
	ChecksumOK bool
	Frame      Frame
	Fields     Fields
}

// Err returns a *ChecksumError when the frame failed verification.
func (r Record) Err() error {
	if r.ChecksumOK {
		return nil
	}
	return &ChecksumError{Received: r.Frame.ChecksumReceived, Computed: r.Frame.ChecksumComputed}
}

type layoutKey struct {
	cmd   byte
	index byte
}

type layoutFunc func(payload []byte, words []uint16) Fields

var layouts = map[layoutKey]layoutFunc{
	{CmdReadResponse, IndexInfo}:    decodeInfo,
	{CmdReadResponse, IndexBlock20}: decodeEmpty,
	{CmdReadResponse, IndexStatus}:  decodeStatus,
	{CmdReadResponse, IndexCells}:   decodeCells,
	{CmdReadResponse, IndexBlock50}: decodeEmpty,
}

// KnownLayout reports whether (cmd, index) is a recognized message type.
// Unrecognized types still decode, to an empty field set.
func KnownLayout(cmd, index byte) bool {
	_, ok := layouts[layoutKey{cmd, index}]
	return ok
}

// Decode verifies the frame checksum and decodes its payload. A checksum
// mismatch yields a record with ChecksumOK false and no fields.
func Decode(frame *Frame) Record {
	record := Record{
		ChecksumOK: frame.ChecksumOK(),
		Frame:      *frame,
		Fields:     Fields{},
	}
	if !record.ChecksumOK {
		return record
	}

	decode, ok := layouts[layoutKey{frame.Cmd, frame.Index}]
	if !ok {
		return record
	}
	record.Fields = decode(frame.Payload, frame.Words())
	return record
}

func decodeEmpty([]byte, []uint16) Fields {
	return Fields{}
}

func decodeInfo(payload []byte, words []uint16) Fields {
	fields := Fields{}

	serialBytes := payload
	if len(serialBytes) > serialNumberBytes {
		serialBytes = serialBytes[:serialNumberBytes]
	}
	fields[FieldSerialNumber] = Text(decodeASCII(serialBytes))

	if len(words) > 7 {
		fields[FieldFirmwareRaw] = Uint(uint64(words[7]))
		fields[FieldFirmwareVersion] = Text(firmwareVersion(words[7]))
	}
	if len(words) > 8 {
		fields[FieldCapacity] = Uint(uint64(words[8]))
	}
	if len(words) > 9 {
		fields[FieldTotalCapacity] = Uint(uint64(words[9]))
	}
	if len(words) > 10 {
		fields[FieldDesignVoltageRaw] = Uint(uint64(words[10]))
		fields[FieldDesignVoltage] = Float(float64(words[10]) * 0.01)
	}
	if len(words) > 11 {
		fields[FieldCycleCount] = Uint(uint64(words[11]))
	}
	if len(words) > 12 {
		fields[FieldChargeCount] = Uint(uint64(words[12]))
	}
	if len(words) > 15 {
		fields[FieldInfoTail] = Words(append([]uint16(nil), words[13:16]...))
	}
	return fields
}

func decodeStatus(_ []byte, words []uint16) Fields {
	fields := Fields{}

	unsigned := []struct {
		word int
		id   FieldID
	}{
		{0, FieldFunctionFlags},
		{1, FieldRemainingCapacity},
		{2, FieldRemainingPercent},
		{6, FieldBalanceStatus},
		{7, FieldDischargeOvercurrent},
		{8, FieldChargeOvercurrent},
		{9, FieldCoulombCapacity},
		{10, FieldVoltageCapacity},
		{11, FieldHealthPercent},
	}
	for _, field := range unsigned {
		if len(words) > field.word {
			fields[field.id] = Uint(uint64(words[field.word]))
		}
	}

	if len(words) > 3 {
		current := int16(words[3])
		fields[FieldCurrentRaw] = Int(int64(current))
		fields[FieldCurrent] = Float(float64(current) * 0.01)
	}
	if len(words) > 4 {
		fields[FieldVoltageRaw] = Uint(uint64(words[4]))
		fields[FieldVoltage] = Float(float64(words[4]) * 0.01)
	}
	if len(words) > 5 {
		fields[FieldTemp1] = Int(int64(words[5]&0xFF) - temperatureOffset)
		fields[FieldTemp2] = Int(int64(words[5]>>8) - temperatureOffset)
	}
	if len(words) > 15 {
		fields[FieldStatusReserved] = Words(append([]uint16(nil), words[12:16]...))
	}
	return fields
}

func decodeCells(_ []byte, words []uint16) Fields {
	cells := make([]Cell, 0, maxCells)
	for i := 0; i < maxCells && i < len(words); i++ {
		if words[i] == absentCell {
			continue
		}
		cells = append(cells, Cell{Number: i + 1, Volts: float64(words[i]) / 1000.0})
	}
	return Fields{FieldCells: Cells(cells)}
}

// firmwareVersion renders the four nibbles of the version word as A.B.C.D.
func firmwareVersion(word uint16) string {
	return fmt.Sprintf("%d.%d.%d.%d", word>>12&0xF, word>>8&0xF, word>>4&0xF, word&0xF)
}

// decodeASCII maps each byte to its ASCII character, replacing bytes outside
// the 7-bit range with U+FFFD.
func decodeASCII(raw []byte) string {
	var text strings.Builder
	text.Grow(len(raw))
	for _, singleByte := range raw {
		if singleByte < utf8.RuneSelf {
			text.WriteByte(singleByte)
		} else {
			text.WriteRune(utf8.RuneError)
		}
	}
	return text.String()
}
