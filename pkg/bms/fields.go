package bms

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldID names one decoded telemetry field.
type FieldID string

// Battery information, cmd 0x04 index 0x10.
const (
	FieldSerialNumber     FieldID = "serial_number"
	FieldFirmwareVersion  FieldID = "fw_version"
	FieldFirmwareRaw      FieldID = "fw_version_raw"
	FieldCapacity         FieldID = "capacity_mah"
	FieldTotalCapacity    FieldID = "total_capacity_mah"
	FieldDesignVoltageRaw FieldID = "design_voltage_raw"
	FieldDesignVoltage    FieldID = "design_voltage_v"
	FieldCycleCount       FieldID = "cycle_count"
	FieldChargeCount      FieldID = "charge_count"
	FieldInfoTail         FieldID = "info_tail"
)

// Battery status, cmd 0x04 index 0x30.
const (
	FieldFunctionFlags        FieldID = "function_flags"
	FieldRemainingCapacity    FieldID = "remaining_capacity_mah"
	FieldRemainingPercent     FieldID = "remaining_percent"
	FieldCurrentRaw           FieldID = "current_raw"
	FieldCurrent              FieldID = "current_a"
	FieldVoltageRaw           FieldID = "voltage_raw"
	FieldVoltage              FieldID = "voltage_v"
	FieldTemp1                FieldID = "temp1_c"
	FieldTemp2                FieldID = "temp2_c"
	FieldBalanceStatus        FieldID = "balance_status"
	FieldDischargeOvercurrent FieldID = "discharge_overcurrent"
	FieldChargeOvercurrent    FieldID = "charge_overcurrent"
	FieldCoulombCapacity      FieldID = "coulomb_capacity"
	FieldVoltageCapacity      FieldID = "voltage_capacity"
	FieldHealthPercent        FieldID = "health_percent"
	FieldStatusReserved       FieldID = "status_reserved"
)

// Cell voltages, cmd 0x04 index 0x40.
const FieldCells FieldID = "cells"

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUint
	KindInt
	KindFloat
	KindText
	KindCells
	KindWords
)

func (k Kind) String() string {
	switch k {
	case KindUint:
		return "uint"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindCells:
		return "cells"
	case KindWords:
		return "words"
	default:
		return "invalid"
	}
}

// Cell is the voltage of one populated cell. Numbers start at 1.
type Cell struct {
	Number int
	Volts  float64
}

// Name returns the display key of the cell, e.g. "cell_3".
func (c Cell) Name() string {
	return "cell_" + strconv.Itoa(c.Number)
}

// Value is one decoded field. Exactly one payload matches Kind.
type Value struct {
	kind  Kind
	u     uint64
	i     int64
	f     float64
	s     string
	cells []Cell
	words []uint16
}

// Constructors, one per Kind.
func Uint(v uint64) Value { return Value{kind: KindUint, u: v} }
func Int(v int64) Value { return Value{kind: KindInt, i: v} }
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }
func Text(v string) Value { return Value{kind: KindText, s: v} }
func Cells(v []Cell) Value { return Value{kind: KindCells, cells: v} }
func Words(v []uint16) Value { return Value{kind: KindWords, words: v} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) Uint() (uint64, bool) { return v.u, v.kind == KindUint }
func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInt }
func (v Value) Float() (float64, bool) { return v.f, v.kind == KindFloat }
func (v Value) Text() (string, bool) { return v.s, v.kind == KindText }
func (v Value) Cells() ([]Cell, bool) { return v.cells, v.kind == KindCells }
func (v Value) Words() ([]uint16, bool) { return v.words, v.kind == KindWords }

// clone copies the slice payloads so the result shares no memory with v.
func (v Value) clone() Value {
	if v.cells != nil {
		v.cells = append([]Cell(nil), v.cells...)
	}
	if v.words != nil {
		v.words = append([]uint16(nil), v.words...)
	}
	return v
}

func (v Value) String() string {
	switch v.kind {
	case KindUint:
		return strconv.FormatUint(v.u, 10)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindText:
		return v.s
	case KindCells:
		parts := make([]string, len(v.cells))
		for i, cell := range v.cells {
			parts[i] = fmt.Sprintf("%s:%.3f", cell.Name(), cell.Volts)
		}
		return "{" + strings.Join(parts, " ") + "}"
	case KindWords:
		parts := make([]string, len(v.words))
		for i, word := range v.words {
			parts[i] = fmt.Sprintf("%04X", word)
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return "<invalid>"
	}
}

// Fields maps field identifiers to decoded values.
type Fields map[FieldID]Value

// Clone returns a deep copy.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for id, value := range f {
		out[id] = value.clone()
	}
	return out
}
