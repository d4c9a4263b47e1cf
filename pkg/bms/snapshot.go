package bms

import (
	"sync"
	"time"
)

// Snapshot is the merged view of everything decoded so far. It is safe for
// concurrent use; the lock is held only inside Apply and Read.
type Snapshot struct {
	mu        sync.Mutex
	fields    Fields
	err       *ChecksumError
	updatedAt time.Time
	good      uint64
	bad       uint64

	now func() time.Time
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{fields: Fields{}, now: time.Now}
}

// Apply merges a decoded record. A failed checksum sets the error marker and
// keeps the previously known fields.
func (s *Snapshot) Apply(record Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !record.ChecksumOK {
		s.bad++
		s.err = &ChecksumError{
			Received: record.Frame.ChecksumReceived,
			Computed: record.Frame.ChecksumComputed,
		}
		return
	}

	s.good++
	s.err = nil
	s.updatedAt = s.now()
	for id, value := range record.Fields {
		s.fields[id] = value.clone()
	}
}

// Read returns a copy of the current state.
func (s *Snapshot) Read() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := View{
		Fields:    s.fields.Clone(),
		UpdatedAt: s.updatedAt,
		Good:      s.good,
		Bad:       s.bad,
	}
	if s.err != nil {
		errCopy := *s.err
		view.Err = &errCopy
	}
	return view
}

// View is a point-in-time copy of a Snapshot.
type View struct {
	Fields    Fields
	Err       *ChecksumError // latest frame failed verification
	UpdatedAt time.Time      // zero until a record is accepted
	Good      uint64
	Bad       uint64
}

// Cells returns the latest known cell voltages.
func (v View) Cells() []Cell {
	cells, _ := v.Fields[FieldCells].Cells()
	return cells
}

// CellSpread returns the lowest and highest cell voltage and their
// difference. ok is false with fewer than two known cells.
func (v View) CellSpread() (lowest, highest, diff float64, ok bool) {
	cells := v.Cells()
	if len(cells) < 2 {
		return 0, 0, 0, false
	}
	lowest, highest = cells[0].Volts, cells[0].Volts
	for _, cell := range cells[1:] {
		lowest = min(lowest, cell.Volts)
		highest = max(highest, cell.Volts)
	}
	return lowest, highest, highest - lowest, true
}
