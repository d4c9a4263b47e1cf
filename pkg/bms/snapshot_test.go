package bms

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSnapshotMergesAcrossMessages(t *testing.T) {
	s := NewSnapshot()
	s.Apply(Decode(mustParse(t, responseFrame(IndexStatus, 1, 4500, 87))))
	s.Apply(Decode(mustParse(t, responseFrame(IndexCells, 3300, 3310))))
	s.Apply(Decode(mustParse(t, responseFrame(IndexStatus, 1, 4400))))

	view := s.Read()
	if view.Err != nil {
		t.Fatalf("unexpected error marker: %v", view.Err)
	}
	expectUint(t, view.Fields, FieldRemainingCapacity, 4400)
	expectUint(t, view.Fields, FieldRemainingPercent, 87)
	if len(view.Cells()) != 2 {
		t.Fatalf("cells = %v", view.Cells())
	}
	if view.Good != 3 || view.Bad != 0 {
		t.Fatalf("counters good=%d bad=%d", view.Good, view.Bad)
	}
}

func TestSnapshotChecksumErrorKeepsFields(t *testing.T) {
	s := NewSnapshot()
	s.Apply(Decode(mustParse(t, responseFrame(IndexStatus, 1, 4500))))

	bad := responseFrame(IndexStatus, 1, 1)
	bad[len(bad)-1] ^= 0x10
	s.Apply(Decode(mustParse(t, bad)))

	view := s.Read()
	if view.Err == nil {
		t.Fatalf("expected error marker")
	}
	var checksumErr *ChecksumError
	if !errors.As(error(view.Err), &checksumErr) || checksumErr.Received == checksumErr.Computed {
		t.Fatalf("error marker should carry both checksums: %v", view.Err)
	}
	expectUint(t, view.Fields, FieldRemainingCapacity, 4500)

	s.Apply(Decode(mustParse(t, responseFrame(IndexStatus, 1, 4300))))
	view = s.Read()
	if view.Err != nil {
		t.Fatalf("error marker should clear after a good frame")
	}
	expectUint(t, view.Fields, FieldRemainingCapacity, 4300)
	if view.Good != 2 || view.Bad != 1 {
		t.Fatalf("counters good=%d bad=%d", view.Good, view.Bad)
	}
}

func TestSnapshotReadIsACopy(t *testing.T) {
	s := NewSnapshot()
	s.Apply(Decode(mustParse(t, responseFrame(IndexCells, 3300, 3310))))

	view := s.Read()
	cells := view.Cells()
	cells[0].Volts = 0
	view.Fields[FieldVoltage] = Float(1)

	again := s.Read()
	if again.Cells()[0].Volts != 3.3 {
		t.Fatalf("snapshot cells were modified through a view")
	}
	if _, present := again.Fields[FieldVoltage]; present {
		t.Fatalf("snapshot fields were modified through a view")
	}
}

func TestSnapshotUpdatedAt(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewSnapshot()
	s.now = func() time.Time { return at }

	if !s.Read().UpdatedAt.IsZero() {
		t.Fatalf("UpdatedAt should be zero before any record")
	}
	s.Apply(Decode(mustParse(t, responseFrame(0x77))))
	if got := s.Read().UpdatedAt; !got.Equal(at) {
		t.Fatalf("UpdatedAt = %v, want %v", got, at)
	}
}

func TestSnapshotConcurrentUse(t *testing.T) {
	s := NewSnapshot()
	record := Decode(mustParse(t, responseFrame(IndexStatus, 1, 2, 3, 4, 5, 6)))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Apply(record)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Read()
			}
		}()
	}
	wg.Wait()

	if got := s.Read().Good; got != 400 {
		t.Fatalf("Good = %d, want 400", got)
	}
}

func TestViewCellSpread(t *testing.T) {
	view := View{Fields: Fields{FieldCells: Cells([]Cell{{1, 3.30}, {2, 3.25}, {4, 3.41}})}}

	lowest, highest, diff, ok := view.CellSpread()
	if !ok || lowest != 3.25 || highest != 3.41 || diff <= 0.159 || diff >= 0.161 {
		t.Fatalf("CellSpread() = %v %v %v %v", lowest, highest, diff, ok)
	}

	single := View{Fields: Fields{FieldCells: Cells([]Cell{{1, 3.30}})}}
	if _, _, _, ok := single.CellSpread(); ok {
		t.Fatalf("CellSpread should need two cells")
	}
}

func mustParse(t *testing.T, raw []byte) *Frame {
	t.Helper()
	frame, err := ParseFrame(raw)
	if err != nil {
		t.Fatalf("ParseFrame err=%v", err)
	}
	return frame
}
