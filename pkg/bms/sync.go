package bms

import "bytes"

// Synchronizer accumulates bytes from the link and cuts them into frames.
// Bytes that cannot belong to a frame are discarded.
type Synchronizer struct {
	buffer  []byte
	dropped uint64
}

// NewSynchronizer returns an empty synchronizer.
func NewSynchronizer() *Synchronizer {
	return &Synchronizer{}
}

// Feed appends bytes read from the link.
func (s *Synchronizer) Feed(newBytes []byte) {
	s.buffer = append(s.buffer, newBytes...)
}

// Write implements io.Writer so a synchronizer can sit behind io.Copy.
func (s *Synchronizer) Write(p []byte) (int, error) {
	s.Feed(p)
	return len(p), nil
}

// Next extracts the next complete frame, or returns nil when more input is
// needed. Call it until it returns nil after every Feed.
func (s *Synchronizer) Next() *Frame {
	if len(s.buffer) < MinFrameSize {
		return nil
	}

	start := bytes.Index(s.buffer, StartMarker)
	if start < 0 {
		s.discardNoise()
		return nil
	}
	if start > 0 {
		s.discard(start)
	}

	if len(s.buffer) <= offsetLength {
		return nil
	}
	total := FrameSize(s.buffer[offsetLength])
	if len(s.buffer) < total {
		return nil
	}

	// ParseFrame cannot fail here: marker and size were checked above.
	frame, _ := ParseFrame(s.buffer[:total])
	s.consume(total)
	return frame
}

// Frames drains every complete frame currently buffered.
func (s *Synchronizer) Frames() []*Frame {
	var frames []*Frame
	for frame := s.Next(); frame != nil; frame = s.Next() {
		frames = append(frames, frame)
	}
	return frames
}

// Buffered returns the number of bytes waiting for a complete frame.
func (s *Synchronizer) Buffered() int {
	return len(s.buffer)
}

// Dropped returns the total number of noise bytes discarded so far.
func (s *Synchronizer) Dropped() uint64 {
	return s.dropped
}

// Reset discards all buffered bytes.
func (s *Synchronizer) Reset() {
	s.dropped += uint64(len(s.buffer))
	s.buffer = s.buffer[:0]
}

// discardNoise drops a buffer that holds no start marker. A trailing first
// marker byte is kept since its partner may arrive with the next read.
func (s *Synchronizer) discardNoise() {
	keep := 0
	if s.buffer[len(s.buffer)-1] == StartMarker[0] {
		keep = 1
	}
	s.discard(len(s.buffer) - keep)
}

func (s *Synchronizer) discard(n int) {
	s.dropped += uint64(n)
	s.consume(n)
}

func (s *Synchronizer) consume(n int) {
	remaining := copy(s.buffer, s.buffer[n:])
	s.buffer = s.buffer[:remaining]
}
