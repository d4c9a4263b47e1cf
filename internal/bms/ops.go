package ninebotbms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jonamat/go-ninebot-bms/pkg/bms"
)

const readChunkSize = 256

// Port is the transport the monitor polls: *BMS or any byte stream.
type Port interface {
	io.Reader
	io.Writer
}

// Timing controls the polling cadence.
type Timing struct {
	RequestGap time.Duration // pause after each request
	Settle     time.Duration // wait for replies before rendering
	Interval   time.Duration // idle time between poll rounds
	ReadIdle   time.Duration // back-off after an empty read
}

// DefaultTiming matches the battery's reply latency.
var DefaultTiming = Timing{
	RequestGap: 100 * time.Millisecond,
	Settle:     500 * time.Millisecond,
	Interval:   2 * time.Second,
	ReadIdle:   10 * time.Millisecond,
}

// Monitor polls the battery and keeps a Snapshot of the decoded telemetry.
type Monitor struct {
	port     Port
	requests [][]byte
	timing   Timing
	snapshot *bms.Snapshot
	render   func(bms.View)
	logger   zerolog.Logger
}

// MonitorOption customizes a Monitor.
type MonitorOption func(*Monitor)

// WithTiming replaces DefaultTiming.
func WithTiming(timing Timing) MonitorOption {
	return func(m *Monitor) { m.timing = timing }
}

// WithRender sets the callback invoked after every poll round.
func WithRender(render func(bms.View)) MonitorOption {
	return func(m *Monitor) { m.render = render }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger zerolog.Logger) MonitorOption {
	return func(m *Monitor) { m.logger = logger }
}

// WithSnapshot shares an existing snapshot instead of a fresh one.
func WithSnapshot(snapshot *bms.Snapshot) MonitorOption {
	return func(m *Monitor) { m.snapshot = snapshot }
}

// NewMonitor prepares a monitor that polls the given requests in order.
func NewMonitor(port Port, requests []bms.Request, opts ...MonitorOption) (*Monitor, error) {
	if port == nil {
		return nil, errors.New("monitor: port required")
	}
	if len(requests) == 0 {
		return nil, errors.New("monitor: at least one request required")
	}

	m := &Monitor{
		port:     port,
		timing:   DefaultTiming,
		snapshot: bms.NewSnapshot(),
		render:   func(bms.View) {},
		logger:   zerolog.Nop(),
	}
	for _, request := range requests {
		frame, err := bms.Encode(request)
		if err != nil {
			return nil, fmt.Errorf("monitor: %w", err)
		}
		m.requests = append(m.requests, frame)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Snapshot returns the snapshot updated by the reader.
func (m *Monitor) Snapshot() *bms.Snapshot {
	return m.snapshot
}

// Run starts the reader and writer and blocks until both stop. A transport
// failure in either loop cancels the other; its error is returned. Run
// returns nil when ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		fatalErr error
	)
	fail := func(err error) {
		once.Do(func() { fatalErr = err })
		cancel()
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := m.readLoop(ctx); err != nil {
			fail(err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := m.writeLoop(ctx); err != nil {
			fail(err)
		}
	}()
	wg.Wait()

	return fatalErr
}

func (m *Monitor) readLoop(ctx context.Context) error {
	logger := m.logger.With().Str("component", "reader").Logger()
	synchronizer := bms.NewSynchronizer()
	chunk := make([]byte, readChunkSize)

	for ctx.Err() == nil {
		bytesRead, err := m.port.Read(chunk)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error().Err(err).Msg("serial read failed, stopping")
			return fmt.Errorf("read: %w", err)
		}
		if bytesRead == 0 {
			if !sleep(ctx, m.timing.ReadIdle) {
				return nil
			}
			continue
		}

		droppedBefore := synchronizer.Dropped()
		synchronizer.Feed(chunk[:bytesRead])
		for frame := synchronizer.Next(); frame != nil; frame = synchronizer.Next() {
			m.handleFrame(logger, frame)
		}
		if dropped := synchronizer.Dropped() - droppedBefore; dropped > 0 {
			logger.Debug().Uint64("bytes", dropped).Msg("discarded noise")
		}
	}
	return nil
}

func (m *Monitor) handleFrame(logger zerolog.Logger, frame *bms.Frame) {
	record := bms.Decode(frame)
	if err := record.Err(); err != nil {
		logger.Warn().
			Str("received", fmt.Sprintf("%04X", frame.ChecksumReceived)).
			Str("computed", fmt.Sprintf("%04X", frame.ChecksumComputed)).
			Stringer("frame", frame).
			Msg("checksum mismatch")
	} else if !bms.KnownLayout(frame.Cmd, frame.Index) {
		logger.Debug().Stringer("frame", frame).Msg("unrecognized message type")
	} else {
		logger.Trace().Stringer("frame", frame).Int("fields", len(record.Fields)).Msg("decoded")
	}
	m.snapshot.Apply(record)
}

func (m *Monitor) writeLoop(ctx context.Context) error {
	logger := m.logger.With().Str("component", "writer").Logger()

	for {
		for _, request := range m.requests {
			if ctx.Err() != nil {
				return nil
			}
			if _, err := m.port.Write(request); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Error().Err(err).Msg("serial write failed, stopping")
				return fmt.Errorf("write: %w", err)
			}
			logger.Trace().Hex("request", request).Msg("sent")
			if !sleep(ctx, m.timing.RequestGap) {
				return nil
			}
		}

		if !sleep(ctx, m.timing.Settle) {
			return nil
		}
		m.render(m.snapshot.Read())
		if !sleep(ctx, m.timing.Interval) {
			return nil
		}
	}
}

// sleep waits for d or until ctx is done. It reports whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
