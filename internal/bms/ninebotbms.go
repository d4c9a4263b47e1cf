package ninebotbms

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tarm/serial"
)

var ErrNotConnected = errors.New("serial port not open")

// SerialConfig holds the link parameters used by Connect.
type SerialConfig struct {
	Baud        int
	ReadTimeout time.Duration
}

// BMS serial connection
type BMS struct {
	config SerialConfig

	mu         sync.RWMutex
	serialPort *serial.Port
	path       string
}

// NewBMS returns an unconnected session. Zero values select 115200 baud
// and a 100ms read timeout.
func NewBMS(config SerialConfig) *BMS {
	if config.Baud <= 0 {
		config.Baud = 115200
	}
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = 100 * time.Millisecond
	}
	return &BMS{config: config}
}

// Connect opens the serial port. Eg "/dev/ttyUSB0"
func (bms *BMS) Connect(serialDevicePath string) error {
	portConfig := &serial.Config{
		Name:        serialDevicePath,
		Baud:        bms.config.Baud,
		ReadTimeout: bms.config.ReadTimeout,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
	}

	openedPort, err := serial.OpenPort(portConfig)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", serialDevicePath, err)
	}

	bms.mu.Lock()
	defer bms.mu.Unlock()
	if bms.serialPort != nil {
		_ = bms.serialPort.Close()
	}
	bms.serialPort = openedPort
	bms.path = serialDevicePath
	return nil
}

// Close serial port
func (bms *BMS) Disconnect() error {
	bms.mu.Lock()
	defer bms.mu.Unlock()
	if bms.serialPort != nil {
		err := bms.serialPort.Close()
		bms.serialPort = nil
		return err
	}
	return nil
}

// Path returns the device path of the open port, or "".
func (bms *BMS) Path() string {
	bms.mu.RLock()
	defer bms.mu.RUnlock()
	return bms.path
}

// Read reads whatever the driver has buffered. A read that times out with
// no data returns (0, nil).
func (bms *BMS) Read(p []byte) (int, error) {
	port, err := bms.port()
	if err != nil {
		return 0, err
	}
	bytesRead, err := port.Read(p)
	if bytesRead == 0 && errors.Is(err, io.EOF) {
		// tarm/serial reports an expired VTIME read as EOF.
		return 0, nil
	}
	return bytesRead, err
}

// Write sends a request frame.
func (bms *BMS) Write(p []byte) (int, error) {
	port, err := bms.port()
	if err != nil {
		return 0, err
	}
	bytesWritten, err := port.Write(p)
	if err == nil && bytesWritten != len(p) {
		err = io.ErrShortWrite
	}
	return bytesWritten, err
}

func (bms *BMS) port() (*serial.Port, error) {
	bms.mu.RLock()
	defer bms.mu.RUnlock()
	if bms.serialPort == nil {
		return nil, ErrNotConnected
	}
	return bms.serialPort, nil
}
