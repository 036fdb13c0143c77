// Package sink implements the shared text output device of the clock.
//
// A Device serializes whole-line writes from every goroutine that prints, so
// the printer and the alarm watcher never interleave partial lines. The device
// can wrap any io.Writer (stdout, a buffer in tests) or a serial port.
package sink

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.bug.st/serial"
)

// DefaultBaudRate is used when a serial device is configured without a rate.
const DefaultBaudRate = 115200

// Sink writes one complete line under exclusive access.
type Sink interface {
	WriteLine(line string) error
}

// errDeviceRequired is returned when a serial device name is empty.
var errDeviceRequired = errors.New("serial device must be provided")

// Device is a mutex-guarded line writer.
type Device struct {
	// w is the underlying output.
	w io.Writer
	// closer is set when the device owns w.
	closer io.Closer
	// lineEnding terminates every written line.
	lineEnding string
	// mu grants exclusive access to w.
	mu sync.Mutex
}

// New wraps w. The caller keeps ownership of w.
func New(w io.Writer) *Device {
	return &Device{
		w:          w,
		lineEnding: "\n",
	}
}

// OpenSerial opens a serial port and uses it as the output device.
// Lines end with CRLF, as terminals attached to a UART expect.
func OpenSerial(device string, baudRate int) (*Device, error) {
	if device == "" {
		return nil, errDeviceRequired
	}

	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}

	port, err := serial.Open(device, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("open serial device %s: %w", device, err)
	}

	return &Device{
		w:          port,
		closer:     port,
		lineEnding: "\r\n",
	}, nil
}

// WriteLine writes line followed by the device line ending in a single write.
func (d *Device) WriteLine(line string) error {
	var b strings.Builder

	b.Grow(len(line) + len(d.lineEnding))
	b.WriteString(line)
	b.WriteString(d.lineEnding)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := io.WriteString(d.w, b.String()); err != nil {
		return fmt.Errorf("write line: %w", err)
	}

	return nil
}

// Close releases the underlying port when the device owns it.
func (d *Device) Close() error {
	if d == nil || d.closer == nil {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.closer.Close()
}
