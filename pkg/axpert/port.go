package axpert

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"go.bug.st/serial"
)

// PortKind selects the transport implementation for a device node.
type PortKind string

const (
	PortHidraw PortKind = "hidraw"
	PortSerial PortKind = "serial"
)

// Port is one exclusive handle on the device node. Implementations are not
// safe for concurrent use; the Client serializes all access.
type Port interface {
	// Write sends a complete request frame.
	Write(frame []byte) error
	// ReadFrame blocks until a CR-terminated frame arrives or the timeout
	// elapses (ErrTimeout). It never blocks indefinitely.
	ReadFrame(timeout time.Duration) ([]byte, error)
	Close() error
}

// OpenPort opens the device node at path. A missing node or denied
// permissions yield ErrDeviceUnavailable.
func OpenPort(path string, kind PortKind) (Port, error) {
	switch kind {
	case PortSerial:
		return openSerialPort(path)
	case PortHidraw, "":
		return openHidrawPort(path)
	}
	return nil, fmt.Errorf("%w: unknown port kind %q", ErrDeviceUnavailable, kind)
}

// hidrawPort reads a raw HID node through an os.File. hidraw character
// devices are pollable, so read deadlines work.
type hidrawPort struct {
	f *os.File
}

func openHidrawPort(path string) (Port, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDeviceUnavailable, path, err)
	}
	return &hidrawPort{f: f}, nil
}

func (p *hidrawPort) Write(frame []byte) error {
	if _, err := p.f.Write(frame); err != nil {
		return fmt.Errorf("%w: write: %v", ErrIO, err)
	}
	return nil
}

func (p *hidrawPort) ReadFrame(timeout time.Duration) ([]byte, error) {
	if err := p.f.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("%w: deadline: %v", ErrIO, err)
	}
	var buf []byte
	// HID transports deliver 8-byte reports.
	chunk := make([]byte, 8)
	for {
		n, err := p.f.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			if bytes.IndexByte(buf, cr) >= 0 {
				return buf, nil
			}
			if len(buf) > MaxFrameLen {
				return nil, fmt.Errorf("%w: frame exceeds %d bytes", ErrFraming, MaxFrameLen)
			}
		}
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return nil, ErrTimeout
			}
			return nil, fmt.Errorf("%w: read: %v", ErrIO, err)
		}
	}
}

func (p *hidrawPort) Close() error {
	return p.f.Close()
}

// serialPort reads a USB-serial node. The protocol runs at 2400 8N1.
type serialPort struct {
	port serial.Port
}

func openSerialPort(path string) (Port, error) {
	mode := &serial.Mode{
		BaudRate: 2400,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDeviceUnavailable, path, err)
	}
	return &serialPort{port: port}, nil
}

func (p *serialPort) Write(frame []byte) error {
	if _, err := p.port.Write(frame); err != nil {
		return fmt.Errorf("%w: write: %v", ErrIO, err)
	}
	return nil
}

func (p *serialPort) ReadFrame(timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	if err := p.port.SetReadTimeout(100 * time.Millisecond); err != nil {
		return nil, fmt.Errorf("%w: timeout: %v", ErrIO, err)
	}
	var buf []byte
	chunk := make([]byte, 64)
	for {
		n, err := p.port.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			if bytes.IndexByte(buf, cr) >= 0 {
				return buf, nil
			}
			if len(buf) > MaxFrameLen {
				return nil, fmt.Errorf("%w: frame exceeds %d bytes", ErrFraming, MaxFrameLen)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read: %v", ErrIO, err)
		}
		if time.Now().After(deadline) {
			return nil, ErrTimeout
		}
	}
}

func (p *serialPort) Close() error {
	return p.port.Close()
}
