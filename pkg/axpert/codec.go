package axpert

import (
	"bytes"
	"fmt"
)

const (
	// cr terminates every request and response frame.
	cr = 0x0d

	// MaxFrameLen bounds a single response frame on the wire. Payloads of
	// this protocol family are short ASCII strings.
	MaxFrameLen = 128
)

// EncodeCommand frames a command string for the wire: command bytes, the
// two CRC bytes computed over them, and the CR terminator.
func EncodeCommand(cmd string) []byte {
	crc := crcBytes([]byte(cmd))
	out := make([]byte, 0, len(cmd)+3)
	out = append(out, cmd...)
	out = append(out, crc[0], crc[1], cr)
	return out
}

// DecodeFrame validates a raw response frame and returns the inner payload
// string with the leading '(' stripped.
//
// A response is '(' + payload + CRC(2) + CR. The CRC covers everything
// before it, including the leading '(' (vendor framing). HID transports pad
// reports with NUL bytes, so trailing zeros after the CR are tolerated.
func DecodeFrame(raw []byte) (string, error) {
	raw = bytes.TrimRight(raw, "\x00")
	end := bytes.IndexByte(raw, cr)
	if end < 0 {
		return "", fmt.Errorf("%w: missing terminator", ErrFraming)
	}
	body := raw[:end]
	if len(body) < 3 || body[0] != '(' {
		return "", fmt.Errorf("%w: missing leading '('", ErrFraming)
	}
	payload := body[:len(body)-2]
	got := body[len(body)-2:]
	want := crcBytes(payload)
	if got[0] != want[0] || got[1] != want[1] {
		return "", fmt.Errorf("%w: got %02x%02x want %02x%02x", ErrChecksum, got[0], got[1], want[0], want[1])
	}
	return string(payload[1:]), nil
}

// EncodeResponse builds a well-formed response frame for a payload string
// (without the leading '('). Used by tests and the fake client.
func EncodeResponse(payload string) []byte {
	body := append([]byte{'('}, payload...)
	crc := crcBytes(body)
	body = append(body, crc[0], crc[1], cr)
	return body
}

// ParseAck interprets a decoded setter response payload.
func ParseAck(payload string) (bool, error) {
	switch payload {
	case "ACK":
		return true, nil
	case "NAK":
		return false, nil
	}
	return false, fmt.Errorf("%w: unexpected ack payload %q", ErrCommandRejected, payload)
}
