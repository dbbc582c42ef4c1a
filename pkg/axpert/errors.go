package axpert

import (
	"errors"
	"fmt"
)

var (
	// ErrDeviceUnavailable is returned when the device node cannot be
	// opened (missing path, permissions). Fatal at setup time.
	ErrDeviceUnavailable = errors.New("axpert: device unavailable")

	// ErrTimeout is returned when no complete frame arrives within the
	// configured read window.
	ErrTimeout = errors.New("axpert: response timeout")

	// ErrFraming is returned when a response frame lacks the leading '('
	// or the trailing CR terminator.
	ErrFraming = errors.New("axpert: bad frame")

	// ErrChecksum is returned when the recomputed CRC does not match the
	// trailing CRC bytes of a response.
	ErrChecksum = errors.New("axpert: checksum mismatch")

	// ErrMalformedPayload is returned when a validated payload does not
	// match the expected field schema.
	ErrMalformedPayload = errors.New("axpert: malformed payload")

	// ErrCommandRejected is returned when the device answers a setter
	// command with NAK or an unparsable acknowledgement.
	ErrCommandRejected = errors.New("axpert: command rejected")

	// ErrCommandUnverified is returned when a setter command was ACKed but
	// the read-back query reports a different value. Some firmware
	// revisions omit read-back support, so callers may treat this as a
	// warning rather than a hard failure.
	ErrCommandUnverified = errors.New("axpert: command unverified")

	// ErrIO is a hard transport fault. The client attempts a single
	// re-open before surfacing it.
	ErrIO = errors.New("axpert: transport error")
)

func malformedField(index int, token string) error {
	return fmt.Errorf("%w: field %d %q", ErrMalformedPayload, index, token)
}

// IsRetryable reports whether an error is a per-cycle protocol error worth
// retrying, as opposed to a setup or command-level failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrFraming) ||
		errors.Is(err, ErrChecksum) ||
		errors.Is(err, ErrMalformedPayload) ||
		errors.Is(err, ErrIO)
}
