package axpert

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// InverterReader is the device-facing contract consumed by the actors.
type InverterReader interface {
	Open() error
	Close() error

	GetDeviceInfo() (*DeviceInfo, error)
	GetGeneralStatus() (*GeneralStatus, error)
	GetRatedInfo() (*RatedInfo, error)
	GetMode() (DeviceMode, error)
	GetWarnings() (WarningFlags, error)

	SetInputRange(InputRange) error
	SetOutputSourcePriority(OutputSourcePriority) error
	SetChargerSourcePriority(ChargerSourcePriority) error
}

const (
	// Commands closer together than this confuse some firmwares.
	defaultCommandSpacing = 500 * time.Millisecond

	// Transient wire errors are retried this many times within one call.
	defaultRetries = 2
)

type Client struct {
	mu   sync.Mutex
	port Port

	path    string
	kind    PortKind
	timeout time.Duration
	spacing time.Duration
	retries int

	lastCommand time.Time
	dial        func() (Port, error)
	logger      *zap.Logger
}

// CreateInverterHIDReader builds a Client for the device node at path.
// dial overrides the transport factory; pass nil outside tests.
func CreateInverterHIDReader(path string, kind PortKind, timeout time.Duration, logger *zap.Logger, dial func() (Port, error)) *Client {
	c := &Client{
		path:    path,
		kind:    kind,
		timeout: timeout,
		spacing: defaultCommandSpacing,
		retries: defaultRetries,
		dial:    dial,
		logger:  logger.With(zap.String("device", path)),
	}
	if c.dial == nil {
		c.dial = func() (Port, error) { return OpenPort(path, kind) }
	}
	return c
}

func (c *Client) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.port != nil {
		return nil
	}
	port, err := c.dial()
	if err != nil {
		return err
	}
	c.port = port
	return nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.port == nil {
		return nil
	}
	err := c.port.Close()
	c.port = nil
	return err
}

// queryParsed performs a serialized command round-trip and parses the
// payload within the same retry budget, so a CRC-valid frame with garbage
// fields is retried like any other transient error. A hard transport fault
// triggers a single re-open before counting as a failed attempt.
func queryParsed[T any](c *Client, cmd string, parse func(string) (T, error)) (T, error) {
	var zero T

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.port == nil {
		port, err := c.dial()
		if err != nil {
			return zero, err
		}
		c.port = port
	}

	// enforce inter-command spacing
	if wait := c.spacing - time.Since(c.lastCommand); wait > 0 {
		time.Sleep(wait)
	}
	defer func() { c.lastCommand = time.Now() }()

	var lastErr error
	reopened := false
	for attempt := 0; attempt <= c.retries; attempt++ {
		payload, err := c.roundTrip(cmd)
		if err == nil {
			value, perr := parse(payload)
			if perr == nil {
				return value, nil
			}
			err = perr
		}
		lastErr = err
		if !IsRetryable(err) {
			break
		}
		if errors.Is(err, ErrIO) {
			if reopened {
				break
			}
			reopened = true
			c.logger.Warn("transport fault, reopening device", zap.Error(err))
			c.port.Close()
			port, derr := c.dial()
			if derr != nil {
				return zero, derr
			}
			c.port = port
		}
		c.logger.Debug("retrying command", zap.String("command", cmd), zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return zero, lastErr
}

func (c *Client) query(cmd string) (string, error) {
	return queryParsed(c, cmd, func(payload string) (string, error) {
		return payload, nil
	})
}

func (c *Client) roundTrip(cmd string) (string, error) {
	if err := c.port.Write(EncodeCommand(cmd)); err != nil {
		return "", err
	}
	raw, err := c.port.ReadFrame(c.timeout)
	if err != nil {
		return "", err
	}
	return DecodeFrame(raw)
}

// execute sends a setter command and checks the acknowledgement. A NAK is
// retried once after a pause, as some firmwares NAK while busy.
func (c *Client) execute(cmd string) error {
	for attempt := 0; attempt < 2; attempt++ {
		payload, err := c.query(cmd)
		if err != nil {
			return err
		}
		ok, err := ParseAck(payload)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if attempt == 0 {
			c.logger.Warn("command NAKed, retrying", zap.String("command", cmd))
			time.Sleep(1 * time.Second)
		}
	}
	return fmt.Errorf("%w: %s", ErrCommandRejected, cmd)
}

func (c *Client) GetGeneralStatus() (*GeneralStatus, error) {
	return queryParsed(c, "QPIGS", ParseGeneralStatus)
}

func (c *Client) GetRatedInfo() (*RatedInfo, error) {
	return queryParsed(c, "QPIRI", ParseRatedInfo)
}

func (c *Client) GetMode() (DeviceMode, error) {
	return queryParsed(c, "QMOD", ParseDeviceMode)
}

func (c *Client) GetWarnings() (WarningFlags, error) {
	return queryParsed(c, "QPIWS", ParseWarnings)
}

func (c *Client) GetDeviceInfo() (*DeviceInfo, error) {
	serial, err := c.query("QID")
	if err != nil {
		return nil, err
	}
	fw, err := c.query("QVFW")
	if err != nil {
		return nil, err
	}
	model, err := c.query("QGMN")
	if err != nil {
		return nil, err
	}
	code := strings.TrimSpace(model)
	return &DeviceInfo{
		Serial:          strings.TrimSpace(serial),
		FirmwareVersion: ParseFirmwareVersion(fw),
		ModelID:         code,
		ModelName:       ModelName(code),
	}, nil
}

// SetInputRange commands the AC input voltage range and verifies it by
// reading the settings block back. An ACKed command whose read-back
// disagrees (or fails) yields ErrCommandUnverified, never silent success.
func (c *Client) SetInputRange(r InputRange) error {
	if err := c.execute(r.Command()); err != nil {
		return err
	}
	ri, err := c.GetRatedInfo()
	if err != nil {
		return fmt.Errorf("%w: read-back failed: %v", ErrCommandUnverified, err)
	}
	if ri.InputVoltageRange != r {
		return fmt.Errorf("%w: requested %s, device reports %s", ErrCommandUnverified, r, ri.InputVoltageRange)
	}
	return nil
}

func (c *Client) SetOutputSourcePriority(p OutputSourcePriority) error {
	if err := c.execute(p.Command()); err != nil {
		return err
	}
	ri, err := c.GetRatedInfo()
	if err != nil {
		return fmt.Errorf("%w: read-back failed: %v", ErrCommandUnverified, err)
	}
	if ri.OutputSourcePriority != p {
		return fmt.Errorf("%w: requested %s, device reports %s", ErrCommandUnverified, p, ri.OutputSourcePriority)
	}
	return nil
}

func (c *Client) SetChargerSourcePriority(p ChargerSourcePriority) error {
	if err := c.execute(p.Command()); err != nil {
		return err
	}
	ri, err := c.GetRatedInfo()
	if err != nil {
		return fmt.Errorf("%w: read-back failed: %v", ErrCommandUnverified, err)
	}
	if ri.ChargerSourcePriority != p {
		return fmt.Errorf("%w: requested %s, device reports %s", ErrCommandUnverified, p, ri.ChargerSourcePriority)
	}
	return nil
}

// ensure interface compliance
var _ InverterReader = (*Client)(nil)
