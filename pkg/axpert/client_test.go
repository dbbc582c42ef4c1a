package axpert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeStep struct {
	payload string
	err     error
}

// fakeHarness scripts a Port response sequence. Reopening the port through
// dial keeps consuming the same script, so transport faults can be tested
// across a reconnect.
type fakeHarness struct {
	steps []fakeStep
	cmds  []string
	dials int
}

func (h *fakeHarness) dial() (Port, error) {
	h.dials++
	return &fakePort{h: h}, nil
}

type fakePort struct {
	h *fakeHarness
}

func (p *fakePort) Write(frame []byte) error {
	// strip CRC and CR to recover the command
	p.h.cmds = append(p.h.cmds, string(frame[:len(frame)-3]))
	return nil
}

func (p *fakePort) ReadFrame(time.Duration) ([]byte, error) {
	if len(p.h.steps) == 0 {
		return nil, ErrTimeout
	}
	step := p.h.steps[0]
	p.h.steps = p.h.steps[1:]
	if step.err != nil {
		return nil, step.err
	}
	return EncodeResponse(step.payload), nil
}

func (p *fakePort) Close() error { return nil }

func newTestClient(h *fakeHarness) *Client {
	c := CreateInverterHIDReader("/dev/hidraw0", PortHidraw, time.Second, zap.NewNop(), h.dial)
	c.spacing = 0
	return c
}

func TestClientRetriesThenSucceeds(t *testing.T) {
	h := &fakeHarness{steps: []fakeStep{
		{err: ErrTimeout},
		{err: ErrTimeout},
		{payload: qpigsPayload},
	}}
	c := newTestClient(h)

	st, err := c.GetGeneralStatus()
	assert.NoError(t, err)
	assert.Equal(t, 435, st.ACOutputActivePower)
	assert.Equal(t, []string{"QPIGS", "QPIGS", "QPIGS"}, h.cmds)
}

func TestClientRetriesMalformedPayload(t *testing.T) {
	// a CRC-valid frame with garbage fields counts against the same budget
	h := &fakeHarness{steps: []fakeStep{
		{payload: "garbage not a qpigs payload"},
		{payload: qpigsPayload},
	}}
	c := newTestClient(h)

	st, err := c.GetGeneralStatus()
	assert.NoError(t, err)
	assert.Equal(t, 435, st.ACOutputActivePower)
	assert.Equal(t, []string{"QPIGS", "QPIGS"}, h.cmds)
}

func TestClientMalformedPayloadExhaustsRetries(t *testing.T) {
	h := &fakeHarness{steps: []fakeStep{
		{payload: "garbage"},
		{payload: "garbage"},
		{payload: "garbage"},
	}}
	c := newTestClient(h)

	_, err := c.GetGeneralStatus()
	assert.ErrorIs(t, err, ErrMalformedPayload)
	assert.Len(t, h.cmds, 3)
}

func TestClientTimeoutExhaustsRetries(t *testing.T) {
	h := &fakeHarness{}
	c := newTestClient(h)

	_, err := c.GetGeneralStatus()
	assert.ErrorIs(t, err, ErrTimeout)
	// initial attempt plus the retry budget
	assert.Len(t, h.cmds, 3)
}

func TestClientReopensOnTransportFault(t *testing.T) {
	h := &fakeHarness{steps: []fakeStep{
		{err: ErrIO},
		{payload: qpigsPayload},
	}}
	c := newTestClient(h)
	assert.NoError(t, c.Open())
	assert.Equal(t, 1, h.dials)

	st, err := c.GetGeneralStatus()
	assert.NoError(t, err)
	assert.Equal(t, 80, st.BatteryCapacity)
	assert.Equal(t, 2, h.dials)
}

func TestClientGetDeviceInfo(t *testing.T) {
	h := &fakeHarness{steps: []fakeStep{
		{payload: "92932004102443"},
		{payload: "VERFW:00052.30"},
		{payload: "027"},
	}}
	c := newTestClient(h)

	info, err := c.GetDeviceInfo()
	assert.NoError(t, err)
	assert.Equal(t, "92932004102443", info.Serial)
	assert.Equal(t, "00052.30", info.FirmwareVersion)
	assert.Equal(t, "027", info.ModelID)
	assert.Equal(t, "AXPERT VMIII", info.ModelName)
	assert.Equal(t, []string{"QID", "QVFW", "QGMN"}, h.cmds)
}

func TestClientSetInputRangeVerified(t *testing.T) {
	h := &fakeHarness{steps: []fakeStep{
		{payload: "ACK"},
		{payload: qpiriPayload}, // read-back reports UPS
	}}
	c := newTestClient(h)

	assert.NoError(t, c.SetInputRange(InputRangeUPS))
	assert.Equal(t, []string{"PGR01", "QPIRI"}, h.cmds)
}

func TestClientSetInputRangeUnverified(t *testing.T) {
	h := &fakeHarness{steps: []fakeStep{
		{payload: "ACK"},
		{payload: qpiriPayload}, // read-back still reports UPS
	}}
	c := newTestClient(h)

	err := c.SetInputRange(InputRangeAppliance)
	assert.ErrorIs(t, err, ErrCommandUnverified)
}

func TestClientSetInputRangeRejected(t *testing.T) {
	h := &fakeHarness{steps: []fakeStep{
		{payload: "NAK"},
		{payload: "NAK"},
	}}
	c := newTestClient(h)

	err := c.SetInputRange(InputRangeUPS)
	assert.ErrorIs(t, err, ErrCommandRejected)
	assert.Equal(t, []string{"PGR01", "PGR01"}, h.cmds)
}

func TestClientSetOutputSourcePriority(t *testing.T) {
	h := &fakeHarness{steps: []fakeStep{
		{payload: "ACK"},
		{payload: qpiriPayload}, // read-back reports sbu_priority
	}}
	c := newTestClient(h)

	assert.NoError(t, c.SetOutputSourcePriority(OutputSourceSBU))
	assert.Equal(t, []string{"POP02", "QPIRI"}, h.cmds)
}
