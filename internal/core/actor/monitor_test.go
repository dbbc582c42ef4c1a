package actor

import (
	"sync"
	"testing"
	"time"

	adactor "github.com/berfenger/axpert2mqtt/internal/adapter/actor"
	"github.com/berfenger/axpert2mqtt/internal/core/domain"
	"github.com/berfenger/axpert2mqtt/internal/core/service"
	"github.com/berfenger/axpert2mqtt/internal/util"
	"github.com/berfenger/axpert2mqtt/internal/util/actorutil"
	"github.com/berfenger/axpert2mqtt/pkg/axpert"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []any
}

func (r *eventRecorder) record(value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, value)
}

func (r *eventRecorder) snapshot() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]any, len(r.events))
	copy(out, r.events)
	return out
}

func (r *eventRecorder) floatValue(id string) (float64, bool) {
	for _, ev := range r.snapshot() {
		if fev, ok := ev.(domain.FloatSensorUpdateEvent); ok && fev.Id == id {
			return fev.Value, true
		}
	}
	return 0, false
}

func (r *eventRecorder) availability() (bool, bool) {
	var value, found bool
	for _, ev := range r.snapshot() {
		if aev, ok := ev.(domain.DeviceAvailabilityUpdateEvent); ok {
			value = aev.Value
			found = true
		}
	}
	return value, found
}

func spawnMonitorForTest(t *testing.T, reader axpert.InverterReader, cfg *testMonitorSetup) (*pactor.ActorSystem, *pactor.RootContext, *pactor.PID, *eventRecorder) {
	t.Helper()

	config := util.LoadTestConfig()
	if cfg != nil && cfg.offlineThreshold > 0 {
		config.MonitorConfig.OfflineThreshold = cfg.offlineThreshold
	}

	logCfg := zap.NewDevelopmentConfig()
	logger := zap.Must(logCfg.Build())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	inverterProps := pactor.PropsFromProducer(func() pactor.Actor {
		return adactor.NewInverterActor(reader, logger)
	})
	inverterPid := context.Spawn(inverterProps)

	integrator := service.NewEnergyIntegrator(nil, time.Minute, logger)

	stream := &eventstream.EventStream{}
	recorder := &eventRecorder{}
	stream.Subscribe(recorder.record)

	monitorProps := pactor.PropsFromProducer(func() pactor.Actor {
		return NewMonitorActor(&config, inverterPid, stream, integrator, logger)
	})
	monitorPid := context.Spawn(monitorProps)

	return as, context, monitorPid, recorder
}

type testMonitorSetup struct {
	offlineThreshold uint32
}

func TestMonitorPublishesStatusEvents(t *testing.T) {

	assert := assert.New(t)

	reader := axpert.NewTestInverterReader()
	as, context, pid, recorder := spawnMonitorForTest(t, reader, nil)
	defer as.Shutdown()

	time.Sleep(1 * time.Second)

	context.Send(pid, domain.PollTick{})
	time.Sleep(1 * time.Second)

	value, found := recorder.floatValue(domain.SENSOR_ID_BATTERY_VOLTAGE)
	assert.True(found, "battery voltage event published")
	assert.InDelta(53.2, value, 1e-6, "battery voltage value")

	pv, found := recorder.floatValue(domain.SENSOR_ID_PV_POWER)
	assert.True(found, "pv power event published")
	assert.True(pv > 0, "pv power bounds")

	available, found := recorder.availability()
	assert.True(found, "availability published")
	assert.True(available, "device available")

	// energy totals follow every successful poll
	_, found = recorder.floatValue(domain.SENSOR_ID_PV_ENERGY_TOTAL)
	assert.True(found, "pv energy total published")

	var firmware string
	for _, ev := range recorder.snapshot() {
		if tev, ok := ev.(domain.TextSensorUpdateEvent); ok && tev.Id == domain.SENSOR_ID_FIRMWARE_VERSION {
			firmware = tev.Value
		}
	}
	assert.NotEmpty(firmware, "firmware version published on startup")

	context.Stop(pid)
}

func TestMonitorPublishesRatedInfoOnFirstTick(t *testing.T) {

	assert := assert.New(t)

	reader := axpert.NewTestInverterReader()
	as, context, pid, recorder := spawnMonitorForTest(t, reader, nil)
	defer as.Shutdown()

	time.Sleep(1 * time.Second)

	context.Send(pid, domain.PollTick{})
	time.Sleep(1 * time.Second)

	var selectValue string
	for _, ev := range recorder.snapshot() {
		if sev, ok := ev.(domain.SelectSensorUpdateEvent); ok && sev.Id == domain.SELECT_ID_OUTPUT_SOURCE_PRIORITY {
			selectValue = sev.Value
		}
	}
	assert.Equal(axpert.OutputSourceSBU.String(), selectValue, "output source priority select value")

	context.Stop(pid)
}

func TestMonitorMarksDeviceOffline(t *testing.T) {

	assert := assert.New(t)

	reader := axpert.NewTestInverterReader()
	as, context, pid, recorder := spawnMonitorForTest(t, reader, &testMonitorSetup{offlineThreshold: 2})
	defer as.Shutdown()

	time.Sleep(1 * time.Second)

	// first poll succeeds, device goes available
	context.Send(pid, domain.PollTick{})
	time.Sleep(1 * time.Second)

	available, found := recorder.availability()
	assert.True(found, "availability published")
	assert.True(available, "device available after first poll")

	// subsequent polls fail until the threshold trips
	reader.StatusErr = axpert.ErrTimeout
	context.Send(pid, domain.PollTick{})
	time.Sleep(1 * time.Second)

	available, _ = recorder.availability()
	assert.True(available, "still available below threshold")

	context.Send(pid, domain.PollTick{})
	time.Sleep(1 * time.Second)

	available, _ = recorder.availability()
	assert.False(available, "unavailable after threshold")

	// recovery publishes available again
	reader.StatusErr = nil
	context.Send(pid, domain.PollTick{})
	time.Sleep(1 * time.Second)

	available, _ = recorder.availability()
	assert.True(available, "available after recovery")

	context.Stop(pid)
}

func TestMonitorPublishesOfflineWhenNeverReachable(t *testing.T) {

	assert := assert.New(t)

	// device unreachable from process start, never went available
	reader := axpert.NewTestInverterReader()
	reader.StatusErr = axpert.ErrTimeout
	as, context, pid, recorder := spawnMonitorForTest(t, reader, &testMonitorSetup{offlineThreshold: 2})
	defer as.Shutdown()

	time.Sleep(1 * time.Second)

	context.Send(pid, domain.PollTick{})
	time.Sleep(1 * time.Second)

	_, found := recorder.availability()
	assert.False(found, "no availability event below threshold")

	context.Send(pid, domain.PollTick{})
	time.Sleep(1 * time.Second)

	available, found := recorder.availability()
	assert.True(found, "offline published at threshold")
	assert.False(available, "device offline")

	context.Stop(pid)
}

func TestMonitorControlRequestPublishesSelect(t *testing.T) {

	assert := assert.New(t)

	reader := axpert.NewTestInverterReader()
	as, context, pid, recorder := spawnMonitorForTest(t, reader, nil)
	defer as.Shutdown()

	time.Sleep(1 * time.Second)

	res, err := context.RequestFuture(pid, domain.SetInputRangeRequest{Value: axpert.InputRangeUPS}, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp, ok := res.(domain.SetInputRangeResponse)
	assert.True(ok, "response type")
	assert.False(resp.HasResponseError(), "no response error")
	assert.True(resp.Verified, "verified")

	var selectValue string
	for _, ev := range recorder.snapshot() {
		if sev, ok := ev.(domain.SelectSensorUpdateEvent); ok && sev.Id == domain.SELECT_ID_AC_INPUT_RANGE {
			selectValue = sev.Value
		}
	}
	assert.Equal(axpert.InputRangeUPS.String(), selectValue, "ac input range select value")

	context.Stop(pid)
}
