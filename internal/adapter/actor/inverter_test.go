package actor

import (
	"testing"
	"time"

	"github.com/berfenger/axpert2mqtt/internal/core/domain"
	"github.com/berfenger/axpert2mqtt/internal/util/actorutil"
	"github.com/berfenger/axpert2mqtt/pkg/axpert"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestGetDeviceInfoInverterActor(t *testing.T) {

	assert := assert.New(t)

	inv, err := axpert.CreateTestInverterReader()
	if err != nil {
		t.Error(err)
		return
	}

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)

	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor { return NewInverterActor(inv, logger) })
	pid := context.Spawn(props)

	time.Sleep(1 * time.Second)

	msg := domain.GetDeviceInfoRequest{}
	result, err := context.RequestFuture(pid, msg, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetDeviceInfoResponse)

	assert.Equal(resp.Info.Serial, "92631807100001", "device serial")
	assert.Equal(resp.Info.ModelID, "027", "device model id")
	assert.Equal(resp.Info.ModelName, "AXPERT VMIII", "device model name")
	assert.Equal(resp.Info.FirmwareVersion, "00052.30", "device firmware")

	context.Stop(pid)

	as.Shutdown()
}

func TestGetGeneralStatusInverterActor(t *testing.T) {

	assert := assert.New(t)

	inv, err := axpert.CreateTestInverterReader()
	if err != nil {
		t.Error(err)
		return
	}

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor { return NewInverterActor(inv, logger) })
	pid := context.Spawn(props)

	time.Sleep(1 * time.Second)

	msg := domain.GetGeneralStatusRequest{}

	result, err := context.RequestFuture(pid, msg, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetGeneralStatusResponse)

	assert.InDelta(resp.Status.BatteryVoltage, 53.2, 1e-6, "battery voltage")
	assert.True(resp.Status.PVPower() > 0, "pv power bounds")
	assert.Equal(resp.Status.ACOutputActivePower, 435, "ac output active power")
	assert.True(resp.Status.DeviceStatus.LoadOn(), "load on bit")

	context.Stop(pid)

	as.Shutdown()
}

func TestSetInputRangeInverterActor(t *testing.T) {

	assert := assert.New(t)

	inv, err := axpert.CreateTestInverterReader()
	if err != nil {
		t.Error(err)
		return
	}

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor { return NewInverterActor(inv, logger) })
	pid := context.Spawn(props)

	time.Sleep(1 * time.Second)

	msg := domain.SetInputRangeRequest{Value: axpert.InputRangeUPS}

	result, err := context.RequestFuture(pid, msg, 35*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.SetInputRangeResponse)

	assert.False(resp.HasResponseError(), "no response error")
	assert.True(resp.Verified, "verified")
	assert.Equal(resp.Value, axpert.InputRangeUPS, "value")

	// the settings block reflects the change on the next read
	result, err = context.RequestFuture(pid, domain.GetRatedInfoRequest{}, 15*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	rated := result.(domain.GetRatedInfoResponse)
	assert.Equal(rated.Rated.InputVoltageRange, axpert.InputRangeUPS, "rated input range")

	context.Stop(pid)

	as.Shutdown()
}

func TestSetInputRangeUnverifiedInverterActor(t *testing.T) {

	assert := assert.New(t)

	inv := axpert.NewTestInverterReader()
	inv.IgnoreSetters = true

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor { return NewInverterActor(inv, logger) })
	pid := context.Spawn(props)

	time.Sleep(1 * time.Second)

	msg := domain.SetInputRangeRequest{Value: axpert.InputRangeUPS}

	result, err := context.RequestFuture(pid, msg, 35*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.SetInputRangeResponse)

	assert.False(resp.HasResponseError(), "no response error")
	assert.False(resp.Verified, "not verified")

	context.Stop(pid)

	as.Shutdown()
}
