package domain

import "github.com/berfenger/axpert2mqtt/pkg/axpert"

const (
	ACTOR_ID_MASTER       = "master"
	ACTOR_ID_INVERTER     = "inverter"
	ACTOR_ID_MONITOR      = "monitor"
	ACTOR_ID_MQTT         = "mqtt"
	ACTOR_ID_HA_DISCOVERY = "hadiscovery"
)

// PollTick triggers one monitor poll cycle. Sent by the quartz scheduler
// through the master actor.
type PollTick struct {
}

type GetDeviceInfoRequest struct {
	ActorRequestMixIn
}

type GetDeviceInfoResponse struct {
	ActorResponseMixIn
	Info *axpert.DeviceInfo
}

type GetGeneralStatusRequest struct {
	ActorRequestMixIn
}

type GetGeneralStatusResponse struct {
	ActorResponseMixIn
	Status *axpert.GeneralStatus
}

type GetRatedInfoRequest struct {
	ActorRequestMixIn
}

type GetRatedInfoResponse struct {
	ActorResponseMixIn
	Rated *axpert.RatedInfo
}

type GetModeRequest struct {
	ActorRequestMixIn
}

type GetModeResponse struct {
	ActorResponseMixIn
	Mode axpert.DeviceMode
}

type GetWarningsRequest struct {
	ActorRequestMixIn
}

type GetWarningsResponse struct {
	ActorResponseMixIn
	Warnings axpert.WarningFlags
}

type PublishMessageRequest struct {
	ActorRequestMixIn
	Topic   string
	Payload string
	Retain  bool
}

type PublishMessageResponse struct {
	ActorResponseMixIn
}

type PublishSensorUpdateRequest struct {
	ActorRequestMixIn
	Retain bool
	Event  SensorUpdateEvent
}

type PublishSensorUpdateResponse struct {
	ActorResponseMixIn
}

type PublishDiscoveryRequest struct {
	ActorRequestMixIn
	Sensors []GenericSensor
	Selects []GenericSelect
}

type PublishDiscoveryResponse struct {
	ActorResponseMixIn
}

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}
