package domain

import (
	"fmt"

	"github.com/berfenger/axpert2mqtt/pkg/axpert"
)

// InverterControlRequest

type InverterControlRequest interface {
	ActorRequest
	InverterControlCommand() string
}

type InverterControlRequestMixIn struct {
	ActorRequestMixIn
}

func (r InverterControlRequestMixIn) InverterControlCommand() string {
	return fmt.Sprintf("%T", r)
}

// InverterControlResponse

type InverterControlResponse interface {
	ActorResponse
	InverterControlResponse() string
}

type InverterControlResponseMixIn struct {
	ActorResponseMixIn
}

func (r InverterControlResponseMixIn) InverterControlResponse() string {
	return fmt.Sprintf("%T", r)
}

// Inverter control commands

type SetInputRangeRequest struct {
	InverterControlRequestMixIn
	Value axpert.InputRange
}

type SetInputRangeResponse struct {
	InverterControlResponseMixIn
	Value axpert.InputRange
	// Verified is false when the device ACKed the command but the
	// read-back could not confirm the new value.
	Verified bool
}

type SetOutputSourcePriorityRequest struct {
	InverterControlRequestMixIn
	Value axpert.OutputSourcePriority
}

type SetOutputSourcePriorityResponse struct {
	InverterControlResponseMixIn
	Value    axpert.OutputSourcePriority
	Verified bool
}

type SetChargerSourcePriorityRequest struct {
	InverterControlRequestMixIn
	Value axpert.ChargerSourcePriority
}

type SetChargerSourcePriorityResponse struct {
	InverterControlResponseMixIn
	Value    axpert.ChargerSourcePriority
	Verified bool
}

// ensure interface compliance
var _ InverterControlRequest = (*SetInputRangeRequest)(nil)
