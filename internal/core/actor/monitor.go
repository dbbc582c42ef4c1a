package actor

import (
	"fmt"
	"time"

	"github.com/berfenger/axpert2mqtt/internal/config"
	"github.com/berfenger/axpert2mqtt/internal/core/domain"
	"github.com/berfenger/axpert2mqtt/internal/core/events"
	"github.com/berfenger/axpert2mqtt/internal/core/service"
	. "github.com/berfenger/axpert2mqtt/internal/util/actorutil"
	"github.com/berfenger/axpert2mqtt/pkg/axpert"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

// MonitorActor drives the poll cycle. Each PollTick queries the general
// status through the inverter actor, publishes the decoded sensor values
// on the event stream and feeds the energy integrator. Rated info, device
// mode and warnings are refreshed every ratedInfoEveryTicks ticks.
// Ticks that arrive while a poll is in flight are dropped.
type MonitorActor struct {
	behavior actor.Behavior
	stash    *Stash

	inverterActor *actor.PID
	config        *config.Config
	eventStream   *eventstream.EventStream
	integrator    *service.EnergyIntegrator

	ticksToRefresh uint32
	failures       uint32
	// nil until the first availability publication, so a device that is
	// unreachable from the start still gets an explicit offline event.
	available *bool

	controlReplyTo *actor.PID

	logger *zap.Logger
}

func NewMonitorActor(config *config.Config, inverterActor *actor.PID, eventStream *eventstream.EventStream,
	integrator *service.EnergyIntegrator, logger *zap.Logger) *MonitorActor {
	act := &MonitorActor{
		config:        config,
		inverterActor: inverterActor,
		behavior:      actor.NewBehavior(),
		stash:         &Stash{},
		logger:        ActorLogger(domain.ACTOR_ID_MONITOR, logger),
		eventStream:   eventStream,
		integrator:    integrator,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MonitorActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MonitorActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("monitor@starting started")

		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.inverterActor, domain.GetDeviceInfoRequest{}, 15*time.Second), func(err error) any {
			return domain.GetDeviceInfoResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: err,
				},
			}
		})
		state.behavior.Become(state.WaitingInfoReceive)
	case *actor.Restarting:
	default:
		state.logger.Debug("monitor@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MonitorActor) WaitingInfoReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.GetDeviceInfoResponse:
		if msg.HasResponseError() {
			state.logger.Error("monitor@waitingInfo GetDeviceInfoResponse", zap.Error(msg.GetResponseError()))
		} else if msg.Info != nil {
			state.logger.Info("monitor@waitingInfo device identified",
				zap.String("serial", msg.Info.Serial),
				zap.String("model", msg.Info.ModelName),
				zap.String("firmware", msg.Info.FirmwareVersion))
			state.eventStream.Publish(domain.TextSensorUpdateEvent{
				SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{
					Id: domain.SENSOR_ID_FIRMWARE_VERSION,
				},
				Value: msg.Info.FirmwareVersion,
			})
		}
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case domain.PollTick:
		state.logger.Debug("monitor@waitingInfo: tick dropped")
	default:
		state.logger.Debug("monitor@waitingInfo: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MonitorActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("monitor@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MONITOR,
			Healthy: true,
			State:   "idle",
		})
	case domain.PollTick:
		state.logger.Debug("monitor@default tick")
		// get general status
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.inverterActor, domain.GetGeneralStatusRequest{}, 15*time.Second), func(err error) any {
			return domain.GetGeneralStatusResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: err,
				},
			}
		})
		// refresh rated info, mode and warnings every N ticks
		if state.ticksToRefresh == 0 {
			state.ticksToRefresh = state.config.MonitorConfig.RatedInfoEveryTicks
			PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.inverterActor, domain.GetRatedInfoRequest{}, 15*time.Second), func(err error) any {
				return domain.GetRatedInfoResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				}
			})
			PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.inverterActor, domain.GetModeRequest{}, 15*time.Second), func(err error) any {
				return domain.GetModeResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				}
			})
			PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.inverterActor, domain.GetWarningsRequest{}, 15*time.Second), func(err error) any {
				return domain.GetWarningsResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				}
			})
		} else {
			state.ticksToRefresh--
		}
		state.behavior.BecomeStacked(state.WaitingStatusReceive)
	case domain.GetRatedInfoResponse:
		state.logger.Debug("monitor@default GetRatedInfoResponse")
		if !msg.HasResponseError() && msg.Rated != nil {
			for _, ev := range events.RatedInfoToUpdateEvents(msg.Rated) {
				state.eventStream.Publish(ev)
			}
		}
	case domain.GetModeResponse:
		state.logger.Debug("monitor@default GetModeResponse")
		if !msg.HasResponseError() {
			for _, ev := range events.DeviceModeToUpdateEvents(msg.Mode) {
				state.eventStream.Publish(ev)
			}
		}
	case domain.GetWarningsResponse:
		state.logger.Debug("monitor@default GetWarningsResponse")
		if !msg.HasResponseError() {
			for _, ev := range events.WarningsToUpdateEvents(msg.Warnings) {
				state.eventStream.Publish(ev)
			}
		}
	case domain.SetInputRangeRequest:
		state.forwardControl(ctx, msg, func(err error) any {
			return domain.SetInputRangeResponse{
				InverterControlResponseMixIn: controlError(err),
			}
		})
	case domain.SetOutputSourcePriorityRequest:
		state.forwardControl(ctx, msg, func(err error) any {
			return domain.SetOutputSourcePriorityResponse{
				InverterControlResponseMixIn: controlError(err),
			}
		})
	case domain.SetChargerSourcePriorityRequest:
		state.forwardControl(ctx, msg, func(err error) any {
			return domain.SetChargerSourcePriorityResponse{
				InverterControlResponseMixIn: controlError(err),
			}
		})
	default:
		state.logger.Debug("monitor@default: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MonitorActor) WaitingStatusReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.GetGeneralStatusResponse:
		if msg.HasResponseError() {
			state.logger.Error("monitor@waiting GetGeneralStatusResponse error", zap.Error(msg.GetResponseError()))
			state.pollFailed()
			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
			return
		}
		state.logger.Debug("monitor@waiting GetGeneralStatusResponse")
		if msg.Status != nil {
			state.pollSucceeded(msg.Status)
		}
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.PollTick:
		// previous poll still in flight
		state.logger.Debug("monitor@waiting: tick dropped")
	default:
		state.logger.Debug("monitor@waiting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MonitorActor) WaitingControlReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.SetInputRangeResponse:
		if !msg.HasResponseError() {
			state.publishSelect(domain.SELECT_ID_AC_INPUT_RANGE, msg.Value.String())
			if !msg.Verified {
				state.logger.Warn("monitor@control input range accepted but not verified")
			}
		} else {
			state.logger.Error("monitor@control SetInputRangeResponse error", zap.Error(msg.GetResponseError()))
		}
		state.finishControl(ctx, msg)
	case domain.SetOutputSourcePriorityResponse:
		if !msg.HasResponseError() {
			state.publishSelect(domain.SELECT_ID_OUTPUT_SOURCE_PRIORITY, msg.Value.String())
			if !msg.Verified {
				state.logger.Warn("monitor@control output source priority accepted but not verified")
			}
		} else {
			state.logger.Error("monitor@control SetOutputSourcePriorityResponse error", zap.Error(msg.GetResponseError()))
		}
		state.finishControl(ctx, msg)
	case domain.SetChargerSourcePriorityResponse:
		if !msg.HasResponseError() {
			state.publishSelect(domain.SELECT_ID_CHARGER_SOURCE_PRIORITY, msg.Value.String())
			if !msg.Verified {
				state.logger.Warn("monitor@control charger source priority accepted but not verified")
			}
		} else {
			state.logger.Error("monitor@control SetChargerSourcePriorityResponse error", zap.Error(msg.GetResponseError()))
		}
		state.finishControl(ctx, msg)
	case domain.PollTick:
		// device port is busy with the control command
		state.logger.Debug("monitor@control: tick dropped")
	default:
		state.logger.Debug("monitor@control: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MonitorActor) forwardControl(ctx actor.Context, request domain.InverterControlRequest, recover func(error) any) {
	state.logger.Debug("monitor@default control request", zap.String("type", fmt.Sprintf("%T", request)))
	state.controlReplyTo = ForRequest(request).ReplyTo(ctx)
	PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.inverterActor, request, 45*time.Second), recover)
	state.behavior.BecomeStacked(state.WaitingControlReceive)
}

func (state *MonitorActor) finishControl(ctx actor.Context, response domain.InverterControlResponse) {
	if state.controlReplyTo != nil {
		ctx.Send(state.controlReplyTo, response)
		state.controlReplyTo = nil
	}
	state.behavior.UnbecomeStacked()
	state.stash.UnstashAll(ctx)
}

func (state *MonitorActor) publishSelect(id, value string) {
	state.eventStream.Publish(domain.SelectSensorUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: id},
		Value:                  value,
	})
}

func (state *MonitorActor) pollSucceeded(status *axpert.GeneralStatus) {
	state.failures = 0
	state.setAvailable(true)
	for _, ev := range events.GeneralStatusToUpdateEvents(status) {
		state.eventStream.Publish(ev)
	}
	energy := state.integrator.Apply(time.Now(), status.PVPower(), float64(status.ACOutputActivePower))
	for _, ev := range events.EnergyTotalsToUpdateEvents(energy.PVEnergyKWh, energy.LoadEnergyKWh) {
		state.eventStream.Publish(ev)
	}
}

func (state *MonitorActor) pollFailed() {
	state.failures++
	if state.failures >= state.config.MonitorConfig.OfflineThreshold {
		state.setAvailable(false)
	}
}

func (state *MonitorActor) setAvailable(available bool) {
	if state.available != nil && *state.available == available {
		return
	}
	state.available = &available
	state.eventStream.Publish(events.DeviceAvailabilityToUpdateEvent(available))
}

func controlError(err error) domain.InverterControlResponseMixIn {
	return domain.InverterControlResponseMixIn{
		ActorResponseMixIn: domain.ActorResponseMixIn{
			ResponseError: err,
		},
	}
}
