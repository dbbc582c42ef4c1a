package actor

import (
	"errors"
	"fmt"
	"time"

	"github.com/berfenger/axpert2mqtt/internal/core/domain"
	"github.com/berfenger/axpert2mqtt/internal/util/actorutil"
	"github.com/berfenger/axpert2mqtt/pkg/axpert"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// InverterActor owns the exclusive device handle. Every protocol round-trip
// runs as a background task while the actor stashes new requests, so the
// device never sees interleaved commands.
type InverterActor struct {
	behavior actor.Behavior
	stash    *actorutil.Stash
	inverter axpert.InverterReader
	logger   *zap.Logger
}

type backgroundTaskResult struct {
	message any
	replyTo *actor.PID
}

func NewInverterActor(inverter axpert.InverterReader, logger *zap.Logger) *InverterActor {
	act := &InverterActor{
		inverter: inverter,
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		logger:   actorutil.ActorLogger(domain.ACTOR_ID_INVERTER, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *InverterActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *InverterActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("inverter@starting started")
		if err := state.inverter.Open(); err != nil {
			panic(err)
		}
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
		state.inverter.Close()
	default:
		state.logger.Debug("inverter@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *InverterActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("inverter@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_INVERTER,
			Healthy: true,
			State:   "idle",
		})
	case domain.GetDeviceInfoRequest:
		state.logger.Debug("inverter@default: GetDeviceInfoRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, state.getDeviceInfo),
			mapTaskResult[domain.GetDeviceInfoResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetDeviceInfoResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(10 * time.Second).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingDevice)
	case domain.GetGeneralStatusRequest:
		state.logger.Debug("inverter@default: GetGeneralStatusRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, state.getGeneralStatus),
			mapTaskResult[domain.GetGeneralStatusResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetGeneralStatusResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(10 * time.Second).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingDevice)
	case domain.GetRatedInfoRequest:
		state.logger.Debug("inverter@default: GetRatedInfoRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, state.getRatedInfo),
			mapTaskResult[domain.GetRatedInfoResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetRatedInfoResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(10 * time.Second).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingDevice)
	case domain.GetModeRequest:
		state.logger.Debug("inverter@default: GetModeRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, state.getMode),
			mapTaskResult[domain.GetModeResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetModeResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(10 * time.Second).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingDevice)
	case domain.GetWarningsRequest:
		state.logger.Debug("inverter@default: GetWarningsRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, state.getWarnings),
			mapTaskResult[domain.GetWarningsResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetWarningsResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(10 * time.Second).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingDevice)
	case domain.SetInputRangeRequest:
		state.logger.Debug("inverter@default: SetInputRangeRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		value := msg.Value
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTaskNoError(ctx, func() *domain.SetInputRangeResponse {
			a := state.setInputRange(value)
			return &a
		}), mapTaskResult[domain.SetInputRangeResponse](sender)).WithTimeout(30 * time.Second).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingDevice)
	case domain.SetOutputSourcePriorityRequest:
		state.logger.Debug("inverter@default: SetOutputSourcePriorityRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		value := msg.Value
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTaskNoError(ctx, func() *domain.SetOutputSourcePriorityResponse {
			a := state.setOutputSourcePriority(value)
			return &a
		}), mapTaskResult[domain.SetOutputSourcePriorityResponse](sender)).WithTimeout(30 * time.Second).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingDevice)
	case domain.SetChargerSourcePriorityRequest:
		state.logger.Debug("inverter@default: SetChargerSourcePriorityRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		value := msg.Value
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTaskNoError(ctx, func() *domain.SetChargerSourcePriorityResponse {
			a := state.setChargerSourcePriority(value)
			return &a
		}), mapTaskResult[domain.SetChargerSourcePriorityResponse](sender)).WithTimeout(30 * time.Second).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingDevice)
	case *actor.Stopping:
		state.inverter.Close()
	default:
		state.logger.Debug("inverter@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *InverterActor) WaitingDevice(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case backgroundTaskResult:
		state.logger.Debug("inverter@waiting backgroundTaskResult", zap.String("type", fmt.Sprintf("%T", msg.message)))
		ctx.Send(msg.replyTo, msg.message)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case *actor.Stopping:
		state.inverter.Close()
	default:
		state.logger.Debug("inverter@waiting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (a *InverterActor) getDeviceInfo() (*domain.GetDeviceInfoResponse, error) {
	info, err := a.inverter.GetDeviceInfo()
	if err != nil {
		return nil, err
	}
	return &domain.GetDeviceInfoResponse{
		Info: info,
	}, nil
}

func (a *InverterActor) getGeneralStatus() (*domain.GetGeneralStatusResponse, error) {
	status, err := a.inverter.GetGeneralStatus()
	if err != nil {
		return nil, err
	}
	return &domain.GetGeneralStatusResponse{
		Status: status,
	}, nil
}

func (a *InverterActor) getRatedInfo() (*domain.GetRatedInfoResponse, error) {
	rated, err := a.inverter.GetRatedInfo()
	if err != nil {
		return nil, err
	}
	return &domain.GetRatedInfoResponse{
		Rated: rated,
	}, nil
}

func (a *InverterActor) getMode() (*domain.GetModeResponse, error) {
	mode, err := a.inverter.GetMode()
	if err != nil {
		return nil, err
	}
	return &domain.GetModeResponse{
		Mode: mode,
	}, nil
}

func (a *InverterActor) getWarnings() (*domain.GetWarningsResponse, error) {
	warnings, err := a.inverter.GetWarnings()
	if err != nil {
		return nil, err
	}
	return &domain.GetWarningsResponse{
		Warnings: warnings,
	}, nil
}

func (a *InverterActor) setInputRange(value axpert.InputRange) domain.SetInputRangeResponse {
	err := a.inverter.SetInputRange(value)
	return domain.SetInputRangeResponse{
		InverterControlResponseMixIn: controlResponse(err),
		Value:                        value,
		Verified:                     err == nil,
	}
}

func (a *InverterActor) setOutputSourcePriority(value axpert.OutputSourcePriority) domain.SetOutputSourcePriorityResponse {
	err := a.inverter.SetOutputSourcePriority(value)
	return domain.SetOutputSourcePriorityResponse{
		InverterControlResponseMixIn: controlResponse(err),
		Value:                        value,
		Verified:                     err == nil,
	}
}

func (a *InverterActor) setChargerSourcePriority(value axpert.ChargerSourcePriority) domain.SetChargerSourcePriorityResponse {
	err := a.inverter.SetChargerSourcePriority(value)
	return domain.SetChargerSourcePriorityResponse{
		InverterControlResponseMixIn: controlResponse(err),
		Value:                        value,
		Verified:                     err == nil,
	}
}

// controlResponse maps a setter error to the response mixin. An unverified
// command is not a response error, the caller decides how to surface it.
func controlResponse(err error) domain.InverterControlResponseMixIn {
	if err != nil && !errors.Is(err, axpert.ErrCommandUnverified) {
		return domain.InverterControlResponseMixIn{
			ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: err,
			},
		}
	}
	return domain.InverterControlResponseMixIn{}
}

func mapTaskResult[T any](sender *actor.PID) func(t *T) *backgroundTaskResult {
	return func(t *T) *backgroundTaskResult {
		return &backgroundTaskResult{
			message: *t,
			replyTo: sender,
		}
	}
}
