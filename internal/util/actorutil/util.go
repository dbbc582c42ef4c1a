package actorutil

import (
	"log/slog"
	"time"

	"github.com/berfenger/axpert2mqtt/internal/core/domain"
	"github.com/berfenger/axpert2mqtt/internal/mqtt"
	"github.com/berfenger/axpert2mqtt/pkg/axpert"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/lmittmann/tint"
	"go.uber.org/zap"
)

func PipeToSelfWithRecover(ctx actor.Context, future *actor.Future, mapFn func(error) any) {
	ctx.ReenterAfter(future, func(msg any, err error) {
		if err != nil {
			ctx.Send(ctx.Self(), mapFn(err))
			return
		}
		ctx.Send(ctx.Self(), msg)
	})
}

func NewActorSystemWithZapLogger(logger *zap.Logger) *actor.ActorSystem {
	stdOutLogger := zap.NewStdLog(logger)

	var slogLevel slog.Level = slog.LevelInfo

	switch logger.Level() {
	case zap.DebugLevel:
		slogLevel = slog.LevelDebug
	case zap.InfoLevel:
		slogLevel = slog.LevelInfo
	case zap.WarnLevel:
		slogLevel = slog.LevelWarn
	case zap.ErrorLevel:
		slogLevel = slog.LevelError
	case zap.PanicLevel:
		slogLevel = slog.LevelError
	}

	return actor.NewActorSystem(actor.WithLoggerFactory(func(system *actor.ActorSystem) *slog.Logger {

		// create a new logger
		return slog.New(tint.NewHandler(stdOutLogger.Writer(), &tint.Options{
			Level:      slogLevel,
			TimeFormat: time.DateTime,
		}))
	}))
}

func ActorLogger(actorName string, logger *zap.Logger) *zap.Logger {
	return logger.With(zap.String("actor", actorName))
}

// ParsedMQTTCommandToCommand maps an MQTT select command to the matching
// actor request. Unknown device ids or invalid options yield (nil, nil) so
// stray messages on the base topic are ignored.
func ParsedMQTTCommandToCommand(cmd mqtt.ParsedMQTTCommand) (domain.ActorRequest, error) {
	switch cmd.DeviceId {
	case domain.SELECT_ID_AC_INPUT_RANGE:
		value, err := axpert.ParseInputRange(cmd.Payload)
		if err != nil {
			return nil, nil
		}
		return domain.SetInputRangeRequest{Value: value}, nil
	case domain.SELECT_ID_OUTPUT_SOURCE_PRIORITY:
		value, err := axpert.ParseOutputSourcePriority(cmd.Payload)
		if err != nil {
			return nil, nil
		}
		return domain.SetOutputSourcePriorityRequest{Value: value}, nil
	case domain.SELECT_ID_CHARGER_SOURCE_PRIORITY:
		value, err := axpert.ParseChargerSourcePriority(cmd.Payload)
		if err != nil {
			return nil, nil
		}
		return domain.SetChargerSourcePriorityRequest{Value: value}, nil
	}
	return nil, nil
}
