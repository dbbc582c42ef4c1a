package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adactor "github.com/berfenger/axpert2mqtt/internal/adapter/actor"
	"github.com/berfenger/axpert2mqtt/internal/adapter/store"
	"github.com/berfenger/axpert2mqtt/internal/config"
	"github.com/berfenger/axpert2mqtt/internal/core/actor"
	"github.com/berfenger/axpert2mqtt/internal/core/domain"
	"github.com/berfenger/axpert2mqtt/internal/core/port"
	"github.com/berfenger/axpert2mqtt/internal/core/service"
	"github.com/berfenger/axpert2mqtt/internal/server"
	"github.com/berfenger/axpert2mqtt/internal/util/actorutil"
	"github.com/berfenger/axpert2mqtt/pkg/axpert"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/reugn/go-quartz/job"
	"github.com/reugn/go-quartz/quartz"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {

	// load and print config
	cfg, err := initConfig()
	if err != nil {
		slog.Error("config errors", "error", err)
		return
	}
	safePrintConfig(*cfg)

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	defer logger.Sync()

	// energy state store and integrator
	energyStore, err := energyStoreProvider(cfg)
	if err != nil {
		panic(err)
	}
	if energyStore != nil {
		defer energyStore.Close()
	}

	pollInterval := time.Duration(cfg.MonitorConfig.PollIntervalMillis) * time.Millisecond
	maxSampleGap := pollInterval * time.Duration(cfg.EnergyConfig.MaxSampleGapMultiplier)
	integrator := service.NewEnergyIntegrator(energyStore, maxSampleGap, logger)

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewMasterOfPuppetsActor(*cfg, inverterActorProvider(cfg, logger), mqttActorProvider(cfg, logger), integrator, logger)
	})
	pid, err := ctx.SpawnNamed(props, "master")
	if err != nil {
		return
	}

	// poll scheduler
	sched := quartz.NewStdScheduler()
	sched.Start(context.Background())
	pollJob := job.NewFunctionJob(func(_ context.Context) (bool, error) {
		ctx.Send(pid, domain.PollTick{})
		return true, nil
	})
	err = sched.ScheduleJob(quartz.NewJobDetail(pollJob, quartz.NewJobKey("poll")),
		quartz.NewSimpleTrigger(pollInterval))
	if err != nil {
		panic(err)
	}
	defer sched.Stop()

	server := server.NewServer(*cfg, ctx, pid)
	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(server, done)

	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")

	ctx.Stop(pid)
	as.Shutdown()
}

func initConfig() (*config.Config, error) {

	// alias PORT => AXPERT_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("AXPERT_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("axpert")
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			viper.SetConfigFile(cfgFile)

			err = viper.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg config.Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	// parse log level
	switch viper.GetString("log_level") {
	case "trace":
		cfg.LogLevel = zap.DebugLevel
	case "debug":
		cfg.LogLevel = zap.DebugLevel
	case "info":
		cfg.LogLevel = zap.InfoLevel
	case "error":
		cfg.LogLevel = zap.ErrorLevel
	case "warn":
		cfg.LogLevel = zap.WarnLevel
	case "fatal":
		cfg.LogLevel = zap.FatalLevel
	default:
		cfg.LogLevel = zap.InfoLevel
	}

	// check and fix base topic
	baseTopic, err := config.CheckMQTTTopic(cfg.MQTT.BaseTopic)
	if err != nil {
		return nil, errors.New("invalid base topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.BaseTopic = baseTopic

	// check and fix homeassistant discovery topic
	hadBaseTopic, err := config.CheckMQTTTopic(cfg.MQTT.HADiscoveryTopic)
	if err != nil {
		return nil, errors.New("invalid homeassistant discovery topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.HADiscoveryTopic = hadBaseTopic

	// check bounds
	if cfg.Inverter.DevicePath == "" {
		return nil, errors.New("config param inverter.device_path is required")
	}
	if cfg.Inverter.Transport != string(axpert.PortHidraw) && cfg.Inverter.Transport != string(axpert.PortSerial) {
		return nil, errors.New("config param inverter.transport should be hidraw or serial")
	}
	if cfg.Inverter.TimeoutMillis == 0 {
		return nil, errors.New("config param inverter.timeout_millis should be > 0")
	}
	if cfg.MonitorConfig.PollIntervalMillis < 1000 {
		return nil, errors.New("config param monitor.poll_interval_millis should be >= 1000")
	}
	if cfg.MonitorConfig.OfflineThreshold < 1 {
		return nil, errors.New("config param monitor.offline_threshold should be >= 1")
	}
	if cfg.EnergyConfig.MaxSampleGapMultiplier < 1 {
		return nil, errors.New("config param energy.max_sample_gap_multiplier should be >= 1")
	}

	return &cfg, nil
}

func inverterActorProvider(cfg *config.Config, logger *zap.Logger) actor.InverterActorProvider {

	inv := axpert.CreateInverterHIDReader(cfg.Inverter.DevicePath, axpert.PortKind(cfg.Inverter.Transport),
		time.Duration(cfg.Inverter.TimeoutMillis)*time.Millisecond, logger, nil)

	return func() *adactor.InverterActor {
		return adactor.NewInverterActor(inv, logger)
	}
}

func mqttActorProvider(cfg *config.Config, logger *zap.Logger) actor.MQTTActorProvider {
	return func() *adactor.MQTTActor {
		return adactor.NewMQTTActor(cfg, logger)
	}
}

func energyStoreProvider(cfg *config.Config) (port.EnergyStateStore, error) {
	if cfg.EnergyConfig.StatePath == "" {
		return nil, nil
	}
	s, err := store.NewSQLiteEnergyStore(cfg.EnergyConfig.StatePath)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("mqtt.ha_discovery_enable", false)
	viper.SetDefault("mqtt.base_topic", "axpert")
	viper.SetDefault("mqtt.ha_discovery_topic", "homeassistant")
	viper.SetDefault("inverter.transport", "hidraw")
	viper.SetDefault("inverter.timeout_millis", 1000)
	viper.SetDefault("monitor.poll_interval_millis", 5000)
	viper.SetDefault("monitor.rated_info_every_ticks", 12)
	viper.SetDefault("monitor.offline_threshold", 3)
	viper.SetDefault("energy.max_sample_gap_multiplier", 3)
	viper.SetDefault("port", 8080)
}

func safePrintConfig(cfg config.Config) {
	cfg.MQTT.Username = "*redacted*"
	cfg.MQTT.Password = "*redacted*"
	slog.Info("Using", "config", cfg)
}
