package util

import (
	"github.com/berfenger/axpert2mqtt/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		Inverter: config.InverterConfig{
			DevicePath:    "/dev/hidraw0",
			Transport:     "hidraw",
			TimeoutMillis: 1000,
		},
		MQTT: config.MQTTConfig{
			Host: "localhost",
			Port: 1883,
		},
		MonitorConfig: config.MonitorConfig{
			PollIntervalMillis:  5000,
			RatedInfoEveryTicks: 12,
			OfflineThreshold:    3,
		},
		EnergyConfig: config.EnergyConfig{
			StatePath:              "",
			MaxSampleGapMultiplier: 3,
		},
		Port: 8080,
	}
}
