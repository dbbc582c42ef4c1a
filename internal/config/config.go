package config

import (
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel zapcore.Level
	Inverter InverterConfig `mapstructure:"inverter"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`

	MonitorConfig MonitorConfig `mapstructure:"monitor"`
	EnergyConfig  EnergyConfig  `mapstructure:"energy"`
	Port          uint          `mapstructure:"port"`
	HttpLog       bool          `mapstructure:"http_log"`
}

type InverterConfig struct {
	DevicePath string `mapstructure:"device_path"`
	// Transport selects "hidraw" or "serial".
	Transport     string `mapstructure:"transport"`
	TimeoutMillis uint32 `mapstructure:"timeout_millis"`
}

type MonitorConfig struct {
	PollIntervalMillis uint32 `mapstructure:"poll_interval_millis"`
	// RatedInfoEveryTicks is how many status polls pass between settings
	// block refreshes.
	RatedInfoEveryTicks uint32 `mapstructure:"rated_info_every_ticks"`
	// OfflineThreshold is the number of consecutive failed polls before
	// the device is published as unavailable.
	OfflineThreshold uint32 `mapstructure:"offline_threshold"`
}

type EnergyConfig struct {
	StatePath string `mapstructure:"state_path"`
	// MaxSampleGapMultiplier caps the time credited to one integration
	// step, as a multiple of the poll interval.
	MaxSampleGapMultiplier uint32 `mapstructure:"max_sample_gap_multiplier"`
}

type MQTTConfig struct {
	Host              string
	Port              int
	Username          string
	Password          string
	BaseTopic         string `mapstructure:"base_topic"`
	HADiscoveryEnable bool   `mapstructure:"ha_discovery_enable"`
	HADiscoveryTopic  string `mapstructure:"ha_discovery_topic"`
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}
