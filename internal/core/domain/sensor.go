package domain

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/berfenger/axpert2mqtt/pkg/axpert"

	"github.com/carlmjohnson/versioninfo"
)

const (
	SENSOR_ID_BRIDGE_STATE              = "bridge"
	SENSOR_ID_DEVICE_AVAILABILITY       = "device_availability"
	SENSOR_ID_GRID_VOLTAGE              = "grid_voltage"
	SENSOR_ID_GRID_FREQUENCY            = "grid_frequency"
	SENSOR_ID_OUTPUT_VOLTAGE            = "output_voltage"
	SENSOR_ID_OUTPUT_FREQUENCY          = "output_frequency"
	SENSOR_ID_OUTPUT_APPARENT_POWER     = "output_apparent_power"
	SENSOR_ID_OUTPUT_ACTIVE_POWER       = "output_active_power"
	SENSOR_ID_OUTPUT_LOAD_PERCENT       = "output_load_percent"
	SENSOR_ID_OUTPUT_CURRENT            = "output_current"
	SENSOR_ID_BUS_VOLTAGE               = "bus_voltage"
	SENSOR_ID_BATTERY_VOLTAGE           = "battery_voltage"
	SENSOR_ID_BATTERY_CHARGING_CURRENT  = "battery_charging_current"
	SENSOR_ID_BATTERY_DISCHARGE_CURRENT = "battery_discharge_current"
	SENSOR_ID_BATTERY_CAPACITY          = "battery_capacity"
	SENSOR_ID_HEATSINK_TEMPERATURE      = "heatsink_temperature"
	SENSOR_ID_PV_CURRENT                = "pv_current"
	SENSOR_ID_PV_VOLTAGE                = "pv_voltage"
	SENSOR_ID_PV_POWER                  = "pv_power"
	SENSOR_ID_SCC_VOLTAGE               = "scc_voltage"
	SENSOR_ID_DEVICE_MODE               = "device_mode"
	SENSOR_ID_FIRMWARE_VERSION          = "firmware_version"
	SENSOR_ID_PV_ENERGY_TOTAL           = "pv_energy_total"
	SENSOR_ID_LOAD_ENERGY_TOTAL         = "load_energy_total"
	BINARY_SENSOR_ID_LOAD_ON            = "load_on"
	BINARY_SENSOR_ID_CHARGING           = "charging"
	BINARY_SENSOR_ID_SCC_CHARGING       = "scc_charging"
	BINARY_SENSOR_ID_AC_CHARGING        = "ac_charging"
	SELECT_ID_AC_INPUT_RANGE            = "ac_input_range"
	SELECT_ID_OUTPUT_SOURCE_PRIORITY    = "output_source_priority"
	SELECT_ID_CHARGER_SOURCE_PRIORITY   = "charger_source_priority"
	WARNING_SENSOR_ID_PREFIX            = "warning_"
	STATE_CLASS_MEASUREMENT             = "measurement"
	STATE_CLASS_TOTAL_INCREASING        = "total_increasing"
	DEVICE_CLASS_BATTERY                = "battery"
	DEVICE_CLASS_CURRENT                = "current"
	DEVICE_CLASS_ENERGY                 = "energy"
	DEVICE_CLASS_FREQUENCY              = "frequency"
	DEVICE_CLASS_POWER                  = "power"
	DEVICE_CLASS_APPARENT_POWER         = "apparent_power"
	DEVICE_CLASS_TEMPERATURE            = "temperature"
	DEVICE_CLASS_VOLTAGE                = "voltage"
	DEVICE_CLASS_CONNECTIVITY           = "connectivity"
	DEVICE_CLASS_PROBLEM                = "problem"
	ENTITY_CLASS_DIAGNOSTIC             = "diagnostic"
	ENTITY_CLASS_CONFIG                 = "config"
	SENSOR_TYPE_SENSOR                  = "sensor"
	SENSOR_TYPE_BINARY                  = "binary_sensor"
)

func BridgeDevice(baseTopic string) Device {
	return Device{
		Id:           fmt.Sprintf("axpert_bridge_%s", md5HashShort(baseTopic)),
		Manufacturer: "ACasal",
		Model:        "Axpert2MQTT",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("Axpert2MQTT %s", md5HashShort(baseTopic)),
	}
}

func InverterDevice(info *axpert.DeviceInfo) Device {
	return Device{
		Id:           fmt.Sprintf("axp_inverter_%s", md5HashShort(info.Serial)),
		Version:      info.FirmwareVersion,
		Manufacturer: "Voltronic Power",
		Model:        info.ModelName,
		Name:         fmt.Sprintf("%s %s", info.ModelName, md5HashShort(info.Serial)),
	}
}

func IdDevice(device Device) Device {
	return Device{
		Id:   device.Id,
		Name: device.Name,
	}
}

// InverterStatusSensors are the sensors fed by every status poll.
func InverterStatusSensors(inverterDevice Device) []GenericSensor {

	var sensors []GenericSensor

	sensors = append(sensors, GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_GRID_VOLTAGE,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Grid voltage",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_VOLTAGE,
		UnitOfMeasurement: "V",
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_GRID_VOLTAGE),
	})

	sensors = append(sensors, GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_GRID_FREQUENCY,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Grid frequency",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_FREQUENCY,
		UnitOfMeasurement: "Hz",
		Icon:              "mdi:sine-wave",
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_GRID_FREQUENCY),
	})

	sensors = append(sensors, GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_OUTPUT_VOLTAGE,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Output voltage",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_VOLTAGE,
		UnitOfMeasurement: "V",
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_OUTPUT_VOLTAGE),
	})

	sensors = append(sensors, GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_OUTPUT_FREQUENCY,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Output frequency",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_FREQUENCY,
		UnitOfMeasurement: "Hz",
		Icon:              "mdi:sine-wave",
		EnabledByDefault:  optionalBool(false),
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_OUTPUT_FREQUENCY),
	})

	sensors = append(sensors, GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_OUTPUT_APPARENT_POWER,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Output apparent power",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_APPARENT_POWER,
		UnitOfMeasurement: "VA",
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_OUTPUT_APPARENT_POWER),
	})

	sensors = append(sensors, GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_OUTPUT_ACTIVE_POWER,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Output active power",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_POWER,
		UnitOfMeasurement: "W",
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_OUTPUT_ACTIVE_POWER),
	})

	sensors = append(sensors, GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_OUTPUT_LOAD_PERCENT,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Output load",
		StateClass:        STATE_CLASS_MEASUREMENT,
		UnitOfMeasurement: "%",
		Icon:              "mdi:gauge",
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_OUTPUT_LOAD_PERCENT),
	})

	sensors = append(sensors, GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_OUTPUT_CURRENT,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Output current",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_CURRENT,
		UnitOfMeasurement: "A",
		EnabledByDefault:  optionalBool(false),
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_OUTPUT_CURRENT),
	})

	sensors = append(sensors, GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_BUS_VOLTAGE,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Bus voltage",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_VOLTAGE,
		UnitOfMeasurement: "V",
		EntityCategory:    ENTITY_CLASS_DIAGNOSTIC,
		EnabledByDefault:  optionalBool(false),
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_BUS_VOLTAGE),
	})

	sensors = append(sensors, GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_BATTERY_VOLTAGE,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Battery voltage",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_VOLTAGE,
		UnitOfMeasurement: "V",
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_BATTERY_VOLTAGE),
	})

	sensors = append(sensors, GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_BATTERY_CHARGING_CURRENT,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Battery charging current",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_CURRENT,
		UnitOfMeasurement: "A",
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_BATTERY_CHARGING_CURRENT),
	})

	sensors = append(sensors, GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_BATTERY_DISCHARGE_CURRENT,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Battery discharge current",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_CURRENT,
		UnitOfMeasurement: "A",
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_BATTERY_DISCHARGE_CURRENT),
	})

	sensors = append(sensors, GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_BATTERY_CAPACITY,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Battery capacity",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_BATTERY,
		UnitOfMeasurement: "%",
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_BATTERY_CAPACITY),
	})

	sensors = append(sensors, GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_HEATSINK_TEMPERATURE,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Heatsink temperature",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_TEMPERATURE,
		UnitOfMeasurement: "°C",
		EntityCategory:    ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_HEATSINK_TEMPERATURE),
	})

	sensors = append(sensors, GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_PV_CURRENT,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "PV current",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_CURRENT,
		UnitOfMeasurement: "A",
		EnabledByDefault:  optionalBool(false),
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_PV_CURRENT),
	})

	sensors = append(sensors, GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_PV_VOLTAGE,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "PV voltage",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_VOLTAGE,
		UnitOfMeasurement: "V",
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_PV_VOLTAGE),
	})

	sensors = append(sensors, GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_PV_POWER,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "PV power",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_POWER,
		UnitOfMeasurement: "W",
		Icon:              "mdi:solar-power",
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_PV_POWER),
	})

	sensors = append(sensors, GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_SCC_VOLTAGE,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "SCC voltage",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_VOLTAGE,
		UnitOfMeasurement: "V",
		EntityCategory:    ENTITY_CLASS_DIAGNOSTIC,
		EnabledByDefault:  optionalBool(false),
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_SCC_VOLTAGE),
	})

	sensors = append(sensors, GenericSensor{
		Device:     inverterDevice,
		Id:         SENSOR_ID_DEVICE_MODE,
		SensorType: SENSOR_TYPE_SENSOR,
		Name:       "Device mode",
		Icon:       "mdi:state-machine",
		UniqueId:   uniqueId(inverterDevice.Id, SENSOR_ID_DEVICE_MODE),
	})

	sensors = append(sensors, GenericSensor{
		Device:           inverterDevice,
		Id:               SENSOR_ID_FIRMWARE_VERSION,
		SensorType:       SENSOR_TYPE_SENSOR,
		Name:             "Firmware version",
		Icon:             "mdi:chip",
		EntityCategory:   ENTITY_CLASS_DIAGNOSTIC,
		EnabledByDefault: optionalBool(false),
		UniqueId:         uniqueId(inverterDevice.Id, SENSOR_ID_FIRMWARE_VERSION),
	})

	return sensors
}

// InverterEnergySensors are the accumulated energy totals maintained by the
// integrator.
func InverterEnergySensors(inverterDevice Device) []GenericSensor {

	var sensors []GenericSensor

	sensors = append(sensors, GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_PV_ENERGY_TOTAL,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "PV energy total",
		StateClass:        STATE_CLASS_TOTAL_INCREASING,
		DeviceClass:       DEVICE_CLASS_ENERGY,
		UnitOfMeasurement: "kWh",
		Icon:              "mdi:solar-power",
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_PV_ENERGY_TOTAL),
	})

	sensors = append(sensors, GenericSensor{
		Device:            inverterDevice,
		Id:                SENSOR_ID_LOAD_ENERGY_TOTAL,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Load energy total",
		StateClass:        STATE_CLASS_TOTAL_INCREASING,
		DeviceClass:       DEVICE_CLASS_ENERGY,
		UnitOfMeasurement: "kWh",
		Icon:              "mdi:home-lightning-bolt",
		UniqueId:          uniqueId(inverterDevice.Id, SENSOR_ID_LOAD_ENERGY_TOTAL),
	})

	return sensors
}

func InverterBinarySensors(inverterDevice Device) []GenericSensor {

	var sensors []GenericSensor

	sensors = append(sensors, GenericSensor{
		Device:     inverterDevice,
		Id:         BINARY_SENSOR_ID_LOAD_ON,
		SensorType: SENSOR_TYPE_BINARY,
		Name:       "Load on",
		UniqueId:   uniqueId(inverterDevice.Id, BINARY_SENSOR_ID_LOAD_ON),
	})

	sensors = append(sensors, GenericSensor{
		Device:     inverterDevice,
		Id:         BINARY_SENSOR_ID_CHARGING,
		SensorType: SENSOR_TYPE_BINARY,
		Name:       "Charging",
		Icon:       "mdi:battery-charging",
		UniqueId:   uniqueId(inverterDevice.Id, BINARY_SENSOR_ID_CHARGING),
	})

	sensors = append(sensors, GenericSensor{
		Device:     inverterDevice,
		Id:         BINARY_SENSOR_ID_SCC_CHARGING,
		SensorType: SENSOR_TYPE_BINARY,
		Name:       "Solar charging",
		Icon:       "mdi:solar-power",
		UniqueId:   uniqueId(inverterDevice.Id, BINARY_SENSOR_ID_SCC_CHARGING),
	})

	sensors = append(sensors, GenericSensor{
		Device:     inverterDevice,
		Id:         BINARY_SENSOR_ID_AC_CHARGING,
		SensorType: SENSOR_TYPE_BINARY,
		Name:       "AC charging",
		Icon:       "mdi:transmission-tower",
		UniqueId:   uniqueId(inverterDevice.Id, BINARY_SENSOR_ID_AC_CHARGING),
	})

	sensors = append(sensors, GenericSensor{
		Device:         inverterDevice,
		Id:             SENSOR_ID_DEVICE_AVAILABILITY,
		SensorType:     SENSOR_TYPE_BINARY,
		Name:           "Device availability",
		DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(inverterDevice.Id, SENSOR_ID_DEVICE_AVAILABILITY),
	})

	return sensors
}

// InverterWarningSensors builds one problem sensor per known warning bit.
func InverterWarningSensors(inverterDevice Device) []GenericSensor {

	var sensors []GenericSensor

	names := make([]string, 0, len(axpert.WarningNames))
	for _, name := range axpert.WarningNames {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		id := WARNING_SENSOR_ID_PREFIX + name
		sensors = append(sensors, GenericSensor{
			Device:           inverterDevice,
			Id:               id,
			SensorType:       SENSOR_TYPE_BINARY,
			Name:             "Warning " + name,
			DeviceClass:      DEVICE_CLASS_PROBLEM,
			EntityCategory:   ENTITY_CLASS_DIAGNOSTIC,
			EnabledByDefault: optionalBool(false),
			UniqueId:         uniqueId(inverterDevice.Id, id),
		})
	}

	return sensors
}

func InverterSelects(inverterDevice Device) []GenericSelect {

	var selects []GenericSelect

	selects = append(selects, GenericSelect{
		Device:   inverterDevice,
		Id:       SELECT_ID_AC_INPUT_RANGE,
		Name:     "AC input range",
		UniqueId: uniqueId(inverterDevice.Id, SELECT_ID_AC_INPUT_RANGE),
		Icon:     "mdi:sine-wave",
		Options: []string{
			axpert.InputRangeAppliance.String(),
			axpert.InputRangeUPS.String(),
		},
	})

	selects = append(selects, GenericSelect{
		Device:   inverterDevice,
		Id:       SELECT_ID_OUTPUT_SOURCE_PRIORITY,
		Name:     "Output source priority",
		UniqueId: uniqueId(inverterDevice.Id, SELECT_ID_OUTPUT_SOURCE_PRIORITY),
		Icon:     "mdi:power-plug",
		Options: []string{
			axpert.OutputSourceUtilityFirst.String(),
			axpert.OutputSourceSolarFirst.String(),
			axpert.OutputSourceSBU.String(),
		},
	})

	selects = append(selects, GenericSelect{
		Device:   inverterDevice,
		Id:       SELECT_ID_CHARGER_SOURCE_PRIORITY,
		Name:     "Charger source priority",
		UniqueId: uniqueId(inverterDevice.Id, SELECT_ID_CHARGER_SOURCE_PRIORITY),
		Icon:     "mdi:battery-charging",
		Options: []string{
			axpert.ChargerSourceUtilityFirst.String(),
			axpert.ChargerSourceSolarFirst.String(),
			axpert.ChargerSourceSolarAndUtility.String(),
			axpert.ChargerSourceSolarOnly.String(),
		},
	})

	return selects
}

func BridgeSensors(bridgeDevice Device) []GenericSensor {

	var sensors []GenericSensor

	sensors = append(sensors, GenericSensor{
		Device:         bridgeDevice,
		Id:             SENSOR_ID_BRIDGE_STATE,
		SensorType:     SENSOR_TYPE_BINARY,
		Name:           "Connection state",
		DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(bridgeDevice.Id, SENSOR_ID_BRIDGE_STATE),
	})

	return sensors
}

func uniqueId(baseId, id string) string {
	return fmt.Sprintf("uid_%s_%s", baseId, id)
}

func md5Hash(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])
}

func md5HashShort(text string) string {
	hash := md5Hash(text)
	return hash[0:8]
}

func optionalBool(value bool) *bool {
	return &value
}
