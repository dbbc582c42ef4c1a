package events

import (
	. "github.com/berfenger/axpert2mqtt/internal/core/domain"
	"github.com/berfenger/axpert2mqtt/pkg/axpert"
)

func GeneralStatusToUpdateEvents(st *axpert.GeneralStatus) []any {
	var events []any

	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_GRID_VOLTAGE,
		},
		Value:    st.GridVoltage,
		Decimals: 1,
	})
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_GRID_FREQUENCY,
		},
		Value:    st.GridFrequency,
		Decimals: 1,
	})
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_OUTPUT_VOLTAGE,
		},
		Value:    st.ACOutputVoltage,
		Decimals: 1,
	})
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_OUTPUT_FREQUENCY,
		},
		Value:    st.ACOutputFrequency,
		Decimals: 1,
	})
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_OUTPUT_APPARENT_POWER,
		},
		Value: float64(st.ACOutputApparentPower),
	})
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_OUTPUT_ACTIVE_POWER,
		},
		Value: float64(st.ACOutputActivePower),
	})
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_OUTPUT_LOAD_PERCENT,
		},
		Value: float64(st.OutputLoadPercent),
	})
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_OUTPUT_CURRENT,
		},
		Value:    st.OutputCurrent(),
		Decimals: 2,
	})
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_BUS_VOLTAGE,
		},
		Value: float64(st.BusVoltage),
	})
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_BATTERY_VOLTAGE,
		},
		Value:    st.BatteryVoltage,
		Decimals: 2,
	})
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_BATTERY_CHARGING_CURRENT,
		},
		Value: float64(st.BatteryChargingCurrent),
	})
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_BATTERY_DISCHARGE_CURRENT,
		},
		Value: float64(st.BatteryDischargeCurrent),
	})
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_BATTERY_CAPACITY,
		},
		Value: float64(st.BatteryCapacity),
	})
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_HEATSINK_TEMPERATURE,
		},
		Value: float64(st.HeatSinkTemperature),
	})
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_PV_CURRENT,
		},
		Value:    st.PVInputCurrent,
		Decimals: 1,
	})
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_PV_VOLTAGE,
		},
		Value:    st.PVInputVoltage,
		Decimals: 1,
	})
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_PV_POWER,
		},
		Value:    st.PVPower(),
		Decimals: 1,
	})
	events = append(events, FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_SCC_VOLTAGE,
		},
		Value:    st.SCCVoltage,
		Decimals: 2,
	})

	events = append(events, BinarySensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: BINARY_SENSOR_ID_LOAD_ON,
		},
		Value: st.DeviceStatus.LoadOn(),
	})
	events = append(events, BinarySensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: BINARY_SENSOR_ID_CHARGING,
		},
		Value: st.DeviceStatus.Charging(),
	})
	events = append(events, BinarySensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: BINARY_SENSOR_ID_SCC_CHARGING,
		},
		Value: st.DeviceStatus.SCCCharging(),
	})
	events = append(events, BinarySensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: BINARY_SENSOR_ID_AC_CHARGING,
		},
		Value: st.DeviceStatus.ACCharging(),
	})

	return events
}

func DeviceModeToUpdateEvents(mode axpert.DeviceMode) []any {
	return []any{
		TextSensorUpdateEvent{
			SensorUpdateEventMixIn: SensorUpdateEventMixIn{
				Id: SENSOR_ID_DEVICE_MODE,
			},
			Value: mode.String(),
		},
	}
}

func WarningsToUpdateEvents(w axpert.WarningFlags) []any {
	var events []any
	for index, name := range axpert.WarningNames {
		events = append(events, BinarySensorUpdateEvent{
			SensorUpdateEventMixIn: SensorUpdateEventMixIn{
				Id: WARNING_SENSOR_ID_PREFIX + name,
			},
			Value: w.IsSet(index),
		})
	}
	return events
}

// RatedInfoToUpdateEvents reflects the settings block into the select
// states.
func RatedInfoToUpdateEvents(ri *axpert.RatedInfo) []any {
	var events []any
	events = append(events, SelectSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SELECT_ID_AC_INPUT_RANGE,
		},
		Value: ri.InputVoltageRange.String(),
	})
	events = append(events, SelectSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SELECT_ID_OUTPUT_SOURCE_PRIORITY,
		},
		Value: ri.OutputSourcePriority.String(),
	})
	events = append(events, SelectSensorUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SELECT_ID_CHARGER_SOURCE_PRIORITY,
		},
		Value: ri.ChargerSourcePriority.String(),
	})
	return events
}

func EnergyTotalsToUpdateEvents(pvKWh, loadKWh float64) []any {
	return []any{
		FloatSensorUpdateEvent{
			SensorUpdateEventMixIn: SensorUpdateEventMixIn{
				Id: SENSOR_ID_PV_ENERGY_TOTAL,
			},
			Value:    pvKWh,
			Decimals: 3,
		},
		FloatSensorUpdateEvent{
			SensorUpdateEventMixIn: SensorUpdateEventMixIn{
				Id: SENSOR_ID_LOAD_ENERGY_TOTAL,
			},
			Value:    loadKWh,
			Decimals: 3,
		},
	}
}

func DeviceAvailabilityToUpdateEvent(available bool) any {
	return DeviceAvailabilityUpdateEvent{
		SensorUpdateEventMixIn: SensorUpdateEventMixIn{
			Id: SENSOR_ID_DEVICE_AVAILABILITY,
		},
		Value: available,
	}
}
