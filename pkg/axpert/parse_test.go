package axpert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const qpigsPayload = "230.1 50.0 230.0 49.9 0460 0435 009 371 53.20 012 080 0031 14.2 089.9 53.13 00000 00010110"

func TestParseGeneralStatus(t *testing.T) {
	st, err := ParseGeneralStatus(qpigsPayload)
	assert.NoError(t, err)

	assert.Equal(t, 230.1, st.GridVoltage)
	assert.Equal(t, 50.0, st.GridFrequency)
	assert.Equal(t, 230.0, st.ACOutputVoltage)
	assert.Equal(t, 49.9, st.ACOutputFrequency)
	assert.Equal(t, 460, st.ACOutputApparentPower)
	assert.Equal(t, 435, st.ACOutputActivePower)
	assert.Equal(t, 9, st.OutputLoadPercent)
	assert.Equal(t, 371, st.BusVoltage)
	assert.Equal(t, 53.2, st.BatteryVoltage)
	assert.Equal(t, 12, st.BatteryChargingCurrent)
	assert.Equal(t, 80, st.BatteryCapacity)
	assert.Equal(t, 31, st.HeatSinkTemperature)
	assert.Equal(t, 14.2, st.PVInputCurrent)
	assert.Equal(t, 89.9, st.PVInputVoltage)
	assert.Equal(t, 53.13, st.SCCVoltage)
	assert.Equal(t, 0, st.BatteryDischargeCurrent)
	assert.Nil(t, st.PVChargingPower)

	assert.InDelta(t, 89.9*14.2, st.PVPower(), 1e-9)
	assert.InDelta(t, 2.0, st.OutputCurrent(), 1e-9)

	assert.True(t, st.DeviceStatus.LoadOn())
	assert.True(t, st.DeviceStatus.Charging())
	assert.True(t, st.DeviceStatus.SCCCharging())
	assert.False(t, st.DeviceStatus.ACCharging())
}

func TestParseGeneralStatusExtendedPVPower(t *testing.T) {
	st, err := ParseGeneralStatus(qpigsPayload + " 00 00 00856 010")
	assert.NoError(t, err)
	assert.NotNil(t, st.PVChargingPower)
	assert.Equal(t, 856, *st.PVChargingPower)
	assert.Equal(t, 856.0, st.PVPower())
}

func TestParseGeneralStatusShortPayload(t *testing.T) {
	_, err := ParseGeneralStatus("230.1 50.0 230.0")
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestParseGeneralStatusBadToken(t *testing.T) {
	_, err := ParseGeneralStatus("230.1 50.0 230.0 49.9 0460 0435 009 371 banana 012 080 0031 14.2 089.9 53.13 00000 00010110")
	assert.ErrorIs(t, err, ErrMalformedPayload)
	assert.Contains(t, err.Error(), "field 8")
}

func TestParseGeneralStatusNegativeToken(t *testing.T) {
	_, err := ParseGeneralStatus("-230.1 50.0 230.0 49.9 0460 0435 009 371 53.20 012 080 0031 14.2 089.9 53.13 00000 00010110")
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestParseGeneralStatusCapacityRange(t *testing.T) {
	_, err := ParseGeneralStatus("230.1 50.0 230.0 49.9 0460 0435 009 371 53.20 012 120 0031 14.2 089.9 53.13 00000 00010110")
	assert.ErrorIs(t, err, ErrMalformedPayload)
	assert.Contains(t, err.Error(), "field 10")
}

const qpiriPayload = "230.0 21.7 230.0 50.0 21.7 5000 4000 48.0 46.0 42.0 56.4 54.0 0 30 060 1 2 1"

func TestParseRatedInfo(t *testing.T) {
	ri, err := ParseRatedInfo(qpiriPayload)
	assert.NoError(t, err)

	assert.Equal(t, 230.0, ri.GridRatingVoltage)
	assert.Equal(t, 5000, ri.ACOutputRatingApparentVA)
	assert.Equal(t, 4000, ri.ACOutputRatingActiveWatt)
	assert.Equal(t, 48.0, ri.BatteryRatingVoltage)
	assert.Equal(t, 56.4, ri.BatteryBulkVoltage)
	assert.Equal(t, 30, ri.MaxACChargingCurrent)
	assert.Equal(t, 60, ri.MaxChargingCurrent)
	assert.Equal(t, InputRangeUPS, ri.InputVoltageRange)
	assert.Equal(t, OutputSourceSBU, ri.OutputSourcePriority)
	assert.Equal(t, ChargerSourceSolarFirst, ri.ChargerSourcePriority)
}

func TestParseRatedInfoShortPayload(t *testing.T) {
	_, err := ParseRatedInfo("230.0 21.7 230.0")
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestParseDeviceMode(t *testing.T) {
	mode, err := ParseDeviceMode("B")
	assert.NoError(t, err)
	assert.Equal(t, ModeBattery, mode)
	assert.Equal(t, "battery", mode.String())

	_, err = ParseDeviceMode("X")
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestParseWarnings(t *testing.T) {
	w, err := ParseWarnings("00000100000000000000000000000000")
	assert.NoError(t, err)
	assert.True(t, w.IsSet(5))
	assert.False(t, w.IsSet(1))
	assert.False(t, w.IsSet(99))

	_, err = ParseWarnings("0000x100")
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = ParseWarnings("")
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestParseFirmwareVersion(t *testing.T) {
	assert.Equal(t, "00052.30", ParseFirmwareVersion("VERFW:00052.30"))
	assert.Equal(t, "00052.30", ParseFirmwareVersion("00052.30"))
}

func TestModelName(t *testing.T) {
	assert.Equal(t, "AXPERT VMIII", ModelName("027"))
	assert.Equal(t, "099", ModelName("099"))
}
