package axpert

import (
	"fmt"
	"strconv"
	"strings"
)

// Minimum field counts per the vendor command reference.
const (
	qpigsMinFields = 17
	qpiriMinFields = 18

	// Index of the extended PV charging power field on firmwares that
	// report it.
	qpigsPVChargingPowerField = 19
)

func floatField(fields []string, i int) (float64, error) {
	if i >= len(fields) {
		return 0, malformedField(i, "")
	}
	v, err := strconv.ParseFloat(fields[i], 64)
	if err != nil || v < 0 {
		return 0, malformedField(i, fields[i])
	}
	return v, nil
}

func intField(fields []string, i int) (int, error) {
	if i >= len(fields) {
		return 0, malformedField(i, "")
	}
	v, err := strconv.Atoi(fields[i])
	if err != nil || v < 0 {
		return 0, malformedField(i, fields[i])
	}
	return v, nil
}

// ParseGeneralStatus parses a validated QPIGS payload. The schema is fixed:
// a short field count or a non-numeric token fails the whole payload, a
// Reading is never partially populated.
func ParseGeneralStatus(payload string) (*GeneralStatus, error) {
	fields := strings.Fields(payload)
	if len(fields) < qpigsMinFields {
		return nil, fmt.Errorf("%w: QPIGS has %d fields, want >= %d", ErrMalformedPayload, len(fields), qpigsMinFields)
	}

	var st GeneralStatus
	var err error
	if st.GridVoltage, err = floatField(fields, 0); err != nil {
		return nil, err
	}
	if st.GridFrequency, err = floatField(fields, 1); err != nil {
		return nil, err
	}
	if st.ACOutputVoltage, err = floatField(fields, 2); err != nil {
		return nil, err
	}
	if st.ACOutputFrequency, err = floatField(fields, 3); err != nil {
		return nil, err
	}
	if st.ACOutputApparentPower, err = intField(fields, 4); err != nil {
		return nil, err
	}
	if st.ACOutputActivePower, err = intField(fields, 5); err != nil {
		return nil, err
	}
	if st.OutputLoadPercent, err = intField(fields, 6); err != nil {
		return nil, err
	}
	if st.BusVoltage, err = intField(fields, 7); err != nil {
		return nil, err
	}
	if st.BatteryVoltage, err = floatField(fields, 8); err != nil {
		return nil, err
	}
	if st.BatteryChargingCurrent, err = intField(fields, 9); err != nil {
		return nil, err
	}
	if st.BatteryCapacity, err = intField(fields, 10); err != nil {
		return nil, err
	}
	if st.BatteryCapacity > 100 {
		return nil, malformedField(10, fields[10])
	}
	if st.HeatSinkTemperature, err = intField(fields, 11); err != nil {
		return nil, err
	}
	if st.PVInputCurrent, err = floatField(fields, 12); err != nil {
		return nil, err
	}
	if st.PVInputVoltage, err = floatField(fields, 13); err != nil {
		return nil, err
	}
	if st.SCCVoltage, err = floatField(fields, 14); err != nil {
		return nil, err
	}
	if st.BatteryDischargeCurrent, err = intField(fields, 15); err != nil {
		return nil, err
	}
	st.DeviceStatus = DeviceStatus(fields[16])

	if len(fields) > qpigsPVChargingPowerField {
		pv, err := intField(fields, qpigsPVChargingPowerField)
		if err != nil {
			return nil, err
		}
		st.PVChargingPower = &pv
	}
	return &st, nil
}

// ParseRatedInfo parses a validated QPIRI payload. Trailing fields beyond
// the charger source priority vary by firmware and are ignored.
func ParseRatedInfo(payload string) (*RatedInfo, error) {
	fields := strings.Fields(payload)
	if len(fields) < qpiriMinFields {
		return nil, fmt.Errorf("%w: QPIRI has %d fields, want >= %d", ErrMalformedPayload, len(fields), qpiriMinFields)
	}

	var ri RatedInfo
	var err error
	if ri.GridRatingVoltage, err = floatField(fields, 0); err != nil {
		return nil, err
	}
	if ri.GridRatingCurrent, err = floatField(fields, 1); err != nil {
		return nil, err
	}
	if ri.ACOutputRatingVoltage, err = floatField(fields, 2); err != nil {
		return nil, err
	}
	if ri.ACOutputRatingFrequency, err = floatField(fields, 3); err != nil {
		return nil, err
	}
	if ri.ACOutputRatingCurrent, err = floatField(fields, 4); err != nil {
		return nil, err
	}
	if ri.ACOutputRatingApparentVA, err = intField(fields, 5); err != nil {
		return nil, err
	}
	if ri.ACOutputRatingActiveWatt, err = intField(fields, 6); err != nil {
		return nil, err
	}
	if ri.BatteryRatingVoltage, err = floatField(fields, 7); err != nil {
		return nil, err
	}
	if ri.BatteryRechargeVoltage, err = floatField(fields, 8); err != nil {
		return nil, err
	}
	if ri.BatteryUnderVoltage, err = floatField(fields, 9); err != nil {
		return nil, err
	}
	if ri.BatteryBulkVoltage, err = floatField(fields, 10); err != nil {
		return nil, err
	}
	if ri.BatteryFloatVoltage, err = floatField(fields, 11); err != nil {
		return nil, err
	}
	if ri.BatteryType, err = intField(fields, 12); err != nil {
		return nil, err
	}
	if ri.MaxACChargingCurrent, err = intField(fields, 13); err != nil {
		return nil, err
	}
	if ri.MaxChargingCurrent, err = intField(fields, 14); err != nil {
		return nil, err
	}

	ivr, err := intField(fields, 15)
	if err != nil || ivr > 1 {
		return nil, malformedField(15, fields[15])
	}
	ri.InputVoltageRange = InputRange(ivr)

	osp, err := intField(fields, 16)
	if err != nil || osp > 2 {
		return nil, malformedField(16, fields[16])
	}
	ri.OutputSourcePriority = OutputSourcePriority(osp)

	csp, err := intField(fields, 17)
	if err != nil || csp > 3 {
		return nil, malformedField(17, fields[17])
	}
	ri.ChargerSourcePriority = ChargerSourcePriority(csp)

	return &ri, nil
}

// ParseDeviceMode parses a QMOD payload.
func ParseDeviceMode(payload string) (DeviceMode, error) {
	switch m := DeviceMode(payload); m {
	case ModePowerOn, ModeStandby, ModeLine, ModeBattery, ModeFault, ModePowerSaving, ModeShutdown:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrMalformedPayload, payload)
}

// ParseWarnings parses a QPIWS payload. The bit string length varies by
// firmware, so only emptiness and charset are checked.
func ParseWarnings(payload string) (WarningFlags, error) {
	if payload == "" {
		return "", fmt.Errorf("%w: empty QPIWS payload", ErrMalformedPayload)
	}
	for i := 0; i < len(payload); i++ {
		if payload[i] != '0' && payload[i] != '1' {
			return "", malformedField(i, payload[i:i+1])
		}
	}
	return WarningFlags(payload), nil
}

// ParseFirmwareVersion parses a QVFW payload of the form "VERFW:00052.30".
func ParseFirmwareVersion(payload string) string {
	if v, ok := strings.CutPrefix(payload, "VERFW:"); ok {
		return v
	}
	return payload
}
