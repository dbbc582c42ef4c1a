package axpert

import "fmt"

// CreateTestInverterReader returns a canned in-memory reader for tests.
func CreateTestInverterReader() (InverterReader, error) {
	return NewTestInverterReader(), nil
}

// TestInverterReader serves canned payload data and applies setters to its
// own settings block, so read-back verification behaves like a real device.
type TestInverterReader struct {
	Rated  RatedInfo
	Status GeneralStatus

	// StatusErr makes every status query fail with the given error.
	StatusErr error
	// IgnoreSetters leaves the settings block untouched on ACK, emulating
	// firmwares whose read-back never reflects the change.
	IgnoreSetters bool

	StatusCalls int
}

func NewTestInverterReader() *TestInverterReader {
	return &TestInverterReader{
		Rated: RatedInfo{
			GridRatingVoltage:        230.0,
			GridRatingCurrent:        21.7,
			ACOutputRatingVoltage:    230.0,
			ACOutputRatingFrequency:  50.0,
			ACOutputRatingCurrent:    21.7,
			ACOutputRatingApparentVA: 5000,
			ACOutputRatingActiveWatt: 4000,
			BatteryRatingVoltage:     48.0,
			BatteryRechargeVoltage:   46.0,
			BatteryUnderVoltage:      42.0,
			BatteryBulkVoltage:       56.4,
			BatteryFloatVoltage:      54.0,
			BatteryType:              0,
			MaxACChargingCurrent:     30,
			MaxChargingCurrent:       60,
			InputVoltageRange:        InputRangeAppliance,
			OutputSourcePriority:     OutputSourceSBU,
			ChargerSourcePriority:    ChargerSourceSolarFirst,
		},
		Status: GeneralStatus{
			GridVoltage:             230.1,
			GridFrequency:           50.0,
			ACOutputVoltage:         230.0,
			ACOutputFrequency:       49.9,
			ACOutputApparentPower:   460,
			ACOutputActivePower:     435,
			OutputLoadPercent:       9,
			BusVoltage:              371,
			BatteryVoltage:          53.2,
			BatteryChargingCurrent:  12,
			BatteryCapacity:         80,
			HeatSinkTemperature:     31,
			PVInputCurrent:          14.2,
			PVInputVoltage:          89.9,
			SCCVoltage:              53.13,
			BatteryDischargeCurrent: 0,
			DeviceStatus:            "00010110",
		},
	}
}

func (r *TestInverterReader) Open() error  { return nil }
func (r *TestInverterReader) Close() error { return nil }

func (r *TestInverterReader) GetDeviceInfo() (*DeviceInfo, error) {
	return &DeviceInfo{
		Serial:          "92631807100001",
		FirmwareVersion: "00052.30",
		ModelID:         "027",
		ModelName:       ModelName("027"),
	}, nil
}

func (r *TestInverterReader) GetGeneralStatus() (*GeneralStatus, error) {
	r.StatusCalls++
	if r.StatusErr != nil {
		return nil, r.StatusErr
	}
	st := r.Status
	return &st, nil
}

func (r *TestInverterReader) GetRatedInfo() (*RatedInfo, error) {
	ri := r.Rated
	return &ri, nil
}

func (r *TestInverterReader) GetMode() (DeviceMode, error) {
	return ModeBattery, nil
}

func (r *TestInverterReader) GetWarnings() (WarningFlags, error) {
	return "00000100000000000000000000000000", nil
}

func (r *TestInverterReader) SetInputRange(v InputRange) error {
	if !r.IgnoreSetters {
		r.Rated.InputVoltageRange = v
	}
	return r.verify(r.Rated.InputVoltageRange == v, v.String())
}

func (r *TestInverterReader) SetOutputSourcePriority(v OutputSourcePriority) error {
	if !r.IgnoreSetters {
		r.Rated.OutputSourcePriority = v
	}
	return r.verify(r.Rated.OutputSourcePriority == v, v.String())
}

func (r *TestInverterReader) SetChargerSourcePriority(v ChargerSourcePriority) error {
	if !r.IgnoreSetters {
		r.Rated.ChargerSourcePriority = v
	}
	return r.verify(r.Rated.ChargerSourcePriority == v, v.String())
}

func (r *TestInverterReader) verify(match bool, requested string) error {
	if match {
		return nil
	}
	return fmt.Errorf("%w: requested %s", ErrCommandUnverified, requested)
}

// ensure interface compliance
var _ InverterReader = (*TestInverterReader)(nil)
