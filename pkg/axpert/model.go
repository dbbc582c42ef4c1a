package axpert

import "fmt"

// InputRange is the AC input voltage range setting.
// Appliance accepts the wide 90-280V window, UPS the narrow 170-280V one.
type InputRange uint8

const (
	InputRangeAppliance InputRange = 0
	InputRangeUPS       InputRange = 1
)

func (r InputRange) String() string {
	switch r {
	case InputRangeAppliance:
		return "appliance"
	case InputRangeUPS:
		return "ups"
	}
	return fmt.Sprintf("unknown(%d)", uint8(r))
}

// Command returns the vendor setter command for this range.
func (r InputRange) Command() string {
	if r == InputRangeUPS {
		return "PGR01"
	}
	return "PGR00"
}

func ParseInputRange(s string) (InputRange, error) {
	switch s {
	case "appliance":
		return InputRangeAppliance, nil
	case "ups":
		return InputRangeUPS, nil
	}
	return 0, fmt.Errorf("invalid input range %q", s)
}

// OutputSourcePriority selects which source feeds the AC output.
type OutputSourcePriority uint8

const (
	OutputSourceUtilityFirst OutputSourcePriority = 0
	OutputSourceSolarFirst   OutputSourcePriority = 1
	OutputSourceSBU          OutputSourcePriority = 2
)

func (p OutputSourcePriority) String() string {
	switch p {
	case OutputSourceUtilityFirst:
		return "utility_first"
	case OutputSourceSolarFirst:
		return "solar_first"
	case OutputSourceSBU:
		return "sbu_priority"
	}
	return fmt.Sprintf("unknown(%d)", uint8(p))
}

func (p OutputSourcePriority) Command() string {
	return fmt.Sprintf("POP%02d", uint8(p))
}

func ParseOutputSourcePriority(s string) (OutputSourcePriority, error) {
	switch s {
	case "utility_first":
		return OutputSourceUtilityFirst, nil
	case "solar_first":
		return OutputSourceSolarFirst, nil
	case "sbu_priority":
		return OutputSourceSBU, nil
	}
	return 0, fmt.Errorf("invalid output source priority %q", s)
}

// ChargerSourcePriority selects which source charges the battery.
type ChargerSourcePriority uint8

const (
	ChargerSourceUtilityFirst    ChargerSourcePriority = 0
	ChargerSourceSolarFirst      ChargerSourcePriority = 1
	ChargerSourceSolarAndUtility ChargerSourcePriority = 2
	ChargerSourceSolarOnly       ChargerSourcePriority = 3
)

func (p ChargerSourcePriority) String() string {
	switch p {
	case ChargerSourceUtilityFirst:
		return "utility_first"
	case ChargerSourceSolarFirst:
		return "solar_first"
	case ChargerSourceSolarAndUtility:
		return "solar_and_utility"
	case ChargerSourceSolarOnly:
		return "solar_only"
	}
	return fmt.Sprintf("unknown(%d)", uint8(p))
}

func (p ChargerSourcePriority) Command() string {
	return fmt.Sprintf("PCP%02d", uint8(p))
}

func ParseChargerSourcePriority(s string) (ChargerSourcePriority, error) {
	switch s {
	case "utility_first":
		return ChargerSourceUtilityFirst, nil
	case "solar_first":
		return ChargerSourceSolarFirst, nil
	case "solar_and_utility":
		return ChargerSourceSolarAndUtility, nil
	case "solar_only":
		return ChargerSourceSolarOnly, nil
	}
	return 0, fmt.Errorf("invalid charger source priority %q", s)
}

// DeviceStatus is the raw QPIGS status bit string (b7..b0).
type DeviceStatus string

func (s DeviceStatus) bit(i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	return s[i] == '1'
}

// Bit positions per the vendor command reference, left to right b7..b0.
func (s DeviceStatus) LoadOn() bool          { return s.bit(3) }
func (s DeviceStatus) Charging() bool        { return s.bit(5) }
func (s DeviceStatus) SCCCharging() bool     { return s.bit(6) }
func (s DeviceStatus) ACCharging() bool      { return s.bit(7) }
func (s DeviceStatus) ConfigChanged() bool   { return s.bit(1) }
func (s DeviceStatus) AddSBUPriority() bool  { return s.bit(0) }
func (s DeviceStatus) SCCFirmwareNew() bool  { return s.bit(2) }

// GeneralStatus is one parsed QPIGS payload.
type GeneralStatus struct {
	GridVoltage             float64 // V
	GridFrequency           float64 // Hz
	ACOutputVoltage         float64 // V
	ACOutputFrequency       float64 // Hz
	ACOutputApparentPower   int     // VA
	ACOutputActivePower     int     // W
	OutputLoadPercent       int     // %
	BusVoltage              int     // V
	BatteryVoltage          float64 // V
	BatteryChargingCurrent  int     // A
	BatteryCapacity         int     // %
	HeatSinkTemperature     int     // degC
	PVInputCurrent          float64 // A
	PVInputVoltage          float64 // V
	SCCVoltage              float64 // V
	BatteryDischargeCurrent int     // A
	DeviceStatus            DeviceStatus

	// PVChargingPower is only reported by extended-QPIGS firmwares.
	PVChargingPower *int // W
}

// PVPower returns the PV input power in watts: the device-reported charging
// power when present, PV voltage times current otherwise.
func (s *GeneralStatus) PVPower() float64 {
	if s.PVChargingPower != nil {
		return float64(*s.PVChargingPower)
	}
	return s.PVInputVoltage * s.PVInputCurrent
}

// OutputCurrent derives the AC output current from apparent power.
func (s *GeneralStatus) OutputCurrent() float64 {
	if s.ACOutputVoltage == 0 {
		return 0
	}
	return float64(s.ACOutputApparentPower) / s.ACOutputVoltage
}

// RatedInfo is a parsed QPIRI payload (rating and settings block).
type RatedInfo struct {
	GridRatingVoltage         float64
	GridRatingCurrent         float64
	ACOutputRatingVoltage     float64
	ACOutputRatingFrequency   float64
	ACOutputRatingCurrent     float64
	ACOutputRatingApparentVA  int
	ACOutputRatingActiveWatt  int
	BatteryRatingVoltage      float64
	BatteryRechargeVoltage    float64
	BatteryUnderVoltage       float64
	BatteryBulkVoltage        float64
	BatteryFloatVoltage       float64
	BatteryType               int
	MaxACChargingCurrent      int
	MaxChargingCurrent        int
	InputVoltageRange         InputRange
	OutputSourcePriority      OutputSourcePriority
	ChargerSourcePriority     ChargerSourcePriority
}

// DeviceInfo is the static identity block polled once at startup.
type DeviceInfo struct {
	Serial          string
	FirmwareVersion string
	ModelID         string
	ModelName       string
}

// DeviceMode is the QMOD single-letter operating mode.
type DeviceMode string

const (
	ModePowerOn     DeviceMode = "P"
	ModeStandby     DeviceMode = "S"
	ModeLine        DeviceMode = "L"
	ModeBattery     DeviceMode = "B"
	ModeFault       DeviceMode = "F"
	ModePowerSaving DeviceMode = "H"
	ModeShutdown    DeviceMode = "D"
)

func (m DeviceMode) String() string {
	switch m {
	case ModePowerOn:
		return "power_on"
	case ModeStandby:
		return "standby"
	case ModeLine:
		return "line"
	case ModeBattery:
		return "battery"
	case ModeFault:
		return "fault"
	case ModePowerSaving:
		return "power_saving"
	case ModeShutdown:
		return "shutdown"
	}
	return "unknown"
}

// WarningFlags is the raw QPIWS bit string.
type WarningFlags string

func (w WarningFlags) IsSet(index int) bool {
	if index < 0 || index >= len(w) {
		return false
	}
	return w[index] == '1'
}

// WarningNames maps QPIWS bit indexes to stable identifiers. Reserved bits
// are omitted.
var WarningNames = map[int]string{
	1:  "inverter_fault",
	2:  "bus_over",
	3:  "bus_under",
	4:  "bus_soft_fail",
	5:  "line_fail",
	6:  "opv_short",
	7:  "inverter_voltage_too_low",
	8:  "inverter_voltage_too_high",
	9:  "over_temperature",
	10: "fan_locked",
	11: "battery_voltage_high",
	12: "battery_low_alarm",
	14: "battery_under_shutdown",
	16: "over_load",
	17: "eeprom_fault",
	18: "inverter_over_current",
	19: "inverter_soft_fail",
	20: "self_test_fail",
	21: "op_dc_voltage_over",
	22: "battery_open",
	23: "current_sensor_fail",
	24: "battery_short",
	25: "power_limit",
	26: "pv_voltage_high",
	27: "mppt_overload",
	28: "mppt_over_temperature",
	29: "battery_too_low_to_charge",
}
