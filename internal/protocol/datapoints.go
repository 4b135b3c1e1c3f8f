package protocol

import "fmt"

// DataPoint is a numerically addressed appliance parameter. The catalogue
// below was recovered from the vendor's app and is device-firmware
// dependent; not every variant implements every point.
type DataPoint uint16

// System information
const (
	DpDeviceSeries    DataPoint = 0
	DpDeviceVariant   DataPoint = 1
	DpDeviceNumber    DataPoint = 2
	DpPCBSerialNumber DataPoint = 5
	DpFwRsVersion     DataPoint = 8
	DpFwTsVersion     DataPoint = 9
	DpHwRsVersion     DataPoint = 10
	DpBluetoothID     DataPoint = 11
	DpRtcTime         DataPoint = 15
	DpName            DataPoint = 16
	DpSupplyVoltage   DataPoint = 19

	// Provisional id, observed via the status map rather than the
	// vendor catalogue.
	DpActiveUserProfile DataPoint = 82
)

// Flush operations
const (
	DpBlockFlush       DataPoint = 112
	DpBlockFlushStatus DataPoint = 113
	DpCleaningMode     DataPoint = 115
	DpPreFlush         DataPoint = 118
	DpPostFlush        DataPoint = 119
	DpManualFlush      DataPoint = 126
	DpAutomaticFlush   DataPoint = 127
	DpFlush            DataPoint = 141
	DpFlushStatus      DataPoint = 142
	DpFullFlushVolume  DataPoint = 291
	DpPartFlushVolume  DataPoint = 292
)

// Shower operations
const (
	DpStartStopAnalShower          DataPoint = 563
	DpAnalShowerStatus             DataPoint = 564
	DpAnalShowerProgress           DataPoint = 565
	DpSetAnalSprayIntensity        DataPoint = 570
	DpAnalSprayIntensityStatus     DataPoint = 571
	DpSetAnalSprayArmPosition      DataPoint = 572
	DpAnalSprayArmPositionStatus   DataPoint = 573
	DpSetShowerWaterTemperature    DataPoint = 574
	DpShowerWaterTemperatureStatus DataPoint = 575
	DpSetAnalSprayArmOscillation   DataPoint = 576
	DpAnalSprayArmOscillationState DataPoint = 577
	DpStoredAnalSprayIntensity     DataPoint = 580
	DpStoredAnalSprayArmPosition   DataPoint = 581
	DpStoredShowerWaterTemperature DataPoint = 582
	DpStoredAnalSprayOscillation   DataPoint = 583
	DpSetActiveAnalShowerTime      DataPoint = 849
	DpActiveAnalShowerTime         DataPoint = 850
	DpStoredAnalShowerTime         DataPoint = 851
	DpSetActiveLadyShowerTime      DataPoint = 855
	DpSetLadySprayIntensity        DataPoint = 858
	DpStartStopLadyShower          DataPoint = 868
	DpLadyShowerStatus             DataPoint = 872
	DpLadyShowerProgress           DataPoint = 873
)

// Dryer operations
const (
	DpStartStopDrying          DataPoint = 874
	DpDryingStatus             DataPoint = 875
	DpDryingProgress           DataPoint = 876
	DpDryerFanSetIntensity     DataPoint = 877
	DpDryerFanIntensity        DataPoint = 878
	DpDryerHeaterSetTemp       DataPoint = 883
	DpDryerHeaterTemperature   DataPoint = 884
	DpSetActiveDryerFan        DataPoint = 893
	DpActiveDryerFanStatus     DataPoint = 894
	DpStoredDryerFanIntensity  DataPoint = 895
)

// Lighting control
const (
	DpOrientationLightLed       DataPoint = 42
	DpOrientationLightSetLed    DataPoint = 43
	DpOrientationLightMode      DataPoint = 44
	DpOrientationLightIntensity DataPoint = 48
	DpLightingBrightnessAdjust  DataPoint = 322
	DpLightingSetBrightness     DataPoint = 340
	DpLightingBrightnessStatus  DataPoint = 341
	DpLedColor                  DataPoint = 382
)

// Odour extraction
const (
	DpOdourExtractionFan          DataPoint = 20
	DpOdourExtractionSetFan       DataPoint = 21
	DpOdourExtractionMode         DataPoint = 23
	DpOdourExtractionPower        DataPoint = 27
	DpOdourExtractionFollowUpTime DataPoint = 29
)

// Descaling operations
const (
	DpStartStopDescaling       DataPoint = 584
	DpDescalingStatus          DataPoint = 585
	DpDescalingProgress        DataPoint = 586
	DpWaterHardness            DataPoint = 587
	DpDaysUntilNextDescaling   DataPoint = 589
	DpTimestampOfLastDescaling DataPoint = 590
	DpDescalingResult          DataPoint = 798
)

// Maintenance
const (
	DpMaintenanceDone            DataPoint = 474
	DpMaintenanceStatus          DataPoint = 475
	DpMaintenanceCountdown       DataPoint = 515
	DpStartStopSprayArmCleaning  DataPoint = 566
	DpSprayArmCleaningStatus     DataPoint = 567
)

// Diagnostics and error status
const (
	DpStartSelfTest             DataPoint = 151
	DpSelfTestStatus            DataPoint = 152
	DpCheckActuator             DataPoint = 184
	DpLedTest                   DataPoint = 330
	DpDiagnoseDeviceState       DataPoint = 372
	DpCheckBuzzer               DataPoint = 453
	DpStartStopValveTest        DataPoint = 791
	DpOdourExtractionErrorState DataPoint = 88
	DpPowerSupplyErrorState     DataPoint = 93
	DpGlobalError               DataPoint = 359
	DpGlobalWarning             DataPoint = 360
	DpTempSensErrorState        DataPoint = 478
	DpSeatHeaterErrorState      DataPoint = 819
)

// AccessMode describes which operations a data point supports.
type AccessMode byte

const (
	AccessRead AccessMode = 1 << iota
	AccessWrite
	AccessReadWrite = AccessRead | AccessWrite
)

// Encoding describes how a data point's raw value bytes are interpreted.
type Encoding byte

const (
	EncodingBinary Encoding = iota // raw bytes, 1-4
	EncodingBoolean                // 0 = off, 1 = on
	EncodingEnumerated             // device-specific small enum
	EncodingPercent                // 0-100
	EncodingCounter                // unsigned 32-bit counter
	EncodingText                   // variable-length string
	EncodingTimestampUTC           // unix timestamp
	EncodingSigned                 // signed 32-bit integer
)

// DataPointInfo is one row of the catalogue table.
type DataPointInfo struct {
	Access   AccessMode
	Encoding Encoding
	Name     string
}

// dataPointTable is the single source of truth for per-point access and
// encoding rules. Points absent from the table are treated as read-write
// binary; firmware variants implement overlapping subsets anyway, so the
// table records intent rather than a guarantee.
var dataPointTable = map[DataPoint]DataPointInfo{
	DpDeviceSeries:    {AccessRead, EncodingCounter, "device_series"},
	DpDeviceVariant:   {AccessRead, EncodingCounter, "device_variant"},
	DpDeviceNumber:    {AccessRead, EncodingCounter, "device_number"},
	DpPCBSerialNumber: {AccessRead, EncodingText, "pcb_serial_number"},
	DpFwRsVersion:     {AccessRead, EncodingBinary, "fw_rs_version"},
	DpFwTsVersion:     {AccessRead, EncodingBinary, "fw_ts_version"},
	DpHwRsVersion:     {AccessRead, EncodingBinary, "hw_rs_version"},
	DpBluetoothID:     {AccessRead, EncodingText, "bluetooth_id"},
	DpRtcTime:         {AccessReadWrite, EncodingTimestampUTC, "rtc_time"},
	DpName:            {AccessReadWrite, EncodingText, "name"},
	DpSupplyVoltage:   {AccessRead, EncodingCounter, "supply_voltage"},

	DpActiveUserProfile: {AccessReadWrite, EncodingEnumerated, "active_user_profile"},

	DpManualFlush:    {AccessWrite, EncodingBoolean, "manual_flush"},
	DpAutomaticFlush: {AccessReadWrite, EncodingBoolean, "automatic_flush"},
	DpFlushStatus:    {AccessRead, EncodingEnumerated, "flush_status"},

	DpStartStopAnalShower:          {AccessWrite, EncodingBoolean, "start_stop_anal_shower"},
	DpAnalShowerStatus:             {AccessRead, EncodingEnumerated, "anal_shower_status"},
	DpAnalShowerProgress:           {AccessRead, EncodingPercent, "anal_shower_progress"},
	DpSetAnalSprayIntensity:        {AccessWrite, EncodingEnumerated, "set_anal_spray_intensity"},
	DpAnalSprayIntensityStatus:     {AccessRead, EncodingEnumerated, "anal_spray_intensity_status"},
	DpSetAnalSprayArmPosition:      {AccessWrite, EncodingEnumerated, "set_anal_spray_arm_position"},
	DpAnalSprayArmPositionStatus:   {AccessRead, EncodingEnumerated, "anal_spray_arm_position_status"},
	DpSetShowerWaterTemperature:    {AccessWrite, EncodingSigned, "set_shower_water_temperature"},
	DpShowerWaterTemperatureStatus: {AccessRead, EncodingSigned, "shower_water_temperature_status"},
	DpSetAnalSprayArmOscillation:   {AccessWrite, EncodingBoolean, "set_anal_spray_arm_oscillation"},
	DpAnalSprayArmOscillationState: {AccessRead, EncodingBoolean, "anal_spray_arm_oscillation_status"},
	DpStartStopLadyShower:          {AccessWrite, EncodingBoolean, "start_stop_lady_shower"},
	DpLadyShowerStatus:             {AccessRead, EncodingEnumerated, "lady_shower_status"},
	DpLadyShowerProgress:           {AccessRead, EncodingPercent, "lady_shower_progress"},

	DpStartStopDrying:        {AccessWrite, EncodingBoolean, "start_stop_drying"},
	DpDryingStatus:           {AccessRead, EncodingEnumerated, "drying_status"},
	DpDryingProgress:         {AccessRead, EncodingPercent, "drying_progress"},
	DpDryerFanSetIntensity:   {AccessWrite, EncodingEnumerated, "dryer_fan_set_intensity"},
	DpDryerFanIntensity:      {AccessRead, EncodingEnumerated, "dryer_fan_intensity"},
	DpDryerHeaterSetTemp:     {AccessWrite, EncodingSigned, "dryer_heater_set_temperature"},
	DpDryerHeaterTemperature: {AccessRead, EncodingSigned, "dryer_heater_temperature"},

	// Orientation-light points: mapping asserted from limited device
	// testing, provisional pending verification on real hardware.
	DpOrientationLightLed:       {AccessRead, EncodingEnumerated, "orientation_light_led"},
	DpOrientationLightSetLed:    {AccessWrite, EncodingEnumerated, "orientation_light_set_led"},
	DpOrientationLightMode:      {AccessReadWrite, EncodingEnumerated, "orientation_light_mode"},
	DpOrientationLightIntensity: {AccessReadWrite, EncodingPercent, "orientation_light_intensity"},
	DpLightingSetBrightness:     {AccessWrite, EncodingPercent, "lighting_set_brightness"},
	DpLightingBrightnessStatus:  {AccessRead, EncodingPercent, "lighting_brightness_status"},
	DpLedColor:                  {AccessReadWrite, EncodingBinary, "led_color"},

	DpOdourExtractionFan:          {AccessRead, EncodingEnumerated, "odour_extraction_fan"},
	DpOdourExtractionSetFan:       {AccessWrite, EncodingEnumerated, "odour_extraction_set_fan"},
	DpOdourExtractionMode:         {AccessReadWrite, EncodingEnumerated, "odour_extraction_mode"},
	DpOdourExtractionPower:        {AccessRead, EncodingPercent, "odour_extraction_power"},
	DpOdourExtractionFollowUpTime: {AccessReadWrite, EncodingCounter, "odour_extraction_follow_up_time"},

	DpStartStopDescaling:       {AccessWrite, EncodingBoolean, "start_stop_descaling"},
	DpDescalingStatus:          {AccessRead, EncodingEnumerated, "descaling_status"},
	DpDescalingProgress:        {AccessRead, EncodingPercent, "descaling_progress"},
	DpWaterHardness:            {AccessReadWrite, EncodingEnumerated, "water_hardness"},
	DpDaysUntilNextDescaling:   {AccessRead, EncodingCounter, "days_until_next_descaling"},
	DpTimestampOfLastDescaling: {AccessRead, EncodingTimestampUTC, "timestamp_of_last_descaling"},

	DpMaintenanceDone:      {AccessWrite, EncodingBoolean, "maintenance_done"},
	DpMaintenanceStatus:    {AccessRead, EncodingEnumerated, "maintenance_status"},
	DpMaintenanceCountdown: {AccessRead, EncodingCounter, "maintenance_countdown"},

	DpGlobalError:   {AccessRead, EncodingCounter, "global_error"},
	DpGlobalWarning: {AccessRead, EncodingCounter, "global_warning"},
}

// Lookup returns the catalogue row for a data point. The second return
// value reports whether the point is in the catalogue; unknown points get
// a read-write binary default.
func (dp DataPoint) Lookup() (DataPointInfo, bool) {
	info, ok := dataPointTable[dp]
	if !ok {
		return DataPointInfo{Access: AccessReadWrite, Encoding: EncodingBinary}, false
	}
	return info, true
}

// Readable reports whether the catalogue allows reading this point.
func (dp DataPoint) Readable() bool {
	info, _ := dp.Lookup()
	return info.Access&AccessRead != 0
}

// Writable reports whether the catalogue allows writing this point.
func (dp DataPoint) Writable() bool {
	info, _ := dp.Lookup()
	return info.Access&AccessWrite != 0
}

// DataPointByName resolves a catalogue name back to its id.
func DataPointByName(name string) (DataPoint, bool) {
	for dp, info := range dataPointTable {
		if info.Name == name {
			return dp, true
		}
	}
	return 0, false
}

// Command is a high-level fire-and-forget action id. Commands carry no
// value payload beyond their identifier.
type Command uint16

const (
	CmdToggleAnalShower          Command = 0
	CmdToggleLadyShower          Command = 1
	CmdToggleDryer               Command = 2
	CmdStartCleaningDevice       Command = 4
	CmdExecuteNextCleaningStep   Command = 5
	CmdPrepareDescaling          Command = 6
	CmdConfirmDescaling          Command = 7
	CmdCancelDescaling           Command = 8
	CmdPostponeDescaling         Command = 9
	CmdToggleLidPosition         Command = 10
	CmdToggleOrientationLight    Command = 20
	CmdStartLidCalibration       Command = 33
	CmdLidPositionOffsetSave     Command = 34
	CmdLidPositionOffsetIncr     Command = 35
	CmdLidPositionOffsetDecr     Command = 36
	CmdTriggerFlushManually      Command = 37
	CmdResetFilterCounter        Command = 47
)

// commandNames maps command ids to stable names used by the CLI.
var commandNames = map[Command]string{
	CmdToggleAnalShower:        "toggle-anal-shower",
	CmdToggleLadyShower:        "toggle-lady-shower",
	CmdToggleDryer:             "toggle-dryer",
	CmdStartCleaningDevice:     "start-cleaning-device",
	CmdExecuteNextCleaningStep: "execute-next-cleaning-step",
	CmdPrepareDescaling:        "prepare-descaling",
	CmdConfirmDescaling:        "confirm-descaling",
	CmdCancelDescaling:         "cancel-descaling",
	CmdPostponeDescaling:       "postpone-descaling",
	CmdToggleLidPosition:       "toggle-lid",
	CmdToggleOrientationLight:  "toggle-orientation-light",
	CmdStartLidCalibration:     "start-lid-calibration",
	CmdLidPositionOffsetSave:   "lid-offset-save",
	CmdLidPositionOffsetIncr:   "lid-offset-increment",
	CmdLidPositionOffsetDecr:   "lid-offset-decrement",
	CmdTriggerFlushManually:    "trigger-flush",
	CmdResetFilterCounter:      "reset-filter-counter",
}

// String returns the stable command name, or a numeric form for unknown ids.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command-%d", uint16(c))
}

// CommandByName resolves a stable command name back to its id.
func CommandByName(name string) (Command, bool) {
	for cmd, n := range commandNames {
		if n == name {
			return cmd, true
		}
	}
	return 0, false
}

// CommandNames lists the stable names of all catalogued commands.
func CommandNames() []string {
	names := make([]string, 0, len(commandNames))
	for _, n := range commandNames {
		names = append(names, n)
	}
	return names
}
