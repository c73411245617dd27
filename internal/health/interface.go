package health

import "time"

// Record is one snapshot of device-level diagnostics. Every metric is
// independently best-effort; nil means the probe failed or the metric
// does not apply to this device.
type Record struct {
	Timestamp time.Time

	CPUTempC  *float32
	CPULoad1  *float32
	CPULoad5  *float32
	CPULoad15 *float32

	MemoryTotalMB     *float32
	MemoryAvailableMB *float32
	MemoryPercentUsed *float32

	DiskTotalGB     *float32
	DiskFreeGB      *float32
	DiskPercentUsed *float32

	WifiSSID           *string
	WifiSignalDBm      *int32
	WifiQualityPercent *float32
	IPAddress          *string

	ClockSynced   *bool
	NTPOffsetMs   *float32
	UptimeSeconds *float32

	PowerSource    *string // "mains", "battery", "under-voltage"
	BatteryPercent *float32

	CPUVoltageV  *float32
	ThrottledHex *string
}
