package writer

import (
	"time"

	"github.com/opensensor/stationd/internal/health"
	"github.com/opensensor/stationd/internal/sensors"
)

// readingRow is the on-disk schema for sensor data. The station
// identifier is intentionally absent: it is encoded in the partition
// path and would be redundant in every row.
type readingRow struct {
	Timestamp time.Time `parquet:"timestamp,timestamp(millisecond)"`

	Temperature    *float32 `parquet:"temperature,optional"`
	RawTemperature *float32 `parquet:"raw_temperature,optional"`
	Pressure       *float32 `parquet:"pressure,optional"`
	Humidity       *float32 `parquet:"humidity,optional"`

	Oxidised *float32 `parquet:"oxidised,optional"`
	Reducing *float32 `parquet:"reducing,optional"`
	NH3      *float32 `parquet:"nh3,optional"`

	Lux       *float32 `parquet:"lux,optional"`
	Proximity *float32 `parquet:"proximity,optional"`

	PM1  *float32 `parquet:"pm1,optional"`
	PM25 *float32 `parquet:"pm25,optional"`
	PM10 *float32 `parquet:"pm10,optional"`

	Particles03um  *float32 `parquet:"particles_03um,optional"`
	Particles05um  *float32 `parquet:"particles_05um,optional"`
	Particles10um  *float32 `parquet:"particles_10um,optional"`
	Particles25um  *float32 `parquet:"particles_25um,optional"`
	Particles50um  *float32 `parquet:"particles_50um,optional"`
	Particles100um *float32 `parquet:"particles_100um,optional"`
}

func newReadingRow(r *sensors.Reading) readingRow {
	return readingRow{
		Timestamp:      r.Timestamp,
		Temperature:    r.Temperature,
		RawTemperature: r.RawTemperature,
		Pressure:       r.Pressure,
		Humidity:       r.Humidity,
		Oxidised:       r.Oxidised,
		Reducing:       r.Reducing,
		NH3:            r.NH3,
		Lux:            r.Lux,
		Proximity:      r.Proximity,
		PM1:            r.PM1,
		PM25:           r.PM25,
		PM10:           r.PM10,
		Particles03um:  r.Particles03um,
		Particles05um:  r.Particles05um,
		Particles10um:  r.Particles10um,
		Particles25um:  r.Particles25um,
		Particles50um:  r.Particles50um,
		Particles100um: r.Particles100um,
	}
}

// healthRow is the on-disk schema for device diagnostics.
type healthRow struct {
	Timestamp time.Time `parquet:"timestamp,timestamp(millisecond)"`

	CPUTempC  *float32 `parquet:"cpu_temp_c,optional"`
	CPULoad1  *float32 `parquet:"cpu_load_1min,optional"`
	CPULoad5  *float32 `parquet:"cpu_load_5min,optional"`
	CPULoad15 *float32 `parquet:"cpu_load_15min,optional"`

	MemoryTotalMB     *float32 `parquet:"memory_total_mb,optional"`
	MemoryAvailableMB *float32 `parquet:"memory_available_mb,optional"`
	MemoryPercentUsed *float32 `parquet:"memory_percent_used,optional"`

	DiskTotalGB     *float32 `parquet:"disk_total_gb,optional"`
	DiskFreeGB      *float32 `parquet:"disk_free_gb,optional"`
	DiskPercentUsed *float32 `parquet:"disk_percent_used,optional"`

	WifiSSID           *string  `parquet:"wifi_ssid,optional"`
	WifiSignalDBm      *int32   `parquet:"wifi_signal_dbm,optional"`
	WifiQualityPercent *float32 `parquet:"wifi_quality_percent,optional"`
	IPAddress          *string  `parquet:"ip_address,optional"`

	ClockSynced   *bool    `parquet:"clock_synced,optional"`
	NTPOffsetMs   *float32 `parquet:"ntp_offset_ms,optional"`
	UptimeSeconds *float32 `parquet:"uptime_seconds,optional"`

	PowerSource    *string  `parquet:"power_source,optional"`
	BatteryPercent *float32 `parquet:"battery_percent,optional"`

	CPUVoltageV  *float32 `parquet:"cpu_voltage_v,optional"`
	ThrottledHex *string  `parquet:"throttled_hex,optional"`
}

func newHealthRow(r *health.Record) healthRow {
	return healthRow{
		Timestamp:          r.Timestamp,
		CPUTempC:           r.CPUTempC,
		CPULoad1:           r.CPULoad1,
		CPULoad5:           r.CPULoad5,
		CPULoad15:          r.CPULoad15,
		MemoryTotalMB:      r.MemoryTotalMB,
		MemoryAvailableMB:  r.MemoryAvailableMB,
		MemoryPercentUsed:  r.MemoryPercentUsed,
		DiskTotalGB:        r.DiskTotalGB,
		DiskFreeGB:         r.DiskFreeGB,
		DiskPercentUsed:    r.DiskPercentUsed,
		WifiSSID:           r.WifiSSID,
		WifiSignalDBm:      r.WifiSignalDBm,
		WifiQualityPercent: r.WifiQualityPercent,
		IPAddress:          r.IPAddress,
		ClockSynced:        r.ClockSynced,
		NTPOffsetMs:        r.NTPOffsetMs,
		UptimeSeconds:      r.UptimeSeconds,
		PowerSource:        r.PowerSource,
		BatteryPercent:     r.BatteryPercent,
		CPUVoltageV:        r.CPUVoltageV,
		ThrottledHex:       r.ThrottledHex,
	}
}
