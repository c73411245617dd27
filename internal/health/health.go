// Package health captures device diagnostics as virtual sensor
// channels: CPU, memory, disk, WiFi, clock sync and power state. These
// ride alongside the environmental data so field deployments can be
// debugged without shell access.
package health

import (
	"time"

	"github.com/opensensor/stationd/internal/compensate"
	"github.com/opensensor/stationd/internal/logger"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

const (
	bytesPerMB = 1024 * 1024
	bytesPerGB = 1024 * 1024 * 1024
)

// Monitor collects health snapshots. Each probe is bounded by its own
// timeout so a hung OS tool cannot stall the collection loop.
type Monitor struct {
	diskPath string
	now      func() time.Time
}

func NewMonitor() *Monitor {
	return &Monitor{
		diskPath: "/",
		now:      time.Now,
	}
}

// Collect gathers all health metrics. It never fails; individual probe
// errors leave the corresponding fields nil.
func (m *Monitor) Collect() Record {
	record := Record{Timestamp: m.now().UTC()}

	if temp := compensate.CPUTemperature(); temp > 0 {
		record.CPUTempC = f32(temp)
	}

	if avg, err := load.Avg(); err == nil {
		record.CPULoad1 = f32(avg.Load1)
		record.CPULoad5 = f32(avg.Load5)
		record.CPULoad15 = f32(avg.Load15)
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		record.MemoryTotalMB = f32(float64(vm.Total) / bytesPerMB)
		record.MemoryAvailableMB = f32(float64(vm.Available) / bytesPerMB)
		record.MemoryPercentUsed = f32(vm.UsedPercent)
	}

	if usage, err := disk.Usage(m.diskPath); err == nil {
		record.DiskTotalGB = f32(float64(usage.Total) / bytesPerGB)
		record.DiskFreeGB = f32(float64(usage.Free) / bytesPerGB)
		record.DiskPercentUsed = f32(usage.UsedPercent)
	}

	if uptime, err := host.Uptime(); err == nil {
		record.UptimeSeconds = f32(float64(uptime))
	}

	ssid, signal, quality := wifiStatus()
	record.WifiSSID = ssid
	record.WifiSignalDBm = signal
	record.WifiQualityPercent = quality
	record.IPAddress = ipAddress()

	synced, offset := clockSyncStatus()
	record.ClockSynced = synced
	if offset != nil {
		record.NTPOffsetMs = f32(*offset)
	}

	source, battery := powerStatus()
	voltage, throttled := vcgencmdStatus()
	record.CPUVoltageV = voltage
	record.ThrottledHex = throttled
	record.BatteryPercent = battery

	// Under-voltage reported by the firmware overrides the power
	// supply classification; it is the most actionable signal.
	if throttled != nil && underVoltage(*throttled) {
		uv := "under-voltage"
		source = &uv
	}
	record.PowerSource = source

	logger.Debug().
		Time("timestamp", record.Timestamp).
		Msg("Health snapshot collected")

	return record
}

func f32(v float64) *float32 {
	f := float32(v)
	return &f
}
