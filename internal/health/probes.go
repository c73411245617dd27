package health

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	probeTimeout = 5 * time.Second
	shortTimeout = 2 * time.Second

	wirelessProcPath = "/proc/net/wireless"
	powerSupplyPath  = "/sys/class/power_supply"
)

// runCommand executes an external tool with a hard timeout and returns
// its stdout. There is no supervisor thread in this design, so every
// subprocess must be individually bounded.
func runCommand(timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", err
	}

	return string(out), nil
}

func wifiStatus() (ssid *string, signalDBm *int32, qualityPercent *float32) {
	if out, err := runCommand(probeTimeout, "iwgetid", "-r"); err == nil {
		if name := strings.TrimSpace(out); name != "" {
			ssid = &name
		}
	}

	if raw, err := os.ReadFile(wirelessProcPath); err == nil {
		signalDBm, qualityPercent = parseWireless(string(raw))
	}

	return ssid, signalDBm, qualityPercent
}

// parseWireless extracts signal level and link quality from
// /proc/net/wireless. Older kernels report signal on a 0-100 or 0-255
// scale instead of dBm.
func parseWireless(content string) (*int32, *float32) {
	lines := strings.Split(content, "\n")
	if len(lines) <= 2 {
		return nil, nil
	}

	for _, line := range lines[2:] {
		parts := strings.Fields(line)
		if len(parts) < 4 {
			continue
		}

		quality, err := strconv.ParseFloat(strings.TrimSuffix(parts[2], "."), 64)
		if err != nil {
			continue
		}
		signal, err := strconv.ParseFloat(strings.TrimSuffix(parts[3], "."), 64)
		if err != nil {
			continue
		}

		var dbm int32
		switch {
		case signal <= 0:
			dbm = int32(signal)
		case signal > 100:
			dbm = int32(signal - 256)
		default:
			dbm = int32(signal - 100)
		}

		pct := float32(quality / 70 * 100)
		if pct > 100 {
			pct = 100
		}

		return &dbm, &pct
	}

	return nil, nil
}

func ipAddress() *string {
	out, err := runCommand(probeTimeout, "hostname", "-I")
	if err != nil {
		return nil
	}

	ips := strings.Fields(out)
	if len(ips) == 0 {
		return nil
	}

	return &ips[0]
}

// clockSyncStatus reports whether the system clock is NTP-synchronized
// and the current offset in milliseconds. Probe order: systemd
// timesyncd, systemd generic status, chrony, ntpd, then a direct NTP
// query as the last resort. First success wins per value.
func clockSyncStatus() (*bool, *float64) {
	var synced *bool
	var offsetMs *float64

	if out, err := runCommand(probeTimeout, "timedatectl", "timesync-status"); err == nil {
		yes := true
		synced = &yes
		offsetMs = parseTimesyncOffset(out)
	}

	if synced == nil {
		if out, err := runCommand(probeTimeout, "timedatectl", "show", "--property=NTPSynchronized", "--value"); err == nil {
			yes := strings.EqualFold(strings.TrimSpace(out), "yes")
			synced = &yes
		}
	}

	if offsetMs == nil {
		if out, err := runCommand(probeTimeout, "chronyc", "tracking"); err == nil {
			offsetMs = parseChronyOffset(out)
		}
	}

	if offsetMs == nil {
		if out, err := runCommand(probeTimeout, "ntpq", "-c", "rv"); err == nil {
			offsetMs = parseNtpqOffset(out)
		}
	}

	if offsetMs == nil {
		offsetMs = queryNTPOffset(defaultNTPServer)
	}

	return synced, offsetMs
}

// parseTimesyncOffset reads the "Offset:" line of
// `timedatectl timesync-status` output, e.g. "Offset: +1.234ms".
func parseTimesyncOffset(output string) *float64 {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "Offset:") {
			continue
		}

		fields := strings.Fields(strings.SplitN(line, ":", 2)[1])
		if len(fields) == 0 {
			return nil
		}

		val := fields[0]
		var scale float64
		switch {
		case strings.HasSuffix(val, "ms"):
			val, scale = strings.TrimSuffix(val, "ms"), 1
		case strings.HasSuffix(val, "us"):
			val, scale = strings.TrimSuffix(val, "us"), 1.0/1000
		case strings.HasSuffix(val, "s"):
			val, scale = strings.TrimSuffix(val, "s"), 1000
		default:
			return nil
		}

		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil
		}

		offset := parsed * scale
		return &offset
	}

	return nil
}

// parseChronyOffset reads the "System time" line of `chronyc tracking`,
// e.g. "System time : 0.000123456 seconds fast of NTP time".
func parseChronyOffset(output string) *float64 {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "System time") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 4 {
			return nil
		}

		seconds, err := strconv.ParseFloat(parts[3], 64)
		if err != nil {
			return nil
		}

		offset := seconds * 1000
		return &offset
	}

	return nil
}

// parseNtpqOffset reads the offset variable from `ntpq -c rv` output,
// which reports milliseconds in a comma-separated variable list.
func parseNtpqOffset(output string) *float64 {
	for _, part := range strings.Split(output, ",") {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(part, "offset=") {
			continue
		}

		parsed, err := strconv.ParseFloat(strings.TrimPrefix(part, "offset="), 64)
		if err != nil {
			return nil
		}

		return &parsed
	}

	return nil
}

// powerStatus classifies the power source and battery level from the
// kernel power-supply class. Covers the common UPS HATs.
func powerStatus() (*string, *float32) {
	var source *string
	var battery *float32

	entries, err := os.ReadDir(powerSupplyPath)
	if err != nil {
		return nil, nil
	}

	for _, entry := range entries {
		base := filepath.Join(powerSupplyPath, entry.Name())

		kind, err := readSysfs(filepath.Join(base, "type"))
		if err != nil {
			continue
		}

		switch strings.ToLower(kind) {
		case "battery":
			if capacity, err := readSysfs(filepath.Join(base, "capacity")); err == nil {
				if pct, err := strconv.ParseFloat(capacity, 64); err == nil {
					battery = f32(pct)
				}
			}
			if status, err := readSysfs(filepath.Join(base, "status")); err == nil {
				switch strings.ToLower(status) {
				case "discharging":
					s := "battery"
					source = &s
				case "charging", "full":
					s := "mains"
					source = &s
				}
			}
		case "mains":
			if online, err := readSysfs(filepath.Join(base, "online")); err == nil && online == "1" {
				s := "mains"
				source = &s
			}
		}
	}

	return source, battery
}

// vcgencmdStatus queries the Raspberry Pi firmware for core voltage
// ("volt=0.8312V") and throttling flags ("throttled=0x0").
func vcgencmdStatus() (*float32, *string) {
	var voltage *float32
	var throttled *string

	if out, err := runCommand(shortTimeout, "vcgencmd", "measure_volts", "core"); err == nil {
		if v := parseVolts(out); v != nil {
			voltage = f32(*v)
		}
	}

	if out, err := runCommand(shortTimeout, "vcgencmd", "get_throttled"); err == nil {
		if t := parseThrottled(out); t != nil {
			throttled = t
		}
	}

	return voltage, throttled
}

func parseVolts(output string) *float64 {
	out := strings.TrimSpace(output)
	if !strings.HasPrefix(out, "volt=") || !strings.HasSuffix(out, "V") {
		return nil
	}

	parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimPrefix(out, "volt="), "V"), 64)
	if err != nil {
		return nil
	}

	return &parsed
}

func parseThrottled(output string) *string {
	out := strings.TrimSpace(output)
	if !strings.HasPrefix(out, "throttled=") {
		return nil
	}

	value := strings.TrimPrefix(out, "throttled=")
	if value == "" {
		return nil
	}

	return &value
}

// underVoltage reports whether bit 0 of the throttled flags is set.
func underVoltage(throttledHex string) bool {
	value, err := strconv.ParseUint(strings.TrimPrefix(throttledHex, "0x"), 16, 64)
	if err != nil {
		return false
	}

	return value&0x1 != 0
}

func readSysfs(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(raw)), nil
}
