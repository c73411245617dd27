// Package compensate corrects BME280 readings for heat bleeding from
// the host CPU into the sensor enclosure. The correction reference is a
// trailing average of CPU temperature rather than the instantaneous
// value, since the CPU heats and cools much faster than the enclosure.
package compensate

import (
	"os"
	"strconv"
	"strings"
)

const (
	windowSize = 5

	thermalZonePath = "/sys/class/thermal/thermal_zone0/temp"

	// Used when the thermal zone cannot be read. A fixed plausible
	// value keeps the correction stable instead of collapsing to the
	// raw reading.
	fallbackCPUTemp = 40.0
)

// Temperature compensates a raw temperature reading against a reference
// CPU temperature: raw - ((ref - raw) / factor).
func Temperature(raw, ref, factor float64) float64 {
	return raw - ((ref - raw) / factor)
}

// Humidity derives a dewpoint from the uncompensated temperature and
// humidity pair, then recomputes relative humidity at the compensated
// temperature. The result is clamped to [0, 100].
func Humidity(rawHumidity, rawTemp, compensatedTemp float64) float64 {
	dewpoint := rawTemp - ((100 - rawHumidity) / 5)
	compensated := 100 - (5 * (compensatedTemp - dewpoint))

	if compensated < 0 {
		return 0
	}
	if compensated > 100 {
		return 100
	}

	return compensated
}

// CPUTempWindow is a trailing moving average of CPU temperature
// samples. The first sample seeds the whole window so early readings
// are not dragged toward zero.
type CPUTempWindow struct {
	samples []float64
}

// Update pushes a sample into the window and returns the new average.
func (w *CPUTempWindow) Update(sample float64) float64 {
	if len(w.samples) == 0 {
		w.samples = make([]float64, windowSize)
		for i := range w.samples {
			w.samples[i] = sample
		}
	} else {
		w.samples = append(w.samples[1:], sample)
	}

	var sum float64
	for _, s := range w.samples {
		sum += s
	}

	return sum / float64(len(w.samples))
}

// CPUTemperature reads the SoC temperature in Celsius from the kernel
// thermal zone, falling back to a fixed value when unavailable.
func CPUTemperature() float64 {
	raw, err := os.ReadFile(thermalZonePath)
	if err != nil {
		return fallbackCPUTemp
	}

	milli, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil {
		return fallbackCPUTemp
	}

	return milli / 1000.0
}
