package sensors

import (
	"time"

	"github.com/google/uuid"
)

// Reading is one timestamped record of environmental measurements. The
// schema is fixed per deployment: every configured field is always
// present and nil marks a failed or absent measurement for that cycle.
type Reading struct {
	Timestamp time.Time
	StationID uuid.UUID

	Temperature    *float32
	RawTemperature *float32
	Pressure       *float32
	Humidity       *float32

	// Gas resistances in kΩ
	Oxidised *float32
	Reducing *float32
	NH3      *float32

	Lux       *float32
	Proximity *float32

	// Particulate concentrations in µg/m³
	PM1  *float32
	PM25 *float32
	PM10 *float32

	// Particle counts per 0.1 l of air
	Particles03um  *float32
	Particles05um  *float32
	Particles10um  *float32
	Particles25um  *float32
	Particles50um  *float32
	Particles100um *float32
}

// FieldCount returns the number of populated measurement fields.
func (r *Reading) FieldCount() int {
	count := 0
	for _, f := range []*float32{
		r.Temperature, r.RawTemperature, r.Pressure, r.Humidity,
		r.Oxidised, r.Reducing, r.NH3,
		r.Lux, r.Proximity,
		r.PM1, r.PM25, r.PM10,
		r.Particles03um, r.Particles05um, r.Particles10um,
		r.Particles25um, r.Particles50um, r.Particles100um,
	} {
		if f != nil {
			count++
		}
	}

	return count
}

// ThermalReading holds one BME280-class measurement set.
type ThermalReading struct {
	Temperature float64 // °C, uncompensated
	Pressure    float64 // hPa
	Humidity    float64 // %RH, uncompensated
}

// GasReading holds one MICS6814-class measurement set, in ohms.
type GasReading struct {
	Oxidising float64
	Reducing  float64
	NH3       float64
}

// LightReading holds one LTR559-class measurement set.
type LightReading struct {
	Lux       float64
	Proximity float64
}

// ParticulateReading holds one PMS5003-class measurement set.
type ParticulateReading struct {
	PM1  float64
	PM25 float64
	PM10 float64

	Particles03um  float64
	Particles05um  float64
	Particles10um  float64
	Particles25um  float64
	Particles50um  float64
	Particles100um float64
}

// Sensor capabilities. Each read is a single attempt with no retry;
// implementations bound their own bus or serial timeouts.
type (
	ThermalSensor interface {
		Read() (ThermalReading, error)
	}

	GasSensor interface {
		Read() (GasReading, error)
	}

	LightSensor interface {
		Read() (LightReading, error)
	}

	ParticulateSensor interface {
		Read() (ParticulateReading, error)
	}
)

// Capabilities is the set of installed sensors. A nil entry means the
// sensor is not installed; its fields stay nil in every Reading.
type Capabilities struct {
	Thermal     ThermalSensor
	Gas         GasSensor
	Light       LightSensor
	Particulate ParticulateSensor
}
