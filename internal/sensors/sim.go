package sensors

import (
	"math/rand"
	"time"
)

// Simulated implements every capability with a bounded random walk.
// Used on hardware without the Enviro+ HAT and in bench testing; the
// values drift slowly enough to exercise compensation and batching
// without looking like noise.
type Simulated struct {
	rng *rand.Rand

	temperature float64
	pressure    float64
	humidity    float64
	lux         float64
	pm          float64
}

func NewSimulated(seed *int64) *Simulated {
	var src rand.Source
	if seed != nil {
		src = rand.NewSource(*seed)
	} else {
		src = rand.NewSource(time.Now().UnixNano())
	}

	return &Simulated{
		rng:         rand.New(src),
		temperature: 21.0,
		pressure:    1013.0,
		humidity:    45.0,
		lux:         120.0,
		pm:          8.0,
	}
}

// Caps returns a capability set backed entirely by the simulation.
func (s *Simulated) Caps() Capabilities {
	return Capabilities{
		Thermal:     (*simThermal)(s),
		Gas:         (*simGas)(s),
		Light:       (*simLight)(s),
		Particulate: (*simParticulate)(s),
	}
}

func (s *Simulated) walk(value *float64, step, lo, hi float64) float64 {
	*value += (s.rng.Float64() - 0.5) * step
	if *value < lo {
		*value = lo
	}
	if *value > hi {
		*value = hi
	}

	return *value
}

type simThermal Simulated

func (s *simThermal) Read() (ThermalReading, error) {
	sim := (*Simulated)(s)

	return ThermalReading{
		Temperature: sim.walk(&sim.temperature, 0.2, -10, 45),
		Pressure:    sim.walk(&sim.pressure, 0.5, 950, 1060),
		Humidity:    sim.walk(&sim.humidity, 0.8, 5, 95),
	}, nil
}

type simGas Simulated

func (s *simGas) Read() (GasReading, error) {
	sim := (*Simulated)(s)

	// Resistances in ohms; the provider converts to kΩ
	return GasReading{
		Oxidising: 20000 + sim.rng.Float64()*5000,
		Reducing:  450000 + sim.rng.Float64()*50000,
		NH3:       180000 + sim.rng.Float64()*20000,
	}, nil
}

type simLight Simulated

func (s *simLight) Read() (LightReading, error) {
	sim := (*Simulated)(s)

	return LightReading{
		Lux:       sim.walk(&sim.lux, 10, 0, 20000),
		Proximity: 0,
	}, nil
}

type simParticulate Simulated

func (s *simParticulate) Read() (ParticulateReading, error) {
	sim := (*Simulated)(s)
	base := sim.walk(&sim.pm, 0.5, 0.5, 60)

	return ParticulateReading{
		PM1:            base * 0.6,
		PM25:           base,
		PM10:           base * 1.4,
		Particles03um:  base * 180,
		Particles05um:  base * 55,
		Particles10um:  base * 12,
		Particles25um:  base * 1.5,
		Particles50um:  base * 0.4,
		Particles100um: base * 0.15,
	}, nil
}
