package sensors

import (
	"time"

	"github.com/google/uuid"
	"github.com/opensensor/stationd/internal/compensate"
	"github.com/opensensor/stationd/internal/logger"
)

const gasOhmsPerKiloohm = 1000.0

// Provider polls the installed sensor capabilities and assembles flat
// readings. A Read never fails: each capability is attempted exactly
// once and failures only null out that capability's fields.
type Provider struct {
	stationID uuid.UUID
	caps      Capabilities

	compensation bool
	factor       float64
	cpuWindow    compensate.CPUTempWindow

	// Injectable for tests
	now     func() time.Time
	cpuTemp func() float64
}

func NewProvider(stationID uuid.UUID, caps Capabilities, compensation bool, factor float64) *Provider {
	return &Provider{
		stationID:    stationID,
		caps:         caps,
		compensation: compensation,
		factor:       factor,
		now:          time.Now,
		cpuTemp:      compensate.CPUTemperature,
	}
}

// Read polls every installed capability once and returns the combined
// reading. Total sensor failure yields a reading holding only the
// timestamp and station identifier.
func (p *Provider) Read() Reading {
	reading := Reading{
		Timestamp: p.now().UTC(),
		StationID: p.stationID,
	}

	p.readThermal(&reading)
	p.readGas(&reading)
	p.readLight(&reading)
	p.readParticulates(&reading)

	logger.Debug().
		Int("fields", reading.FieldCount()).
		Time("timestamp", reading.Timestamp).
		Msg("Sensor reading collected")

	return reading
}

func (p *Provider) readThermal(reading *Reading) {
	if p.caps.Thermal == nil {
		return
	}

	thermal, err := p.caps.Thermal.Read()
	if err != nil {
		logger.Warn().Err(err).Msg("Thermal sensor read failed")
		return
	}

	rawTemp := thermal.Temperature
	temp := rawTemp
	humidity := thermal.Humidity

	if p.compensation {
		avgCPU := p.cpuWindow.Update(p.cpuTemp())
		temp = compensate.Temperature(rawTemp, avgCPU, p.factor)
		humidity = compensate.Humidity(thermal.Humidity, rawTemp, temp)
	}

	reading.Temperature = f32(temp)
	reading.RawTemperature = f32(rawTemp)
	reading.Pressure = f32(thermal.Pressure)
	reading.Humidity = f32(humidity)
}

func (p *Provider) readGas(reading *Reading) {
	if p.caps.Gas == nil {
		return
	}

	gas, err := p.caps.Gas.Read()
	if err != nil {
		logger.Warn().Err(err).Msg("Gas sensor read failed")
		return
	}

	reading.Oxidised = f32(gas.Oxidising / gasOhmsPerKiloohm)
	reading.Reducing = f32(gas.Reducing / gasOhmsPerKiloohm)
	reading.NH3 = f32(gas.NH3 / gasOhmsPerKiloohm)
}

func (p *Provider) readLight(reading *Reading) {
	if p.caps.Light == nil {
		return
	}

	light, err := p.caps.Light.Read()
	if err != nil {
		logger.Warn().Err(err).Msg("Light sensor read failed")
		return
	}

	reading.Lux = f32(light.Lux)
	reading.Proximity = f32(light.Proximity)
}

func (p *Provider) readParticulates(reading *Reading) {
	if p.caps.Particulate == nil {
		return
	}

	pm, err := p.caps.Particulate.Read()
	if err != nil {
		logger.Warn().Err(err).Msg("Particulate sensor read failed")
		return
	}

	reading.PM1 = f32(pm.PM1)
	reading.PM25 = f32(pm.PM25)
	reading.PM10 = f32(pm.PM10)
	reading.Particles03um = f32(pm.Particles03um)
	reading.Particles05um = f32(pm.Particles05um)
	reading.Particles10um = f32(pm.Particles10um)
	reading.Particles25um = f32(pm.Particles25um)
	reading.Particles50um = f32(pm.Particles50um)
	reading.Particles100um = f32(pm.Particles100um)
}

func f32(v float64) *float32 {
	f := float32(v)
	return &f
}
