package aqi

// Pollutant identifies one of the measured pollutants.
type Pollutant string

const (
	PM25 Pollutant = "pm25" // fine particulate matter, ug/m3
	PM10 Pollutant = "pm10" // coarse particulate matter, ug/m3
	O3   Pollutant = "o3"   // ozone, ppb
	CO   Pollutant = "co"   // carbon monoxide, ppm
	SO2  Pollutant = "so2"  // sulfur dioxide, ppb
	NO2  Pollutant = "no2"  // nitrogen dioxide, ppb
)

// Pollutants is the canonical ordering used everywhere a reading is laid
// out as a feature vector (storage columns, forecast inputs and outputs).
var Pollutants = []Pollutant{PM25, PM10, O3, CO, SO2, NO2}

// Segment is one piece of a pollutant's piecewise-linear concentration to
// index mapping.
type Segment struct {
	ConcLow  float64
	ConcHigh float64
	AQILow   int
	AQIHigh  int
}

// breakpoints holds the EPA breakpoint table for every pollutant. This is
// the single definition: both the live reading path and the forecast path
// resolve sub-indices through it.
var breakpoints = map[Pollutant][]Segment{
	PM25: {
		{0.0, 12.0, 0, 50},
		{12.1, 35.4, 51, 100},
		{35.5, 55.4, 101, 150},
		{55.5, 150.4, 151, 200},
		{150.5, 250.4, 201, 300},
		{250.5, 350.4, 301, 400},
		{350.5, 500.4, 401, 500},
	},
	PM10: {
		{0, 54, 0, 50},
		{55, 154, 51, 100},
		{155, 254, 101, 150},
		{255, 354, 151, 200},
		{355, 424, 201, 300},
		{425, 504, 301, 400},
		{505, 604, 401, 500},
	},
	O3: {
		{0, 54, 0, 50},
		{55, 70, 51, 100},
		{71, 85, 101, 150},
		{86, 105, 151, 200},
		{106, 200, 201, 300},
	},
	CO: {
		{0.0, 4.4, 0, 50},
		{4.5, 9.4, 51, 100},
		{9.5, 12.4, 101, 150},
		{12.5, 15.4, 151, 200},
		{15.5, 30.4, 201, 300},
		{30.5, 40.4, 301, 400},
		{40.5, 50.4, 401, 500},
	},
	SO2: {
		{0, 35, 0, 50},
		{36, 75, 51, 100},
		{76, 185, 101, 150},
		{186, 304, 151, 200},
		{305, 604, 201, 300},
		{605, 804, 301, 400},
		{805, 1004, 401, 500},
	},
	NO2: {
		{0, 53, 0, 50},
		{54, 100, 51, 100},
		{101, 360, 101, 150},
		{361, 649, 151, 200},
		{650, 1249, 201, 300},
		{1250, 1649, 301, 400},
		{1650, 2049, 401, 500},
	},
}

// Breakpoints returns the segment table for a pollutant. The second return
// is false for an unknown pollutant key.
func Breakpoints(p Pollutant) ([]Segment, bool) {
	segs, ok := breakpoints[p]
	return segs, ok
}
