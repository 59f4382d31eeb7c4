package domain

// GroupClass identifies one unit-consistent family of station measurements.
type GroupClass string

const (
	ClassWind     GroupClass = "wind"
	ClassTemp     GroupClass = "temp"
	ClassRain     GroupClass = "rain"
	ClassPressure GroupClass = "pressure"
	ClassGeneric  GroupClass = "generic"
)

// classOrder fixes the emission order of records assembled from one sample.
var classOrder = []GroupClass{ClassWind, ClassTemp, ClassRain, ClassPressure, ClassGeneric}

// measurementClasses routes each known station measurement to its group.
// Names absent from this table are skipped during parsing.
var measurementClasses = map[string]GroupClass{
	"mtWindSpeed":         ClassWind,
	"mtAdjWindDir":        ClassWind,
	"mt2MinWindGustSpeed": ClassWind,
	"mt2MinWindGustDir":   ClassWind,

	"mtTemp1":     ClassTemp,
	"mtWindChill": ClassTemp,
	"mtDewPoint":  ClassTemp,
	"mtHeatIndex": ClassTemp,
	"mtTemp_2":    ClassTemp,
	"mtTemp_3":    ClassTemp,
	"mtTemp_4":    ClassTemp,

	"mtRainThisMonth": ClassRain,
	"mtRainRate":      ClassRain,

	"mtAdjBaromPress": ClassPressure,

	"mtRelHumidity":   ClassGeneric,
	"mtSolarRadiaton": ClassGeneric, // device firmware misspells "Radiation"
	"mtSampTime":      ClassGeneric,
}

// unitDesignators names the one measurement per group whose unit attribute
// determines the group's base units.
var unitDesignators = map[string]bool{
	"mtWindSpeed":     true,
	"mtTemp1":         true,
	"mtRainRate":      true,
	"mtRelHumidity":   true,
	"mtAdjBaromPress": true,
}

// clockMeasurements carry station timestamps. Their values are kept as
// literal text instead of being coerced to numbers.
var clockMeasurements = map[string]bool{
	"mtSampTime": true,
}

// speedMeasurements are the wind sources that carry a speed, the only values
// rescaled when the station reports wind in knots.
var speedMeasurements = map[string]bool{
	"mtWindSpeed":         true,
	"mt2MinWindGustSpeed": true,
}

// rainTotalMeasurement is the cumulative counter that rain deltas derive from.
const rainTotalMeasurement = "mtRainThisMonth"

// DefaultSensorMap returns the standard record field naming for the builtin
// sensor complement. Keys are record field names, values are station
// measurement names. The returned map is a fresh copy that callers may
// extend or override.
func DefaultSensorMap() map[string]string {
	return map[string]string{
		"windSpeed":   "mtWindSpeed",
		"windDir":     "mtAdjWindDir",
		"windGust":    "mt2MinWindGustSpeed",
		"windGustDir": "mt2MinWindGustDir",
		"outTemp":     "mtTemp1",
		"windchill":   "mtWindChill",
		"dewpoint":    "mtDewPoint",
		"heatindex":   "mtHeatIndex",
		"extraTemp1":  "mtTemp_2",
		"extraTemp2":  "mtTemp_3",
		"extraTemp3":  "mtTemp_4",
		"rainTotal":   "mtRainThisMonth",
		"rainRate":    "mtRainRate",
		"barometer":   "mtAdjBaromPress",
		"outHumidity": "mtRelHumidity",
		"radiation":   "mtSolarRadiaton",
	}
}

// KnownMeasurement reports whether name is in the station measurement tables.
// Sensor map validation uses it to reject mappings that could never match.
func KnownMeasurement(name string) bool {
	_, ok := measurementClasses[name]
	return ok
}
