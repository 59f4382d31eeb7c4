package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveUnits(t *testing.T) {
	tests := []struct {
		name      string
		class     GroupClass
		baseUnits string
		want      UnitResolution
	}{
		{name: "fahrenheit", class: ClassTemp, baseUnits: "degreeF", want: UnitResolution{System: UnitsUS, Known: true}},
		{name: "celsius", class: ClassTemp, baseUnits: "degreeC", want: UnitResolution{System: UnitsMetricWX, Known: true}},
		{name: "inches of mercury", class: ClassPressure, baseUnits: "inchesHg", want: UnitResolution{System: UnitsUS, Known: true}},
		{name: "inches per hour", class: ClassRain, baseUnits: "inchesPerHour", want: UnitResolution{System: UnitsUS, Known: true}},
		{name: "inches of rain", class: ClassRain, baseUnits: "inchesRain", want: UnitResolution{System: UnitsUS, Known: true}},
		{name: "km per hour", class: ClassWind, baseUnits: "kmPerHour", want: UnitResolution{System: UnitsMetric, Known: true}},
		{name: "meters per second", class: ClassWind, baseUnits: "metersPerSecond", want: UnitResolution{System: UnitsMetricWX, Known: true}},
		{name: "mm per hour", class: ClassRain, baseUnits: "mmPerHour", want: UnitResolution{System: UnitsMetricWX, Known: true}},
		{name: "mm of rain", class: ClassRain, baseUnits: "mmRain", want: UnitResolution{System: UnitsMetricWX, Known: true}},
		{name: "mph", class: ClassWind, baseUnits: "mph", want: UnitResolution{System: UnitsUS, Known: true}},
		{name: "knots on wind converts", class: ClassWind, baseUnits: "knots", want: UnitResolution{System: UnitsUS, Known: true, ConvertKnots: true}},
		{name: "knots outside wind is unknown", class: ClassRain, baseUnits: "knots", want: UnitResolution{}},
		{name: "generic sentinel", class: ClassGeneric, baseUnits: "generic", want: UnitResolution{System: UnitsUS, Known: true}},
		{name: "unknown units", class: ClassPressure, baseUnits: "hectoPascals", want: UnitResolution{}},
		{name: "missing designator", class: ClassTemp, baseUnits: "", want: UnitResolution{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveUnits(tt.class, tt.baseUnits))
		})
	}
}

func TestUnitSystemString(t *testing.T) {
	assert.Equal(t, "US", UnitsUS.String())
	assert.Equal(t, "METRIC", UnitsMetric.String())
	assert.Equal(t, "METRICWX", UnitsMetricWX.String())
	assert.Equal(t, "UnitSystem(0)", UnitSystem(0).String())
}
