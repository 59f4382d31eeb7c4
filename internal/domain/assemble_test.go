package domain

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimestamp = int64(1772980245)

func parseFixture(t *testing.T, name string) *Document {
	t.Helper()
	doc, err := ParseDocument(loadFixture(t, name))
	require.NoError(t, err)
	return doc
}

func classesOf(records []OutputRecord) []GroupClass {
	classes := make([]GroupClass, len(records))
	for i, rec := range records {
		classes[i] = rec.Class
	}
	return classes
}

func TestBuildRecordsMinuteFinal(t *testing.T) {
	doc := parseFixture(t, "latestsampledata_u.xml")
	state := &CarriedState{}

	records := BuildRecords(doc, DefaultSensorMap(), state, testTimestamp, true)

	require.Equal(t, []GroupClass{ClassWind, ClassTemp, ClassRain, ClassPressure, ClassGeneric}, classesOf(records))

	wind := records[0]
	assert.Equal(t, testTimestamp, wind.Timestamp)
	assert.True(t, wind.UnitsResolved)
	assert.Equal(t, UnitsUS, wind.UnitSystem)
	assert.Equal(t, map[string]float64{
		"windSpeed":   8.4,
		"windDir":     278,
		"windGust":    14.9,
		"windGustDir": 285,
	}, wind.Fields)

	temp := records[1]
	assert.Equal(t, UnitsUS, temp.UnitSystem)
	assert.Equal(t, map[string]float64{
		"outTemp":    71.3,
		"windchill":  71.3,
		"dewpoint":   50.8,
		"heatindex":  70.9,
		"extraTemp1": 68.2,
		"extraTemp2": 66.0,
		"extraTemp3": 65.4,
	}, temp.Fields)

	rain := records[2]
	assert.Equal(t, map[string]float64{"rainTotal": 1.42, "rainRate": 0}, rain.Fields)
	assert.Nil(t, rain.Rain, "first sample has no previous counter to difference against")
	assert.False(t, rain.RainCounterReset)

	pressure := records[3]
	assert.Equal(t, map[string]float64{"barometer": 29.92}, pressure.Fields)

	generic := records[4]
	assert.Equal(t, UnitsUS, generic.UnitSystem)
	assert.Equal(t, map[string]float64{"outHumidity": 48.7, "radiation": 612.1}, generic.Fields)
	assert.Empty(t, generic.Times, "station clock is unmapped by default")

	require.NotNil(t, state.LastRainTotal)
	assert.Equal(t, 1.42, *state.LastRainTotal)
}

func TestBuildRecordsWindOnlyBetweenMinuteBoundaries(t *testing.T) {
	doc := parseFixture(t, "latestsampledata_u.xml")
	state := &CarriedState{}

	records := BuildRecords(doc, DefaultSensorMap(), state, testTimestamp, false)

	require.Equal(t, []GroupClass{ClassWind}, classesOf(records))
	assert.Nil(t, state.LastRainTotal, "rain counter untouched when no rain record is emitted")
}

func TestBuildRecordsMixedUnits(t *testing.T) {
	doc := parseFixture(t, "latestsampledata_mixed.xml")
	state := &CarriedState{}

	records := BuildRecords(doc, DefaultSensorMap(), state, testTimestamp, true)
	require.Equal(t, []GroupClass{ClassWind, ClassTemp, ClassRain, ClassPressure, ClassGeneric}, classesOf(records))

	wind := records[0]
	assert.True(t, wind.UnitsResolved)
	assert.Equal(t, UnitsUS, wind.UnitSystem, "knots wind is emitted as US after conversion")
	assert.InDelta(t, 11.5077945, wind.Fields["windSpeed"], 1e-9)
	assert.InDelta(t, 23.015589, wind.Fields["windGust"], 1e-9)
	assert.Equal(t, 278.0, wind.Fields["windDir"], "directions are not speeds and stay as reported")
	assert.Equal(t, 285.0, wind.Fields["windGustDir"])

	assert.Equal(t, UnitsMetricWX, records[1].UnitSystem)
	assert.Equal(t, UnitsMetricWX, records[2].UnitSystem)

	pressure := records[3]
	assert.False(t, pressure.UnitsResolved, "hectoPascals matches no archive unit system")
	assert.Equal(t, "hectoPascals", pressure.BaseUnits)
	assert.Equal(t, 1013.2, pressure.Fields["barometer"], "value still reported, just untagged")
}

func TestBuildRecordsRainDelta(t *testing.T) {
	rainDoc := func(t *testing.T, total float64) *Document {
		t.Helper()
		data := fmt.Sprintf(`<oriondata><meas name="mtRainRate" unit="inchesPerHour">0.0</meas><meas name="mtRainThisMonth" unit="inchesRain">%.2f</meas></oriondata>`, total)
		doc, err := ParseDocument([]byte(data))
		require.NoError(t, err)
		return doc
	}

	state := &CarriedState{}
	steps := []struct {
		name      string
		total     float64
		wantRain  *float64
		wantReset bool
	}{
		{name: "first sample", total: 1.00, wantRain: nil},
		{name: "quarter inch fell", total: 1.25, wantRain: ptr(0.25)},
		{name: "no new rain", total: 1.25, wantRain: ptr(0.0)},
		{name: "counter reset", total: 0.10, wantRain: nil, wantReset: true},
		{name: "accumulation resumes", total: 0.30, wantRain: ptr(0.2)},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			records := BuildRecords(rainDoc(t, step.total), DefaultSensorMap(), state, testTimestamp, true)
			require.Len(t, records, 1)

			rec := records[0]
			require.Equal(t, ClassRain, rec.Class)
			if step.wantRain == nil {
				assert.Nil(t, rec.Rain)
			} else {
				require.NotNil(t, rec.Rain)
				assert.InDelta(t, *step.wantRain, *rec.Rain, 1e-9)
			}
			assert.Equal(t, step.wantReset, rec.RainCounterReset)

			require.NotNil(t, state.LastRainTotal)
			assert.Equal(t, step.total, *state.LastRainTotal, "counter carried for the next cycle")
		})
	}
}

func TestBuildRecordsSensorMapOverride(t *testing.T) {
	doc := parseFixture(t, "latestsampledata_u.xml")
	sensorMap := map[string]string{
		"humidity":    "mtRelHumidity",
		"stationTime": "mtSampTime",
	}

	records := BuildRecords(doc, sensorMap, &CarriedState{}, testTimestamp, true)

	var generic *OutputRecord
	for i := range records {
		if records[i].Class == ClassGeneric {
			generic = &records[i]
		}
	}
	require.NotNil(t, generic)
	assert.Equal(t, map[string]float64{"humidity": 48.7}, generic.Fields)
	assert.Equal(t, map[string]string{"stationTime": "2026-03-05 14:30:45"}, generic.Times)
}

func TestBuildRecordsEmptyGroupStillEmitted(t *testing.T) {
	// a sensor map that matches nothing in the pressure group still yields
	// a record carrying just the envelope
	doc := parseFixture(t, "latestsampledata_u.xml")
	sensorMap := map[string]string{"windSpeed": "mtWindSpeed"}

	records := BuildRecords(doc, sensorMap, &CarriedState{}, testTimestamp, true)

	require.Len(t, records, 5)
	for _, rec := range records[1:] {
		assert.Empty(t, rec.Fields)
	}
}

func TestOutputRecordMarshalJSON(t *testing.T) {
	t.Run("resolved units", func(t *testing.T) {
		rec := OutputRecord{
			Timestamp:     testTimestamp,
			Class:         ClassWind,
			UnitSystem:    UnitsUS,
			UnitsResolved: true,
			Fields:        map[string]float64{"windSpeed": 8.4},
		}

		got := marshalToMap(t, rec)
		assert.Equal(t, float64(testTimestamp), got["dateTime"])
		assert.Equal(t, float64(UnitsUS), got["usUnits"])
		assert.Equal(t, 8.4, got["windSpeed"])
		assert.NotContains(t, got, "rain")
	})

	t.Run("unresolved units omit usUnits", func(t *testing.T) {
		rec := OutputRecord{
			Timestamp: testTimestamp,
			Class:     ClassPressure,
			BaseUnits: "hectoPascals",
			Fields:    map[string]float64{"barometer": 1013.2},
		}

		got := marshalToMap(t, rec)
		assert.NotContains(t, got, "usUnits")
		assert.Equal(t, 1013.2, got["barometer"])
	})

	t.Run("rain delta present", func(t *testing.T) {
		rec := OutputRecord{
			Timestamp:     testTimestamp,
			Class:         ClassRain,
			UnitSystem:    UnitsUS,
			UnitsResolved: true,
			Fields:        map[string]float64{"rainTotal": 1.25},
			Rain:          ptr(0.25),
		}

		got := marshalToMap(t, rec)
		assert.Equal(t, 0.25, got["rain"])
	})

	t.Run("rain delta unknown is null", func(t *testing.T) {
		rec := OutputRecord{
			Timestamp:     testTimestamp,
			Class:         ClassRain,
			UnitSystem:    UnitsUS,
			UnitsResolved: true,
			Fields:        map[string]float64{"rainTotal": 0.10},
		}

		got := marshalToMap(t, rec)
		require.Contains(t, got, "rain")
		assert.Nil(t, got["rain"])
	})

	t.Run("clock text marshals as string", func(t *testing.T) {
		rec := OutputRecord{
			Timestamp:     testTimestamp,
			Class:         ClassGeneric,
			UnitSystem:    UnitsUS,
			UnitsResolved: true,
			Times:         map[string]string{"stationTime": "2026-03-05 14:30:45"},
		}

		got := marshalToMap(t, rec)
		assert.Equal(t, "2026-03-05 14:30:45", got["stationTime"])
	})
}

func marshalToMap(t *testing.T, rec OutputRecord) map[string]any {
	t.Helper()
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	return got
}

func ptr(v float64) *float64 { return &v }
