// Package wx holds the small weather-engine formulas the collector shares
// with its downstream consumers: wind speed unit conversion and cumulative
// rain counter differencing.
package wx

// knotsPerMilePerHour is the exact ratio used by downstream archive engines,
// kept to the same precision so converted speeds match theirs bit for bit.
const knotsPerMilePerHour = 1.15077945

// KnotsToMilesPerHour converts a wind speed in knots to miles per hour.
func KnotsToMilesPerHour(v float64) float64 {
	return v * knotsPerMilePerHour
}

// RainDelta computes rainfall for an interval from two cumulative counter
// readings. It returns nil when either reading is missing. A counter that
// moved backwards means the station's total was reset mid-interval; the
// amount that fell is unknowable, so the delta is nil and reset reports true
// for the caller to log.
func RainDelta(current, previous *float64) (delta *float64, reset bool) {
	if current == nil || previous == nil {
		return nil, false
	}
	if *current < *previous {
		return nil, true
	}
	d := *current - *previous
	return &d, false
}
