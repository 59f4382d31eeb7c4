package domain

import (
	"encoding/json"
	"fmt"
)

// UnitSystem mirrors the numeric unit-system constants of the downstream
// archive engines so records can be consumed without translation.
type UnitSystem int

const (
	UnitsUS       UnitSystem = 1
	UnitsMetric   UnitSystem = 16
	UnitsMetricWX UnitSystem = 17
)

func (u UnitSystem) String() string {
	switch u {
	case UnitsUS:
		return "US"
	case UnitsMetric:
		return "METRIC"
	case UnitsMetricWX:
		return "METRICWX"
	}
	return fmt.Sprintf("UnitSystem(%d)", int(u))
}

// Group collects the measurements of one class from a single station sample.
type Group struct {
	Class     GroupClass
	BaseUnits string // unit attribute of the group's designated measurement, "" when absent
	Values    map[string]float64
	Times     map[string]string // clock measurements, literal station text
}

// OutputRecord is one loop record assembled from a group: the mapped fields
// of one measurement class, stamped with the collector clock and the group's
// unit system.
type OutputRecord struct {
	Timestamp     int64 // unix seconds at assembly
	Class         GroupClass
	UnitSystem    UnitSystem
	UnitsResolved bool   // false when BaseUnits matched no known system
	BaseUnits     string // raw base units string, for diagnostics
	Fields        map[string]float64
	Times         map[string]string

	// Rain is the interval rainfall derived from the cumulative counter.
	// Set on rain-class records only; nil when a reading was missing or the
	// counter reset mid-interval.
	Rain             *float64
	RainCounterReset bool
}

// MarshalJSON flattens the record into the loop-packet shape archive engines
// expect: dateTime, usUnits and the mapped fields as top-level keys. usUnits
// is omitted when the base units were not resolved; rain-class records always
// carry a rain key, null when the delta is unknown.
func (r OutputRecord) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Fields)+len(r.Times)+3)
	for k, v := range r.Fields {
		m[k] = v
	}
	for k, v := range r.Times {
		m[k] = v
	}
	m["dateTime"] = r.Timestamp
	if r.UnitsResolved {
		m["usUnits"] = int(r.UnitSystem)
	}
	if r.Class == ClassRain {
		if r.Rain != nil {
			m["rain"] = *r.Rain
		} else {
			m["rain"] = nil
		}
	}
	return json.Marshal(m)
}

// CarriedState is the data one polling cycle hands to the next. A single
// poller owns it and mutates it from one goroutine, so it needs no locking.
type CarriedState struct {
	LastRainTotal       *float64
	ConsecutiveFailures int
	LastPollMinuteFinal bool
}
