package domain

import "orion-collector/internal/wx"

// BuildRecords assembles loop records from one parsed sample. Wind records
// are produced on every cycle; the remaining groups only when minuteFinal is
// set, so slower-moving data lands once per minute just before the archive
// boundary. Rain records consume and update the carried rain counter.
// Records come out in a fixed class order (wind, temp, rain, pressure,
// generic) so one sample always assembles the same way.
func BuildRecords(doc *Document, sensorMap map[string]string, state *CarriedState, timestamp int64, minuteFinal bool) []OutputRecord {
	records := make([]OutputRecord, 0, len(doc.Groups))
	for _, class := range classOrder {
		g, ok := doc.Groups[class]
		if !ok {
			continue
		}
		if class != ClassWind && !minuteFinal {
			continue
		}
		records = append(records, buildRecord(g, sensorMap, state, timestamp))
	}
	return records
}

func buildRecord(g Group, sensorMap map[string]string, state *CarriedState, timestamp int64) OutputRecord {
	rec := OutputRecord{
		Timestamp: timestamp,
		Class:     g.Class,
		BaseUnits: g.BaseUnits,
		Fields:    make(map[string]float64),
		Times:     make(map[string]string),
	}
	for out, src := range sensorMap {
		if v, ok := g.Values[src]; ok {
			rec.Fields[out] = v
		}
		if s, ok := g.Times[src]; ok {
			rec.Times[out] = s
		}
	}

	res := ResolveUnits(g.Class, g.BaseUnits)
	rec.UnitsResolved = res.Known
	if res.Known {
		rec.UnitSystem = res.System
	}
	if res.ConvertKnots {
		for out, src := range sensorMap {
			if !speedMeasurements[src] {
				continue
			}
			if v, ok := rec.Fields[out]; ok {
				rec.Fields[out] = wx.KnotsToMilesPerHour(v)
			}
		}
	}

	if g.Class == ClassRain {
		var total *float64
		if v, ok := g.Values[rainTotalMeasurement]; ok {
			total = &v
		}
		// carry the new counter only after differencing against the old one
		rec.Rain, rec.RainCounterReset = wx.RainDelta(total, state.LastRainTotal)
		state.LastRainTotal = total
	}
	return rec
}
