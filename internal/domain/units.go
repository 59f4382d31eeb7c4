package domain

// unitSystems maps the station's unit attribute strings onto archive unit
// systems. Mixed systems across one sample are normal; each group resolves
// its own base units.
var unitSystems = map[string]UnitSystem{
	"degreeC":         UnitsMetricWX,
	"degreeF":         UnitsUS,
	"inchesHg":        UnitsUS,
	"inchesPerHour":   UnitsUS,
	"inchesRain":      UnitsUS,
	"kmPerHour":       UnitsMetric,
	"metersPerSecond": UnitsMetricWX,
	"mmPerHour":       UnitsMetricWX,
	"mmRain":          UnitsMetricWX,
	"mph":             UnitsUS,
}

// UnitResolution is the outcome of classifying a group's base units.
type UnitResolution struct {
	System       UnitSystem
	Known        bool // false when the base units matched no system
	ConvertKnots bool // wind speeds need knots-to-mph conversion
}

// ResolveUnits classifies a group's base units string. Wind reported in
// knots has no archive unit system of its own, so its speeds are converted
// to mph and the group tagged US. The "generic" sentinel covers groups whose
// values are not unit-system specific and maps to US by convention. Anything
// else is unknown: the record goes out without a unit-system annotation.
func ResolveUnits(class GroupClass, baseUnits string) UnitResolution {
	if sys, ok := unitSystems[baseUnits]; ok {
		return UnitResolution{System: sys, Known: true}
	}
	if class == ClassWind && baseUnits == "knots" {
		return UnitResolution{System: UnitsUS, Known: true, ConvertKnots: true}
	}
	if baseUnits == "generic" {
		return UnitResolution{System: UnitsUS, Known: true}
	}
	return UnitResolution{}
}
