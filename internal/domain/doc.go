// Package domain models the measurement stream of a Columbia Weather Systems
// MicroServer weather station.
//
// # Data Source
//
// The MicroServer publishes its latest sample as an "Enhanced XML" document
// at /tmp/latestsampledata_u.xml on its embedded web server (see the
// MicroServer User Manual, Appendix B). The document is a flat <oriondata>
// element whose <meas> children each carry a name attribute (sensor
// identifier), a unit attribute, and a numeric text value:
//
//	<oriondata station="orion">
//	<meas name="mtTemp1" unit="degreeF">71.3</meas>
//	<meas name="mtWindSpeed" unit="mph">8.4</meas>
//	...
//	</oriondata>
//
// The device sometimes truncates the transfer mid-closing-tag or pads it
// with null bytes; [ParseDocument] repairs that before structural parsing.
// Measurement names not present in the tables here are skipped, so firmware
// additions do not break collection.
//
// # Measurement Groups
//
// The station can be configured with different units per sensor family, so
// measurements are grouped by unit-consistent class and each emitted as a
// separate record tagged with that class's units:
//
//	wind      mtWindSpeed, mtAdjWindDir, mt2MinWindGustSpeed, mt2MinWindGustDir
//	temp      mtTemp1, mtWindChill, mtDewPoint, mtHeatIndex, mtTemp_2/_3/_4
//	rain      mtRainThisMonth, mtRainRate
//	pressure  mtAdjBaromPress
//	generic   mtRelHumidity, mtSolarRadiaton, mtSampTime
//
// One designated measurement per group (mtWindSpeed, mtTemp1, mtRainRate,
// mtRelHumidity, mtAdjBaromPress) contributes its unit attribute as the
// group's base units. The generic group holds values that are not unit-system
// specific (percent, degrees of arc, station clock) and always uses the
// "generic" sentinel instead of a real unit string.
//
// # Unit Systems
//
// Records carry the numeric unit-system constants that downstream archive
// engines use: 1 (US), 16 (METRIC), 17 (METRICWX). The mapping from the
// station's unit strings is static; two cases are special. Wind in knots has
// no corresponding system, so wind speeds are converted to mph and the record
// tagged US. A base units string that maps to nothing leaves the record
// without a unit-system annotation, which consumers treat as unusable-but-
// reported data; collection continues.
//
// # Sensor Map
//
// Output field names follow the loop-packet conventions of the archive
// engines (windSpeed, outTemp, barometer, ...). [DefaultSensorMap] carries
// the standard complement; deployments remap or extend it for extra sensors.
// The names dateTime, usUnits and rain are reserved for the record envelope
// and cannot be mapped.
//
// # Rain
//
// The station reports a cumulative month-to-date rain counter. Each emitted
// rain record converts that into an interval delta against the counter value
// carried from the previous rain record; a counter that moved backwards means
// a reset (month rollover or maintenance), for which the interval's rainfall
// is unknowable and the delta is omitted.
package domain
