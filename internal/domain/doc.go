// Package domain models USGS earthquake event records and the rules that turn
// them into flat, typed table rows.
//
// # Data Source
//
// Records come from the USGS earthquake catalog exported as newline-delimited
// GeoJSON: one Feature object per line, with the event attributes nested under
// "properties" and the hypocenter under "geometry". The historical dump this
// service was built around is named "earthquakes_big.geojson.json".
//
// # Feed Conventions
//
// Discriminators:
//
//	The top-level "type" is always "Feature" and geometry "type" is always
//	"Point". Both carry no information and are dropped after checking they
//	are constant across the dataset.
//
// Pseudo-arrays:
//
//	"ids", "sources" and "types" are strings, not JSON arrays, with a leading
//	and trailing comma as enclosing markers:
//
//	  ",us7000abcd,at00qxyz12,"  →  ["us7000abcd", "at00qxyz12"]
//
//	See [DecodePseudoArray].
//
// Timestamps:
//
//	"time" and "updated" are milliseconds since the Unix epoch. "tz" is the
//	offset in minutes from UTC of the event's local time zone (null in newer
//	exports, read as UTC). Timestamps are returned in a fixed zone with that
//	offset; a null value stays null.
//
// Magnitude type:
//
//	"magType" labels appear with inconsistent casing and punctuation across
//	contributing networks ("MD", "md", "m_d"). They are collapsed by
//	lower-casing and stripping underscores. See [CanonicalMagType].
//
// Tsunami flag:
//
//	1 when the event is in an oceanic region and a tsunami warning may apply,
//	0 otherwise. Only an exact 1 maps to true. See [TsunamiFlag].
//
// Coordinates:
//
//	GeoJSON order [longitude, latitude, depth_km]. Split into three columns.
//
// # Output Columns
//
// Column names are lower-case and fixed; see [Columns]. The identifier and
// text columns (alert, code, detail, id, magtype, place, net, url, status,
// type) are nullable strings so a missing value is always nil.
package domain
