package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// Normalize checks the dataset-wide discriminators and converts every record
// into an output row. Rows keep the order of records; none are dropped.
func Normalize(records []RawRecord) (*Table, error) {
	if len(records) == 0 {
		return nil, schemaErr(0, "type", "dataset has no records")
	}
	if err := checkConstant(records, "type", func(r RawRecord) string { return r.Type }); err != nil {
		return nil, err
	}
	if err := checkConstant(records, "geometry.type", func(r RawRecord) string { return r.Geometry.Type }); err != nil {
		return nil, err
	}

	events := make([]Event, len(records))
	for i := range records {
		events[i] = NormalizeRecord(records[i])
	}
	return &Table{Events: events}, nil
}

// checkConstant verifies a discriminator has the same value on every record,
// which is what makes dropping it lossless.
func checkConstant(records []RawRecord, column string, get func(RawRecord) string) error {
	want := get(records[0])
	for _, r := range records[1:] {
		if got := get(r); got != want {
			return schemaErr(r.Line, column, "discriminator is not constant: %q differs from %q", got, want)
		}
	}
	return nil
}

// NormalizeRecord flattens one record into a row, decoding pseudo-arrays,
// resolving timestamps against the record's tz offset, canonicalizing the
// magnitude type and collapsing the tsunami flag to a boolean.
func NormalizeRecord(rec RawRecord) Event {
	p := rec.Properties
	lon, lat, depth := splitCoordinates(rec.Geometry.Coordinates)

	return Event{
		ID:        rec.ID,
		Mag:       p.Mag,
		Place:     p.Place,
		Time:      EpochMillisToTime(p.Time, p.TZ),
		Updated:   EpochMillisToTime(p.Updated, p.TZ),
		URL:       p.URL,
		Detail:    p.Detail,
		Felt:      p.Felt,
		CDI:       p.CDI,
		MMI:       p.MMI,
		Alert:     p.Alert,
		Status:    p.Status,
		Tsunami:   TsunamiFlag(p.Tsunami),
		Sig:       p.Sig,
		Net:       p.Net,
		Code:      p.Code,
		IDs:       decodeNullablePseudoArray(p.IDs),
		Sources:   decodeNullablePseudoArray(p.Sources),
		Types:     decodeNullablePseudoArray(p.Types),
		NST:       p.NST,
		Dmin:      p.Dmin,
		RMS:       p.RMS,
		Gap:       p.Gap,
		MagType:   canonicalMagTypePtr(p.MagType),
		Type:      p.Type,
		Title:     p.Title,
		Longitude: lon,
		Latitude:  lat,
		Depth:     depth,
	}
}

// DecodePseudoArray turns a feed pseudo-array such as ",a,b,c," into its
// tokens by dropping the first and last character and splitting on commas.
// Strings shorter than two characters decode to an empty slice.
func DecodePseudoArray(s string) []string {
	if utf8.RuneCountInString(s) < 2 {
		return []string{}
	}
	_, head := utf8.DecodeRuneInString(s)
	_, tail := utf8.DecodeLastRuneInString(s)
	return strings.Split(s[head:len(s)-tail], ",")
}

func decodeNullablePseudoArray(s *string) []string {
	if s == nil {
		return []string{}
	}
	return DecodePseudoArray(*s)
}

// CanonicalMagType collapses magnitude type spellings ("MD", "m_d") to one
// label by lower-casing and removing underscores.
func CanonicalMagType(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "_", "")
}

func canonicalMagTypePtr(s *string) *string {
	if s == nil {
		return nil
	}
	c := CanonicalMagType(*s)
	return &c
}

// TsunamiFlag is true only when the raw flag is exactly 1.
func TsunamiFlag(v *float64) bool {
	return v != nil && *v == 1
}

// EpochMillisToTime converts epoch milliseconds to a time in the fixed zone
// tzMinutes east of UTC. A nil or NaN value yields nil; a nil offset is UTC.
// ParseRecord keeps tzMinutes within one day of UTC.
func EpochMillisToTime(ms *float64, tzMinutes *int64) *time.Time {
	if ms == nil || math.IsNaN(*ms) {
		return nil
	}
	whole := math.Floor(*ms)
	frac := time.Duration((*ms - whole) * float64(time.Millisecond))
	t := time.UnixMilli(int64(whole)).Add(frac)

	var offset int64
	if tzMinutes != nil {
		offset = *tzMinutes
	}
	t = t.In(fixedZone(offset))
	return &t
}

// fixedZone returns UTC for a zero offset, otherwise a zone named after the
// offset, e.g. "+01:00".
func fixedZone(minutes int64) *time.Location {
	if minutes == 0 {
		return time.UTC
	}
	sign := '+'
	abs := minutes
	if minutes < 0 {
		sign = '-'
		abs = -minutes
	}
	name := fmt.Sprintf("%c%02d:%02d", sign, abs/60, abs%60)
	return time.FixedZone(name, int(minutes)*60)
}

func splitCoordinates(c []float64) (lon, lat, depth *float64) {
	at := func(i int) *float64 {
		if i >= len(c) {
			return nil
		}
		v := c[i]
		return &v
	}
	return at(0), at(1), at(2)
}
