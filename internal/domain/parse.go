package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"maps"
	"math"
	"slices"
)

var (
	recordKeys = keySet("type", "properties", "geometry", "id")

	propertyKeys = keySet(
		"mag", "place", "time", "updated", "tz", "url", "detail", "felt", "cdi", "mmi",
		"alert", "status", "tsunami", "sig", "net", "code", "ids", "sources", "types",
		"nst", "dmin", "rms", "gap", "magType", "type", "title",
	)

	// requiredPropertyKeys must be present on every record, even if null.
	requiredPropertyKeys = []string{"tz", "magType", "tsunami", "types", "sources", "ids"}

	geometryKeys = keySet("type", "coordinates")
)

const (
	// maxExactInteger is the largest magnitude a JSON number can carry
	// without losing integer precision.
	maxExactInteger = 1 << 53

	// maxTZMinutes bounds the feed's tz offset to one day either side of UTC.
	maxTZMinutes = 24 * 60
)

func keySet(keys ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

type object map[string]json.RawMessage

// ParseRecord decodes one feed line against the fixed record schema.
// Malformed JSON, or a properties/geometry value that is not an object, is a
// *ParseError; missing, unexpected or mistyped keys are a *SchemaError.
func ParseRecord(line int, data []byte) (RawRecord, error) {
	obj, err := decodeObject(data)
	if err != nil {
		return RawRecord{}, &ParseError{Line: line, Err: err}
	}

	top := &fieldReader{line: line, obj: obj}
	top.require("type", "properties", "geometry", "id")
	top.allow(recordKeys)
	if top.err != nil {
		return RawRecord{}, top.err
	}

	rec := RawRecord{Line: line}
	rec.Type = top.discriminator("type")
	rec.ID = top.str("id")
	if top.err != nil {
		return RawRecord{}, top.err
	}

	props, err := nestedObject(line, "properties", obj["properties"])
	if err != nil {
		return RawRecord{}, err
	}
	geom, err := nestedObject(line, "geometry", obj["geometry"])
	if err != nil {
		return RawRecord{}, err
	}

	if rec.Properties, err = parseProperties(line, props); err != nil {
		return RawRecord{}, err
	}
	if rec.Geometry, err = parseGeometry(line, geom); err != nil {
		return RawRecord{}, err
	}

	return rec, nil
}

func parseProperties(line int, obj object) (RawProperties, error) {
	r := &fieldReader{line: line, prefix: "properties.", obj: obj}
	r.require(requiredPropertyKeys...)
	r.allow(propertyKeys)
	if r.err != nil {
		return RawProperties{}, r.err
	}

	p := RawProperties{
		Mag:     r.num("mag"),
		Place:   r.str("place"),
		Time:    r.numWithin("time", maxExactInteger),
		Updated: r.numWithin("updated", maxExactInteger),
		TZ:      r.integerWithin("tz", maxTZMinutes),
		URL:     r.str("url"),
		Detail:  r.str("detail"),
		Felt:    r.integer("felt"),
		CDI:     r.num("cdi"),
		MMI:     r.num("mmi"),
		Alert:   r.str("alert"),
		Status:  r.str("status"),
		Tsunami: r.numOrBool("tsunami"),
		Sig:     r.integer("sig"),
		Net:     r.str("net"),
		Code:    r.str("code"),
		IDs:     r.str("ids"),
		Sources: r.str("sources"),
		Types:   r.str("types"),
		NST:     r.integer("nst"),
		Dmin:    r.num("dmin"),
		RMS:     r.num("rms"),
		Gap:     r.num("gap"),
		MagType: r.str("magType"),
		Type:    r.str("type"),
		Title:   r.str("title"),
	}
	return p, r.err
}

func parseGeometry(line int, obj object) (RawGeometry, error) {
	r := &fieldReader{line: line, prefix: "geometry.", obj: obj}
	r.require("type")
	r.allow(geometryKeys)
	if r.err != nil {
		return RawGeometry{}, r.err
	}

	g := RawGeometry{Type: r.discriminator("type")}
	if coords := decodeNullable[[]float64](r, "coordinates"); coords != nil {
		if len(*coords) > 3 {
			return RawGeometry{}, schemaErr(line, "geometry.coordinates", "expected at most 3 values, got %d", len(*coords))
		}
		g.Coordinates = *coords
	}
	return g, r.err
}

func decodeObject(data []byte) (object, error) {
	var obj object
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("record is null")
	}
	return obj, nil
}

func nestedObject(line int, column string, raw json.RawMessage) (object, error) {
	if isNull(raw) {
		return nil, &ParseError{Line: line, Err: errors.New(column + " is null")}
	}
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, &ParseError{Line: line, Err: errors.New(column + " is not an object")}
	}
	return obj, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// fieldReader decodes typed values out of a JSON object, keeping the first
// error so a record can be read field by field without checks in between.
type fieldReader struct {
	line   int
	prefix string
	obj    object
	err    error
}

func (r *fieldReader) fail(err *SchemaError) {
	if r.err == nil {
		r.err = err
	}
}

func (r *fieldReader) require(keys ...string) {
	for _, k := range keys {
		if _, ok := r.obj[k]; !ok {
			r.fail(schemaErr(r.line, r.prefix+k, "missing"))
			return
		}
	}
}

func (r *fieldReader) allow(known map[string]struct{}) {
	for _, k := range slices.Sorted(maps.Keys(r.obj)) {
		if _, ok := known[k]; !ok {
			r.fail(schemaErr(r.line, r.prefix+k, "unexpected key"))
			return
		}
	}
}

func (r *fieldReader) discriminator(key string) string {
	v := decodeNullable[string](r, key)
	if v == nil {
		r.fail(schemaErr(r.line, r.prefix+key, "discriminator is null"))
		return ""
	}
	return *v
}

func (r *fieldReader) str(key string) *string { return decodeNullable[string](r, key) }
func (r *fieldReader) num(key string) *float64 { return decodeNullable[float64](r, key) }

// numOrBool reads a number, accepting JSON booleans as 1 and 0.
func (r *fieldReader) numOrBool(key string) *float64 {
	var v float64
	switch string(bytes.TrimSpace(r.obj[key])) {
	case "true":
		v = 1
	case "false":
		v = 0
	default:
		return r.num(key)
	}
	return &v
}

// numWithin reads a number whose magnitude must not exceed limit.
func (r *fieldReader) numWithin(key string, limit float64) *float64 {
	v := decodeNullable[float64](r, key)
	if v == nil {
		return nil
	}
	if math.Abs(*v) > limit {
		r.fail(schemaErr(r.line, r.prefix+key, "value %v out of range [-%v, %v]", *v, limit, limit))
		return nil
	}
	return v
}

func (r *fieldReader) integer(key string) *int64 {
	return r.integerWithin(key, maxExactInteger)
}

// integerWithin reads a whole number whose magnitude must not exceed limit.
func (r *fieldReader) integerWithin(key string, limit float64) *int64 {
	v := r.numWithin(key, limit)
	if v == nil {
		return nil
	}
	if *v != math.Trunc(*v) {
		r.fail(schemaErr(r.line, r.prefix+key, "expected an integer, got %v", *v))
		return nil
	}
	n := int64(*v)
	return &n
}

// decodeNullable decodes key as T. Absent keys and JSON null yield nil.
func decodeNullable[T any](r *fieldReader, key string) *T {
	raw, ok := r.obj[key]
	if !ok || isNull(raw) {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		r.fail(schemaErr(r.line, r.prefix+key, "unexpected value %s", raw))
		return nil
	}
	return &v
}
