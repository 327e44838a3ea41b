package domain

import "time"

// RawRecord is one parsed line of the source feed, before normalization.
// Nullable fields are nil when the JSON value is null.
type RawRecord struct {
	Line       int // 1-based line number in the source file
	Type       string
	ID         *string
	Properties RawProperties
	Geometry   RawGeometry
}

// RawProperties mirrors the USGS "properties" object.
type RawProperties struct {
	Mag     *float64
	Place   *string
	Time    *float64 // epoch milliseconds
	Updated *float64 // epoch milliseconds
	TZ      *int64   // minutes from UTC
	URL     *string
	Detail  *string
	Felt    *int64
	CDI     *float64
	MMI     *float64
	Alert   *string
	Status  *string
	Tsunami *float64
	Sig     *int64
	Net     *string
	Code    *string
	IDs     *string // pseudo-array
	Sources *string // pseudo-array
	Types   *string // pseudo-array
	NST     *int64
	Dmin    *float64
	RMS     *float64
	Gap     *float64
	MagType *string
	Type    *string // event type, e.g. "earthquake" or "quarry blast"
	Title   *string
}

// RawGeometry mirrors the GeoJSON "geometry" object.
type RawGeometry struct {
	Type        string
	Coordinates []float64 // [lon, lat, depth]
}

// Event is one normalized output row. JSON tags match the column names.
type Event struct {
	ID        *string    `json:"id"`
	Mag       *float64   `json:"mag"`
	Place     *string    `json:"place"`
	Time      *time.Time `json:"time"`
	Updated   *time.Time `json:"updated"`
	URL       *string    `json:"url"`
	Detail    *string    `json:"detail"`
	Felt      *int64     `json:"felt"`
	CDI       *float64   `json:"cdi"`
	MMI       *float64   `json:"mmi"`
	Alert     *string    `json:"alert"`
	Status    *string    `json:"status"`
	Tsunami   bool       `json:"tsunami"`
	Sig       *int64     `json:"sig"`
	Net       *string    `json:"net"`
	Code      *string    `json:"code"`
	IDs       []string   `json:"ids"`
	Sources   []string   `json:"sources"`
	Types     []string   `json:"types"`
	NST       *int64     `json:"nst"`
	Dmin      *float64   `json:"dmin"`
	RMS       *float64   `json:"rms"`
	Gap       *float64   `json:"gap"`
	MagType   *string    `json:"magtype"`
	Type      *string    `json:"type"`
	Title     *string    `json:"title"`
	Longitude *float64   `json:"longitude"`
	Latitude  *float64   `json:"latitude"`
	Depth     *float64   `json:"depth"`
}

// columns is the output column order: the top-level id, then properties in
// feed order, then geometry.
var columns = []string{
	"id",
	"mag", "place", "time", "updated", "url", "detail", "felt", "cdi", "mmi",
	"alert", "status", "tsunami", "sig", "net", "code", "ids", "sources", "types",
	"nst", "dmin", "rms", "gap", "magtype", "type", "title",
	"longitude", "latitude", "depth",
}

// TextColumns are the identifier and text columns held as nullable strings.
var TextColumns = []string{"alert", "code", "detail", "id", "magtype", "place", "net", "url", "status", "type"}

// Columns returns a copy of the output column names.
func Columns() []string {
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}

// Table is the normalized dataset. Events[i] corresponds to the i-th record
// of the source file.
type Table struct {
	Events []Event
}

// Columns returns the table's column names.
func (t *Table) Columns() []string { return Columns() }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Events) }

// Row returns row i as values in column order. Missing values are nil.
func (t *Table) Row(i int) []any {
	e := t.Events[i]
	return []any{
		value(e.ID),
		value(e.Mag), value(e.Place), value(e.Time), value(e.Updated), value(e.URL),
		value(e.Detail), value(e.Felt), value(e.CDI), value(e.MMI),
		value(e.Alert), value(e.Status), e.Tsunami, value(e.Sig), value(e.Net),
		value(e.Code), e.IDs, e.Sources, e.Types,
		value(e.NST), value(e.Dmin), value(e.RMS), value(e.Gap), value(e.MagType),
		value(e.Type), value(e.Title),
		value(e.Longitude), value(e.Latitude), value(e.Depth),
	}
}

// value unwraps a nullable field so a nil pointer becomes an untyped nil.
func value[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
