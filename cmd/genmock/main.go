// Command genmock writes a deterministic synthetic earthquake feed in the raw
// USGS newline-delimited GeoJSON shape, including the quirks the normalizer
// repairs: pseudo-array strings, inconsistent magType spellings, tsunami
// values other than 0/1, and null timestamps.
//
// Usage:
//
//	go run ./cmd/genmock -n 1000 -seed 42 -out data/mock/earthquakes_mock.geojson.json
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

var baseDate = time.Date(2014, time.January, 1, 0, 0, 0, 0, time.UTC)

type network struct {
	code   string
	region string
	lat    float64
	lon    float64
	tz     *int
}

func tz(minutes int) *int { return &minutes }

var networks = []network{
	{code: "ci", region: "CA", lat: 34.0, lon: -117.5, tz: tz(-480)},
	{code: "nc", region: "CA", lat: 38.8, lon: -122.8, tz: tz(-480)},
	{code: "ak", region: "Alaska", lat: 61.5, lon: -150.0, tz: tz(-540)},
	{code: "hv", region: "Hawaii", lat: 19.3, lon: -155.4, tz: tz(-600)},
	{code: "uw", region: "Washington", lat: 47.6, lon: -122.3, tz: tz(-480)},
	{code: "us", region: "Japan", lat: 37.8, lon: 142.0, tz: tz(540)},
	{code: "us", region: "Chile", lat: -33.0, lon: -71.6, tz: nil},
}

// magTypes includes the spelling variants seen across contributing networks.
var magTypes = []string{"ml", "ML", "m_l", "md", "MD", "Md", "m_d", "mb", "mww", "Mww", "M_WW", "mb_lg"}

var directions = []string{"N", "NNE", "NE", "E", "SE", "S", "SW", "W", "NW", "WNW"}

// Feature types keep the USGS key order in the emitted JSON.
type feature struct {
	Type       string     `json:"type"`
	Properties properties `json:"properties"`
	Geometry   geometry   `json:"geometry"`
	ID         string     `json:"id"`
}

type properties struct {
	Mag     float64  `json:"mag"`
	Place   string   `json:"place"`
	Time    *int64   `json:"time"`
	Updated int64    `json:"updated"`
	TZ      *int     `json:"tz"`
	URL     string   `json:"url"`
	Detail  string   `json:"detail"`
	Felt    *int     `json:"felt"`
	CDI     *float64 `json:"cdi"`
	MMI     *float64 `json:"mmi"`
	Alert   *string  `json:"alert"`
	Status  string   `json:"status"`
	Tsunami int      `json:"tsunami"`
	Sig     int      `json:"sig"`
	Net     string   `json:"net"`
	Code    string   `json:"code"`
	IDs     string   `json:"ids"`
	Sources string   `json:"sources"`
	Types   string   `json:"types"`
	NST     *int     `json:"nst"`
	Dmin    *float64 `json:"dmin"`
	RMS     float64  `json:"rms"`
	Gap     *float64 `json:"gap"`
	MagType string   `json:"magType"`
	Type    string   `json:"type"`
	Title   string   `json:"title"`
}

type geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	n := flag.Int("n", 1000, "number of records to generate")
	seed := flag.Uint64("seed", 42, "random seed")
	out := flag.String("out", "", "output path (default stdout)")
	flag.Parse()

	if *n <= 0 {
		flag.Usage()
		return fmt.Errorf("-n must be positive, got %d", *n)
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := generate(w, *n, *seed); err != nil {
		return err
	}
	log.Printf("generated %d records", *n)
	return nil
}

// generate writes n records to w. The same seed always yields the same bytes.
func generate(w io.Writer, n int, seed uint64) error {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	clock := clockwork.NewFakeClockAt(baseDate)

	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	for i := range n {
		clock.Advance(time.Duration(1+rng.IntN(3600)) * time.Second)
		if err := enc.Encode(newFeature(rng, clock.Now(), i)); err != nil {
			return fmt.Errorf("encode record %d: %w", i, err)
		}
	}
	return bw.Flush()
}

func newFeature(rng *rand.Rand, at time.Time, i int) feature {
	nw := networks[rng.IntN(len(networks))]
	mag := round(0.5+rng.Float64()*6.5, 2)
	code := fmt.Sprintf("%08d", 10000000+i)
	id := nw.code + code
	place := fmt.Sprintf("%dkm %s of %s", 1+rng.IntN(120), directions[rng.IntN(len(directions))], nw.region)

	eventTime := at.UnixMilli()
	p := properties{
		Mag:     mag,
		Place:   place,
		Time:    &eventTime,
		Updated: at.Add(time.Duration(rng.IntN(72)) * time.Hour).UnixMilli(),
		TZ:      nw.tz,
		URL:     "https://earthquake.usgs.gov/earthquakes/eventpage/" + id,
		Detail:  "https://earthquake.usgs.gov/fdsnws/event/1/query?eventid=" + id + "&format=geojson",
		Status:  []string{"reviewed", "automatic"}[rng.IntN(2)],
		Sig:     int(math.Round(mag * mag * 15)),
		Net:     nw.code,
		Code:    code,
		RMS:     round(rng.Float64(), 2),
		MagType: magTypes[rng.IntN(len(magTypes))],
		Type:    "earthquake",
		Title:   fmt.Sprintf("M %.1f - %s", mag, place),
	}

	// Roughly 2% of records lost their origin time upstream.
	if rng.IntN(50) == 0 {
		p.Time = nil
	}

	// Mostly 0, sometimes 1, occasionally a stray 2.
	switch r := rng.IntN(100); {
	case r < 5:
		p.Tsunami = 1
	case r < 7:
		p.Tsunami = 2
	}

	ids := []string{id}
	sources := []string{nw.code}
	if rng.IntN(4) == 0 {
		ids = append(ids, fmt.Sprintf("at%08d", rng.IntN(1e8)))
		sources = append(sources, "at")
	}
	p.IDs = pseudoArray(ids)
	p.Sources = pseudoArray(sources)
	p.Types = pseudoArray([]string{"geoserve", "nearby-cities", "origin", "phase-data"})

	if mag >= 3 {
		felt := rng.IntN(500)
		cdi := round(1+rng.Float64()*5, 1)
		p.Felt = &felt
		p.CDI = &cdi
	}
	if mag >= 5.5 {
		mmi := round(3+rng.Float64()*4, 3)
		alert := "green"
		p.MMI = &mmi
		p.Alert = &alert
	}
	if nw.code != "us" {
		nst := 5 + rng.IntN(80)
		dmin := round(rng.Float64()*0.5, 5)
		gap := float64(20 + rng.IntN(300))
		p.NST = &nst
		p.Dmin = &dmin
		p.Gap = &gap
	}

	return feature{
		Type:       "Feature",
		Properties: p,
		Geometry: geometry{
			Type: "Point",
			Coordinates: []float64{
				round(nw.lon+rng.Float64()*2-1, 4),
				round(nw.lat+rng.Float64()*2-1, 4),
				round(rng.Float64()*120, 2),
			},
		},
		ID: id,
	}
}

// pseudoArray renders tokens in the feed's ",a,b," string notation.
func pseudoArray(tokens []string) string {
	return "," + strings.Join(tokens, ",") + ","
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
