// Command validate runs the dataset normalizer over a file and checks the
// output against the raw records: row counts, column naming, canonical
// categorical values, flag and timestamp conversion, and determinism across
// two loads.
//
// Usage:
//
//	go run ./cmd/validate -input earthquakes_big.geojson.json
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/couchcryptid/quake-data-etl/internal/dataset"
	"github.com/couchcryptid/quake-data-etl/internal/domain"
	"github.com/google/go-cmp/cmp"
)

// maxReported caps the errors kept per phase so a bad dump doesn't flood the terminal.
const maxReported = 50

// phase tracks pass/fail for a validation phase.
type phase struct {
	name    string
	errors  []string
	dropped int
}

func (p *phase) errorf(format string, args ...any) {
	if len(p.errors) >= maxReported {
		p.dropped++
		return
	}
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	input := flag.String("input", dataset.DefaultPath, "path to the newline-delimited GeoJSON dataset (.gz accepted)")
	flag.Parse()

	os.Exit(run(*input))
}

func run(path string) int {
	fmt.Println("=== Earthquake Dataset Validation ===")
	fmt.Println()

	table, err := dataset.PrepareDataset(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: prepare dataset: %v\n", err)
		return 1
	}

	raws, err := dataset.ReadRecords(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load raw records: %v\n", err)
		return 1
	}

	second, err := dataset.PrepareDataset(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: prepare dataset (second pass): %v\n", err)
		return 1
	}

	phases := []*phase{
		validateRowCount(table, raws),
		validateColumns(table),
		validateCanonicalValues(table),
		validateConversions(table, raws),
		validateDeterminism(table, second),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors)+p.dropped)
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d raw records, %d rows\n", len(raws), table.Len())

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
		if p.dropped > 0 {
			fmt.Printf("  ... and %d more\n", p.dropped)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Row Count ──

func validateRowCount(table *domain.Table, raws []domain.RawRecord) *phase {
	p := &phase{name: "Phase 1: Row Count (rows vs records)"}
	if len(raws) != table.Len() {
		p.errorf("raw parse yielded %d records, table has %d rows", len(raws), table.Len())
		return p
	}
	for i := range raws {
		if !sameString(raws[i].ID, table.Events[i].ID) {
			p.errorf("row %d (line %d): id %s does not match raw %s", i, raws[i].Line, show(table.Events[i].ID), show(raws[i].ID))
		}
	}
	return p
}

// ── Phase 2: Columns ──

func validateColumns(table *domain.Table) *phase {
	p := &phase{name: "Phase 2: Columns (names, dropped fields)"}
	seen := make(map[string]bool)
	for _, c := range table.Columns() {
		if c != strings.ToLower(c) {
			p.errorf("column %q is not lower-case", c)
		}
		if seen[c] {
			p.errorf("column %q appears twice", c)
		}
		seen[c] = true
	}
	for _, dropped := range []string{"tz", "properties", "geometry", "coordinates"} {
		if seen[dropped] {
			p.errorf("column %q should have been dropped", dropped)
		}
	}
	for _, c := range domain.TextColumns {
		if !seen[c] {
			p.errorf("text column %q missing", c)
		}
	}
	if table.Len() > 0 && len(table.Row(0)) != len(table.Columns()) {
		p.errorf("row width %d does not match %d columns", len(table.Row(0)), len(table.Columns()))
	}
	return p
}

// ── Phase 3: Canonical Values ──

func validateCanonicalValues(table *domain.Table) *phase {
	p := &phase{name: "Phase 3: Canonical Values (magtype, lists)"}
	for i, e := range table.Events {
		if e.MagType != nil && *e.MagType != domain.CanonicalMagType(*e.MagType) {
			p.errorf("row %d: magtype %q is not canonical", i, *e.MagType)
		}
		if e.IDs == nil || e.Sources == nil || e.Types == nil {
			p.errorf("row %d: decoded list column is nil", i)
		}
	}
	return p
}

// ── Phase 4: Conversions ──
// Checks tsunami and timestamp conversion row by row against the raw values.

func validateConversions(table *domain.Table, raws []domain.RawRecord) *phase {
	p := &phase{name: "Phase 4: Conversions (tsunami, timestamps)"}
	if len(raws) != table.Len() {
		p.errorf("cannot compare: %d raw records vs %d rows", len(raws), table.Len())
		return p
	}
	for i, raw := range raws {
		e := table.Events[i]
		rp := raw.Properties

		wantTsunami := rp.Tsunami != nil && *rp.Tsunami == 1
		if e.Tsunami != wantTsunami {
			p.errorf("line %d: tsunami=%v but raw value is %s", raw.Line, e.Tsunami, showNum(rp.Tsunami))
		}

		checkTime(p, raw.Line, "time", rp.Time, rp.TZ, e)
		checkTime(p, raw.Line, "updated", rp.Updated, rp.TZ, e)
	}
	return p
}

func checkTime(p *phase, line int, column string, ms *float64, tz *int64, e domain.Event) {
	got := e.Time
	if column == "updated" {
		got = e.Updated
	}
	if ms == nil {
		if got != nil {
			p.errorf("line %d: %s should be null, got %s", line, column, got)
		}
		return
	}
	if got == nil {
		p.errorf("line %d: %s is null but raw value is %v", line, column, *ms)
		return
	}
	if got.UnixMilli() != int64(*ms) {
		p.errorf("line %d: %s=%d ms, raw %v", line, column, got.UnixMilli(), *ms)
	}
	wantOffset := 0
	if tz != nil {
		wantOffset = int(*tz) * 60
	}
	if _, offset := got.Zone(); offset != wantOffset {
		p.errorf("line %d: %s offset %ds, want %ds", line, column, offset, wantOffset)
	}
}

// ── Phase 5: Determinism ──

func validateDeterminism(first, second *domain.Table) *phase {
	p := &phase{name: "Phase 5: Determinism (two loads)"}
	if diff := cmp.Diff(first, second); diff != "" {
		p.errorf("second load differs (-first +second):\n%s", diff)
	}
	return p
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func show(s *string) string {
	if s == nil {
		return "<null>"
	}
	return fmt.Sprintf("%q", *s)
}

func showNum(v *float64) string {
	if v == nil {
		return "<null>"
	}
	return fmt.Sprintf("%v", *v)
}
