// Package dataset loads the USGS earthquake dump and returns it as one
// normalized table.
package dataset

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
	"github.com/klauspost/compress/gzip"
)

// DefaultPath is the file name of the historical earthquake dump.
const DefaultPath = "earthquakes_big.geojson.json"

const (
	initialLineBuffer = 512 * 1024
	maxLineSize       = 32 * 1024 * 1024
)

// PrepareDataset reads the newline-delimited GeoJSON file at path and returns
// the normalized table, one row per record in file order. Paths ending in
// ".gz" are decompressed on the fly. Any error aborts the whole load; no
// partial table is returned.
func PrepareDataset(path string) (*domain.Table, error) {
	records, err := ReadRecords(path)
	if err != nil {
		return nil, err
	}
	table, err := domain.Normalize(records)
	if err != nil {
		return nil, domain.WithPath(err, path)
	}
	return table, nil
}

// ReadRecords parses every non-blank line of the file into a raw record
// without normalizing. PrepareDataset materializes them all before
// normalization starts, so discriminators can be checked across the whole
// dataset.
func ReadRecords(path string) ([]domain.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.IOError{Path: path, Err: err}
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, &domain.IOError{Path: path, Err: err}
		}
		defer gz.Close()
		r = gz
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, initialLineBuffer), maxLineSize)

	var records []domain.RawRecord
	line := 0
	for sc.Scan() {
		line++
		data := sc.Bytes()
		if len(bytes.TrimSpace(data)) == 0 {
			continue
		}
		rec, err := domain.ParseRecord(line, data)
		if err != nil {
			return nil, domain.WithPath(err, path)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, &domain.IOError{Path: path, Err: err}
	}
	return records, nil
}

// Loader adapts PrepareDataset to the pipeline's extract stage.
type Loader struct {
	Path string
}

// NewLoader creates a Loader for path, falling back to DefaultPath.
func NewLoader(path string) *Loader {
	if path == "" {
		path = DefaultPath
	}
	return &Loader{Path: path}
}

// Extract loads the table. The load itself is not interruptible; ctx is only
// checked before it starts.
func (l *Loader) Extract(ctx context.Context) (*domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return PrepareDataset(l.Path)
}
