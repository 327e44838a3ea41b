package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/quake-data-etl/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, generate(&a, 50, 7))
	require.NoError(t, generate(&b, 50, 7))
	assert.Equal(t, a.Bytes(), b.Bytes())

	var c bytes.Buffer
	require.NoError(t, generate(&c, 50, 8))
	assert.NotEqual(t, a.Bytes(), c.Bytes())
}

func TestGenerate_NormalizesCleanly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, generate(&buf, 200, 42))

	path := filepath.Join(t.TempDir(), "mock.geojson.json")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	table, err := dataset.PrepareDataset(path)
	require.NoError(t, err)
	require.Equal(t, 200, table.Len())

	for _, e := range table.Events {
		require.NotNil(t, e.MagType)
		assert.NotContains(t, *e.MagType, "_")
		assert.Equal(t, []string{"geoserve", "nearby-cities", "origin", "phase-data"}, e.Types)
		assert.Equal(t, *e.ID, e.IDs[0])
	}
}

func TestPseudoArray(t *testing.T) {
	assert.Equal(t, ",us,at,", pseudoArray([]string{"us", "at"}))
}
