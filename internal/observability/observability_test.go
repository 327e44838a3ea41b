package observability

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/quake-data-etl/internal/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level    string
		format   string
		enabled  slog.Level
		disabled slog.Level
	}{
		{"debug", "text", slog.LevelDebug, slog.LevelDebug - 1},
		{"info", "json", slog.LevelInfo, slog.LevelDebug},
		{"WARN", "json", slog.LevelWarn, slog.LevelInfo},
		{"warning", "text", slog.LevelWarn, slog.LevelInfo},
		{"error", "json", slog.LevelError, slog.LevelWarn},
		{"bogus", "json", slog.LevelInfo, slog.LevelDebug},
	}
	defaultLogger := slog.Default()
	t.Cleanup(func() { slog.SetDefault(defaultLogger) })

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			logger := NewLogger(&config.Config{LogLevel: tt.level, LogFormat: tt.format})
			require.NotNil(t, logger)

			ctx := context.Background()
			assert.True(t, logger.Enabled(ctx, tt.enabled))
			assert.False(t, logger.Enabled(ctx, tt.disabled))
			assert.Same(t, logger, slog.Default())
		})
	}
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetricsForTesting()
	m.RecordsRead.Add(5)
	m.TsunamiFlagged.Inc()

	assert.InDelta(t, 5.0, testutil.ToFloat64(m.RecordsRead), 0)

	path := filepath.Join(t.TempDir(), "quake_etl.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "quake_etl_records_read_total 5")
	assert.Contains(t, string(data), "quake_etl_tsunami_flagged_total 1")
}
