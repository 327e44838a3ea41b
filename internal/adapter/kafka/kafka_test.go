package kafka

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/quake-data-etl/internal/config"
	"github.com/couchcryptid/quake-data-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	mag := 6.5
	event := domain.Event{
		ID:      strPtr("usc000lvb5"),
		Mag:     &mag,
		Net:     strPtr("us"),
		MagType: strPtr("mww"),
		Tsunami: true,
		IDs:     []string{"usc000lvb5", "pt14001000"},
		Sources: []string{"us", "pt"},
		Types:   []string{},
	}

	msg, err := serializeToMessage(event, now)
	require.NoError(t, err)

	assert.Equal(t, []byte("usc000lvb5"), msg.Key)
	assert.Contains(t, string(msg.Value), `"magtype":"mww"`)
	assert.Contains(t, string(msg.Value), `"tsunami":true`)
	assert.Contains(t, string(msg.Value), `"ids":["usc000lvb5","pt14001000"]`)
	assert.Contains(t, string(msg.Value), `"alert":null`)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "net", msg.Headers[0].Key)
	assert.Equal(t, []byte("us"), msg.Headers[0].Value)
	assert.Equal(t, "magtype", msg.Headers[1].Key)
	assert.Equal(t, []byte("mww"), msg.Headers[1].Value)
	assert.Equal(t, "processed_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)
}

func TestSerializeToMessage_NullIdentifiers(t *testing.T) {
	msg, err := serializeToMessage(domain.Event{}, time.Unix(0, 0).UTC())
	require.NoError(t, err)

	assert.Empty(t, msg.Key)
	assert.Empty(t, msg.Headers[0].Value)
	assert.Contains(t, string(msg.Value), `"id":null`)
}

func TestWriter_LoadBatchEmpty(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaSinkTopic: "normalized-earthquakes", BatchSize: 10}
	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })

	require.NoError(t, w.LoadBatch(context.Background(), nil))
}
