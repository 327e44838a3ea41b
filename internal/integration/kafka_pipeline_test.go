//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/quake-data-etl/internal/adapter/kafka"
	"github.com/couchcryptid/quake-data-etl/internal/config"
	"github.com/couchcryptid/quake-data-etl/internal/dataset"
	"github.com/couchcryptid/quake-data-etl/internal/domain"
	"github.com/couchcryptid/quake-data-etl/internal/observability"
	"github.com/couchcryptid/quake-data-etl/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testSinkTopic = "test-normalized-earthquakes"

var samplePath = filepath.Join("..", "dataset", "testdata", "earthquakes_sample.geojson.json")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("quake-etl-test"))
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// readEvents reads n messages from the start of the sink topic.
func readEvents(ctx context.Context, t *testing.T, broker string, n int) []kafkago.Message {
	t.Helper()
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testSinkTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	defer reader.Close()

	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msgs := make([]kafkago.Message, 0, n)
	for range n {
		msg, err := reader.ReadMessage(readCtx)
		require.NoError(t, err, "read from sink topic")
		msgs = append(msgs, msg)
	}
	return msgs
}

// TestPipelineEndToEnd normalizes the sample dataset and publishes every row
// to a real broker, then reads the rows back in order.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaEnabled:   true,
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
		BatchSize:      2,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	defer writer.Close()

	p := pipeline.New(dataset.NewLoader(samplePath), writer, discardLogger(), observability.NewMetricsForTesting(), cfg.BatchSize)
	summary, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Loaded)
	assert.Equal(t, 3, summary.Batches)

	expected, err := dataset.PrepareDataset(samplePath)
	require.NoError(t, err)

	msgs := readEvents(ctx, t, broker, summary.Loaded)
	for i, msg := range msgs {
		var got domain.Event
		require.NoError(t, json.Unmarshal(msg.Value, &got))

		want := expected.Events[i]
		assert.Equal(t, *want.ID, string(msg.Key))
		assert.Equal(t, *want.ID, *got.ID)
		assert.Equal(t, want.Tsunami, got.Tsunami)
		assert.Equal(t, want.IDs, got.IDs)
		if want.Time == nil {
			assert.Nil(t, got.Time)
		} else {
			require.NotNil(t, got.Time)
			assert.True(t, want.Time.Equal(*got.Time))
		}

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, *want.MagType, headers["magtype"])
		assert.NotEmpty(t, headers["processed_at"])
	}
}
