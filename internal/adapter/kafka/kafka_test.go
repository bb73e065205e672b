package kafka

import (
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gampnico/scintillometry-tools/internal/domain"
)

func TestMapMessageToRaw(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("key-1"),
		Value:     []byte(`{"Station":"hottinger"}`),
		Topic:     "bls-raw-records",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "station_code", Value: []byte("hottinger")},
		},
	}

	raw := mapMessageToRaw(msg)

	assert.Equal(t, []byte("key-1"), raw.Key)
	assert.JSONEq(t, `{"Station":"hottinger"}`, string(raw.Value))
	assert.Equal(t, "bls-raw-records", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "hottinger", raw.Headers["station_code"])
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2020, 6, 3, 3, 23, 0, 0, time.UTC)
	estimate := domain.FluxEstimate{
		ID:               "hottinger-74a5b1c2d3e4f506",
		Station:          "hottinger",
		Time:             now,
		Cn2:              1.9115e-16,
		CT2:              4.2e-4,
		SensibleHeatFlux: 23.4,
		WeatherSource:    "station",
		ProcessedAt:      now.Add(30 * time.Second),
	}

	msg, err := serializeToMessage(estimate)
	require.NoError(t, err)

	assert.Equal(t, []byte("hottinger-74a5b1c2d3e4f506"), msg.Key)
	assert.Contains(t, string(msg.Value), `"station":"hottinger"`)
	assert.Contains(t, string(msg.Value), `"weather_source":"station"`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "station_code", msg.Headers[0].Key)
	assert.Equal(t, []byte("hottinger"), msg.Headers[0].Value)
	assert.Equal(t, "processed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(estimate.ProcessedAt.Format(time.RFC3339)), msg.Headers[1].Value)
}
