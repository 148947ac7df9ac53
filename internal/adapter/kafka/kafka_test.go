package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyward-data/remote-sensing-etl/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 8, 25, 15, 10, 0, 0, time.UTC)
	height := 40.0
	obs := domain.Observation{
		ID:          "windcube-abc123",
		Instrument:  "windcube",
		SourceFile:  "WLS7-64_2016_05_17.rtd",
		Time:        time.Date(2016, 5, 17, 0, 0, 38, 0, time.UTC),
		Height:      &height,
		Fields:      map[string]float64{"speed": 5.2},
		ProcessedAt: now,
	}

	msg, err := serializeToMessage(obs)
	require.NoError(t, err)

	assert.Equal(t, []byte("windcube-abc123"), msg.Key)
	assert.Contains(t, string(msg.Value), `"instrument":"windcube"`)
	assert.Contains(t, string(msg.Value), `"height":40`)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "instrument", msg.Headers[0].Key)
	assert.Equal(t, []byte("windcube"), msg.Headers[0].Value)
	assert.Equal(t, "processed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestSerializeToMessage_Roundtrip(t *testing.T) {
	height := 80.0
	obs := domain.Observation{
		ID:          "profiler-def456",
		Instrument:  "profiler",
		SourceFile:  "wco16137.w1h",
		Time:        time.Date(2016, 5, 17, 12, 0, 0, 0, time.UTC),
		Height:      &height,
		Fields:      map[string]float64{"SPD": 5.2, "DIR": 210},
		Text:        map[string]string{"station": "WCO"},
		ProcessedAt: time.Date(2026, 8, 25, 15, 10, 0, 0, time.UTC),
	}

	msg, err := serializeToMessage(obs)
	require.NoError(t, err)

	var roundtrip domain.Observation
	require.NoError(t, json.Unmarshal(msg.Value, &roundtrip))

	if diff := cmp.Diff(obs, roundtrip); diff != "" {
		t.Fatalf("roundtrip mismatch (-want +got):\n%s", diff)
	}
}

func TestSerializeToMessage_OmitsEmptyMaps(t *testing.T) {
	msg, err := serializeToMessage(domain.Observation{ID: "x"})
	require.NoError(t, err)
	assert.NotContains(t, string(msg.Value), `"fields"`)
	assert.NotContains(t, string(msg.Value), `"text"`)
	assert.NotContains(t, string(msg.Value), `"height"`)
}
