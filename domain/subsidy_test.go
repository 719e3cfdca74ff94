package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubsidyPayloadValidAt(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		payload SubsidyPayload
		want    bool
	}{
		{
			name:    "inside window",
			payload: SubsidyPayload{"startDate": "2024-01-01", "expirationDate": "2024-12-31"},
			want:    true,
		},
		{
			name:    "start equals now",
			payload: SubsidyPayload{"startDate": "2024-03-15T12:00:00Z", "expirationDate": "2024-12-31"},
			want:    true,
		},
		{
			name:    "expiration equals now",
			payload: SubsidyPayload{"startDate": "2024-01-01", "expirationDate": "2024-03-15T12:00:00Z"},
			want:    true,
		},
		{
			name:    "expired one second ago",
			payload: SubsidyPayload{"startDate": "2024-01-01", "expirationDate": "2024-03-15T11:59:59Z"},
			want:    false,
		},
		{
			name:    "not started yet",
			payload: SubsidyPayload{"startDate": "2024-03-15T12:00:01Z", "expirationDate": "2024-12-31"},
			want:    false,
		},
		{
			name:    "offset timestamps",
			payload: SubsidyPayload{"startDate": "2024-03-15T13:00:00+01:00", "expirationDate": "2024-03-15T14:00:00+02:00"},
			want:    true,
		},
		{
			name:    "missing start",
			payload: SubsidyPayload{"expirationDate": "2024-12-31"},
			want:    false,
		},
		{
			name:    "missing expiration",
			payload: SubsidyPayload{"startDate": "2024-01-01"},
			want:    false,
		},
		{
			name:    "malformed date",
			payload: SubsidyPayload{"startDate": "last tuesday", "expirationDate": "2024-12-31"},
			want:    false,
		},
		{
			name:    "non string date",
			payload: SubsidyPayload{"startDate": 20240101, "expirationDate": "2024-12-31"},
			want:    false,
		},
		{
			name:    "nil payload",
			payload: nil,
			want:    false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.payload.ValidAt(now))
		})
	}
}

func TestParseSubsidyDate(t *testing.T) {
	got, ok := ParseSubsidyDate("2024-03-15T12:00:00.123456")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.March, 15, 12, 0, 0, 123456000, time.UTC), got)

	_, ok = ParseSubsidyDate("  ")
	assert.False(t, ok)
}

func TestSubsidyJSONFlattensPayload(t *testing.T) {
	subsidy := Subsidy{
		Type: SubsidyTypeLicense,
		Payload: SubsidyPayload{
			"uuid":           "license-uuid",
			"status":         "activated",
			"startDate":      "2024-01-01",
			"expirationDate": "2024-12-31",
		},
	}

	body, err := json.Marshal(subsidy)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"uuid": "license-uuid",
		"status": "activated",
		"startDate": "2024-01-01",
		"expirationDate": "2024-12-31",
		"subsidyType": "license"
	}`, string(body))

	var decoded Subsidy
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, subsidy, decoded)
}
