package todos

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodoJSONShape(t *testing.T) {
	desc := "2%"
	done := NewDate(2024, 1, 1)
	todo := Todo{
		ID:          1,
		Title:       "Buy milk",
		Description: &desc,
		Completed:   true,
		CompletedAt: &done,
		CreatedAt:   Timestamp{time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)},
	}

	b, err := json.Marshal(todo)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 1,
		"title": "Buy milk",
		"description": "2%",
		"completed": true,
		"completedAt": "2024-01-01",
		"createdAt": "2024-01-01T08:00:00Z"
	}`, string(b))

	b, err = json.Marshal(Todo{ID: 2, Title: "x"})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"completedAt":null`)
	assert.Contains(t, string(b), `"description":null`)
}

func TestDateUnmarshalJSON(t *testing.T) {
	var req updateTodoRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"a","completedAt":"2024-03-05T17:45:00Z"}`), &req))
	require.NotNil(t, req.CompletedAt)
	assert.Equal(t, "2024-03-05", req.CompletedAt.String())

	req = updateTodoRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"title":"a","completedAt":null}`), &req))
	assert.Nil(t, req.CompletedAt)

	var d Date
	assert.Error(t, json.Unmarshal([]byte(`20240101`), &d))
	assert.Error(t, json.Unmarshal([]byte(`"01/02/2024"`), &d))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-01-01", d.String())

	require.NoError(t, d.Scan([]byte("2023-12-31")))
	assert.Equal(t, "2023-12-31", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))

	v, err := NewDate(2024, 2, 29).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", v)
}

func TestTimestampScan(t *testing.T) {
	var ts Timestamp
	require.NoError(t, ts.Scan("2024-01-01 10:11:12"))
	assert.Equal(t, time.Date(2024, 1, 1, 10, 11, 12, 0, time.UTC), ts.Time)

	want := time.Date(2024, 1, 1, 10, 11, 12, 0, time.FixedZone("CET", 3600))
	require.NoError(t, ts.Scan(want))
	assert.True(t, want.Equal(ts.Time))
	assert.Equal(t, time.UTC, ts.Location())
}
