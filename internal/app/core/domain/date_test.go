package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-28")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-28", d.String())
	assert.Equal(t, "2024-02-29", d.AddDays(1).String())

	d, err = ParseDate("2024-05-01T13:45:00Z")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.May, 1), d)

	_, err = ParseDate("01/05/2024")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDateJSON(t *testing.T) {
	var v struct {
		Date Date `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2023-12-31"}`), &v))
	assert.Equal(t, NewDate(2023, time.December, 31), v.Date)

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2023-12-31"}`, string(out))

	assert.ErrorIs(t, json.Unmarshal([]byte(`{"date":20231231}`), &v), ErrInvalidDate)
}

func TestDateOrdering(t *testing.T) {
	a := NewDate(2024, time.January, 31)
	b := a.AddDays(1)
	assert.Equal(t, NewDate(2024, time.February, 1), b)
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, Date{}.IsZero())
}
