package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-09")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, 3, 9), d)
	assert.Equal(t, "3/9", d.Label())
	assert.Equal(t, "2024-03-09", d.String())

	_, err = ParseDate("2024-02-30")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDateOrdering(t *testing.T) {
	a := NewDate(2024, 1, 9)
	b := NewDate(2024, 1, 10)
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, b, a.AddDays(1))
	assert.Equal(t, NewDate(2024, 3, 1), NewDate(2024, 2, 29).AddDays(1))
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("x", 3*3600)
	ts := time.Date(2024, 3, 10, 1, 30, 0, 0, loc)
	assert.Equal(t, NewDate(2024, 3, 10), DateOf(ts))
}

func TestTransactionJSONRoundTrip(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 123000000, time.UTC)
	in := Transaction{
		ID:          "txn_1",
		Description: "Lunch",
		Amount:      Money{Cents: 1250},
		Category:    "Food",
		Date:        NewDate(2024, 3, 10),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"txn_1","description":"Lunch","amount":12.5,"category":"Food","date":"2024-03-10","createdAt":"2024-03-10T12:00:00.123Z","updatedAt":"2024-03-10T12:00:00.123Z"}`, string(b))

	var out Transaction
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}

func TestSettings(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, s.Validate())
	assert.Equal(t, []string{"RWF", "EUR", "USD"}, s.Currencies())

	c := s.Clone()
	c.Rates["USD"] = 1
	assert.Equal(t, 0.00077, s.Rates["USD"])

	c.Rates["GBP"] = 0
	assert.ErrorIs(t, c.Validate(), ErrInvalidRate)
}
