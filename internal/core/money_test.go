package core

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"0.01", 1, true},
		{" 2.50 ", 250, true},
		{"0", 0, true},
		{"1.005", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"92233720368547758.07", math.MaxInt64, true},
		{"92233720368547758.08", 0, false},
		{"100000000000000000", 0, false},
		{"-92233720368547758.09", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "12.5", Money{Cents: 1250}.String())
	assert.Equal(t, "12", Money{Cents: 1200}.String())
	assert.Equal(t, "0", Money{}.String())
	assert.Equal(t, "12.50", Money{Cents: 1250}.Fixed())
	assert.Equal(t, "0.07", Money{Cents: 7}.String())
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(Money{Cents: 1234})
	require.NoError(t, err)
	assert.Equal(t, "12.34", string(b))

	var m Money
	require.NoError(t, json.Unmarshal([]byte("12.5"), &m))
	assert.Equal(t, int64(1250), m.Cents)

	require.NoError(t, json.Unmarshal([]byte(`"7"`), &m))
	assert.Equal(t, int64(700), m.Cents)

	require.NoError(t, json.Unmarshal([]byte("1.005"), &m))
	assert.Equal(t, int64(101), m.Cents)

	assert.ErrorIs(t, json.Unmarshal([]byte("1e20"), &m), ErrInvalidAmount)
	assert.ErrorIs(t, json.Unmarshal([]byte(`"-1e18"`), &m), ErrInvalidAmount)
	assert.ErrorIs(t, json.Unmarshal([]byte("null"), &m), ErrInvalidAmount)
	assert.ErrorIs(t, json.Unmarshal([]byte(`"x"`), &m), ErrInvalidAmount)
}
