package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProgress(t *testing.T) {
	cases := []struct {
		name    string
		current string
		target  string
		want    float64
	}{
		{"quarter of target", "250", "1000", 25.00},
		{"zero current", "0", "1000", 0},
		{"full target", "1000", "1000", 100},
		{"over target", "1500", "1000", 150},
		{"rounds to two decimals", "1", "3", 33.33},
		{"rounds half up", "100.005", "100", 100.01},
		{"zero target yields zero, not division error", "250", "0", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := &Goal{
				CurrentAmount: decimal.RequireFromString(tc.current),
				TargetAmount:  decimal.RequireFromString(tc.target),
			}
			assert.Equal(t, tc.want, g.Progress())
		})
	}
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusActive.Valid())
	assert.True(t, StatusCompleted.Valid())
	assert.True(t, StatusDeleted.Valid())
	assert.False(t, Status("archived").Valid())
}
