package clock_test

import (
	"testing"
	"time"

	"github.com/AndrewDonelson/savestate/internal/clock"
	"github.com/stretchr/testify/assert"
)

func TestMockClock_DefaultEpoch(t *testing.T) {
	clk := clock.NewMock(time.Time{})
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), clk.Now())
}

func TestMockClock_Set(t *testing.T) {
	clk := clock.NewMock(time.Time{})
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clk.Set(ts)
	assert.Equal(t, ts, clk.Now())
}

func TestMockClock_Advance(t *testing.T) {
	clk := clock.NewMock(time.Time{})
	before := clk.Now()
	after := clk.Advance(10 * time.Second)
	assert.Equal(t, 10*time.Second, after.Sub(before))
	assert.Equal(t, after, clk.Now())
}

func TestRealClock(t *testing.T) {
	clk := clock.Real{}
	before := time.Now()
	got := clk.Now()
	after := time.Now()
	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}
