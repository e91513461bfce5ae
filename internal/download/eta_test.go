package download

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestETAEstimator(t *testing.T) {
	clock := time.Unix(1000, 0)
	e := &etaEstimator{total: 4, now: func() time.Time { return clock }}
	e.started = clock
	e.last = clock

	// First completion seeds the rate directly.
	clock = clock.Add(time.Second)
	assert.Equal(t, 3*time.Second, e.Complete())

	// A same-speed completion leaves the rate untouched.
	clock = clock.Add(time.Second)
	assert.Equal(t, 2*time.Second, e.Complete())

	// A slow completion shifts the rate by the smoothing factor only:
	// 2s*0.3 + 1s*0.7 = 1.3s per item.
	clock = clock.Add(2 * time.Second)
	assert.Equal(t, 1300*time.Millisecond, e.Complete())

	clock = clock.Add(time.Second)
	assert.Equal(t, time.Duration(0), e.Complete())
	assert.Equal(t, 5*time.Second, e.Elapsed())
}

func TestETAEstimator_RemainingBeforeFirstCompletion(t *testing.T) {
	e := newETAEstimator(10)
	assert.Equal(t, time.Duration(0), e.Remaining())
}

func TestFormatETA(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{45 * time.Second, "45s"},
		{125 * time.Second, "2m05s"},
		{3723 * time.Second, "1h02m03s"},
		{2*time.Hour + 30*time.Second, "2h00m30s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatETA(tt.in))
	}
}
