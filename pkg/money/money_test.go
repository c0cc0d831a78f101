package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.InDelta(t, 2.50, Round2(2.49975), 0.0001)
	assert.InDelta(t, 2.49, Round2(2.494), 0.0001)
	assert.InDelta(t, 0.01, Round2(0.005), 0.0001)
	assert.InDelta(t, 100.0, Round2(100.0), 0.0001)
}

func TestPercent(t *testing.T) {
	assert.InDelta(t, 10.0, Percent(100, 10), 0.0001)
	assert.InDelta(t, 2.50, Percent(33.33, 7.5), 0.0001)
	assert.InDelta(t, 0.0, Percent(100, 0), 0.0001)
}

func TestClampPercent(t *testing.T) {
	assert.InDelta(t, 0.0, ClampPercent(-5), 0.0001)
	assert.InDelta(t, 100.0, ClampPercent(150), 0.0001)
	assert.InDelta(t, 42.0, ClampPercent(42), 0.0001)
}
