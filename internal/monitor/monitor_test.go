package monitor_test

import (
	"math"
	"testing"

	"codeberg.org/mutker/ventsim/internal/monitor"
	"github.com/stretchr/testify/assert"
)

func TestObserveExampleSequence(t *testing.T) {
	var m monitor.Monitor

	assert.Equal(t, monitor.None, m.Observe(24.0, 25.0))
	assert.Equal(t, monitor.Exceeded, m.Observe(25.3, 25.0))
	assert.True(t, m.Above())
	assert.Equal(t, monitor.Normal, m.Observe(24.8, 25.0))
	assert.False(t, m.Above())
}

func TestObserveIsEdgeTriggered(t *testing.T) {
	var m monitor.Monitor
	temps := []float64{24, 25.1, 26, 27, 25.5, 25.0, 24, 23, 25.2, 25.3, 24.9}

	var exceeded, normal int
	for _, temp := range temps {
		switch m.Observe(temp, 25) {
		case monitor.Exceeded:
			exceeded++
		case monitor.Normal:
			normal++
		}
	}

	assert.Equal(t, 2, exceeded)
	assert.Equal(t, 2, normal)
}

func TestObserveEqualIsNotAbove(t *testing.T) {
	var m monitor.Monitor

	assert.Equal(t, monitor.None, m.Observe(25.0, 25.0))
	m.Observe(26, 25)
	assert.Equal(t, monitor.Normal, m.Observe(25.0, 25.0))
}

func TestReset(t *testing.T) {
	var m monitor.Monitor
	m.Observe(30, 25)
	m.Reset()

	assert.False(t, m.Above())
	assert.Equal(t, monitor.Exceeded, m.Observe(30, 25))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "temperature threshold exceeded: 25.3°C > 25.0°C",
		monitor.Message(monitor.Exceeded, 25.3, 25))
	assert.Equal(t, "temperature returned to normal: 24.8°C",
		monitor.Message(monitor.Normal, 24.8, 25))
	assert.Empty(t, monitor.Message(monitor.None, 24.8, 25))
}

func TestLimitsClamp(t *testing.T) {
	l := monitor.DefaultLimits()

	assert.Equal(t, 20.0, l.Clamp(3))
	assert.Equal(t, 30.0, l.Clamp(99))
	assert.Equal(t, 25.5, l.Clamp(25.4))
	assert.Equal(t, 25.0, l.Clamp(25.2))
	assert.Equal(t, 25.0, l.Clamp(math.NaN()))
	assert.True(t, l.Valid())
	assert.False(t, monitor.Limits{Min: 30, Max: 20, Default: 25}.Valid())
}
