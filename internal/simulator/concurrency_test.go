package simulator_test

import (
	"sync"
	"testing"
	"time"

	"codeberg.org/mutker/ventsim/internal/eventlog"
	"codeberg.org/mutker/ventsim/internal/simulator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// crossingKinds returns the fan's threshold entries oldest first
func crossingKinds(entries []eventlog.Entry) []eventlog.Kind {
	var out []eventlog.Kind
	for i := len(entries) - 1; i >= 0; i-- {
		if k := entries[i].Kind; k != eventlog.KindAction {
			out = append(out, k)
		}
	}
	return out
}

func assertAlternating(t *testing.T, kinds []eventlog.Kind) {
	t.Helper()

	require.NotEmpty(t, kinds)
	assert.Equal(t, eventlog.KindThresholdExceeded, kinds[0])

	repeats := 0
	for i := 1; i < len(kinds); i++ {
		if kinds[i] == kinds[i-1] {
			repeats++
		}
	}
	assert.Zero(t, repeats, "consecutive crossings of the same kind")
}

func TestConcurrentActionsKeepCrossingsAlternating(t *testing.T) {
	cfg := simulator.DefaultConfig()
	cfg.Interval = time.Millisecond
	e, err := simulator.New(cfg, simulator.WithSeed(7), simulator.WithClock(clock()))
	require.NoError(t, err)
	defer e.Close()

	const fanID = "Fan 1-1"

	var (
		mu       sync.Mutex
		streamed []eventlog.Entry
		readings []time.Time
	)
	e.Events().Subscribe(func(en eventlog.Entry) {
		mu.Lock()
		defer mu.Unlock()
		if en.FanID == fanID {
			streamed = append(streamed, en)
		}
	})
	e.Observe(func(r simulator.Reading) {
		mu.Lock()
		defer mu.Unlock()
		if r.FanID == fanID {
			readings = append(readings, r.Sample.Time)
		}
	})

	_, err = e.OpenView(fanID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 300 {
				threshold := 20.0
				if (g+i)%2 == 0 {
					threshold = 30
				}
				_, err := e.SetThreshold(fanID, threshold)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range 300 {
			_, err := e.Step(fanID)
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		// speed changes rearm the tick loop while it is running
		for i := range 100 {
			_, err := e.SetSpeed(fanID, 1800+(i%2)*400)
			assert.NoError(t, err)
		}
	}()
	wg.Wait()
	require.NoError(t, e.Close())

	logged := e.Events().ForFan(fanID, 0)
	assertAlternating(t, crossingKinds(logged))

	mu.Lock()
	defer mu.Unlock()

	// subscribers receive entries in log order
	require.Len(t, streamed, len(logged))
	for i, en := range streamed {
		assert.Equal(t, logged[len(logged)-1-i].ID, en.ID)
	}

	// readings reach observers in the order they were sampled
	for i := 1; i < len(readings); i++ {
		assert.True(t, readings[i].After(readings[i-1]), "reading %d out of order", i)
	}
}

func TestConcurrentViewsAreIndependent(t *testing.T) {
	cfg := simulator.DefaultConfig()
	cfg.Interval = time.Millisecond
	e, err := simulator.New(cfg, simulator.WithSeed(3))
	require.NoError(t, err)
	defer e.Close()

	fans := []string{"Fan 1-1", "Fan 1-3", "Fan 2-1", "Fan 2-2"}
	for _, id := range fans {
		_, err := e.OpenView(id)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for _, id := range fans {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				switch i % 4 {
				case 0:
					_, err := e.SetThreshold(id, 20)
					assert.NoError(t, err)
				case 1:
					_, err := e.Step(id)
					assert.NoError(t, err)
				case 2:
					_, err := e.SetThreshold(id, 30)
					assert.NoError(t, err)
				default:
					_, err := e.View(id)
					assert.NoError(t, err)
				}
			}
		}()
	}
	wg.Wait()
	require.NoError(t, e.Close())

	for _, id := range fans {
		v, err := e.View(id)
		require.NoError(t, err)
		assert.False(t, v.Open)
		assertAlternating(t, crossingKinds(e.Events().ForFan(id, 0)))
	}
}
