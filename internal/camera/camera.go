// Package camera produces the fake video feed shown in the camera modal.
package camera

import (
	"sync"
	"time"

	"codeberg.org/mutker/ventsim/internal/errors"
)

const (
	ErrUnknownChannel = errors.ErrorCode("camera_unknown_channel")

	particleCount = 20
)

// Rand is the noise source
type Rand interface {
	Float64() float64
}

// Particle is one floating speck of noise, positioned in percent of the frame
type Particle struct {
	ID       int     `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Size     float64 `json:"size"`
	Duration float64 `json:"duration"`
}

// Frame is what the modal renders for the active channel
type Frame struct {
	Camera    string     `json:"camera"`
	Channel   int        `json:"channel"`
	Channels  []string   `json:"channels"`
	Particles []Particle `json:"particles"`
	Time      time.Time  `json:"time"`
}

// Feed holds the channel selection and noise of one camera modal
type Feed struct {
	mu        sync.Mutex
	camera    string
	channels  []string
	active    int
	particles []Particle
	rnd       Rand
	now       func() time.Time
}

func NewFeed(camera string, channels []string, rnd Rand, now func() time.Time) *Feed {
	f := &Feed{
		camera:   camera,
		channels: channels,
		rnd:      rnd,
		now:      now,
	}
	f.particles = f.scatter()

	return f
}

// Select switches the channel and regenerates the noise
func (f *Feed) Select(channel int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if channel < 0 || channel >= len(f.channels) {
		return errors.New().WithData(ErrUnknownChannel, channel)
	}

	f.active = channel
	f.particles = f.scatter()

	return nil
}

// Frame returns the current frame stamped with the current time
func (f *Feed) Frame() Frame {
	f.mu.Lock()
	defer f.mu.Unlock()

	particles := make([]Particle, len(f.particles))
	copy(particles, f.particles)

	return Frame{
		Camera:    f.camera,
		Channel:   f.active,
		Channels:  append([]string(nil), f.channels...),
		Particles: particles,
		Time:      f.now(),
	}
}

func (f *Feed) scatter() []Particle {
	ps := make([]Particle, particleCount)
	for i := range ps {
		ps[i] = Particle{
			ID:       i,
			X:        f.rnd.Float64() * 100,
			Y:        f.rnd.Float64() * 100,
			Size:     f.rnd.Float64()*3 + 1,
			Duration: f.rnd.Float64()*3 + 2,
		}
	}

	return ps
}
