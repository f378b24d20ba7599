package fan

// Controller manages one simulated fan
type Controller interface {
	ID() string
	State() State
	Limits() SpeedLimits

	// Toggle flips the on/off status and returns the new status
	Toggle() bool
	// SetSpeed clamps speed to the limits and applies it. It returns the
	// previous and the applied speed. Switched-off fans reject changes.
	SetSpeed(speed Speed) (prev, applied Speed, err error)
	// Advance moves the rotor by dt seconds and returns its angle
	Advance(dt float64) float64
}

// Domain types for type safety and validation
type (
	// Speed is a rotational speed in rpm
	Speed int

	SpeedLimits struct {
		Min     Speed `mapstructure:"min" json:"min"`
		Max     Speed `mapstructure:"max" json:"max"`
		Default Speed `mapstructure:"default" json:"default"`
	}

	// State is a point-in-time copy of a fan
	State struct {
		ID    string  `json:"id"`
		On    bool    `json:"status"`
		Speed Speed   `json:"speed"`
		Angle float64 `json:"angle"`
	}
)

// DefaultSpeedLimits matches the dashboard slider range
func DefaultSpeedLimits() SpeedLimits {
	return SpeedLimits{Min: 1000, Max: 3000, Default: 2000}
}

// Clamp keeps speed within the limits
func (l SpeedLimits) Clamp(speed Speed) Speed {
	return max(l.Min, min(speed, l.Max))
}

// Valid reports whether the limits describe a non-empty range
func (l SpeedLimits) Valid() bool {
	return l.Min > 0 && l.Min <= l.Max && l.Default >= l.Min && l.Default <= l.Max
}
