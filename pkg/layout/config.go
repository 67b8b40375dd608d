// Package layout computes coauthor graph positions with a force-directed
// simulation that runs off the caller's goroutine and streams its progress.
package layout

import (
	"math"
)

// Config holds the simulation constants.
type Config struct {
	ManyBodyStrength float64 `yaml:"many_body_strength"` // negative repels
	Theta            float64 `yaml:"theta"`              // Barnes-Hut opening criterion
	DistanceMin      float64 `yaml:"distance_min"`
	LinkDistance     float64 `yaml:"link_distance"`
	CenterStrength   float64 `yaml:"center_strength"`
	AlphaMin         float64 `yaml:"alpha_min"`
	AlphaDecay       float64 `yaml:"alpha_decay"`
	VelocityDecay    float64 `yaml:"velocity_decay"`
	// WeightedLinks shortens the rest length of links with more shared publications.
	WeightedLinks bool  `yaml:"weighted_links"`
	Seed          int64 `yaml:"seed"`
}

// DefaultConfig returns the conventional force-directed defaults.
func DefaultConfig() Config {
	return Config{
		ManyBodyStrength: -50,
		Theta:            0.9,
		DistanceMin:      1,
		LinkDistance:     30,
		CenterStrength:   1,
		AlphaMin:         0.001,
		AlphaDecay:       1 - math.Pow(0.001, 1.0/300),
		VelocityDecay:    0.4,
		Seed:             42,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ManyBodyStrength == 0 {
		c.ManyBodyStrength = d.ManyBodyStrength
	}
	if c.Theta <= 0 {
		c.Theta = d.Theta
	}
	if c.DistanceMin <= 0 {
		c.DistanceMin = d.DistanceMin
	}
	if c.LinkDistance <= 0 {
		c.LinkDistance = d.LinkDistance
	}
	if c.CenterStrength <= 0 {
		c.CenterStrength = d.CenterStrength
	}
	if c.AlphaMin <= 0 || c.AlphaMin >= 1 {
		c.AlphaMin = d.AlphaMin
	}
	if c.AlphaDecay <= 0 || c.AlphaDecay >= 1 {
		c.AlphaDecay = d.AlphaDecay
	}
	if c.VelocityDecay <= 0 || c.VelocityDecay >= 1 {
		c.VelocityDecay = d.VelocityDecay
	}
	return c
}

// Iterations is the fixed number of ticks a run takes:
// ceil(log(alphaMin) / log(1 - alphaDecay)). It depends only on the decay
// constants, never on the graph.
func (c Config) Iterations() int {
	c = c.withDefaults()
	n := math.Log(c.AlphaMin) / math.Log(1-c.AlphaDecay)
	// The default decay is derived from 300 ticks; absorb the rounding
	// error of that derivation instead of running a 301st tick.
	return int(math.Ceil(n - 1e-9))
}

// largeGraphNodes is the node count above which progress is reported after
// every tick instead of every few.
const largeGraphNodes = 1000

// BatchSize returns how many ticks run between two progress messages.
func BatchSize(nodeCount int) int {
	if nodeCount > largeGraphNodes {
		return 1
	}
	return 3
}
