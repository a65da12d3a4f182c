// Package bus describes the audio bus arrangement of a plugin.
package bus

import "fmt"

// Direction represents the bus direction
type Direction int32

const (
	// DirectionInput represents input bus
	DirectionInput Direction = 0
	// DirectionOutput represents output bus
	DirectionOutput Direction = 1
)

func (d Direction) String() string {
	if d == DirectionInput {
		return "input"
	}
	return "output"
}

// Info contains bus configuration
type Info struct {
	Direction    Direction
	ChannelCount int32
	Name         string
	IsActive     bool
}

// Configuration holds the main input and output bus of an effect. An effect
// accepts any channel count from 1 up to the bus channel count.
type Configuration struct {
	buses [2]Info
}

// NewStereoConfiguration creates a standard stereo I/O configuration
func NewStereoConfiguration() *Configuration {
	return &Configuration{
		buses: [2]Info{
			{Direction: DirectionInput, ChannelCount: 2, Name: "Stereo In", IsActive: true},
			{Direction: DirectionOutput, ChannelCount: 2, Name: "Stereo Out", IsActive: true},
		},
	}
}

// NewMonoConfiguration creates a mono I/O configuration
func NewMonoConfiguration() *Configuration {
	return &Configuration{
		buses: [2]Info{
			{Direction: DirectionInput, ChannelCount: 1, Name: "Mono In", IsActive: true},
			{Direction: DirectionOutput, ChannelCount: 1, Name: "Mono Out", IsActive: true},
		},
	}
}

// Main returns the main bus of direction.
func (c *Configuration) Main(direction Direction) Info {
	return c.buses[direction]
}

// MaxChannels returns the widest channel count of the arrangement.
func (c *Configuration) MaxChannels() int {
	n := c.buses[DirectionInput].ChannelCount
	if out := c.buses[DirectionOutput].ChannelCount; out > n {
		n = out
	}
	return int(n)
}

// Supports reports whether a block with the given channel counts can be
// processed: at least one channel, no more than the bus carries, and as many
// outputs as inputs.
func (c *Configuration) Supports(inputs, outputs int) bool {
	return inputs >= 1 &&
		inputs == outputs &&
		inputs <= int(c.buses[DirectionInput].ChannelCount) &&
		outputs <= int(c.buses[DirectionOutput].ChannelCount)
}

// SetActive activates or deactivates a bus.
func (c *Configuration) SetActive(direction Direction, active bool) {
	c.buses[direction].IsActive = active
}

// Active reports whether both main buses are active.
func (c *Configuration) Active() bool {
	return c.buses[DirectionInput].IsActive && c.buses[DirectionOutput].IsActive
}

func (c *Configuration) String() string {
	in, out := c.buses[DirectionInput], c.buses[DirectionOutput]
	return fmt.Sprintf("%s (%d ch) -> %s (%d ch)", in.Name, in.ChannelCount, out.Name, out.ChannelCount)
}
