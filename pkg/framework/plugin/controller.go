package plugin

import (
	"io"

	"github.com/justyntemme/jsgain/pkg/framework/gui"
	"github.com/justyntemme/jsgain/pkg/framework/message"
	"github.com/justyntemme/jsgain/pkg/framework/param"
)

// BaseController drives the control side of a plugin.
type BaseController struct {
	registry *param.Registry
	state    *gui.State
}

// NewBaseController creates a controller base over a frozen registry and the
// hub of the plugin instance.
func NewBaseController(registry *param.Registry, hub *message.Hub) *BaseController {
	return &BaseController{
		registry: registry,
		state:    gui.NewState(registry, hub),
	}
}

// State returns the control-side values for binding.
func (c *BaseController) State() *gui.State {
	return c.state
}

// Parameters returns the registry.
func (c *BaseController) Parameters() *param.Registry {
	return c.registry
}

// SetComponentHandler sets the receiver of parameter edits.
func (c *BaseController) SetComponentHandler(h gui.ComponentHandler) {
	c.state.SetComponentHandler(h)
}

// ParameterCount returns the number of host-visible parameters.
func (c *BaseController) ParameterCount() int {
	return len(c.registry.VstParams())
}

// GetParamNormalized returns the normalized value of a host-visible
// parameter.
func (c *BaseController) GetParamNormalized(id uint32) float64 {
	v, _ := c.state.Normalized(id)
	return v
}

// SetParamNormalized applies a value set by the host.
func (c *BaseController) SetParamNormalized(id uint32, value float64) bool {
	return c.state.SetNormalized(id, value)
}

// GetParamStringByValue formats a normalized value of a parameter.
func (c *BaseController) GetParamStringByValue(id uint32, value float64) string {
	if d := c.registry.Get(id); d != nil {
		return d.FormatNormalized(value, 2)
	}
	return ""
}

// SetComponentState syncs the controller with a processor state stream.
func (c *BaseController) SetComponentState(r io.Reader) error {
	return c.state.ReadRTState(r)
}

// GetState saves the controller state.
func (c *BaseController) GetState(w io.Writer) error {
	return c.state.WriteState(w)
}

// SetState restores the controller state.
func (c *BaseController) SetState(r io.Reader) error {
	return c.state.ReadState(r)
}

// Tick receives the values published by the processor.
func (c *BaseController) Tick() int {
	return c.state.Tick()
}
