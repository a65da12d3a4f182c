package jsgain

import (
	"fmt"
	"strings"
	"time"

	"github.com/justyntemme/jsgain/pkg/framework/debug"
	"github.com/justyntemme/jsgain/pkg/framework/gui"
	"github.com/justyntemme/jsgain/pkg/framework/message"
	"github.com/justyntemme/jsgain/pkg/framework/plugin"
	"github.com/justyntemme/jsgain/pkg/framework/rt"
)

// CommandGUIState dumps the controller values.
const CommandGUIState = "$guiState"

// RefreshInterval is how often the host should call Refresh.
const RefreshInterval = 200 * time.Millisecond

// Controller is the control side of the effect.
type Controller struct {
	*plugin.BaseController

	params *Parameters
	clock  Clock
	logger *debug.Logger

	bypass    *gui.VstValue[bool]
	leftGain  *gui.VstValue[Gain]
	rightGain *gui.VstValue[Gain]
	link      *gui.VstValue[bool]
	resetMax  *gui.VstValue[bool]
	vuPPM     *gui.VstValue[float64]

	inputText *gui.JmbValue[string]
	uiMessage *gui.JmbValue[UIMessage]
	stats     *gui.JmbValue[Stats]
	rtState   *gui.JmbValue[rt.Snapshot]
}

// NewController creates the controller of one instance. A nil logger uses
// the default logger.
func NewController(params *Parameters, hub *message.Hub, clock Clock, logger *debug.Logger) (*Controller, error) {
	if clock == nil {
		clock = SystemClock
	}
	if logger == nil {
		logger = debug.Default()
	}
	c := &Controller{
		BaseController: plugin.NewBaseController(params.Parameters(), hub),
		params:         params,
		clock:          clock,
		logger:         logger,
	}
	s := c.State()
	c.bypass = gui.AddVst(s, params.Bypass)
	c.leftGain = gui.AddVst(s, params.LeftGain)
	c.rightGain = gui.AddVst(s, params.RightGain)
	c.link = gui.AddVst(s, params.Link)
	c.resetMax = gui.AddVst(s, params.ResetMax)
	c.vuPPM = gui.AddVst(s, params.VuPPM)
	c.inputText = gui.AddJmb(s, params.InputText)
	c.uiMessage = gui.AddJmb(s, params.UIMessage)
	c.stats = gui.AddJmb(s, params.Stats)
	c.rtState = gui.AddJmb(s, params.RTState)
	if err := s.Freeze(); err != nil {
		return nil, err
	}

	s.Listen(c.onGainChange, ParamLeftGain, ParamRightGain)
	s.Listen(c.onLinkChange, ParamLink)
	s.Listen(c.onRTState, ParamRTState)

	c.logger.Debug("GUI save state version=%d\n%s", params.Parameters().GUISaveStateOrder().Version, c.State().ParamTable("GUI state"))
	return c, nil
}

// onGainChange makes the other gain follow while the gains are linked.
func (c *Controller) onGainChange(id uint32) {
	if !c.link.Value() {
		return
	}
	moved, other := c.leftGain, c.rightGain
	if id == ParamRightGain {
		moved, other = c.rightGain, c.leftGain
	}
	if n := moved.Normalized(); other.Normalized() != n {
		other.SetNormalizedValue(n)
	}
}

// onLinkChange raises the lower gain to the higher one when the gains
// become linked.
func (c *Controller) onLinkChange(uint32) {
	if !c.link.Value() {
		return
	}
	left, right := c.leftGain.Normalized(), c.rightGain.Normalized()
	switch {
	case left < right:
		c.leftGain.SetNormalizedValue(right)
	case right < left:
		c.rightGain.SetNormalizedValue(left)
	}
}

func (c *Controller) onRTState(uint32) {
	snap := c.rtState.Value()
	gui.SnapshotTable(c.params.Parameters(), &snap).Log(c.logger)
}

// Refresh receives the values published by the processor and returns the
// statistics line to display.
func (c *Controller) Refresh() string {
	c.Tick()
	return c.StatsLine()
}

// StatsLine renders the last statistics received from the processor.
func (c *Controller) StatsLine() string {
	s := c.stats.Value()
	return fmt.Sprintf("Rate=%g| Max=%s| Dur.=%s",
		s.SampleRate, ToDBString(s.MaxSinceReset, 2), computeDurationString(c.clock()-s.ResetTime))
}

// Stats returns the last statistics received from the processor.
func (c *Controller) Stats() Stats {
	return c.stats.Value()
}

// computeDurationString renders a duration in milliseconds as minutes and
// seconds. Without a whole second the remaining milliseconds follow as a
// bare number ("1m250").
func computeDurationString(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	d := time.Duration(ms) * time.Millisecond

	var sb strings.Builder
	if m := int64(d / time.Minute); m > 0 {
		fmt.Fprintf(&sb, "%dm", m)
		d -= time.Duration(m) * time.Minute
	}
	if sec := int64(d / time.Second); sec > 0 {
		fmt.Fprintf(&sb, "%ds", sec)
	} else {
		fmt.Fprintf(&sb, "%d", d.Milliseconds())
	}
	return sb.String()
}

// SetInputText changes the persisted message text.
func (c *Controller) SetInputText(text string) {
	c.inputText.Update(text)
}

// InputText returns the persisted message text.
func (c *Controller) InputText() string {
	return c.inputText.Value()
}

// SendInputText sends the persisted message text to the processor.
func (c *Controller) SendInputText() UIMessage {
	return c.SendMessage(c.inputText.Value())
}

// SendMessage sends text to the processor, truncated to fit a UIMessage.
// A message the processor has not read yet is replaced.
func (c *Controller) SendMessage(text string) UIMessage {
	msg := NewUIMessage(c.clock(), text)
	c.uiMessage.Broadcast(msg)

	switch cmd := msg.String(); cmd {
	case CommandState, CommandGUIState:
		c.logger.Info("gui - command=%s\n%s", cmd, c.State().ParamTable("GUI state"))
	}
	return msg
}

// SetBypass changes the bypass as a user edit.
func (c *Controller) SetBypass(bypass bool) { c.bypass.SetValue(bypass) }

// Bypass reports whether the effect is bypassed.
func (c *Controller) Bypass() bool { return c.bypass.Value() }

// SetLink links or unlinks the gains.
func (c *Controller) SetLink(link bool) { c.link.SetValue(link) }

// Link reports whether the gains are linked.
func (c *Controller) Link() bool { return c.link.Value() }

// SetLeftGain changes the left gain from a normalized value.
func (c *Controller) SetLeftGain(normalized float64) { c.leftGain.SetNormalizedValue(normalized) }

// SetRightGain changes the right gain from a normalized value.
func (c *Controller) SetRightGain(normalized float64) { c.rightGain.SetNormalizedValue(normalized) }

// Gains returns the normalized left and right gains.
func (c *Controller) Gains() (left, right float64) {
	return c.leftGain.Normalized(), c.rightGain.Normalized()
}

// PressResetMax presses or releases the reset button. The processor resets
// the statistics when the button goes down.
func (c *Controller) PressResetMax(pressed bool) { c.resetMax.SetValue(pressed) }

// Meter returns the last peak reported by the processor.
func (c *Controller) Meter() float64 { return c.vuPPM.Value() }
