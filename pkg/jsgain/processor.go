package jsgain

import (
	"github.com/justyntemme/jsgain/pkg/dsp/gain"
	"github.com/justyntemme/jsgain/pkg/framework/message"
	"github.com/justyntemme/jsgain/pkg/framework/plugin"
	"github.com/justyntemme/jsgain/pkg/framework/process"
	"github.com/justyntemme/jsgain/pkg/framework/rt"
)

// Commands understood by the processor.
const (
	CommandState   = "$state"
	CommandRTState = "$rtState"
)

// Processor is the audio side of the effect.
type Processor struct {
	*plugin.BaseProcessor

	params *Parameters
	clock  Clock

	bypass    *rt.VstValue[bool]
	leftGain  *rt.VstValue[Gain]
	rightGain *rt.VstValue[Gain]
	link      *rt.VstValue[bool]
	resetMax  *rt.VstValue[bool]
	vuPPM     *rt.VstValue[float64]

	uiMessage *rt.JmbIn[UIMessage]
	stats     *rt.JmbValue[Stats]
	rtState   *rt.JmbValue[rt.Snapshot]

	messages uint64
}

// NewProcessor creates the processor of one instance. hub must be shared
// with the controller of the same instance.
func NewProcessor(params *Parameters, hub *message.Hub, clock Clock) (*Processor, error) {
	if clock == nil {
		clock = SystemClock
	}
	p := &Processor{
		BaseProcessor: plugin.NewBaseProcessor(params.Parameters(), hub, nil),
		params:        params,
		clock:         clock,
	}
	s := p.State()
	p.bypass = rt.AddVst(s, params.Bypass)
	p.leftGain = rt.AddVst(s, params.LeftGain)
	p.rightGain = rt.AddVst(s, params.RightGain)
	p.link = rt.AddVst(s, params.Link)
	p.resetMax = rt.AddVst(s, params.ResetMax)
	p.vuPPM = rt.AddVstOut(s, params.VuPPM)
	p.uiMessage = rt.AddJmbIn(s, params.UIMessage)
	p.stats = rt.AddJmb(s, params.Stats)
	p.rtState = rt.AddJmb(s, params.RTState)
	if err := s.Freeze(); err != nil {
		return nil, err
	}

	p.SetAudioProcessor(p)
	p.OnSetupProcessing(func(sampleRate float64, _ int, _ process.SampleSize) error {
		p.stats.Value().SampleRate = sampleRate
		p.stats.EnqueueUpdate()
		return nil
	})
	p.OnSetActive(func(active bool) error {
		if active {
			p.resetStats()
		}
		return nil
	})
	return p, nil
}

// ProcessAudio handles one block: the pending message, the gain, the meter
// and the statistics, in that order. A block without samples only handles
// the message and the reset button.
func (p *Processor) ProcessAudio(ctx *process.Context) {
	if p.uiMessage.HasUpdate() {
		p.handleMessage(p.uiMessage.Value())
	}
	if ctx.NumSamples() == 0 {
		p.handleReset()
		return
	}

	left, right := p.leftGain.Value(), p.rightGain.Value()
	if p.bypass.Value() {
		left, right = UnityGain, UnityGain
	}

	var peak float64
	if ctx.SampleSize == process.Sample64 {
		peak = processBlock(ctx, ctx.Input64, ctx.Output64, left, right)
	} else {
		peak = processBlock(ctx, ctx.Input32, ctx.Output32, left, right)
	}

	p.handleMax(peak)
}

func (p *Processor) handleMessage(msg *UIMessage) {
	p.messages++
	text := msg.TextBytes()
	if string(text) == CommandState || string(text) == CommandRTState {
		p.State().Snapshot(p.rtState.Value())
		p.rtState.EnqueueUpdate()
	}
}

// handleMax updates the meter and the peak statistics with the peak of the
// block.
func (p *Processor) handleMax(peak float64) {
	p.vuPPM.Update(peak)

	if p.handleReset() {
		return
	}

	stats := p.stats.Value()
	if peak > stats.MaxSinceReset {
		stats.MaxSinceReset = peak
		stats.ResetTime = p.clock()
		p.stats.EnqueueUpdate()
	}
}

// handleReset resets the statistics when the reset button went down in this
// block.
func (p *Processor) handleReset() bool {
	if p.resetMax.Value() && !p.resetMax.Previous() {
		p.resetStats()
		return true
	}
	return false
}

func (p *Processor) resetStats() {
	stats := p.stats.Value()
	stats.MaxSinceReset = 0
	stats.ResetTime = p.clock()
	p.stats.EnqueueUpdate()
}

// Stats returns the statistics as last computed. Only call it from the
// goroutine running the processor.
func (p *Processor) Stats() Stats {
	return p.stats.Get()
}

// Messages returns the number of messages received from the controller.
// Only call it from the goroutine running the processor.
func (p *Processor) Messages() uint64 {
	return p.messages
}

// processBlock applies the gain of each channel and returns the peak of the
// output. A mono block uses the left gain.
func processBlock[S gain.Sample](ctx *process.Context, in, out [][]S, left, right Gain) float64 {
	peak, silent := ProcessChannel(in[0], out[0], left)
	ctx.SetSilent(0, silent)

	if len(in) == 2 && len(out) == 2 {
		rightPeak, rightSilent := ProcessChannel(in[1], out[1], right)
		ctx.SetSilent(1, rightSilent)
		peak = max(peak, rightPeak)
	}
	return float64(peak)
}

// ProcessChannel writes in multiplied by g into out. It returns the largest
// output magnitude and whether no output sample exceeds the silence
// threshold.
func ProcessChannel[S gain.Sample](in, out []S, g Gain) (S, bool) {
	return gain.ApplyTo(in, out, S(g))
}
