// Package jsgain is a stereo gain effect with bypass, a peak meter, peak
// statistics sent to the controller and text messages sent to the
// processor.
package jsgain

import (
	"fmt"

	"github.com/justyntemme/jsgain/pkg/framework/codec"
	"github.com/justyntemme/jsgain/pkg/framework/param"
	"github.com/justyntemme/jsgain/pkg/framework/plugin"
	"github.com/justyntemme/jsgain/pkg/framework/rt"
)

// Parameter ids. They are part of the saved state and must never change.
const (
	ParamBypass    uint32 = 1000
	ParamLeftGain  uint32 = 2010
	ParamRightGain uint32 = 2011
	ParamLink      uint32 = 2012
	ParamResetMax  uint32 = 2020
	ParamVuPPM     uint32 = 2030
	ParamInputText uint32 = 3000
	ParamUIMessage uint32 = 3010
	ParamStats     uint32 = 3020
	ParamRTState   uint32 = 3030
)

// Save state versions.
const (
	RTStateVersion  uint16 = 1
	GUIStateVersion uint16 = 1
)

// inputTextBudget bounds the persisted text field.
const inputTextBudget = 1024

// Info describes the plugin.
var Info = plugin.Info{
	ID:       "com.pongasoft.JSGain",
	Name:     "JSGain",
	Version:  "1.0.0",
	Vendor:   "pongasoft",
	Category: "Fx",
}

// Parameters holds the typed handles of every parameter.
type Parameters struct {
	*plugin.Base

	Bypass    *param.VstParam[bool]
	LeftGain  *param.VstParam[Gain]
	RightGain *param.VstParam[Gain]
	Link      *param.VstParam[bool]
	ResetMax  *param.VstParam[bool]
	VuPPM     *param.VstParam[float64]

	InputText *param.JmbParam[string]
	UIMessage *param.JmbParam[UIMessage]
	Stats     *param.JmbParam[Stats]
	RTState   *param.JmbParam[rt.Snapshot]
}

// NewParameters declares the parameters and freezes the registry.
func NewParameters() (*Parameters, error) {
	p := &Parameters{Base: plugin.NewBase(Info)}
	reg := p.Parameters()

	p.Bypass = param.BypassParameter(ParamBypass, "Bypass").
		ShortName("Byp").
		MustRegister(reg)

	p.LeftGain = param.Vst[Gain](ParamLeftGain, "Left Gain", GainConverter{}).
		ShortName("GainL").
		Unit("dB").
		Default(UnityGain).
		MustRegister(reg)

	p.RightGain = param.Vst[Gain](ParamRightGain, "Right Gain", GainConverter{}).
		ShortName("GainR").
		Unit("dB").
		Default(UnityGain).
		MustRegister(reg)

	p.Link = param.Bool(ParamLink, "Link").
		Default(true).
		MustRegister(reg)

	// momentary button
	p.ResetMax = param.Bool(ParamResetMax, "Reset Max").
		ShortName("Reset").
		Transient().
		MustRegister(reg)

	p.VuPPM = param.Raw(ParamVuPPM, "VuPPM").
		ReadOnly().
		Transient().
		MustRegister(reg)

	p.InputText = param.Jmb[string](ParamInputText, "Input Text", codec.String{Budget: inputTextBudget}).
		GUIOwned().
		Default("hello world").
		MustRegister(reg)

	p.UIMessage = param.Jmb[UIMessage](ParamUIMessage, "UI Message", UIMessageSerializer{}).
		GUIOwned().
		Shared().
		Transient().
		Formatter(UIMessage.String).
		MustRegister(reg)

	p.Stats = param.Jmb[Stats](ParamStats, "Stats", StatsSerializer{}).
		RTOwned().
		Shared().
		Transient().
		Formatter(formatStats).
		MustRegister(reg)

	p.RTState = param.Jmb[rt.Snapshot](ParamRTState, "RT State", rt.SnapshotSerializer{}).
		RTOwned().
		Shared().
		Transient().
		Formatter(func(s rt.Snapshot) string { return fmt.Sprintf("%d values", s.Count) }).
		MustRegister(reg)

	if err := reg.SetRTSaveStateOrder(RTStateVersion, ParamBypass, ParamLeftGain, ParamRightGain, ParamLink); err != nil {
		return nil, err
	}
	if err := reg.SetGUISaveStateOrder(GUIStateVersion, ParamInputText); err != nil {
		return nil, err
	}
	if err := p.Freeze(); err != nil {
		return nil, err
	}
	return p, nil
}
