// Command jsgain renders audio through one JSGain instance the way a plugin
// host would, with an optional OSC surface driving its controller.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"github.com/justyntemme/jsgain/pkg/framework/debug"
	"github.com/justyntemme/jsgain/pkg/framework/process"
	"github.com/justyntemme/jsgain/pkg/jsgain"
	"github.com/justyntemme/jsgain/pkg/remote"
)

var (
	configPath = flag.String("config", "", "YAML configuration file")
	inPath     = flag.String("in", "", "input WAV file, overrides the configuration")
	outPath    = flag.String("out", "", "output WAV file, overrides the configuration")
)

func main() {
	flag.Parse()
	flag.Set("logtostderr", "true")

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		glog.Exitf("Invalid configuration: %s", err)
	}
	if *inPath != "" {
		cfg.Input = *inPath
	}
	if *outPath != "" {
		cfg.Output = *outPath
	}
	level, err := debug.ParseLevel(cfg.LogLevel)
	if err != nil {
		glog.Exitf("Invalid log level: %s", err)
	}
	debug.SetLevel(level)

	if err := run(context.Background(), cfg); err != nil {
		glog.Exitf("Render failed: %s", err)
	}
}

func run(ctx context.Context, cfg Config) error {
	params, err := jsgain.NewParameters()
	if err != nil {
		return err
	}
	info := params.Info
	glog.Infof("Loaded %s %s by %s, class %X", info.Name, info.Version, info.Vendor, info.UID())
	inst, err := jsgain.NewInstance(params, jsgain.SystemClock, debug.Default())
	if err != nil {
		return err
	}
	if err := loadStates(inst, cfg.State); err != nil {
		return err
	}

	in, err := loadInput(cfg)
	if err != nil {
		return err
	}
	host, err := NewHost(inst, float64(in.SampleRate), cfg.BlockSize, process.SampleSize(cfg.SampleSize))
	if err != nil {
		return err
	}
	host.Control(func(c *jsgain.Controller) {
		applyParams(c, cfg.Params)
		for _, line := range parameterLines(c) {
			glog.Infof("Parameter %s", line)
		}
	})

	surface, conn, err := openSurface(host, cfg.OSC)
	if err != nil {
		return err
	}

	glog.Infof("Rendering %d frames at %d Hz", in.Len(), in.SampleRate)
	var pace time.Duration
	if cfg.Realtime {
		pace = time.Second / time.Duration(in.SampleRate)
	}

	var out *signal
	g, ctx := errgroup.WithContext(ctx)
	renderCtx, done := context.WithCancel(ctx)
	g.Go(func() error {
		defer done()
		var err error
		out, err = host.Render(ctx, in, pace)
		return err
	})
	g.Go(func() error {
		ticker := time.NewTicker(cfg.RefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-renderCtx.Done():
				return nil
			case <-ticker.C:
			}
			var line string
			host.Control(func(c *jsgain.Controller) { line = c.Refresh() })
			debug.Debug("%s", line)
			if surface != nil {
				if err := surface.SendStats(); err != nil {
					debug.Warn("send stats: %v", err)
				}
			}
		}
	})
	if conn != nil {
		g.Go(func() error {
			err := surface.Serve(renderCtx, conn)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := host.Flush(); err != nil {
		return err
	}
	var line string
	host.Control(func(c *jsgain.Controller) { line = c.Refresh() })
	glog.Infof("Final stats: %s", line)

	if err := writeWAV(cfg.Output, out); err != nil {
		return err
	}
	if err := saveStates(inst, cfg.State); err != nil {
		return err
	}
	report(host, in, out, cfg.BlockSize)
	return nil
}

func loadInput(cfg Config) (*signal, error) {
	if cfg.Input == "" {
		return tone(int(cfg.SampleRate), cfg.ToneSeconds, cfg.ToneLevel), nil
	}
	return readWAV(cfg.Input)
}

func applyParams(c *jsgain.Controller, p ParamsConfig) {
	if p.Link != nil {
		c.SetLink(*p.Link)
	}
	if p.LeftGain != nil {
		c.SetLeftGain(*p.LeftGain)
	}
	if p.RightGain != nil {
		c.SetRightGain(*p.RightGain)
	}
	if p.Bypass != nil {
		c.SetBypass(*p.Bypass)
	}
	if p.Message != "" {
		c.SendMessage(p.Message)
	}
}

// parameterLines describes the host-visible parameters in registration order
// with their current values.
func parameterLines(c *jsgain.Controller) []string {
	reg := c.Parameters()
	lines := make([]string, 0, c.ParameterCount())
	for i := int32(0); i < reg.Count(); i++ {
		d := reg.GetByIndex(i)
		if !d.IsVst() {
			continue
		}
		value := c.GetParamStringByValue(d.ID, c.GetParamNormalized(d.ID))
		lines = append(lines, fmt.Sprintf("%d %s = %s", d.ID, d.Name, value))
	}
	return lines
}

func openSurface(host *Host, cfg OSCConfig) (*remote.Surface, net.PacketConn, error) {
	if cfg.Listen == "" {
		return nil, nil, nil
	}
	var reply remote.Client
	if cfg.Reply != "" {
		client, err := remote.DialUDP(cfg.Reply)
		if err != nil {
			return nil, nil, err
		}
		reply = client
	}
	conn, err := net.ListenPacket("udp", cfg.Listen)
	if err != nil {
		return nil, nil, fmt.Errorf("listen on %s: %w", cfg.Listen, err)
	}
	glog.Infof("OSC surface listening on %s", conn.LocalAddr())
	return remote.NewSurface(controlTarget{host}, reply, nil), conn, nil
}

// controlTarget drives the controller of a host from the surface.
type controlTarget struct {
	host *Host
}

func (t controlTarget) SendMessage(text string) (m jsgain.UIMessage) {
	t.host.Control(func(c *jsgain.Controller) { m = c.SendMessage(text) })
	return m
}

func (t controlTarget) SetLeftGain(v float64) {
	t.host.Control(func(c *jsgain.Controller) { c.SetLeftGain(v) })
}

func (t controlTarget) SetRightGain(v float64) {
	t.host.Control(func(c *jsgain.Controller) { c.SetRightGain(v) })
}

func (t controlTarget) SetLink(v bool) {
	t.host.Control(func(c *jsgain.Controller) { c.SetLink(v) })
}

func (t controlTarget) SetBypass(v bool) {
	t.host.Control(func(c *jsgain.Controller) { c.SetBypass(v) })
}

func (t controlTarget) PressResetMax(v bool) {
	t.host.Control(func(c *jsgain.Controller) { c.PressResetMax(v) })
}

func (t controlTarget) Stats() (s jsgain.Stats) {
	t.host.Control(func(c *jsgain.Controller) { s = c.Stats() })
	return s
}

func loadStates(inst *jsgain.Instance, cfg StateConfig) error {
	if err := readFile(cfg.Processor, func(r io.ReadSeeker) error {
		if err := inst.Processor.SetState(r); err != nil {
			return err
		}
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return err
		}
		return inst.Controller.SetComponentState(r)
	}); err != nil {
		return fmt.Errorf("load processor state: %w", err)
	}
	if err := readFile(cfg.Controller, func(r io.ReadSeeker) error {
		return inst.Controller.SetState(r)
	}); err != nil {
		return fmt.Errorf("load controller state: %w", err)
	}
	return nil
}

// readFile calls fn with the content of path. Missing files are skipped.
func readFile(path string, fn func(io.ReadSeeker) error) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(f)
}

func saveStates(inst *jsgain.Instance, cfg StateConfig) error {
	if err := writeFile(cfg.Processor, inst.Processor.GetState); err != nil {
		return fmt.Errorf("save processor state: %w", err)
	}
	if err := writeFile(cfg.Controller, inst.Controller.GetState); err != nil {
		return fmt.Errorf("save controller state: %w", err)
	}
	return nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func report(host *Host, in, out *signal, blockSize int) {
	glog.Infof("Profile:\n%s", host.Profiler().Report())
	if m, ok := host.Profiler().Get("process"); ok {
		glog.Infof("Load: %.4f", m.Load(float64(in.SampleRate), blockSize))
	}
	a := debug.NewAudioAnalyzer()
	for ch := range in.Channels {
		glog.Infof("Channel %d in:  %s", ch, debug.Analyze(a, in.Channels[ch]))
		glog.Infof("Channel %d out: %s", ch, debug.Analyze(a, out.Channels[ch]))
	}
}
