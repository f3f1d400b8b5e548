package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"github.com/nyejames/midi-lx/api"
	"github.com/nyejames/midi-lx/chamsys"
	"github.com/nyejames/midi-lx/config"
	"github.com/nyejames/midi-lx/debug"
	"github.com/nyejames/midi-lx/midi"
	"github.com/nyejames/midi-lx/organ"
	"github.com/nyejames/midi-lx/theme"
	"github.com/nyejames/midi-lx/tui"
)

type runFlags struct {
	deskIP  string
	localIP string
	port    string
	framed  bool
	http    string
	noTUI   bool
}

func runCmd(opts *options) *cli.Command {
	f := &runFlags{}
	return &cli.Command{
		Name:  "run",
		Usage: "Bridge controller input to the desk (and the organ, when configured)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "desk-ip", Usage: "Desk IPv4 address", EnvVars: []string{"MIDILX_DESK_IP"}, Destination: &f.deskIP},
			&cli.StringFlag{Name: "local-ip", Usage: "Local IPv4 address to send from", EnvVars: []string{"MIDILX_LOCAL_IP"}, Destination: &f.localIP},
			&cli.StringFlag{Name: "port", Aliases: []string{"p"}, Usage: "MIDI input to use instead of hot-plug selection", Destination: &f.port},
			&cli.BoolFlag{Name: "framed", Usage: "Send CREP framed packets instead of raw commands", Destination: &f.framed},
			&cli.StringFlag{Name: "http", Usage: "Serve the control API on this address", EnvVars: []string{"MIDILX_HTTP"}, Destination: &f.http},
			&cli.BoolFlag{Name: "no-tui", Usage: "Log to stderr instead of showing the status screen", Destination: &f.noTUI},
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			f.apply(ctx, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(ctx.Context, opts, cfg, f.noTUI)
		},
	}
}

// apply lets flags that were set override the file.
func (f *runFlags) apply(ctx *cli.Context, cfg *config.Config) {
	if ctx.IsSet("desk-ip") {
		cfg.Desk.IP = f.deskIP
	}
	if ctx.IsSet("local-ip") {
		cfg.Desk.LocalIP = f.localIP
	}
	if ctx.IsSet("port") {
		cfg.Input.Port = f.port
	}
	if ctx.IsSet("framed") {
		cfg.Desk.Framed = f.framed
	}
	if ctx.IsSet("http") {
		cfg.HTTP = f.http
	}
}

func run(ctx context.Context, opts *options, cfg *config.Config, noTUI bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := debug.Logger()
	if !noTUI {
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		if logger, err = debug.Enable(dir, opts.level); err != nil {
			return fmt.Errorf("debug log: %w", err)
		}
		defer debug.Disable()
	}

	desk, _ := cfg.DeskAddr()
	local, _ := cfg.LocalAddr()
	table, _ := cfg.SlotTable()

	var bridge *organ.Bridge
	if organConfigured(cfg) {
		var err error
		if bridge, err = openBridge(cfg, logger); err != nil {
			return err
		}
		defer func() {
			bridge.Stop()
			<-bridge.Done()
		}()
	}

	var named *midi.Input
	if cfg.Input.Port != "" {
		ports, err := midi.ListPorts()
		if err != nil {
			return err
		}
		port, err := ports.FindIn(cfg.Input.Port)
		if err != nil {
			return err
		}
		named = midi.NewInput(port, logger)
	}

	// the runtime owns a named input unless the organ shares it
	var in chamsys.Input
	if named != nil && bridge == nil {
		in = named
	}
	rt, err := chamsys.New(chamsys.Config{
		Desk:     desk,
		Local:    local,
		DeskPort: cfg.Desk.Port,
		Framed:   cfg.Desk.Framed,
		Mappings: table,
		Logger:   logger,
	}, in)
	if err != nil {
		return err
	}
	defer func() {
		rt.Stop()
		<-rt.Done()
	}()

	feed := rt.HandleMIDI
	if bridge != nil {
		feed = func(msg []byte) {
			rt.HandleMIDI(msg)
			bridge.HandleMIDI(msg)
		}
	}

	var devices <-chan midi.DeviceEvent
	switch {
	case named == nil:
		dm := midi.NewDeviceManager(cfg.Selector(), nil, logger)
		devices = dm.Events()
		go dm.Run(ctx, feed)
	case bridge != nil:
		stop, err := named.Listen(feed)
		if err != nil {
			return err
		}
		defer stop()
	}

	if cfg.HTTP != "" {
		var org api.Organ
		if bridge != nil {
			org = bridge
		}
		srv := api.NewServer(rt, org, logger)
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.HTTP); err != nil {
				logger.Error("api: server failed", "err", err)
			}
		}()
	}

	if noTUI {
		logger.Info("running headless", "local", rt.LocalAddr())
		select {
		case <-ctx.Done():
		case <-rt.Done():
		}
		return nil
	}

	th := theme.New(nil)
	if cfg.Palette != "" {
		p, err := theme.LoadGPL(cfg.Palette)
		if err != nil {
			logger.Warn("theme: palette not loaded, using default", "err", err)
		} else {
			th = theme.New(p)
		}
	}

	tuiOpts := tui.Options{
		Desk:    rt,
		Devices: devices,
		Theme:   th,
		Reload: func() (chamsys.SlotTable, error) {
			c, err := opts.load()
			if err != nil {
				return nil, err
			}
			return c.SlotTable()
		},
	}
	if bridge != nil {
		tuiOpts.Organ = bridge
	}

	p := tea.NewProgram(tui.NewModel(tuiOpts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func organConfigured(cfg *config.Config) bool {
	return cfg.Organ.Output != "" || cfg.Organ.Serial != ""
}

// openBridge opens the configured organ output (serial first) and, when
// named, the organ's own input for stop feedback.
func openBridge(cfg *config.Config, logger *slog.Logger) (*organ.Bridge, error) {
	notes, err := cfg.NoteMap()
	if err != nil {
		return nil, err
	}

	var out organ.Sender
	var feedback organ.Input
	if cfg.Organ.Serial != "" {
		out, err = organ.OpenSerial(cfg.Organ.Serial, cfg.Organ.Baud, logger)
		if err != nil {
			return nil, err
		}
	} else {
		ports, err := midi.ListPorts()
		if err != nil {
			return nil, err
		}
		port, err := ports.FindOut(cfg.Organ.Output)
		if err != nil {
			return nil, err
		}
		if out, err = organ.OpenMIDIPort(port); err != nil {
			return nil, err
		}
		if cfg.Organ.Input != "" {
			in, err := ports.FindIn(cfg.Organ.Input)
			if err != nil {
				out.Close()
				return nil, err
			}
			feedback = midi.NewInput(in, logger)
		}
	}

	b, err := organ.NewBridge(organ.BridgeConfig{Notes: notes, Logger: logger}, out, nil, feedback)
	if err != nil {
		out.Close()
		return nil, err
	}
	return b, nil
}
