package app

import (
	"fmt"
	"log/slog"
	"net/netip"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/nyejames/midi-lx/chamsys"
	"github.com/nyejames/midi-lx/midi"
	"github.com/nyejames/midi-lx/organ"
)

func portsCmd() *cli.Command {
	return &cli.Command{
		Name:  "ports",
		Usage: "List MIDI and serial ports",
		Action: func(ctx *cli.Context) error {
			w := ctx.App.Writer
			ports, err := midi.ListPorts()
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "=== MIDI Input Ports ===")
			for i, name := range ports.InNames() {
				fmt.Fprintf(w, "  %d: %s\n", i, name)
			}
			fmt.Fprintln(w, "\n=== MIDI Output Ports ===")
			for i, name := range ports.OutNames() {
				fmt.Fprintf(w, "  %d: %s\n", i, name)
			}

			serials, err := organ.SerialPorts()
			if err != nil {
				slog.Warn("serial: listing failed", "err", err)
				return nil
			}
			fmt.Fprintln(w, "\n=== Serial Ports ===")
			for _, name := range serials {
				fmt.Fprintf(w, "  %s\n", name)
			}
			return nil
		},
	}
}

func probeCmd(opts *options) *cli.Command {
	wait := 2 * time.Second
	var localIP string
	return &cli.Command{
		Name:  "probe",
		Usage: "Broadcast for MagicQ desks and print the ones that answer",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "timeout", Aliases: []string{"t"}, Usage: "How long to wait for replies", Value: wait, Destination: &wait},
			&cli.StringFlag{Name: "local-ip", Usage: "Interface address to probe from", Destination: &localIP},
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			local, _ := cfg.LocalAddr()
			if localIP != "" {
				if local, err = parseIPv4(localIP); err != nil {
					return err
				}
			}

			desks, err := chamsys.Probe(ctx.Context, local, cfg.Desk.Port, wait)
			if err != nil {
				return err
			}
			if len(desks) == 0 {
				fmt.Fprintln(ctx.App.Writer, "no desks answered")
				return nil
			}
			for _, d := range desks {
				fmt.Fprintln(ctx.App.Writer, d)
			}
			return nil
		},
	}
}

func organCmd(opts *options) *cli.Command {
	var serialDev string
	return &cli.Command{
		Name:  "organ",
		Usage: "Organ stop control",
		Subcommands: []*cli.Command{
			{
				Name:  "stops",
				Usage: "List every stop and its id",
				Action: func(ctx *cli.Context) error {
					for _, s := range organ.Stops() {
						fmt.Fprintf(ctx.App.Writer, "%3d  %s\n", s.ID(), s)
					}
					return nil
				},
			},
			{
				Name:      "set",
				Usage:     "Draw or retire one stop",
				ArgsUsage: "<stop> <on|off>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "serial", Usage: "Serial device instead of the configured output", Destination: &serialDev},
				},
				Action: func(ctx *cli.Context) error {
					if ctx.NArg() != 2 {
						return cli.Exit("usage: organ set <stop> <on|off>", 2)
					}
					stop, ok := organ.ParseStop(ctx.Args().Get(0))
					if !ok {
						return fmt.Errorf("unknown stop %q", ctx.Args().Get(0))
					}
					on, err := parseOnOff(ctx.Args().Get(1))
					if err != nil {
						return err
					}

					cfg, err := opts.load()
					if err != nil {
						return err
					}
					if serialDev != "" {
						cfg.Organ.Serial = serialDev
					}
					if !organConfigured(cfg) {
						return fmt.Errorf("no organ output configured")
					}
					b, err := openBridge(cfg, slog.Default())
					if err != nil {
						return err
					}
					b.SetStop(stop, on)
					b.Stop()
					for c := range b.Changes() {
						if c.Err != nil {
							return c.Err
						}
					}
					fmt.Fprintf(ctx.App.Writer, "%s %s\n", stop, onOff(on))
					return nil
				},
			},
			{
				Name:  "bridge",
				Usage: "Forward controller notes to the organ until interrupted",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "serial", Usage: "Serial device instead of the configured output", Destination: &serialDev},
				},
				Action: func(ctx *cli.Context) error {
					cfg, err := opts.load()
					if err != nil {
						return err
					}
					if serialDev != "" {
						cfg.Organ.Serial = serialDev
					}
					if !organConfigured(cfg) {
						return fmt.Errorf("no organ output configured")
					}
					b, err := openBridge(cfg, slog.Default())
					if err != nil {
						return err
					}
					defer func() {
						b.Stop()
						<-b.Done()
					}()

					dm := midi.NewDeviceManager(cfg.Selector(), nil, slog.Default())
					go dm.Run(ctx.Context, b.HandleMIDI)
					for {
						select {
						case <-ctx.Context.Done():
							return nil
						case c, ok := <-b.Changes():
							if !ok {
								return nil
							}
							if c.Err != nil {
								fmt.Fprintf(ctx.App.ErrWriter, "%s: %v\n", c.Stop, c.Err)
								continue
							}
							fmt.Fprintf(ctx.App.Writer, "%s %s\n", c.Stop, onOff(c.On))
						}
					}
				},
			},
		},
	}
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("state must be on or off, got %q", s)
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func parseIPv4(s string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, err
	}
	if addr = addr.Unmap(); !addr.Is4() {
		return netip.Addr{}, fmt.Errorf("%s is not IPv4", s)
	}
	return addr, nil
}
