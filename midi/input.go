package midi

import (
	"fmt"
	"log/slog"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/nyejames/midi-lx/debug"
)

// Input is a hardware MIDI input. It delivers raw message bytes, SysEx
// included, to whoever is listening.
type Input struct {
	port   drivers.In
	logger *slog.Logger
}

func NewInput(port drivers.In, logger *slog.Logger) *Input {
	if logger == nil {
		logger = slog.Default()
	}
	return &Input{port: port, logger: logger}
}

func (in *Input) Name() string {
	return in.port.String()
}

// Listen opens the port if needed and calls onMessage for every message
// received. stop closes the listener and the port.
func (in *Input) Listen(onMessage func(msg []byte)) (func(), error) {
	if !in.port.IsOpen() {
		if err := in.port.Open(); err != nil {
			return nil, fmt.Errorf("open %q: %w", in.Name(), err)
		}
	}

	stop, err := gomidi.ListenTo(in.port, func(msg gomidi.Message, _ int32) {
		debug.LogEvery(100, "midi", "%s: messages received", in.Name())
		onMessage(msg.Bytes())
	}, gomidi.UseSysEx(), gomidi.HandleError(func(err error) {
		in.logger.Warn("midi: listener error", "device", in.Name(), "err", err)
	}))
	if err != nil {
		in.port.Close()
		return nil, fmt.Errorf("listen %q: %w", in.Name(), err)
	}

	in.logger.Info("midi: listening", "device", in.Name())
	return func() {
		stop()
		in.port.Close()
		in.logger.Info("midi: stopped listening", "device", in.Name())
	}, nil
}
