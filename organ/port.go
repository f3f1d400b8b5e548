package organ

import (
	"fmt"
	"log/slog"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"go.bug.st/serial"
)

// DINBaud is the MIDI DIN baud rate, used for serial-attached organs.
const DINBaud = 31250

// MIDIPort sends stop messages to an organ on a MIDI output port.
type MIDIPort struct {
	out  drivers.Out
	send func(msg gomidi.Message) error
}

// OpenMIDIPort opens out for sending.
func OpenMIDIPort(out drivers.Out) (*MIDIPort, error) {
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", out.String(), err)
	}
	return &MIDIPort{out: out, send: send}, nil
}

func (p *MIDIPort) Send(msg []byte) error {
	return p.send(gomidi.Message(msg))
}

func (p *MIDIPort) Close() error {
	return p.out.Close()
}

// SerialPort sends stop messages over a serial line, for organ interfaces
// that take raw MIDI bytes on a UART.
type SerialPort struct {
	name   string
	port   serial.Port
	logger *slog.Logger
}

// OpenSerial opens the named device. baud 0 means DINBaud.
func OpenSerial(name string, baud int, logger *slog.Logger) (*SerialPort, error) {
	if baud == 0 {
		baud = DINBaud
	}
	if logger == nil {
		logger = slog.Default()
	}
	p, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", name, err)
	}
	logger.Info("serial: port opened", "device", name, "baud", baud)
	return &SerialPort{name: name, port: p, logger: logger}, nil
}

func (s *SerialPort) Send(msg []byte) error {
	n, err := s.port.Write(msg)
	if err != nil {
		return fmt.Errorf("write %s: %w", s.name, err)
	}
	if n != len(msg) {
		return fmt.Errorf("write %s: short write %d of %d", s.name, n, len(msg))
	}
	return nil
}

func (s *SerialPort) Close() error {
	s.logger.Info("serial: closing port", "device", s.name)
	return s.port.Close()
}

// SerialPorts lists the serial devices present on this machine.
func SerialPorts() ([]string, error) {
	return serial.GetPortsList()
}
