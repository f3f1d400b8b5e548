package chamsys

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/netip"

	"github.com/nyejames/midi-lx/debug"
	"github.com/nyejames/midi-lx/internal/queue"
	"github.com/nyejames/midi-lx/midi"
)

// wheelLogInterval is how many wheel sends share one log line.
const wheelLogInterval = 32

// Input is a MIDI source. The callback may run on any goroutine and must be
// treated as borrowing msg only for the duration of the call.
type Input interface {
	Listen(onMessage func(msg []byte)) (stop func(), err error)
}

// Config is what the runtime needs to start.
type Config struct {
	Desk     netip.Addr
	Local    netip.Addr // unspecified binds every interface
	DeskPort uint16     // 0 means DefaultPort
	Framed   bool
	Mappings SlotTable
	Logger   *slog.Logger
}

type eventKind int

const (
	evMidi eventKind = iota
	evMappings
	evDesk
	evSnapshot
	evStop
)

type event struct {
	kind  eventKind
	msg   []byte
	table SlotTable
	desk  netip.Addr
	reply chan Snapshot
}

// state is only ever touched by the consumer goroutine.
type state struct {
	desk  netip.Addr
	port  uint16
	table SlotTable
	prev  uint8
	seq   Sequence
}

// Report describes what happened to one event. Reports are best effort and
// are dropped when nobody is reading.
type Report struct {
	Input   []byte
	Command string
	Desk    netip.AddrPort
	Slot    uint8
	Err     error
}

// Snapshot is a copy of the runtime state taken in queue order.
type Snapshot struct {
	Desk     netip.AddrPort
	Local    netip.AddrPort
	Framed   bool
	PrevSlot uint8
	Seq      Sequence
	Mappings SlotTable
}

// Runtime owns the desk socket and serializes everything sent through it.
type Runtime struct {
	events  *queue.Q[event]
	conn    *net.UDPConn
	local   netip.AddrPort
	framed  bool
	logger  *slog.Logger
	stopIn  func()
	reports chan Report
	done    chan struct{}

	st state
}

// New binds the outbound socket, connects the input (if any) and starts the
// consumer goroutine. Nothing is started when an error is returned.
func New(cfg Config, in Input) (*Runtime, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	local := cfg.Local.Unmap()
	if !local.IsValid() {
		local = netip.IPv4Unspecified()
	}
	port := cfg.DeskPort
	if port == 0 {
		port = DefaultPort
	}

	conn, err := net.ListenUDP("udp4", net.UDPAddrFromAddrPort(netip.AddrPortFrom(local, 0)))
	if err != nil {
		return nil, fmt.Errorf("%w on %s: %w", ErrSocketBind, local, err)
	}

	rt := &Runtime{
		events:  queue.New[event](),
		conn:    conn,
		local:   unmapped(conn.LocalAddr().(*net.UDPAddr).AddrPort()),
		framed:  cfg.Framed,
		logger:  logger,
		reports: make(chan Report, 64),
		done:    make(chan struct{}),
		st: state{
			desk:  cfg.Desk.Unmap(),
			port:  port,
			table: cfg.Mappings.Clone(),
		},
	}

	if in != nil {
		stop, err := in.Listen(rt.HandleMIDI)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("connect midi input: %w", err)
		}
		rt.stopIn = stop
	}

	logger.Info("chamsys: runtime started", "local", rt.local, "desk", netip.AddrPortFrom(rt.st.desk, port), "framed", cfg.Framed)
	go rt.loop()
	return rt, nil
}

// HandleMIDI queues a raw message. The bytes are copied.
func (rt *Runtime) HandleMIDI(msg []byte) {
	rt.events.Push(event{kind: evMidi, msg: append([]byte(nil), msg...)})
}

// UpdateMappings replaces the slot table for subsequent messages.
func (rt *Runtime) UpdateMappings(t SlotTable) {
	rt.events.Push(event{kind: evMappings, table: t.Clone()})
}

// SetDeskAddress redirects subsequent sends.
func (rt *Runtime) SetDeskAddress(addr netip.Addr) {
	rt.events.Push(event{kind: evDesk, desk: addr.Unmap()})
}

// Snapshot waits for the consumer to copy its state. ok is false once the
// runtime has stopped.
func (rt *Runtime) Snapshot() (snap Snapshot, ok bool) {
	reply := make(chan Snapshot, 1)
	if !rt.events.Push(event{kind: evSnapshot, reply: reply}) {
		return snap, false
	}
	select {
	case snap = <-reply:
		return snap, true
	case <-rt.done:
		return snap, false
	}
}

// Stop asks the runtime to exit once everything queued before it is handled.
func (rt *Runtime) Stop() {
	rt.events.Push(event{kind: evStop})
}

// Done is closed once the runtime has stopped and released its socket.
func (rt *Runtime) Done() <-chan struct{} {
	return rt.done
}

// Reports is closed when the runtime stops.
func (rt *Runtime) Reports() <-chan Report {
	return rt.reports
}

// LocalAddr is the address the desk sees commands coming from.
func (rt *Runtime) LocalAddr() netip.AddrPort {
	return rt.local
}

func (rt *Runtime) loop() {
	defer rt.shutdown()

	for {
		ev, ok := rt.events.Pop()
		if !ok {
			return
		}
		switch ev.kind {
		case evMidi:
			rt.handleMidi(ev.msg)
		case evMappings:
			rt.st.table = ev.table
			rt.logger.Info("chamsys: mappings updated", "entries", len(ev.table))
		case evDesk:
			rt.st.desk = ev.desk
			rt.logger.Info("chamsys: desk address changed", "desk", ev.desk)
		case evSnapshot:
			ev.reply <- Snapshot{
				Desk:     netip.AddrPortFrom(rt.st.desk, rt.st.port),
				Local:    rt.local,
				Framed:   rt.framed,
				PrevSlot: rt.st.prev,
				Seq:      rt.st.seq,
				Mappings: rt.st.table.Clone(),
			}
		case evStop:
			if n := rt.events.Len(); n > 0 {
				rt.logger.Debug("chamsys: dropping events queued after stop", "count", n)
			}
			rt.events.Close()
			return
		}
	}
}

func (rt *Runtime) handleMidi(msg []byte) {
	cmd, ok, err := Translate(msg, &rt.st.prev, rt.st.table)
	if err != nil {
		rt.logger.Debug("chamsys: dropped midi message", "msg", fmt.Sprintf("% X", msg), "err", err)
		rt.report(Report{Input: msg, Slot: rt.st.prev, Err: err})
		return
	}
	if !ok {
		debug.Log("chamsys", "no command for midi message % X", msg)
		return
	}

	target := netip.AddrPortFrom(rt.st.desk, rt.st.port)
	err = rt.send(cmd, target)
	switch {
	case err != nil:
		rt.logger.Error("chamsys: send failed", "cmd", cmd, "desk", target, "err", err)
	case msg[0] == midi.Wheel:
		debug.LogEvery(wheelLogInterval, "chamsys", "wheel %s to %s", cmd, target)
	default:
		rt.logger.Info("chamsys: command sent", "cmd", cmd, "desk", target)
	}
	rt.report(Report{Input: msg, Command: cmd, Desk: target, Slot: rt.st.prev, Err: err})
}

func (rt *Runtime) send(cmd string, target netip.AddrPort) error {
	if !target.Addr().IsValid() {
		return fmt.Errorf("%w: no desk address", ErrSocketSend)
	}

	var packet []byte
	if rt.framed {
		b, err := EncodeFramed(cmd, rt.st.seq.Forward, rt.st.seq.Backward)
		if err != nil {
			return err
		}
		rt.st.seq.Next()
		packet = b
	} else {
		packet = EncodeRaw(cmd)
	}

	if _, err := rt.conn.WriteToUDPAddrPort(packet, target); err != nil {
		return fmt.Errorf("%w to %s: %w", ErrSocketSend, target, err)
	}
	return nil
}

func unmapped(ap netip.AddrPort) netip.AddrPort {
	return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port())
}

func (rt *Runtime) report(r Report) {
	select {
	case rt.reports <- r:
	default:
	}
}

func (rt *Runtime) shutdown() {
	if rt.stopIn != nil {
		rt.stopIn()
	}
	if err := rt.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		rt.logger.Warn("chamsys: closing socket", "err", err)
	}
	close(rt.reports)
	close(rt.done)
	rt.logger.Info("chamsys: runtime stopped")
}
