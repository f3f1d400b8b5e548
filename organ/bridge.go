package organ

import (
	"fmt"
	"log/slog"

	"github.com/nyejames/midi-lx/internal/queue"
)

// Input is a MIDI source; see midi.Input.
type Input interface {
	Listen(onMessage func(msg []byte)) (stop func(), err error)
}

// Sender delivers raw bytes to the organ.
type Sender interface {
	Send(msg []byte) error
	Close() error
}

// StopChange is reported whenever the bridge learns a stop changed, either
// because it sent the change or because the organ reported it.
type StopChange struct {
	Stop      Stop
	On        bool
	FromOrgan bool
	Err       error
}

type bridgeEventKind int

const (
	bevController bridgeEventKind = iota
	bevOrgan
	bevSet
	bevNotes
	bevSnapshot
	bevStop
)

type bridgeEvent struct {
	kind  bridgeEventKind
	msg   []byte
	stop  Stop
	on    bool
	notes NoteMap
	reply chan map[Stop]bool
}

// Bridge forwards controller notes to the organ as stop messages and tracks
// the stop states the organ reports back. All state belongs to one goroutine.
type Bridge struct {
	events  *queue.Q[bridgeEvent]
	out     Sender
	logger  *slog.Logger
	stops   []func()
	changes chan StopChange
	done    chan struct{}

	notes  NoteMap
	states map[Stop]bool
}

// BridgeConfig configures a Bridge. A nil Notes uses DefaultNoteMap.
type BridgeConfig struct {
	Notes  NoteMap
	Logger *slog.Logger
}

// NewBridge connects the controller and organ inputs (either may be nil) and
// starts the bridge. out is closed when the bridge stops.
func NewBridge(cfg BridgeConfig, out Sender, controller, organIn Input) (*Bridge, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notes := cfg.Notes
	if notes == nil {
		notes = DefaultNoteMap()
	}

	b := &Bridge{
		events:  queue.New[bridgeEvent](),
		out:     out,
		logger:  logger,
		changes: make(chan StopChange, 64),
		done:    make(chan struct{}),
		notes:   notes,
		states:  make(map[Stop]bool),
	}

	if controller != nil {
		stop, err := controller.Listen(b.HandleMIDI)
		if err != nil {
			return nil, fmt.Errorf("connect controller: %w", err)
		}
		b.stops = append(b.stops, stop)
	}
	if organIn != nil {
		stop, err := organIn.Listen(b.HandleOrgan)
		if err != nil {
			b.releaseInputs()
			return nil, fmt.Errorf("connect organ input: %w", err)
		}
		b.stops = append(b.stops, stop)
	}

	go b.loop()
	return b, nil
}

// HandleMIDI queues a controller message. The bytes are copied.
func (b *Bridge) HandleMIDI(msg []byte) {
	b.events.Push(bridgeEvent{kind: bevController, msg: append([]byte(nil), msg...)})
}

// HandleOrgan queues a message received from the organ. The bytes are copied.
func (b *Bridge) HandleOrgan(msg []byte) {
	b.events.Push(bridgeEvent{kind: bevOrgan, msg: append([]byte(nil), msg...)})
}

// SetStop switches a stop directly.
func (b *Bridge) SetStop(stop Stop, on bool) {
	b.events.Push(bridgeEvent{kind: bevSet, stop: stop, on: on})
}

// UpdateNotes replaces the note map.
func (b *Bridge) UpdateNotes(m NoteMap) {
	c := make(NoteMap, len(m))
	for k, v := range m {
		c[k] = v
	}
	b.events.Push(bridgeEvent{kind: bevNotes, notes: c})
}

// States returns the last known state of every stop seen so far. It returns
// nil once the bridge has stopped.
func (b *Bridge) States() map[Stop]bool {
	reply := make(chan map[Stop]bool, 1)
	if !b.events.Push(bridgeEvent{kind: bevSnapshot, reply: reply}) {
		return nil
	}
	select {
	case m := <-reply:
		return m
	case <-b.done:
		return nil
	}
}

// Changes is closed when the bridge stops.
func (b *Bridge) Changes() <-chan StopChange {
	return b.changes
}

func (b *Bridge) Stop() {
	b.events.Push(bridgeEvent{kind: bevStop})
}

func (b *Bridge) Done() <-chan struct{} {
	return b.done
}

func (b *Bridge) loop() {
	defer b.shutdown()

	for {
		ev, ok := b.events.Pop()
		if !ok {
			return
		}
		switch ev.kind {
		case bevController:
			b.handleController(ev.msg)
		case bevOrgan:
			b.handleOrgan(ev.msg)
		case bevSet:
			b.send(EncodeStop(ev.stop, ev.on), ev.stop, ev.on)
		case bevNotes:
			b.notes = ev.notes
			b.logger.Info("organ: note map updated", "entries", len(ev.notes))
		case bevSnapshot:
			m := make(map[Stop]bool, len(b.states))
			for k, v := range b.states {
				m[k] = v
			}
			ev.reply <- m
		case bevStop:
			b.events.Close()
			return
		}
	}
}

func (b *Bridge) handleController(msg []byte) {
	out, ok, err := Translate(msg, b.notes)
	if err != nil {
		b.logger.Debug("organ: dropped controller message", "msg", fmt.Sprintf("% X", msg), "err", err)
		return
	}
	if !ok {
		return
	}
	stop, on, _ := DecodeStop(out)
	b.send(out, stop, on)
}

func (b *Bridge) handleOrgan(msg []byte) {
	stop, on, ok := DecodeStop(msg)
	if !ok {
		b.logger.Debug("organ: ignored organ message", "msg", fmt.Sprintf("% X", msg))
		return
	}
	b.states[stop] = on
	b.logger.Info("organ: stop reported", "stop", stop.String(), "on", on)
	b.report(StopChange{Stop: stop, On: on, FromOrgan: true})
}

func (b *Bridge) send(msg []byte, stop Stop, on bool) {
	err := b.out.Send(msg)
	if err != nil {
		b.logger.Error("organ: send failed", "stop", stop.String(), "on", on, "err", err)
	} else {
		b.states[stop] = on
		b.logger.Info("organ: stop sent", "stop", stop.String(), "on", on)
	}
	b.report(StopChange{Stop: stop, On: on, Err: err})
}

func (b *Bridge) report(c StopChange) {
	select {
	case b.changes <- c:
	default:
	}
}

func (b *Bridge) releaseInputs() {
	for _, stop := range b.stops {
		stop()
	}
	b.stops = nil
}

func (b *Bridge) shutdown() {
	b.releaseInputs()
	if err := b.out.Close(); err != nil {
		b.logger.Warn("organ: closing output", "err", err)
	}
	close(b.changes)
	close(b.done)
	b.logger.Info("organ: bridge stopped")
}
