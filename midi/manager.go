package midi

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DeviceEvent is emitted when the managed input connects or disconnects
type DeviceEvent struct {
	Type DeviceEventType
	Name string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

func (t DeviceEventType) String() string {
	if t == DeviceConnected {
		return "connected"
	}
	return "disconnected"
}

// Lister returns the ports currently present. ListPorts in production.
type Lister func() (Ports, error)

// DeviceManager keeps one input connected, picking it with a Selector and
// reconnecting when it is unplugged and replugged.
type DeviceManager struct {
	selector Selector
	list     Lister
	logger   *slog.Logger
	events   chan DeviceEvent
	pollRate time.Duration

	mu      sync.Mutex
	current string
	stop    func()
}

// NewDeviceManager creates a new device manager. A nil list uses ListPorts.
func NewDeviceManager(sel Selector, list Lister, logger *slog.Logger) *DeviceManager {
	if list == nil {
		list = ListPorts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DeviceManager{
		selector: sel,
		list:     list,
		logger:   logger,
		events:   make(chan DeviceEvent, 16),
		pollRate: time.Second,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Current is the name of the connected input, or "".
func (dm *DeviceManager) Current() string {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return dm.current
}

// Run polls for devices and feeds every message from the connected one to
// onMessage (blocking - run in goroutine). Events is closed on return.
func (dm *DeviceManager) Run(ctx context.Context, onMessage func(msg []byte)) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan(onMessage)

	for {
		select {
		case <-ctx.Done():
			dm.disconnect()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan(onMessage)
		}
	}
}

func (dm *DeviceManager) scan(onMessage func(msg []byte)) {
	ports, err := dm.list()
	if err != nil {
		// skip this scan
		dm.logger.Warn("midi: scan failed", "err", err)
		return
	}
	names := ports.InNames()

	dm.mu.Lock()
	current := dm.current
	dm.mu.Unlock()

	if current != "" {
		for _, n := range names {
			if n == current {
				return
			}
		}
		dm.logger.Warn("midi: device disappeared", "device", current)
		dm.disconnect()
	}

	name, ok := dm.selector.Pick(names)
	if !ok {
		return
	}
	for _, port := range ports.In {
		if port.String() != name {
			continue
		}
		stop, err := NewInput(port, dm.logger).Listen(onMessage)
		if err != nil {
			dm.logger.Error("midi: connect failed", "device", name, "err", err)
			return
		}
		dm.mu.Lock()
		dm.current, dm.stop = name, stop
		dm.mu.Unlock()
		dm.emit(DeviceEvent{Type: DeviceConnected, Name: name})
		return
	}
}

func (dm *DeviceManager) disconnect() {
	dm.mu.Lock()
	name, stop := dm.current, dm.stop
	dm.current, dm.stop = "", nil
	dm.mu.Unlock()

	if stop == nil {
		return
	}
	stop()
	dm.emit(DeviceEvent{Type: DeviceDisconnected, Name: name})
}

func (dm *DeviceManager) emit(ev DeviceEvent) {
	select {
	case dm.events <- ev:
	default:
	}
}
