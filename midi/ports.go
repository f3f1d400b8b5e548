package midi

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// ScanTimeout bounds a port listing; CoreMIDI has been seen to hang.
const ScanTimeout = 3 * time.Second

var ErrScanTimeout = errors.New("midi port scan timed out")

// Ports is a snapshot of the system's MIDI ports.
type Ports struct {
	In  []drivers.In
	Out []drivers.Out
}

// ListPorts returns the current ports, giving up after ScanTimeout.
func ListPorts() (Ports, error) {
	ch := make(chan Ports, 1)
	go func() {
		ch <- Ports{In: gomidi.GetInPorts(), Out: gomidi.GetOutPorts()}
	}()

	select {
	case p := <-ch:
		return p, nil
	case <-time.After(ScanTimeout):
		return Ports{}, ErrScanTimeout
	}
}

// InNames returns the input port names in driver order.
func (p Ports) InNames() []string {
	names := make([]string, len(p.In))
	for i, in := range p.In {
		names[i] = in.String()
	}
	return names
}

func (p Ports) OutNames() []string {
	names := make([]string, len(p.Out))
	for i, out := range p.Out {
		names[i] = out.String()
	}
	return names
}

// FindIn returns the first input whose name contains name, ignoring case.
func (p Ports) FindIn(name string) (drivers.In, error) {
	for _, in := range p.In {
		if containsCI(in.String(), name) {
			return in, nil
		}
	}
	return nil, fmt.Errorf("no midi input matching %q", name)
}

// FindOut returns the first output whose name contains name, ignoring case.
func (p Ports) FindOut(name string) (drivers.Out, error) {
	for _, out := range p.Out {
		if containsCI(out.String(), name) {
			return out, nil
		}
	}
	return nil, fmt.Errorf("no midi output matching %q", name)
}

// Selector picks which input to connect to automatically.
type Selector struct {
	Preferred []string
	Excluded  []string
}

// DefaultExcluded are virtual ports that never carry controller input.
var DefaultExcluded = []string{"Midi Through", "Through Port", "Dummy"}

// Pick returns the first name matching a preferred pattern, in pattern order.
// Without a preferred match a lone candidate is picked. Excluded names are
// never picked.
func (s Selector) Pick(names []string) (string, bool) {
	var candidates []string
	for _, name := range names {
		if !s.excluded(name) {
			candidates = append(candidates, name)
		}
	}
	for _, pat := range s.Preferred {
		for _, name := range candidates {
			if containsCI(name, pat) {
				return name, true
			}
		}
	}
	if len(candidates) == 1 {
		return candidates[0], true
	}
	return "", false
}

func (s Selector) excluded(name string) bool {
	for _, pat := range s.Excluded {
		if containsCI(name, pat) {
			return true
		}
	}
	return false
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
