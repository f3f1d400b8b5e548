package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/nyejames/midi-lx/chamsys"
	"github.com/nyejames/midi-lx/midi"
	"github.com/nyejames/midi-lx/organ"
)

// DeskConfig describes the lighting desk and how to reach it
type DeskConfig struct {
	IP      string `yaml:"ip,omitempty"`
	LocalIP string `yaml:"local_ip,omitempty"`
	Port    uint16 `yaml:"port,omitempty"`
	Framed  bool   `yaml:"framed,omitempty"`
}

// InputConfig chooses the controller input. Port, when set, names one input
// directly; otherwise the patterns drive hot-plug selection.
type InputConfig struct {
	Port      string   `yaml:"port,omitempty"`
	Preferred []string `yaml:"preferred,omitempty"`
	Excluded  []string `yaml:"excluded,omitempty"`
}

// OrganConfig defines the organ output. Serial wins over Output when both are set.
type OrganConfig struct {
	Output string         `yaml:"output,omitempty"`
	Input  string         `yaml:"input,omitempty"`
	Serial string         `yaml:"serial,omitempty"`
	Baud   int            `yaml:"baud,omitempty"`
	Notes  map[int]string `yaml:"notes,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Desk    DeskConfig     `yaml:"desk"`
	Input   InputConfig    `yaml:"input"`
	Slots   map[int]string `yaml:"slots,omitempty"`
	Organ   OrganConfig    `yaml:"organ"`
	HTTP    string         `yaml:"http,omitempty"`
	Palette string         `yaml:"palette,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Desk: DeskConfig{
			Port: chamsys.DefaultPort,
		},
		Input: InputConfig{
			Excluded: append([]string(nil), midi.DefaultExcluded...),
		},
		Organ: OrganConfig{
			Baud: organ.DINBaud,
		},
	}
}

// Dir returns the config directory path
func Dir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "midi-lx"), nil
}

// Path returns the full path to config.yaml
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config at path, or at Path() when path is empty. A missing
// file yields the defaults. The file is never written back.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = p
	} else {
		p, err := homedir.Expand(path)
		if err != nil {
			return nil, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field that is parsed later, so mistakes surface at
// load time.
func (c *Config) Validate() error {
	if _, err := c.DeskAddr(); err != nil {
		return err
	}
	if _, err := c.LocalAddr(); err != nil {
		return err
	}
	if _, err := c.SlotTable(); err != nil {
		return fmt.Errorf("slots: %w", err)
	}
	if _, err := c.NoteMap(); err != nil {
		return fmt.Errorf("organ notes: %w", err)
	}
	return nil
}

// DeskAddr is the desk IP, or the zero Addr when none is configured.
func (c *Config) DeskAddr() (netip.Addr, error) {
	return parseIPv4("desk ip", c.Desk.IP)
}

// LocalAddr is the address to send from; unset means any interface.
func (c *Config) LocalAddr() (netip.Addr, error) {
	return parseIPv4("local ip", c.Desk.LocalIP)
}

func (c *Config) SlotTable() (chamsys.SlotTable, error) {
	return chamsys.ParseSlotTable(c.Slots)
}

// NoteMap returns the configured organ note map, or the default layout
// when none is configured.
func (c *Config) NoteMap() (organ.NoteMap, error) {
	if len(c.Organ.Notes) == 0 {
		return organ.DefaultNoteMap(), nil
	}
	return organ.ParseNoteMap(c.Organ.Notes)
}

func (c *Config) Selector() midi.Selector {
	return midi.Selector{Preferred: c.Input.Preferred, Excluded: c.Input.Excluded}
}

func parseIPv4(field, s string) (netip.Addr, error) {
	if s == "" {
		return netip.Addr{}, nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%s: %w", field, err)
	}
	addr = addr.Unmap()
	if !addr.Is4() {
		return netip.Addr{}, fmt.Errorf("%s: %s is not IPv4", field, s)
	}
	return addr, nil
}
