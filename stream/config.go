package stream

import (
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/bgpfix/bgpstream/filterset"
)

// FileConfig is the declarative, TOML-sourced alternative to configuring a
// Coordinator through its Option/AddXxx calls one at a time — a host
// embedding this module as a CLI tool loads one of these instead of wiring
// flags by hand.
type FileConfig struct {
	DataInterface string            `toml:"data_interface" validate:"required"`
	Options       map[string]string `toml:"options"`

	Collectors   []string `toml:"collectors"`
	Projects     []string `toml:"projects"`
	PeerASN      []uint32 `toml:"peer_asn"`
	Prefixes     []string `toml:"prefixes"`
	ElementTypes []string `toml:"element_types"`

	Begin      uint32 `toml:"begin"`
	End        uint32 `toml:"end"`
	Recent     string `toml:"recent"`
	Live       bool   `toml:"live"`
	RIBPeriod  uint32 `toml:"rib_period"`
	MaxRetries int    `toml:"max_backend_failures" validate:"gte=0"`
}

var validate = validator.New()

// LoadConfig reads and validates a FileConfig from a TOML file.
func LoadConfig(path string) (*FileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg FileConfig
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewFromConfig builds an Allocated Coordinator from a FileConfig, applying
// every configured filter and data-interface option before the caller calls
// Start.
func NewFromConfig(cfg *FileConfig, opts ...Option) (*Coordinator, error) {
	c := New(opts...)

	if cfg.MaxRetries > 0 {
		c.maxFailures = cfg.MaxRetries
	}
	if cfg.Live {
		c.SetLiveMode()
	}

	if err := c.SetDataInterface(cfg.DataInterface); err != nil {
		return nil, err
	}
	for name, value := range cfg.Options {
		if err := c.SetDataInterfaceOption(name, value); err != nil {
			return nil, err
		}
	}

	for _, v := range cfg.Collectors {
		if err := c.AddFilter(filterset.KindCollector, v); err != nil {
			return nil, err
		}
	}
	for _, v := range cfg.Projects {
		if err := c.AddFilter(filterset.KindProject, v); err != nil {
			return nil, err
		}
	}
	for _, v := range cfg.PeerASN {
		if err := c.AddFilter(filterset.KindPeerASN, strconv.FormatUint(uint64(v), 10)); err != nil {
			return nil, err
		}
	}
	for _, v := range cfg.Prefixes {
		if err := c.AddFilter(filterset.KindPrefix, v); err != nil {
			return nil, err
		}
	}
	for _, v := range cfg.ElementTypes {
		if err := c.AddFilter(filterset.KindElementType, v); err != nil {
			return nil, err
		}
	}

	if cfg.RIBPeriod > 0 {
		if err := c.AddRIBPeriodFilter(cfg.RIBPeriod); err != nil {
			return nil, err
		}
	}

	switch {
	case cfg.Recent != "":
		if err := c.AddRecentInterval(cfg.Recent); err != nil {
			return nil, err
		}
	case cfg.Begin != 0 || cfg.End != 0:
		end := cfg.End
		if cfg.Live {
			end = filterset.Forever
		}
		if err := c.AddInterval(cfg.Begin, end); err != nil {
			return nil, err
		}
	}

	return c, nil
}
