// config loads the grid, ripple, server and relay settings from a yaml/toml
// file, HONEYCOMB_* environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"honeycomb/honeycomb"
	"honeycomb/layout"
	"honeycomb/ripple"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that reads and writes as "200ms" in every config format.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

type Footprint struct {
	CellSize          float64 `mapstructure:"cell_size" yaml:"cell_size" toml:"cell_size"`
	HorizontalPacking float64 `mapstructure:"horizontal_packing" yaml:"horizontal_packing" toml:"horizontal_packing"`
	VerticalPacking   float64 `mapstructure:"vertical_packing" yaml:"vertical_packing" toml:"vertical_packing"`
}

type Ripple struct {
	RiseDuration         Duration `mapstructure:"rise_duration" yaml:"rise_duration" toml:"rise_duration"`
	FallDuration         Duration `mapstructure:"fall_duration" yaml:"fall_duration" toml:"fall_duration"`
	DelayPerUnitDistance Duration `mapstructure:"delay_per_unit_distance" yaml:"delay_per_unit_distance" toml:"delay_per_unit_distance"`
	RestingValue         float64  `mapstructure:"resting_value" yaml:"resting_value" toml:"resting_value"`
	PeakValue            float64  `mapstructure:"peak_value" yaml:"peak_value" toml:"peak_value"`
	FrameInterval        Duration `mapstructure:"frame_interval" yaml:"frame_interval" toml:"frame_interval"`
	Easing               string   `mapstructure:"easing" yaml:"easing" toml:"easing"`
}

type Server struct {
	Host string `mapstructure:"host" yaml:"host" toml:"host"`
	Port string `mapstructure:"port" yaml:"port" toml:"port"`
	// PublishInterval is how often frames are pushed to each websocket client.
	PublishInterval Duration `mapstructure:"publish_interval" yaml:"publish_interval" toml:"publish_interval"`
}

type Redis struct {
	Addr     string `mapstructure:"addr" yaml:"addr" toml:"addr"`
	Password string `mapstructure:"password" yaml:"password" toml:"password"`
	DB       int    `mapstructure:"db" yaml:"db" toml:"db"`
	Channel  string `mapstructure:"channel" yaml:"channel" toml:"channel"`
}

type Relay struct {
	// Kind is "local" or "redis".
	Kind  string `mapstructure:"kind" yaml:"kind" toml:"kind"`
	Redis Redis  `mapstructure:"redis" yaml:"redis" toml:"redis"`
}

// Config is the whole application configuration.
type Config struct {
	Shape    []int     `mapstructure:"shape" yaml:"shape" toml:"shape"`
	Layout   Footprint `mapstructure:"layout" yaml:"layout" toml:"layout"`
	Terminal Footprint `mapstructure:"terminal" yaml:"terminal" toml:"terminal"`
	Ripple   Ripple    `mapstructure:"ripple" yaml:"ripple" toml:"ripple"`
	Server   Server    `mapstructure:"server" yaml:"server" toml:"server"`
	Relay    Relay     `mapstructure:"relay" yaml:"relay" toml:"relay"`
}

const envPrefix = "HONEYCOMB"

// setDefaults registers every key, which also lets AutomaticEnv find them.
func setDefaults(vp *viper.Viper) {
	t := ripple.DefaultTiming
	// A string default keeps HONEYCOMB_SHAPE=3,4,5 whole until the comma hook splits it.
	vp.SetDefault("shape", honeycomb.Classic.String())
	vp.SetDefault("layout.cell_size", layout.DefaultFootprint.CellSize)
	vp.SetDefault("layout.horizontal_packing", layout.DefaultFootprint.HorizontalPacking)
	vp.SetDefault("layout.vertical_packing", layout.DefaultFootprint.VerticalPacking)
	// Terminal cells are two characters tall per character wide.
	vp.SetDefault("terminal.cell_size", 8.0)
	vp.SetDefault("terminal.horizontal_packing", 0.85)
	vp.SetDefault("terminal.vertical_packing", 0.5)
	vp.SetDefault("ripple.rise_duration", t.RiseDuration.String())
	vp.SetDefault("ripple.fall_duration", t.FallDuration.String())
	vp.SetDefault("ripple.delay_per_unit_distance", t.DelayPerUnitDistance.String())
	vp.SetDefault("ripple.resting_value", t.RestingValue)
	vp.SetDefault("ripple.peak_value", t.PeakValue)
	vp.SetDefault("ripple.frame_interval", t.FrameInterval.String())
	vp.SetDefault("ripple.easing", string(t.Easing))
	vp.SetDefault("server.host", "")
	vp.SetDefault("server.port", "8080")
	vp.SetDefault("server.publish_interval", "33ms")
	vp.SetDefault("relay.kind", "local")
	vp.SetDefault("relay.redis.addr", "localhost:6379")
	vp.SetDefault("relay.redis.password", "")
	vp.SetDefault("relay.redis.db", 0)
	vp.SetDefault("relay.redis.channel", "")
}

// New returns a viper instance with defaults and env overrides, reading path when it
// is not empty. Viper is stateful, so each load gets its own instance.
func New(path string) (*viper.Viper, error) {
	vp := viper.New()
	setDefaults(vp)
	vp.SetEnvPrefix(envPrefix)
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()

	if path == "" {
		return vp, nil
	}

	vp.SetConfigFile(path)
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext == "" {
		vp.SetConfigType("yaml")
	}
	if err := vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return vp, nil
}

// Decode unmarshals and validates the current state of vp.
func Decode(vp *viper.Viper) (*Config, error) {
	cfg := &Config{}
	hooks := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := vp.Unmarshal(cfg, hooks); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads path (optional), env and defaults into a validated Config.
func Load(path string) (*Config, *viper.Viper, error) {
	vp, err := New(path)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := Decode(vp)
	if err != nil {
		return nil, nil, err
	}
	return cfg, vp, nil
}

// Default is the configuration with no file and no environment.
func Default() *Config {
	vp := viper.New()
	setDefaults(vp)
	cfg, err := Decode(vp)
	if err != nil {
		panic(err)
	}
	return cfg
}

var ErrUnknownRelay = errors.New("unknown relay kind")

// Validate checks every section, so a bad file fails at startup rather than on first tap.
func (cfg *Config) Validate() error {
	if err := cfg.HoneycombShape().Validate(); err != nil {
		return err
	}
	if err := cfg.LayoutFootprint().Validate(); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	if err := cfg.TerminalFootprint().Validate(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := cfg.Timing().Validate(); err != nil {
		return err
	}
	if cfg.Server.PublishInterval <= 0 {
		return fmt.Errorf("server: publish interval must be positive")
	}
	switch cfg.Relay.Kind {
	case "local", "redis":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRelay, cfg.Relay.Kind)
	}
	return nil
}

func (cfg *Config) HoneycombShape() honeycomb.Shape {
	return honeycomb.Shape(cfg.Shape).Clone()
}

func (cfg *Config) LayoutFootprint() layout.Footprint {
	return layout.Footprint(cfg.Layout)
}

func (cfg *Config) TerminalFootprint() layout.Footprint {
	return layout.Footprint(cfg.Terminal)
}

func (cfg *Config) Timing() ripple.Timing {
	return ripple.Timing{
		RiseDuration:         time.Duration(cfg.Ripple.RiseDuration),
		FallDuration:         time.Duration(cfg.Ripple.FallDuration),
		DelayPerUnitDistance: time.Duration(cfg.Ripple.DelayPerUnitDistance),
		RestingValue:         cfg.Ripple.RestingValue,
		PeakValue:            cfg.Ripple.PeakValue,
		FrameInterval:        time.Duration(cfg.Ripple.FrameInterval),
		Easing:               ripple.Easing(cfg.Ripple.Easing),
	}
}

// Addr is the server listen address.
func (cfg *Config) Addr() string {
	return cfg.Server.Host + ":" + cfg.Server.Port
}

// Encode renders the config as "yaml" or "toml".
func (cfg *Config) Encode(format string) ([]byte, error) {
	switch format {
	case "yaml", "yml":
		return yaml.Marshal(cfg)
	case "toml":
		return toml.Marshal(cfg)
	}
	return nil, fmt.Errorf("unsupported config format %q", format)
}
