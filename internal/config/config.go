package config

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/obsidian/internal/protocol/frame"
	"github.com/danmuck/obsidian/internal/protocol/schema"
	"github.com/danmuck/obsidian/internal/protocol/wire"
	"github.com/pkg/errors"
)

type CodecConfig struct {
	Growth          string
	InitialCapacity int
	MaxBufferBytes  int
	LenientBool     bool
}

type FrameConfig struct {
	MaxFrameBytes uint32
}

type MessageConfig struct {
	ID         uint32
	Name       string
	Descriptor string
}

type Config struct {
	Codec    CodecConfig
	Frame    FrameConfig
	Messages []MessageConfig
}

type fileConfig struct {
	Codec struct {
		Growth          string `toml:"growth"`
		InitialCapacity int    `toml:"initial_capacity"`
		MaxBufferBytes  int    `toml:"max_buffer_bytes"`
		LenientBool     bool   `toml:"lenient_bool"`
	} `toml:"codec"`
	Frame struct {
		MaxFrameBytes uint32 `toml:"max_frame_bytes"`
	} `toml:"frame"`
	Messages []struct {
		ID         uint32 `toml:"id"`
		Name       string `toml:"name"`
		Descriptor string `toml:"descriptor"`
	} `toml:"messages"`
}

func Default() Config {
	opts := wire.DefaultOptions()
	return Config{
		Codec: CodecConfig{
			Growth:          opts.Growth.String(),
			InitialCapacity: opts.InitialCapacity,
			MaxBufferBytes:  opts.MaxBufferBytes,
			LenientBool:     opts.LenientBool,
		},
		Frame: FrameConfig{
			MaxFrameBytes: frame.DefaultLimits().MaxFrameBytes,
		},
	}
}

// Load reads a TOML config file. Keys that are not set keep their defaults.
func Load(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config load failed (%s)", path)
	}
	return resolve(raw, meta)
}

// Parse is Load for in-memory TOML.
func Parse(data string) (Config, error) {
	var raw fileConfig
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return Config{}, errors.Wrap(err, "config parse failed")
	}
	return resolve(raw, meta)
}

func resolve(raw fileConfig, meta toml.MetaData) (Config, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Errorf("config has unknown key %q", undecoded[0].String())
	}

	cfg := Default()
	if meta.IsDefined("codec", "growth") {
		cfg.Codec.Growth = strings.TrimSpace(raw.Codec.Growth)
	}
	if meta.IsDefined("codec", "initial_capacity") {
		cfg.Codec.InitialCapacity = raw.Codec.InitialCapacity
	}
	if meta.IsDefined("codec", "max_buffer_bytes") {
		cfg.Codec.MaxBufferBytes = raw.Codec.MaxBufferBytes
	}
	if meta.IsDefined("codec", "lenient_bool") {
		cfg.Codec.LenientBool = raw.Codec.LenientBool
	}
	if meta.IsDefined("frame", "max_frame_bytes") {
		cfg.Frame.MaxFrameBytes = raw.Frame.MaxFrameBytes
	}
	for _, m := range raw.Messages {
		cfg.Messages = append(cfg.Messages, MessageConfig{
			ID:         m.ID,
			Name:       strings.TrimSpace(m.Name),
			Descriptor: strings.TrimSpace(m.Descriptor),
		})
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := wire.ParseGrowth(c.Codec.Growth); err != nil {
		return errors.Wrap(err, "codec.growth")
	}
	if c.Codec.InitialCapacity < 0 {
		return errors.New("codec.initial_capacity must not be negative")
	}
	if c.Codec.MaxBufferBytes < 0 {
		return errors.New("codec.max_buffer_bytes must not be negative")
	}
	if c.Frame.MaxFrameBytes == 0 {
		return errors.New("frame.max_frame_bytes must be positive")
	}
	for i, m := range c.Messages {
		if m.Name == "" {
			return errors.Errorf("messages[%d] missing name", i)
		}
		if _, err := wire.ParseDescriptor(m.Descriptor); err != nil {
			return errors.Wrapf(err, "messages[%d] (%s)", i, m.Name)
		}
	}
	return nil
}

func (c Config) CodecOptions() (wire.Options, error) {
	growth, err := wire.ParseGrowth(c.Codec.Growth)
	if err != nil {
		return wire.Options{}, err
	}
	return wire.Options{
		Growth:          growth,
		InitialCapacity: c.Codec.InitialCapacity,
		MaxBufferBytes:  c.Codec.MaxBufferBytes,
		LenientBool:     c.Codec.LenientBool,
	}, nil
}

func (c Config) FrameLimits() frame.Limits {
	return frame.Limits{MaxFrameBytes: c.Frame.MaxFrameBytes}
}

// Registry builds the message registry declared by the config.
func (c Config) Registry(codec *wire.Codec) (*schema.Registry, error) {
	msgs := make([]schema.Message, 0, len(c.Messages))
	for _, m := range c.Messages {
		d, err := wire.ParseDescriptor(m.Descriptor)
		if err != nil {
			return nil, errors.Wrapf(err, "message %s", m.Name)
		}
		msgs = append(msgs, schema.Message{ID: m.ID, Name: m.Name, Descriptor: d})
	}
	return schema.NewRegistry(codec, msgs...)
}
