package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/danmuck/obsidian/internal/config"
	"github.com/danmuck/obsidian/internal/logging"
	"github.com/danmuck/obsidian/internal/observability"
	"github.com/danmuck/obsidian/internal/protocol/frame"
	"github.com/danmuck/obsidian/internal/protocol/schema"
	"github.com/danmuck/obsidian/internal/protocol/wire"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "obsidianctl",
		Usage: "pack and unpack obsidian wire messages",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a TOML config",
				EnvVars: []string{"OBSIDIAN_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "trace, debug, info, warn, error or off",
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "print codec metrics after the command",
			},
		},
		Before: func(c *cli.Context) error {
			if c.IsSet("log-level") {
				zerolog.SetGlobalLevel(logging.ParseLevel(c.String("log-level")))
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if !c.Bool("metrics") {
				return nil
			}
			return writeMetrics(c)
		},
		Commands: []*cli.Command{
			packCommand(),
			unpackCommand(),
			frameCommand(),
			messagesCommand(),
			configCommand(),
		},
	}
}

type env struct {
	cfg      config.Config
	codec    *wire.Codec
	registry *schema.Registry
}

func loadEnv(c *cli.Context) (env, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return env{}, err
		}
		cfg = loaded
		log.Debug().Str("path", path).Msg("loaded config")
	}
	opts, err := cfg.CodecOptions()
	if err != nil {
		return env{}, err
	}
	opts.Observer = observability.NewCodecObserver("obsidianctl")
	codec := wire.New(opts)
	registry, err := cfg.Registry(codec)
	if err != nil {
		return env{}, err
	}
	return env{cfg: cfg, codec: codec, registry: registry}, nil
}

func writeMetrics(c *cli.Context) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "obsidian_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(c.App.Writer, mf); err != nil {
			return err
		}
	}
	return nil
}

func packCommand() *cli.Command {
	return &cli.Command{
		Name:      "pack",
		Usage:     "pack arguments and print the bytes as hex",
		ArgsUsage: "VALUE...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "field descriptor, e.g. 14s"},
			&cli.StringFlag{Name: "message", Aliases: []string{"m"}, Usage: "registered message name; output is a full frame"},
		},
		Action: func(c *cli.Context) error {
			e, err := loadEnv(c)
			if err != nil {
				return err
			}
			args := make([]any, 0, c.NArg())
			for _, a := range c.Args().Slice() {
				args = append(args, a)
			}

			var raw []byte
			if name := c.String("message"); name != "" {
				m, ok := e.registry.LookupName(name)
				if !ok {
					return errors.Wrapf(schema.ErrUnknownMessage, "name %q", name)
				}
				fields, err := m.Descriptor.Bind(args...)
				if err != nil {
					return err
				}
				f, err := e.registry.Encode(m.ID, fields...)
				if err != nil {
					return err
				}
				if raw, err = frame.EncodeFrame(f, e.cfg.FrameLimits()); err != nil {
					return err
				}
			} else {
				format := c.String("format")
				if format == "" {
					return errors.New("pack: --format or --message is required")
				}
				fields, err := wire.Bind(format, args...)
				if err != nil {
					return err
				}
				if raw, err = e.codec.Encode(fields...); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintln(c.App.Writer, hex.EncodeToString(raw))
			return err
		},
	}
}

func unpackCommand() *cli.Command {
	return &cli.Command{
		Name:      "unpack",
		Usage:     "decode hex bytes and print one field per line",
		ArgsUsage: "HEX...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "field descriptor, e.g. 14s"},
			&cli.BoolFlag{Name: "framed", Usage: "input is a frame; decode with the registered message for its id"},
		},
		Action: func(c *cli.Context) error {
			e, err := loadEnv(c)
			if err != nil {
				return err
			}
			raw, err := hexArgs(c, "unpack")
			if err != nil {
				return err
			}

			var (
				fields   []wire.Field
				consumed int
			)
			if c.Bool("framed") {
				f, n, err := frame.DecodeFrame(raw, e.cfg.FrameLimits())
				if err != nil {
					return err
				}
				if fields, err = e.registry.Decode(f); err != nil {
					return err
				}
				m, _ := e.registry.Lookup(f.ID)
				fmt.Fprintf(c.App.Writer, "message=%s id=%d\n", m.Name, f.ID)
				consumed = n
			} else {
				format := c.String("format")
				if format == "" {
					return errors.New("unpack: --format or --framed is required")
				}
				if fields, consumed, err = e.codec.DecodeRaw(raw, format); err != nil {
					return err
				}
			}
			for i, f := range fields {
				fmt.Fprintf(c.App.Writer, "%d\t%s\n", i, f)
			}
			_, err = fmt.Fprintf(c.App.Writer, "consumed=%d remaining=%d\n", consumed, len(raw)-consumed)
			return err
		},
	}
}

func frameCommand() *cli.Command {
	return &cli.Command{
		Name:      "frame",
		Usage:     "wrap a packed payload with a packet id and print the frame as hex",
		ArgsUsage: "HEX...",
		Flags: []cli.Flag{
			&cli.UintFlag{Name: "id", Usage: "packet id", Required: true},
		},
		Action: func(c *cli.Context) error {
			e, err := loadEnv(c)
			if err != nil {
				return err
			}
			payload, err := hexArgs(c, "frame")
			if err != nil {
				return err
			}
			raw, err := frame.EncodeFrame(frame.Frame{ID: uint32(c.Uint("id")), Payload: payload}, e.cfg.FrameLimits())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, hex.EncodeToString(raw))
			return err
		},
	}
}

// hexArgs joins the positional arguments, dropping whitespace, and decodes
// them as hex.
func hexArgs(c *cli.Context, cmd string) ([]byte, error) {
	raw, err := hex.DecodeString(strings.Join(strings.Fields(strings.Join(c.Args().Slice(), " ")), ""))
	if err != nil {
		return nil, errors.Wrapf(err, "%s: invalid hex input", cmd)
	}
	return raw, nil
}

func messagesCommand() *cli.Command {
	return &cli.Command{
		Name:  "messages",
		Usage: "list the messages declared in the config",
		Action: func(c *cli.Context) error {
			e, err := loadEnv(c)
			if err != nil {
				return err
			}
			for _, m := range e.registry.Messages() {
				fmt.Fprintf(c.App.Writer, "0x%02x\t%s\t%s\n", m.ID, m.Name, m.Descriptor)
			}
			return nil
		},
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "config helpers",
		Subcommands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "write a starter config",
				ArgsUsage: "PATH",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "overwrite an existing file"},
				},
				Action: func(c *cli.Context) error {
					path := c.Args().First()
					if path == "" {
						return errors.New("config init: PATH is required")
					}
					if err := config.WriteTemplate(path, c.Bool("force")); err != nil {
						return err
					}
					log.Info().Str("path", path).Msg("wrote config")
					return nil
				},
			},
		},
	}
}
