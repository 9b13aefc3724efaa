// Package command provides the savectl command tree.
package command

import (
	"fmt"

	"github.com/AndrewDonelson/savestate"
	"github.com/AndrewDonelson/savestate/config"
	"github.com/hashicorp/go-hclog"
	"github.com/urfave/cli/v2"
)

const settingsKey = "settings"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "savectl",
		Usage:   "Inspect and edit savestate saves",
		Version: savestate.Version(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			ListCommand(),
			KeysCommand(),
			InfoCommand(),
			ShowCommand(),
			PutCommand(),
			DeleteCommand(),
			DeleteAllCommand(),
			ConfigCommand(),
		},
		Before: func(c *cli.Context) error {
			s, err := ResolveSettings(c)
			if err != nil {
				return err
			}
			if c.App.Metadata == nil {
				c.App.Metadata = make(map[string]any)
			}
			c.App.Metadata[settingsKey] = s
			return nil
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML settings file",
			EnvVars: []string{"SAVESTATE_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "root",
			Aliases: []string{"r"},
			Usage:   "Save directory (overrides settings)",
		},
		&cli.StringFlag{
			Name:  "layout",
			Usage: "Layout: single_file, folder",
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Format for new saves: json, binary, msgpack, protobuf",
		},
		&cli.BoolFlag{
			Name:  "encrypt",
			Usage: "Encrypt new saves",
		},
		&cli.StringFlag{
			Name:    "passphrase",
			Aliases: []string{"p"},
			Usage:   "Encryption passphrase",
			EnvVars: []string{"SAVESTATE_PASSPHRASE"},
		},
		&cli.BoolFlag{
			Name:  "compress",
			Usage: "Compress new saves",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: trace, debug, info, warn, error, off",
		},
	}
}

// ResolveSettings loads settings from --config, ./.env and the environment
// and applies any global flags that were set explicitly.
func ResolveSettings(c *cli.Context) (config.Settings, error) {
	opts := []config.Option{config.WithDotEnv(".env")}
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	s, err := config.Load(opts...)
	if err != nil {
		return config.Settings{}, err
	}

	if c.IsSet("root") {
		s.RootPath = c.String("root")
	}
	if c.IsSet("layout") {
		s.Layout = c.String("layout")
	}
	if c.IsSet("format") {
		s.Format = c.String("format")
	}
	if c.IsSet("passphrase") {
		s.Encryption.Key = c.String("passphrase")
	}
	if c.IsSet("encrypt") {
		s.Encryption.Enabled = c.Bool("encrypt")
	}
	if c.IsSet("compress") {
		s.Compression = c.Bool("compress")
	}
	if c.IsSet("log-level") {
		s.Log.Level = c.String("log-level")
	}
	return s, nil
}

// GetSettings retrieves the settings resolved by the Before hook.
func GetSettings(c *cli.Context) config.Settings {
	if s, ok := c.App.Metadata[settingsKey].(config.Settings); ok {
		return s
	}
	return config.Default()
}

// newLogger builds the hclog logger handed to the store.
func newLogger(c *cli.Context, level string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "savectl",
		Level:  hclog.LevelFromString(level),
		Output: c.App.ErrWriter,
	})
}

// OpenStore opens a store from the resolved settings. Callers must Close it.
func OpenStore(c *cli.Context) (*savestate.Store, error) {
	s := GetSettings(c)
	cfg, err := s.StoreConfig()
	if err != nil {
		return nil, err
	}
	cfg.Logger = newLogger(c, s.Log.Level)
	st, err := savestate.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// withStore runs fn against a freshly opened store.
func withStore(fn func(c *cli.Context, st *savestate.Store) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		st, err := OpenStore(c)
		if err != nil {
			return err
		}
		defer st.Close()
		return fn(c, st)
	}
}

// requireArg returns the first positional argument.
func requireArg(c *cli.Context, name string) (string, error) {
	if c.NArg() < 1 {
		return "", fmt.Errorf("missing %s argument", name)
	}
	return c.Args().First(), nil
}
