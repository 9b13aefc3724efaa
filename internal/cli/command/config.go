package command

import (
	"fmt"

	"github.com/AndrewDonelson/savestate/config"
	"github.com/urfave/cli/v2"
)

// DefaultConfigFile is written by "config init" when neither an argument nor
// --config names a file.
const DefaultConfigFile = "savestate.yaml"

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Settings management",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the resolved settings as YAML (passphrase masked)",
				Action: configShow,
			},
			{
				Name:      "init",
				Usage:     "Write the resolved settings to a YAML file",
				ArgsUsage: "[FILE]",
				Action:    configInit,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	b, err := GetSettings(c).Redacted().YAML()
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(b)
	return err
}

// configInit writes the resolved settings. An empty root path is replaced by
// the directory a store would actually use.
func configInit(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		path = c.String("config")
	}
	if path == "" {
		path = DefaultConfigFile
	}
	s := GetSettings(c)
	if s.RootPath == "" {
		st, err := OpenStore(c)
		if err != nil {
			return err
		}
		s.RootPath = config.FromStore(st).RootPath
		st.Close()
	}
	if err := s.Write(path); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "wrote %s\n", path)
	return nil
}
