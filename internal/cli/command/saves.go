package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/AndrewDonelson/savestate"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

func keyFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "key",
		Usage: "Data key inside a folder save (empty = whole save / default entry)",
	}
}

// ListCommand lists saves under the root.
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List saves",
		Action:  withStore(listSaves),
	}
}

// KeysCommand lists data keys of a folder save.
func KeysCommand() *cli.Command {
	return &cli.Command{
		Name:      "keys",
		Usage:     "List data keys of a folder save",
		ArgsUsage: "SAVE_ID",
		Action:    withStore(listKeys),
	}
}

// InfoCommand prints size and timestamps of a save.
func InfoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Show size and timestamps of a save",
		ArgsUsage: "SAVE_ID",
		Flags:     []cli.Flag{keyFlag()},
		Action:    withStore(showInfo),
	}
}

// ShowCommand decodes a save and prints it as JSON.
func ShowCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Decode a save and print it as JSON (json and msgpack saves)",
		ArgsUsage: "SAVE_ID",
		Flags:     []cli.Flag{keyFlag()},
		Action:    withStore(showSave),
	}
}

// PutCommand writes a JSON document as a save.
func PutCommand() *cli.Command {
	return &cli.Command{
		Name:      "put",
		Usage:     "Write a JSON document as a save",
		ArgsUsage: "SAVE_ID",
		Flags: []cli.Flag{
			keyFlag(),
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "JSON document to store (- for stdin)", Required: true},
			&cli.StringFlag{Name: "name", Usage: "Display name"},
			&cli.StringFlag{Name: "description", Usage: "Description"},
		},
		Action: withStore(putSave),
	}
}

// DeleteCommand removes a save or one entry.
func DeleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete a save, or one entry with --key",
		ArgsUsage: "SAVE_ID",
		Flags:     []cli.Flag{keyFlag()},
		Action:    withStore(deleteSave),
	}
}

// DeleteAllCommand removes every save under the root.
func DeleteAllCommand() *cli.Command {
	return &cli.Command{
		Name:  "delete-all",
		Usage: "Delete every save for the current layout",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm"},
		},
		Action: withStore(deleteAll),
	}
}

func listSaves(c *cli.Context, st *savestate.Store) error {
	ids, err := st.List()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSIZE\tMODIFIED")
	for _, id := range ids {
		name, size, modified := id, "-", "-"
		if m, err := st.Metadata(id); err == nil {
			name = m.Name
		}
		if info, err := st.Info(id, ""); err == nil {
			size = info.FormattedSize()
			modified = info.ModifiedAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", id, name, size, modified)
	}
	return w.Flush()
}

func listKeys(c *cli.Context, st *savestate.Store) error {
	id, err := requireArg(c, "SAVE_ID")
	if err != nil {
		return err
	}
	keys, err := st.ListDataKeys(id)
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Fprintln(c.App.Writer, k)
	}
	return nil
}

func showInfo(c *cli.Context, st *savestate.Store) error {
	id, err := requireArg(c, "SAVE_ID")
	if err != nil {
		return err
	}
	info, err := st.Info(id, c.String("key"))
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", info.SaveID)
	if info.DataKey != "" {
		fmt.Fprintf(w, "Key:\t%s\n", info.DataKey)
	}
	fmt.Fprintf(w, "Path:\t%s\n", info.Path)
	fmt.Fprintf(w, "Layout:\t%s\n", info.Layout)
	fmt.Fprintf(w, "Format:\t%s\n", info.Format)
	fmt.Fprintf(w, "Size:\t%s (%d bytes, %d entries)\n", info.FormattedSize(), info.SizeBytes, info.Entries)
	fmt.Fprintf(w, "Created:\t%s (%s)\n", info.CreatedAt.Format(time.RFC3339), humanize.Time(info.CreatedAt))
	fmt.Fprintf(w, "Modified:\t%s (%s)\n", info.ModifiedAt.Format(time.RFC3339), humanize.Time(info.ModifiedAt))
	if m, err := st.Metadata(id); err == nil {
		fmt.Fprintf(w, "Name:\t%s\n", m.Name)
		if m.Description != "" {
			fmt.Fprintf(w, "Description:\t%s\n", m.Description)
		}
		fmt.Fprintf(w, "Encrypted:\t%t\n", m.Encrypted)
		fmt.Fprintf(w, "Compressed:\t%t\n", m.Compressed)
	}
	return w.Flush()
}

func showSave(c *cli.Context, st *savestate.Store) error {
	id, err := requireArg(c, "SAVE_ID")
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := st.Load(id, c.String("key"), &doc); err != nil {
		return err
	}
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func putSave(c *cli.Context, st *savestate.Store) error {
	id, err := requireArg(c, "SAVE_ID")
	if err != nil {
		return err
	}
	raw, err := readInput(c.App.Reader, c.String("file"))
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", c.String("file"), err)
	}
	var opts []savestate.SaveOption
	if n := c.String("name"); n != "" {
		opts = append(opts, savestate.WithName(n))
	}
	if d := c.String("description"); d != "" {
		opts = append(opts, savestate.WithDescription(d))
	}
	if err := st.Save(id, c.String("key"), doc, opts...); err != nil {
		return err
	}
	path, _ := st.SavePath(id, c.String("key"))
	fmt.Fprintf(c.App.Writer, "saved %s (%s)\n", id, path)
	return nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func deleteSave(c *cli.Context, st *savestate.Store) error {
	id, err := requireArg(c, "SAVE_ID")
	if err != nil {
		return err
	}
	ok, err := st.Delete(id, c.String("key"))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", savestate.ErrNotFound, id)
	}
	fmt.Fprintf(c.App.Writer, "deleted %s\n", id)
	return nil
}

var errNotConfirmed = errors.New("refusing to delete every save without --yes")

func deleteAll(c *cli.Context, st *savestate.Store) error {
	if !c.Bool("yes") {
		return errNotConfirmed
	}
	n, err := st.DeleteAll()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "deleted %s saves\n", humanize.Comma(int64(n)))
	return nil
}
