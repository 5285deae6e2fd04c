package main

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/rl1809/inventory-tracker/internal/adapter/csvio"
	"github.com/rl1809/inventory-tracker/internal/core/domain"
)

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "replace the inventory with a comma or tab separated file",
		ArgsUsage: "<file|->",
		Flags:     credentialFlags(),
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("import needs exactly one file argument", 2)
			}

			text, err := readInput(c.Args().First())
			if err != nil {
				return err
			}

			items, err := csvio.ParseItems(text)
			if err != nil {
				return err
			}

			return withRuntime(c, func(rt *runtime) error {
				session, err := rt.login(c)
				if err != nil {
					return err
				}

				n, err := rt.inventory.Import(c.Context, session, items)
				if err != nil {
					return err
				}
				log.WithField("items", n).Info("import finished")
				return nil
			})
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write items or logs to a file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "what", Value: "items", Usage: "items or logs"},
			&cli.StringFlag{Name: "format", Value: "csv", Usage: "csv or xlsx (items only)"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "-", Usage: "output file, - for stdout"},
		},
		Action: func(c *cli.Context) error {
			return withRuntime(c, func(rt *runtime) error {
				items, logs, err := rt.inventory.LoadAll(c.Context)
				if err != nil {
					return err
				}

				w, closeFn, err := openOutput(c.String("out"))
				if err != nil {
					return err
				}
				return writeExport(w, closeFn, c.String("what"), c.String("format"), items, logs)
			})
		},
	}
}

func clearCommand() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "delete all items and log entries",
		Flags: append(credentialFlags(), &cli.BoolFlag{Name: "yes", Usage: "confirm the irreversible delete"}),
		Action: func(c *cli.Context) error {
			if !c.Bool("yes") {
				return cli.Exit("refusing to clear without --yes", 2)
			}
			return withRuntime(c, func(rt *runtime) error {
				session, err := rt.login(c)
				if err != nil {
					return err
				}
				return rt.inventory.ClearAll(c.Context, session)
			})
		},
	}
}

func withRuntime(c *cli.Context, fn func(rt *runtime) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rt, err := newRuntime(c.Context, cfg)
	if err != nil {
		return err
	}
	defer rt.close()

	return fn(rt)
}

func readInput(path string) (string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// writeExport renders items or logs to w and closes it. A failed close is
// returned so a partially flushed file is not reported as written.
func writeExport(w io.Writer, closeFn func() error, what, format string, items []domain.Item, logs []domain.LogEntry) (err error) {
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()

	switch {
	case what == "logs":
		return csvio.WriteLogs(w, logs)
	case format == "xlsx":
		return csvio.WriteItemsXLSX(w, items)
	case format == "csv":
		return csvio.WriteItems(w, items)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
