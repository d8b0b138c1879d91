package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/pkordes/eventmap/internal/app"
	"github.com/pkordes/eventmap/internal/config"
	"github.com/pkordes/eventmap/internal/domain"
	"github.com/pkordes/eventmap/internal/export"
)

// newApp builds the CLI. Command output goes to out; logs go to stderr.
func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:  "eventctl",
		Usage: "Manage the events shown on the map.",
		Commands: []*cli.Command{
			listCommand(out),
			addCommand(out),
			deleteCommand(out),
			clearCommand(out),
			exportCommand(out),
		},
	}
}

// withEngine loads config, opens the configured storage and runs fn.
func withEngine(c *cli.Context, fn func(*app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := app.NewLogger(os.Stderr, cfg.LogLevel, false)

	engine, err := app.New(c.Context, cfg, logger)
	if err != nil {
		return err
	}
	defer engine.Close()
	return fn(engine)
}

func listCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List events with their status.",
		Action: func(c *cli.Context) error {
			return withEngine(c, func(a *app.App) error {
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tSTART\tCOLOR\tSTATUS")
				for _, es := range a.Controller.Events() {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
						es.Event.ID,
						es.Event.Title,
						es.Event.StartDate.In(a.Store.Location()).Format("2006-01-02 15:04"),
						es.Status.Color(),
						es.Status.Label,
					)
				}
				return tw.Flush()
			})
		},
	}
}

func addCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Create an event.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Required: true},
			&cli.StringFlag{Name: "description", Required: true},
			&cli.StringFlag{Name: "start", Required: true, Usage: "ISO date-time, e.g. 2025-06-21T18:00"},
			&cli.StringFlag{Name: "end", Required: true, Usage: "ISO date-time"},
			&cli.StringFlag{Name: "lat", Required: true, Usage: "latitude in decimal degrees"},
			&cli.StringFlag{Name: "lon", Required: true, Usage: "longitude in decimal degrees"},
		},
		Action: func(c *cli.Context) error {
			fields := domain.EventFields{
				Title:       c.String("title"),
				Description: c.String("description"),
				StartDate:   c.String("start"),
				EndDate:     c.String("end"),
				Latitude:    c.String("lat"),
				Longitude:   c.String("lon"),
			}
			return withEngine(c, func(a *app.App) error {
				e, err := a.Controller.SubmitCreate(c.Context, fields)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, e.ID)
				return nil
			})
		},
	}
}

func deleteCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete events by ID. Unknown IDs are ignored.",
		ArgsUsage: "ID [ID...]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return errors.New("at least one event ID is required")
			}
			return withEngine(c, func(a *app.App) error {
				for _, id := range c.Args().Slice() {
					if err := a.Controller.Delete(c.Context, id); err != nil {
						return err
					}
				}
				fmt.Fprintf(out, "%d events remaining\n", len(a.Store.All()))
				return nil
			})
		},
	}
}

func clearCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Delete every event.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Usage: "Confirm deleting every event."},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("yes") {
				return errors.New("refusing to delete every event without --yes")
			}
			return withEngine(c, func(a *app.App) error {
				if err := a.Controller.ClearAll(c.Context); err != nil {
					return err
				}
				fmt.Fprintln(out, "all events deleted")
				return nil
			})
		},
	}
}

func exportCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write every event as JSON, CSV or an iCalendar feed.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Value: "json", Usage: "json, csv or ics"},
			&cli.StringFlag{Name: "out", Usage: "write to this file instead of stdout"},
		},
		Action: func(c *cli.Context) error {
			format := strings.ToLower(c.String("format"))
			if format != "json" && format != "csv" && format != "ics" {
				return fmt.Errorf("unknown format %q", format)
			}
			return withEngine(c, func(a *app.App) error {
				w := out
				if path := c.String("out"); path != "" {
					f, err := os.Create(path)
					if err != nil {
						return fmt.Errorf("create %s: %w", path, err)
					}
					defer f.Close()
					w = f
				}

				switch format {
				case "csv":
					return export.WriteCSV(w, a.Export.Export())
				case "ics":
					_, err := io.WriteString(w, export.Calendar(a.Export.Events(), a.Export.Now()))
					return err
				default:
					enc := json.NewEncoder(w)
					enc.SetIndent("", "  ")
					return enc.Encode(a.Export.Export())
				}
			})
		},
	}
}
