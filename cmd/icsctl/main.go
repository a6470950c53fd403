// Command icsctl inspects and normalizes iCalendar files through the
// calendraft codec.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/calendraft/ics"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	app := &cli.App{
		Name:  "icsctl",
		Usage: "inspect and normalize iCalendar files",
		Commands: []*cli.Command{
			{
				Name:      "inspect",
				Usage:     "parse an ICS file and report its events and diagnostics",
				ArgsUsage: "<file>",
				Action: func(c *cli.Context) error {
					return inspect(c, logger)
				},
			},
			{
				Name:      "normalize",
				Usage:     "parse an ICS file and re-emit it through the generator",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "calendar name for the emitted document"},
					&cli.BoolFlag{Name: "fold", Usage: "fold emitted lines at 75 octets"},
				},
				Action: func(c *cli.Context) error {
					return normalize(c, logger)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatal().Err(err).Msg("icsctl failed")
	}
}

func parseFile(c *cli.Context, logger zerolog.Logger) ([]ics.Event, error) {
	if c.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one file argument")
	}
	path := c.Args().First()
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	events, diags := ics.Parse(string(body))
	for _, d := range diags {
		logger.Warn().Str("file", path).Msg(d)
	}
	logger.Info().Str("file", path).
		Int("events", len(events)).
		Int("diagnostics", len(diags)).
		Msg("parsed")
	return events, nil
}

func inspect(c *cli.Context, logger zerolog.Logger) error {
	events, err := parseFile(c, logger)
	if err != nil {
		return err
	}
	for _, ev := range events {
		fmt.Printf("%s  %s .. %s  %s\n",
			ev.UID,
			ics.FormatInstant(ev.Start),
			ics.FormatInstant(ev.End),
			ev.Title,
		)
	}
	return nil
}

func normalize(c *cli.Context, logger zerolog.Logger) error {
	events, err := parseFile(c, logger)
	if err != nil {
		return err
	}
	opts := []ics.GenerateOption{}
	if c.Bool("fold") {
		opts = append(opts, ics.WithLineFolding())
	}
	fmt.Print(ics.Generate(c.String("name"), events, opts...))
	return nil
}
