package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/bodgit/lsb"
	"github.com/urfave/cli/v2"
)

const defaultDB = "lsb.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLSB(cfg config) (*lsb.LSB, error) {
	logger := log.New(ioutil.Discard, "", 0)
	if cfg.Verbose {
		logger.SetOutput(os.Stderr)
	}

	l, err := lsb.New(cfg.DB, logger)
	if err != nil {
		return nil, err
	}
	l.SetWorkers(cfg.Workers)

	return l, nil
}

// outputPath adds the configured format as an extension when output has none.
func outputPath(output, format string) string {
	if filepath.Ext(output) == "" && format != "" {
		return output + "." + format
	}
	return output
}

// newApp builds the command line application. The settings resolved from
// defaults, the configuration file and flags are stored in cfg before any
// command runs.
func newApp(cwd string, cfg *config) *cli.App {
	app := cli.NewApp()

	app.Name = "lsb"
	app.Usage = "Least significant bit steganography utility"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"LSB_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to ledger database",
		},
		&cli.StringFlag{
			Name:    "config",
			EnvVars: []string{"LSB_CONFIG"},
			Usage:   "path to TOML or YAML configuration file",
		},
		&cli.IntFlag{
			Name:  "workers",
			Value: lsb.DefaultWorkers,
			Usage: "number of images to scan concurrently",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Before = func(c *cli.Context) error {
		*cfg = defaultConfig(c.String("db"))

		if path := c.String("config"); path != "" {
			loaded, err := loadConfig(path, *cfg)
			if err != nil {
				return cli.NewExitError(err, 1)
			}
			*cfg = loaded
		}

		// Explicit flags win over the configuration file
		if c.IsSet("db") {
			cfg.DB = c.String("db")
		}
		if c.IsSet("workers") {
			cfg.Workers = c.Int("workers")
		}
		if c.IsSet("verbose") {
			cfg.Verbose = c.Bool("verbose")
		}

		return nil
	}

	app.Commands = []*cli.Command{
		{
			Name:        "hide",
			Usage:       "Hide a message in an image",
			Description: "The output is written as PNG unless it has a .bmp extension",
			ArgsUsage:   "INPUT OUTPUT",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "text",
					Usage: "message to hide",
				},
				&cli.StringFlag{
					Name:  "file",
					Usage: "read the message to hide from `FILE`",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				message := c.String("text")
				if file := c.String("file"); file != "" {
					b, err := ioutil.ReadFile(file)
					if err != nil {
						return cli.NewExitError(err, 1)
					}
					message = string(b)
				}

				l, err := newLSB(*cfg)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer l.Close()

				if err := l.Hide(c.Args().Get(0), outputPath(c.Args().Get(1), cfg.Format), message); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "reveal",
			Usage:       "Reveal the message hidden in an image",
			Description: "",
			ArgsUsage:   "INPUT",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "output",
					Usage: "write the message to `FILE` instead of stdout",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				l, err := newLSB(*cfg)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer l.Close()

				message, err := l.Reveal(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				if output := c.String("output"); output != "" {
					if err := ioutil.WriteFile(output, []byte(message), 0644); err != nil {
						return cli.NewExitError(err, 1)
					}
					return nil
				}

				fmt.Fprintln(c.App.Writer, message)

				return nil
			},
		},
		{
			Name:        "capacity",
			Usage:       "Print the longest message an image can hold",
			Description: "",
			ArgsUsage:   "INPUT",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				l, err := newLSB(*cfg)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer l.Close()

				n, err := l.Capacity(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				fmt.Fprintln(c.App.Writer, n)

				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Scan filesystem for images carrying a message",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				l, err := newLSB(*cfg)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer l.Close()

				findings, err := l.Scan(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				w := tabwriter.NewWriter(c.App.Writer, 0, 8, 1, ' ', 0)
				for _, f := range findings {
					status := "candidate"
					if f.Known {
						status = "known"
					}
					fmt.Fprintf(w, "%s\t%s\t%d\t%q\n", f.Path, status, f.Length, f.Message)
				}

				return w.Flush()
			},
		},
		{
			Name:        "history",
			Usage:       "List the images recorded in the ledger",
			Description: "",
			Action: func(c *cli.Context) error {
				l, err := newLSB(*cfg)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer l.Close()

				entries, err := l.Ledger().List()
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				w := tabwriter.NewWriter(c.App.Writer, 0, 8, 1, ' ', 0)
				for _, e := range entries {
					fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\n", e.ID, e.Created.Format(time.RFC3339), e.Name, e.Stride, e.Length, e.SHA1)
				}

				return w.Flush()
			},
		},
	}

	return app
}

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	var cfg config
	if err := newApp(cwd, &cfg).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
