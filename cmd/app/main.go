package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/apptcal/internal"
	"github.com/starford/apptcal/internal/appointments"
	"github.com/starford/apptcal/internal/apperr"
	"github.com/starford/apptcal/internal/ical"
	"github.com/starford/apptcal/internal/mcpserver"
	"github.com/starford/apptcal/internal/models"
	pkgconfig "github.com/starford/apptcal/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOrDefault(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

// withService runs fn against a loaded service. Logs go to stderr so stdout
// stays clean for command output and the MCP stdio transport.
func withService(ctx context.Context, cmd *cli.Command, fn func(*internal.Config, *appointments.Service, *slog.Logger) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := internal.NewLogger(os.Stderr, cfg.App.LogLevel)

	svc, _, closeStore, err := internal.OpenService(ctx, cfg, logger)
	defer closeStore()
	if err != nil {
		return err
	}
	return fn(cfg, svc, logger)
}

func printEntries(entries []appointments.Entry) {
	for _, e := range entries {
		fmt.Fprintf(os.Stdout, "%d: %s\n", e.Index, e.Appointment)
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Print appointments in display order",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Usage: "Only show appointments on this date (YYYY-MM-DD)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withService(ctx, cmd, func(_ *internal.Config, svc *appointments.Service, _ *slog.Logger) error {
				raw := cmd.String("date")
				if raw == "" {
					printEntries(svc.Entries())
					return nil
				}
				d, err := models.ParseDate(raw)
				if err != nil {
					return err
				}
				printEntries(svc.OnDate(d))
				return nil
			})
		},
	}
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Append an appointment",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Usage: "Appointment title", Required: true},
			&cli.StringFlag{Name: "date", Usage: "Date (YYYY-MM-DD)", Required: true},
			&cli.StringFlag{Name: "start", Usage: "Start time (HH:mm)", Required: true},
			&cli.StringFlag{Name: "end", Usage: "End time (HH:mm)", Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withService(ctx, cmd, func(_ *internal.Config, svc *appointments.Service, _ *slog.Logger) error {
				e, err := svc.Append(ctx, appointments.Input{
					Title: cmd.String("title"),
					Date:  cmd.String("date"),
					Start: cmd.String("start"),
					End:   cmd.String("end"),
				})
				if err != nil {
					return fmt.Errorf("%s: %w", apperr.Kind(err), err)
				}
				fmt.Fprintf(os.Stdout, "added %d: %s\n", e.Index, e.Appointment)
				return nil
			})
		},
	}
}

func removeCommand() *cli.Command {
	return &cli.Command{
		Name:  "remove",
		Usage: "Remove the appointment at a list position",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "index", Usage: "Zero-based position as shown by list", Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withService(ctx, cmd, func(_ *internal.Config, svc *appointments.Service, _ *slog.Logger) error {
				i := int(cmd.Int("index"))
				a, ok := svc.Take(ctx, i)
				if !ok {
					return fmt.Errorf("no appointment at index %d: %w", i, apperr.ErrNotFound)
				}
				fmt.Fprintf(os.Stdout, "removed %d: %s\n", i, a)
				return nil
			})
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the appointments as an iCalendar feed to stdout",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Calendar display name", Value: "apptcal"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withService(ctx, cmd, func(cfg *internal.Config, svc *appointments.Service, _ *slog.Logger) error {
				return ical.Write(os.Stdout, svc.List(), ical.Options{
					Location: cfg.App.Location(),
					Name:     cmd.String("name"),
				})
			})
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the appointment tools over MCP stdio",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withService(ctx, cmd, func(cfg *internal.Config, svc *appointments.Service, logger *slog.Logger) error {
				db, err := internal.OpenIndex(cfg.SQLite, svc, logger)
				if err != nil {
					return err
				}
				defer db.Close()

				logger.Info("MCP server starting on stdio")
				return mcpserver.New(svc, db, version).ServeStdio()
			})
		},
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "apptcal",
		Usage:   "Personal appointment book backed by a plain text file",
		Version: version,
		Action:  run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API, event stream and file watcher (default)",
				Action: run,
			},
			listCommand(),
			addCommand(),
			removeCommand(),
			exportCommand(),
			mcpCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		if apperr.IsValidation(err) || errors.Is(err, apperr.ErrNotFound) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
