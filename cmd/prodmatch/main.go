// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "prodmatch",
		Usage: "Match external product lists against an internal catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
				EnvVars: []string{"PRODMATCH_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from this file if it exists",
				Value: ".env",
			},
		},
		Before: func(c *cli.Context) error {
			if err := setupLogger(c); err != nil {
				return err
			}
			return loadEnvFile(c.String("env-file"))
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the matching HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Usage:   "Listen address (overrides server.addr)",
						EnvVars: []string{"PORT"},
					},
					&cli.StringFlag{
						Name:  "static-dir",
						Usage: "Directory holding the web frontend (overrides server.static_dir)",
					},
				},
			},
			{
				Name:      "match",
				Usage:     "Match a CSV or XLSX product list and print the result as JSON",
				ArgsUsage: "<file|s3://bucket/key>",
				Action:    matchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Products per embedding call (overrides match.batch_size)",
					},
					&cli.IntFlag{
						Name:  "rate",
						Usage: "Maximum batches per minute (overrides match.max_calls_per_minute)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the result here instead of stdout",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "Do not report progress on stderr",
					},
				},
			},
			{
				Name:      "import-catalog",
				Usage:     "Embed a NAME,LONG_NAME catalog file and store it",
				ArgsUsage: "<file|s3://bucket/key>",
				Action:    importCatalogCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Rows per embedding call (overrides match.batch_size)",
					},
					&cli.IntFlag{
						Name:  "rate",
						Usage: "Maximum embedding calls per minute (overrides match.max_calls_per_minute)",
					},
				},
			},
			{
				Name:   "reembed-catalog",
				Usage:  "Re-embed every catalog entry with the configured embedding model",
				Action: reembedCatalogCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Entries per embedding call (overrides match.batch_size)",
					},
					&cli.IntFlag{
						Name:  "rate",
						Usage: "Maximum embedding calls per minute (overrides match.max_calls_per_minute)",
					},
				},
			},
			{
				Name:      "export-catalog",
				Usage:     "Write the catalog as JSONL",
				ArgsUsage: "<file|s3://bucket/key|->",
				Action:    exportCatalogCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "with-vectors",
						Usage: "Include stored embedding vectors",
					},
				},
			},
			{
				Name:      "lookup",
				Usage:     "Show the nearest catalog entries for one product name",
				ArgsUsage: "<product name>",
				Action:    lookupCommand,
			},
			{
				Name:      "init-config",
				Usage:     "Write the default configuration to a file",
				ArgsUsage: "<file>",
				Action:    initConfigCommand,
			},
		},
	}
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	slog.Debug("loaded environment file", "path", path)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
