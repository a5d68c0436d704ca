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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
	"text/tabwriter"

	"github.com/poiesic/prodmatch"
	"github.com/poiesic/prodmatch/catalog"
	"github.com/poiesic/prodmatch/config"
	"github.com/poiesic/prodmatch/intake"
	"github.com/poiesic/prodmatch/progress"
	"github.com/poiesic/prodmatch/server"
	"github.com/urfave/cli/v2"
)

func loadConfig(c *cli.Context) (*config.File, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if n := c.Int("batch-size"); n > 0 {
		cfg.Match.BatchSize = n
	}
	if n := c.Int("rate"); n > 0 {
		cfg.Match.MaxCallsPerMinute = n
	}
	return cfg, nil
}

func openService(c *cli.Context, cfg *config.File) (*prodmatch.Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	svc, err := prodmatch.NewService(c.Context, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to start service: %w", err)
	}
	return svc, nil
}

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if addr := c.String("addr"); addr != "" {
		cfg.Server.Addr = listenAddr(addr)
	}
	if dir := c.String("static-dir"); dir != "" {
		cfg.Server.StaticDir = dir
	}

	svc, err := openService(c, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	handler, err := svc.NewServer()
	if err != nil {
		return err
	}
	return server.ListenAndServe(c.Context, cfg.Server.Addr, handler, slog.Default())
}

// listenAddr accepts a bare port as given in $PORT.
func listenAddr(addr string) string {
	if !strings.Contains(addr, ":") {
		return ":" + addr
	}
	return addr
}

func matchCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one input file")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	products, err := readProducts(c.Context, cfg, c.Args().First())
	if err != nil {
		return err
	}

	svc, err := openService(c, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	var progressOut io.Writer = os.Stderr
	if c.Bool("quiet") {
		progressOut = io.Discard
	}
	monitor := progress.NewRunMonitor(progressOut, slog.Default())

	result, runErr := svc.Matcher().MatchWithMonitor(c.Context, products, cfg.Match.BatchSize, cfg.Match.MaxCallsPerMinute, monitor)
	if result == nil {
		return fmt.Errorf("matching failed: %w", runErr)
	}

	out := io.Writer(os.Stdout)
	if dest := c.String("output"); dest != "" && dest != "-" {
		f, err := os.Create(dest)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	if runErr != nil {
		return fmt.Errorf("run stopped early: %w", runErr)
	}
	return nil
}

// readProducts loads an upload from disk or S3. Objects with a .txt key are
// read as one product per line.
func readProducts(ctx context.Context, cfg *config.File, source string) ([]string, error) {
	if !catalog.IsS3URI(source) {
		f, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return intake.Parse(source, f)
	}

	store, key, err := openS3(cfg, source)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(path.Ext(key), ".txt") {
		lines, err := store.ReadLines(ctx, key)
		if err != nil {
			return nil, err
		}
		return intake.Clean(lines), nil
	}
	body, err := store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return intake.Parse(key, body)
}

func openS3(cfg *config.File, uri string) (*catalog.S3Store, string, error) {
	bucket, key, err := catalog.ParseS3URI(uri)
	if err != nil {
		return nil, "", err
	}
	return catalog.NewS3Store(catalog.NewS3Client(cfg.S3Options()), bucket), key, nil
}

func importCatalogCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one catalog source")
	}
	source := c.Args().First()
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	var (
		r    io.ReadCloser
		name = source
	)
	if catalog.IsS3URI(source) {
		store, key, err := openS3(cfg, source)
		if err != nil {
			return err
		}
		if r, err = store.Open(c.Context, key); err != nil {
			return err
		}
		name = key
	} else if r, err = os.Open(source); err != nil {
		return err
	}
	defer r.Close()

	svc, err := openService(c, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	importer, err := svc.NewImporter(catalog.WithProgress(os.Stderr))
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Source: %s\n", source)
	fmt.Fprintf(os.Stderr, "Storage: %s\n", cfg.Storage.Driver)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", cfg.AI.EmbeddingModel)
	fmt.Fprintln(os.Stderr)

	stats, err := importer.ImportFile(c.Context, name, r)
	fmt.Fprintf(os.Stderr, "Rows: %d, imported: %d, skipped: %d, failed: %d\n",
		stats.Rows, stats.Imported, stats.Skipped, stats.Failed)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	return nil
}

func reembedCatalogCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	svc, err := openService(c, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	importer, err := svc.NewImporter(catalog.WithProgress(os.Stderr))
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Storage: %s\n", cfg.Storage.Driver)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", cfg.AI.EmbeddingModel)
	fmt.Fprintln(os.Stderr)

	stats, err := importer.Reembed(c.Context)
	fmt.Fprintf(os.Stderr, "Entries: %d, re-embedded: %d, failed: %d\n", stats.Rows, stats.Imported, stats.Failed)
	if err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func exportCatalogCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one destination")
	}
	dest := c.Args().First()
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	svc, err := openService(c, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	withVectors := c.Bool("with-vectors")
	switch {
	case dest == "-":
		_, err = catalog.ExportJSONL(c.Context, svc.Catalog(), os.Stdout, withVectors)
		return err
	case catalog.IsS3URI(dest):
		store, key, err := openS3(cfg, dest)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		n, err := catalog.ExportJSONL(c.Context, svc.Catalog(), &buf, withVectors)
		if err != nil {
			return err
		}
		if err := store.Put(c.Context, key, &buf, "application/x-ndjson"); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported %d entries to %s\n", n, dest)
		return nil
	default:
		f, err := os.Create(dest)
		if err != nil {
			return err
		}
		defer f.Close()
		n, err := catalog.ExportJSONL(c.Context, svc.Catalog(), f, withVectors)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported %d entries to %s\n", n, dest)
		return nil
	}
}

func lookupCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("expected a product name")
	}
	product := intake.NormalizeName(strings.Join(c.Args().Slice(), " "))

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	svc, err := openService(c, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	result, err := svc.Lookup(c.Context, product)
	if err != nil {
		return err
	}
	return printLookup(os.Stdout, result)
}

func printLookup(w io.Writer, result *prodmatch.LookupResult) error {
	fmt.Fprintf(w, "%s: %s\n\n", result.Product, result.Tier)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tDISTANCE\tID\tLONG NAME")
	for i, n := range result.Neighbors {
		longName := "-"
		if n.LongName != nil {
			longName = *n.LongName
		}
		fmt.Fprintf(tw, "%d\t%.4f\t%s\t%s\n", i+1, n.Score, n.DatapointID, longName)
	}
	return tw.Flush()
}

func initConfigCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected a destination file")
	}
	dest := c.Args().First()
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("%s already exists", dest)
	}
	return config.Default().Save(dest)
}
