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
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/prodmatch"
	"github.com/poiesic/prodmatch/config"
	"github.com/poiesic/prodmatch/intake"
)

var dbPath = flag.String("db", "./catalog_db", "badger catalog directory")

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}
	cfg.Storage.Driver = config.DriverBadger
	cfg.Storage.Path = *dbPath

	svc, err := prodmatch.NewService(ctx, cfg)
	if err != nil {
		panic(err)
	}
	defer svc.Close()

	query := "coke classic 20 oz"
	if flag.NArg() > 0 {
		query = strings.Join(flag.Args(), " ")
	}

	result, err := svc.Lookup(ctx, intake.NormalizeName(query))
	if err != nil {
		panic(err)
	}

	fmt.Printf("'%s' is %s, %d neighbors\n", result.Product, result.Tier, len(result.Neighbors))
	for i, n := range result.Neighbors {
		name := "<unknown>"
		if n.LongName != nil {
			name = *n.LongName
		}
		fmt.Printf("%d: '%s' (%s)[%0.3f]\n", i, name, n.DatapointID, n.Score)
	}
}
