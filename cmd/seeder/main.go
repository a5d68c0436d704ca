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

	"github.com/poiesic/prodmatch"
	"github.com/poiesic/prodmatch/catalog"
	"github.com/poiesic/prodmatch/config"
)

var sampleCatalog = []catalog.Row{
	{Name: "SKU-0001", LongName: "Coca-Cola Classic 20oz Bottle"},
	{Name: "SKU-0002", LongName: "Coca-Cola Classic 12oz Can"},
	{Name: "SKU-0003", LongName: "Coca-Cola Zero Sugar 20oz Bottle"},
	{Name: "SKU-0004", LongName: "Diet Coke 12oz Can"},
	{Name: "SKU-0005", LongName: "Cherry Coca-Cola 20oz Bottle"},
	{Name: "SKU-0006", LongName: "Sprite Lemon-Lime 20oz Bottle"},
	{Name: "SKU-0007", LongName: "Sprite Zero Sugar 12oz Can"},
	{Name: "SKU-0008", LongName: "Fanta Orange 20oz Bottle"},
	{Name: "SKU-0009", LongName: "Fanta Grape 12oz Can"},
	{Name: "SKU-0010", LongName: "Pepsi Cola 20oz Bottle"},
	{Name: "SKU-0011", LongName: "Pepsi Zero Sugar 12oz Can"},
	{Name: "SKU-0012", LongName: "Mountain Dew Original 20oz Bottle"},
	{Name: "SKU-0013", LongName: "Mountain Dew Code Red 20oz Bottle"},
	{Name: "SKU-0014", LongName: "Dr Pepper Original 12oz Can"},
	{Name: "SKU-0015", LongName: "Dr Pepper Cherry 20oz Bottle"},
	{Name: "SKU-0016", LongName: "Gatorade Thirst Quencher Fruit Punch 28oz"},
	{Name: "SKU-0017", LongName: "Gatorade Thirst Quencher Cool Blue 28oz"},
	{Name: "SKU-0018", LongName: "Powerade Mountain Berry Blast 28oz"},
	{Name: "SKU-0019", LongName: "Red Bull Energy Drink 8.4oz Can"},
	{Name: "SKU-0020", LongName: "Red Bull Sugarfree 12oz Can"},
	{Name: "SKU-0021", LongName: "Monster Energy Original 16oz Can"},
	{Name: "SKU-0022", LongName: "Monster Energy Ultra Zero 16oz Can"},
	{Name: "SKU-0023", LongName: "Dasani Purified Water 20oz Bottle"},
	{Name: "SKU-0024", LongName: "Aquafina Purified Water 1L Bottle"},
	{Name: "SKU-0025", LongName: "Smartwater Vapor Distilled 1L Bottle"},
	{Name: "SKU-0026", LongName: "Minute Maid Orange Juice 12oz Bottle"},
	{Name: "SKU-0027", LongName: "Tropicana Pure Premium Orange Juice 52oz"},
	{Name: "SKU-0028", LongName: "Snapple Peach Tea 16oz Bottle"},
	{Name: "SKU-0029", LongName: "Arizona Green Tea with Ginseng and Honey 23oz Can"},
	{Name: "SKU-0030", LongName: "Starbucks Frappuccino Mocha 13.7oz Bottle"},
	{Name: "SKU-0031", LongName: "Lay's Classic Potato Chips 2.625oz"},
	{Name: "SKU-0032", LongName: "Lay's Barbecue Potato Chips 2.625oz"},
	{Name: "SKU-0033", LongName: "Doritos Nacho Cheese 2.75oz"},
	{Name: "SKU-0034", LongName: "Doritos Cool Ranch 2.75oz"},
	{Name: "SKU-0035", LongName: "Cheetos Crunchy 3.25oz"},
	{Name: "SKU-0036", LongName: "Cheetos Flamin' Hot Crunchy 3.25oz"},
	{Name: "SKU-0037", LongName: "Ruffles Original Potato Chips 2.5oz"},
	{Name: "SKU-0038", LongName: "Pringles Original 5.2oz Can"},
	{Name: "SKU-0039", LongName: "Snickers Chocolate Bar 1.86oz"},
	{Name: "SKU-0040", LongName: "Snickers King Size 3.29oz"},
	{Name: "SKU-0041", LongName: "M&M's Milk Chocolate 1.69oz"},
	{Name: "SKU-0042", LongName: "M&M's Peanut 1.74oz"},
	{Name: "SKU-0043", LongName: "Reese's Peanut Butter Cups 1.5oz"},
	{Name: "SKU-0044", LongName: "Kit Kat Wafer Bar 1.5oz"},
	{Name: "SKU-0045", LongName: "Twix Caramel Cookie Bars 1.79oz"},
	{Name: "SKU-0046", LongName: "Skittles Original 2.17oz"},
	{Name: "SKU-0047", LongName: "Starburst Original 2.07oz"},
	{Name: "SKU-0048", LongName: "Trident Spearmint Gum 14ct"},
	{Name: "SKU-0049", LongName: "Orbit Peppermint Gum 14ct"},
	{Name: "SKU-0050", LongName: "Clif Bar Chocolate Chip 2.4oz"},
}

var (
	seedFileName = flag.String("src", "", "catalog file (CSV or XLSX with NAME,LONG_NAME columns)")
	dbPath       = flag.String("db", "./catalog_db", "badger catalog directory")
)

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

	importer, err := svc.NewImporter(catalog.WithProgress(os.Stderr))
	if err != nil {
		panic(err)
	}

	var stats catalog.ImportStats
	if *seedFileName != "" {
		f, err := os.Open(*seedFileName)
		if err != nil {
			panic(err)
		}
		defer f.Close()
		stats, err = importer.ImportFile(ctx, *seedFileName, f)
		if err != nil {
			panic(err)
		}
	} else {
		stats, err = importer.Import(ctx, sampleCatalog)
		if err != nil {
			panic(err)
		}
	}

	fmt.Printf("Imported %d of %d rows (%d skipped, %d failed)\n", stats.Imported, stats.Rows, stats.Skipped, stats.Failed)
}
