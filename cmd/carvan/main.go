package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"carvan/internal"
	"carvan/internal/config"
	"carvan/internal/mapping"
	"carvan/internal/pipeline"
	"carvan/internal/scrape"
	"carvan/internal/storage"
	"carvan/internal/watcher"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "scrape:run":
		must(cfg.Require("SCRAPE_API_TOKEN", cfg.ScrapeAPIToken))
		must(cfg.Require("SCRAPE_ACTOR_ID", cfg.ScrapeActorID))
		svc := scrape.NewSyncService(db, cfg)
		ds, err := svc.RunAndStore(context.Background())
		must(err)
		fmt.Printf("scrape done dataset=%s records=%d\n", ds.ID, ds.RecordCount)
	case "datasets:list":
		datasets, err := db.ListDatasets(20)
		must(err)
		for _, ds := range datasets {
			fmt.Printf("%s  run=%s  status=%s  records=%d  fetched=%s\n", ds.ID, ds.ActorRunID, ds.Status, ds.RecordCount, ds.FetchedAt)
		}
	case "exports:list":
		exports, err := db.ListExports(20)
		must(err)
		for _, e := range exports {
			fmt.Printf("#%d  dataset=%s  shape=%s  format=%s  rows=%d  %s  %s\n", e.ID, e.DatasetID, e.Shape, e.Format, e.RowCount, e.Path, e.CreatedAt)
		}
	case "export:metafields":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		dataset := fs.String("dataset", "", "dataset id (default: latest)")
		format := fs.String("format", "xlsx", "csv|xlsx")
		final := fs.Bool("final", false, "apply the rename/filter table")
		out := fs.String("out", "", "output path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}
		datasetID, err := resolveDataset(db, *dataset)
		must(err)
		shape := pipeline.ShapeMetafields
		if *final {
			shape = pipeline.ShapeFinal
		}
		processor := pipeline.NewProcessingService(db, cfg)
		count, err := processor.ExportDataset(datasetID, shape, *format, *out)
		must(err)
		fmt.Printf("exported %d rows dataset=%s shape=%s output=%s\n", count, datasetID, shape, *out)
	case "export:normalized":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		dataset := fs.String("dataset", "", "dataset id (default: latest)")
		format := fs.String("format", "csv", "csv|xlsx")
		out := fs.String("out", "", "output path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--out is required"))
		}
		datasetID, err := resolveDataset(db, *dataset)
		must(err)
		processor := pipeline.NewProcessingService(db, cfg)
		count, err := processor.ExportDataset(datasetID, pipeline.ShapeNormalized, *format, *out)
		must(err)
		fmt.Printf("exported %d rows dataset=%s shape=normalized output=%s\n", count, datasetID, *out)
	case "mapping:show":
		table := mapping.LoadTable(cfg.MetafieldsMappingPath)
		entries := table.Entries()
		fmt.Printf("metafields mapping entries=%d file=%s\n", len(entries), cfg.MetafieldsMappingPath)
		for _, e := range entries {
			fmt.Printf("  %s -> %s\n", e.Source, strings.Join(e.Dests, ", "))
		}
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "path to a JSON array of raw records")
		format := fs.String("format", "xlsx", "csv|xlsx")
		final := fs.Bool("final", false, "apply the rename/filter table")
		out := fs.String("out", "", "output path")
		_ = fs.Parse(os.Args[2:])
		if *input == "" || *out == "" {
			must(fmt.Errorf("--input and --out are required"))
		}
		records, err := readRecords(*input)
		must(err)

		table := mapping.LoadTable(cfg.MetafieldsMappingPath)
		rows := pipeline.ConvertRecords(records, table.Entries())
		if *final {
			rules, err := mapping.LoadRenameTable(cfg.MappingFilePath)
			must(err)
			shaped := make([]*pipeline.Row, 0, len(rows))
			for _, row := range rows {
				shaped = append(shaped, pipeline.ApplyFinalShape(row, rules))
			}
			rows = shaped
		}
		must(writeRows(rows, *format, *out))
		fmt.Printf("run done rows=%d output=%s\n", len(rows), *out)
	case "watch":
		s := watcher.NewService(db, cfg)
		must(s.Run(context.Background()))
	default:
		usage()
		os.Exit(1)
	}
}

func resolveDataset(db *storage.DB, datasetID string) (string, error) {
	if strings.TrimSpace(datasetID) != "" {
		return datasetID, nil
	}
	latest, err := db.LatestDataset()
	if err != nil {
		return "", err
	}
	if latest == nil {
		return "", fmt.Errorf("no datasets stored; run scrape:run first")
	}
	return latest.ID, nil
}

func readRecords(path string) ([]internal.RawRecord, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []internal.RawRecord
	if err := json.Unmarshal(blob, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return records, nil
}

func writeRows(rows []*pipeline.Row, format, out string) error {
	switch format {
	case pipeline.FormatCSV:
		return os.WriteFile(out, []byte(pipeline.EncodeCSV(rows)), 0o644)
	case pipeline.FormatXLSX:
		blob, err := pipeline.EncodeXLSX(rows)
		if err != nil {
			return err
		}
		return os.WriteFile(out, blob, 0o644)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func usage() {
	fmt.Println("usage: carvan <command>")
	fmt.Println("commands:")
	fmt.Println("  scrape:run")
	fmt.Println("  datasets:list")
	fmt.Println("  exports:list")
	fmt.Println("  export:metafields --out=./out/feed.xlsx [--dataset=...] [--format=csv|xlsx] [--final]")
	fmt.Println("  export:normalized --out=./out/items.csv [--dataset=...] [--format=csv|xlsx]")
	fmt.Println("  mapping:show")
	fmt.Println("  run --input=./records.json --out=./out/feed.xlsx [--format=csv|xlsx] [--final]")
	fmt.Println("  watch")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
