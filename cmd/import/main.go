// Command import loads a CSV of daily bars for one symbol into history.db and
// registers the symbol in universe.db so it takes part in screening.
//
//	import -symbol PETR4 -market BR -asset-class stocks -file petr4.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/igorcrp/lova-mia-sub000/internal/config"
	"github.com/igorcrp/lova-mia-sub000/internal/di"
	"github.com/igorcrp/lova-mia-sub000/internal/events"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/universe"
	"github.com/igorcrp/lova-mia-sub000/pkg/logger"
)

func main() {
	var (
		symbol     string
		market     string
		assetClass string
		name       string
		currency   string
		file       string
	)

	flag.StringVar(&symbol, "symbol", "", "ticker to import (required)")
	flag.StringVar(&market, "market", "", "market the symbol trades on, e.g. BR (required)")
	flag.StringVar(&assetClass, "asset-class", "stocks", "asset class: stocks, funds, crypto, ...")
	flag.StringVar(&name, "name", "", "optional display name")
	flag.StringVar(&currency, "currency", "", "optional currency code")
	flag.StringVar(&file, "file", "", "CSV with date,open,high,low,close,volume columns (required)")
	flag.Parse()

	if symbol == "" || market == "" || file == "" {
		fmt.Fprintln(os.Stderr, "error: -symbol, -market and -file are required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true})

	f, err := os.Open(file)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to open CSV")
	}
	defer f.Close()

	bars, err := universe.ParseBarsCSV(f)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to parse CSV")
	}

	container, err := di.InitializeDatabases(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open databases")
	}
	defer container.Close()

	if err := di.InitializeRepositories(container, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize repositories")
	}

	emitter := events.NewManager(events.NewBus(log), log)
	importer := universe.NewBarImporter(container.Securities, container.History, emitter, log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	report, err := importer.Import(ctx, universe.Security{
		Symbol:     symbol,
		Name:       name,
		Market:     market,
		AssetClass: assetClass,
		Currency:   currency,
		Active:     true,
	}, bars)
	if err != nil {
		log.Error().Err(err).Msg("Import failed")
		container.Close()
		os.Exit(1)
	}

	for _, issue := range report.Issues {
		log.Warn().
			Str("date", issue.Date).
			Str("reason", issue.Reason).
			Msg("Suspicious bar")
	}

	fmt.Printf("%s: imported %d bars, skipped %d, %d issues\n",
		report.Symbol, report.Imported, report.Skipped, len(report.Issues))
}
