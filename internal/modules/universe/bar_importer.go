package universe

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/igorcrp/lova-mia-sub000/internal/events"
	"github.com/igorcrp/lova-mia-sub000/internal/modules/backtest"
	"github.com/igorcrp/lova-mia-sub000/internal/utils"
	"github.com/rs/zerolog"
)

// ParseBarsCSV reads daily bars from CSV with a header naming at least
// date and close. open, high, low and volume are optional; empty cells are
// missing prices. Rows come back ascending by date; a repeated date keeps
// the last row.
func ParseBarsCSV(r io.Reader) ([]backtest.Bar, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty CSV", backtest.ErrMalformedData)
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "close"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: CSV header has no %q column", backtest.ErrMalformedData, required)
		}
	}

	byDate := make(map[int64]backtest.Bar)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		bar, err := parseBarRecord(record, columns)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", backtest.ErrMalformedData, line, err)
		}
		byDate[utils.DateToUnix(bar.Date)] = bar
	}

	bars := make([]backtest.Bar, 0, len(byDate))
	for _, b := range byDate {
		bars = append(bars, b)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

func parseBarRecord(record []string, columns map[string]int) (backtest.Bar, error) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, err := utils.ParseDate(field("date"))
	if err != nil {
		return backtest.Bar{}, err
	}

	bar := backtest.Bar{Date: date}
	prices := []struct {
		name string
		dst  *float64
	}{
		{"open", &bar.Open},
		{"high", &bar.High},
		{"low", &bar.Low},
		{"close", &bar.Close},
	}
	for _, p := range prices {
		raw := field(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return backtest.Bar{}, fmt.Errorf("invalid %s %q", p.name, raw)
		}
		*p.dst = v
	}

	if raw := field("volume"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return backtest.Bar{}, fmt.Errorf("invalid volume %q", raw)
		}
		bar.Volume = int64(v)
	}
	return bar, nil
}

// ImportReport summarizes one import
type ImportReport struct {
	Symbol   string     `json:"symbol"`
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Issues   []BarIssue `json:"issues,omitempty"`
}

// EventEmitter publishes import events
type EventEmitter interface {
	EmitTyped(module string, data events.EventData)
}

// BarImporter registers a security and stores its validated bars
type BarImporter struct {
	securities SecurityStore
	bars       BarStore
	validator  *PriceValidator
	emitter    EventEmitter
	log        zerolog.Logger
}

// NewBarImporter creates a bar importer. emitter may be nil.
func NewBarImporter(securities SecurityStore, bars BarStore, emitter EventEmitter, log zerolog.Logger) *BarImporter {
	return &BarImporter{
		securities: securities,
		bars:       bars,
		validator:  NewPriceValidator(log),
		emitter:    emitter,
		log:        log.With().Str("service", "bar_importer").Logger(),
	}
}

// Import upserts the security and stores bars. Bars without any price are
// skipped; other validation issues are reported but the bars are kept, since
// the engine records missing or odd prices per day.
func (i *BarImporter) Import(ctx context.Context, security Security, bars []backtest.Bar) (*ImportReport, error) {
	security.Symbol = utils.NormalizeSymbol(security.Symbol)
	if err := i.securities.Upsert(ctx, security); err != nil {
		return nil, fmt.Errorf("failed to register security: %w", err)
	}

	report := &ImportReport{Symbol: security.Symbol}
	report.Issues = i.validator.ValidateBars(security.Symbol, bars)

	skip := make(map[int]bool)
	for _, issue := range report.Issues {
		if issue.Reason == "no_prices" || issue.Reason == "out_of_order" {
			skip[issue.Index] = true
		}
	}

	keep := make([]backtest.Bar, 0, len(bars))
	for idx, b := range bars {
		if skip[idx] {
			report.Skipped++
			continue
		}
		keep = append(keep, b)
	}

	if len(keep) > 0 {
		if err := i.bars.SyncDailyBars(ctx, security.Symbol, keep); err != nil {
			return nil, err
		}
	}
	report.Imported = len(keep)

	if i.emitter != nil {
		i.emitter.EmitTyped("universe", &events.BarsImportedData{
			Symbol: security.Symbol,
			Count:  report.Imported,
			Issues: len(report.Issues),
		})
	}

	i.log.Info().
		Str("symbol", security.Symbol).
		Int("imported", report.Imported).
		Int("skipped", report.Skipped).
		Int("issues", len(report.Issues)).
		Msg("Imported daily bars")

	return report, nil
}
