// Package etl wires the pipeline stages together: extract the three CSVs,
// build the star schema in memory, recreate the target tables, bulk-load
// dimensions then facts, and run the verification queries.
package etl

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/byluca/flight-delays-etl/internal/config"
	"github.com/byluca/flight-delays-etl/internal/extract"
	csvparser "github.com/byluca/flight-delays-etl/internal/parser/csv"
	"github.com/byluca/flight-delays-etl/internal/star"
	"github.com/byluca/flight-delays-etl/internal/storage"
	"github.com/byluca/flight-delays-etl/internal/verify"
)

// Result summarizes a completed run.
type Result struct {
	FlightStats  extract.Stats
	AirportStats extract.Stats
	AirlineStats extract.Stats

	Collisions star.CollisionReport
	Drops      star.DropReport

	DimAirlines int
	DimAirports int
	DimTime     int
	FactsLoaded int64
}

// Run executes the full pipeline against the configured store. Any failure —
// unreadable extract, DDL error, failed batch — aborts the run; there is no
// partial-success mode beyond the row counts already committed.
func Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	start := time.Now()
	res := &Result{}

	opt := csvparser.Options{Comma: cfg.DelimiterRune(), TrimSpace: true}

	airlines, airports, flights, err := extractAll(cfg, opt, res)
	if err != nil {
		return nil, err
	}
	log.Printf("extract: flights=%s airports=%d airlines=%d",
		humanize.Comma(int64(res.FlightStats.Rows)), res.AirportStats.Rows, res.AirlineStats.Rows)

	dims, collisions := star.BuildDimensions(airlines, airports, flights)
	res.Collisions = collisions
	res.DimAirlines = len(dims.Airlines)
	res.DimAirports = len(dims.Airports)
	res.DimTime = len(dims.Time)
	log.Printf("dimensions: d_airlines=%d d_airports=%d d_time=%d (dupes: exact=%d conflicting=%d)",
		res.DimAirlines, res.DimAirports, res.DimTime, collisions.ExactDupes, len(collisions.Collisions))

	kept, drops := star.Filter(flights, dims)
	res.Drops = drops
	log.Printf("integrity filter: kept=%s %s", humanize.Comma(int64(len(kept))), drops)

	facts, err := star.BuildFacts(kept, dims)
	if err != nil {
		return nil, fmt.Errorf("build facts: %w", err)
	}

	dsn, err := cfg.ResolveDSN()
	if err != nil {
		return nil, err
	}
	repo, err := storage.New(ctx, storage.Config{Kind: cfg.Driver, DSN: dsn})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Driver, err)
	}
	defer repo.Close()

	if err := storage.EnsureStarSchema(ctx, cfg.Driver, repo); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	res.FactsLoaded, err = LoadStar(ctx, repo, dims, facts, cfg.BatchSize)
	if err != nil {
		return nil, err
	}

	logSummary(res, time.Since(start))

	if !cfg.SkipVerify {
		if err := verify.Run(ctx, repo, cfg.Driver, cfg.VerifyThreshold, os.Stdout); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// extractAll reads the three source files and fills the per-extract stats.
func extractAll(cfg *config.Config, opt csvparser.Options, res *Result) ([]extract.RawAirline, []extract.RawAirport, []extract.RawFlight, error) {
	airlines, err := withFile(cfg.AirlinesCSV, func(r io.Reader) ([]extract.RawAirline, error) {
		out, st, err := extract.Airlines(r, opt)
		res.AirlineStats = st
		return out, err
	})
	if err != nil {
		return nil, nil, nil, err
	}
	airports, err := withFile(cfg.AirportsCSV, func(r io.Reader) ([]extract.RawAirport, error) {
		out, st, err := extract.Airports(r, opt)
		res.AirportStats = st
		return out, err
	})
	if err != nil {
		return nil, nil, nil, err
	}
	flights, err := withFile(cfg.FlightsCSV, func(r io.Reader) ([]extract.RawFlight, error) {
		out, st, err := extract.Flights(r, opt)
		res.FlightStats = st
		return out, err
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return airlines, airports, flights, nil
}

// withFile opens path and hands the reader to fn.
func withFile[T any](path string, fn func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	out, err := fn(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// LoadStar loads the three dimensions in one shot each (FK order: dimensions
// before facts) and the fact table in batches. It returns the number of fact
// rows inserted.
func LoadStar(ctx context.Context, repo storage.Repository, dims *star.Dimensions, facts []star.FactFlight, batchSize int) (int64, error) {
	dimLoads := []struct {
		table   string
		columns []string
		rows    [][]any
	}{
		{"d_airlines", star.AirlineColumns, star.AirlineRows(dims.Airlines)},
		{"d_airports", star.AirportColumns, star.AirportRows(dims.Airports)},
		{"d_time", star.TimeColumns, star.TimeRows(dims.Time)},
	}
	for _, dl := range dimLoads {
		n, err := repo.CopyInto(ctx, dl.table, dl.columns, dl.rows)
		if err != nil {
			return 0, fmt.Errorf("load %s: %w", dl.table, err)
		}
		if n != int64(len(dl.rows)) {
			return 0, fmt.Errorf("load %s: inserted %d of %d rows", dl.table, n, len(dl.rows))
		}
		log.Printf("loaded %s: %s rows", dl.table, humanize.Comma(n))
	}

	total, err := storage.LoadBatches(ctx, star.FactColumns, star.FactRows(facts), batchSize,
		func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			return repo.CopyInto(ctx, "f_flights", columns, rows)
		})
	if err != nil {
		return total, fmt.Errorf("load f_flights: %w", err)
	}
	log.Printf("loaded f_flights: %s rows", humanize.Comma(total))
	return total, nil
}

// logSummary prints the run accounting with the drop breakdown up front.
func logSummary(res *Result, elapsed time.Duration) {
	log.Printf("run complete in %s", elapsed.Truncate(time.Millisecond))
	log.Printf("  flights extract: rows=%s skipped=%d parse_errors=%d",
		humanize.Comma(int64(res.FlightStats.Rows)), res.FlightStats.Skipped, res.FlightStats.ParseErrors)
	log.Printf("  dimensions: d_airlines=%d d_airports=%d d_time=%d",
		res.DimAirlines, res.DimAirports, res.DimTime)
	log.Printf("  integrity filter: %s", res.Drops)
	log.Printf("  facts loaded: %s", humanize.Comma(res.FactsLoaded))
}
