// Command csvaudit inspects the three source CSVs without touching a
// database. It reports the detected delimiter and headers of each file, row
// and skip counts, duplicate IATA codes, and the referential-integrity drops
// a full run would incur. Useful before pointing flightmart at a production
// store.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/byluca/flight-delays-etl/internal/config"
	"github.com/byluca/flight-delays-etl/internal/extract"
	csvparser "github.com/byluca/flight-delays-etl/internal/parser/csv"
	"github.com/byluca/flight-delays-etl/internal/star"
)

type fileReport struct {
	Path      string
	Delimiter rune
	Headers   []string
	Rows      int
	Skipped   int
	Errors    int
}

func main() {
	cfg := config.Load()
	opt := csvparser.Options{Comma: cfg.DelimiterRune(), TrimSpace: true}

	var (
		airlines []extract.RawAirline
		airports []extract.RawAirport
		flights  []extract.RawFlight

		mu      sync.Mutex
		reports = map[string]*fileReport{}
	)

	// The three extracts are independent until the FK audit, so read them
	// concurrently.
	g, _ := errgroup.WithContext(context.Background())
	g.Go(func() error {
		rep, err := auditFile(cfg.AirlinesCSV, opt, func(r *os.File) (extract.Stats, error) {
			out, st, err := extract.Airlines(r, opt)
			airlines = out
			return st, err
		})
		mu.Lock()
		reports["airlines"] = rep
		mu.Unlock()
		return err
	})
	g.Go(func() error {
		rep, err := auditFile(cfg.AirportsCSV, opt, func(r *os.File) (extract.Stats, error) {
			out, st, err := extract.Airports(r, opt)
			airports = out
			return st, err
		})
		mu.Lock()
		reports["airports"] = rep
		mu.Unlock()
		return err
	})
	g.Go(func() error {
		rep, err := auditFile(cfg.FlightsCSV, opt, func(r *os.File) (extract.Stats, error) {
			out, st, err := extract.Flights(r, opt)
			flights = out
			return st, err
		})
		mu.Lock()
		reports["flights"] = rep
		mu.Unlock()
		return err
	})
	if err := g.Wait(); err != nil {
		log.Fatalf("csvaudit: %v", err)
	}

	for _, name := range []string{"flights", "airports", "airlines"} {
		rep := reports[name]
		fmt.Printf("%s (%s)\n", name, rep.Path)
		fmt.Printf("  delimiter: %q\n", rep.Delimiter)
		fmt.Printf("  headers:   %d %v\n", len(rep.Headers), rep.Headers)
		fmt.Printf("  rows=%d skipped=%d parse_errors=%d\n", rep.Rows, rep.Skipped, rep.Errors)
	}

	dims, collisions := star.BuildDimensions(airlines, airports, flights)
	fmt.Printf("dimensions: d_airlines=%d d_airports=%d d_time=%d\n",
		len(dims.Airlines), len(dims.Airports), len(dims.Time))
	if len(collisions.Collisions) > 0 {
		for _, c := range collisions.Collisions {
			fmt.Printf("  conflicting duplicate key in %s: %s\n", c.Table, c.Key)
		}
	}
	if collisions.ExactDupes > 0 {
		fmt.Printf("  exact duplicate keys: %d\n", collisions.ExactDupes)
	}

	_, drops := star.Filter(flights, dims)
	fmt.Printf("a full load would drop: %s\n", drops)
}

// auditFile opens path twice: once to sniff encoding, delimiter and headers,
// once to run the real extract via parse.
func auditFile(path string, opt csvparser.Options, parse func(*os.File) (extract.Stats, error)) (*fileReport, error) {
	rep := &fileReport{Path: path}

	f, err := os.Open(path)
	if err != nil {
		return rep, fmt.Errorf("open %s: %w", path, err)
	}
	decoded, sample, err := csvparser.DecodeReader(f)
	if err != nil {
		f.Close()
		return rep, fmt.Errorf("sniff %s: %w", path, err)
	}
	rep.Delimiter = opt.Comma
	if rep.Delimiter == 0 {
		rep.Delimiter = csvparser.DetectDelimiter(sample)
	}
	headers, err := csvparser.NewParser(opt).Header(decoded)
	f.Close()
	if err != nil {
		return rep, fmt.Errorf("headers %s: %w", path, err)
	}
	rep.Headers = headers

	f, err = os.Open(path)
	if err != nil {
		return rep, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	st, err := parse(f)
	if err != nil {
		return rep, fmt.Errorf("parse %s: %w", path, err)
	}
	rep.Rows, rep.Skipped, rep.Errors = st.Rows, st.Skipped, st.ParseErrors
	return rep, nil
}
