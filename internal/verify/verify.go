// Package verify runs read-back aggregate queries against the loaded star
// schema and renders the results as text tables. The queries join the fact
// table to its dimensions, so non-empty results double as a smoke test of
// the surrogate-key wiring.
package verify

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/byluca/flight-delays-etl/internal/storage"
)

// Query is one verification query. SQL may differ per backend only in its
// row-limiting clause, so it is built from a template by sqlFor.
type Query struct {
	Name        string
	Description string
	SQL         string
}

// Queries returns the verification set for the given backend kind. The
// threshold bounds the busiest-airports query to airports with more than
// that many departures.
func Queries(kind string, threshold int) []Query {
	return []Query{
		{
			Name:        "avg_arrival_delay_by_airline",
			Description: "ten worst airlines by average arrival delay",
			SQL: limitRows(kind, 10, `SELECT a.airline, AVG(f.arrival_delay) AS avg_arrival_delay
FROM f_flights f
JOIN d_airlines a ON a.airline_id = f.airline_id
WHERE f.arrival_delay IS NOT NULL
GROUP BY a.airline
ORDER BY avg_arrival_delay DESC`),
		},
		{
			Name:        "busy_airports_departure_delay",
			Description: fmt.Sprintf("ten worst airports with more than %d departures, by average departure delay", threshold),
			SQL: limitRows(kind, 10, fmt.Sprintf(`SELECT p.airport, COUNT(*) AS departures, AVG(f.departure_delay) AS avg_departure_delay
FROM f_flights f
JOIN d_airports p ON p.airport_id = f.origin_airport_id
WHERE f.departure_delay IS NOT NULL
GROUP BY p.airport
HAVING COUNT(*) > %d
ORDER BY avg_departure_delay DESC`, threshold)),
		},
		{
			Name:        "weekday_vs_weekend_delay",
			Description: "average arrival delay, weekdays versus weekends",
			SQL: `SELECT t.is_weekend, COUNT(*) AS flights, AVG(f.arrival_delay) AS avg_arrival_delay
FROM f_flights f
JOIN d_time t ON t.time_id = f.time_id
WHERE f.arrival_delay IS NOT NULL
GROUP BY t.is_weekend
ORDER BY t.is_weekend`,
		},
	}
}

// limitRows applies the backend's row-limiting syntax to a query. SQL Server
// uses TOP after SELECT; everything else appends LIMIT.
func limitRows(kind string, n int, q string) string {
	if kind == "mssql" {
		return strings.Replace(q, "SELECT ", fmt.Sprintf("SELECT TOP %d ", n), 1)
	}
	return fmt.Sprintf("%s\nLIMIT %d", q, n)
}

// Run executes every verification query and writes rendered tables to w.
// A query that errors fails the whole run; an empty result set is reported
// but not fatal.
func Run(ctx context.Context, repo storage.Repository, kind string, threshold int, w io.Writer) error {
	for _, q := range Queries(kind, threshold) {
		start := time.Now()
		cols, rows, err := repo.Query(ctx, q.SQL)
		if err != nil {
			return fmt.Errorf("verify %s: %w", q.Name, err)
		}
		log.Printf("verify: %s returned %d rows in %s", q.Name, len(rows), time.Since(start).Round(time.Millisecond))
		fmt.Fprintf(w, "\n== %s ==\n", q.Description)
		if len(rows) == 0 {
			fmt.Fprintln(w, "(no rows)")
			continue
		}
		if err := RenderTable(w, cols, rows); err != nil {
			return fmt.Errorf("verify %s: render: %w", q.Name, err)
		}
	}
	return nil
}

// RenderTable writes cols and rows as an aligned text table.
func RenderTable(w io.Writer, cols []string, rows [][]any) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// formatCell renders a scanned value. Drivers disagree on numeric types for
// aggregates, so floats are rounded to two decimals and everything else goes
// through %v.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case float64:
		return fmt.Sprintf("%.2f", x)
	case float32:
		return fmt.Sprintf("%.2f", x)
	case []byte:
		return string(x)
	case time.Time:
		return x.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", x)
	}
}
