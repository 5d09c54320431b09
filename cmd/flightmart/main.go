// Command flightmart runs the flight-delays ETL: it reads the three source
// CSVs, derives the star schema, recreates the target tables and bulk-loads
// them, then prints the verification aggregates.
//
// Usage:
//
//	flightmart -flights_csv data/flights.csv -db_driver mysql -db_password secret
//
// Every flag has an environment-variable fallback; see -help.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/byluca/flight-delays-etl/internal/config"
	"github.com/byluca/flight-delays-etl/internal/etl"

	// register all backends with the storage factory.
	_ "github.com/byluca/flight-delays-etl/internal/storage/all"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := etl.Run(ctx, cfg); err != nil {
		log.Fatalf("etl: %v", err)
	}
}
