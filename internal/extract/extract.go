// Package extract turns parsed CSV records into the typed raw entities the
// transform stage works on. Column names are matched exactly against the
// documented headers of the three extracts; empty fields become nil-valued
// (pointer) measures so nullability survives into the fact table.
package extract

import (
	"fmt"
	"io"
	"log"

	csvparser "github.com/byluca/flight-delays-etl/internal/parser/csv"
	"github.com/byluca/flight-delays-etl/pkg/records"
)

// Documented column names of the flight legs extract.
const (
	ColYear               = "YEAR"
	ColMonth              = "MONTH"
	ColDay                = "DAY"
	ColAirline            = "AIRLINE"
	ColOriginAirport      = "ORIGIN_AIRPORT"
	ColDestinationAirport = "DESTINATION_AIRPORT"
	ColDepartureDelay     = "DEPARTURE_DELAY"
	ColArrivalDelay       = "ARRIVAL_DELAY"
	ColAirTime            = "AIR_TIME"
	ColDistance           = "DISTANCE"
	ColCancelled          = "CANCELLED"
	ColDiverted           = "DIVERTED"
)

// Documented column names of the airport and airline directories.
const (
	ColIATACode  = "IATA_CODE"
	ColAirport   = "AIRPORT"
	ColCity      = "CITY"
	ColState     = "STATE"
	ColCountry   = "COUNTRY"
	ColLatitude  = "LATITUDE"
	ColLongitude = "LONGITUDE"
)

// RawFlight is one scheduled flight leg as read from the extract. The date is
// kept as the raw year/month/day triple; resolution (and validation) happens
// in the transform stage. Measures are nil when the source field was empty,
// which is the normal case for cancelled flights.
type RawFlight struct {
	Year, Month, Day int
	DateOK           bool // the Y/M/D fields were present and numeric

	Airline     string
	Origin      string
	Destination string

	DepartureDelay *int
	ArrivalDelay   *int
	AirTime        *int
	Distance       *int
	Cancelled      *bool
	Diverted       *bool
}

// RawAirport is one row of the airport directory.
type RawAirport struct {
	IATA    string
	Name    string
	City    string
	State   string
	Country string
	Lat     *float64
	Lon     *float64
}

// RawAirline is one row of the airline directory.
type RawAirline struct {
	IATA string
	Name string
}

// Stats accounts for every data row of an extract: Rows were parsed into
// entities, Skipped failed CSV-level parsing (width/quoting), ParseErrors had
// a non-numeric measure and were excluded.
type Stats struct {
	Rows        int
	Skipped     int
	ParseErrors int
}

// Total is the number of data rows seen in the extract.
func (s Stats) Total() int { return s.Rows + s.Skipped + s.ParseErrors }

// Flights reads the flight legs extract. Records with a non-numeric measure
// are excluded and counted rather than failing the run; records with a
// missing or non-numeric date triple are kept with DateOK=false so the
// integrity filter can attribute the drop to an invalid date.
func Flights(r io.Reader, opt csvparser.Options) ([]RawFlight, Stats, error) {
	recs, skipped, err := csvparser.NewParser(opt).Parse(r)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("parse flights: %w", err)
	}

	out := make([]RawFlight, 0, len(recs))
	st := Stats{Skipped: skipped}
	for i, rec := range recs {
		f, perr := flightFromRecord(rec)
		if perr != nil {
			if st.ParseErrors < 20 {
				log.Printf("flights: excluding row %d: %v", i+2, perr)
			}
			st.ParseErrors++
			continue
		}
		out = append(out, f)
		st.Rows++
	}
	return out, st, nil
}

// Airports reads the airport directory extract.
func Airports(r io.Reader, opt csvparser.Options) ([]RawAirport, Stats, error) {
	recs, skipped, err := csvparser.NewParser(opt).Parse(r)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("parse airports: %w", err)
	}
	out := make([]RawAirport, 0, len(recs))
	st := Stats{Skipped: skipped}
	for _, rec := range recs {
		a := RawAirport{}
		a.IATA, _ = rec.String(ColIATACode)
		a.Name, _ = rec.String(ColAirport)
		a.City, _ = rec.String(ColCity)
		a.State, _ = rec.String(ColState)
		a.Country, _ = rec.String(ColCountry)
		if v, ok := rec.Float(ColLatitude); ok {
			a.Lat = &v
		}
		if v, ok := rec.Float(ColLongitude); ok {
			a.Lon = &v
		}
		if a.IATA == "" {
			st.ParseErrors++
			continue
		}
		out = append(out, a)
		st.Rows++
	}
	return out, st, nil
}

// Airlines reads the airline directory extract.
func Airlines(r io.Reader, opt csvparser.Options) ([]RawAirline, Stats, error) {
	recs, skipped, err := csvparser.NewParser(opt).Parse(r)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("parse airlines: %w", err)
	}
	out := make([]RawAirline, 0, len(recs))
	st := Stats{Skipped: skipped}
	for _, rec := range recs {
		a := RawAirline{}
		a.IATA, _ = rec.String(ColIATACode)
		a.Name, _ = rec.String(ColAirline)
		if a.IATA == "" {
			st.ParseErrors++
			continue
		}
		out = append(out, a)
		st.Rows++
	}
	return out, st, nil
}

// flightFromRecord maps one record onto RawFlight. A present but non-numeric
// measure is a parse error; an absent measure is a null.
func flightFromRecord(rec records.Record) (RawFlight, error) {
	f := RawFlight{}
	f.Airline, _ = rec.String(ColAirline)
	f.Origin, _ = rec.String(ColOriginAirport)
	f.Destination, _ = rec.String(ColDestinationAirport)

	y, yok := rec.Int(ColYear)
	m, mok := rec.Int(ColMonth)
	d, dok := rec.Int(ColDay)
	if yok && mok && dok {
		f.Year, f.Month, f.Day = y, m, d
		f.DateOK = true
	}

	var err error
	f.DepartureDelay, err = nullableInt(rec, ColDepartureDelay, err)
	f.ArrivalDelay, err = nullableInt(rec, ColArrivalDelay, err)
	f.AirTime, err = nullableInt(rec, ColAirTime, err)
	f.Distance, err = nullableInt(rec, ColDistance, err)
	f.Cancelled, err = nullableBool(rec, ColCancelled, err)
	f.Diverted, err = nullableBool(rec, ColDiverted, err)
	if err != nil {
		return RawFlight{}, err
	}
	return f, nil
}

// nullableInt returns nil when the field is absent, its value when numeric,
// and an error otherwise. The prior error is threaded through so callers can
// chain conversions and check once.
func nullableInt(rec records.Record, key string, prev error) (*int, error) {
	if prev != nil {
		return nil, prev
	}
	if v, ok := rec[key]; !ok || v == nil {
		return nil, nil
	}
	i, ok := rec.Int(key)
	if !ok {
		return nil, fmt.Errorf("non-numeric %s: %v", key, rec[key])
	}
	return &i, nil
}

// nullableBool mirrors nullableInt for 0/1 flag columns.
func nullableBool(rec records.Record, key string, prev error) (*bool, error) {
	if prev != nil {
		return nil, prev
	}
	if v, ok := rec[key]; !ok || v == nil {
		return nil, nil
	}
	b, ok := rec.Bool(key)
	if !ok {
		return nil, fmt.Errorf("non-boolean %s: %v", key, rec[key])
	}
	return &b, nil
}
