// Package star builds the dimensional model: it derives the three dimension
// tables from the raw extracts, filters fact candidates that violate
// referential integrity, and assembles the final fact rows with surrogate
// foreign keys.
package star

import "time"

// DimAirline is one row of d_airlines.
type DimAirline struct {
	ID   int
	IATA string
	Name string
}

// DimAirport is one row of d_airports.
type DimAirport struct {
	ID      int
	IATA    string
	Name    string
	City    string
	State   string
	Country string
	Lat     *float64
	Lon     *float64
}

// DimTime is one row of d_time. DayOfWeek is Monday=0..Sunday=6; IsWeekend is
// true for Saturday and Sunday.
type DimTime struct {
	ID        int
	Date      time.Time
	Year      int
	Month     int
	Day       int
	DayOfWeek int
	IsWeekend bool
}

// FactFlight is one row of f_flights. The store generates the primary key;
// the four foreign keys are resolved surrogate keys and are never zero.
// Measures stay nullable: a cancelled flight keeps its null arrival delay and
// air time.
type FactFlight struct {
	TimeID               int
	AirlineID            int
	OriginAirportID      int
	DestinationAirportID int

	DepartureDelay *int
	ArrivalDelay   *int
	AirTime        *int
	Distance       *int
	Cancelled      *bool
	Diverted       *bool
}

// Dimensions holds the three dimension tables plus the natural-key lookup
// maps built once and shared read-only by the filter and the fact builder.
type Dimensions struct {
	Airlines []DimAirline
	Airports []DimAirport
	Time     []DimTime

	airlineID map[string]int
	airportID map[string]int
	timeID    map[string]int // keyed by dateKey(y,m,d)
}

// AirlineID resolves an airline IATA code to its surrogate key.
func (d *Dimensions) AirlineID(iata string) (int, bool) {
	id, ok := d.airlineID[iata]
	return id, ok
}

// AirportID resolves an airport IATA code to its surrogate key.
func (d *Dimensions) AirportID(iata string) (int, bool) {
	id, ok := d.airportID[iata]
	return id, ok
}

// TimeID resolves a calendar date to its surrogate key.
func (d *Dimensions) TimeID(year, month, day int) (int, bool) {
	id, ok := d.timeID[dateKey(year, month, day)]
	return id, ok
}
