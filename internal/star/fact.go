package star

import (
	"fmt"

	"github.com/byluca/flight-delays-etl/internal/extract"
)

// BuildFacts joins the surviving fact candidates against the dimension
// lookup maps, replacing natural keys with surrogate foreign keys. Every
// candidate must already have passed Filter with the same dimensions; an
// unresolvable key here means the caller broke that contract and is an error,
// not a drop.
//
// len(out) always equals len(candidates).
func BuildFacts(candidates []extract.RawFlight, dims *Dimensions) ([]FactFlight, error) {
	out := make([]FactFlight, 0, len(candidates))
	for i, f := range candidates {
		timeID, ok := dims.TimeID(f.Year, f.Month, f.Day)
		if !ok {
			return nil, fmt.Errorf("fact %d: unresolved date %04d-%02d-%02d (candidate not filtered?)", i, f.Year, f.Month, f.Day)
		}
		airlineID, ok := dims.AirlineID(f.Airline)
		if !ok {
			return nil, fmt.Errorf("fact %d: unresolved airline %q", i, f.Airline)
		}
		originID, ok := dims.AirportID(f.Origin)
		if !ok {
			return nil, fmt.Errorf("fact %d: unresolved origin airport %q", i, f.Origin)
		}
		destID, ok := dims.AirportID(f.Destination)
		if !ok {
			return nil, fmt.Errorf("fact %d: unresolved destination airport %q", i, f.Destination)
		}
		out = append(out, FactFlight{
			TimeID:               timeID,
			AirlineID:            airlineID,
			OriginAirportID:      originID,
			DestinationAirportID: destID,
			DepartureDelay:       f.DepartureDelay,
			ArrivalDelay:         f.ArrivalDelay,
			AirTime:              f.AirTime,
			Distance:             f.Distance,
			Cancelled:            f.Cancelled,
			Diverted:             f.Diverted,
		})
	}
	return out, nil
}

// Column orders used for bulk loading. Dimension surrogate keys are loaded
// explicitly; f_flights omits its auto-generated primary key.
var (
	AirlineColumns = []string{"airline_id", "iata_code", "airline"}
	AirportColumns = []string{"airport_id", "iata_code", "airport", "city", "state", "country", "latitude", "longitude"}
	TimeColumns    = []string{"time_id", "date", "year", "month", "day", "day_of_week", "is_weekend"}
	FactColumns    = []string{
		"time_id", "airline_id", "origin_airport_id", "destination_airport_id",
		"departure_delay", "arrival_delay", "air_time", "distance", "cancelled", "diverted",
	}
)

// AirlineRows renders the airline dimension in AirlineColumns order.
func AirlineRows(rows []DimAirline) [][]any {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, []any{r.ID, r.IATA, r.Name})
	}
	return out
}

// AirportRows renders the airport dimension in AirportColumns order.
func AirportRows(rows []DimAirport) [][]any {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, []any{r.ID, r.IATA, r.Name, r.City, r.State, r.Country, nilableFloat(r.Lat), nilableFloat(r.Lon)})
	}
	return out
}

// TimeRows renders the time dimension in TimeColumns order. Dates are passed
// as time.Time; every backend driver encodes those natively.
func TimeRows(rows []DimTime) [][]any {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, []any{r.ID, r.Date, r.Year, r.Month, r.Day, r.DayOfWeek, r.IsWeekend})
	}
	return out
}

// FactRows renders the fact table in FactColumns order with nulls preserved.
func FactRows(rows []FactFlight) [][]any {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, []any{
			r.TimeID, r.AirlineID, r.OriginAirportID, r.DestinationAirportID,
			nilableInt(r.DepartureDelay), nilableInt(r.ArrivalDelay),
			nilableInt(r.AirTime), nilableInt(r.Distance),
			nilableBool(r.Cancelled), nilableBool(r.Diverted),
		})
	}
	return out
}

func nilableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nilableBool(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}

func nilableFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
