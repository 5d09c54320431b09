package star

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/zeebo/xxh3"

	"github.com/byluca/flight-delays-etl/internal/extract"
)

// Collision records a duplicate natural key whose descriptive attributes
// differ from the first-seen row. The first-seen row wins; the discrepancy is
// reported, never silently resolved.
type Collision struct {
	Table string // "d_airlines" or "d_airports"
	Key   string // the IATA code
}

// CollisionReport aggregates natural-key collisions found while building the
// dimensions.
type CollisionReport struct {
	Collisions []Collision
	// ExactDupes counts duplicate keys whose attributes matched the
	// first-seen row byte for byte; these are harmless and only logged.
	ExactDupes int
}

// BuildDimensions derives the three dimension tables. Surrogate keys are
// assigned by stable enumeration: airlines and airports in input order after
// first-seen dedup, time in ascending date order. Identical input therefore
// always yields identical key assignment.
func BuildDimensions(airlines []extract.RawAirline, airports []extract.RawAirport, flights []extract.RawFlight) (*Dimensions, CollisionReport) {
	d := &Dimensions{
		airlineID: make(map[string]int, len(airlines)),
		airportID: make(map[string]int, len(airports)),
	}
	var rep CollisionReport

	seenAirline := make(map[string]uint64, len(airlines))
	for _, a := range airlines {
		fp := xxh3.Hash([]byte(a.Name))
		if prev, dup := seenAirline[a.IATA]; dup {
			if prev != fp {
				rep.Collisions = append(rep.Collisions, Collision{Table: "d_airlines", Key: a.IATA})
				log.Printf("d_airlines: duplicate IATA %q with differing attributes; keeping first-seen row", a.IATA)
			} else {
				rep.ExactDupes++
			}
			continue
		}
		seenAirline[a.IATA] = fp
		id := len(d.Airlines) + 1
		d.Airlines = append(d.Airlines, DimAirline{ID: id, IATA: a.IATA, Name: a.Name})
		d.airlineID[a.IATA] = id
	}

	seenAirport := make(map[string]uint64, len(airports))
	for _, a := range airports {
		fp := airportFingerprint(a)
		if prev, dup := seenAirport[a.IATA]; dup {
			if prev != fp {
				rep.Collisions = append(rep.Collisions, Collision{Table: "d_airports", Key: a.IATA})
				log.Printf("d_airports: duplicate IATA %q with differing attributes; keeping first-seen row", a.IATA)
			} else {
				rep.ExactDupes++
			}
			continue
		}
		seenAirport[a.IATA] = fp
		id := len(d.Airports) + 1
		d.Airports = append(d.Airports, DimAirport{
			ID: id, IATA: a.IATA, Name: a.Name, City: a.City,
			State: a.State, Country: a.Country, Lat: a.Lat, Lon: a.Lon,
		})
		d.airportID[a.IATA] = id
	}

	d.Time, d.timeID = buildTimeDim(flights)
	return d, rep
}

// buildTimeDim collects the distinct valid dates across all raw flights and
// assigns surrogate keys in ascending date order.
func buildTimeDim(flights []extract.RawFlight) ([]DimTime, map[string]int) {
	dates := map[string]time.Time{}
	for _, f := range flights {
		t, ok := ResolveDate(f)
		if !ok {
			continue
		}
		dates[dateKey(f.Year, f.Month, f.Day)] = t
	}

	keys := make([]string, 0, len(dates))
	for k := range dates {
		keys = append(keys, k)
	}
	// dateKey sorts lexicographically in date order (zero-padded components).
	sort.Strings(keys)

	rows := make([]DimTime, 0, len(keys))
	ids := make(map[string]int, len(keys))
	for i, k := range keys {
		t := dates[k]
		dow := (int(t.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
		rows = append(rows, DimTime{
			ID:        i + 1,
			Date:      t,
			Year:      t.Year(),
			Month:     int(t.Month()),
			Day:       t.Day(),
			DayOfWeek: dow,
			IsWeekend: dow >= 5,
		})
		ids[k] = i + 1
	}
	return rows, ids
}

// ResolveDate reconstructs the calendar date from a raw flight's year/month/
// day triple. A triple that fails to round-trip (month=13, Feb 31, ...) is
// unresolved.
func ResolveDate(f extract.RawFlight) (time.Time, bool) {
	if !f.DateOK || f.Month < 1 || f.Month > 12 || f.Day < 1 {
		return time.Time{}, false
	}
	t := time.Date(f.Year, time.Month(f.Month), f.Day, 0, 0, 0, 0, time.UTC)
	if t.Year() != f.Year || int(t.Month()) != f.Month || t.Day() != f.Day {
		return time.Time{}, false
	}
	return t, true
}

// dateKey renders a y/m/d triple as a fixed-width sortable key.
func dateKey(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// airportFingerprint hashes the descriptive attributes of an airport row for
// collision detection.
func airportFingerprint(a extract.RawAirport) uint64 {
	b := make([]byte, 0, 64)
	for _, s := range []string{a.Name, a.City, a.State, a.Country} {
		b = append(b, s...)
		b = append(b, 0x1f)
	}
	if a.Lat != nil {
		b = append(b, fmt.Sprintf("%v", *a.Lat)...)
	}
	b = append(b, 0x1f)
	if a.Lon != nil {
		b = append(b, fmt.Sprintf("%v", *a.Lon)...)
	}
	return xxh3.Hash(b)
}
