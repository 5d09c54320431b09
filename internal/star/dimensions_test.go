package star

import (
	"reflect"
	"testing"
	"time"

	"github.com/byluca/flight-delays-etl/internal/extract"
)

func intp(v int) *int    { return &v }
func boolp(v bool) *bool { return &v }

func flight(y, m, d int, airline, origin, dest string) extract.RawFlight {
	return extract.RawFlight{
		Year: y, Month: m, Day: d, DateOK: true,
		Airline: airline, Origin: origin, Destination: dest,
	}
}

var testAirlines = []extract.RawAirline{
	{IATA: "UA", Name: "United Air Lines Inc."},
	{IATA: "AA", Name: "American Airlines Inc."},
}

var testAirports = []extract.RawAirport{
	{IATA: "LAX", Name: "Los Angeles International Airport", City: "Los Angeles", State: "CA", Country: "USA"},
	{IATA: "JFK", Name: "John F. Kennedy International Airport", City: "New York", State: "NY", Country: "USA"},
}

func TestBuildDimensionsAssignsSequentialKeys(t *testing.T) {
	dims, rep := BuildDimensions(testAirlines, testAirports, nil)
	if len(rep.Collisions) != 0 || rep.ExactDupes != 0 {
		t.Fatalf("unexpected collisions: %+v", rep)
	}
	if id, ok := dims.AirlineID("UA"); !ok || id != 1 {
		t.Fatalf("UA id = %d,%v; want 1", id, ok)
	}
	if id, ok := dims.AirlineID("AA"); !ok || id != 2 {
		t.Fatalf("AA id = %d,%v; want 2", id, ok)
	}
	if id, ok := dims.AirportID("JFK"); !ok || id != 2 {
		t.Fatalf("JFK id = %d,%v; want 2", id, ok)
	}
	if _, ok := dims.AirlineID("ZZ"); ok {
		t.Fatalf("unknown airline resolved")
	}
}

// TestBuildDimensionsDeterministic: identical input must yield identical key
// assignment run over run.
func TestBuildDimensionsDeterministic(t *testing.T) {
	flights := []extract.RawFlight{
		flight(2015, 1, 3, "UA", "LAX", "JFK"),
		flight(2015, 1, 1, "AA", "JFK", "LAX"),
		flight(2015, 1, 2, "UA", "LAX", "JFK"),
	}
	a, _ := BuildDimensions(testAirlines, testAirports, flights)
	b, _ := BuildDimensions(testAirlines, testAirports, flights)
	if !reflect.DeepEqual(a.Airlines, b.Airlines) || !reflect.DeepEqual(a.Airports, b.Airports) || !reflect.DeepEqual(a.Time, b.Time) {
		t.Fatalf("dimension build not deterministic")
	}
}

// TestBuildDimensionsDuplicateKeys: the first-seen row wins; an exact
// duplicate is counted, a conflicting one is reported.
func TestBuildDimensionsDuplicateKeys(t *testing.T) {
	airports := []extract.RawAirport{
		{IATA: "JFK", Name: "John F. Kennedy International Airport", City: "New York"},
		{IATA: "JFK", Name: "John F. Kennedy International Airport", City: "New York"}, // exact dupe
		{IATA: "JFK", Name: "Kennedy Intl", City: "NYC"},                               // conflicting dupe
	}
	dims, rep := BuildDimensions(nil, airports, nil)
	if len(dims.Airports) != 1 {
		t.Fatalf("len(airports) = %d; want 1", len(dims.Airports))
	}
	if dims.Airports[0].Name != "John F. Kennedy International Airport" {
		t.Fatalf("first-seen row did not win: %+v", dims.Airports[0])
	}
	if rep.ExactDupes != 1 {
		t.Fatalf("ExactDupes = %d; want 1", rep.ExactDupes)
	}
	if len(rep.Collisions) != 1 || rep.Collisions[0].Table != "d_airports" || rep.Collisions[0].Key != "JFK" {
		t.Fatalf("collisions = %+v", rep.Collisions)
	}
}

// TestTimeDimension: distinct valid dates only, keys ascending by date,
// Monday=0 weekday convention, weekend flag on Saturday/Sunday.
func TestTimeDimension(t *testing.T) {
	flights := []extract.RawFlight{
		flight(2015, 1, 3, "UA", "LAX", "JFK"), // Saturday
		flight(2015, 1, 1, "UA", "LAX", "JFK"), // Thursday
		flight(2015, 1, 3, "AA", "JFK", "LAX"), // duplicate date
		flight(2015, 1, 4, "UA", "LAX", "JFK"), // Sunday
		{Year: 2015, Month: 2, Day: 31, DateOK: true, Airline: "UA", Origin: "LAX", Destination: "JFK"}, // invalid
		{DateOK: false, Airline: "UA", Origin: "LAX", Destination: "JFK"},
	}
	dims, _ := BuildDimensions(testAirlines, testAirports, flights)
	if len(dims.Time) != 3 {
		t.Fatalf("len(time) = %d; want 3", len(dims.Time))
	}

	want := []struct {
		day     int
		dow     int
		weekend bool
	}{
		{1, 3, false}, // Thu
		{3, 5, true},  // Sat
		{4, 6, true},  // Sun
	}
	for i, w := range want {
		row := dims.Time[i]
		if row.ID != i+1 {
			t.Fatalf("time[%d].ID = %d; want %d", i, row.ID, i+1)
		}
		if row.Day != w.day || row.DayOfWeek != w.dow || row.IsWeekend != w.weekend {
			t.Fatalf("time[%d] = %+v; want day=%d dow=%d weekend=%v", i, row, w.day, w.dow, w.weekend)
		}
		if !row.Date.Equal(time.Date(2015, 1, w.day, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("time[%d].Date = %v", i, row.Date)
		}
	}

	if _, ok := dims.TimeID(2015, 2, 31); ok {
		t.Fatalf("invalid date resolved to a time key")
	}
	if id, ok := dims.TimeID(2015, 1, 3); !ok || id != 2 {
		t.Fatalf("TimeID(2015-01-03) = %d,%v; want 2", id, ok)
	}
}

func TestResolveDate(t *testing.T) {
	cases := []struct {
		y, m, d int
		dateOK  bool
		ok      bool
	}{
		{2015, 1, 1, true, true},
		{2015, 12, 31, true, true},
		{2016, 2, 29, true, true},  // leap day
		{2015, 2, 29, true, false}, // not a leap year
		{2015, 2, 31, true, false},
		{2015, 13, 1, true, false},
		{2015, 0, 10, true, false},
		{2015, 1, 0, true, false},
		{2015, 1, 1, false, false},
	}
	for _, tc := range cases {
		f := extract.RawFlight{Year: tc.y, Month: tc.m, Day: tc.d, DateOK: tc.dateOK}
		if _, ok := ResolveDate(f); ok != tc.ok {
			t.Fatalf("ResolveDate(%d-%d-%d dateOK=%v) ok=%v; want %v", tc.y, tc.m, tc.d, tc.dateOK, ok, tc.ok)
		}
	}
}
