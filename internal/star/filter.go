package star

import (
	"fmt"
	"strings"

	"github.com/byluca/flight-delays-etl/internal/extract"
)

// DropReport accounts for every fact candidate removed by the referential
// integrity filter. Total counts each dropped record exactly once; the
// per-cause counters may sum to more than Total because a record can fail
// several lookups at once.
type DropReport struct {
	Total              int
	InvalidDate        int
	UnknownAirline     int
	UnknownOrigin      int
	UnknownDestination int
}

// String renders the report the way the run summary logs it.
func (r DropReport) String() string {
	parts := []string{
		fmt.Sprintf("invalid_date=%d", r.InvalidDate),
		fmt.Sprintf("unknown_airline=%d", r.UnknownAirline),
		fmt.Sprintf("unknown_origin_airport=%d", r.UnknownOrigin),
		fmt.Sprintf("unknown_destination_airport=%d", r.UnknownDestination),
	}
	return fmt.Sprintf("dropped=%d (%s)", r.Total, strings.Join(parts, ", "))
}

// Filter removes raw flights whose foreign keys cannot be resolved against
// the dimensions. A record survives only when its date, airline, origin and
// destination all resolve; no partial foreign keys reach the fact table.
//
// The returned slice preserves input order. len(kept) + report.Total equals
// len(flights): nothing is silently lost or double-counted.
func Filter(flights []extract.RawFlight, dims *Dimensions) ([]extract.RawFlight, DropReport) {
	kept := make([]extract.RawFlight, 0, len(flights))
	var rep DropReport

	for _, f := range flights {
		drop := false
		if _, ok := dims.TimeID(f.Year, f.Month, f.Day); !ok {
			rep.InvalidDate++
			drop = true
		}
		if _, ok := dims.AirlineID(f.Airline); !ok {
			rep.UnknownAirline++
			drop = true
		}
		if _, ok := dims.AirportID(f.Origin); !ok {
			rep.UnknownOrigin++
			drop = true
		}
		if _, ok := dims.AirportID(f.Destination); !ok {
			rep.UnknownDestination++
			drop = true
		}
		if drop {
			rep.Total++
			continue
		}
		kept = append(kept, f)
	}
	return kept, rep
}
