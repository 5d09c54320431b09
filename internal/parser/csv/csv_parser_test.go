package csv_test

import (
	"strings"
	"testing"

	pcsv "github.com/byluca/flight-delays-etl/internal/parser/csv"
)

func TestParseBasic(t *testing.T) {
	in := "IATA_CODE,AIRLINE\nUA,United Air Lines Inc.\nAA,American Airlines Inc.\n"
	recs, skipped, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if skipped != 0 {
		t.Fatalf("skipped = %d; want 0", skipped)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d; want 2", len(recs))
	}
	if v := recs[0]["IATA_CODE"]; v != "UA" {
		t.Fatalf("IATA_CODE = %v; want UA", v)
	}
	if v := recs[1]["AIRLINE"]; v != "American Airlines Inc." {
		t.Fatalf("AIRLINE = %v", v)
	}
}

// TestParseBOMHeader verifies a UTF-8 BOM on the first header cell is
// stripped rather than leaking into the column name.
func TestParseBOMHeader(t *testing.T) {
	in := "\uFEFFIATA_CODE,AIRLINE\nUA,United\n"
	recs, _, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := recs[0]["IATA_CODE"]; !ok {
		t.Fatalf("BOM not stripped from header; keys: %v", keys(recs[0]))
	}
}

func TestParseEmptyFieldsAreNil(t *testing.T) {
	in := "A,B,C\n1,,3\n"
	recs, _, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v := recs[0]["B"]; v != nil {
		t.Fatalf("empty field = %#v; want nil", v)
	}
	if v := recs[0]["C"]; v != "3" {
		t.Fatalf("C = %v; want 3", v)
	}
}

// TestParseWidthMismatch verifies rows with the wrong field count are skipped
// and counted, not fatal.
func TestParseWidthMismatch(t *testing.T) {
	in := "A,B,C\n1,2,3\n1,2\n1,2,3,4\n4,5,6\n"
	recs, skipped, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if skipped != 2 {
		t.Fatalf("skipped = %d; want 2", skipped)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d; want 2", len(recs))
	}
}

func TestParseTrimSpaceAndHeaderMap(t *testing.T) {
	in := "Code , Name\n ua , United \n"
	p := pcsv.NewParser(pcsv.Options{
		TrimSpace: true,
		HeaderMap: map[string]string{"Code": "IATA_CODE", "Name": "AIRLINE"},
	})
	recs, _, err := p.Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v := recs[0]["IATA_CODE"]; v != "ua" {
		t.Fatalf("IATA_CODE = %v; want ua", v)
	}
	if v := recs[0]["AIRLINE"]; v != "United" {
		t.Fatalf("AIRLINE = %v; want United (trimmed)", v)
	}
}

func TestParseSemicolonAutoDetect(t *testing.T) {
	in := "A;B;C\n1;2;3\n4;5;6\n"
	recs, _, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(recs) != 2 || recs[0]["B"] != "2" {
		t.Fatalf("semicolon input misparsed: %v", recs)
	}
}

func TestHeader(t *testing.T) {
	in := "\uFEFFYEAR,MONTH,DAY\n2015,1,1\n"
	h, err := pcsv.NewParser(pcsv.Options{}).Header(strings.NewReader(in))
	if err != nil {
		t.Fatalf("header: %v", err)
	}
	want := []string{"YEAR", "MONTH", "DAY"}
	if len(h) != len(want) {
		t.Fatalf("header = %v; want %v", h, want)
	}
	for i := range want {
		if h[i] != want[i] {
			t.Fatalf("header[%d] = %q; want %q", i, h[i], want[i])
		}
	}
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
