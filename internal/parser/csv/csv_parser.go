// Package csv implements a streaming CSV parser for the source extracts. It
// never buffers the whole file, strips a UTF-8 BOM from the header, converts
// empty fields to nil, and skips (while counting) rows whose field count does
// not match the header.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/byluca/flight-delays-etl/pkg/records"
)

// Options configures the parser. All fields are optional; zero values apply
// sensible defaults.
type Options struct {
	// Comma is the field delimiter. Zero means auto-detect from the first
	// sample block of the input.
	Comma rune

	// TrimSpace trims leading/trailing ASCII spaces from each field value.
	TrimSpace bool

	// HeaderMap maps source header names to canonical keys. Headers are
	// otherwise used exactly as written (matching is case-sensitive).
	HeaderMap map[string]string
}

// Parser parses CSV input according to Options. A Parser may be reused across
// inputs but is not safe for concurrent use.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// skipLogLimit caps per-row skip logging so a badly damaged file cannot flood
// the log; skips beyond the limit are still counted.
const skipLogLimit = 400

// Parse consumes CSV records from r and returns the parsed rows along with
// the number of rows skipped due to parse errors or field-count mismatches.
// The first row is always treated as the header.
func (p *Parser) Parse(r io.Reader) ([]records.Record, int, error) {
	r, comma, err := prepare(r, p.opt.Comma)
	if err != nil {
		return nil, 0, err
	}

	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1 // width is enforced after read
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	h, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}
	headers := canonicalHeaders(h, p.opt.HeaderMap)

	var out []records.Record
	var skipped int
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if skipped < skipLogLimit {
				log.Printf("skipping row %d: %v", line, err)
			}
			skipped++
			continue
		}
		if len(row) != len(headers) {
			if skipped < skipLogLimit {
				log.Printf("skipping row %d: incorrect number of fields (expected %d, got %d)", line, len(headers), len(row))
			}
			skipped++
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[headers[i]] = emptyToNil(val)
		}
		out = append(out, rec)
	}
	return out, skipped, nil
}

// Header reads only the header row from r, applying the same normalization as
// Parse. Used by the audit utility.
func (p *Parser) Header(r io.Reader) ([]string, error) {
	r, comma, err := prepare(r, p.opt.Comma)
	if err != nil {
		return nil, err
	}
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	h, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	return canonicalHeaders(h, p.opt.HeaderMap), nil
}

// prepare wraps r with the encoding decoder and resolves the delimiter,
// sniffing it from the sample when not configured.
func prepare(r io.Reader, comma rune) (io.Reader, rune, error) {
	dr, sample, err := DecodeReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("detect encoding: %w", err)
	}
	if comma == 0 {
		comma = DetectDelimiter(sample)
	}
	return dr, comma, nil
}

// canonicalHeaders strips a UTF-8 BOM from the first cell, trims surrounding
// whitespace, and applies the optional HeaderMap. Header case is preserved:
// the documented column names are matched exactly.
func canonicalHeaders(h []string, headerMap map[string]string) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		if headerMap != nil {
			if m, ok := headerMap[c]; ok {
				c = m
			}
		}
		res[i] = c
	}
	return res
}

// emptyToNil converts an empty string to nil; all other values pass through.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
