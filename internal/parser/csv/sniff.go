// Encoding and delimiter detection for the source extracts. Exports vary:
// UTF-8 with or without BOM is the common case, but UTF-16 dumps and Latin-1
// directory files show up in the wild, as do semicolon- and tab-delimited
// variants.

package csv

import (
	"bufio"
	"bytes"
	stdcsv "encoding/csv"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// sniffSize is the number of bytes peeked from the input for encoding and
// delimiter detection.
const sniffSize = 64 * 1024

// delimiterCandidates are tried in order; comma wins ties.
var delimiterCandidates = []rune{',', ';', '\t', '|'}

// DecodeReader inspects the head of r and returns a reader that yields UTF-8,
// plus the decoded sample used for further sniffing.
//
// Detection rules:
//   - UTF-16 LE/BE BOM: decoded via the corresponding UTF-16 transform.
//   - UTF-8 BOM: passed through (the parser strips the BOM from the header).
//   - Valid UTF-8 sample: passed through unchanged.
//   - Anything else: decoded as Latin-1, which maps every byte to a rune and
//     therefore cannot fail mid-stream.
func DecodeReader(r io.Reader) (io.Reader, []byte, error) {
	br := bufio.NewReaderSize(r, sniffSize)
	sample, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, nil, err
	}

	var enc encoding.Encoding
	switch {
	case bytes.HasPrefix(sample, []byte{0xFF, 0xFE}):
		enc = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case bytes.HasPrefix(sample, []byte{0xFE, 0xFF}):
		enc = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case utf8.Valid(trimPartialRune(sample)):
		return br, sample, nil
	default:
		enc = charmap.ISO8859_1
	}

	dec := enc.NewDecoder()
	decoded, _, err := transform.Bytes(dec, sample)
	if err != nil {
		// Fall back to the raw sample; the stream reader below will surface
		// any real decode problem to the caller.
		decoded = sample
	}
	return transform.NewReader(br, enc.NewDecoder()), decoded, nil
}

// trimPartialRune drops up to utf8.UTFMax-1 trailing bytes so that a
// multi-byte rune cut off by the sample boundary does not fail validation.
func trimPartialRune(b []byte) []byte {
	for i := 0; i < utf8.UTFMax-1 && len(b) > 0; i++ {
		r, _ := utf8.DecodeLastRune(b)
		if r != utf8.RuneError {
			return b
		}
		b = b[:len(b)-1]
	}
	return b
}

// DetectDelimiter picks the most plausible field delimiter for sample. Each
// candidate is scored by parsing the sample: a delimiter qualifies when it
// yields a consistent column count greater than one across the sampled rows,
// and the widest consistent split wins. Comma is the fallback.
func DetectDelimiter(sample []byte) rune {
	best := ','
	bestCols := 1
	for _, cand := range delimiterCandidates {
		cols, ok := consistentWidth(sample, cand)
		if ok && cols > bestCols {
			best = cand
			bestCols = cols
		}
	}
	return best
}

// consistentWidth parses up to a handful of complete rows from sample with the
// given delimiter and reports the column count when all rows agree.
func consistentWidth(sample []byte, comma rune) (int, bool) {
	cr := stdcsv.NewReader(bytes.NewReader(sample))
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	const maxRows = 16
	width := 0
	rows := 0
	for rows < maxRows {
		rec, err := cr.Read()
		if err != nil {
			// The sample usually ends mid-row; an error after at least two
			// clean rows does not disqualify the candidate.
			break
		}
		rows++
		if width == 0 {
			width = len(rec)
			continue
		}
		if len(rec) != width {
			return 0, false
		}
	}
	return width, rows >= 2 && width > 1
}
