// Package records defines the generic row representation shared by the CSV
// parser and the typed extract layer. A Record maps canonical column names to
// values; missing or empty fields are stored as nil so that nullability
// survives all the way to the database.
package records

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is one parsed row keyed by column name.
type Record map[string]any

// String returns the string value for key. Missing keys and nil values yield
// ("", false).
func (r Record) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int parses the value for key as an integer. Values with a trailing decimal
// part (e.g. "21.0", as emitted by some tabular exports) are accepted when the
// fraction is zero.
func (r Record) Int(key string) (int, bool) {
	s, ok := r.String(key)
	if !ok {
		return 0, false
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, false
	}
	return int(f), true
}

// Float parses the value for key as a float64.
func (r Record) Float(key string) (float64, bool) {
	s, ok := r.String(key)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Bool interprets the value for key as a boolean flag. Numeric exports encode
// flags as "0"/"1"; textual forms are accepted case-insensitively.
func (r Record) Bool(key string) (bool, bool) {
	s, ok := r.String(key)
	if !ok {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "1.0", "true", "t", "yes":
		return true, true
	case "0", "0.0", "false", "f", "no":
		return false, true
	}
	return false, false
}

// Fingerprint renders the values of the given keys into a stable byte string
// suitable for hashing. nil is encoded distinctly from the empty string.
func (r Record) Fingerprint(keys []string) []byte {
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		v, ok := r[k]
		if !ok || v == nil {
			b.WriteByte('\x00')
			continue
		}
		switch t := v.(type) {
		case string:
			b.WriteString(t)
		default:
			b.WriteString(fmt.Sprint(t))
		}
	}
	return []byte(b.String())
}
