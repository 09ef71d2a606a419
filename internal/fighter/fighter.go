// Package fighter defines the fighter record parsed from the statistics directory.
package fighter

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// MinFullNameLen is the shortest full name a record may carry.
const MinFullNameLen = 2

// Header is the fixed CSV column order. It matches the Record field order.
var Header = []string{
	"first_name",
	"last_name",
	"full_name",
	"nickname",
	"height",
	"weight",
	"reach",
	"stance",
	"wins",
	"losses",
	"draws",
}

// Tally is an optional non-negative count. A missing or non-numeric cell is
// an invalid Tally, never zero.
type Tally struct {
	Value int
	Valid bool
}

// Count returns a valid Tally holding n.
func Count(n int) Tally {
	return Tally{Value: n, Valid: true}
}

// ParseTally trims text and parses it when it is a plain run of ASCII digits.
// Anything else, including values that overflow int, yields an invalid Tally.
func ParseTally(text string) Tally {
	value := strings.TrimSpace(text)
	if value == "" {
		return Tally{}
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return Tally{}
		}
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return Tally{}
	}
	return Count(n)
}

// String renders the count, or an empty string when absent.
func (t Tally) String() string {
	if !t.Valid {
		return ""
	}
	return strconv.Itoa(t.Value)
}

// Record is one fighter row. Height, weight and reach keep their display form
// (e.g. 5' 11", 155 lbs.).
type Record struct {
	FirstName string
	LastName  string
	FullName  string
	Nickname  string
	Height    string
	Weight    string
	Reach     string
	Stance    string
	Wins      Tally
	Losses    Tally
	Draws     Tally
}

// FullName joins first and last names with a single space and trims the result.
func FullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

// ValidName reports whether a full name is long enough to be emitted.
// Length is counted in characters, not bytes.
func ValidName(fullName string) bool {
	return utf8.RuneCountInString(fullName) >= MinFullNameLen
}

// Row returns the record's values in Header order.
func (r Record) Row() []string {
	return []string{
		r.FirstName,
		r.LastName,
		r.FullName,
		r.Nickname,
		r.Height,
		r.Weight,
		r.Reach,
		r.Stance,
		r.Wins.String(),
		r.Losses.String(),
		r.Draws.String(),
	}
}

// Dedupe keeps the first record for each full name, preserving input order,
// and reports how many records were dropped.
func Dedupe(records []Record) ([]Record, int) {
	seen := make(map[string]struct{}, len(records))
	kept := make([]Record, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.FullName]; ok {
			continue
		}
		seen[rec.FullName] = struct{}{}
		kept = append(kept, rec)
	}
	return kept, len(records) - len(kept)
}
