package fighter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTally(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Tally
	}{
		{"12", Count(12)},
		{"0", Count(0)},
		{" 5 ", Count(5)},
		{"\n\t7\n", Count(7)},
		{"", Tally{}},
		{"   ", Tally{}},
		{"N/A", Tally{}},
		{"-3", Tally{}},
		{"+3", Tally{}},
		{"1.5", Tally{}},
		{"1 2", Tally{}},
		{"٣", Tally{}},
		{"99999999999999999999999", Tally{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseTally(tt.in), "input %q", tt.in)
	}
}

func TestTallyString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", Tally{}.String())
	assert.Equal(t, "0", Count(0).String())
	assert.Equal(t, "21", Count(21).String())
}

func TestFullNameAndValidity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Jon Jones", FullName("Jon", "Jones"))
	assert.Equal(t, "Jones", FullName("", "Jones"))
	assert.Equal(t, "", FullName("", ""))
	assert.False(t, ValidName(FullName("", "")))
	assert.False(t, ValidName(FullName("X", "")))
	assert.True(t, ValidName(FullName("X", "Y")))
	assert.False(t, ValidName(FullName("", "Ö")))
	assert.False(t, ValidName("王"))
	assert.True(t, ValidName(FullName("", "Öz")))
}

func TestRowMatchesHeader(t *testing.T) {
	t.Parallel()

	rec := Record{
		FirstName: "Tom",
		LastName:  "Aaron",
		FullName:  "Tom Aaron",
		Height:    `5' 11"`,
		Weight:    "155 lbs.",
		Wins:      Count(5),
		Losses:    Count(3),
	}
	row := rec.Row()
	require.Len(t, row, len(Header))
	assert.Equal(t, []string{"Tom", "Aaron", "Tom Aaron", "", `5' 11"`, "155 lbs.", "", "", "5", "3", ""}, row)
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	t.Parallel()

	in := []Record{
		{FullName: "A B", Wins: Count(1)},
		{FullName: "A B", Wins: Count(2)},
		{FullName: "C D"},
	}
	got, removed := Dedupe(in)
	require.Len(t, got, 2)
	assert.Equal(t, 1, removed)
	assert.Equal(t, "A B", got[0].FullName)
	assert.Equal(t, Count(1), got[0].Wins)
	assert.Equal(t, "C D", got[1].FullName)
}

func TestDedupeEmpty(t *testing.T) {
	t.Parallel()

	got, removed := Dedupe(nil)
	assert.Empty(t, got)
	assert.Zero(t, removed)
}
