// Package output renders fighter records as CSV and as a console preview table.
package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/JakeFAU/ufcstats-fighters/internal/fighter"
)

// WriteCSV writes the header row followed by one row per record.
// Absent tallies are written as empty fields.
func WriteCSV(w io.Writer, records []fighter.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(fighter.Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, rec := range records {
		if err := cw.Write(rec.Row()); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// RenderSample prints the first n records as a table to w and returns the
// rendered text. Nothing is printed when n or records is empty.
func RenderSample(w io.Writer, records []fighter.Record, n int) string {
	if n <= 0 || len(records) == 0 {
		return ""
	}
	if n > len(records) {
		n = len(records)
	}

	t := table.NewWriter()
	if w != nil {
		t.SetOutputMirror(w)
	}
	t.AppendHeader(table.Row{"full_name", "nickname", "height", "weight", "wins", "losses", "draws"})
	for _, rec := range records[:n] {
		t.AppendRow(table.Row{
			rec.FullName,
			rec.Nickname,
			rec.Height,
			rec.Weight,
			rec.Wins.String(),
			rec.Losses.String(),
			rec.Draws.String(),
		})
	}
	t.SetStyle(table.StyleRounded)
	return t.Render()
}
