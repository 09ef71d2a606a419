// Package extractor turns a fighter listing page into fighter records.
package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/JakeFAU/ufcstats-fighters/internal/fetcher"
	"github.com/JakeFAU/ufcstats-fighters/internal/fighter"
	"github.com/JakeFAU/ufcstats-fighters/internal/storage/local"
)

const (
	// TableClass is the class carried by the fighter statistics table.
	TableClass = "b-statistics__table"
	// TableSelector matches the fighter statistics table.
	TableSelector = "table." + TableClass
	// MinCells is the number of columns a data row must carry.
	MinCells = 10
	// sampleRows is how many parsed rows get a debug summary per page.
	sampleRows = 3
)

// Column positions within a data row.
const (
	colFirstName = iota
	colLastName
	colNickname
	colHeight
	colWeight
	colReach
	colStance
	colWins
	colLosses
	colDraws
)

// DebugSink stores raw pages whose layout could not be recognized.
type DebugSink interface {
	Put(ctx context.Context, name string, data io.Reader) (local.Object, error)
}

// Extractor parses listing pages. It never fails: structural problems are
// logged and yield fewer records.
type Extractor struct {
	debug  DebugSink
	logger *zap.Logger
}

// New builds an Extractor. debug may be nil, in which case pages without a
// results table are only logged.
func New(debug DebugSink, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{debug: debug, logger: logger}
}

// DebugFileName is the file a page without a results table is saved under.
func DebugFileName(key string) string {
	return fmt.Sprintf("debug_%s.html", key)
}

// Extract returns one record per valid table row, in document order.
func (e *Extractor) Extract(ctx context.Context, page fetcher.Page) []fighter.Record {
	logger := e.logger.With(zap.String("key", page.Key))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		logger.Warn("Failed to parse page", zap.Error(err))
		return nil
	}

	table := doc.Find(TableSelector).First()
	if table.Length() == 0 {
		logger.Warn("No table found; writing debug HTML")
		e.writeDebug(ctx, logger, page)
		return nil
	}

	// The parser wraps bare rows in an implied tbody, so only a tbody written
	// in the markup counts.
	tbody := table.Find("tbody").First()
	if tbody.Length() == 0 || !hasExplicitTbody(page.Body) {
		logger.Warn("No <tbody> in table")
		return nil
	}

	var records []fighter.Record
	tbody.Find("tr").Each(func(i int, row *goquery.Selection) {
		rec, record, ok := e.parseRow(logger, i, row)
		if !ok {
			return
		}
		records = append(records, rec)
		if len(records) <= sampleRows {
			logger.Debug("Parsed fighter",
				zap.Int("n", len(records)),
				zap.String("summary", fmt.Sprintf("%s (%s) - %sW-%sL-%sD",
					rec.FullName, rec.Nickname, record[0], record[1], record[2])),
			)
		}
	})

	logger.Info("Fighters parsed", zap.Int("count", len(records)), zap.String("source", page.URL))
	return records
}

// parseRow maps a row onto a record. The raw wins/losses/draws texts are
// returned alongside for diagnostics.
func (e *Extractor) parseRow(logger *zap.Logger, i int, row *goquery.Selection) (fighter.Record, [3]string, bool) {
	cells := row.Find("td")
	if cells.Length() < MinCells {
		logger.Debug("Skipping short row", zap.Int("row", i), zap.Int("cells", cells.Length()))
		return fighter.Record{}, [3]string{}, false
	}

	text := func(col int) string {
		return nodeText(cells.Get(col))
	}
	first, last := text(colFirstName), text(colLastName)
	fullName := fighter.FullName(first, last)
	if !fighter.ValidName(fullName) {
		logger.Debug("Skipping row without a valid name", zap.Int("row", i), zap.String("full_name", fullName))
		return fighter.Record{}, [3]string{}, false
	}

	record := [3]string{text(colWins), text(colLosses), text(colDraws)}
	return fighter.Record{
		FirstName: first,
		LastName:  last,
		FullName:  fullName,
		Nickname:  text(colNickname),
		Height:    text(colHeight),
		Weight:    text(colWeight),
		Reach:     text(colReach),
		Stance:    text(colStance),
		Wins:      fighter.ParseTally(record[0]),
		Losses:    fighter.ParseTally(record[1]),
		Draws:     fighter.ParseTally(record[2]),
	}, record, true
}

func (e *Extractor) writeDebug(ctx context.Context, logger *zap.Logger, page fetcher.Page) {
	if e.debug == nil {
		return
	}
	obj, err := e.debug.Put(ctx, DebugFileName(page.Key), bytes.NewReader(page.Body))
	if err != nil {
		logger.Warn("Failed to write debug HTML", zap.Error(err))
		return
	}
	logger.Info("Wrote debug HTML", zap.String("path", obj.Path), zap.Int64("bytes", obj.Size))
}

// hasExplicitTbody reports whether the first statistics table in body has a
// tbody start tag in its source, nested tables included.
func hasExplicitTbody(body []byte) bool {
	z := html.NewTokenizer(bytes.NewReader(body))
	depth := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken:
			tok := z.Token()
			switch tok.DataAtom {
			case atom.Table:
				if depth > 0 {
					depth++
				} else if hasClass(tok, TableClass) {
					depth = 1
				}
			case atom.Tbody:
				if depth > 0 {
					return true
				}
			}
		case html.SelfClosingTagToken:
			if depth > 0 && z.Token().DataAtom == atom.Tbody {
				return true
			}
		case html.EndTagToken:
			if depth > 0 && z.Token().DataAtom == atom.Table {
				depth--
				if depth == 0 {
					return false
				}
			}
		}
	}
}

func hasClass(tok html.Token, class string) bool {
	for _, attr := range tok.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// nodeText concatenates the descendant text nodes of n, each trimmed, so
// markup whitespace between inline elements does not leak into values.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node == nil {
			return
		}
		if node.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(node.Data))
			return
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
