package boeparser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// document is a parsed payload with the views the rules run against.
type document struct {
	raw       string
	text      string
	cells     map[string]string
	canonical string
}

func parseDocument(payload string) (*document, error) {
	raw := strings.ReplaceAll(payload, "&nbsp;", " ")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to parse payload markup: %w", err)
	}

	d := &document{
		raw:   raw,
		cells: make(map[string]string),
	}

	if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok {
		d.canonical = strings.TrimSpace(href)
	}

	// First non-empty cell per label wins.
	doc.Find("th").Each(func(_ int, th *goquery.Selection) {
		label := labelKey(th.Text())
		if label == "" {
			return
		}
		if _, seen := d.cells[label]; seen {
			return
		}
		td := th.NextFiltered("td")
		if td.Length() == 0 {
			return
		}
		if value := collapseSpace(td.First().Text()); value != "" {
			d.cells[label] = value
		}
	})

	doc.Find("script, style, noscript").Remove()
	d.text = plainText(doc.Selection)
	return d, nil
}

func (d *document) cell(label string) (string, bool) {
	v, ok := d.cells[labelKey(label)]
	return v, ok
}

// plainText joins every text node with a space so adjacent cells stay separate words.
func plainText(root *goquery.Selection) string {
	var b strings.Builder
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, c *goquery.Selection) {
			if goquery.NodeName(c) == "#text" {
				b.WriteString(c.Text())
				b.WriteByte(' ')
				return
			}
			walk(c)
		})
	}
	walk(root)
	return collapseSpace(b.String())
}

func labelKey(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimSuffix(collapseSpace(s), ":")))
}

// collapseSpace trims s and folds whitespace runs, NBSP included, into one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
