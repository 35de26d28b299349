package preprocess

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// lyricsBody is the scraped markup of one song's lyrics: text broken up
// with <br>, sometimes wrapped in <p> or <div> per verse.
type lyricsBody struct{ *goquery.Selection }

// Text flattens the markup to plain text, one line per <br> and a blank
// line between blocks.
func (b lyricsBody) Text() string {
	b.Find("br").ReplaceWithHtml("\n")
	b.Find("p, div").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n\n")
	})
	b.Find("script, style").Remove()

	var lines []string
	blank := false
	for _, line := range strings.Split(b.Selection.Text(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(lines) > 0 {
				blank = true
			}
			continue
		}
		if blank {
			lines = append(lines, "")
			blank = false
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// plainLyrics returns the lyrics as text. Lyrics without markup are only
// trimmed.
func plainLyrics(raw string) (string, error) {
	if !strings.Contains(raw, "<") {
		return strings.TrimSpace(raw), nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("error parsing lyrics markup: %w", err)
	}
	return lyricsBody{doc.Find("body")}.Text(), nil
}
