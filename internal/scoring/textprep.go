package scoring

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	prose "github.com/jdkato/prose/v2"
	"github.com/russross/blackfriday/v2"
)

var urlPattern = regexp.MustCompile(`https?://\S+|www\.\S+`)

// PlainText flattens a journal entry to plain text before scoring. Entries
// arrive as markdown from the editor; markdown is rendered and the text
// extracted so headings, emphasis markers and raw URLs don't skew the
// scores.
func PlainText(input string) string {
	html := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())

	text := string(html)
	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html)); err == nil {
		text = doc.Text()
	}

	text = urlPattern.ReplaceAllString(text, "")

	return strings.Join(strings.Fields(text), " ")
}

// TextStats tokenizes the plain text and returns word and sentence counts
// stored alongside the entry.
func TextStats(text string) (words, sentences int) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, 0
	}

	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithTagging(false),
	)
	if err != nil {
		// Tokenizer failures degrade to a whitespace split.
		return len(strings.Fields(text)), 1
	}

	for _, tok := range doc.Tokens() {
		if isWord(tok.Text) {
			words++
		}
	}

	return words, len(doc.Sentences())
}

func isWord(tok string) bool {
	for _, r := range tok {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
