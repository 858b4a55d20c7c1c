package generator

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"social_post_generator/errs"
)

// contentSelectors are probed in order; the first match is taken as the
// page's main content.
var contentSelectors = []string{
	"article",
	"main",
	`[role="main"]`,
	".content",
	"#content",
	".post-content",
	".entry-content",
	".article-content",
}

// Extractor pulls the visible text out of HTML pages.
type Extractor struct {
	minTextLength int
	log           *slog.Logger
}

func NewExtractor(minTextLength int, log *slog.Logger) *Extractor {
	return &Extractor{minTextLength: minTextLength, log: log}
}

// Extract parses the page, strips non-content tags, probes the content
// selectors and collapses the visible text into single-spaced form.
func (e *Extractor) Extract(pageHTML string) (ExtractedContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return ExtractedContent{}, errs.NewTextExtraction("unknown", "html parsing failed: "+err.Error())
	}

	doc.Find("script, style, meta, link, noscript").Remove()

	var content *goquery.Selection
	for _, selector := range contentSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			e.log.Debug("content container found", slog.String("selector", selector))
			content = sel
			break
		}
	}
	if content == nil {
		if body := doc.Find("body").First(); body.Length() > 0 {
			content = body
		} else {
			content = doc.Selection
		}
		e.log.Debug("no content container, using body")
	}

	text := visibleText(content)
	text = strings.Join(strings.Fields(text), " ")

	length := utf8.RuneCountInString(text)
	e.log.Info("text extracted", slog.Int("length", length))
	return ExtractedContent{Text: text, Length: length}, nil
}

// visibleText joins trimmed text nodes with single spaces so words from
// adjacent elements never glue together.
func visibleText(sel *goquery.Selection) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, node := range sel.Nodes {
		walk(node)
	}
	return strings.Join(parts, " ")
}

// ValidateLength rejects pages whose visible text is too short to write a
// meaningful post from.
func (e *Extractor) ValidateLength(text, pageURL string) error {
	if n := utf8.RuneCountInString(text); n < e.minTextLength {
		e.log.Warn("not enough text",
			slog.Int("length", n),
			slog.Int("min", e.minTextLength),
			slog.String("url", pageURL))
		return errs.NewTextExtraction(pageURL, fmt.Sprintf("text too short: %d chars", n))
	}
	return nil
}
