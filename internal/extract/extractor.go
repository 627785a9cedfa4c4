package extract

import (
	"io"
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/pluginreviews/internal/model"
)

// Class tokens and element names that identify the parts of a review.
const (
	classReview     = "review"
	classReviewBody = "review-body"
	classReviewDate = "review-date"
	classRating     = "screen-reader-text"

	elementAnchor = "a"
	elementImage  = "img"
	elementTitle  = "h4"
)

// Extractor parses review HTML into model.ReviewRecord values.
// It holds no per-call state and is safe for concurrent use.
type Extractor struct {
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used to report parse failures.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Extract returns one record per review element in document order.
// It returns an empty slice when the input contains no reviews or cannot
// be parsed.
func (e *Extractor) Extract(content string) []model.ReviewRecord {
	return e.ExtractReader(strings.NewReader(content))
}

// ExtractReader is like Extract but reads the HTML from r.
func (e *Extractor) ExtractReader(r io.Reader) []model.ReviewRecord {
	records := make([]model.ReviewRecord, 0)

	doc, err := html.Parse(r)
	if err != nil {
		e.logger.Warn("failed to parse review HTML", "error", err)
		return records
	}

	for _, node := range findAll(doc, func(n *html.Node) bool {
		return hasClass(n, classReview)
	}) {
		records = append(records, e.extractReview(node))
	}

	e.logger.Debug("extracted reviews", "count", len(records))
	return records
}

// extractReview builds a record from one review element.
func (e *Extractor) extractReview(n *html.Node) model.ReviewRecord {
	var record model.ReviewRecord

	if a := findFirst(n, isElement(elementAnchor)); a != nil {
		record.Username.ProfileURL = getAttr(a, "href")
		record.Username.Text = textContent(a)
	}
	if img := findFirst(n, isElement(elementImage)); img != nil {
		record.AvatarURL = getAttr(img, "src")
	}
	if h4 := findFirst(n, isElement(elementTitle)); h4 != nil {
		record.Title = textContent(h4)
	}

	record.Content = classText(n, classReviewBody)
	record.DateText = classText(n, classReviewDate)
	record.RatingText = classText(n, classRating)

	return record
}

// classText returns the stripped text of the first element under n carrying
// the class token, or "" if there is none.
func classText(n *html.Node, class string) string {
	match := findFirst(n, func(c *html.Node) bool {
		return hasClass(c, class)
	})
	if match == nil {
		return ""
	}
	return textContent(match)
}

// findAll returns every element in the tree rooted at n that satisfies
// match, in document (pre-)order. Nested matches are all returned.
func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node

	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode && match(c) {
			found = append(found, c)
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)

	return found
}

// findFirst returns the first element in the tree rooted at n, n included,
// that satisfies match.
func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func isElement(name string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Data == name
	}
}

// hasClass reports whether the whitespace-separated class attribute of n
// contains token exactly.
func hasClass(n *html.Node, token string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, class := range strings.Fields(getAttr(n, "class")) {
		if class == token {
			return true
		}
	}
	return false
}

// textEscaper re-escapes the characters an XML serializer escapes in text
// nodes, so extracted text stays safe to drop into markup verbatim.
var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// textContent returns the concatenated, trimmed text of every text node
// below n with all tags stripped.
func textContent(n *html.Node) string {
	var b strings.Builder

	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)

	return strings.TrimSpace(textEscaper.Replace(b.String()))
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
