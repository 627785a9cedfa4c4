package report

import (
	"strings"

	"golang.org/x/net/html"
)

// plainText strips markup from s, keeping only the text it renders.
// Runs of whitespace collapse to one space.
func plainText(s string) string {
	var sb strings.Builder

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a malformed tail; keep what was read.
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.TextToken:
			sb.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			// Tags separate words.
			sb.WriteByte(' ')
		}
	}
}

// stars renders a rating as filled and empty stars.
func stars(rating int) string {
	rating = max(0, min(rating, 5))
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
