package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs listings in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the listing in Markdown format.
func (w *MarkdownWriter) Write(listing *Listing) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, listing)
	w.writeDistribution(md, listing)
	w.writeReviews(md, listing)
	w.writeFooter(md, listing)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and the listing summary table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, listing *Listing) {
	md.H1("Reviews of " + listing.SourceID)
	md.PlainText("")

	rows := [][]string{
		{"Plugin", "`" + listing.SourceID + "`"},
		{"All Reviews", mdLink(listing.ReviewsURL, listing.ReviewsURL)},
		{"Generated", listing.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Reviews", strconv.Itoa(len(listing.Reviews))},
	}
	if len(listing.Reviews) > 0 {
		rows = append(rows, []string{"Average Rating", strconv.FormatFloat(listing.AverageRating(), 'f', 1, 64)})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeDistribution writes the rating breakdown and a mermaid pie chart.
func (w *MarkdownWriter) writeDistribution(md *markdown.Markdown, listing *Listing) {
	if len(listing.Reviews) == 0 {
		return
	}

	md.H2("Rating Distribution")
	md.PlainText("")

	counts := listing.RatingCounts()
	rows := make([][]string, 0, len(counts))
	for rating := len(counts) - 1; rating >= 0; rating-- {
		rows = append(rows, []string{stars(rating), strconv.Itoa(counts[rating])})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rating", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Rating Distribution"),
		piechart.WithShowData(true),
	)
	for rating := len(counts) - 1; rating >= 0; rating-- {
		if counts[rating] > 0 {
			chart.LabelAndIntValue(strconv.Itoa(rating)+" stars", uint64(counts[rating]))
		}
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")

	switch avg := listing.AverageRating(); {
	case avg >= 4:
		md.Tip("Reviewers rate this plugin highly.")
	case avg < 2.5:
		md.Warningf("Average rating is %.1f out of 5.", avg)
	default:
		md.Note("Reviews are mixed.")
	}
	md.PlainText("")
}

// writeReviews writes the review table and the full text of each review.
func (w *MarkdownWriter) writeReviews(md *markdown.Markdown, listing *Listing) {
	md.H2("Reviews")
	md.PlainText("")

	if len(listing.Reviews) == 0 {
		md.PlainText("No reviews found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(listing.Reviews))
	for i, r := range listing.Reviews {
		author := orDash(plainText(r.Username.Text))
		if r.Username.ProfileURL != "" {
			author = mdLink(author, r.Username.ProfileURL)
		}
		rows[i] = []string{
			stars(r.RatingValue),
			escapeCell(truncateString(orDash(plainText(r.Title)), 50)),
			escapeCell(author),
			orDash(r.DateText),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Rating", "Title", "Author", "Date"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, r := range listing.Reviews {
		if content := plainText(r.Content); content != "" {
			md.Details(orDash(plainText(r.Title)), content)
		}
	}
	md.PlainText("")
}

// writeFooter writes the listing footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown, listing *Listing) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Read or add reviews on %s*", mdLink("WordPress.org", listing.ReviewsURL))
}

func mdLink(text, url string) string {
	return "[" + text + "](" + url + ")"
}

// escapeCell keeps a value from breaking the table row.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
