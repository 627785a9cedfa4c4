package format

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"github.com/mitchellh/go-wordwrap"

	"github.com/nao1215/pluginreviews/internal/model"
)

// DefaultReadMoreLabel is the link text revealing a truncated review.
const DefaultReadMoreLabel = "Read more &raquo;"

// MaxRating is the highest star rating a review can carry.
const MaxRating = 5

// Formatter renders review records into EnrichedReview values.
// It is safe for concurrent use.
type Formatter struct {
	template      *Template
	readMoreLabel string
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithTemplate replaces the default review markup.
func WithTemplate(t *Template) Option {
	return func(f *Formatter) {
		if t != nil {
			f.template = t
		}
	}
}

// WithReadMoreLabel sets the label of the link revealing truncated content.
func WithReadMoreLabel(label string) Option {
	return func(f *Formatter) {
		if label != "" {
			f.readMoreLabel = label
		}
	}
}

// New creates a Formatter using DefaultTemplate unless overridden.
func New(opts ...Option) *Formatter {
	f := &Formatter{
		template:      NewTemplate(DefaultTemplate),
		readMoreLabel: DefaultReadMoreLabel,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format enriches one record using the gravatar size, truncation length and
// source identifier of opts. All original fields are preserved.
func (f *Formatter) Format(record model.ReviewRecord, opts model.RenderOptions) model.EnrichedReview {
	rating := ParseRating(record.RatingText)

	content := record.Content
	if opts.TruncateEnabled() {
		content = Truncate(content, opts.TruncateLength, f.readMoreLabel)
	}

	output := f.template.Render(map[string]string{
		TagGravatarURL:  ResizeGravatar(record.AvatarURL, opts.GravatarSize),
		TagGravatarSize: strconv.Itoa(opts.GravatarSize),
		TagUsername:     record.Username.Text,
		TagUserLink:     record.Username.ProfileURL,
		TagRating:       strconv.Itoa(rating),
		TagTitle:        record.Title,
		TagReview:       content,
		TagDate:         record.DateText,
		TagPluginName:   opts.SourceID,
		TagPluginSlug:   opts.SourceID,
	})

	return model.EnrichedReview{
		ReviewRecord:   record,
		Timestamp:      ParseTimestamp(record.DateText),
		RatingValue:    rating,
		RenderedOutput: output,
	}
}

var leadingInt = regexp.MustCompile(`^\d+`)

// ParseRating returns the leading integer of a rating label such as
// "4 stars" or "5 out of 5 stars", clamped to [0, MaxRating].
// Labels without a leading integer rate 0.
func ParseRating(text string) int {
	digits := leadingInt.FindString(strings.TrimSpace(text))
	if digits == "" {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n > MaxRating {
		// Overflowing or absurd values are treated as the maximum.
		return MaxRating
	}
	return n
}

// dateLayouts are tried before the natural-language fallback.
var dateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	time.RFC1123,
	time.RFC1123Z,
}

// ParseTimestamp converts a free-form date to Unix seconds in UTC.
// Unparsable or empty dates yield 0.
func ParseTimestamp(text string) int64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, text, time.UTC); err == nil {
			return t.Unix()
		}
	}
	t, err := dateparse.ParseIn(text, time.UTC)
	if err != nil {
		return 0
	}
	return t.Unix()
}

// gravatarSizeParam is the Gravatar query parameter carrying the size.
const gravatarSizeParam = "s"

// ResizeGravatar rewrites the size parameter of a Gravatar URL to size.
// A URL already sized to size is returned unchanged. Other query parameters
// keep their order; a missing size parameter is appended.
func ResizeGravatar(avatarURL string, size int) string {
	if avatarURL == "" {
		return ""
	}

	rest, fragment := avatarURL, ""
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		rest, fragment = rest[:i], rest[i:]
	}
	base, query, _ := strings.Cut(rest, "?")

	want := strconv.Itoa(size)
	params := make([]string, 0)
	replaced := false

	for _, param := range strings.Split(query, "&") {
		if param == "" {
			continue
		}
		key, value, _ := strings.Cut(param, "=")
		if key != gravatarSizeParam {
			params = append(params, param)
			continue
		}
		if replaced {
			// Drop duplicate size parameters.
			continue
		}
		if n, err := strconv.Atoi(value); err == nil && n == size {
			return avatarURL
		}
		params = append(params, gravatarSizeParam+"="+want)
		replaced = true
	}

	if !replaced {
		params = append(params, gravatarSizeParam+"="+want)
	}

	return base + "?" + strings.Join(params, "&") + fragment
}

// Truncate shortens content to roughly length characters on a word
// boundary. The hidden remainder is kept in a "wr-truncated" span followed
// by a "Read more" link so the client can reveal it.
//
// Length is counted in runes. Markup inside content is not parsed, so a tag
// straddling the boundary is split as-is.
func Truncate(content string, length int, readMoreLabel string) string {
	if length <= 0 {
		return content
	}

	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) < length {
		return content
	}

	wrapped := wordwrap.WrapString(content, uint(length))
	head, tail, found := strings.Cut(wrapped, "\n")
	if !found || tail == "" {
		// Nothing left to hide.
		return content
	}

	return head + " [...]" +
		`<span class="wr-truncated">` + tail + `</span>` +
		` <a class="wr-truncated-show" href="#wr-readmore">` + readMoreLabel + `</a>`
}
