package format

import (
	"strings"
)

// DefaultTemplate is the markup rendered for one review.
const DefaultTemplate = `
<div class="wr-single">
	<img class="wr-avatar" src="{{gravatar_url}}" alt="{{username}}" width="{{gravatar_size}}" height="{{gravatar_size}}">
	<div class="wr-username"><a href="{{user_link}}" target="_blank">{{username}}</a></div>
	<div class="wr-sr wr-sr-{{rating}}"><i></i><i></i><i></i><i></i><i></i></div>
	<div class="wr-title">{{title}}</div>
	<div class="wr-content">{{review}}</div>
	<div class="wr-date">{{date}}</div>
</div>
`

// Template tags understood by the review template.
const (
	TagGravatarURL  = "gravatar_url"
	TagGravatarSize = "gravatar_size"
	TagUsername     = "username"
	TagUserLink     = "user_link"
	TagRating       = "rating"
	TagTitle        = "title"
	TagReview       = "review"
	TagDate         = "date"
	TagPluginName   = "plugin_name"
	TagPluginSlug   = "plugin_slug"
)

// Template is review markup containing {{tag}} placeholders.
type Template struct {
	markup string
}

// NewTemplate creates a Template from markup. Empty markup selects DefaultTemplate.
func NewTemplate(markup string) *Template {
	if strings.TrimSpace(markup) == "" {
		markup = DefaultTemplate
	}
	return &Template{markup: markup}
}

// Render substitutes every {{tag}} placeholder with its value in a single
// pass. Substituted values are inserted verbatim and never re-expanded, so
// a value containing "{{title}}" stays literal. Unknown placeholders are
// left untouched.
func (t *Template) Render(tags map[string]string) string {
	pairs := make([]string, 0, len(tags)*2)
	for tag, value := range tags {
		pairs = append(pairs, "{{"+tag+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(t.markup)
}

// Markup returns the raw template markup.
func (t *Template) Markup() string {
	return t.markup
}
