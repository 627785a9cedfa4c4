package model

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SortField selects the key the collection is ordered by.
type SortField string

// SortDirection selects ascending or descending order.
type SortDirection string

// Layout is the visual arrangement of the rendered list. It only affects
// the CSS class marker on the container.
type Layout string

const (
	// SortByDate orders reviews by their parsed timestamp.
	SortByDate SortField = "date"
	// SortByRating orders reviews by their star rating.
	SortByRating SortField = "rating"

	// SortAsc sorts smallest key first.
	SortAsc SortDirection = "ASC"
	// SortDesc sorts largest key first.
	SortDesc SortDirection = "DESC"

	// LayoutGrid renders reviews as a grid.
	LayoutGrid Layout = "grid"
	// LayoutCarousel renders reviews as a carousel.
	LayoutCarousel Layout = "carousel"
)

// Default render option values, matching the attributes the embedding
// surface documents.
const (
	// DefaultSourceID is the catalog slug used when none is given.
	DefaultSourceID = "wordpress-reviews"

	// RatingFilterAll disables rating filtering.
	RatingFilterAll = "all"

	// NoLimit keeps every review after sorting.
	NoLimit = -1

	// DefaultLimit is the number of reviews rendered by default.
	DefaultLimit = 10

	// TruncateDisabled passes review content through unchanged.
	TruncateDisabled = 0

	// DefaultTruncateLength is the default truncation length in characters.
	DefaultTruncateLength = 300

	// DefaultGravatarSize is the default avatar size in pixels.
	DefaultGravatarSize = 96

	// DefaultContainerTag is the element wrapping the rendered list.
	DefaultContainerTag = "div"
)

// RenderOptions configures one render invocation.
// Build it with DefaultRenderOptions or ParseRenderOptions and call
// Normalize once before use; invalid values are corrected, never rejected.
type RenderOptions struct {
	// SourceID names the catalog page (plugin slug) to fetch reviews from.
	SourceID string `json:"plugin_slug" yaml:"plugin_slug"`

	// RatingFilter is "all" or a minimum star rating "1" to "5".
	// Any other value disables filtering.
	RatingFilter string `json:"rating" yaml:"rating"`

	// Limit is the maximum number of reviews kept, or NoLimit.
	Limit int `json:"limit" yaml:"limit"`

	SortField     SortField     `json:"sortby" yaml:"sortby"`
	SortDirection SortDirection `json:"sort" yaml:"sort"`

	// TruncateLength is the truncation length in characters.
	// TruncateDisabled (or any value <= 0) disables truncation.
	TruncateLength int `json:"truncate" yaml:"truncate"`

	// GravatarSize is the avatar size in pixels requested from Gravatar.
	GravatarSize int `json:"gravatar_size" yaml:"gravatar_size"`

	// ContainerTag wraps the list when non-empty.
	ContainerTag   string `json:"container" yaml:"container"`
	ContainerID    string `json:"container_id" yaml:"container_id"`
	ContainerClass string `json:"container_class" yaml:"container_class"`

	// LinkToAll appends a "see all reviews" link after the list.
	LinkToAll bool `json:"link_all" yaml:"link_all"`

	// LinkToAdd appends an "add a review" link after the list.
	LinkToAdd bool `json:"link_add" yaml:"link_add"`

	Layout Layout `json:"layout" yaml:"layout"`
}

// DefaultRenderOptions returns RenderOptions populated with the documented defaults.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		SourceID:       DefaultSourceID,
		RatingFilter:   RatingFilterAll,
		Limit:          DefaultLimit,
		SortField:      SortByDate,
		SortDirection:  SortDesc,
		TruncateLength: DefaultTruncateLength,
		GravatarSize:   DefaultGravatarSize,
		ContainerTag:   DefaultContainerTag,
		Layout:         LayoutGrid,
	}
}

// tagNamePattern accepts element names that are safe to emit as a container.
var tagNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*$`)

// Normalize corrects invalid values to safe defaults and returns the result.
// It never fails.
func (o RenderOptions) Normalize() RenderOptions {
	o.SourceID = strings.TrimSpace(o.SourceID)
	if o.SourceID == "" {
		o.SourceID = DefaultSourceID
	}

	o.RatingFilter = strings.ToLower(strings.TrimSpace(o.RatingFilter))
	if o.RatingFilter == "" {
		o.RatingFilter = RatingFilterAll
	}

	if o.Limit < NoLimit {
		o.Limit = NoLimit
	}

	switch SortField(strings.ToLower(strings.TrimSpace(string(o.SortField)))) {
	case SortByRating:
		o.SortField = SortByRating
	default:
		o.SortField = SortByDate
	}

	switch SortDirection(strings.ToUpper(strings.TrimSpace(string(o.SortDirection)))) {
	case SortAsc:
		o.SortDirection = SortAsc
	default:
		o.SortDirection = SortDesc
	}

	if o.TruncateLength < 0 {
		o.TruncateLength = TruncateDisabled
	}

	if o.GravatarSize <= 0 {
		o.GravatarSize = DefaultGravatarSize
	}

	o.ContainerTag = strings.TrimSpace(o.ContainerTag)
	if o.ContainerTag != "" && !tagNamePattern.MatchString(o.ContainerTag) {
		o.ContainerTag = DefaultContainerTag
	}
	o.ContainerID = strings.TrimSpace(o.ContainerID)
	o.ContainerClass = strings.Join(strings.Fields(o.ContainerClass), " ")

	switch Layout(strings.ToLower(strings.TrimSpace(string(o.Layout)))) {
	case LayoutCarousel:
		o.Layout = LayoutCarousel
	default:
		o.Layout = LayoutGrid
	}

	return o
}

// TruncateEnabled reports whether review content should be truncated.
func (o RenderOptions) TruncateEnabled() bool {
	return o.TruncateLength > TruncateDisabled
}

// Attribute keys accepted by ParseRenderOptions.
const (
	AttrSourceID       = "plugin_slug"
	AttrRating         = "rating"
	AttrLimit          = "limit"
	AttrSortBy         = "sortby"
	AttrSort           = "sort"
	AttrTruncate       = "truncate"
	AttrGravatarSize   = "gravatar_size"
	AttrContainer      = "container"
	AttrContainerID    = "container_id"
	AttrContainerClass = "container_class"
	AttrLinkAll        = "link_all"
	AttrLinkAdd        = "link_add"
	AttrLayout         = "layout"
)

// ParseRenderOptions builds RenderOptions from string attributes such as an
// HTTP query or a configuration file section, starting from base.
// Unknown keys are ignored and unparsable values keep the base value.
// The result is normalized.
func ParseRenderOptions(base RenderOptions, attrs map[string]string) RenderOptions {
	o := base
	fold := cases.Fold()

	for key, raw := range attrs {
		value := strings.TrimSpace(raw)
		folded := fold.String(value)

		switch fold.String(strings.TrimSpace(key)) {
		case AttrSourceID:
			o.SourceID = value
		case AttrRating:
			o.RatingFilter = folded
		case AttrLimit:
			o.Limit = parseLimit(folded, o.Limit)
		case AttrSortBy:
			o.SortField = SortField(folded)
		case AttrSort:
			o.SortDirection = SortDirection(cases.Upper(language.Und).String(value))
		case AttrTruncate:
			o.TruncateLength = parseTruncate(folded, o.TruncateLength)
		case AttrGravatarSize:
			if n, err := strconv.Atoi(value); err == nil {
				o.GravatarSize = n
			}
		case AttrContainer:
			o.ContainerTag = value
		case AttrContainerID:
			o.ContainerID = value
		case AttrContainerClass:
			o.ContainerClass = value
		case AttrLinkAll:
			o.LinkToAll = parseYes(folded)
		case AttrLinkAdd:
			o.LinkToAdd = parseYes(folded)
		case AttrLayout:
			o.Layout = Layout(folded)
		}
	}

	return o.Normalize()
}

// parseLimit accepts "none" (or empty) for NoLimit and non-negative integers.
func parseLimit(value string, fallback int) int {
	if value == "" || value == "none" {
		return NoLimit
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// parseTruncate accepts "false", "no", "off" and "0" as disabled.
func parseTruncate(value string, fallback int) int {
	switch value {
	case "", "false", "no", "off", "0":
		return TruncateDisabled
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	if n < 0 {
		return TruncateDisabled
	}
	return n
}

func parseYes(value string) bool {
	switch value {
	case "yes", "true", "1", "on":
		return true
	}
	return false
}
