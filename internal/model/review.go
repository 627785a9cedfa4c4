package model

// Username is the reviewer's display name and profile link.
type Username struct {
	// Text is the stripped text content of the first anchor in the review.
	Text string `json:"text"`

	// ProfileURL is the href of the first anchor in the review.
	ProfileURL string `json:"href"`
}

// ReviewRecord is one structured review extracted from the catalog HTML.
// Every field is always present; extraction never fails on missing
// sub-data and leaves the corresponding field empty instead.
type ReviewRecord struct {
	Username Username `json:"username"`

	// AvatarURL is the src of the first image, usually a Gravatar URL that
	// may carry a size query parameter.
	AvatarURL string `json:"avatar"`

	Title string `json:"title"`

	// Content is the review body. It may contain embedded markup.
	Content string `json:"content"`

	// DateText is the free-form date string as published by the source.
	DateText string `json:"date"`

	// RatingText is the free-form rating label, e.g. "5 stars".
	RatingText string `json:"rating"`
}

// EnrichedReview is a ReviewRecord prepared for display.
// It is rebuilt on every render request and never persisted.
type EnrichedReview struct {
	ReviewRecord

	// Timestamp is the Unix time parsed from DateText, 0 when unparsable.
	Timestamp int64 `json:"timestamp"`

	// RatingValue is the star rating parsed from RatingText, in [0, 5].
	RatingValue int `json:"rating_value"`

	// RenderedOutput is the final markup after template substitution.
	RenderedOutput string `json:"output"`
}
