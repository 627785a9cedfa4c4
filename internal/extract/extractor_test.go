package extract

import (
	"errors"
	"strings"
	"testing"
)

// reviewBlock renders one review in the shape the catalog publishes.
func reviewBlock(user, title, body, date, rating string) string {
	return `<div class="review">
	<div class="review-head">
		<div class="reviewer-info">
			<div class="review-title-section">
				<h4 class="review-title">` + title + `</h4>
				<div class="star-rating">
					<div class="wporg-ratings" title="` + rating + `">
						<span class="screen-reader-text">` + rating + `</span>
					</div>
				</div>
			</div>
			<p class="reviewer">By <a href="https://profiles.wordpress.org/` + user + `">` +
		`<img alt="" src="https://secure.gravatar.com/avatar/abc?s=16&amp;d=mm&amp;r=g" class="avatar" height="16" width="16"></a>` +
		`<a href="https://profiles.wordpress.org/` + user + `" class="reviewer-name">` + user + `</a>
				on <span class="review-date">` + date + `</span></p>
		</div>
	</div>
	<div class="review-body">` + body + `</div>
</div>`
}

// TestExtract tests review extraction from catalog HTML.
func TestExtract(t *testing.T) {
	t.Parallel()

	t.Run("extracts every field of a review", func(t *testing.T) {
		t.Parallel()

		html := reviewBlock("alice", "Great plugin", "<p>Works  well.</p>", "January 1, 2020", "5 out of 5 stars")
		records := NewExtractor().Extract(html)

		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}

		r := records[0]
		if r.Username.ProfileURL != "https://profiles.wordpress.org/alice" {
			t.Errorf("profile URL: got %q", r.Username.ProfileURL)
		}
		// The first anchor wraps only the avatar image, so its text is empty.
		if r.Username.Text != "" {
			t.Errorf("username text: got %q", r.Username.Text)
		}
		if r.AvatarURL != "https://secure.gravatar.com/avatar/abc?s=16&d=mm&r=g" {
			t.Errorf("avatar: got %q", r.AvatarURL)
		}
		if r.Title != "Great plugin" {
			t.Errorf("title: got %q", r.Title)
		}
		if r.Content != "Works  well." {
			t.Errorf("content: got %q", r.Content)
		}
		if r.DateText != "January 1, 2020" {
			t.Errorf("date: got %q", r.DateText)
		}
		if r.RatingText != "5 out of 5 stars" {
			t.Errorf("rating: got %q", r.RatingText)
		}
	})

	t.Run("username comes from the first anchor text", func(t *testing.T) {
		t.Parallel()

		html := `<div class="review"><a href="/u/bob"> <b>bob</b> </a><a href="/other">other</a></div>`
		records := NewExtractor().Extract(html)

		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if records[0].Username.Text != "bob" || records[0].Username.ProfileURL != "/u/bob" {
			t.Errorf("got %+v", records[0].Username)
		}
	})

	t.Run("returns records in document order", func(t *testing.T) {
		t.Parallel()

		html := reviewBlock("a", "First", "1", "January 1, 2020", "5 stars") +
			reviewBlock("b", "Second", "2", "February 1, 2020", "2 stars") +
			reviewBlock("c", "Third", "3", "March 1, 2020", "3 stars")
		records := NewExtractor().Extract(html)

		if len(records) != 3 {
			t.Fatalf("expected 3 records, got %d", len(records))
		}
		for i, want := range []string{"First", "Second", "Third"} {
			if records[i].Title != want {
				t.Errorf("record %d: expected %q, got %q", i, want, records[i].Title)
			}
		}
	})

	t.Run("matches the class token exactly", func(t *testing.T) {
		t.Parallel()

		html := `<div class="reviews"><div class="review-body">x</div><div class="preview">y</div></div>`
		records := NewExtractor().Extract(html)

		if len(records) != 0 {
			t.Errorf("expected no records, got %d", len(records))
		}
	})

	t.Run("matches the token among other classes", func(t *testing.T) {
		t.Parallel()

		html := `<li class="item  review
			highlighted"><h4>Title</h4></li>`
		records := NewExtractor().Extract(html)

		if len(records) != 1 || records[0].Title != "Title" {
			t.Fatalf("expected one record titled 'Title', got %+v", records)
		}
	})

	t.Run("missing sub-fields are empty strings", func(t *testing.T) {
		t.Parallel()

		records := NewExtractor().Extract(`<div class="review"><p>nothing useful</p></div>`)

		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		r := records[0]
		if r.Username.Text != "" || r.Username.ProfileURL != "" || r.AvatarURL != "" ||
			r.Title != "" || r.Content != "" || r.DateText != "" || r.RatingText != "" {
			t.Errorf("expected all fields empty, got %+v", r)
		}
	})

	t.Run("tolerates malformed HTML", func(t *testing.T) {
		t.Parallel()

		html := `<div class="review"><h4>Unclosed <b>title</h4><div class="review-body">body<div class="review">` +
			`<h4>Nested</h4>`
		records := NewExtractor().Extract(html)

		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[1].Title != "Nested" {
			t.Errorf("expected nested review title, got %q", records[1].Title)
		}
	})

	t.Run("escapes markup characters in text", func(t *testing.T) {
		t.Parallel()

		records := NewExtractor().Extract(`<div class="review"><h4>Fast &amp; &lt;small&gt;</h4></div>`)

		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if records[0].Title != "Fast &amp; &lt;small&gt;" {
			t.Errorf("got %q", records[0].Title)
		}
	})
}

// TestExtractDegenerateInput tests that extraction never fails.
func TestExtractDegenerateInput(t *testing.T) {
	t.Parallel()

	inputs := map[string]string{
		"empty":      "",
		"whitespace": "   \n\t",
		"garbage":    "\x00\x01<<<>>>&&&;;;<div class=",
		"plain text": "no markup here",
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			records := NewExtractor().Extract(input)
			if records == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(records) != 0 {
				t.Errorf("expected no records, got %d", len(records))
			}
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

// TestExtractReaderError tests that read failures degrade to an empty result.
func TestExtractReaderError(t *testing.T) {
	t.Parallel()

	records := NewExtractor().ExtractReader(failingReader{})
	if records == nil || len(records) != 0 {
		t.Errorf("expected empty slice, got %v", records)
	}
}

// TestExtractInlineReviews tests that any element type can carry the review class.
func TestExtractInlineReviews(t *testing.T) {
	t.Parallel()

	records := NewExtractor().Extract(strings.Repeat(`<span class="review">x</span>`, 2))
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
}
