package pipeline

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/nao1215/pluginreviews/internal/model"
)

// review builds an enriched review whose rendered output is "[title]".
func review(title string, rating int, timestamp int64) model.EnrichedReview {
	return model.EnrichedReview{
		ReviewRecord:   model.ReviewRecord{Title: title},
		RatingValue:    rating,
		Timestamp:      timestamp,
		RenderedOutput: "[" + title + "]",
	}
}

func titles(reviews []model.EnrichedReview) string {
	parts := make([]string, len(reviews))
	for i, r := range reviews {
		parts[i] = r.Title
	}
	return strings.Join(parts, ",")
}

func runStep(t *testing.T, step Step, reviews []model.EnrichedReview, opts model.RenderOptions) *Collection {
	t.Helper()

	c := NewCollection(reviews, opts)
	if err := step.Do(context.Background(), c); err != nil {
		t.Fatalf("%s failed: %v", step.Name(), err)
	}
	return c
}

// TestFilterStep tests minimum rating filtering.
func TestFilterStep(t *testing.T) {
	t.Parallel()

	all := []model.EnrichedReview{
		review("r0", 0, 0), review("r1", 1, 0), review("r2", 2, 0),
		review("r3", 3, 0), review("r4", 4, 0), review("r5", 5, 0),
	}

	tests := []struct {
		filter string
		want   string
	}{
		{"all", "r0,r1,r2,r3,r4,r5"},
		{"3", "r3,r4,r5"},
		{"1", "r1,r2,r3,r4,r5"},
		{"5", "r5"},
		{"0", "r0,r1,r2,r3,r4,r5"},
		{"6", "r0,r1,r2,r3,r4,r5"},
		{"great", "r0,r1,r2,r3,r4,r5"},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			t.Parallel()

			opts := model.DefaultRenderOptions()
			opts.RatingFilter = tt.filter
			c := runStep(t, FilterStep{}, all, opts)

			if got := titles(c.Reviews); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}

	t.Run("filter 3 keeps exactly the ratings of at least 3", func(t *testing.T) {
		t.Parallel()

		var input []model.EnrichedReview
		for i := range 60 {
			input = append(input, review(strconv.Itoa(i), (i*7)%6, 0))
		}

		opts := model.DefaultRenderOptions()
		opts.RatingFilter = "3"
		c := runStep(t, FilterStep{}, input, opts)

		expected := 0
		for _, r := range input {
			if r.RatingValue >= 3 {
				expected++
			}
		}
		if len(c.Reviews) != expected {
			t.Errorf("expected %d reviews, got %d", expected, len(c.Reviews))
		}
		for _, r := range c.Reviews {
			if r.RatingValue < 3 {
				t.Errorf("review %s rated %d should be removed", r.Title, r.RatingValue)
			}
		}
	})
}

// TestSortStep tests ordering and stability.
func TestSortStep(t *testing.T) {
	t.Parallel()

	input := []model.EnrichedReview{
		review("a", 3, 300),
		review("b", 5, 100),
		review("c", 3, 200),
		review("d", 1, 200),
		review("e", 5, 400),
	}

	tests := []struct {
		name      string
		field     model.SortField
		direction model.SortDirection
		want      string
	}{
		{"rating desc keeps tie order", model.SortByRating, model.SortDesc, "b,e,a,c,d"},
		{"rating asc keeps tie order", model.SortByRating, model.SortAsc, "d,a,c,b,e"},
		{"date desc keeps tie order", model.SortByDate, model.SortDesc, "e,a,c,d,b"},
		{"date asc keeps tie order", model.SortByDate, model.SortAsc, "b,c,d,a,e"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := model.DefaultRenderOptions()
			opts.SortField = tt.field
			opts.SortDirection = tt.direction
			c := runStep(t, SortStep{}, input, opts)

			if got := titles(c.Reviews); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}

	t.Run("unparsable dates sort as oldest", func(t *testing.T) {
		t.Parallel()

		opts := model.DefaultRenderOptions()
		c := runStep(t, SortStep{}, []model.EnrichedReview{review("unknown", 5, 0), review("dated", 1, 1577836800)}, opts)

		if got := titles(c.Reviews); got != "dated,unknown" {
			t.Errorf("expected dated,unknown, got %s", got)
		}
	})
}

// TestLimitStep tests result limiting.
func TestLimitStep(t *testing.T) {
	t.Parallel()

	input := []model.EnrichedReview{review("a", 0, 0), review("b", 0, 0), review("c", 0, 0)}

	for _, n := range []int{0, 1, 2, 3, 4, 100} {
		t.Run("limit "+strconv.Itoa(n), func(t *testing.T) {
			t.Parallel()

			opts := model.DefaultRenderOptions()
			opts.Limit = n
			c := runStep(t, LimitStep{}, input, opts)

			want := min(n, len(input))
			if len(c.Reviews) != want {
				t.Fatalf("expected %d reviews, got %d", want, len(c.Reviews))
			}
			if got, prefix := titles(c.Reviews), titles(input[:want]); got != prefix {
				t.Errorf("expected order %s, got %s", prefix, got)
			}
		})
	}

	t.Run("no limit keeps everything", func(t *testing.T) {
		t.Parallel()

		opts := model.DefaultRenderOptions()
		opts.Limit = model.NoLimit
		c := runStep(t, LimitStep{}, input, opts)

		if len(c.Reviews) != 3 {
			t.Errorf("expected 3 reviews, got %d", len(c.Reviews))
		}
	})
}

// TestConcatenateStep tests joining rendered output.
func TestConcatenateStep(t *testing.T) {
	t.Parallel()

	c := runStep(t, ConcatenateStep{}, []model.EnrichedReview{review("a", 0, 0), review("b", 0, 0)}, model.DefaultRenderOptions())
	if c.Output != "[a][b]" {
		t.Errorf("expected [a][b], got %q", c.Output)
	}

	empty := runStep(t, ConcatenateStep{}, nil, model.DefaultRenderOptions())
	if empty.Output != "" {
		t.Errorf("expected empty output, got %q", empty.Output)
	}
}

// TestWrapStep tests container and link markup.
func TestWrapStep(t *testing.T) {
	t.Parallel()

	wrap := func(t *testing.T, opts model.RenderOptions, links Links) string {
		t.Helper()

		c := NewCollection(nil, opts)
		c.Output = "[x]"
		if err := (WrapStep{Links: links}).Do(context.Background(), c); err != nil {
			t.Fatalf("wrap failed: %v", err)
		}
		return c.Output
	}

	t.Run("default container has grid marker", func(t *testing.T) {
		t.Parallel()

		got := wrap(t, model.DefaultRenderOptions(), DefaultLinks())
		if got != "<div class='grid-layout'>[x]</div>" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("user classes come before carousel marker", func(t *testing.T) {
		t.Parallel()

		opts := model.DefaultRenderOptions()
		opts.ContainerTag = "section"
		opts.ContainerClass = "wide dark"
		opts.ContainerID = "reviews"
		opts.Layout = model.LayoutCarousel

		got := wrap(t, opts, DefaultLinks())
		if got != "<section class='wide dark carousel-layout' id='reviews'>[x]</section>" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("attribute values are escaped", func(t *testing.T) {
		t.Parallel()

		opts := model.DefaultRenderOptions()
		opts.ContainerID = "a'b"

		got := wrap(t, opts, DefaultLinks())
		if strings.Contains(got, "a'b") {
			t.Errorf("expected quote to be escaped, got %q", got)
		}
	})

	t.Run("no container leaves output bare", func(t *testing.T) {
		t.Parallel()

		opts := model.DefaultRenderOptions()
		opts.ContainerTag = ""

		if got := wrap(t, opts, DefaultLinks()); got != "[x]" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("both links", func(t *testing.T) {
		t.Parallel()

		opts := model.DefaultRenderOptions()
		opts.ContainerTag = ""
		opts.SourceID = "awesome-support"
		opts.LinkToAll = true
		opts.LinkToAdd = true

		want := "[x]<p class='wr-reviews-link'>" +
			"<a href='https://wordpress.org/support/view/plugin-reviews/awesome-support' target='_blank' class='wr-reviews-link-all'>See all reviews</a>" +
			" | " +
			"<a href='https://wordpress.org/support/view/plugin-reviews/awesome-support#postform' target='_blank' class='wr-reviews-link-add'>Add a review</a>" +
			"</p>"
		if got := wrap(t, opts, DefaultLinks()); got != want {
			t.Errorf("expected\n%s\ngot\n%s", want, got)
		}
	})

	t.Run("single link with custom label", func(t *testing.T) {
		t.Parallel()

		opts := model.DefaultRenderOptions()
		opts.ContainerTag = ""
		opts.LinkToAdd = true

		links := DefaultLinks()
		links.AddReviewLabel = "Bewerten"

		got := wrap(t, opts, links)
		if !strings.HasSuffix(got, "class='wr-reviews-link-add'>Bewerten</a></p>") || strings.Contains(got, " | ") {
			t.Errorf("got %q", got)
		}
	})

	t.Run("source identifier is path escaped", func(t *testing.T) {
		t.Parallel()

		if got := DefaultLinks().ReviewsURL("a b/c"); got != DefaultReviewsURL+"a%20b%2Fc" {
			t.Errorf("got %q", got)
		}
	})
}

// TestRender tests the full pipeline.
func TestRender(t *testing.T) {
	t.Parallel()

	fiveStar := review("five", 5, 1577836800)
	twoStar := review("two", 2, 1580515200)

	t.Run("rating desc puts the five star review first", func(t *testing.T) {
		t.Parallel()

		opts := model.DefaultRenderOptions()
		opts.SortField = model.SortByRating
		opts.SortDirection = model.SortDesc

		out := Render(context.Background(), []model.EnrichedReview{twoStar, fiveStar}, opts)
		if !strings.Contains(out, "[five][two]") {
			t.Errorf("expected five before two, got %q", out)
		}
	})

	t.Run("rating filter 3 keeps only the five star review", func(t *testing.T) {
		t.Parallel()

		opts := model.DefaultRenderOptions()
		opts.RatingFilter = "3"

		out := Render(context.Background(), []model.EnrichedReview{fiveStar, twoStar}, opts)
		if !strings.Contains(out, "[five]") || strings.Contains(out, "[two]") {
			t.Errorf("got %q", out)
		}
	})

	t.Run("default sort is newest first", func(t *testing.T) {
		t.Parallel()

		out := Render(context.Background(), []model.EnrichedReview{fiveStar, twoStar}, model.DefaultRenderOptions())
		if out != "<div class='grid-layout'>[two][five]</div>" {
			t.Errorf("got %q", out)
		}
	})

	t.Run("invalid options are normalized", func(t *testing.T) {
		t.Parallel()

		opts := model.RenderOptions{SortField: "votes", SortDirection: "up", Layout: "masonry", Limit: -7}
		out := Render(context.Background(), []model.EnrichedReview{fiveStar, twoStar}, opts)
		if out != "[two][five]" {
			t.Errorf("got %q", out)
		}
	})

	t.Run("empty input renders an empty container", func(t *testing.T) {
		t.Parallel()

		if out := Render(context.Background(), nil, model.DefaultRenderOptions()); out != "<div class='grid-layout'></div>" {
			t.Errorf("got %q", out)
		}
	})
}
