package model

import "testing"

// TestDefaultRenderOptions documents the default attribute values.
func TestDefaultRenderOptions(t *testing.T) {
	t.Parallel()

	o := DefaultRenderOptions()

	if o.SourceID != "wordpress-reviews" {
		t.Errorf("expected source 'wordpress-reviews', got %q", o.SourceID)
	}
	if o.RatingFilter != "all" {
		t.Errorf("expected rating filter 'all', got %q", o.RatingFilter)
	}
	if o.Limit != 10 {
		t.Errorf("expected limit 10, got %d", o.Limit)
	}
	if o.SortField != SortByDate || o.SortDirection != SortDesc {
		t.Errorf("expected date DESC, got %s %s", o.SortField, o.SortDirection)
	}
	if o.TruncateLength != 300 {
		t.Errorf("expected truncate 300, got %d", o.TruncateLength)
	}
	if o.GravatarSize != 96 {
		t.Errorf("expected gravatar size 96, got %d", o.GravatarSize)
	}
	if o.ContainerTag != "div" {
		t.Errorf("expected container div, got %q", o.ContainerTag)
	}
	if o.LinkToAll || o.LinkToAdd {
		t.Error("expected links to be disabled by default")
	}
	if o.Layout != LayoutGrid {
		t.Errorf("expected grid layout, got %q", o.Layout)
	}
}

// TestRenderOptionsNormalize tests that invalid values fall back to safe defaults.
func TestRenderOptionsNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    RenderOptions
		check func(t *testing.T, o RenderOptions)
	}{
		{
			name: "unknown sort field becomes date",
			in:   RenderOptions{SortField: "popularity"},
			check: func(t *testing.T, o RenderOptions) {
				t.Helper()
				if o.SortField != SortByDate {
					t.Errorf("got %q", o.SortField)
				}
			},
		},
		{
			name: "lowercase direction is accepted",
			in:   RenderOptions{SortDirection: "asc"},
			check: func(t *testing.T, o RenderOptions) {
				t.Helper()
				if o.SortDirection != SortAsc {
					t.Errorf("got %q", o.SortDirection)
				}
			},
		},
		{
			name: "unknown direction becomes DESC",
			in:   RenderOptions{SortDirection: "sideways"},
			check: func(t *testing.T, o RenderOptions) {
				t.Helper()
				if o.SortDirection != SortDesc {
					t.Errorf("got %q", o.SortDirection)
				}
			},
		},
		{
			name: "unknown layout becomes grid",
			in:   RenderOptions{Layout: "masonry"},
			check: func(t *testing.T, o RenderOptions) {
				t.Helper()
				if o.Layout != LayoutGrid {
					t.Errorf("got %q", o.Layout)
				}
			},
		},
		{
			name: "empty source becomes default",
			in:   RenderOptions{SourceID: "  "},
			check: func(t *testing.T, o RenderOptions) {
				t.Helper()
				if o.SourceID != DefaultSourceID {
					t.Errorf("got %q", o.SourceID)
				}
			},
		},
		{
			name: "non-positive gravatar size becomes default",
			in:   RenderOptions{GravatarSize: -4},
			check: func(t *testing.T, o RenderOptions) {
				t.Helper()
				if o.GravatarSize != DefaultGravatarSize {
					t.Errorf("got %d", o.GravatarSize)
				}
			},
		},
		{
			name: "limit below sentinel becomes no limit",
			in:   RenderOptions{Limit: -20},
			check: func(t *testing.T, o RenderOptions) {
				t.Helper()
				if o.Limit != NoLimit {
					t.Errorf("got %d", o.Limit)
				}
			},
		},
		{
			name: "zero limit is preserved",
			in:   RenderOptions{Limit: 0},
			check: func(t *testing.T, o RenderOptions) {
				t.Helper()
				if o.Limit != 0 {
					t.Errorf("got %d", o.Limit)
				}
			},
		},
		{
			name: "unsafe container tag becomes div",
			in:   RenderOptions{ContainerTag: "div onclick=x"},
			check: func(t *testing.T, o RenderOptions) {
				t.Helper()
				if o.ContainerTag != DefaultContainerTag {
					t.Errorf("got %q", o.ContainerTag)
				}
			},
		},
		{
			name: "empty container tag stays empty",
			in:   RenderOptions{ContainerTag: ""},
			check: func(t *testing.T, o RenderOptions) {
				t.Helper()
				if o.ContainerTag != "" {
					t.Errorf("got %q", o.ContainerTag)
				}
			},
		},
		{
			name: "container classes are collapsed",
			in:   RenderOptions{ContainerClass: "  a   b "},
			check: func(t *testing.T, o RenderOptions) {
				t.Helper()
				if o.ContainerClass != "a b" {
					t.Errorf("got %q", o.ContainerClass)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.check(t, tt.in.Normalize())
		})
	}
}

// TestParseRenderOptions tests the string attribute form.
func TestParseRenderOptions(t *testing.T) {
	t.Parallel()

	t.Run("parses every attribute", func(t *testing.T) {
		t.Parallel()

		o := ParseRenderOptions(DefaultRenderOptions(), map[string]string{
			"plugin_slug":     "awesome-support",
			"rating":          "4",
			"limit":           "3",
			"sortby":          "Rating",
			"sort":            "asc",
			"truncate":        "120",
			"gravatar_size":   "64",
			"container":       "section",
			"container_id":    "reviews",
			"container_class": "wide dark",
			"link_all":        "YES",
			"link_add":        "yes",
			"layout":          "carousel",
		})

		if o.SourceID != "awesome-support" {
			t.Errorf("source: got %q", o.SourceID)
		}
		if o.RatingFilter != "4" {
			t.Errorf("rating: got %q", o.RatingFilter)
		}
		if o.Limit != 3 {
			t.Errorf("limit: got %d", o.Limit)
		}
		if o.SortField != SortByRating || o.SortDirection != SortAsc {
			t.Errorf("sort: got %s %s", o.SortField, o.SortDirection)
		}
		if o.TruncateLength != 120 {
			t.Errorf("truncate: got %d", o.TruncateLength)
		}
		if o.GravatarSize != 64 {
			t.Errorf("gravatar: got %d", o.GravatarSize)
		}
		if o.ContainerTag != "section" || o.ContainerID != "reviews" || o.ContainerClass != "wide dark" {
			t.Errorf("container: got %q %q %q", o.ContainerTag, o.ContainerID, o.ContainerClass)
		}
		if !o.LinkToAll || !o.LinkToAdd {
			t.Error("expected both links enabled")
		}
		if o.Layout != LayoutCarousel {
			t.Errorf("layout: got %q", o.Layout)
		}
	})

	t.Run("limit none disables the limit", func(t *testing.T) {
		t.Parallel()

		o := ParseRenderOptions(DefaultRenderOptions(), map[string]string{"limit": "none"})
		if o.Limit != NoLimit {
			t.Errorf("got %d", o.Limit)
		}
	})

	t.Run("invalid limit keeps the base value", func(t *testing.T) {
		t.Parallel()

		o := ParseRenderOptions(DefaultRenderOptions(), map[string]string{"limit": "lots"})
		if o.Limit != DefaultLimit {
			t.Errorf("got %d", o.Limit)
		}
	})

	t.Run("truncate false disables truncation", func(t *testing.T) {
		t.Parallel()

		o := ParseRenderOptions(DefaultRenderOptions(), map[string]string{"truncate": "false"})
		if o.TruncateEnabled() {
			t.Errorf("expected truncation disabled, got %d", o.TruncateLength)
		}
	})

	t.Run("unknown keys are ignored", func(t *testing.T) {
		t.Parallel()

		o := ParseRenderOptions(DefaultRenderOptions(), map[string]string{"colour": "blue"})
		if o != DefaultRenderOptions() {
			t.Errorf("expected defaults, got %+v", o)
		}
	})

	t.Run("link values other than yes are false", func(t *testing.T) {
		t.Parallel()

		o := ParseRenderOptions(DefaultRenderOptions(), map[string]string{"link_all": "maybe"})
		if o.LinkToAll {
			t.Error("expected link_all to be false")
		}
	})
}
