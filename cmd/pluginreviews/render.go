package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nao1215/pluginreviews/internal/model"
)

// attrFlags maps render flags to the attributes they set.
var attrFlags = []struct {
	flag  string
	attr  string
	usage string
}{
	{"rating", model.AttrRating, `Minimum star rating ("1" to "5") or "all"`},
	{"limit", model.AttrLimit, `Maximum number of reviews, or "none"`},
	{"sortby", model.AttrSortBy, `Sort key: "date" or "rating"`},
	{"sort", model.AttrSort, `Sort direction: "DESC" or "ASC"`},
	{"truncate", model.AttrTruncate, `Truncate reviews to this many characters, or "false"`},
	{"gravatar-size", model.AttrGravatarSize, "Avatar size in pixels"},
	{"container", model.AttrContainer, "Element wrapping the list (empty disables it)"},
	{"container-id", model.AttrContainerID, "id attribute of the container"},
	{"container-class", model.AttrContainerClass, "Extra classes of the container"},
	{"link-all", model.AttrLinkAll, `Append a link to all reviews ("yes" or "no")`},
	{"link-add", model.AttrLinkAdd, `Append a link to add a review ("yes" or "no")`},
	{"layout", model.AttrLayout, `Layout marker: "grid" or "carousel"`},
}

// addRenderFlags registers one string flag per render attribute.
// Unset flags keep the value from the configuration file.
func addRenderFlags(flags *pflag.FlagSet) {
	for _, f := range attrFlags {
		flags.String(f.flag, "", f.usage)
	}
}

// renderOptions resolves the render options of the plugin named in args:
// configuration file defaults, then the source section, then flags.
func renderOptions(cmd *cobra.Command, a *app, args []string) model.RenderOptions {
	sourceID := model.DefaultSourceID
	if len(args) > 0 {
		sourceID = args[0]
	}

	attrs := make(map[string]string)
	for _, f := range attrFlags {
		if cmd.Flags().Changed(f.flag) {
			attrs[f.attr], _ = cmd.Flags().GetString(f.flag) //nolint:errcheck // Registered as string
		}
	}

	return model.ParseRenderOptions(a.cfg.File.RenderOptions(sourceID), attrs)
}

// NewRenderCmd creates the render command.
func NewRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [plugin-slug]",
		Short: "Render the reviews of a plugin as HTML",
		Long: `Render fetches the reviews of a WordPress.org plugin and prints them as an
HTML fragment. Reviews are served from the cache while it is fresh.

When the reviews cannot be fetched, a fallback message linking to the
catalog review page is printed instead.

Examples:
  # Render the ten newest reviews
  pluginreviews render awesome-support

  # Only four and five star reviews, best first, without a limit
  pluginreviews render awesome-support --rating 4 --sortby rating --limit none

  # Wrap the list in <section id="reviews"> and add catalog links
  pluginreviews render awesome-support --container section --container-id reviews --link-all yes --link-add yes

  # Write the fragment to a file
  pluginreviews render awesome-support -o public/reviews.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRenderCmd,
	}

	addRenderFlags(cmd.Flags())
	cmd.Flags().StringP("output", "o", "",
		"Write the HTML to specified file path (creates directories if needed)")

	return cmd
}

// runRenderCmd executes the render command.
func runRenderCmd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext(cmd.Context(), a.logger)
	defer cancel()

	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	html := a.service.Render(ctx, renderOptions(cmd, a, args))

	out, closeOut, err := openOutput(cmd, outputPath)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(out, html+"\n"); err != nil {
		_ = closeOut() //nolint:errcheck // The write error is reported
		return fmt.Errorf("failed to write output: %w", err)
	}
	return closeOut()
}
