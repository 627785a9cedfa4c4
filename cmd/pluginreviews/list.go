package main

import (
	"github.com/spf13/cobra"

	"github.com/nao1215/pluginreviews/internal/report"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [plugin-slug]",
		Short: "List the reviews of a plugin as text, JSON or Markdown",
		Long: `List prints the reviews selected by the render attributes in a readable form.

It applies the same filter, sort and limit rules as render, but prints the
structured reviews instead of HTML. Unlike render, list fails when the
reviews cannot be fetched.

Examples:
  # Plain text summary
  pluginreviews list awesome-support

  # JSON with every review field
  pluginreviews list awesome-support --json

  # Markdown report with a rating distribution chart
  pluginreviews list awesome-support --markdown -o reviews.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: runListCmd,
	}

	addRenderFlags(cmd.Flags())
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the listing to specified file path (creates directories if needed)")

	return cmd
}

// runListCmd executes the list command.
func runListCmd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if a.cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if a.cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context(), a.logger)
	defer cancel()

	opts := renderOptions(cmd, a, args)
	selected, err := a.service.Reviews(ctx, opts)
	if err != nil {
		return err
	}

	listing := report.NewListing(opts.SourceID, a.service.ReviewsURL(opts.SourceID), selected)
	return outputListing(cmd, a, listing)
}

// outputListing writes listing in the requested format.
func outputListing(cmd *cobra.Command, a *app, listing *report.Listing) error {
	out, closeOut, err := openOutput(cmd, a.cfg.ReportFile)
	if err != nil {
		return err
	}

	var writer report.Writer
	switch {
	case a.cfg.JSONReport:
		writer = report.NewJSONWriter(out, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case a.cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(out)
	default:
		writer = report.NewSimpleWriter(out, report.WithVerbose(a.cfg.Verbose))
	}

	if _, err := writer.Write(listing); err != nil {
		_ = closeOut() //nolint:errcheck // The write error is reported
		return err
	}
	return closeOut()
}
