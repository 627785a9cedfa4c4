// Package report prints the post-pipeline review list of one plugin.
//
// A Listing bundles the selected reviews with the plugin slug and the
// catalog review page. Three writers render it:
//   - SimpleWriter: wrapped plain text for the terminal
//   - JSONWriter: the listing and every review field as JSON
//   - MarkdownWriter: tables and a rating pie chart for READMEs and issues
//
// MultiWriter sends one listing to several writers.
package report
