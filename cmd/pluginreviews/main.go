// Package main provides the entry point for the pluginreviews CLI.
//
// pluginreviews renders WordPress.org plugin reviews as embeddable HTML.
// Reviews are fetched from the plugin catalog, cached, formatted with a
// markup template and passed through a filter, sort and limit pipeline.
//
// Usage:
//
//	pluginreviews render <plugin-slug>
//	pluginreviews serve
//
// See --help for all available options.
package main

// main is the entry point for pluginreviews.
func main() {
	Execute()
}
