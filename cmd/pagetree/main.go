// Package main provides the entry point for the pagetree CLI.
//
// Pagetree crawls a website breadth-first and stores each page's text
// content as a hierarchy of structural elements in a local SQLite
// database.
//
// Usage:
//
//	pagetree crawl https://example.com/
//	pagetree pages
//
// See --help for all available options.
package main

// main is the entry point for pagetree.
func main() {
	Execute()
}
