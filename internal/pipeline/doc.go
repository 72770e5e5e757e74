// Package pipeline orchestrates crawl runs as ordered steps over a shared
// report. A single run executes the crawl step and then the summary step;
// batch mode fans seeds out over a bounded errgroup, one pipeline per seed.
package pipeline
