// Package model defines the core data types shared across pagetree:
// crawled pages, their extracted content hierarchy, and per-crawl reports.
//
// The types here are plain data carriers. They hold no behavior beyond
// construction and validation so that the crawler, database, and report
// packages can all depend on them without depending on each other.
package model
