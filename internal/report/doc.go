// Package report renders crawl reports in plain text, JSON, and Markdown.
package report
