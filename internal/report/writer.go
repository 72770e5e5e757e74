package report

import (
	"io"

	"github.com/yuseiito/pagetree/internal/model"
)

// Writer renders a crawl report to a configured destination.
type Writer interface {
	// Write outputs the report. It returns the number of bytes written
	// and any error encountered.
	Write(report *model.CrawlReport) (int, error)
}

// MultiWriter writes to several Writers in sequence, which lets one crawl
// print a summary to the terminal and persist the same report to a file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers, stopping on the
// first error. It returns the total bytes written.
func (m *MultiWriter) Write(report *model.CrawlReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides the shared output destination for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// statusText summarizes the run outcome in one line.
func statusText(report *model.CrawlReport) string {
	switch {
	case report.Cancelled:
		return "cancelled (partial results)"
	case report.ErrorMessage != "":
		return "error - " + report.ErrorMessage
	default:
		return "complete"
	}
}
