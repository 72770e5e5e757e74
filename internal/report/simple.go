package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yuseiito/pagetree/internal/model"
)

// SimpleWriter outputs a human-readable text summary for the terminal.
type SimpleWriter struct {
	baseWriter

	// verbose adds the link and failure counters to the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose adds the secondary counters to the summary.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var sb strings.Builder

	rule := strings.Repeat("=", 60)
	sb.WriteString("\n")
	sb.WriteString(rule)
	sb.WriteString("\n")
	sb.WriteString("                    PAGETREE CRAWL REPORT\n")
	sb.WriteString(rule)
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Seed URL:        %s\n", report.Seed))
	sb.WriteString(fmt.Sprintf("Session:         %s\n", report.Session))
	sb.WriteString(fmt.Sprintf("Started:         %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Elapsed:         %s\n", report.Elapsed.Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Status:          %s\n", statusText(report)))
	sb.WriteString("\n")

	sb.WriteString(strings.Repeat("-", 60))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Pages crawled:   %d\n", report.PagesCrawled))
	sb.WriteString(fmt.Sprintf("Pages rejected:  %d\n", report.PagesRejected))
	sb.WriteString(fmt.Sprintf("Pages failed:    %d\n", report.PagesFailed))
	sb.WriteString(fmt.Sprintf("Content nodes:   %d\n", report.ContentNodes))

	if w.verbose {
		sb.WriteString(fmt.Sprintf("Links found:     %d\n", report.LinksDiscovered))
		sb.WriteString(fmt.Sprintf("Persisted pages: %d\n", report.PersistedPages))
		sb.WriteString(fmt.Sprintf("Persisted nodes: %d\n", report.PersistedNodes))
		if len(report.PerformedSteps) > 0 {
			sb.WriteString(fmt.Sprintf("Steps:           %s\n", strings.Join(report.PerformedSteps, ", ")))
		}
	}

	sb.WriteString(rule)
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}
