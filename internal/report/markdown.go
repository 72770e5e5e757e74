package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/yuseiito/pagetree/internal/model"
)

// MarkdownWriter outputs reports in Markdown for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Pagetree Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed URL", "`" + report.Seed + "`"},
			{"Session", "`" + report.Session + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", report.Elapsed.Round(time.Millisecond).String()},
			{"Status", w.markdownStatus(report)},
		},
	})
	md.PlainText("")

	md.H2("Crawl Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Pages crawled", strconv.Itoa(report.PagesCrawled)},
			{"Pages rejected", strconv.Itoa(report.PagesRejected)},
			{"Pages failed", strconv.Itoa(report.PagesFailed)},
			{"Content nodes", strconv.Itoa(report.ContentNodes)},
			{"Links discovered", strconv.Itoa(report.LinksDiscovered)},
			{"Persisted pages", strconv.Itoa(report.PersistedPages)},
			{"Persisted nodes", strconv.Itoa(report.PersistedNodes)},
		},
	})
	md.PlainText("")

	w.writeAlert(md, report)

	if len(report.PerformedSteps) > 0 {
		md.H2("Performed Steps")
		md.PlainText("")
		md.BulletList(report.PerformedSteps...)
		md.PlainText("")
	}

	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [pagetree](https://github.com/yuseiito/pagetree)*")

	return len(md.String()), md.Build()
}

// markdownStatus returns the status cell text.
func (w *MarkdownWriter) markdownStatus(report *model.CrawlReport) string {
	switch {
	case report.Cancelled:
		return "⚠️ Cancelled (partial results)"
	case report.ErrorMessage != "":
		return "❌ Error - " + report.ErrorMessage
	default:
		return "✅ Complete"
	}
}

// writeAlert highlights the result with a GitHub-flavored alert.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.CrawlReport) {
	switch {
	case report.Cancelled:
		md.Warningf("The crawl was cancelled before the frontier drained; %d page(s) were persisted.",
			report.PersistedPages)
	case report.ErrorMessage != "":
		md.Cautionf("The crawl failed: %s", report.ErrorMessage)
	case report.PagesFailed > 0:
		md.Importantf("%d page(s) failed to fetch or persist and were skipped.", report.PagesFailed)
	case report.PagesCrawled == 0:
		md.Note("No pages were persisted. Check the seed URL and the depth settings.")
	default:
		md.Tip(fmt.Sprintf("Crawl complete: %d page(s) and %d content node(s) persisted.",
			report.PersistedPages, report.PersistedNodes))
	}
	md.PlainText("")
}
