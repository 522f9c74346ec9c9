package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/contactsleuth/contactsleuth/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	// Header
	w.writeHeader(md, report)

	// Fact type summary
	w.writeSummary(md, report)

	// Facts grouped by type
	w.writeFacts(md, report)

	// Footer
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("ContactSleuth Report")
	md.PlainText("")

	// Basic info table
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed URL", "`" + report.StartURL + "`"},
			{"Domain", "`" + report.Domain + "`"},
			{"Crawl Date", report.DateCrawled.Format("2006-01-02 15:04:05 MST")},
			{"Pages Crawled", strconv.Itoa(report.PagesCrawled)},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.CrawlReport) string {
	if report.TimedOut {
		return "⚠️ Timed Out (partial results)"
	}
	if report.ErrorMessage != "" {
		return "❌ Error - " + report.ErrorMessage
	}
	return "✅ Complete"
}

// writeSummary writes the fact type summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Fact Summary")
	md.PlainText("")

	counts := make(map[model.FactType]int)
	for _, f := range report.Facts {
		counts[f.Type]++
	}

	rows := make([][]string, 0, len(factTypeOrder)+1)
	for _, ft := range factTypeOrder {
		rows = append(rows, []string{factTypeLabel(ft), strconv.Itoa(counts[ft])})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(len(report.Facts)) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Fact Type", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	// Add pie chart if any facts were found
	if len(report.Facts) > 0 {
		w.writePieChart(md, counts)
	}

	// Add alert based on results
	w.writeAlert(md, report)
}

// factTypeOrder fixes the display order of fact types in summaries.
var factTypeOrder = []model.FactType{
	model.FactEmail,
	model.FactName,
	model.FactPhone,
	model.FactTitle,
	model.FactLinkedIn,
	model.FactOrganization,
}

// factTypeLabel returns a human-readable label for a fact type.
func factTypeLabel(ft model.FactType) string {
	switch ft {
	case model.FactEmail:
		return "📧 Email"
	case model.FactName:
		return "👤 Name"
	case model.FactPhone:
		return "📞 Phone"
	case model.FactTitle:
		return "💼 Job Title"
	case model.FactLinkedIn:
		return "🔗 LinkedIn"
	case model.FactOrganization:
		return "🏢 Organization"
	default:
		return string(ft)
	}
}

// writePieChart writes a mermaid pie chart for fact type distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts map[model.FactType]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Fact Type Distribution"),
		piechart.WithShowData(true),
	)

	for _, ft := range factTypeOrder {
		if counts[ft] > 0 {
			chart.LabelAndIntValue(ft.String(), uint64(counts[ft]))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the crawl outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.CrawlReport) {
	switch {
	case report.ErrorMessage != "":
		md.Warningf("The crawl did not complete cleanly: %s", report.ErrorMessage)
	case report.TimedOut:
		md.Importantf("The crawl was cancelled before finishing; %d fact(s) were collected from partial results.", len(report.Facts))
	case len(report.Facts) == 0:
		md.Note("No contact facts were found on this domain.")
	default:
		md.Tip(fmt.Sprintf("%d contact fact(s) discovered across %d page(s).", len(report.Facts), report.PagesCrawled))
	}
	md.PlainText("")
}

// writeFacts writes all facts grouped by type.
func (w *MarkdownWriter) writeFacts(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Facts")
	md.PlainText("")

	if len(report.Facts) == 0 {
		md.PlainText("No contact facts discovered.")
		md.PlainText("")
		return
	}

	facts := sortedFacts(report)

	for _, ft := range factTypeOrder {
		group := make([]model.AggregatedFact, 0)
		for _, f := range facts {
			if f.Type == ft {
				group = append(group, f)
			}
		}
		if len(group) == 0 {
			continue
		}

		md.PlainText("### " + factTypeLabel(ft))
		md.PlainText("")
		w.writeFactTable(md, group)
	}
}

// writeFactTable writes a table of facts with details.
func (w *MarkdownWriter) writeFactTable(md *markdown.Markdown, facts []model.AggregatedFact) {
	headers := []string{"Value", "Confidence", "Source"}

	rows := make([][]string, len(facts))
	for i, f := range facts {
		source := f.SourceURL
		if source == "" {
			source = "-"
		}

		rows[i] = []string{
			truncateString(f.Value, 60),
			fmt.Sprintf("%.2f", f.Confidence),
			truncateString(source, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: headers,
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [ContactSleuth](https://github.com/contactsleuth/contactsleuth)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
