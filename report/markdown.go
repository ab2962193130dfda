package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/starcalypse/torrentdeck/relocator"
)

// MarkdownWriter renders results as GitHub flavored Markdown tables
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

// WriteScan writes the scan summary and the match table
func (w *MarkdownWriter) WriteScan(result *relocator.ScanResult) error {
	md := markdown.NewMarkdown(w.output)

	md.H1("Tracker Scan")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Torrents scanned", strconv.Itoa(result.TotalTorrents)},
			{"Torrents matched", strconv.Itoa(result.MatchedTorrents)},
			{"Trackers to replace", strconv.Itoa(len(result.Matches))},
		},
	})
	md.PlainText("")

	md.H2("Matches")
	md.PlainText("")

	if len(result.Matches) == 0 {
		md.PlainText("No matching trackers found.")
		md.PlainText("")
		return md.Build()
	}

	rows := make([][]string, 0, len(result.Matches))
	for _, m := range result.Matches {
		rows = append(rows, []string{cell(m.Name), code(m.OldURL), code(m.NewURL)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Torrent", "Old URL", "New URL"},
		Rows:   rows,
	})
	md.PlainText("")

	return md.Build()
}

// WriteOutcomes writes one table row per replace call
func (w *MarkdownWriter) WriteOutcomes(outcomes []relocator.ReplaceOutcome) error {
	md := markdown.NewMarkdown(w.output)

	md.H1("Tracker Replacement")
	md.PlainText("")

	succeeded, failed := relocator.Summary(outcomes)
	switch {
	case len(outcomes) == 0:
		md.Note("No trackers matched the configured rules.")
	case failed > 0:
		md.Warningf("%d of %d replacement(s) failed.", failed, len(outcomes))
	default:
		md.Tip(fmt.Sprintf("All %d replacement(s) succeeded.", succeeded))
	}
	md.PlainText("")

	if len(outcomes) == 0 {
		return md.Build()
	}

	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		status, errText := "✅", ""
		if !o.Success {
			status = "❌"
		}
		if o.Error != nil {
			errText = *o.Error
		}
		rows = append(rows, []string{status, cell(o.TorrentName), code(o.OldURL), code(o.NewURL), cell(errText)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Status", "Torrent", "Old URL", "New URL", "Error"},
		Rows:   rows,
	})
	md.PlainText("")

	return md.Build()
}

// WriteDomains writes the tracker domain table
func (w *MarkdownWriter) WriteDomains(domains []relocator.TrackerDomain) error {
	md := markdown.NewMarkdown(w.output)

	md.H1("Tracker Domains")
	md.PlainText("")

	if len(domains) == 0 {
		md.PlainText("No tracker domains found.")
		md.PlainText("")
		return md.Build()
	}

	rows := make([][]string, 0, len(domains))
	for _, d := range domains {
		rows = append(rows, []string{code(d.Domain), strconv.Itoa(d.Count)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Domain", "Torrents"},
		Rows:   rows,
	})
	md.PlainText("")

	return md.Build()
}

// cell escapes pipes so a value cannot split a table row. GFM unescapes
// them inside code spans too.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func code(s string) string {
	return "`" + cell(s) + "`"
}
