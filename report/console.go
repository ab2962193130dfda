package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/starcalypse/torrentdeck/relocator"
)

const (
	branch     = "├── "
	lastBranch = "╰── "
	pipe       = "│   "
	space      = "    "
	arrow      = "→"
)

// ConsoleWriter renders results as a tree for terminal display
type ConsoleWriter struct {
	output io.Writer
}

// NewConsoleWriter creates a new console writer
func NewConsoleWriter(output io.Writer) *ConsoleWriter {
	return &ConsoleWriter{output: output}
}

// WriteScan prints the planned replacements grouped by torrent
func (w *ConsoleWriter) WriteScan(result *relocator.ScanResult) error {
	var sb strings.Builder

	if len(result.Matches) == 0 {
		fmt.Fprintf(&sb, "No matching trackers found (%s scanned)\n", plural(result.TotalTorrents, "torrent"))
		return w.flush(&sb)
	}

	fmt.Fprintf(&sb, "\nTrackers to be replaced (%s in %s, %s scanned):\n\n",
		plural(len(result.Matches), "tracker"),
		plural(result.MatchedTorrents, "torrent"),
		plural(result.TotalTorrents, "torrent"))

	groups := groupMatches(result.Matches)
	for i, g := range groups {
		isLast := i == len(groups)-1
		prefix, indent := branch, pipe
		if isLast {
			prefix, indent = lastBranch, space
		}

		fmt.Fprintf(&sb, "%s%s\n", prefix, g.name)
		for _, m := range g.matches {
			fmt.Fprintf(&sb, "%s%s\n", indent, m.OldURL)
			fmt.Fprintf(&sb, "%s  %s %s\n", indent, arrow, m.NewURL)
		}

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	sb.WriteString("\n")
	return w.flush(&sb)
}

// WriteOutcomes prints each replacement with its result
func (w *ConsoleWriter) WriteOutcomes(outcomes []relocator.ReplaceOutcome) error {
	var sb strings.Builder

	if len(outcomes) == 0 {
		sb.WriteString("No trackers replaced\n")
		return w.flush(&sb)
	}

	succeeded, failed := relocator.Summary(outcomes)
	fmt.Fprintf(&sb, "\nReplacements (%d succeeded, %d failed):\n\n", succeeded, failed)

	for i, o := range outcomes {
		isLast := i == len(outcomes)-1
		prefix, indent := branch, pipe
		if isLast {
			prefix, indent = lastBranch, space
		}

		mark := "✓"
		if !o.Success {
			mark = "✗"
		}

		fmt.Fprintf(&sb, "%s%s %s\n", prefix, mark, o.TorrentName)
		fmt.Fprintf(&sb, "%s%s %s %s\n", indent, o.OldURL, arrow, o.NewURL)
		if o.Error != nil {
			fmt.Fprintf(&sb, "%sError: %s\n", indent, *o.Error)
		}
	}

	sb.WriteString("\n")
	return w.flush(&sb)
}

// WriteDomains prints tracker hosts with their torrent counts
func (w *ConsoleWriter) WriteDomains(domains []relocator.TrackerDomain) error {
	var sb strings.Builder

	if len(domains) == 0 {
		sb.WriteString("No tracker domains found\n")
		return w.flush(&sb)
	}

	width := 0
	for _, d := range domains {
		width = max(width, len(d.Domain))
	}

	fmt.Fprintf(&sb, "\nTracker domains (%d):\n\n", len(domains))
	for i, d := range domains {
		prefix := branch
		if i == len(domains)-1 {
			prefix = lastBranch
		}
		fmt.Fprintf(&sb, "%s%-*s  %s\n", prefix, width, d.Domain, plural(d.Count, "torrent"))
	}

	sb.WriteString("\n")
	return w.flush(&sb)
}

func (w *ConsoleWriter) flush(sb *strings.Builder) error {
	_, err := io.WriteString(w.output, sb.String())
	return err
}
