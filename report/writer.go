package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/starcalypse/torrentdeck/relocator"
)

// Format selects a report renderer
type Format string

const (
	FormatConsole  Format = "console"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Formats lists the accepted --output values
var Formats = []Format{FormatConsole, FormatMarkdown, FormatJSON}

// ParseFormat validates an output format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatConsole, FormatMarkdown, FormatJSON:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown output format %q (must be console, markdown or json)", s)
	}
}

// Writer renders pipeline results
type Writer interface {
	WriteScan(result *relocator.ScanResult) error
	WriteOutcomes(outcomes []relocator.ReplaceOutcome) error
	WriteDomains(domains []relocator.TrackerDomain) error
}

// NewWriter returns the renderer for format writing to output
func NewWriter(format Format, output io.Writer) (Writer, error) {
	switch format {
	case FormatConsole, "":
		return NewConsoleWriter(output), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// torrentGroup is a run of consecutive matches for one torrent
type torrentGroup struct {
	name    string
	matches []relocator.MatchResult
}

// groupMatches groups consecutive matches by hash, keeping snapshot order
func groupMatches(matches []relocator.MatchResult) []torrentGroup {
	var groups []torrentGroup
	lastHash := ""
	for _, m := range matches {
		if len(groups) == 0 || m.Hash != lastHash {
			groups = append(groups, torrentGroup{name: m.Name})
			lastHash = m.Hash
		}
		g := &groups[len(groups)-1]
		g.matches = append(g.matches, m)
	}
	return groups
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
