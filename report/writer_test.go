package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starcalypse/torrentdeck/relocator"
)

func sampleScan() *relocator.ScanResult {
	return &relocator.ScanResult{
		TotalTorrents:   5,
		MatchedTorrents: 2,
		Matches: []relocator.MatchResult{
			{Hash: "aaa", Name: "Ubuntu", OldURL: "http://tracker.old.com:6969/announce", NewURL: "http://tracker.new.com:6969/announce"},
			{Hash: "aaa", Name: "Ubuntu", OldURL: "udp://tracker.old.com:1337", NewURL: "udp://tracker.new.com:1337"},
			{Hash: "bbb", Name: "Fedora", OldURL: "http://tracker.old.com/announce", NewURL: "http://tracker.new.com/announce"},
		},
	}
}

func sampleOutcomes() []relocator.ReplaceOutcome {
	msg := "edit tracker failed: Bad Request"
	return []relocator.ReplaceOutcome{
		{TorrentName: "Ubuntu", OldURL: "http://a/announce", NewURL: "http://b/announce", Success: true},
		{TorrentName: "Fedora", OldURL: "http://c/announce", NewURL: "http://d/announce", Error: &msg},
	}
}

func sampleDomains() []relocator.TrackerDomain {
	return []relocator.TrackerDomain{
		{Domain: "tracker.old.com", Count: 12},
		{Domain: "open.org", Count: 1},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "console", want: FormatConsole},
		{in: "JSON", want: FormatJSON},
		{in: " markdown ", want: FormatMarkdown},
		{in: "md", want: FormatMarkdown},
		{in: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer
	for _, f := range Formats {
		w, err := NewWriter(f, &buf)
		require.NoError(t, err)
		assert.NotNil(t, w)
	}

	_, err := NewWriter("xml", &buf)
	assert.Error(t, err)
}

func TestGroupMatches(t *testing.T) {
	groups := groupMatches(sampleScan().Matches)
	require.Len(t, groups, 2)
	assert.Equal(t, "Ubuntu", groups[0].name)
	assert.Len(t, groups[0].matches, 2)
	assert.Equal(t, "Fedora", groups[1].name)
	assert.Empty(t, groupMatches(nil))
}

func TestConsoleWriter(t *testing.T) {
	t.Run("scan", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewConsoleWriter(&buf).WriteScan(sampleScan()))

		output := buf.String()
		assert.Contains(t, output, "3 trackers in 2 torrents, 5 torrents scanned")
		assert.Contains(t, output, "├── Ubuntu\n")
		assert.Contains(t, output, "╰── Fedora\n")
		assert.Contains(t, output, "│   udp://tracker.old.com:1337\n")
		assert.Contains(t, output, "      → http://tracker.new.com/announce\n")
		assert.Equal(t, 1, strings.Count(output, "Ubuntu"))
	})

	t.Run("empty scan", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewConsoleWriter(&buf).WriteScan(&relocator.ScanResult{TotalTorrents: 1}))
		assert.Equal(t, "No matching trackers found (1 torrent scanned)\n", buf.String())
	})

	t.Run("outcomes", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewConsoleWriter(&buf).WriteOutcomes(sampleOutcomes()))

		output := buf.String()
		assert.Contains(t, output, "Replacements (1 succeeded, 1 failed)")
		assert.Contains(t, output, "├── ✓ Ubuntu\n")
		assert.Contains(t, output, "╰── ✗ Fedora\n")
		assert.Contains(t, output, "    Error: edit tracker failed: Bad Request\n")
	})

	t.Run("domains", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewConsoleWriter(&buf).WriteDomains(sampleDomains()))

		output := buf.String()
		assert.Contains(t, output, "Tracker domains (2)")
		assert.Contains(t, output, "├── tracker.old.com  12 torrents\n")
		assert.Contains(t, output, "╰── open.org         1 torrent\n")
	})

	t.Run("no domains", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewConsoleWriter(&buf).WriteDomains(nil))
		assert.Equal(t, "No tracker domains found\n", buf.String())
	})
}

// assertRowColumns checks that the table row containing needle has want
// columns once escaped pipes are discounted
func assertRowColumns(t *testing.T, output, needle string, want int) {
	t.Helper()
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, needle) {
			continue
		}
		delimiters := strings.Count(line, "|") - strings.Count(line, `\|`)
		assert.Equal(t, want+1, delimiters, line)
		return
	}
	t.Fatalf("no row contains %q", needle)
}

func TestMarkdownWriter(t *testing.T) {
	t.Run("scan", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewMarkdownWriter(&buf).WriteScan(sampleScan()))

		output := buf.String()
		assert.Contains(t, output, "# Tracker Scan")
		assert.Contains(t, output, "## Matches")
		assert.Contains(t, output, "`udp://tracker.new.com:1337`")
		assert.Contains(t, output, "Fedora")
	})

	t.Run("pipes stay inside their cell", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewMarkdownWriter(&buf).WriteScan(&relocator.ScanResult{
			TotalTorrents:   1,
			MatchedTorrents: 1,
			Matches: []relocator.MatchResult{{
				Hash:   "abc",
				Name:   "Show | S01",
				OldURL: "http://tracker.old.com/announce?a=1|2",
				NewURL: "http://tracker.new.com/announce?a=1|2",
			}},
		}))
		assertRowColumns(t, buf.String(), "Show", 3)

		buf.Reset()
		errText := "bad | request"
		require.NoError(t, NewMarkdownWriter(&buf).WriteOutcomes([]relocator.ReplaceOutcome{{
			TorrentName: "Show | S01",
			OldURL:      "http://tracker.old.com/announce",
			NewURL:      "http://tracker.new.com/announce",
			Error:       &errText,
		}}))
		assertRowColumns(t, buf.String(), "Show", 5)
		assert.Contains(t, buf.String(), `Show \| S01`)
	})

	t.Run("empty scan", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewMarkdownWriter(&buf).WriteScan(&relocator.ScanResult{}))
		assert.Contains(t, buf.String(), "No matching trackers found.")
	})

	t.Run("outcomes with failures", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewMarkdownWriter(&buf).WriteOutcomes(sampleOutcomes()))

		output := buf.String()
		assert.Contains(t, output, "# Tracker Replacement")
		assert.Contains(t, output, "[!WARNING]")
		assert.Contains(t, output, "1 of 2 replacement(s) failed.")
		assert.Contains(t, output, "edit tracker failed: Bad Request")
	})

	t.Run("outcomes all succeeded", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewMarkdownWriter(&buf).WriteOutcomes(sampleOutcomes()[:1]))
		assert.Contains(t, buf.String(), "All 1 replacement(s) succeeded.")
	})

	t.Run("domains", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewMarkdownWriter(&buf).WriteDomains(sampleDomains()))

		output := buf.String()
		assert.Contains(t, output, "# Tracker Domains")
		assert.Contains(t, output, "`tracker.old.com`")
		assert.Contains(t, output, "12")
	})
}

func TestJSONWriter(t *testing.T) {
	t.Run("scan keys", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewJSONWriter(&buf).WriteScan(sampleScan()))

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, float64(5), decoded["total_torrents"])
		assert.Equal(t, float64(2), decoded["matched_torrents"])
		matches := decoded["matches"].([]any)
		require.Len(t, matches, 3)
		first := matches[0].(map[string]any)
		assert.Equal(t, "aaa", first["hash"])
		assert.Equal(t, "http://tracker.new.com:6969/announce", first["new_url"])
	})

	t.Run("nil matches encode as empty array", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewJSONWriter(&buf).WriteScan(&relocator.ScanResult{}))
		assert.Contains(t, buf.String(), `"matches": []`)
	})

	t.Run("outcome error is null on success", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewJSONWriter(&buf).WriteOutcomes(sampleOutcomes()))

		var decoded []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		require.Len(t, decoded, 2)
		assert.Contains(t, decoded[0], "error")
		assert.Nil(t, decoded[0]["error"])
		assert.Equal(t, "edit tracker failed: Bad Request", decoded[1]["error"])
		assert.Equal(t, "Fedora", decoded[1]["torrent_name"])
	})

	t.Run("nil domains", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewJSONWriter(&buf).WriteDomains(nil))
		assert.Equal(t, "[]\n", buf.String())
	})
}
