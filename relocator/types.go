package relocator

import (
	"github.com/starcalypse/torrentdeck/downloader"
	"github.com/starcalypse/torrentdeck/rules"
)

// Request carries everything a scan or execute pipeline needs
type Request struct {
	Connection downloader.Descriptor
	Rules      []rules.Rule
	// Filter is an optional expression limiting which torrents are considered
	Filter string
}

// MatchResult is one tracker of one torrent that a rule would rewrite
type MatchResult struct {
	Hash   string `json:"hash"`
	Name   string `json:"name"`
	OldURL string `json:"old_url"`
	NewURL string `json:"new_url"`
}

// ScanResult summarizes a read-only scan
type ScanResult struct {
	TotalTorrents   int           `json:"total_torrents"`
	MatchedTorrents int           `json:"matched_torrents"`
	Matches         []MatchResult `json:"matches"`
}

// ReplaceOutcome records the result of a single replace call
type ReplaceOutcome struct {
	TorrentName string  `json:"torrent_name"`
	OldURL      string  `json:"old_url"`
	NewURL      string  `json:"new_url"`
	Success     bool    `json:"success"`
	Error       *string `json:"error"`
}

// TrackerDomain is a tracker host and the number of torrents announcing to it
type TrackerDomain struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// Summary counts successes and failures in a batch of outcomes
func Summary(outcomes []ReplaceOutcome) (succeeded, failed int) {
	for _, o := range outcomes {
		if o.Success {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}
