package relocator

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/starcalypse/torrentdeck/downloader"
	"github.com/starcalypse/torrentdeck/filter"
	"github.com/starcalypse/torrentdeck/rules"
)

// Operations runs the scan, execute and inspection pipelines
type Operations struct {
	dial   Dialer
	logger zerolog.Logger
}

// Option configures Operations
type Option func(*Operations)

// WithDialer replaces the backend dialer
func WithDialer(dial Dialer) Option {
	return func(o *Operations) {
		if dial != nil {
			o.dial = dial
		}
	}
}

// NewOperations creates a new Operations instance
func NewOperations(logger zerolog.Logger, opts ...Option) *Operations {
	o := &Operations{
		dial:   DefaultDialer(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// connect dials the backend described by desc
func (o *Operations) connect(ctx context.Context, desc downloader.Descriptor) (downloader.Client, error) {
	o.logger.Info().
		Str("backend", string(desc.Kind)).
		Str("host", desc.Host).
		Int("port", desc.Port).
		Msg("Connecting to downloader")

	return o.dial(ctx, desc, o.logger)
}

// snapshot connects and fetches every torrent in one pass
func (o *Operations) snapshot(ctx context.Context, desc downloader.Descriptor) (downloader.Client, []downloader.TorrentRecord, error) {
	client, err := o.connect(ctx, desc)
	if err != nil {
		return nil, nil, err
	}

	torrents, err := client.ListTorrents(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list torrents: %w", err)
	}

	o.logger.Info().Msgf("Fetched %d torrents", len(torrents))
	return client, torrents, nil
}

// TestConnection logs in and returns the backend version string
func (o *Operations) TestConnection(ctx context.Context, desc downloader.Descriptor) (string, error) {
	client, err := o.connect(ctx, desc)
	if err != nil {
		return "", err
	}

	version, err := client.TestConnection(ctx)
	if err != nil {
		return "", err
	}

	o.logger.Info().Str("version", version).Msg("Connection successful")
	return version, nil
}

// Scan previews every tracker the rules would rewrite. It never mutates
// backend state.
func (o *Operations) Scan(ctx context.Context, req Request) (*ScanResult, error) {
	scope, err := compileScope(req.Filter)
	if err != nil {
		return nil, err
	}

	_, torrents, err := o.snapshot(ctx, req.Connection)
	if err != nil {
		return nil, err
	}

	matches := o.collectMatches(torrents, req.Rules, scope)
	result := &ScanResult{
		TotalTorrents:   len(torrents),
		MatchedTorrents: countTorrents(matches),
		Matches:         matches,
	}

	o.logger.Info().
		Int("total", result.TotalTorrents).
		Int("matched_torrents", result.MatchedTorrents).
		Int("matches", len(result.Matches)).
		Msg("Scan complete")

	return result, nil
}

// Execute applies every match of a fresh snapshot. Replace failures are
// recorded in the returned outcomes; only connect and list failures abort.
func (o *Operations) Execute(ctx context.Context, req Request) ([]ReplaceOutcome, error) {
	scope, err := compileScope(req.Filter)
	if err != nil {
		return nil, err
	}

	client, torrents, err := o.snapshot(ctx, req.Connection)
	if err != nil {
		return nil, err
	}

	matches := o.collectMatches(torrents, req.Rules, scope)
	if len(matches) == 0 {
		o.logger.Info().Msg("No trackers to replace")
		return []ReplaceOutcome{}, nil
	}

	outcomes := make([]ReplaceOutcome, 0, len(matches))
	for _, m := range matches {
		outcome := ReplaceOutcome{
			TorrentName: m.Name,
			OldURL:      m.OldURL,
			NewURL:      m.NewURL,
		}

		if err := client.ReplaceTracker(ctx, m.Hash, m.OldURL, m.NewURL); err != nil {
			msg := err.Error()
			outcome.Error = &msg
			o.logger.Error().
				Err(err).
				Str("torrent", m.Name).
				Str("old_url", m.OldURL).
				Msg("Failed to replace tracker")
		} else {
			outcome.Success = true
			o.logger.Info().
				Str("torrent", m.Name).
				Str("old_url", m.OldURL).
				Str("new_url", m.NewURL).
				Msg("Replaced tracker")
		}

		outcomes = append(outcomes, outcome)
	}

	succeeded, failed := Summary(outcomes)
	o.logger.Info().
		Int("replaced", succeeded).
		Int("failed", failed).
		Msg("Execute complete")

	return outcomes, nil
}

// ListTrackerDomains counts, per tracker host, how many torrents announce to
// it. Results are sorted by count descending, then by domain.
func (o *Operations) ListTrackerDomains(ctx context.Context, desc downloader.Descriptor) ([]TrackerDomain, error) {
	_, torrents, err := o.snapshot(ctx, desc)
	if err != nil {
		return nil, err
	}

	domains := AggregateDomains(torrents)
	o.logger.Info().Msgf("Found %d tracker domains", len(domains))
	return domains, nil
}

// collectMatches walks the snapshot in torrent then tracker order
func (o *Operations) collectMatches(torrents []downloader.TorrentRecord, ruleset []rules.Rule, scope *filter.Filter) []MatchResult {
	matches := make([]MatchResult, 0)

	for _, torrent := range torrents {
		if scope != nil {
			ok, err := scope.Match(torrent)
			if err != nil {
				o.logger.Warn().Err(err).Str("torrent", torrent.Name).Msg("Filter evaluation failed, skipping torrent")
				continue
			}
			if !ok {
				continue
			}
		}

		for _, tracker := range torrent.Trackers {
			newURL, ok := rules.Evaluate(tracker.URL, ruleset)
			if !ok {
				continue
			}
			matches = append(matches, MatchResult{
				Hash:   torrent.Hash,
				Name:   torrent.Name,
				OldURL: tracker.URL,
				NewURL: newURL,
			})
		}
	}

	return matches
}

// AggregateDomains counts each tracker host once per torrent
func AggregateDomains(torrents []downloader.TorrentRecord) []TrackerDomain {
	counts := make(map[string]int)

	for _, torrent := range torrents {
		seen := make(map[string]struct{})
		for _, tracker := range torrent.Trackers {
			u, err := url.Parse(tracker.URL)
			if err != nil {
				continue
			}
			host := u.Hostname()
			if host == "" {
				continue
			}
			if _, dup := seen[host]; dup {
				continue
			}
			seen[host] = struct{}{}
			counts[host]++
		}
	}

	domains := make([]TrackerDomain, 0, len(counts))
	for domain, count := range counts {
		domains = append(domains, TrackerDomain{Domain: domain, Count: count})
	}

	sort.Slice(domains, func(i, j int) bool {
		if domains[i].Count != domains[j].Count {
			return domains[i].Count > domains[j].Count
		}
		return domains[i].Domain < domains[j].Domain
	})

	return domains
}

// countTorrents returns the number of distinct hashes in matches
func countTorrents(matches []MatchResult) int {
	hashes := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		hashes[m.Hash] = struct{}{}
	}
	return len(hashes)
}

// compileScope compiles the optional torrent filter
func compileScope(expression string) (*filter.Filter, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, nil
	}
	scope, err := filter.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	return scope, nil
}
