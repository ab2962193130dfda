package downloader

import "context"

// Client is the capability set shared by every backend. A Client is returned
// already authenticated and is reused for the whole pipeline invocation.
type Client interface {
	// Kind returns the backend this client talks to
	Kind() Kind

	// TestConnection returns a human readable backend name and version
	TestConnection(ctx context.Context) (string, error)

	// ListTorrents fetches a fresh snapshot of all torrents with their
	// HTTP/UDP announce trackers
	ListTorrents(ctx context.Context) ([]TorrentRecord, error)

	// ReplaceTracker swaps oldURL for newURL on a single torrent without
	// touching its other trackers
	ReplaceTracker(ctx context.Context, hash, oldURL, newURL string) error
}
