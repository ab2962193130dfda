package transmission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/starcalypse/torrentdeck/downloader"
)

// Client talks to the Transmission RPC endpoint
type Client struct {
	url        string
	username   string
	password   string
	httpClient *http.Client
	userAgent  string
	logger     zerolog.Logger

	// sessionID is written once during bootstrap and read by every call.
	// The Client owns it; share a Client between pipelines only with
	// external synchronization.
	mu        sync.RWMutex
	sessionID string
}

var _ downloader.Client = (*Client)(nil)

// NewClient creates a new Transmission client and bootstraps the CSRF
// session id
func NewClient(ctx context.Context, desc downloader.Descriptor, logger zerolog.Logger, opts ...downloader.Option) (*Client, error) {
	o := downloader.NewOptions(opts...)

	client := &Client{
		url:        desc.BaseURL() + rpcPath,
		username:   desc.Username,
		password:   desc.Password,
		httpClient: o.NewHTTPClient(desc.UseHTTPS, nil),
		userAgent:  o.UserAgent,
		logger:     logger,
	}

	if err := client.bootstrapSession(ctx); err != nil {
		return nil, err
	}

	return client, nil
}

// Kind implements downloader.Client
func (c *Client) Kind() downloader.Kind {
	return downloader.KindTransmission
}

// SessionID returns the CSRF token attached to every call
func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

func (c *Client) setSessionID(id string) {
	c.mu.Lock()
	c.sessionID = id
	c.mu.Unlock()
}

// newRequest builds an RPC POST with the auth and session headers set
func (c *Client) newRequest(ctx context.Context, method string, arguments any, withSession bool) (*http.Request, error) {
	if arguments == nil {
		arguments = struct{}{}
	}
	payload, err := json.Marshal(rpcRequest{Method: method, Arguments: arguments})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if withSession {
		req.Header.Set(sessionIDHeader, c.SessionID())
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	return req, nil
}

// bootstrapSession issues session-get without a token. Transmission rejects
// the first call with 409 and hands out the token in a header; that 409 is
// the expected path.
func (c *Client) bootstrapSession(ctx context.Context) error {
	req, err := c.newRequest(ctx, "session-get", nil, false)
	if err != nil {
		return &downloader.ConnectionError{Backend: downloader.KindTransmission, Message: "connection failed", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &downloader.ConnectionError{Backend: downloader.KindTransmission, Message: "connection failed", Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusConflict:
		id := resp.Header.Get(sessionIDHeader)
		if id == "" {
			return &downloader.ConnectionError{
				Backend: downloader.KindTransmission,
				Message: "no session id in 409 response",
			}
		}
		c.setSessionID(id)
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		// No CSRF protection configured; carry on with whatever we got.
		c.setSessionID(resp.Header.Get(sessionIDHeader))
	default:
		return &downloader.ConnectionError{
			Backend: downloader.KindTransmission,
			Message: fmt.Sprintf("unexpected status: %d", resp.StatusCode),
		}
	}

	c.logger.Debug().Str("url", c.url).Msg("Transmission session established")
	return nil
}

// call performs an RPC and decodes its arguments into out, when out is not
// nil. Any result other than "success" is an error regardless of the HTTP
// status.
func (c *Client) call(ctx context.Context, method string, arguments, out any) error {
	req, err := c.newRequest(ctx, method, arguments, true)
	if err != nil {
		return &downloader.ProtocolError{Op: method, Message: "request failed", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &downloader.ProtocolError{Op: method, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return &downloader.ProtocolError{
			Op:      method,
			Message: fmt.Sprintf("failed to parse response (status %d)", resp.StatusCode),
			Err:     err,
		}
	}

	if rpcResp.Result != resultSuccess {
		return &downloader.ProtocolError{Op: method, Message: "rpc error: " + rpcResp.Result}
	}

	if out == nil || len(rpcResp.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Arguments, out); err != nil {
		return &downloader.ProtocolError{Op: method, Message: "failed to parse arguments", Err: err}
	}
	return nil
}

// TestConnection reports the daemon version from session-get
func (c *Client) TestConnection(ctx context.Context) (string, error) {
	var info sessionInfo
	if err := c.call(ctx, "session-get", nil, &info); err != nil {
		return "", err
	}

	version := info.Version
	if version == "" {
		version = "unknown"
	}
	return "Transmission " + version, nil
}

// getTorrents runs torrent-get and requires the torrents field in the reply
func (c *Client) getTorrents(ctx context.Context, args torrentGetArgs) ([]torrent, error) {
	var list struct {
		Torrents *[]torrent `json:"torrents"`
	}
	if err := c.call(ctx, "torrent-get", args, &list); err != nil {
		return nil, err
	}
	if list.Torrents == nil {
		return nil, &downloader.ProtocolError{Op: "torrent-get", Message: "no torrents field"}
	}
	return *list.Torrents, nil
}

// ListTorrents fetches every torrent with its trackers in a single call.
// Transmission has no tracker status, so Status is always 0.
func (c *Client) ListTorrents(ctx context.Context) ([]downloader.TorrentRecord, error) {
	torrents, err := c.getTorrents(ctx, torrentGetArgs{
		Fields: []string{"hashString", "name", "trackers"},
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Msgf("Retrieved %d torrents from Transmission", len(torrents))

	results := make([]downloader.TorrentRecord, 0, len(torrents))
	for _, t := range torrents {
		record := downloader.TorrentRecord{
			Hash:     t.HashString,
			Name:     t.Name,
			Trackers: make([]downloader.TrackerRecord, 0, len(t.Trackers)),
		}
		for _, tr := range t.Trackers {
			if tr.Announce == nil || !downloader.IsAnnounceURL(*tr.Announce) {
				continue
			}
			record.Trackers = append(record.Trackers, downloader.TrackerRecord{URL: *tr.Announce})
		}
		results = append(results, record)
	}

	return results, nil
}

// ReplaceTracker resolves the tracker id of oldURL on the torrent and swaps
// it for newURL with torrent-set trackerReplace
func (c *Client) ReplaceTracker(ctx context.Context, hash, oldURL, newURL string) error {
	id, err := c.findTrackerID(ctx, hash, oldURL)
	if err != nil {
		return err
	}

	err = c.call(ctx, "torrent-set", torrentSetArgs{
		IDs:            []string{hash},
		TrackerReplace: []any{id, newURL},
	}, nil)
	if err != nil {
		return &downloader.ReplaceError{Hash: hash, URL: oldURL, Message: "replace tracker failed", Err: err}
	}

	return nil
}

// findTrackerID returns the id of the tracker whose announce URL equals
// oldURL exactly. Only the first torrent of the reply is considered.
func (c *Client) findTrackerID(ctx context.Context, hash, oldURL string) (int64, error) {
	torrents, err := c.getTorrents(ctx, torrentGetArgs{
		IDs:    []string{hash},
		Fields: []string{"trackers"},
	})
	if err != nil {
		return 0, &downloader.ReplaceError{Hash: hash, URL: oldURL, Message: "lookup trackers failed", Err: err}
	}

	if len(torrents) == 0 {
		return 0, &downloader.ReplaceError{Hash: hash, URL: oldURL, Message: "torrent not found"}
	}
	if torrents[0].Trackers == nil {
		return 0, &downloader.ReplaceError{Hash: hash, URL: oldURL, Message: "no trackers"}
	}

	for _, tr := range torrents[0].Trackers {
		if tr.Announce != nil && *tr.Announce == oldURL && tr.ID != nil {
			return *tr.ID, nil
		}
	}

	return 0, &downloader.ReplaceError{Hash: hash, URL: oldURL, Message: "tracker not found in torrent"}
}
