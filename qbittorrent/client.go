package qbittorrent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/starcalypse/torrentdeck/downloader"
)

const loginOK = "Ok."

// Client talks to the qBittorrent Web API using a cookie session
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     zerolog.Logger
}

var _ downloader.Client = (*Client)(nil)

// NewClient creates a new qBittorrent client and logs in. The session
// cookie returned by the login call is kept in the client's cookie jar and
// sent with every later request. There is no re-login: once the session
// expires the client has to be recreated.
func NewClient(ctx context.Context, desc downloader.Descriptor, logger zerolog.Logger, opts ...downloader.Option) (*Client, error) {
	o := downloader.NewOptions(opts...)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	client := &Client{
		baseURL:    desc.BaseURL(),
		httpClient: o.NewHTTPClient(desc.UseHTTPS, jar),
		userAgent:  o.UserAgent,
		logger:     logger,
	}

	if err := client.login(ctx, desc.Username, desc.Password); err != nil {
		return nil, err
	}

	client.logger.Debug().Str("url", client.baseURL).Msg("Logged in to qBittorrent")

	return client, nil
}

// Kind implements downloader.Client
func (c *Client) Kind() downloader.Kind {
	return downloader.KindQBittorrent
}

// login posts the credentials as a form. qBittorrent answers 200 in both
// cases and signals success only through the literal body "Ok.".
func (c *Client) login(ctx context.Context, username, password string) error {
	form := url.Values{
		"username": {username},
		"password": {password},
	}

	_, body, err := c.doRequest(ctx, http.MethodPost, "/auth/login", nil, form)
	if err != nil {
		return &downloader.ConnectionError{
			Backend: downloader.KindQBittorrent,
			Message: "connection failed",
			Err:     err,
		}
	}

	text := strings.TrimSpace(string(body))
	if text != loginOK {
		return &downloader.ConnectionError{
			Backend: downloader.KindQBittorrent,
			Message: "login failed: " + text,
		}
	}

	return nil
}

// doRequest performs a request against /api/v2 and returns the status code
// and body. A form, when given, is sent url-encoded.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, query, form url.Values) (int, []byte, error) {
	reqURL := c.baseURL + "/api/v2" + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if form != nil {
		reqBody = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return resp.StatusCode, body, nil
}

// getJSON fetches endpoint and decodes the JSON body into v
func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, v any) error {
	status, body, err := c.doRequest(ctx, http.MethodGet, endpoint, query, nil)
	if err != nil {
		return &downloader.ProtocolError{Op: endpoint, Message: "request failed", Err: err}
	}
	if status != http.StatusOK {
		return &downloader.ProtocolError{
			Op:      endpoint,
			Message: fmt.Sprintf("unexpected status %d: %s", status, strings.TrimSpace(string(body))),
		}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &downloader.ProtocolError{Op: endpoint, Message: "failed to parse response", Err: err}
	}
	return nil
}

// TestConnection returns the qBittorrent application version
func (c *Client) TestConnection(ctx context.Context) (string, error) {
	_, body, err := c.doRequest(ctx, http.MethodGet, "/app/version", nil, nil)
	if err != nil {
		return "", &downloader.ConnectionError{
			Backend: downloader.KindQBittorrent,
			Message: "connection failed",
			Err:     err,
		}
	}

	return "qBittorrent " + strings.TrimSpace(string(body)), nil
}

// ListTorrents retrieves all torrents and their announce trackers.
//
// The Web API has no batch tracker endpoint, so this issues one request for
// the torrent list and then one request per torrent. On large libraries this
// is the slowest part of every pipeline.
func (c *Client) ListTorrents(ctx context.Context) ([]downloader.TorrentRecord, error) {
	var torrents []torrentInfo
	if err := c.getJSON(ctx, "/torrents/info", nil, &torrents); err != nil {
		return nil, err
	}

	c.logger.Debug().Msgf("Retrieved %d torrents from qBittorrent", len(torrents))

	results := make([]downloader.TorrentRecord, 0, len(torrents))
	for _, t := range torrents {
		trackers, err := c.GetTorrentTrackers(ctx, t.Hash)
		if err != nil {
			return nil, err
		}

		results = append(results, downloader.TorrentRecord{
			Hash:     t.Hash,
			Name:     t.Name,
			Trackers: trackers,
		})
	}

	return results, nil
}

// GetTorrentTrackers gets the HTTP/UDP trackers of a single torrent
func (c *Client) GetTorrentTrackers(ctx context.Context, hash string) ([]downloader.TrackerRecord, error) {
	var trackers []trackerInfo
	if err := c.getJSON(ctx, "/torrents/trackers", url.Values{"hash": {hash}}, &trackers); err != nil {
		return nil, err
	}

	c.logger.Debug().Str("hash", hash).Int("trackers", len(trackers)).Msg("Retrieved torrent trackers")

	records := make([]downloader.TrackerRecord, 0, len(trackers))
	for _, tr := range trackers {
		if !downloader.IsAnnounceURL(tr.URL) {
			continue
		}
		records = append(records, downloader.TrackerRecord{
			URL:    tr.URL,
			Status: tr.Status,
		})
	}

	return records, nil
}

// ReplaceTracker edits one tracker URL of a torrent
func (c *Client) ReplaceTracker(ctx context.Context, hash, oldURL, newURL string) error {
	form := url.Values{
		"hash":    {hash},
		"origUrl": {oldURL},
		"newUrl":  {newURL},
	}

	status, body, err := c.doRequest(ctx, http.MethodPost, "/torrents/editTracker", nil, form)
	if err != nil {
		return &downloader.ReplaceError{Hash: hash, URL: oldURL, Message: "edit tracker failed", Err: err}
	}

	if status < 200 || status > 299 {
		return &downloader.ReplaceError{
			Hash:    hash,
			URL:     oldURL,
			Message: "edit tracker failed: " + strings.TrimSpace(string(body)),
		}
	}

	return nil
}
