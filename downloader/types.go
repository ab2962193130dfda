package downloader

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Kind identifies a torrent client backend
type Kind string

const (
	// KindQBittorrent is the cookie session REST backend
	KindQBittorrent Kind = "qbittorrent"
	// KindTransmission is the CSRF token JSON-RPC backend
	KindTransmission Kind = "transmission"
)

// ParseKind converts a configured backend name to a Kind
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindQBittorrent, KindTransmission:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedBackend, s)
	}
}

// DefaultPort returns the port a backend listens on out of the box
func (k Kind) DefaultPort(useHTTPS bool) int {
	if useHTTPS {
		return 443
	}
	if k == KindTransmission {
		return 9091
	}
	return 8080
}

// Descriptor describes how to reach a backend. It is built by the caller
// and never persisted by the clients.
type Descriptor struct {
	Kind     Kind
	Host     string
	Port     int
	Username string
	Password string
	UseHTTPS bool
}

// BaseURL returns scheme://host:port for the descriptor. IPv6 literals are
// bracketed, whether or not the configured host already was.
func (d Descriptor) BaseURL() string {
	scheme := "http"
	if d.UseHTTPS {
		scheme = "https"
	}
	host := strings.TrimSuffix(strings.TrimPrefix(d.Host, "["), "]")
	return scheme + "://" + net.JoinHostPort(host, strconv.Itoa(d.Port))
}

// TrackerRecord is a single announce URL attached to a torrent
type TrackerRecord struct {
	URL string
	// Status is backend specific and passed through as-is. Transmission
	// does not expose one and always reports 0.
	Status int
}

// TorrentRecord is a torrent and its announce trackers
type TorrentRecord struct {
	Hash     string
	Name     string
	Trackers []TrackerRecord
}

// TrackerURLs returns the announce URLs of the torrent in order
func (t TorrentRecord) TrackerURLs() []string {
	urls := make([]string, 0, len(t.Trackers))
	for _, tr := range t.Trackers {
		urls = append(urls, tr.URL)
	}
	return urls
}

// IsAnnounceURL reports whether url is an HTTP(S) or UDP announce URL.
// qBittorrent lists DHT, PeX and LSD as pseudo trackers; those are dropped.
func IsAnnounceURL(url string) bool {
	return strings.HasPrefix(url, "http") || strings.HasPrefix(url, "udp")
}
