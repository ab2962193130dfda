package qbittorrent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starcalypse/torrentdeck/downloader"
)

const testSID = "session-cookie-value"

// fakeQBittorrent emulates the subset of the Web API the client uses
type fakeQBittorrent struct {
	t        *testing.T
	mu       sync.Mutex
	password string
	torrents []torrentInfo
	trackers map[string][]trackerInfo
	edits    []url.Values
	editFail string

	trackerCalls int
}

func (f *fakeQBittorrent) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v2/auth/login", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, http.MethodPost, r.Method)
		assert.Equal(f.t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(f.t, r.ParseForm())
		if r.PostForm.Get("username") != "admin" || r.PostForm.Get("password") != f.password {
			w.Write([]byte("Fails."))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "SID", Value: testSID, Path: "/"})
		w.Write([]byte("Ok."))
	})

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("SID")
			if err != nil || cookie.Value != testSID {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte("Forbidden"))
				return
			}
			next(w, r)
		}
	}

	mux.HandleFunc("/api/v2/app/version", authed(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("v4.6.2"))
	}))

	mux.HandleFunc("/api/v2/torrents/info", authed(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(f.torrents)
	}))

	mux.HandleFunc("/api/v2/torrents/trackers", authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.trackerCalls++
		f.mu.Unlock()
		hash := r.URL.Query().Get("hash")
		trackers, ok := f.trackers[hash]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(trackers)
	}))

	mux.HandleFunc("/api/v2/torrents/editTracker", authed(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(f.t, r.ParseForm())
		f.mu.Lock()
		f.edits = append(f.edits, r.PostForm)
		f.mu.Unlock()
		if f.editFail != "" {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(f.editFail))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	return mux
}

func newTestServer(t *testing.T, fake *fakeQBittorrent) (*httptest.Server, downloader.Descriptor) {
	t.Helper()
	fake.t = t
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	return server, downloader.Descriptor{
		Kind:     downloader.KindQBittorrent,
		Host:     u.Hostname(),
		Port:     port,
		Username: "admin",
		Password: "secret",
	}
}

func TestNewClient(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("login success", func(t *testing.T) {
		_, desc := newTestServer(t, &fakeQBittorrent{password: "secret"})

		client, err := NewClient(context.Background(), desc, logger)
		require.NoError(t, err)
		assert.Equal(t, downloader.KindQBittorrent, client.Kind())

		version, err := client.TestConnection(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "qBittorrent v4.6.2", version)
	})

	t.Run("login failure surfaces body", func(t *testing.T) {
		_, desc := newTestServer(t, &fakeQBittorrent{password: "other"})

		_, err := NewClient(context.Background(), desc, logger)
		require.Error(t, err)

		var connErr *downloader.ConnectionError
		require.ErrorAs(t, err, &connErr)
		assert.Contains(t, err.Error(), "Fails.")
	})

	t.Run("unreachable host", func(t *testing.T) {
		server, desc := newTestServer(t, &fakeQBittorrent{password: "secret"})
		server.Close()

		_, err := NewClient(context.Background(), desc, logger)
		var connErr *downloader.ConnectionError
		require.ErrorAs(t, err, &connErr)
		assert.Contains(t, err.Error(), "connection failed")
	})
}

func TestListTorrents(t *testing.T) {
	fake := &fakeQBittorrent{
		password: "secret",
		torrents: []torrentInfo{
			{Hash: "aaa", Name: "Ubuntu"},
			{Hash: "bbb", Name: "Debian"},
		},
		trackers: map[string][]trackerInfo{
			"aaa": {
				{URL: "** [DHT] **", Status: 2},
				{URL: "** [PeX] **", Status: 2},
				{URL: "** [LSD] **", Status: 2},
				{URL: "http://tracker.old.com/announce", Status: 2},
				{URL: "udp://tracker.other.org:1337", Status: 4},
			},
			"bbb": {},
		},
	}
	_, desc := newTestServer(t, fake)

	client, err := NewClient(context.Background(), desc, zerolog.Nop())
	require.NoError(t, err)

	torrents, err := client.ListTorrents(context.Background())
	require.NoError(t, err)
	require.Len(t, torrents, 2)

	assert.Equal(t, "aaa", torrents[0].Hash)
	assert.Equal(t, "Ubuntu", torrents[0].Name)
	assert.Equal(t, []downloader.TrackerRecord{
		{URL: "http://tracker.old.com/announce", Status: 2},
		{URL: "udp://tracker.other.org:1337", Status: 4},
	}, torrents[0].Trackers)
	assert.Empty(t, torrents[1].Trackers)

	// one tracker request per torrent
	assert.Equal(t, 2, fake.trackerCalls)
}

func TestListTorrentsTrackerFailure(t *testing.T) {
	fake := &fakeQBittorrent{
		password: "secret",
		torrents: []torrentInfo{{Hash: "missing", Name: "Gone"}},
		trackers: map[string][]trackerInfo{},
	}
	_, desc := newTestServer(t, fake)

	client, err := NewClient(context.Background(), desc, zerolog.Nop())
	require.NoError(t, err)

	_, err = client.ListTorrents(context.Background())
	var protoErr *downloader.ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Contains(t, err.Error(), "404")
}

func TestReplaceTracker(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fake := &fakeQBittorrent{password: "secret"}
		_, desc := newTestServer(t, fake)

		client, err := NewClient(context.Background(), desc, zerolog.Nop())
		require.NoError(t, err)

		err = client.ReplaceTracker(context.Background(), "aaa", "http://old/announce", "http://new/announce")
		require.NoError(t, err)

		require.Len(t, fake.edits, 1)
		assert.Equal(t, "aaa", fake.edits[0].Get("hash"))
		assert.Equal(t, "http://old/announce", fake.edits[0].Get("origUrl"))
		assert.Equal(t, "http://new/announce", fake.edits[0].Get("newUrl"))
	})

	t.Run("non-2xx body is the error", func(t *testing.T) {
		fake := &fakeQBittorrent{password: "secret", editFail: "newUrl already exists"}
		_, desc := newTestServer(t, fake)

		client, err := NewClient(context.Background(), desc, zerolog.Nop())
		require.NoError(t, err)

		err = client.ReplaceTracker(context.Background(), "aaa", "http://old/announce", "http://new/announce")
		var replaceErr *downloader.ReplaceError
		require.ErrorAs(t, err, &replaceErr)
		assert.Equal(t, "edit tracker failed: newUrl already exists", err.Error())
		assert.Equal(t, "aaa", replaceErr.Hash)
	})
}

func TestHTTPSSkipsVerification(t *testing.T) {
	fake := &fakeQBittorrent{password: "secret", t: t}
	server := httptest.NewTLSServer(fake.handler())
	defer server.Close()

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	desc := downloader.Descriptor{
		Kind:     downloader.KindQBittorrent,
		Host:     u.Hostname(),
		Port:     port,
		Username: "admin",
		Password: "secret",
		UseHTTPS: true,
	}

	client, err := NewClient(context.Background(), desc, zerolog.Nop())
	require.NoError(t, err)

	version, err := client.TestConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "qBittorrent v4.6.2", version)
}
