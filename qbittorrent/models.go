package qbittorrent

// torrentInfo is the subset of /api/v2/torrents/info we read
type torrentInfo struct {
	Hash string `json:"hash"`
	Name string `json:"name"`
}

// trackerInfo is one entry of /api/v2/torrents/trackers
type trackerInfo struct {
	URL string `json:"url"`
	// 0 disabled, 1 not contacted, 2 working, 3 updating, 4 not working
	Status int `json:"status"`
}
