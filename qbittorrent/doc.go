// Package qbittorrent provides a client for the qBittorrent Web API (v2).
//
// The client logs in once with a form-encoded POST to /api/v2/auth/login.
// qBittorrent replies with a SID cookie and the literal body "Ok."; any other
// body is reported verbatim as a login failure. The cookie is kept in a
// per-client jar and attached to every later call.
//
// # Features
//
//   - Cookie session authentication
//   - Torrent listing with one tracker request per torrent (the API has no
//     batch endpoint)
//   - Single tracker replacement via /api/v2/torrents/editTracker
//   - Context-aware operations for cancellation
//
// # Usage
//
//	client, err := qbittorrent.NewClient(ctx, desc, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	torrents, err := client.ListTorrents(ctx)
//
// HTTPS descriptors skip certificate verification, see downloader.Options.
package qbittorrent
