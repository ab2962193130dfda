// Package transmission provides a client for the Transmission JSON-RPC API.
//
// Every call is a POST to /transmission/rpc with a {"method", "arguments"}
// envelope. The daemon protects the endpoint with a CSRF token: the first
// call is answered with 409 Conflict and an X-Transmission-Session-Id header,
// which the client stores and sends on every later call. A reply whose
// "result" is not "success" is always an error.
//
// Tracker replacement takes two calls: torrent-get to resolve the numeric
// tracker id of the old announce URL, then torrent-set with trackerReplace.
//
// HTTP Basic auth is attached when a username is configured. HTTPS
// descriptors skip certificate verification, see downloader.Options.
package transmission
