// Package downloader defines the contract shared by the supported torrent
// client backends.
//
// A backend is reached through a Descriptor and exposed as a Client: an
// authenticated session that can report its version, list torrents with
// their announce trackers, and replace a single tracker URL on a torrent.
// The concrete clients live in the qbittorrent and transmission packages.
//
// # Errors
//
// Failures are reported with typed errors so callers can tell them apart
// with errors.As:
//
//   - ConnectionError: handshake or login failure
//   - ProtocolError: unexpected response shape or a backend reported failure
//   - ReplaceError: a single tracker edit failed
//   - ErrUnsupportedBackend: unknown Kind, returned before any I/O
//
// There is no retry policy. Every error is final for the call that produced it.
//
// # TLS
//
// Clients built with Options.NewHTTPClient skip certificate verification for
// HTTPS descriptors so that self-signed daemons work. This is deliberate and
// applies to every backend.
package downloader
