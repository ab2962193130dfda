// Package relocator runs the tracker relocation pipelines against a
// downloader backend.
//
// Every pipeline dials a fresh client, lists the torrents once and then walks
// the snapshot torrent by torrent, tracker by tracker. Scan is read-only.
// Execute issues one replace call per matching tracker and records each
// outcome independently, so a failed replacement never stops the batch.
package relocator
