package transmission

import "encoding/json"

// Wire constants of the Transmission RPC protocol
const (
	rpcPath         = "/transmission/rpc"
	sessionIDHeader = "X-Transmission-Session-Id"
	resultSuccess   = "success"
)

// rpcRequest is the envelope of every RPC call
type rpcRequest struct {
	Method    string `json:"method"`
	Arguments any    `json:"arguments"`
}

// rpcResponse is the envelope of every RPC reply
type rpcResponse struct {
	Result    string          `json:"result"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// torrentGetArgs are the arguments of torrent-get
type torrentGetArgs struct {
	IDs    []string `json:"ids,omitempty"`
	Fields []string `json:"fields"`
}

// torrentSetArgs are the arguments of torrent-set. TrackerReplace is a flat
// [id, url] pair.
type torrentSetArgs struct {
	IDs            []string `json:"ids"`
	TrackerReplace []any    `json:"trackerReplace"`
}

// sessionInfo is the subset of session-get we read
type sessionInfo struct {
	Version string `json:"version"`
}

type torrent struct {
	HashString string    `json:"hashString"`
	Name       string    `json:"name"`
	Trackers   []tracker `json:"trackers"`
}

type tracker struct {
	ID       *int64  `json:"id"`
	Announce *string `json:"announce"`
}
