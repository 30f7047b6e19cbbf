// Package wsapi carries the knowledge base protocol over a single websocket
// connection. Each call is a request frame answered by a response frame with
// the same id.
package wsapi

import (
	"encoding/json"

	"github.com/scrypster/kbbridge/internal/knowledge"
)

// maxFrameBytes caps a single frame on both ends.
const maxFrameBytes = 1 << 20

type requestFrame struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type responseFrame struct {
	ID     uint64                   `json:"id"`
	Result json.RawMessage          `json:"result,omitempty"`
	Error  *knowledge.ErrorResponse `json:"error,omitempty"`
}
