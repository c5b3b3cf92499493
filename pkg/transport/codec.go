package transport

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang/snappy"
)

// Frame flags.
const (
	FlagRaw    byte = 0
	FlagSnappy byte = 1
)

// Operation names.
const (
	OpAddNode      = "add_node"
	OpAddEdge      = "add_edge"
	OpFindPath     = "find_path"
	OpFindGridPath = "find_grid_path"
	OpNearest      = "nearest"
	OpStats        = "stats"
)

var (
	// ErrBadFrame indicates a message that is empty, carries an unknown
	// flag, or fails to decompress.
	ErrBadFrame = errors.New("malformed frame")
	// ErrUnknownOp indicates a request naming no known operation.
	ErrUnknownOp = errors.New("unknown operation")
)

// Request is the envelope sent by clients.
type Request struct {
	ID     string          `json:"id"`
	Op     string          `json:"op"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is the envelope sent back. Error holds the error kind.
type Response struct {
	ID      string          `json:"id"`
	OK      bool            `json:"ok"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

// NodeParams are the parameters of add_node.
type NodeParams struct {
	ID string  `json:"node_id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// EdgeParams are the parameters of add_edge.
type EdgeParams struct {
	Node1 string `json:"node1"`
	Node2 string `json:"node2"`
}

// PathParams are the parameters of find_path.
type PathParams struct {
	Start string `json:"start"`
	Goal  string `json:"goal"`
}

// GridParams are the parameters of find_grid_path.
type GridParams struct {
	Island   [][]any `json:"island"`
	Diagonal *bool   `json:"diagonal,omitempty"`
}

// NearestParams are the parameters of nearest.
type NearestParams struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	K int     `json:"k,omitempty"`
}

// EdgeResult is the result of add_edge.
type EdgeResult struct {
	Created bool `json:"created"`
}

// encodeFrame marshals v and prefixes the flag byte.
func encodeFrame(v any, compress bool) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if !compress {
		return append([]byte{FlagRaw}, body...), nil
	}
	out := make([]byte, 1, 1+snappy.MaxEncodedLen(len(body)))
	out[0] = FlagSnappy
	return append(out, snappy.Encode(nil, body)...), nil
}

// decodeFrame reverses encodeFrame and reports whether the frame was
// compressed.
func decodeFrame(frame []byte, v any) (compressed bool, err error) {
	if len(frame) == 0 {
		return false, ErrBadFrame
	}
	body := frame[1:]
	switch frame[0] {
	case FlagRaw:
	case FlagSnappy:
		compressed = true
		if body, err = snappy.Decode(nil, body); err != nil {
			return true, fmt.Errorf("%w: %w", ErrBadFrame, err)
		}
	default:
		return false, fmt.Errorf("%w: flag %#x", ErrBadFrame, frame[0])
	}
	if err := json.Unmarshal(body, v); err != nil {
		return compressed, fmt.Errorf("%w: %w", ErrBadFrame, err)
	}
	return compressed, nil
}
