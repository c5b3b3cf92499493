package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/req"

	"github.com/dd0wney/cluso-pathfinder/pkg/pathfinder"
	"github.com/dd0wney/cluso-pathfinder/pkg/spatial"
)

// ErrCorrelation indicates a reply whose id does not match the request.
var ErrCorrelation = errors.New("reply id mismatch")

// RemoteError is an error reported by the server.
type RemoteError struct {
	Op      string
	ErrKind pathfinder.Kind
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Op, e.ErrKind, e.Message)
}

// Kind lets pathfinder.KindOf classify remote failures like local ones.
func (e *RemoteError) Kind() pathfinder.Kind {
	return e.ErrKind
}

// ClientOptions configures a Client.
type ClientOptions struct {
	// Compress sends snappy frames.
	Compress bool
	// Timeout bounds each round trip when the context has no deadline.
	Timeout time.Duration
}

// Client issues requests over a REQ socket. It is safe for concurrent use;
// each call runs on its own socket context.
type Client struct {
	sock mangos.Socket
	opts ClientOptions
}

// Dial connects a client to addr.
func Dial(addr string, opts ClientOptions) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	sock, err := req.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create REQ socket: %w", err)
	}
	if err := sock.Dial(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return &Client{sock: sock, opts: opts}, nil
}

// Close closes the socket.
func (c *Client) Close() error {
	return c.sock.Close()
}

// Do sends op with params and decodes the result into out, which may be
// nil. Server-side failures are returned as *RemoteError.
func (c *Client) Do(ctx context.Context, op string, params, out any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("%s: encode params: %w", op, err)
	}
	request := Request{ID: uuid.NewString(), Op: op, Params: raw}
	frame, err := encodeFrame(request, c.opts.Compress)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}

	timeout := c.opts.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	mctx, err := c.sock.OpenContext()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer mctx.Close()
	if err := mctx.SetOption(mangos.OptionSendDeadline, timeout); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := mctx.SetOption(mangos.OptionRecvDeadline, timeout); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := mctx.Send(frame); err != nil {
		return fmt.Errorf("%s: send: %w", op, err)
	}
	reply, err := mctx.Recv()
	if err != nil {
		if errors.Is(err, mangos.ErrRecvTimeout) {
			return fmt.Errorf("%s: %w", op, context.DeadlineExceeded)
		}
		return fmt.Errorf("%s: receive: %w", op, err)
	}

	var resp Response
	if _, err := decodeFrame(reply, &resp); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.ID != request.ID {
		return fmt.Errorf("%s: %w: sent %s, got %s", op, ErrCorrelation, request.ID, resp.ID)
	}
	if !resp.OK {
		return &RemoteError{Op: op, ErrKind: pathfinder.Kind(resp.Error), Message: resp.Message}
	}
	if out == nil || len(resp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("%s: decode result: %w", op, err)
	}
	return nil
}

// AddNode registers a node remotely.
func (c *Client) AddNode(ctx context.Context, id string, x, y float64) error {
	return c.Do(ctx, OpAddNode, NodeParams{ID: id, X: x, Y: y}, nil)
}

// AddEdge links two remote nodes.
func (c *Client) AddEdge(ctx context.Context, id1, id2 string) (bool, error) {
	var res EdgeResult
	err := c.Do(ctx, OpAddEdge, EdgeParams{Node1: id1, Node2: id2}, &res)
	return res.Created, err
}

// FindPath runs a remote graph search.
func (c *Client) FindPath(ctx context.Context, start, goal string) (*pathfinder.PathResponse, error) {
	var res pathfinder.PathResponse
	if err := c.Do(ctx, OpFindPath, PathParams{Start: start, Goal: goal}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// FindGridPath runs a remote grid search.
func (c *Client) FindGridPath(ctx context.Context, island [][]any, opts pathfinder.GridOptions) (*pathfinder.GridPathResponse, error) {
	var res pathfinder.GridPathResponse
	if err := c.Do(ctx, OpFindGridPath, GridParams{Island: island, Diagonal: opts.Diagonal}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Nearest looks up the k nodes closest to (x, y).
func (c *Client) Nearest(ctx context.Context, x, y float64, k int) ([]spatial.NearestNode, error) {
	var res []spatial.NearestNode
	err := c.Do(ctx, OpNearest, NearestParams{X: x, Y: y, K: k}, &res)
	return res, err
}

// Stats fetches the remote graph summary.
func (c *Client) Stats(ctx context.Context) (spatial.Stats, error) {
	var res spatial.Stats
	err := c.Do(ctx, OpStats, struct{}{}, &res)
	return res, err
}
