package pathfinder

import (
	"context"
	"errors"

	"github.com/dd0wney/cluso-pathfinder/pkg/astar"
	"github.com/dd0wney/cluso-pathfinder/pkg/grid"
	"github.com/dd0wney/cluso-pathfinder/pkg/spatial"
	"github.com/dd0wney/cluso-pathfinder/pkg/validation"
)

// Kind classifies service errors for transports. Its string value is what
// clients see in error envelopes.
type Kind string

const (
	KindNone           Kind = ""
	KindDuplicateNode  Kind = "DuplicateNode"
	KindUnknownNode    Kind = "UnknownNode"
	KindSelfLoop       Kind = "SelfLoop"
	KindInvalidGrid    Kind = "InvalidGrid"
	KindInvalidRequest Kind = "InvalidRequest"
	KindSearchLimit    Kind = "SearchLimit"
	KindTimeout        Kind = "Timeout"
	KindCanceled       Kind = "Canceled"
	KindInternal       Kind = "Internal"
)

// kinded is implemented by errors that already know their Kind, such as
// failures relayed from a remote service.
type kinded interface {
	error
	Kind() Kind
}

// KindOf maps any error returned by the service to its Kind. nil maps to
// KindNone and unrecognised errors to KindInternal.
func KindOf(err error) Kind {
	var k kinded
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &k):
		return k.Kind()
	case errors.Is(err, spatial.ErrDuplicateNode):
		return KindDuplicateNode
	case errors.Is(err, spatial.ErrUnknownNode), errors.Is(err, astar.ErrUnknownNode):
		return KindUnknownNode
	case errors.Is(err, spatial.ErrSelfLoop):
		return KindSelfLoop
	case errors.Is(err, grid.ErrInvalidGrid):
		return KindInvalidGrid
	case errors.Is(err, validation.ErrInvalidRequest),
		errors.Is(err, spatial.ErrInvalidID),
		errors.Is(err, spatial.ErrInvalidCoordinates):
		return KindInvalidRequest
	case errors.Is(err, astar.ErrSearchLimit):
		return KindSearchLimit
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	default:
		return KindInternal
	}
}

// IsClientError reports whether err was caused by the request rather than
// the server.
func IsClientError(err error) bool {
	switch KindOf(err) {
	case KindDuplicateNode, KindUnknownNode, KindSelfLoop, KindInvalidGrid, KindInvalidRequest:
		return true
	}
	return false
}
