package grid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors for grid operations.
var (
	// ErrInvalidGrid is matched by every structural grid error.
	ErrInvalidGrid = errors.New("invalid grid")
	// ErrEmptyGrid indicates the grid has no rows or no columns.
	ErrEmptyGrid = errors.New("grid must have at least one row and one column")
	// ErrNonRectangular indicates rows of differing lengths.
	ErrNonRectangular = errors.New("all rows must have the same length")
	// ErrUnknownMarker indicates a cell value outside the marker alphabet.
	ErrUnknownMarker = errors.New("unknown cell marker")
	ErrMissingStart   = errors.New("grid has no start cell")
	ErrMultipleStarts = errors.New("grid has more than one start cell")
	ErrMissingGoal    = errors.New("grid has no goal cell")
	ErrMultipleGoals  = errors.New("grid has more than one goal cell")
	// ErrTooLarge indicates the grid exceeds the configured cell limit.
	ErrTooLarge = errors.New("grid exceeds maximum size")

	// ErrUnknownCell is returned when a space is asked about a cell that is
	// out of bounds, blocked, or not a valid "row,col" id.
	ErrUnknownCell = errors.New("unknown cell")
)

// GridError describes why a grid was rejected. It matches both ErrInvalidGrid
// and the specific reason under errors.Is.
type GridError struct {
	Reason error
	Row    int // -1 when not tied to a row
	Col    int // -1 when not tied to a column
	Detail string
}

func (e *GridError) Error() string {
	msg := fmt.Sprintf("%v: %v", ErrInvalidGrid, e.Reason)
	switch {
	case e.Row >= 0 && e.Col >= 0:
		msg += fmt.Sprintf(" at (%d,%d)", e.Row, e.Col)
	case e.Row >= 0:
		msg += fmt.Sprintf(" at row %d", e.Row)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// Unwrap exposes both the generic and the specific cause.
func (e *GridError) Unwrap() []error {
	return []error{ErrInvalidGrid, e.Reason}
}

func invalid(reason error, row, col int, detail string) *GridError {
	return &GridError{Reason: reason, Row: row, Col: col, Detail: detail}
}

// State is the occupancy of a single cell.
type State uint8

const (
	Free State = iota
	Blocked
	Start
	Goal
)

func (s State) String() string {
	switch s {
	case Free:
		return "free"
	case Blocked:
		return "blocked"
	case Start:
		return "start"
	case Goal:
		return "goal"
	default:
		return "unknown"
	}
}

// Marker returns the client marker for the state.
func (s State) Marker() any {
	switch s {
	case Start:
		return "S"
	case Goal:
		return "X"
	case Blocked:
		return 0
	default:
		return 1
	}
}

// Cells is a row-major matrix of cell states.
type Cells [][]State

// Connectivity selects neighbor connectivity: orthogonal (Conn4) or including diagonals (Conn8).
type Connectivity int

const (
	// Conn4 uses 4-directional connectivity: N, S, W, E.
	Conn4 Connectivity = iota
	// Conn8 adds the four diagonals.
	Conn8
)

func (c Connectivity) String() string {
	if c == Conn8 {
		return "8-connected"
	}
	return "4-connected"
}

// Cell is a grid coordinate.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ID returns the node id of the cell, "row,col".
func (c Cell) ID() string {
	return strconv.Itoa(c.Row) + "," + strconv.Itoa(c.Col)
}

// Pair returns the cell as a [row, col] pair.
func (c Cell) Pair() [2]int {
	return [2]int{c.Row, c.Col}
}

// ParseID is the inverse of Cell.ID.
func ParseID(id string) (Cell, error) {
	r, c, ok := strings.Cut(id, ",")
	if !ok {
		return Cell{}, fmt.Errorf("%w: %q", ErrUnknownCell, id)
	}
	row, err := strconv.Atoi(r)
	if err != nil {
		return Cell{}, fmt.Errorf("%w: %q", ErrUnknownCell, id)
	}
	col, err := strconv.Atoi(c)
	if err != nil {
		return Cell{}, fmt.Errorf("%w: %q", ErrUnknownCell, id)
	}
	return Cell{Row: row, Col: col}, nil
}
