package grid

import (
	"fmt"
	"math"

	"github.com/dd0wney/cluso-pathfinder/pkg/geom"
)

var (
	orthogonalOffsets = [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	diagonalOffsets   = [][2]int{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
)

// Options configures FromGrid.
type Options struct {
	Conn Connectivity
	// MaxCells rejects grids with more cells; zero means unlimited.
	MaxCells int
}

// Option mutates Options.
type Option func(*Options)

// WithConnectivity selects 4- or 8-directional movement.
func WithConnectivity(c Connectivity) Option {
	return func(o *Options) { o.Conn = c }
}

// WithMaxCells caps the grid size.
func WithMaxCells(n int) Option {
	return func(o *Options) { o.MaxCells = n }
}

// Space is a validated grid viewed as a graph. It is immutable and
// satisfies astar.Space.
type Space struct {
	cells   Cells
	rows    int
	cols    int
	conn    Connectivity
	start   Cell
	goal    Cell
	offsets [][2]int
}

// FromGrid validates cells and builds a searchable space. The grid must be
// non-empty and rectangular with exactly one start and one goal.
func FromGrid(cells Cells, opts ...Option) (*Space, error) {
	o := Options{Conn: Conn4}
	for _, opt := range opts {
		opt(&o)
	}

	if len(cells) == 0 || len(cells[0]) == 0 {
		return nil, invalid(ErrEmptyGrid, -1, -1, "")
	}
	rows, cols := len(cells), len(cells[0])
	for r, row := range cells {
		if len(row) != cols {
			return nil, invalid(ErrNonRectangular, r, -1, "")
		}
	}
	if o.MaxCells > 0 && rows*cols > o.MaxCells {
		return nil, invalid(ErrTooLarge, -1, -1, "")
	}

	var starts, goals []Cell
	for r, row := range cells {
		for c, st := range row {
			switch st {
			case Start:
				starts = append(starts, Cell{r, c})
			case Goal:
				goals = append(goals, Cell{r, c})
			}
		}
	}
	switch {
	case len(starts) == 0:
		return nil, invalid(ErrMissingStart, -1, -1, "")
	case len(starts) > 1:
		return nil, invalid(ErrMultipleStarts, starts[1].Row, starts[1].Col, "")
	case len(goals) == 0:
		return nil, invalid(ErrMissingGoal, -1, -1, "")
	case len(goals) > 1:
		return nil, invalid(ErrMultipleGoals, goals[1].Row, goals[1].Col, "")
	}

	offsets := orthogonalOffsets
	if o.Conn == Conn8 {
		offsets = append(append([][2]int{}, orthogonalOffsets...), diagonalOffsets...)
	}

	// Copy so later edits by the caller cannot change a validated space.
	own := make(Cells, rows)
	for r := range cells {
		own[r] = append([]State(nil), cells[r]...)
	}

	return &Space{
		cells:   own,
		rows:    rows,
		cols:    cols,
		conn:    o.Conn,
		start:   starts[0],
		goal:    goals[0],
		offsets: offsets,
	}, nil
}

// Start returns the start cell.
func (s *Space) Start() Cell { return s.start }

// Goal returns the goal cell.
func (s *Space) Goal() Cell { return s.goal }

// Size returns the grid dimensions.
func (s *Space) Size() (rows, cols int) { return s.rows, s.cols }

// Connectivity returns the movement model.
func (s *Space) Connectivity() Connectivity { return s.conn }

// Passable reports whether c is in bounds and not blocked.
func (s *Space) Passable(c Cell) bool {
	if c.Row < 0 || c.Row >= s.rows || c.Col < 0 || c.Col >= s.cols {
		return false
	}
	return s.cells[c.Row][c.Col] != Blocked
}

// NodeCount returns the number of passable cells.
func (s *Space) NodeCount() int {
	n := 0
	for _, row := range s.cells {
		for _, st := range row {
			if st != Blocked {
				n++
			}
		}
	}
	return n
}

// Neighbors returns the passable cells adjacent to id, orthogonal moves
// first (N, S, W, E) then diagonals (NW, NE, SW, SE).
func (s *Space) Neighbors(id string) ([]geom.Neighbor, error) {
	c, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	out := make([]geom.Neighbor, 0, len(s.offsets))
	for _, d := range s.offsets {
		n := Cell{Row: c.Row + d[0], Col: c.Col + d[1]}
		if !s.Passable(n) {
			continue
		}
		weight := 1.0
		if d[0] != 0 && d[1] != 0 {
			// No squeezing between two blocked orthogonal cells.
			if !s.Passable(Cell{c.Row + d[0], c.Col}) && !s.Passable(Cell{c.Row, c.Col + d[1]}) {
				continue
			}
			weight = math.Sqrt2
		}
		out = append(out, geom.Neighbor{ID: n.ID(), Weight: weight})
	}
	return out, nil
}

// Coordinates returns (x=col, y=row) for a passable cell.
func (s *Space) Coordinates(id string) (geom.Point, error) {
	c, err := s.lookup(id)
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Point{X: float64(c.Col), Y: float64(c.Row)}, nil
}

func (s *Space) lookup(id string) (Cell, error) {
	c, err := ParseID(id)
	if err != nil {
		return Cell{}, err
	}
	if !s.Passable(c) {
		return Cell{}, fmt.Errorf("%w: (%d,%d)", ErrUnknownCell, c.Row, c.Col)
	}
	return c, nil
}
