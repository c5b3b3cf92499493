package main

import (
	"strings"
)

// Cell markers used by the editor. They are the same strings the grid
// parser accepts.
const (
	cellWater = "0"
	cellLand  = "1"
	cellStart = "S"
	cellGoal  = "X"
)

// editor is an island being edited, with a cursor and the last solved path.
type editor struct {
	cells    [][]string
	row, col int
	path     map[[2]int]bool
}

func newEditor(rows, cols int) *editor {
	e := &editor{}
	e.cells = make([][]string, rows)
	for r := range e.cells {
		e.cells[r] = make([]string, cols)
		for c := range e.cells[r] {
			e.cells[r][c] = cellLand
		}
	}
	if rows > 0 && cols > 0 {
		e.cells[0][0] = cellStart
		e.cells[rows-1][cols-1] = cellGoal
	}
	return e
}

// parseEditor loads an island from lines such as "S10X". Unknown runes
// become water.
func parseEditor(text string) *editor {
	e := &editor{}
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		row := make([]string, 0, len(line))
		for _, ch := range line {
			switch s := strings.ToUpper(string(ch)); s {
			case cellLand, cellStart, cellGoal:
				row = append(row, s)
			default:
				row = append(row, cellWater)
			}
		}
		e.cells = append(e.cells, row)
	}
	return e
}

func (e *editor) rows() int { return len(e.cells) }

func (e *editor) cols() int {
	if len(e.cells) == 0 {
		return 0
	}
	return len(e.cells[e.row])
}

func (e *editor) move(dr, dc int) {
	if e.rows() == 0 {
		return
	}
	e.row = clamp(e.row+dr, 0, e.rows()-1)
	e.col = clamp(e.col+dc, 0, len(e.cells[e.row])-1)
}

// toggle flips the cell under the cursor between land and water. Start
// and goal markers become water.
func (e *editor) toggle() {
	if e.rows() == 0 {
		return
	}
	if e.cells[e.row][e.col] == cellWater {
		e.cells[e.row][e.col] = cellLand
	} else {
		e.cells[e.row][e.col] = cellWater
	}
	e.path = nil
}

// place moves the unique marker to the cursor, leaving land where it was.
func (e *editor) place(marker string) {
	if e.rows() == 0 {
		return
	}
	for r := range e.cells {
		for c := range e.cells[r] {
			if e.cells[r][c] == marker {
				e.cells[r][c] = cellLand
			}
		}
	}
	e.cells[e.row][e.col] = marker
	e.path = nil
}

// island converts the cells to the request shape the services accept.
func (e *editor) island() [][]any {
	out := make([][]any, len(e.cells))
	for r, row := range e.cells {
		out[r] = make([]any, len(row))
		for c, v := range row {
			out[r][c] = v
		}
	}
	return out
}

func (e *editor) setPath(path [][2]int) {
	e.path = make(map[[2]int]bool, len(path))
	for _, p := range path {
		e.path[p] = true
	}
}

func (e *editor) render(cursor bool) string {
	var s strings.Builder
	for r, row := range e.cells {
		for c, v := range row {
			glyph := glyphFor(v, e.path[[2]int{r, c}])
			if cursor && r == e.row && c == e.col {
				s.WriteString(cursorStyle.Render(glyph))
			} else {
				s.WriteString(glyph)
			}
		}
		s.WriteString("\n")
	}
	return strings.TrimSuffix(s.String(), "\n")
}

func glyphFor(v string, onPath bool) string {
	switch v {
	case cellStart:
		return startStyle.Render(" S ")
	case cellGoal:
		return goalStyle.Render(" X ")
	case cellWater:
		return waterStyle.Render(" ~ ")
	}
	if onPath {
		return pathStyle.Render(" * ")
	}
	return landStyle.Render(" . ")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
