package grid

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse converts decoded JSON markers into cell states. Accepted markers are
// "S", "X", numbers (0 blocked, anything else free) and numeric strings.
// Parse checks markers only; shape and start/goal counts are checked by FromGrid.
func Parse(raw [][]any) (Cells, error) {
	cells := make(Cells, len(raw))
	for r, row := range raw {
		cells[r] = make([]State, len(row))
		for c, v := range row {
			st, err := parseMarker(v)
			if err != nil {
				return nil, invalid(ErrUnknownMarker, r, c, err.Error())
			}
			cells[r][c] = st
		}
	}
	return cells, nil
}

// ParseStrings is Parse for grids whose markers all arrive as strings, as
// they do from GraphQL.
func ParseStrings(raw [][]string) (Cells, error) {
	conv := make([][]any, len(raw))
	for r, row := range raw {
		conv[r] = make([]any, len(row))
		for c, v := range row {
			conv[r][c] = v
		}
	}
	return Parse(conv)
}

func parseMarker(v any) (State, error) {
	switch val := v.(type) {
	case string:
		switch strings.TrimSpace(val) {
		case "S":
			return Start, nil
		case "X":
			return Goal, nil
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return Free, fmt.Errorf("marker %q", val)
		}
		return numericState(n)
	case float64:
		return numericState(val)
	case int:
		return numericState(float64(val))
	case int64:
		return numericState(float64(val))
	case json.Number:
		n, err := val.Float64()
		if err != nil {
			return Free, fmt.Errorf("marker %q", val.String())
		}
		return numericState(n)
	case bool:
		if val {
			return Free, nil
		}
		return Blocked, nil
	default:
		return Free, fmt.Errorf("marker of type %T", v)
	}
}

func numericState(n float64) (State, error) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return Free, fmt.Errorf("marker %v", n)
	}
	if n == 0 {
		return Blocked, nil
	}
	return Free, nil
}

// Markers renders cells back into client markers.
func (cells Cells) Markers() [][]any {
	out := make([][]any, len(cells))
	for r, row := range cells {
		out[r] = make([]any, len(row))
		for c, st := range row {
			out[r][c] = st.Marker()
		}
	}
	return out
}
