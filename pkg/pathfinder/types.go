package pathfinder

import (
	"time"

	"github.com/dd0wney/cluso-pathfinder/pkg/astar"
	"github.com/dd0wney/cluso-pathfinder/pkg/grid"
)

// CostEntry is the per-node cost breakdown of a graph path.
type CostEntry struct {
	Node        string     `json:"node"`
	Coordinates [2]float64 `json:"coordinates"`
	GCost       float64    `json:"g_cost"`
	HCost       float64    `json:"h_cost"`
}

// PathResponse is the result of a graph search. An unreachable goal yields
// Found=false with empty, non-nil Path and Costs.
type PathResponse struct {
	Path      []string    `json:"path"`
	Costs     []CostEntry `json:"costs"`
	Found     bool        `json:"found"`
	TotalCost float64     `json:"total_cost"`
	Expanded  int         `json:"expanded"`
}

// GridPathResponse is the result of a grid search. Path holds [row, col]
// pairs from start to goal; Length is the number of cells on it.
type GridPathResponse struct {
	Path      [][2]int `json:"path"`
	Found     bool     `json:"found"`
	Length    int      `json:"length"`
	TotalCost float64  `json:"total_cost"`
	Expanded  int      `json:"expanded"`
}

// GridOptions override search settings for one grid request.
type GridOptions struct {
	// Diagonal selects 8-connectivity. nil uses the configured default.
	Diagonal *bool
}

// SearchConfig bounds every search. It can be swapped at runtime.
type SearchConfig struct {
	Timeout       time.Duration
	MaxExpansions int
	MaxGridCells  int
	Diagonal      bool
}

// DefaultSearchConfig matches the server defaults.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Timeout:       5 * time.Second,
		MaxExpansions: 1_000_000,
		MaxGridCells:  1 << 20,
	}
}

func newPathResponse(res *astar.Result) *PathResponse {
	out := &PathResponse{
		Path:      res.Path,
		Costs:     make([]CostEntry, len(res.Steps)),
		Found:     res.Found,
		TotalCost: res.Cost,
		Expanded:  res.Expanded,
	}
	if out.Path == nil {
		out.Path = []string{}
	}
	for i, st := range res.Steps {
		out.Costs[i] = CostEntry{
			Node:        st.ID,
			Coordinates: st.Point.Pair(),
			GCost:       st.G,
			HCost:       st.H,
		}
	}
	return out
}

func newGridPathResponse(res *astar.Result) (*GridPathResponse, error) {
	out := &GridPathResponse{
		Path:      make([][2]int, len(res.Path)),
		Found:     res.Found,
		Length:    len(res.Path),
		TotalCost: res.Cost,
		Expanded:  res.Expanded,
	}
	for i, id := range res.Path {
		c, err := grid.ParseID(id)
		if err != nil {
			return nil, err
		}
		out.Path[i] = c.Pair()
	}
	return out, nil
}
