package astar

import (
	"context"
	"fmt"
	"math"

	"github.com/dd0wney/cluso-pathfinder/pkg/geom"
)

// cancelCheckInterval is how many expansions run between context checks.
const cancelCheckInterval = 256

// FindPath computes a minimum-cost path from start to goal.
//
// Unknown endpoints fail with ErrUnknownNode before any search work. An
// unreachable goal is reported as Result{Found: false} with a nil error.
func FindPath(ctx context.Context, space Space, start, goal string, opts ...Option) (*Result, error) {
	if space == nil {
		return nil, ErrNilSpace
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	goalPoint, err := space.Coordinates(goal)
	if err != nil {
		return nil, fmt.Errorf("%w: goal %q: %w", ErrUnknownNode, goal, err)
	}
	startPoint, err := space.Coordinates(start)
	if err != nil {
		return nil, fmt.Errorf("%w: start %q: %w", ErrUnknownNode, start, err)
	}

	s := &search{
		space:    space,
		goal:     goal,
		goalPt:   goalPoint,
		h:        o.Heuristic,
		gScore:   make(map[string]float64),
		hScore:   make(map[string]float64),
		points:   make(map[string]geom.Point),
		cameFrom: make(map[string]string),
		open:     newFrontier(),
	}

	h0 := s.h(startPoint, goalPoint)
	s.gScore[start] = 0
	s.hScore[start] = h0
	s.points[start] = startPoint
	s.open.upsert(start, 0, h0)

	expanded := 0
	for s.open.Len() > 0 {
		if expanded%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if o.MaxExpansions > 0 && expanded >= o.MaxExpansions {
			return nil, fmt.Errorf("%w after %d expansions", ErrSearchLimit, expanded)
		}

		current := s.open.pop()
		expanded++

		if current.id == goal {
			res := s.reconstruct(start)
			res.Expanded = expanded
			return res, nil
		}

		if err := s.expand(current.id); err != nil {
			return nil, err
		}
	}

	return &Result{Path: []string{}, Steps: []Step{}, Expanded: expanded}, nil
}

type search struct {
	space    Space
	goal     string
	goalPt   geom.Point
	h        Heuristic
	gScore   map[string]float64 // missing means +Inf
	hScore   map[string]float64
	points   map[string]geom.Point
	cameFrom map[string]string
	open     *frontier
}

// expand relaxes every edge leaving id.
func (s *search) expand(id string) error {
	neighbors, err := s.space.Neighbors(id)
	if err != nil {
		return fmt.Errorf("astar: neighbors of %q: %w", id, err)
	}

	g := s.gScore[id]
	for _, nb := range neighbors {
		if nb.Weight < 0 || math.IsNaN(nb.Weight) {
			return fmt.Errorf("%w: %q-%q (%v)", ErrNegativeWeight, id, nb.ID, nb.Weight)
		}
		tentative := g + nb.Weight
		if best, seen := s.gScore[nb.ID]; seen && tentative >= best {
			continue
		}

		h, ok := s.hScore[nb.ID]
		if !ok {
			p, err := s.space.Coordinates(nb.ID)
			if err != nil {
				return fmt.Errorf("astar: coordinates of %q: %w", nb.ID, err)
			}
			h = s.h(p, s.goalPt)
			s.hScore[nb.ID] = h
			s.points[nb.ID] = p
		}

		s.gScore[nb.ID] = tentative
		s.cameFrom[nb.ID] = id
		s.open.upsert(nb.ID, tentative, h)
	}
	return nil
}

// reconstruct walks cameFrom back from the goal and reverses.
func (s *search) reconstruct(start string) *Result {
	var path []string
	for id := s.goal; ; id = s.cameFrom[id] {
		path = append(path, id)
		if id == start {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	steps := make([]Step, len(path))
	for i, id := range path {
		steps[i] = Step{
			ID:    id,
			Point: s.points[id],
			G:     s.gScore[id],
			H:     s.hScore[id],
		}
	}

	return &Result{
		Path:  path,
		Steps: steps,
		Found: true,
		Cost:  s.gScore[s.goal],
	}
}
