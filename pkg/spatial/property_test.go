package spatial

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestStoreInvariants uses property-based testing to verify adjacency invariants
func TestStoreInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	// Random edge lists over a fixed node set; pairs are encoded as i*size+j.
	const size = 6
	build := func(pairs []int) *Store {
		s := NewStore()
		for i := 0; i < size; i++ {
			s.AddNode(fmt.Sprintf("n%d", i), float64(i), float64(i*i%5))
		}
		for _, p := range pairs {
			s.AddEdge(fmt.Sprintf("n%d", p/size), fmt.Sprintf("n%d", p%size))
		}
		return s
	}

	properties.Property("adjacency is symmetric", prop.ForAll(
		func(pairs []int) bool {
			s := build(pairs)
			for _, n := range s.Nodes() {
				nbrs, _ := s.Neighbors(n.ID)
				for _, nb := range nbrs {
					back, _ := s.Neighbors(nb.ID)
					found := false
					for _, b := range back {
						if b.ID == n.ID && b.Weight == nb.Weight {
							found = true
						}
					}
					if !found {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, size*size-1)),
	))

	properties.Property("re-adding every edge changes nothing", prop.ForAll(
		func(pairs []int) bool {
			s := build(pairs)
			before := s.Stats()
			for _, e := range s.Edges() {
				if created, err := s.AddEdge(e.To, e.From); err != nil || created {
					return false
				}
			}
			return s.Stats() == before
		},
		gen.SliceOf(gen.IntRange(0, size*size-1)),
	))

	properties.Property("edge count matches adjacency", prop.ForAll(
		func(pairs []int) bool {
			s := build(pairs)
			degree := 0
			for _, n := range s.Nodes() {
				nbrs, _ := s.Neighbors(n.ID)
				degree += len(nbrs)
			}
			return degree == 2*s.Stats().EdgeCount && len(s.Edges()) == s.Stats().EdgeCount
		},
		gen.SliceOf(gen.IntRange(0, size*size-1)),
	))

	properties.TestingRun(t)
}
