// Package astar implements A* search over any Space.
//
// The engine is written once against the Space capability (Neighbors and
// Coordinates) and runs unchanged over the spatial graph store and over
// grids. It is a pure computation: no locks, no goroutines, no I/O.
//
// Frontier ordering is fully deterministic. Entries are popped by smallest
// f = g + h, ties broken by smaller h, then by the order in which nodes were
// first discovered. Identical inputs therefore yield identical results,
// including the per-node cost breakdown.
//
// Complexity:
//
//	– Time:  O((V + E) log V) with a consistent heuristic.
//	– Space: O(V) for gScore, cameFrom and the frontier.
//
// Reaching the end of the frontier without popping the goal is not an error:
// the Result has Found=false and an empty path.
package astar
