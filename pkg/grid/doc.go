// Package grid adapts a 2-D occupancy grid into a searchable space.
//
// A grid is a rectangular matrix of cells, each one of Free, Blocked, Start
// or Goal. Clients send the "Treasure Island" markers:
//
//	'S'  start
//	'X'  goal (the treasure)
//	 0   blocked (water)
//	 1   free (land); any other non-zero number is also free
//
// Every passable cell becomes a node keyed "row,col" whose coordinates are
// (x=col, y=row). Blocked cells produce no node and no edges, so they are
// unreachable by construction. Movement is 4-connected by default; Conn8
// adds diagonal moves of cost √2 that never cut between two blocked
// orthogonal neighbours.
package grid
