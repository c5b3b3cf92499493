package astar

import "container/heap"

// entry is a node waiting in the frontier
type entry struct {
	id    string
	g     float64
	h     float64
	f     float64
	seq   uint64 // discovery order
	index int    // index in the heap, -1 once popped
}

// queue implements heap.Interface ordered by (f, h, seq)
type queue []*entry

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool {
	a, b := q[i], q[j]
	if a.f != b.f {
		return a.f < b.f
	}
	if a.h != b.h {
		return a.h < b.h
	}
	return a.seq < b.seq
}

func (q queue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *queue) Push(x any) {
	e := x.(*entry)
	e.index = len(*q)
	*q = append(*q, e)
}

func (q *queue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*q = old[:n-1]
	return e
}

// frontier is a min-priority queue with decrease-key by node id.
type frontier struct {
	q    queue
	open map[string]*entry
	seq  uint64
}

func newFrontier() *frontier {
	return &frontier{open: make(map[string]*entry)}
}

func (fr *frontier) Len() int { return fr.q.Len() }

// upsert inserts id or, if it is already waiting, updates its priority in
// place. A node keeps the sequence number of its first discovery.
func (fr *frontier) upsert(id string, g, h float64) {
	if e, ok := fr.open[id]; ok {
		e.g, e.h, e.f = g, h, g+h
		heap.Fix(&fr.q, e.index)
		return
	}
	fr.seq++
	e := &entry{id: id, g: g, h: h, f: g + h, seq: fr.seq}
	heap.Push(&fr.q, e)
	fr.open[id] = e
}

func (fr *frontier) pop() *entry {
	e := heap.Pop(&fr.q).(*entry)
	delete(fr.open, e.id)
	return e
}
