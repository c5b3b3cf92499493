package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Domain helpers

func Component(name string) Field {
	return String("component", name)
}

func NodeID(id string) Field {
	return String("node_id", id)
}

// Edge names both endpoints of an undirected edge.
func Edge(id1, id2 string) Field {
	return Field{Key: "edge", Value: [2]string{id1, id2}}
}

func Start(id string) Field {
	return String("start", id)
}

func Goal(id string) Field {
	return String("goal", id)
}

// Expanded is the number of frontier pops a search performed.
func Expanded(n int) Field {
	return Int("expanded", n)
}

func Cost(c float64) Field {
	return Float64("cost", c)
}

func Found(ok bool) Field {
	return Bool("found", ok)
}

// GridSize records rows x cols of a grid request.
func GridSize(rows, cols int) Field {
	return Field{Key: "grid", Value: [2]int{rows, cols}}
}

func Kind(kind string) Field {
	return String("kind", kind)
}

func RequestID(id string) Field {
	return String("request_id", id)
}

func Operation(op string) Field {
	return String("operation", op)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}

func Path(p string) Field {
	return String("path", p)
}
