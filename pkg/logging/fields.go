package logging

import "time"

func String(key, value string) Field   { return Field{Key: key, Value: value} }
func Int(key string, value int) Field  { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}
func Any(key string, value any) Field { return Field{Key: key, Value: value} }

func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Component tags the subsystem emitting the entry (hazard, routing, ...).
func Component(name string) Field { return String("component", name) }

// Tick tags the scheduler cycle number an entry belongs to.
func Tick(n uint64) Field { return Field{Key: "tick", Value: n} }

// EdgeKey tags an edge identifier in "from-to-parallel" form.
func EdgeKey(key string) Field { return String("edge_key", key) }

// Station tags a river-gauge station identifier.
func Station(id string) Field { return String("station_id", id) }

// Source tags the upstream data source name (river, weather, reservoir, scout).
func Source(name string) Field { return String("source", name) }
