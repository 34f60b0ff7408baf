// Package eventlog records API request events and route search
// statistics in MongoDB.  It is a secondary, best-effort store: seat
// and booking state never live here, and every operation degrades to a
// no-op when no database handle was injected or the store is down.
package eventlog

import "time"

// Collection names used by the recorder and queries.
const (
	collAPILogs    = "api_logs"
	collRouteStats = "route_stats"
)

// Event is one recorded API request.  The schema is fixed here rather
// than assembled ad hoc at call sites; BSON only appears at the store
// boundary.
type Event struct {
	Endpoint     string            `bson:"endpoint"`
	Method       string            `bson:"method"`
	UserID       uint64            `bson:"user_id,omitempty"`
	Params       map[string]string `bson:"params,omitempty"`
	Status       int               `bson:"status"`
	LatencyMS    int64             `bson:"latency_ms"`
	ResultsCount int               `bson:"results_count"`
	Timestamp    time.Time         `bson:"timestamp"`
}

// RouteStat is the per-route search counter kept in route_stats, one
// document per (source, destination) pair.
type RouteStat struct {
	Source       string    `bson:"source" json:"source"`
	Destination  string    `bson:"destination" json:"destination"`
	SearchCount  int64     `bson:"search_count" json:"search_count"`
	LastSearched time.Time `bson:"last_searched" json:"last_searched"`
}
