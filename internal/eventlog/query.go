package eventlog

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// slowRequestMS is the latency threshold above which a request counts
// as slow in stats reports.
const slowRequestMS = 500

// The query side tolerates a disabled or unreachable store completely:
// every reader degrades to empty results, and errors go to operational
// output only.  Reporting must never fail a caller.

// TopRoutes returns the most searched routes, busiest first.
func (r *Recorder) TopRoutes(ctx context.Context, limit int) []RouteStat {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	routes := make([]RouteStat, 0, limit)
	if !r.Enabled() {
		return routes
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "search_count", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.db.Collection(collRouteStats).Find(ctx, bson.M{}, opts)
	if err != nil {
		log.Printf("eventlog: top routes query: %v", err)
		return routes
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, &routes); err != nil {
		log.Printf("eventlog: top routes decode: %v", err)
		return routes[:0]
	}
	return routes
}

// LogFilter narrows the Logs query.  Zero values mean "no filter".
type LogFilter struct {
	Endpoint     string
	Method       string
	Status       int
	MinLatencyMS int64
	From         time.Time
	To           time.Time
	Limit        int
	Offset       int
}

// LogEntry is one API log as returned to admins.
type LogEntry struct {
	Endpoint     string            `bson:"endpoint" json:"endpoint"`
	Method       string            `bson:"method" json:"method"`
	UserID       uint64            `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Params       map[string]string `bson:"params,omitempty" json:"params,omitempty"`
	Status       int               `bson:"status" json:"status"`
	LatencyMS    int64             `bson:"latency_ms" json:"latency_ms"`
	ResultsCount int               `bson:"results_count" json:"results_count"`
	Timestamp    time.Time         `bson:"timestamp" json:"timestamp"`
}

// Logs returns request events matching the filter, newest first, along
// with the total number of matches for pagination.
func (r *Recorder) Logs(ctx context.Context, f LogFilter) ([]LogEntry, int64) {
	entries := make([]LogEntry, 0)
	if !r.Enabled() {
		return entries, 0
	}
	filter := bson.M{}
	if f.Endpoint != "" {
		filter["endpoint"] = f.Endpoint
	}
	if f.Method != "" {
		filter["method"] = f.Method
	}
	if f.Status != 0 {
		filter["status"] = f.Status
	}
	if f.MinLatencyMS > 0 {
		filter["latency_ms"] = bson.M{"$gte": f.MinLatencyMS}
	}
	ts := bson.M{}
	if !f.From.IsZero() {
		ts["$gte"] = f.From
	}
	if !f.To.IsZero() {
		ts["$lte"] = f.To
	}
	if len(ts) > 0 {
		filter["timestamp"] = ts
	}
	coll := r.db.Collection(collAPILogs)
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		log.Printf("eventlog: logs count: %v", err)
		return entries, 0
	}
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		log.Printf("eventlog: logs query: %v", err)
		return entries, 0
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, &entries); err != nil {
		log.Printf("eventlog: logs decode: %v", err)
		return entries[:0], 0
	}
	return entries, total
}

// EndpointStat summarizes traffic on one endpoint within the stats
// window.
type EndpointStat struct {
	Endpoint     string  `bson:"_id" json:"endpoint"`
	Count        int64   `bson:"count" json:"count"`
	AvgLatencyMS float64 `bson:"avg_latency_ms" json:"avg_latency_ms"`
	MaxLatencyMS int64   `bson:"max_latency_ms" json:"max_latency_ms"`
}

// StatsReport aggregates API traffic over a trailing window.
type StatsReport struct {
	WindowHours   int            `json:"window_hours"`
	TotalRequests int64          `json:"total_requests"`
	ErrorCount    int64          `json:"error_count"`
	ErrorRatePct  float64        `json:"error_rate_pct"`
	SlowCount     int64          `json:"slow_count"`
	Endpoints     []EndpointStat `json:"endpoints"`
}

// Stats computes the traffic report for the past windowHours hours.
func (r *Recorder) Stats(ctx context.Context, windowHours int) StatsReport {
	if windowHours <= 0 || windowHours > 24*30 {
		windowHours = 24
	}
	report := StatsReport{WindowHours: windowHours, Endpoints: []EndpointStat{}}
	if !r.Enabled() {
		return report
	}
	since := time.Now().UTC().Add(-time.Duration(windowHours) * time.Hour)
	coll := r.db.Collection(collAPILogs)
	window := bson.M{"timestamp": bson.M{"$gte": since}}

	total, err := coll.CountDocuments(ctx, window)
	if err != nil {
		log.Printf("eventlog: stats total: %v", err)
		return report
	}
	errCount, err := coll.CountDocuments(ctx, bson.M{
		"timestamp": bson.M{"$gte": since},
		"status":    bson.M{"$gte": 500},
	})
	if err != nil {
		log.Printf("eventlog: stats errors: %v", err)
		return report
	}
	slowCount, err := coll.CountDocuments(ctx, bson.M{
		"timestamp":  bson.M{"$gte": since},
		"latency_ms": bson.M{"$gte": slowRequestMS},
	})
	if err != nil {
		log.Printf("eventlog: stats slow: %v", err)
		return report
	}

	pipeline := []bson.M{
		{"$match": window},
		{"$group": bson.M{
			"_id":            "$endpoint",
			"count":          bson.M{"$sum": 1},
			"avg_latency_ms": bson.M{"$avg": "$latency_ms"},
			"max_latency_ms": bson.M{"$max": "$latency_ms"},
		}},
		{"$sort": bson.M{"count": -1}},
	}
	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		log.Printf("eventlog: stats aggregate: %v", err)
		return report
	}
	defer cur.Close(ctx)
	endpoints := make([]EndpointStat, 0)
	if err := cur.All(ctx, &endpoints); err != nil {
		log.Printf("eventlog: stats decode: %v", err)
		endpoints = endpoints[:0]
	}

	report.TotalRequests = total
	report.ErrorCount = errCount
	report.SlowCount = slowCount
	report.Endpoints = endpoints
	if total > 0 {
		report.ErrorRatePct = float64(errCount) / float64(total) * 100
	}
	return report
}
