package eventlog

import (
	"context"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Recorder writes request events and route statistics.  A Recorder with
// a nil database is valid and silently drops everything, so callers
// never need to branch on whether analytics is configured.
type Recorder struct {
	db *mongo.Database
}

// NewRecorder wraps the given database handle.  Passing nil yields a
// disabled recorder.
func NewRecorder(db *mongo.Database) *Recorder {
	return &Recorder{db: db}
}

// Enabled reports whether a backing store is configured.
func (r *Recorder) Enabled() bool { return r != nil && r.db != nil }

// EnsureIndexes creates the indexes the analytics queries rely on.
// Failures are logged, not fatal; the store works without indexes, just
// slower.
func (r *Recorder) EnsureIndexes(ctx context.Context) {
	if !r.Enabled() {
		return
	}
	_, err := r.db.Collection(collAPILogs).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "endpoint", Value: 1}, {Key: "timestamp", Value: -1}}},
	})
	if err != nil {
		log.Printf("eventlog: create api_logs indexes: %v", err)
	}
	_, err = r.db.Collection(collRouteStats).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "source", Value: 1}, {Key: "destination", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Printf("eventlog: create route_stats index: %v", err)
	}
}

// Record stores one request event.  Errors are logged and swallowed:
// analytics must never fail a request.
func (r *Recorder) Record(ctx context.Context, ev Event) {
	if !r.Enabled() {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	if _, err := r.db.Collection(collAPILogs).InsertOne(ctx, ev); err != nil {
		log.Printf("eventlog: insert api log: %v", err)
	}
}

// RecordSearch bumps the search counter for a route.  The document is
// upserted so the first search of a route creates it.  Station names
// are normalized to lower case so "Delhi" and "delhi" count as one
// route.
func (r *Recorder) RecordSearch(ctx context.Context, source, destination string) {
	if !r.Enabled() {
		return
	}
	source = strings.ToLower(strings.TrimSpace(source))
	destination = strings.ToLower(strings.TrimSpace(destination))
	if source == "" || destination == "" {
		return
	}
	filter := bson.M{"source": source, "destination": destination}
	update := bson.M{
		"$inc": bson.M{"search_count": 1},
		"$set": bson.M{"last_searched": time.Now().UTC()},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := r.db.Collection(collRouteStats).UpdateOne(ctx, filter, update, opts); err != nil {
		log.Printf("eventlog: update route stat: %v", err)
	}
}
