package config

// This file defines a MongoDB database constructor for the request
// analytics subsystem.  MongoDB is a secondary store: booking and seat
// state never live here, only API logs and route statistics.  If the
// connection fails at startup the function returns nil and callers
// degrade gracefully by disabling analytics recording.

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// NewMongoDatabase connects to MongoDB using the given URI and returns a
// handle to the named database.  The client is verified with a short
// ping.  An empty URI or a failed connection yields nil.
func NewMongoDatabase(uri, dbName string) *mongo.Database {
	if uri == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(3*time.Second))
	if err != nil {
		return nil
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil
	}
	return client.Database(dbName)
}
