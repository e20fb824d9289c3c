package db

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.vocdoni.io/dvote/log"
)

const defaultTimeout = 10 * time.Second

// MongoStorage uses an external MongoDB service for storing donors, staff
// users, appointments, camps and the blood stock ledger.
type MongoStorage struct {
	DBClient *mongo.Client
	database string
	keysLock sync.RWMutex

	users        *mongo.Collection
	donors       *mongo.Collection
	appointments *mongo.Collection
	camps        *mongo.Collection
	stockUnits   *mongo.Collection
	stockLevels  *mongo.Collection
	objects      *mongo.Collection
	migrations   *mongo.Collection
}

// New connects to the MongoDB service at the given url, initializes the
// collections of the given database and runs any pending migrations. If the
// BLOODLINE_MONGO_RESET_DB environment variable is set, the database is
// dropped and recreated first.
func New(url, database string) (*MongoStorage, error) {
	ms := &MongoStorage{}
	if url == "" {
		return nil, fmt.Errorf("mongo URL is not defined")
	}
	if database == "" {
		return nil, fmt.Errorf("mongo database is not defined")
	}
	log.Infow("connecting to mongodb", "url", url, "database", database)
	// preparing connection
	opts := options.Client()
	opts.ApplyURI(url)
	opts.SetMaxConnecting(200)
	timeout := time.Second * 10
	opts.ConnectTimeout = &timeout
	// create a new client with the connection options
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to mongodb: %w", err)
	}
	// check if the connection is successful
	ctx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("cannot connect to mongodb: %w", err)
	}
	ms.DBClient = client
	ms.database = database
	// if reset flag is enabled, drop the database documents before anything else
	if reset := os.Getenv("BLOODLINE_MONGO_RESET_DB"); reset != "" {
		if err := client.Database(database).Drop(ctx); err != nil {
			return nil, fmt.Errorf("cannot reset database: %w", err)
		}
	}
	// init the collections
	if err := ms.initCollections(database); err != nil {
		return nil, err
	}
	// apply pending migrations (indexes, seed documents)
	if err := ms.RunMigrationsUp(); err != nil {
		return nil, err
	}
	return ms, nil
}

// Close method closes the connection to the MongoDB service.
func (ms *MongoStorage) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ms.DBClient.Disconnect(ctx); err != nil {
		log.Warn(err)
	}
}

// Reset method drops the whole database and recreates collections and
// indexes. Used by tests between cases.
func (ms *MongoStorage) Reset() error {
	log.Infof("resetting database")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := ms.DBClient.Database(ms.database).Drop(ctx); err != nil {
		return err
	}
	if err := ms.initCollections(ms.database); err != nil {
		return err
	}
	return ms.RunMigrationsUp()
}
