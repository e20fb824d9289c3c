package jobs

import (
	"context"
	"os"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/bloodline/backend/db"
	"github.com/bloodline/backend/test"
)

var testDB *db.MongoStorage

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := test.StartMongoContainer(ctx)
	if err != nil {
		panic(err)
	}
	defer func() { _ = container.Terminate(ctx) }()
	mongoURI, err := container.Endpoint(ctx, "mongodb")
	if err != nil {
		panic(err)
	}
	if testDB, err = db.New(mongoURI+"/?directConnection=true", test.RandomDatabaseName()); err != nil {
		panic(err)
	}
	defer testDB.Close()
	os.Exit(m.Run())
}

func TestSchedulerLifecycle(t *testing.T) {
	c := qt.New(t)
	scheduler := New(testDB)
	c.Assert(scheduler.Start(), qt.IsNil)
	// the sweep runs cleanly over a storage with nothing to expire
	scheduler.RunExpirySweep()
	scheduler.Stop()
}
