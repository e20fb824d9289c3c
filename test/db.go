// Package test provides testing utilities for the bloodline backend,
// including test containers for MongoDB and mail services.
package test

import (
	"context"
	"fmt"
	"time"

	"github.com/bloodline/backend/internal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// MongoPort is the port exposed by the MongoDB test container.
const MongoPort = "27017"

// StartMongoContainer starts a single-node MongoDB replica set for testing.
// A replica set is required because the storage layer uses transactions.
// It returns the container and any error encountered during startup.
func StartMongoContainer(ctx context.Context) (testcontainers.Container, error) {
	exposedPort := fmt.Sprintf("%s/tcp", MongoPort)
	container, err := testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "mongo:7",
				Cmd:          []string{"--replSet", "rs0", "--bind_ip_all"},
				ExposedPorts: []string{exposedPort},
				WaitingFor:   wait.ForListeningPort(MongoPort),
			},
			Started: true,
		})
	if err != nil {
		return nil, err
	}
	// initiate the replica set and wait until the node becomes primary
	initCmd := []string{"mongosh", "--quiet", "--eval", "try { rs.status() } catch (e) { rs.initiate() }"}
	if _, _, err := container.Exec(ctx, initCmd); err != nil {
		return nil, fmt.Errorf("failed to initiate replica set: %w", err)
	}
	waitCmd := []string{
		"mongosh", "--quiet", "--eval",
		"let i = 0; while (!db.hello().isWritablePrimary && i < 100) { sleep(100); i++ }",
	}
	if _, _, err := container.Exec(ctx, waitCmd); err != nil {
		return nil, fmt.Errorf("failed to wait for replica set primary: %w", err)
	}
	// give the driver a moment to discover the topology
	time.Sleep(500 * time.Millisecond)
	return container, nil
}

// RandomDatabaseName returns a random database name, so concurrent test
// packages sharing a container never collide.
func RandomDatabaseName() string {
	return fmt.Sprintf("testdb_%s", internal.RandomHex(8))
}
