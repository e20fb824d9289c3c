package migrations

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func init() {
	AddMigration(2, "initial_indexes", upInitialIndexes, downInitialIndexes)
}

func upInitialIndexes(ctx context.Context, database *mongo.Database) error {
	ms := struct {
		users        *mongo.Collection
		appointments *mongo.Collection
		camps        *mongo.Collection
		stockUnits   *mongo.Collection
		objects      *mongo.Collection
	}{
		users:        database.Collection("users"),
		appointments: database.Collection("appointments"),
		camps:        database.Collection("camps"),
		stockUnits:   database.Collection("stockUnits"),
		objects:      database.Collection("objects"),
	}

	// create an index for the 'email' field on users (must be unique)
	if _, err := ms.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}}, // 1 for ascending order
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create index on email for users: %w", err)
	}

	// slot occupancy and booked-slot listings query by day and slot
	if _, err := ms.appointments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "selectedDate", Value: 1}, // 1 for ascending order
			{Key: "selectedSlot", Value: 1}, // 1 for ascending order
		},
	}); err != nil {
		return fmt.Errorf("failed to create index on selectedDate and selectedSlot for appointments: %w", err)
	}

	// dashboard listings filter by status
	if _, err := ms.appointments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}}, // 1 for ascending order
	}); err != nil {
		return fmt.Errorf("failed to create index on status for appointments: %w", err)
	}

	// donor history lookups query by the snapshotted email
	if _, err := ms.appointments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "donorInfo.email", Value: 1}}, // 1 for ascending order
	}); err != nil {
		return fmt.Errorf("failed to create index on donorInfo.email for appointments: %w", err)
	}

	// camp listings filter by status and sort by date
	if _, err := ms.camps.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "status", Value: 1}, // 1 for ascending order
			{Key: "date", Value: 1},   // 1 for ascending order
		},
	}); err != nil {
		return fmt.Errorf("failed to create index on status and date for camps: %w", err)
	}

	// the expiry sweep scans non-expired units past their expiry date
	if _, err := ms.stockUnits.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "expired", Value: 1},    // 1 for ascending order
			{Key: "expiryDate", Value: 1}, // 1 for ascending order
		},
	}); err != nil {
		return fmt.Errorf("failed to create index on expired and expiryDate for stockUnits: %w", err)
	}

	// stored objects are looked up by owner when replacing an avatar
	if _, err := ms.objects.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}}, // 1 for ascending order
	}); err != nil {
		return fmt.Errorf("failed to create index on userId for objects: %w", err)
	}

	return nil
}

func downInitialIndexes(ctx context.Context, database *mongo.Database) error {
	// Drop all indexes from all collections
	for _, collName := range []string{
		"users",
		"appointments",
		"camps",
		"stockUnits",
		"objects",
	} {
		collection := database.Collection(collName)
		if _, err := collection.Indexes().DropAll(ctx); err != nil {
			return fmt.Errorf("failed to drop indexes for collection %s: %w", collName, err)
		}
	}

	return nil
}
