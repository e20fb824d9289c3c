package migrations

import (
	"context"
	"fmt"
	"slices"

	"github.com/bloodline/backend/internal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func init() {
	AddMigration(1, "initial_collections", upInitialCollections, downInitialCollections)
}

var collectionsToCreate = []string{
	"users",
	"donors",
	"appointments",
	"camps",
	"stockUnits",
	"stockLevels",
	"objects",
	"migrations",
}

var collectionsValidators = map[string]bson.M{
	"users": usersCollectionValidator,
}

var usersCollectionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "email", "password", "role"},
		"properties": bson.M{
			"id": bson.M{
				"bsonType":    "int",
				"description": "must be an integer and is required",
				"minimum":     1,
			},
			"email": bson.M{
				"bsonType":    "string",
				"description": "must be an email and is required",
				"pattern":     internal.EmailRegexTemplate,
			},
			"password": bson.M{
				"bsonType":    "string",
				"description": "must be a string and is required",
				"minLength":   8,
			},
			"role": bson.M{
				"bsonType":    "string",
				"description": "must be a valid staff role",
				"enum":        []string{"admin", "officer"},
			},
		},
	},
}

func upInitialCollections(ctx context.Context, database *mongo.Database) error {
	// get the current collections names to create only the missing ones
	currentCollections, err := listCollectionsInDB(ctx, database)
	if err != nil {
		return fmt.Errorf("failed to get current collections: %w", err)
	}
	for _, name := range collectionsToCreate {
		// if the collection doesn't exist, create it
		if !slices.Contains(currentCollections, name) {
			// if the collection has a validator create it with it
			opts := options.CreateCollection()
			if validator, ok := collectionsValidators[name]; ok {
				opts = opts.SetValidator(validator).SetValidationLevel("strict").SetValidationAction("error")
			}
			// create the collection
			if err := database.CreateCollection(ctx, name, opts); err != nil {
				return err
			}
		}
	}
	return nil
}

func downInitialCollections(context.Context, *mongo.Database) error {
	// Strictly speaking, this down func would Drop all created collections, but that's too risky/destructive.
	// So we do nothing here. (the up func is idempotent anyway)
	return nil
}
