package migrations

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func init() {
	AddMigration(3, "seed_stock_levels", upSeedStockLevels, downSeedStockLevels)
}

// bloodGroups mirrors the fixed set tracked by the stock ledger. Kept local so
// the migration stays frozen even if the application set ever changes.
var bloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// upSeedStockLevels ensures one aggregated stock document exists per blood
// group, so dashboard reads never have to special-case a missing type. The
// upsert with $setOnInsert keeps existing counters untouched on re-run.
func upSeedStockLevels(ctx context.Context, database *mongo.Database) error {
	stockLevels := database.Collection("stockLevels")
	for _, bg := range bloodGroups {
		filter := bson.M{"_id": bg}
		update := bson.M{"$setOnInsert": bson.M{
			"units":     0,
			"volume":    0,
			"updatedAt": time.Now(),
		}}
		opts := options.Update().SetUpsert(true)
		if _, err := stockLevels.UpdateOne(ctx, filter, update, opts); err != nil {
			return fmt.Errorf("failed to seed stock level for %s: %w", bg, err)
		}
	}
	return nil
}

func downSeedStockLevels(ctx context.Context, database *mongo.Database) error {
	stockLevels := database.Collection("stockLevels")
	filter := bson.M{"units": 0, "volume": 0}
	if _, err := stockLevels.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("failed to remove seeded stock levels: %w", err)
	}
	return nil
}
