package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.vocdoni.io/dvote/log"
)

// StockLevels method returns the aggregated stock level of every blood type.
// If an error occurs, it returns the error.
func (ms *MongoStorage) StockLevels() ([]StockLevel, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := ms.stockLevels.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()
	var levels []StockLevel
	if err := cursor.All(ctx, &levels); err != nil {
		return nil, err
	}
	return levels, nil
}

// StockLevelByType method returns the aggregated stock level of the given
// blood type. If no record exists, it returns a specific error.
func (ms *MongoStorage) StockLevelByType(bloodType string) (*StockLevel, error) {
	if !IsValidBloodGroup(bloodType) {
		return nil, ErrInvalidData
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	result := ms.stockLevels.FindOne(ctx, bson.M{"_id": bloodType})
	level := &StockLevel{}
	if err := result.Decode(level); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return level, nil
}

// StockUnit method returns the ledger entry with the given label. If no entry
// exists, it returns a specific error.
func (ms *MongoStorage) StockUnit(labelID string) (*StockUnit, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	result := ms.stockUnits.FindOne(ctx, bson.M{"_id": labelID})
	unit := &StockUnit{}
	if err := result.Decode(unit); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return unit, nil
}

// StockUnits method returns the non-expired ledger entries of the given blood
// type, oldest expiry first. An empty blood type returns every non-expired
// entry. If an error occurs, it returns the error.
func (ms *MongoStorage) StockUnits(bloodType string) ([]StockUnit, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := bson.M{"expired": false}
	if bloodType != "" {
		if !IsValidBloodGroup(bloodType) {
			return nil, ErrInvalidData
		}
		query["bloodType"] = bloodType
	}
	opts := options.Find().SetSort(bson.D{{Key: "expiryDate", Value: 1}})
	cursor, err := ms.stockUnits.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()
	var units []StockUnit
	if err := cursor.All(ctx, &units); err != nil {
		return nil, err
	}
	return units, nil
}

// AdjustStockLevel method applies a manual correction to the aggregated
// level of the given blood type, adding the given unit and volume deltas.
// Negative deltas debit the level. If an error occurs, it returns the error.
func (ms *MongoStorage) AdjustStockLevel(bloodType string, units, volume int) error {
	if !IsValidBloodGroup(bloodType) {
		return ErrInvalidData
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"units": units, "volume": volume},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.Update().SetUpsert(true)
	_, err := ms.stockLevels.UpdateOne(ctx, bson.M{"_id": bloodType}, update, opts)
	return err
}

// ExpireStockUnits method marks every ledger entry past its expiry date as
// expired and debits the aggregated level of its blood type. Each unit is
// claimed with a compare-and-set on the expired flag, so a concurrent sweep
// cannot debit the same unit twice. It returns the number of expired units.
func (ms *MongoStorage) ExpireStockUnits(now time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	query := bson.M{"expired": false, "expiryDate": bson.M{"$lt": now}}
	cursor, err := ms.stockUnits.Find(ctx, query)
	if err != nil {
		return 0, err
	}
	var candidates []StockUnit
	if err := cursor.All(ctx, &candidates); err != nil {
		return 0, err
	}

	expired := 0
	for _, unit := range candidates {
		err := ms.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			filter := bson.M{"_id": unit.LabelID, "expired": false}
			res, err := ms.stockUnits.UpdateOne(sessCtx, filter, bson.M{"$set": bson.M{"expired": true}})
			if err != nil {
				return err
			}
			if res.MatchedCount == 0 {
				// already claimed by another sweep
				return nil
			}
			levelUpdate := bson.M{
				"$inc": bson.M{"units": -1, "volume": -unit.Volume},
				"$set": bson.M{"updatedAt": time.Now()},
			}
			if _, err := ms.stockLevels.UpdateOne(sessCtx, bson.M{"_id": unit.BloodType}, levelUpdate); err != nil {
				return err
			}
			expired++
			return nil
		})
		if err != nil {
			log.Warnw("failed to expire stock unit", "label", unit.LabelID, "error", err)
		}
	}
	return expired, nil
}
