package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateCamp method inserts a new camp registration in the database with the
// Pending status and no allocated team, and returns its generated ID. If an
// error occurs, it returns the error.
func (ms *MongoStorage) CreateCamp(camp *Camp) (primitive.ObjectID, error) {
	if camp.Organizer.Email == "" || camp.Organization == "" || camp.Date.IsZero() {
		return primitive.NilObjectID, ErrInvalidData
	}
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	camp.ID = primitive.NewObjectID()
	camp.Status = CampPending
	camp.Team = NoTeam
	camp.CreatedAt = time.Now()
	camp.UpdatedAt = camp.CreatedAt
	if _, err := ms.camps.InsertOne(ctx, camp); err != nil {
		return primitive.NilObjectID, err
	}
	return camp.ID, nil
}

// Camp method returns the camp with the given ID. If the camp doesn't exist,
// it returns a specific error. If other errors occur, it returns the error.
func (ms *MongoStorage) Camp(id primitive.ObjectID) (*Camp, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	result := ms.camps.FindOne(ctx, bson.M{"_id": id})
	camp := &Camp{}
	if err := result.Decode(camp); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return camp, nil
}

// Camps method returns the camps with the given status, sorted by event date.
// An empty status returns every camp. If an error occurs, it returns the
// error.
func (ms *MongoStorage) Camps(status CampStatus) ([]Camp, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := bson.M{}
	if status != "" {
		query["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := ms.camps.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()
	var camps []Camp
	if err := cursor.All(ctx, &camps); err != nil {
		return nil, err
	}
	return camps, nil
}

// CampsByDate method returns the approved camps of the calendar day that
// contains the given time, in UTC. If an error occurs, it returns the error.
func (ms *MongoStorage) CampsByDate(day time.Time) ([]Camp, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	start, end := dayWindow(day)
	query := bson.M{
		"date":   bson.M{"$gte": start, "$lt": end},
		"status": CampApproved,
	}
	cursor, err := ms.camps.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()
	var camps []Camp
	if err := cursor.All(ctx, &camps); err != nil {
		return nil, err
	}
	return camps, nil
}

// CampBookedSlots method returns the time labels (start-end) of the
// non-rejected camps of the calendar day that contains the given time, in
// UTC. Organizers use it to avoid double-booking a venue slot. If an error
// occurs, it returns the error.
func (ms *MongoStorage) CampBookedSlots(day time.Time) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	start, end := dayWindow(day)
	query := bson.M{
		"date":   bson.M{"$gte": start, "$lt": end},
		"status": bson.M{"$ne": CampRejected},
	}
	cursor, err := ms.camps.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()
	var camps []Camp
	if err := cursor.All(ctx, &camps); err != nil {
		return nil, err
	}
	slots := make([]string, 0, len(camps))
	for _, camp := range camps {
		slots = append(slots, camp.StartTime+"-"+camp.EndTime)
	}
	return slots, nil
}

// SetCampStatus method moves the camp from one status to another with a
// compare-and-set on the current status. It returns ErrNotFound if the camp
// doesn't exist and ErrBadTransition if it exists but is no longer in the
// expected status.
func (ms *MongoStorage) SetCampStatus(id primitive.ObjectID, from, to CampStatus) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}}
	res, err := ms.camps.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		count, err := ms.camps.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrBadTransition
	}
	return nil
}

// SetCampTeam method allocates a response team to an approved camp. A camp
// that is not approved cannot hold a team, so it returns ErrBadTransition in
// that case. If the camp doesn't exist, it returns ErrNotFound.
func (ms *MongoStorage) SetCampTeam(id primitive.ObjectID, team string) error {
	if team == "" {
		return ErrInvalidData
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": CampApproved}
	update := bson.M{"$set": bson.M{"team": team, "updatedAt": time.Now()}}
	res, err := ms.camps.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		count, err := ms.camps.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrBadTransition
	}
	return nil
}

// DelCamp method deletes the camp with the given ID. If an error occurs, it
// returns the error.
func (ms *MongoStorage) DelCamp(id primitive.ObjectID) error {
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	_, err := ms.camps.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
