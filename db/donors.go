package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.vocdoni.io/dvote/log"
)

// Donor method returns the donor profile with the given email. If the donor
// doesn't exist, it returns a specific error. If other errors occur, it
// returns the error.
func (ms *MongoStorage) Donor(email string) (*Donor, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	result := ms.donors.FindOne(ctx, bson.M{"_id": email})
	donor := &Donor{}
	if err := result.Decode(donor); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return donor, nil
}

// SetDonor method creates or updates the donor profile in the database, keyed
// by email. Only the non-zero fields of the provided donor overwrite the
// stored document. If an error occurs, it returns the error.
func (ms *MongoStorage) SetDonor(donor *Donor) error {
	if donor.Email == "" {
		return ErrInvalidData
	}
	if donor.BloodGroup != "" && !IsValidBloodGroup(donor.BloodGroup) {
		return ErrInvalidData
	}
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	donor.UpdatedAt = time.Now()
	updateDoc, err := dynamicUpdateDocument(donor, []string{"updatedAt"})
	if err != nil {
		return err
	}
	// set createdAt only when the document is first inserted
	updateDoc["$setOnInsert"] = bson.M{"createdAt": time.Now()}
	opts := options.Update().SetUpsert(true)
	if _, err := ms.donors.UpdateOne(ctx, bson.M{"_id": donor.Email}, updateDoc, opts); err != nil {
		return err
	}
	return nil
}

// SetDonorAvatar method stores the avatar URL of the donor with the given
// email. If the donor doesn't exist, it returns a specific error.
func (ms *MongoStorage) SetDonorAvatar(email, avatarURL string) error {
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"avatarURL": avatarURL, "updatedAt": time.Now()}}
	res, err := ms.donors.UpdateOne(ctx, bson.M{"_id": email}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DonorsByDistrict method returns the donor profiles registered in the given
// district, used to announce upcoming camps. If an error occurs, it returns
// the error.
func (ms *MongoStorage) DonorsByDistrict(district string) ([]Donor, error) {
	if district == "" {
		return nil, ErrInvalidData
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	cursor, err := ms.donors.Find(ctx, bson.M{"district": district})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := cursor.Close(ctx); err != nil {
			log.Warnw("error closing cursor", "error", err)
		}
	}()
	var donors []Donor
	if err := cursor.All(ctx, &donors); err != nil {
		return nil, err
	}
	return donors, nil
}

// DelDonor method deletes the donor profile with the given email. If an error
// occurs, it returns the error.
func (ms *MongoStorage) DelDonor(email string) error {
	if email == "" {
		return ErrInvalidData
	}
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	_, err := ms.donors.DeleteOne(ctx, bson.M{"_id": email})
	return err
}
