package db

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateAppointment method inserts a new appointment in the database with the
// Pending status and returns its generated ID. If an error occurs, it returns
// the error.
func (ms *MongoStorage) CreateAppointment(appointment *Appointment) (primitive.ObjectID, error) {
	if appointment.DonorInfo.DonorEmail == "" || appointment.SelectedSlot == "" {
		return primitive.NilObjectID, ErrInvalidData
	}
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	appointment.ID = primitive.NewObjectID()
	appointment.Status = AppointmentPending
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = appointment.CreatedAt
	if _, err := ms.appointments.InsertOne(ctx, appointment); err != nil {
		return primitive.NilObjectID, err
	}
	return appointment.ID, nil
}

// Appointment method returns the appointment with the given ID. If the
// appointment doesn't exist, it returns a specific error. If other errors
// occur, it returns the error.
func (ms *MongoStorage) Appointment(id primitive.ObjectID) (*Appointment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	result := ms.appointments.FindOne(ctx, bson.M{"_id": id})
	appointment := &Appointment{}
	if err := result.Decode(appointment); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return appointment, nil
}

// Appointments method returns the appointments matching the given filter,
// newest first, and the total count of matches before pagination. A zero
// PageSize disables pagination. If an error occurs, it returns the error.
func (ms *MongoStorage) Appointments(filter AppointmentFilter) ([]Appointment, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Email != "" {
		query["donorInfo.email"] = filter.Email
	}
	if !filter.From.IsZero() || !filter.To.IsZero() {
		window := bson.M{}
		if !filter.From.IsZero() {
			start, _ := dayWindow(filter.From)
			window["$gte"] = start
		}
		if !filter.To.IsZero() {
			_, end := dayWindow(filter.To)
			window["$lt"] = end
		}
		query["selectedDate"] = window
	}

	total, err := ms.appointments.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		opts = opts.SetSkip(int64(page-1) * int64(filter.PageSize)).SetLimit(int64(filter.PageSize))
	}
	cursor, err := ms.appointments.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()
	var appointments []Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, 0, err
	}
	return appointments, total, nil
}

// AppointmentsByDate method returns the appointments of the calendar day that
// contains the given time, in UTC. If an error occurs, it returns the error.
func (ms *MongoStorage) AppointmentsByDate(day time.Time) ([]Appointment, error) {
	appointments, _, err := ms.Appointments(AppointmentFilter{From: day, To: day})
	return appointments, err
}

// activeSlotStatuses are the statuses that hold a slot. Rejected and cancelled
// bookings release their capacity.
var activeSlotStatuses = []AppointmentStatus{
	AppointmentPending,
	AppointmentApproved,
	AppointmentCollected,
	AppointmentProcessed,
	AppointmentTested,
	AppointmentLabelled,
}

// CountAppointmentsInSlot method returns the number of active bookings in the
// given slot of the given calendar day. If an error occurs, it returns the
// error.
func (ms *MongoStorage) CountAppointmentsInSlot(day time.Time, slot string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	start, end := dayWindow(day)
	query := bson.M{
		"selectedDate": bson.M{"$gte": start, "$lt": end},
		"selectedSlot": slot,
		"status":       bson.M{"$in": activeSlotStatuses},
	}
	return ms.appointments.CountDocuments(ctx, query)
}

// AppointmentSlotCounts method returns the number of active bookings per slot
// of the given calendar day. Slots with no bookings are absent from the map.
// If an error occurs, it returns the error.
func (ms *MongoStorage) AppointmentSlotCounts(day time.Time) (map[string]int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	start, end := dayWindow(day)
	query := bson.M{
		"selectedDate": bson.M{"$gte": start, "$lt": end},
		"status":       bson.M{"$in": activeSlotStatuses},
	}
	cursor, err := ms.appointments.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()
	counts := map[string]int{}
	for cursor.Next(ctx) {
		var appointment Appointment
		if err := cursor.Decode(&appointment); err != nil {
			return nil, err
		}
		counts[appointment.SelectedSlot]++
	}
	return counts, cursor.Err()
}

// SetAppointmentStatus method moves the appointment from one status to
// another with a compare-and-set on the current status, so two concurrent
// officers cannot both apply the same step. It returns ErrNotFound if the
// appointment doesn't exist and ErrBadTransition if it exists but is no
// longer in the expected status.
func (ms *MongoStorage) SetAppointmentStatus(id primitive.ObjectID, from, to AppointmentStatus) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return ms.advanceAppointment(ctx, id, from, to, nil)
}

// advanceAppointment applies the compare-and-set status update, optionally
// setting extra stage fields in the same write.
func (ms *MongoStorage) advanceAppointment(
	ctx context.Context, id primitive.ObjectID, from, to AppointmentStatus, extra bson.M,
) error {
	set := bson.M{"status": to, "updatedAt": time.Now()}
	for k, v := range extra {
		set[k] = v
	}
	filter := bson.M{"_id": id, "status": from}
	res, err := ms.appointments.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// distinguish a missing appointment from a stale status
		count, err := ms.appointments.CountDocuments(ctx, bson.M{"_id": id})
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

// CollectAppointment method records the blood draw and moves the appointment
// from Approved to Collected. If the appointment is not in the Approved
// status, it returns ErrBadTransition.
func (ms *MongoStorage) CollectAppointment(id primitive.ObjectID, collection *BloodCollection) error {
	if collection == nil || collection.Volume <= 0 {
		return ErrInvalidData
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return ms.advanceAppointment(ctx, id, AppointmentApproved, AppointmentCollected,
		bson.M{"bloodCollection": collection})
}

// ProcessAppointment method records the completed processing steps and moves
// the appointment from Collected to Processed. If the appointment is not in
// the Collected status, it returns ErrBadTransition.
func (ms *MongoStorage) ProcessAppointment(id primitive.ObjectID, steps []ProcessingStep) error {
	if len(steps) == 0 {
		return ErrInvalidData
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return ms.advanceAppointment(ctx, id, AppointmentCollected, AppointmentProcessed,
		bson.M{"processing": steps})
}

// TestAppointment method records the screening test results and moves the
// appointment from Processed to Tested. If the appointment is not in the
// Processed status, it returns ErrBadTransition.
func (ms *MongoStorage) TestAppointment(id primitive.ObjectID, results []TestResult) error {
	if len(results) == 0 {
		return ErrInvalidData
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return ms.advanceAppointment(ctx, id, AppointmentProcessed, AppointmentTested,
		bson.M{"testing": results})
}

// LabelAppointment method finalizes a unit in a single transaction: it moves
// the appointment from Tested to Labelled, inserts the unit into the stock
// ledger keyed by its label, and credits the aggregated level of its blood
// type. The ledger insert fails on a duplicate label, so a retried call
// cannot credit the stock twice.
func (ms *MongoStorage) LabelAppointment(id primitive.ObjectID, labelling *Labelling) error {
	if labelling == nil || labelling.LabelID == "" {
		return ErrInvalidData
	}
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	return ms.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// load the appointment inside the transaction to read the blood
		// group and the collected volume consistently
		result := ms.appointments.FindOne(sessCtx, bson.M{"_id": id})
		appointment := &Appointment{}
		if err := result.Decode(appointment); err != nil {
			if err == mongo.ErrNoDocuments {
				return ErrNotFound
			}
			return err
		}
		if appointment.Status != AppointmentTested {
			return ErrBadTransition
		}
		if !IsValidBloodGroup(appointment.DonorInfo.BloodGroup) {
			return ErrInvalidData
		}
		volume := 0
		if appointment.BloodCollection != nil {
			volume = appointment.BloodCollection.Volume
		}

		labelling.Labelled = true
		set := bson.M{
			"status":    AppointmentLabelled,
			"labelling": labelling,
			"updatedAt": time.Now(),
		}
		filter := bson.M{"_id": id, "status": AppointmentTested}
		res, err := ms.appointments.UpdateOne(sessCtx, filter, bson.M{"$set": set})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return ErrBadTransition
		}

		// ledger entry, unique on the label
		unit := &StockUnit{
			LabelID:       labelling.LabelID,
			BloodType:     appointment.DonorInfo.BloodGroup,
			Volume:        volume,
			ExpiryDate:    labelling.ExpiryDate,
			Officer:       labelling.Officer,
			AppointmentID: id.Hex(),
			CreatedAt:     time.Now(),
		}
		if _, err := ms.stockUnits.InsertOne(sessCtx, unit); err != nil {
			if strings.Contains(err.Error(), "duplicate key error") {
				return ErrAlreadyExists
			}
			return err
		}

		// credit the aggregated level
		levelUpdate := bson.M{
			"$inc": bson.M{"units": 1, "volume": volume},
			"$set": bson.M{"updatedAt": time.Now()},
		}
		opts := options.Update().SetUpsert(true)
		_, err = ms.stockLevels.UpdateOne(sessCtx, bson.M{"_id": unit.BloodType}, levelUpdate, opts)
		return err
	})
}

// DelAppointment method deletes the appointment with the given ID. If an
// error occurs, it returns the error.
func (ms *MongoStorage) DelAppointment(id primitive.ObjectID) error {
	ms.keysLock.Lock()
	defer ms.keysLock.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	_, err := ms.appointments.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
