package db

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/bloodline/backend/test"
)

var testDB *MongoStorage

// Common test constants
const (
	testUserEmail   = "officer@bloodline.lk"
	testUserPass    = "testpass123"
	testUserFirst   = "Test"
	testUserLast    = "Officer"
	testDonorEmail  = "donor@example.com"
	testDonorName   = "Test Donor"
	testDonorNIC    = "991234567V"
	testDonorPhone  = "+94771234567"
	testBloodGroup  = "O+"
	testSlot        = "09:00-10:00"
	testCampOrg     = "Lions Club"
	testCampTeam    = "Team A"
	testLabelPrefix = "BL-2026-"
)

func testDate(daysAhead int) time.Time {
	return time.Now().UTC().AddDate(0, 0, daysAhead)
}

func TestMain(m *testing.M) {
	ctx := context.Background()
	// start a MongoDB container for testing
	dbContainer, err := test.StartMongoContainer(ctx)
	if err != nil {
		panic(fmt.Sprintf("failed to start MongoDB container: %v", err))
	}

	// get the MongoDB connection string
	mongoURI, err := dbContainer.Endpoint(ctx, "mongodb")
	if err != nil {
		panic(fmt.Sprintf("failed to get MongoDB endpoint: %v", err))
	}

	testDB, err = New(mongoURI+"/?directConnection=true", test.RandomDatabaseName())
	if err != nil {
		panic(fmt.Sprintf("failed to create new MongoDB connection: %v", err))
	}

	code := m.Run()

	// close the database connection
	testDB.Close()

	// stop the MongoDB container
	if err := dbContainer.Terminate(ctx); err != nil {
		panic(fmt.Sprintf("failed to stop MongoDB container: %v", err))
	}

	os.Exit(code)
}

// testAppointment returns a valid appointment fixture for the given day.
func testAppointment(daysAhead int) *Appointment {
	return &Appointment{
		SelectedDate: testDate(daysAhead),
		SelectedSlot: testSlot,
		DonorInfo: DonorInfo{
			DonorEmail: testDonorEmail,
			Name:       testDonorName,
			NIC:        testDonorNIC,
			Contact:    testDonorPhone,
			BloodGroup: testBloodGroup,
			Gender:     "Male",
			Age:        27,
		},
		Questionnaire: Questionnaire{
			FirstForm:  QuestionnaireForm{"feelingWell": "yes"},
			SecondForm: QuestionnaireForm{"recentSurgery": "no"},
		},
	}
}
