package db

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testCamp(daysAhead int) *Camp {
	return &Camp{
		Organizer: Organizer{
			Name:    "Org Aniser",
			NIC:     "881234567V",
			Email:   "organizer@example.com",
			Contact: "+94770000000",
		},
		Organization: testCampOrg,
		Date:         testDate(daysAhead),
		StartTime:    "09:00",
		EndTime:      "16:00",
		Location: CampLocation{
			Province: "Western",
			District: "Colombo",
			City:     "Colombo",
			Venue:    "Town Hall",
		},
		ExpectedDonors: 120,
	}
}

func TestCamp(t *testing.T) {
	defer func() {
		if err := testDB.Reset(); err != nil {
			t.Error(err)
		}
	}()
	c := qt.New(t)
	// test not found camp
	_, err := testDB.Camp(primitive.NewObjectID())
	c.Assert(err, qt.Equals, ErrNotFound)
	// create a camp and fetch it back
	id, err := testDB.CreateCamp(testCamp(10))
	c.Assert(err, qt.IsNil)
	camp, err := testDB.Camp(id)
	c.Assert(err, qt.IsNil)
	c.Assert(camp.Status, qt.Equals, CampPending)
	c.Assert(camp.Team, qt.Equals, NoTeam)
	c.Assert(camp.Organization, qt.Equals, testCampOrg)
	// a camp without organizer email or date is invalid
	_, err = testDB.CreateCamp(&Camp{Organization: testCampOrg})
	c.Assert(err, qt.Equals, ErrInvalidData)
}

func TestCampsListing(t *testing.T) {
	defer func() {
		if err := testDB.Reset(); err != nil {
			t.Error(err)
		}
	}()
	c := qt.New(t)
	id1, err := testDB.CreateCamp(testCamp(5))
	c.Assert(err, qt.IsNil)
	_, err = testDB.CreateCamp(testCamp(6))
	c.Assert(err, qt.IsNil)
	c.Assert(testDB.SetCampStatus(id1, CampPending, CampApproved), qt.IsNil)
	// all camps
	camps, err := testDB.Camps("")
	c.Assert(err, qt.IsNil)
	c.Assert(camps, qt.HasLen, 2)
	// only pending ones
	camps, err = testDB.Camps(CampPending)
	c.Assert(err, qt.IsNil)
	c.Assert(camps, qt.HasLen, 1)
	// approved camps of a given day
	camps, err = testDB.CampsByDate(testDate(5))
	c.Assert(err, qt.IsNil)
	c.Assert(camps, qt.HasLen, 1)
	c.Assert(camps[0].ID, qt.Equals, id1)
}

func TestSetCampStatus(t *testing.T) {
	defer func() {
		if err := testDB.Reset(); err != nil {
			t.Error(err)
		}
	}()
	c := qt.New(t)
	id, err := testDB.CreateCamp(testCamp(4))
	c.Assert(err, qt.IsNil)
	// missing camp
	err = testDB.SetCampStatus(primitive.NewObjectID(), CampPending, CampApproved)
	c.Assert(err, qt.Equals, ErrNotFound)
	// valid transition
	c.Assert(testDB.SetCampStatus(id, CampPending, CampApproved), qt.IsNil)
	// stale compare-and-set, the camp is no longer pending
	err = testDB.SetCampStatus(id, CampPending, CampRejected)
	c.Assert(err, qt.Equals, ErrBadTransition)
}

func TestSetCampTeam(t *testing.T) {
	defer func() {
		if err := testDB.Reset(); err != nil {
			t.Error(err)
		}
	}()
	c := qt.New(t)
	id, err := testDB.CreateCamp(testCamp(4))
	c.Assert(err, qt.IsNil)
	// an empty team is invalid
	c.Assert(testDB.SetCampTeam(id, ""), qt.Equals, ErrInvalidData)
	// a pending camp cannot hold a team
	c.Assert(testDB.SetCampTeam(id, testCampTeam), qt.Equals, ErrBadTransition)
	// approve and allocate
	c.Assert(testDB.SetCampStatus(id, CampPending, CampApproved), qt.IsNil)
	c.Assert(testDB.SetCampTeam(id, testCampTeam), qt.IsNil)
	camp, err := testDB.Camp(id)
	c.Assert(err, qt.IsNil)
	c.Assert(camp.Team, qt.Equals, testCampTeam)
	// missing camp
	c.Assert(testDB.SetCampTeam(primitive.NewObjectID(), testCampTeam), qt.Equals, ErrNotFound)
}
