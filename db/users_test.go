package db

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestUser(t *testing.T) {
	defer func() {
		if err := testDB.Reset(); err != nil {
			t.Error(err)
		}
	}()
	c := qt.New(t)
	// test not found user
	user, err := testDB.User(100)
	c.Assert(user, qt.IsNil)
	c.Assert(err, qt.Equals, ErrNotFound)
	// create a new user
	userID, err := testDB.SetUser(&User{
		Email:     testUserEmail,
		Password:  testUserPass,
		FirstName: testUserFirst,
		LastName:  testUserLast,
		Role:      OfficerRole,
	})
	c.Assert(err, qt.IsNil)
	c.Assert(userID, qt.Equals, uint64(1))
	// test found user by id and by email
	user, err = testDB.User(userID)
	c.Assert(err, qt.IsNil)
	c.Assert(user.Email, qt.Equals, testUserEmail)
	user, err = testDB.UserByEmail(testUserEmail)
	c.Assert(err, qt.IsNil)
	c.Assert(user.ID, qt.Equals, userID)
	c.Assert(user.Role, qt.Equals, OfficerRole)
}

func TestSetUser(t *testing.T) {
	defer func() {
		if err := testDB.Reset(); err != nil {
			t.Error(err)
		}
	}()
	c := qt.New(t)
	// invalid role is rejected
	_, err := testDB.SetUser(&User{
		Email:    testUserEmail,
		Password: testUserPass,
		Role:     "janitor",
	})
	c.Assert(err, qt.Equals, ErrInvalidData)
	// create a user and then a duplicate
	_, err = testDB.SetUser(&User{
		Email:    testUserEmail,
		Password: testUserPass,
		Role:     AdminRole,
	})
	c.Assert(err, qt.IsNil)
	_, err = testDB.SetUser(&User{
		Email:    testUserEmail,
		Password: testUserPass,
		Role:     AdminRole,
	})
	c.Assert(err, qt.Equals, ErrAlreadyExists)
	// update an existing user
	user, err := testDB.UserByEmail(testUserEmail)
	c.Assert(err, qt.IsNil)
	user.LastName = "Renamed"
	_, err = testDB.SetUser(user)
	c.Assert(err, qt.IsNil)
	user, err = testDB.UserByEmail(testUserEmail)
	c.Assert(err, qt.IsNil)
	c.Assert(user.LastName, qt.Equals, "Renamed")
	// updating a user with an id that was never assigned fails
	_, err = testDB.SetUser(&User{ID: 100, Email: "other@bloodline.lk", Password: testUserPass, Role: AdminRole})
	c.Assert(err, qt.Equals, ErrInvalidData)
}

func TestVerifyUserAccount(t *testing.T) {
	defer func() {
		if err := testDB.Reset(); err != nil {
			t.Error(err)
		}
	}()
	c := qt.New(t)
	userID, err := testDB.SetUser(&User{
		Email:    testUserEmail,
		Password: testUserPass,
		Role:     OfficerRole,
	})
	c.Assert(err, qt.IsNil)
	c.Assert(testDB.VerifyUserAccount(&User{ID: userID}), qt.IsNil)
	user, err := testDB.User(userID)
	c.Assert(err, qt.IsNil)
	c.Assert(user.Verified, qt.IsTrue)
	// verifying a missing user fails
	c.Assert(testDB.VerifyUserAccount(&User{ID: 100}), qt.Equals, ErrNotFound)
}

func TestDelUser(t *testing.T) {
	defer func() {
		if err := testDB.Reset(); err != nil {
			t.Error(err)
		}
	}()
	c := qt.New(t)
	// a user with no id nor email is invalid
	c.Assert(testDB.DelUser(&User{}), qt.Equals, ErrInvalidData)
	userID, err := testDB.SetUser(&User{
		Email:    testUserEmail,
		Password: testUserPass,
		Role:     OfficerRole,
	})
	c.Assert(err, qt.IsNil)
	c.Assert(testDB.DelUser(&User{ID: userID}), qt.IsNil)
	_, err = testDB.User(userID)
	c.Assert(err, qt.Equals, ErrNotFound)
}
