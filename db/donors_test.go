package db

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestDonor(t *testing.T) {
	defer func() {
		if err := testDB.Reset(); err != nil {
			t.Error(err)
		}
	}()
	c := qt.New(t)
	// test not found donor
	donor, err := testDB.Donor(testDonorEmail)
	c.Assert(donor, qt.IsNil)
	c.Assert(err, qt.Equals, ErrNotFound)
	// create the donor profile
	c.Assert(testDB.SetDonor(&Donor{
		Email:      testDonorEmail,
		Name:       testDonorName,
		NIC:        testDonorNIC,
		Contact:    testDonorPhone,
		BloodGroup: testBloodGroup,
		BirthDate:  time.Date(1999, 5, 20, 0, 0, 0, 0, time.UTC),
		Age:        27,
	}), qt.IsNil)
	// fetch it back
	donor, err = testDB.Donor(testDonorEmail)
	c.Assert(err, qt.IsNil)
	c.Assert(donor.Name, qt.Equals, testDonorName)
	c.Assert(donor.BloodGroup, qt.Equals, testBloodGroup)
	c.Assert(donor.CreatedAt.IsZero(), qt.IsFalse)
	// update only one field and check the rest is preserved
	c.Assert(testDB.SetDonor(&Donor{
		Email:   testDonorEmail,
		Address: "12 Galle Road, Colombo",
	}), qt.IsNil)
	donor, err = testDB.Donor(testDonorEmail)
	c.Assert(err, qt.IsNil)
	c.Assert(donor.Address, qt.Equals, "12 Galle Road, Colombo")
	c.Assert(donor.Name, qt.Equals, testDonorName)
	c.Assert(donor.BloodGroup, qt.Equals, testBloodGroup)
}

func TestSetDonorInvalid(t *testing.T) {
	defer func() {
		if err := testDB.Reset(); err != nil {
			t.Error(err)
		}
	}()
	c := qt.New(t)
	// missing email
	c.Assert(testDB.SetDonor(&Donor{Name: testDonorName}), qt.Equals, ErrInvalidData)
	// unknown blood group
	c.Assert(testDB.SetDonor(&Donor{
		Email:      testDonorEmail,
		BloodGroup: "Z+",
	}), qt.Equals, ErrInvalidData)
}

func TestSetDonorAvatar(t *testing.T) {
	defer func() {
		if err := testDB.Reset(); err != nil {
			t.Error(err)
		}
	}()
	c := qt.New(t)
	// avatar on a missing donor
	c.Assert(testDB.SetDonorAvatar(testDonorEmail, "http://x/avatar.png"), qt.Equals, ErrNotFound)
	// create the donor and set the avatar
	c.Assert(testDB.SetDonor(&Donor{Email: testDonorEmail, Name: testDonorName}), qt.IsNil)
	c.Assert(testDB.SetDonorAvatar(testDonorEmail, "http://x/avatar.png"), qt.IsNil)
	donor, err := testDB.Donor(testDonorEmail)
	c.Assert(err, qt.IsNil)
	c.Assert(donor.AvatarURL, qt.Equals, "http://x/avatar.png")
}

func TestDonorsByDistrict(t *testing.T) {
	defer func() {
		if err := testDB.Reset(); err != nil {
			t.Error(err)
		}
	}()
	c := qt.New(t)
	c.Assert(testDB.SetDonor(&Donor{Email: "a@example.com", District: "Colombo"}), qt.IsNil)
	c.Assert(testDB.SetDonor(&Donor{Email: "b@example.com", District: "Colombo"}), qt.IsNil)
	c.Assert(testDB.SetDonor(&Donor{Email: "c@example.com", District: "Kandy"}), qt.IsNil)

	donors, err := testDB.DonorsByDistrict("Colombo")
	c.Assert(err, qt.IsNil)
	c.Assert(donors, qt.HasLen, 2)

	donors, err = testDB.DonorsByDistrict("Galle")
	c.Assert(err, qt.IsNil)
	c.Assert(donors, qt.HasLen, 0)

	_, err = testDB.DonorsByDistrict("")
	c.Assert(err, qt.Equals, ErrInvalidData)
}

func TestDelDonor(t *testing.T) {
	defer func() {
		if err := testDB.Reset(); err != nil {
			t.Error(err)
		}
	}()
	c := qt.New(t)
	c.Assert(testDB.SetDonor(&Donor{Email: testDonorEmail, Name: testDonorName}), qt.IsNil)
	c.Assert(testDB.DelDonor(testDonorEmail), qt.IsNil)
	_, err := testDB.Donor(testDonorEmail)
	c.Assert(err, qt.Equals, ErrNotFound)
}
