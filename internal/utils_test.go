package internal

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestValidEmail(t *testing.T) {
	c := qt.New(t)
	c.Assert(ValidEmail("donor@example.com"), qt.IsTrue)
	c.Assert(ValidEmail("donor+tag@blood.bank.lk"), qt.IsTrue)
	c.Assert(ValidEmail("not-an-email"), qt.IsFalse)
	c.Assert(ValidEmail("missing@tld."), qt.IsFalse)
	c.Assert(ValidEmail(""), qt.IsFalse)
}

func TestHexHashPassword(t *testing.T) {
	c := qt.New(t)
	// same salt and password must be deterministic
	c.Assert(HexHashPassword("salt", "password"), qt.Equals, HexHashPassword("salt", "password"))
	// different salt must produce a different hash
	c.Assert(HexHashPassword("salt", "password"), qt.Not(qt.Equals), HexHashPassword("other", "password"))
}

func TestRandomHex(t *testing.T) {
	c := qt.New(t)
	a := RandomHex(16)
	b := RandomHex(16)
	c.Assert(len(a), qt.Equals, 32)
	c.Assert(a, qt.Not(qt.Equals), b)
}

func TestParseBirthDate(t *testing.T) {
	c := qt.New(t)
	// ISO-like
	parsed, normalized, err := ParseBirthDate("1990-06-15")
	c.Assert(err, qt.IsNil)
	c.Assert(normalized, qt.Equals, "1990-06-15")
	c.Assert(parsed.Year(), qt.Equals, 1990)
	// day-first
	_, normalized, err = ParseBirthDate("15/06/1990")
	c.Assert(err, qt.IsNil)
	c.Assert(normalized, qt.Equals, "1990-06-15")
	// invalid day
	_, _, err = ParseBirthDate("1990-02-31")
	c.Assert(err, qt.IsNotNil)
	// garbage
	_, _, err = ParseBirthDate("soon")
	c.Assert(err, qt.IsNotNil)
}

func TestAge(t *testing.T) {
	c := qt.New(t)
	birth := time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)
	c.Assert(Age(birth, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)), qt.Equals, 35)
	c.Assert(Age(birth, time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)), qt.Equals, 34)
	c.Assert(Age(birth, time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)), qt.Equals, 0)
}
