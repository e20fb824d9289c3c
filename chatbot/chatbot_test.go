package chatbot

import (
	"context"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/bloodline/backend/db"
	"github.com/bloodline/backend/test"
)

func TestReplyStaticIntents(t *testing.T) {
	c := qt.New(t)
	bot := New(nil)

	cases := []struct {
		message string
		intent  string
	}{
		{"am I eligible to donate?", "eligibility"},
		{"How do I donate blood?", "how-to-donate"},
		{"what happens after donating?", "next-steps"},
		{"we want to organize a camp at our school", "camp-organization"},
	}
	for _, tc := range cases {
		session, intent, answer, err := bot.Reply("", tc.message)
		c.Assert(err, qt.IsNil, qt.Commentf("message: %s", tc.message))
		c.Assert(intent, qt.Equals, tc.intent)
		c.Assert(answer, qt.Not(qt.Equals), "")
		c.Assert(session, qt.Not(qt.Equals), "")
	}
}

func TestReplyFallback(t *testing.T) {
	c := qt.New(t)
	bot := New(nil)

	_, intent, answer, err := bot.Reply("", "what's the weather like today?")
	c.Assert(err, qt.IsNil)
	c.Assert(intent, qt.Equals, "")
	c.Assert(answer, qt.Equals, FallbackAnswer)
}

func TestReplyKeepsSession(t *testing.T) {
	c := qt.New(t)
	bot := New(nil)

	session, _, _, err := bot.Reply("session-123", "how can I donate?")
	c.Assert(err, qt.IsNil)
	c.Assert(session, qt.Equals, "session-123")
}

func TestReplyStockAvailability(t *testing.T) {
	c := qt.New(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	dbContainer, err := test.StartMongoContainer(ctx)
	c.Assert(err, qt.IsNil)
	defer func() { _ = dbContainer.Terminate(ctx) }()

	mongoURI, err := dbContainer.Endpoint(ctx, "mongodb")
	c.Assert(err, qt.IsNil)
	testDB, err := db.New(mongoURI+"/?directConnection=true", test.RandomDatabaseName())
	c.Assert(err, qt.IsNil)
	defer testDB.Close()

	bot := New(testDB)
	_, intent, answer, err := bot.Reply("", "is there any O+ blood in stock?")
	c.Assert(err, qt.IsNil)
	c.Assert(intent, qt.Equals, "stock-availability")
	// migrations seed every blood group, so they all appear in the answer
	for _, group := range db.BloodGroups {
		c.Assert(strings.Contains(answer, group), qt.IsTrue)
	}
}

func TestRateLimiter(t *testing.T) {
	c := qt.New(t)

	rl := NewRateLimiter(1, 2)
	c.Assert(rl.Allow("10.0.0.1:1234"), qt.IsTrue)
	c.Assert(rl.Allow("10.0.0.1:1234"), qt.IsTrue)
	// burst exhausted
	c.Assert(rl.Allow("10.0.0.1:1234"), qt.IsFalse)
	// other clients are unaffected
	c.Assert(rl.Allow("10.0.0.2:1234"), qt.IsTrue)
}

func TestRateLimiterEviction(t *testing.T) {
	c := qt.New(t)

	rl := NewRateLimiter(0.001, 1)
	c.Assert(rl.Allow("10.0.0.1:1234"), qt.IsTrue)
	c.Assert(rl.Allow("10.0.0.2:1234"), qt.IsTrue)

	// an active client keeps its exhausted bucket through a sweep
	rl.evictIdle(time.Now())
	c.Assert(rl.Allow("10.0.0.1:1234"), qt.IsFalse)

	// an idle client is dropped, an active one survives
	rl.mu.Lock()
	rl.visitors["10.0.0.2"].lastSeen = time.Now().Add(-2 * visitorIdleTTL)
	rl.mu.Unlock()
	rl.evictIdle(time.Now())
	rl.mu.Lock()
	_, activeKept := rl.visitors["10.0.0.1"]
	_, idleKept := rl.visitors["10.0.0.2"]
	rl.mu.Unlock()
	c.Assert(activeKept, qt.IsTrue)
	c.Assert(idleKept, qt.IsFalse)

	// the dropped client gets a fresh bucket on its next request
	c.Assert(rl.Allow("10.0.0.2:1234"), qt.IsTrue)
}
