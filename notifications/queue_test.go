package notifications

import (
	"context"
	"fmt"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

// stubService counts deliveries and fails the first failures attempts.
type stubService struct {
	failures int
	attempts int
}

func (s *stubService) New(any) error { return nil }

func (s *stubService) SendNotification(_ context.Context, _ *Notification) error {
	s.attempts++
	if s.attempts <= s.failures {
		return fmt.Errorf("provider unavailable")
	}
	return nil
}

func TestNewRequest(t *testing.T) {
	c := qt.New(t)
	// a nil notification is invalid
	_, err := NewRequest(EmailChannel, nil)
	c.Assert(err, qt.IsNotNil)
	// an email request needs an address, an sms request a number
	_, err = NewRequest(EmailChannel, &Notification{ToNumber: "+94770000000"})
	c.Assert(err, qt.IsNotNil)
	_, err = NewRequest(SMSChannel, &Notification{ToAddress: "donor@example.com"})
	c.Assert(err, qt.IsNotNil)
	// valid requests
	request, err := NewRequest(EmailChannel, &Notification{ToAddress: "donor@example.com"})
	c.Assert(err, qt.IsNil)
	c.Assert(request.Channel, qt.Equals, EmailChannel)
	_, err = NewRequest(SMSChannel, &Notification{ToNumber: "+94770000000"})
	c.Assert(err, qt.IsNil)
	// unknown channel
	_, err = NewRequest("pigeon", &Notification{ToAddress: "donor@example.com"})
	c.Assert(err, qt.IsNotNil)
}

func TestQueueDelivers(t *testing.T) {
	c := qt.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mail := &stubService{}
	queue := NewQueue(ctx, time.Minute, time.Millisecond, mail, nil)
	go queue.Start()

	request, err := NewRequest(EmailChannel, &Notification{
		ToAddress: "donor@example.com",
		Subject:   "hello",
	})
	c.Assert(err, qt.IsNil)
	c.Assert(queue.Push(request), qt.IsNil)

	select {
	case sent := <-queue.Sent:
		c.Assert(sent.Success, qt.IsTrue)
		c.Assert(mail.attempts, qt.Equals, 1)
	case <-time.After(5 * time.Second):
		c.Fatal("timed out waiting for delivery")
	}
}

func TestQueueRetries(t *testing.T) {
	c := qt.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// fail twice, succeed on the third attempt
	sms := &stubService{failures: 2}
	queue := NewQueue(ctx, time.Minute, time.Millisecond, nil, sms)
	go queue.Start()

	request, err := NewRequest(SMSChannel, &Notification{
		ToNumber: "+94770000000",
		Body:     "your appointment is approved",
	})
	c.Assert(err, qt.IsNil)
	c.Assert(queue.Push(request), qt.IsNil)

	select {
	case sent := <-queue.Sent:
		c.Assert(sent.Success, qt.IsTrue)
		c.Assert(sent.Retries, qt.Equals, 2)
		c.Assert(sms.attempts, qt.Equals, 3)
	case <-time.After(5 * time.Second):
		c.Fatal("timed out waiting for delivery")
	}
}

func TestQueueGivesUp(t *testing.T) {
	c := qt.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// always failing provider
	mail := &stubService{failures: DefaultQueueMaxRetries + 10}
	queue := NewQueue(ctx, time.Minute, time.Millisecond, mail, nil)
	go queue.Start()

	request, err := NewRequest(EmailChannel, &Notification{ToAddress: "donor@example.com"})
	c.Assert(err, qt.IsNil)
	c.Assert(queue.Push(request), qt.IsNil)

	select {
	case sent := <-queue.Sent:
		c.Assert(sent.Success, qt.IsFalse)
		c.Assert(sent.Retries, qt.Equals, DefaultQueueMaxRetries)
	case <-time.After(10 * time.Second):
		c.Fatal("timed out waiting for the queue to give up")
	}
}
