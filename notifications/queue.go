package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/enriquebris/goconcurrentqueue"
	"go.vocdoni.io/dvote/log"
)

const (
	// DefaultQueueTTL is how long a queued notification stays deliverable.
	DefaultQueueTTL = 10 * time.Minute
	// DefaultQueueThrottle is the pause between deliveries, to stay under
	// provider rate limits.
	DefaultQueueThrottle = 500 * time.Millisecond
	// DefaultQueueMaxRetries is how many times to retry a delivery when the
	// upstream provider returns an error.
	DefaultQueueMaxRetries = 10
)

// Channel selects the delivery provider of a queued notification.
type Channel string

const (
	EmailChannel Channel = "email"
	SMSChannel   Channel = "sms"
)

// Request is a notification waiting in the dispatch queue. It carries the
// creation time (to expire stale items), the retry counter and the delivery
// outcome.
type Request struct {
	Channel      Channel
	Notification *Notification
	CreatedAt    time.Time
	Retries      int
	Success      bool
}

// NewRequest wraps a notification for dispatch through the given channel.
func NewRequest(channel Channel, notification *Notification) (*Request, error) {
	if notification == nil {
		return nil, fmt.Errorf("missing notification")
	}
	switch channel {
	case EmailChannel:
		if notification.ToAddress == "" {
			return nil, fmt.Errorf("missing recipient address")
		}
	case SMSChannel:
		if notification.ToNumber == "" {
			return nil, fmt.Errorf("missing recipient number")
		}
	default:
		return nil, fmt.Errorf("unknown channel %q", channel)
	}
	return &Request{
		Channel:      channel,
		Notification: notification,
		CreatedAt:    time.Now(),
	}, nil
}

// send delivers the request through the provided service, recording the
// outcome on the request.
func (r *Request) send(ctx context.Context, service NotificationService) error {
	internalCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := service.SendNotification(internalCtx, r.Notification); err != nil {
		r.Success = false
		return err
	}
	r.Success = true
	return nil
}

// Queue is a FIFO queue that handles the sending of notifications (SMS or
// email) with a TTL and throttle time, so a transient provider failure does
// not fail the API call that produced the notification.
type Queue struct {
	Sent        chan *Request
	ctx         context.Context
	items       *goconcurrentqueue.FIFO
	ttl         time.Duration
	throttle    time.Duration
	mailService NotificationService
	smsService  NotificationService
}

// NewQueue creates a new queue with the provided TTL and throttle time. A
// nil service disables its channel: requests for it fail immediately.
func NewQueue(ctx context.Context, ttl, throttle time.Duration,
	mailSrv, smsSrv NotificationService,
) *Queue {
	if ttl == 0 {
		ttl = DefaultQueueTTL
	}
	if throttle == 0 {
		throttle = DefaultQueueThrottle
	}
	return &Queue{
		Sent:        make(chan *Request, 1),
		ctx:         ctx,
		items:       goconcurrentqueue.NewFIFO(),
		ttl:         ttl,
		throttle:    throttle,
		mailService: mailSrv,
		smsService:  smsSrv,
	}
}

// Push adds a notification request to the queue for processing.
func (q *Queue) Push(request *Request) error {
	log.Debugw("notification enqueued",
		"channel", request.Channel,
		"subject", request.Notification.Subject)
	return q.items.Enqueue(request)
}

// dequeue attempts to dequeue a request from the queue. Returns nil and an
// error if dequeuing fails or the item is invalid.
func (q *Queue) dequeue() (*Request, error) {
	item, err := q.items.Dequeue()
	if err != nil {
		if err.Error() != "empty queue" {
			log.Warnw("dequeue error", "error", err)
		}
		return nil, err
	}
	request, ok := item.(*Request)
	if !ok {
		log.Warnw("invalid request type in queue")
		return nil, fmt.Errorf("invalid request type")
	}
	return request, nil
}

// service returns the provider for the request's channel.
func (q *Queue) service(request *Request) NotificationService {
	if request.Channel == SMSChannel {
		return q.smsService
	}
	return q.mailService
}

// handleFailed re-enqueues a failed request until its retries or TTL run
// out, then reports it on the Sent channel with Success false.
func (q *Queue) handleFailed(request *Request, err error) {
	log.Warnw("failed to send notification",
		"channel", request.Channel,
		"subject", request.Notification.Subject,
		"error", err)
	if err := q.reenqueue(request); err != nil {
		log.Warnw("notification dropped",
			"channel", request.Channel,
			"subject", request.Notification.Subject,
			"error", err)
		q.Sent <- request
	}
}

// processNext processes the next request in the queue.
func (q *Queue) processNext() {
	request, err := q.dequeue()
	if err != nil {
		return // nothing to process
	}
	service := q.service(request)
	if service == nil {
		log.Warnw("no service configured for channel", "channel", request.Channel)
		q.Sent <- request
		return
	}
	if err := request.send(q.ctx, service); err != nil {
		q.handleFailed(request, err)
		return
	}
	log.Debugw("notification sent",
		"channel", request.Channel,
		"subject", request.Notification.Subject)
	q.Sent <- request
}

// Start starts the queue processing loop. It will dequeue elements from the
// queue and deliver them through the channel's provider. If the delivery
// fails, it will re-enqueue the request up to DefaultQueueMaxRetries times.
// The function will return when the context is canceled. Every finished
// request is reported back through the Sent channel.
func (q *Queue) Start() {
	ticker := time.NewTicker(q.throttle)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.processNext()
		}
	}
}

// reenqueue tries to re-enqueue the notification request. It will return an
// error if the request has reached the maximum number of retries or the TTL
// has expired.
func (q *Queue) reenqueue(request *Request) error {
	if request.Retries >= DefaultQueueMaxRetries || time.Since(request.CreatedAt) > q.ttl {
		return fmt.Errorf("TTL or max retries reached")
	}
	request.Retries++
	if err := q.items.Enqueue(request); err != nil {
		return fmt.Errorf("cannot enqueue the request: %w", err)
	}
	log.Debugw("notification re-enqueued",
		"channel", request.Channel,
		"subject", request.Notification.Subject,
		"retry", request.Retries)
	return nil
}
