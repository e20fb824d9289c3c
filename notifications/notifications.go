// Package notifications defines the notification types and the service
// interface implemented by the email and SMS providers.
package notifications

import "context"

// Notification is a single message to be delivered to a donor, an organizer
// or a staff member, by email or SMS depending on the service used.
type Notification struct {
	ToName    string
	ToAddress string
	ToNumber  string
	Subject   string
	Body      string
	PlainBody string
	ReplyTo   string
	CCAddress string
}

// NotificationService is implemented by every delivery provider.
type NotificationService interface {
	New(conf any) error
	SendNotification(context.Context, *Notification) error
}
