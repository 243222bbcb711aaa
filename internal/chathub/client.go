package chathub

import "marketzone/backend/internal/models"

// Client is one live connection of a user. It abstracts the transport so
// the registry and the gateway can be tested without sockets.
type Client interface {
	// GetUserID returns the authenticated id of the connection owner.
	GetUserID() string

	// Deliver queues an event for the client without blocking. It reports
	// false when the event was dropped (buffer full or connection closed).
	Deliver(evt models.LiveEvent) bool

	// Run starts the read and write pumps.
	Run()
	// Close stops the client. Safe to call more than once.
	Close()
}
