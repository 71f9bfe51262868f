// Package events holds the domain event types (request lifecycle, review
// moderation, exports, registration) and re-exports the platform bus so
// modules subscribe and publish through one import.
package events

import (
	platformevents "github.com/vagadeeshwar/household-services-sub000/platform/events"
	"github.com/vagadeeshwar/household-services-sub000/platform/logger"
)

// InMemoryBus is a type alias to the platform InMemoryBus
type InMemoryBus = platformevents.InMemoryBus

// NewInMemoryBus creates a new in-memory event bus.
// This is a convenience re-export from platform/events.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
