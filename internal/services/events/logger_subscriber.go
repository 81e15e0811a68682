package events

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/folio/internal/interfaces"
)

// NewLoggerSubscriber creates an event handler that logs all events
func NewLoggerSubscriber(logger arbor.ILogger) interfaces.EventHandler {
	return func(ctx context.Context, event interfaces.Event) error {
		// Extract common fields from payload if available
		var slug, kind, path string
		if payload, ok := event.Payload.(map[string]interface{}); ok {
			if s, ok := payload["slug"].(string); ok {
				slug = s
			}
			if k, ok := payload["kind"].(string); ok {
				kind = k
			}
			if p, ok := payload["path"].(string); ok {
				path = p
			}
		}

		// Log event with structured fields
		logEvent := logger.Debug().
			Str("event_type", string(event.Type))

		if slug != "" {
			logEvent = logEvent.Str("slug", slug)
		}
		if kind != "" {
			logEvent = logEvent.Str("kind", kind)
		}
		if path != "" {
			logEvent = logEvent.Str("path", path)
		}

		logEvent.Msg("Event published")

		return nil
	}
}

// SubscribeLoggerToAllEvents subscribes the logger to all known event types
func SubscribeLoggerToAllEvents(eventService interfaces.EventService, logger arbor.ILogger) error {
	subscriber := NewLoggerSubscriber(logger)

	// Subscribe to all event types
	eventTypes := []interfaces.EventType{
		interfaces.EventScanStarted,
		interfaces.EventScanCompleted,
		interfaces.EventContentAdded,
		interfaces.EventContentUpdated,
		interfaces.EventContentRemoved,
	}

	for _, eventType := range eventTypes {
		if err := eventService.Subscribe(eventType, subscriber); err != nil {
			return fmt.Errorf("failed to subscribe logger to event type %s: %w", eventType, err)
		}
	}

	logger.Debug().
		Int("event_type_count", len(eventTypes)).
		Msg("Logger subscribed to all event types")

	return nil
}
