package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"homeward/internal/logger"
	"homeward/internal/models"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

type EventType string

func (t EventType) String() string {
	return string(t)
}

const (
	EventPropertyCreated    EventType = "property.created"
	EventStageChanged       EventType = "housing_search.stage_changed"
	EventPreferencesUpdated EventType = "housing_search.preferences_updated"
	EventMatchCreated       EventType = "property_match.created"
)

// PropertyCreatedPayload announces a new active listing
type PropertyCreatedPayload struct {
	PropertyID uuid.UUID `json:"propertyId"`
}

// StageChangedPayload announces a housing search stage transition
type StageChangedPayload struct {
	SearchID uuid.UUID    `json:"searchId"`
	OldStage models.Stage `json:"oldStage"`
	NewStage models.Stage `json:"newStage"`
}

// PreferencesUpdatedPayload announces edited match criteria on a search
type PreferencesUpdatedPayload struct {
	SearchID uuid.UUID `json:"searchId"`
}

// MatchCreatedPayload announces a newly persisted property match
type MatchCreatedPayload struct {
	SearchID   uuid.UUID `json:"searchId"`
	PropertyID uuid.UUID `json:"propertyId"`
	Score      int       `json:"score"`
	AutoMatch  bool      `json:"autoMatch"`
}

type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// Decode unmarshals the event payload into the given payload struct
func (e Event) Decode(v any) error {
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Type, err)
	}
	return nil
}

type Handler func(ctx context.Context, event Event) error

// EventBus dispatches domain events to in-process subscribers and mirrors
// them onto valkey pub/sub for external consumers. Local dispatch is
// synchronous so callers observe handler failures; the valkey publish is
// best effort and never fails the caller.
type EventBus struct {
	client   valkey.Client
	logger   logger.Logger
	handlers map[EventType][]Handler
	mutex    sync.RWMutex
}

// New creates an event bus. A nil client disables the valkey mirror, which
// is how tests and cache-less deployments run.
func New(client valkey.Client) *EventBus {
	return &EventBus{
		client:   client,
		logger:   logger.New("EventBus"),
		handlers: make(map[EventType][]Handler),
	}
}

func (eb *EventBus) Subscribe(eventType EventType, handler Handler) {
	log := eb.logger.Function("Subscribe")

	eb.mutex.Lock()
	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	eb.mutex.Unlock()

	log.Info("Handler subscribed", "eventType", eventType)
}

// Publish builds an event from the payload and runs every local handler in
// order. Handler errors are joined and returned after all handlers have run.
func (eb *EventBus) Publish(ctx context.Context, eventType EventType, payload any) error {
	log := eb.logger.Function("Publish")

	data, err := json.Marshal(payload)
	if err != nil {
		return log.Err("failed to marshal event payload", err, "eventType", eventType)
	}

	event := Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().UTC(),
	}

	eb.mutex.RLock()
	handlers := append([]Handler(nil), eb.handlers[eventType]...)
	eb.mutex.RUnlock()

	var handlerErrs []error
	for i, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			log.Er("handler failed", err, "eventType", eventType, "eventID", event.ID, "handlerIndex", i)
			handlerErrs = append(handlerErrs, err)
		}
	}

	eb.mirrorToValkey(ctx, event)

	log.Debug("Event published", "eventType", eventType, "eventID", event.ID, "handlers", len(handlers))
	return errors.Join(handlerErrs...)
}

func (eb *EventBus) mirrorToValkey(ctx context.Context, event Event) {
	if eb.client == nil {
		return
	}
	log := eb.logger.Function("mirrorToValkey")

	data, err := json.Marshal(event)
	if err != nil {
		log.Er("failed to marshal event", err, "eventID", event.ID)
		return
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	err = eb.client.Do(
		publishCtx,
		eb.client.B().Publish().Channel(event.Type.String()).Message(string(data)).Build(),
	).Error()
	if err != nil {
		log.Er("failed to publish event to valkey", err, "eventType", event.Type, "eventID", event.ID)
	}
}

func (eb *EventBus) Close() error {
	eb.logger.Info("EventBus closed")
	return nil
}
