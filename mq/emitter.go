package mq

import (
	"context"
	"encoding/json"
	"log"

	"github.com/jillianguerra/home-depot/rdx"
)

const eventsChannel = "storefront-events"

// Index describes a domain event for downstream consumers (search indexing,
// analytics).
type Index struct {
	EntityType string `json:"entity_type"`
	Method     string `json:"method"`
	EntityId   string `json:"entity_id"`
	ItemId     string `json:"item_id"`
	ItemType   string `json:"item_type"`
}

type envelope struct {
	Event string `json:"event"`
	Data  Index  `json:"data"`
}

// Emit publishes a domain event to Redis. Events are best-effort: a missing
// broker or publish failure is logged and dropped.
func Emit(ctx context.Context, eventName string, content Index) {
	if rdx.Conn == nil {
		return
	}

	data, err := json.Marshal(envelope{Event: eventName, Data: content})
	if err != nil {
		log.Printf("[Emit] Failed to marshal event content: %v", err)
		return
	}

	if err := rdx.Conn.Publish(context.Background(), eventsChannel, data).Err(); err != nil {
		log.Printf("[Emit] Failed to publish %s: %v", eventName, err)
	}
}

// Notify logs an event without publishing it.
func Notify(eventName string, content Index) {
	log.Println(eventName, "notified", content)
}
