package models

import "time"

// Downstream signal event types
const (
	EventTypeStoreRefresh = "store_refresh_requested"
)

// BaseEvent contains common fields for all published events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// StoreRefreshEvent asks the downstream search index to re-sync a store
type StoreRefreshEvent struct {
	BaseEvent
	StoreID string `json:"store_id"`
}
