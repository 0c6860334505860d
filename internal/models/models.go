package models

import "time"

// Canonical event types
const (
	EventTypeProductCreate = "product_create"
	EventTypeProductUpdate = "product_update"
	EventTypeProductDelete = "product_delete"
	EventTypeStoreCreate   = "store_create"
	EventTypeStoreUpdate   = "store_update"
	EventTypeStoreDelete   = "store_delete"
	EventTypeUnknown       = "unknown"
)

// Processing result statuses
const (
	StatusSuccess   = "success"
	StatusDuplicate = "duplicate"
	StatusError     = "error"
)

// RecordStatusProcessed is the terminal status of a registered event record
const RecordStatusProcessed = "processed"

// EventRecord is the audit/ledger entry created once per unique payload digest
type EventRecord struct {
	PayloadHash   string    `json:"payload_hash"`
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	StoreID       string    `json:"store_id,omitempty"`
	RawLocation   string    `json:"raw_location"`
	Status        string    `json:"status"`
	RoutingTarget string    `json:"routing_target"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Result is returned to the invoking transport after processing one event
type Result struct {
	Status                      string `json:"status"`
	Message                     string `json:"message,omitempty"`
	EventID                     string `json:"event_id,omitempty"`
	EventType                   string `json:"event_type,omitempty"`
	RoutingTarget               string `json:"routing_target,omitempty"`
	RawLocation                 string `json:"raw_location,omitempty"`
	PayloadHash                 string `json:"payload_hash,omitempty"`
	StoreID                     string `json:"store_id,omitempty"`
	ProductID                   string `json:"product_id,omitempty"`
	MetadataLocation            string `json:"metadata_location,omitempty"`
	MasterCatalogLocation       string `json:"master_catalog_location,omitempty"`
	StoreCatalogLocation        string `json:"store_catalog_location,omitempty"`
	OriginalProcessingTimestamp string `json:"original_processing_timestamp,omitempty"`
}
