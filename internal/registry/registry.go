package registry

import (
	"context"
	"fmt"
	"time"

	"webhook-ingestion/internal/models"
)

// DefaultTarget handles anything without a dedicated downstream service
const DefaultTarget = "default-handler"

var routingTable = map[string]string{
	models.EventTypeProductCreate: "product-service",
	models.EventTypeProductUpdate: "product-service",
	models.EventTypeProductDelete: "product-service",
	models.EventTypeStoreCreate:   "store-service",
	models.EventTypeStoreUpdate:   "store-service",
	models.EventTypeStoreDelete:   "store-service",
	models.EventTypeUnknown:       DefaultTarget,
}

// Route resolves the downstream target for an event type. Total: anything
// unrecognized maps to the default handler.
func Route(eventType string) string {
	if target, ok := routingTable[eventType]; ok {
		return target
	}
	return DefaultTarget
}

// RecordWriter persists event records; satisfied by the idempotency ledger
type RecordWriter interface {
	Register(ctx context.Context, record *models.EventRecord) error
}

// Registrar builds and persists the audit record for a processed event
type Registrar struct {
	writer    RecordWriter
	retention time.Duration
}

// NewRegistrar creates a registrar with the given retention horizon
func NewRegistrar(writer RecordWriter, retention time.Duration) *Registrar {
	return &Registrar{writer: writer, retention: retention}
}

// Register writes the event record. An event must never be reported as
// processed without its audit record, so failure here is fatal to the
// event.
func (r *Registrar) Register(ctx context.Context, digest, eventID, eventType, storeID, rawLocation, routingTarget string) (*models.EventRecord, error) {
	now := time.Now().UTC()
	record := &models.EventRecord{
		PayloadHash:   digest,
		EventID:       eventID,
		EventType:     eventType,
		StoreID:       storeID,
		RawLocation:   rawLocation,
		Status:        models.RecordStatusProcessed,
		RoutingTarget: routingTarget,
		CreatedAt:     now,
		ExpiresAt:     now.Add(r.retention),
	}

	if err := r.writer.Register(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to register event %s: %w", eventID, err)
	}
	return record, nil
}
