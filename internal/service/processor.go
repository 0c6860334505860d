package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"webhook-ingestion/internal/catalog"
	"webhook-ingestion/internal/ledger"
	"webhook-ingestion/internal/models"
	"webhook-ingestion/internal/objectstore"
	"webhook-ingestion/internal/payload"
	"webhook-ingestion/internal/registry"
	"webhook-ingestion/internal/util"

	"go.uber.org/zap"
)

// Processor runs the ingestion pipeline for one event end-to-end. It is
// safe to re-invoke for the same payload: the digest-keyed idempotency
// check short-circuits redelivery before any side effect repeats.
type Processor struct {
	store           objectstore.Store
	ledger          *ledger.Ledger
	reconciler      *catalog.Reconciler
	registrar       *registry.Registrar
	rawBucket       string
	processedBucket string
	eventVersion    string
	logger          *zap.Logger
}

// NewProcessor creates the pipeline orchestrator
func NewProcessor(
	store objectstore.Store,
	ledger *ledger.Ledger,
	reconciler *catalog.Reconciler,
	registrar *registry.Registrar,
	rawBucket, processedBucket, eventVersion string,
) *Processor {
	return &Processor{
		store:           store,
		ledger:          ledger,
		reconciler:      reconciler,
		registrar:       registrar,
		rawBucket:       rawBucket,
		processedBucket: processedBucket,
		eventVersion:    eventVersion,
		logger:          util.GetLogger(),
	}
}

// Process ingests one raw webhook payload and returns the processing
// result for the invoking transport
func (p *Processor) Process(ctx context.Context, raw map[string]any) *models.Result {
	ctx, span := util.StartSpan(ctx, "Processor.Process")
	defer span.End()

	start := time.Now()
	defer func() {
		util.ProcessingLatency.Observe(time.Since(start).Seconds())
	}()

	digest, err := payload.Hash(raw)
	if err != nil {
		return p.fail("hash", fmt.Errorf("failed to hash payload: %w", err))
	}

	existing, err := p.ledger.Lookup(ctx, digest)
	if err != nil {
		// Favor availability over strict dedup on ledger outage; redelivery
		// stays safe because registration is conditional.
		util.LedgerLookupFailures.Inc()
		p.logger.Warn("Idempotency lookup failed, continuing",
			zap.String("payload_hash", digest), zap.Error(err))
	}
	if existing != nil {
		util.EventsDuplicateTotal.Inc()
		p.logger.Info("Duplicate event detected",
			zap.String("payload_hash", digest),
			zap.String("event_id", existing.EventID),
			zap.Time("original_processing_timestamp", existing.CreatedAt))
		return &models.Result{
			Status:                      models.StatusDuplicate,
			Message:                     "Event already processed",
			EventID:                     existing.EventID,
			OriginalProcessingTimestamp: existing.CreatedAt.Format(time.RFC3339),
		}
	}

	now := time.Now().UTC()
	eventID := payload.EventID(digest, now)

	eventType := payload.Classify(raw)
	if eventType == models.EventTypeUnknown {
		util.EventsUnknownTotal.Inc()
		p.logger.Warn("Unrecognized payload shape", zap.String("event_id", eventID))
	}

	ids := payload.ExtractIdentifiers(raw)

	rawKey := artifactKey(ids.StoreID, eventType, eventID, now)
	rawBody, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return p.fail("serialize_raw", fmt.Errorf("failed to serialize raw payload: %w", err))
	}
	if err := p.store.Put(ctx, p.rawBucket, rawKey, rawBody, putJSON()); err != nil {
		return p.fail("raw_write", fmt.Errorf("failed to store raw payload: %w", err))
	}
	p.logger.Info("Stored raw payload",
		zap.String("event_id", eventID), zap.String("location", rawKey))

	outcome := p.reconciler.Reconcile(ctx, catalog.Input{
		Payload:   raw,
		EventID:   eventID,
		EventType: eventType,
		StoreID:   ids.StoreID,
		ProductID: ids.ProductID,
		Domain:    ids.StoreDomain,
		RawKey:    rawKey,
	})

	enriched := payload.Redact(raw)
	enriched["_metadata"] = map[string]any{
		"processing_timestamp": now.Format(time.RFC3339),
		"payload_hash":         digest,
		"event_version":        p.eventVersion,
		"event_type":           eventType,
	}
	processedBody, err := json.MarshalIndent(enriched, "", "  ")
	if err != nil {
		return p.fail("serialize_processed", fmt.Errorf("failed to serialize processed payload: %w", err))
	}
	if err := p.store.Put(ctx, p.processedBucket, rawKey, processedBody, putJSON()); err != nil {
		return p.fail("processed_write", fmt.Errorf("failed to store processed payload: %w", err))
	}

	routingTarget := registry.Route(eventType)

	if _, err := p.registrar.Register(ctx, digest, eventID, eventType, ids.StoreID, rawKey, routingTarget); err != nil {
		return p.fail("register", err)
	}

	util.EventsProcessedTotal.WithLabelValues(eventType).Inc()
	p.logger.Info("Event processed",
		zap.String("event_id", eventID),
		zap.String("event_type", eventType),
		zap.String("routing_target", routingTarget))

	return &models.Result{
		Status:                models.StatusSuccess,
		EventID:               eventID,
		EventType:             eventType,
		RoutingTarget:         routingTarget,
		RawLocation:           rawKey,
		PayloadHash:           digest,
		StoreID:               ids.StoreID,
		ProductID:             ids.ProductID,
		MetadataLocation:      outcome.MetadataLocation,
		MasterCatalogLocation: outcome.MasterCatalogLocation,
		StoreCatalogLocation:  outcome.StoreCatalogLocation,
	}
}

func (p *Processor) fail(reason string, err error) *models.Result {
	util.EventsFailedTotal.WithLabelValues(reason).Inc()
	p.logger.Error("Event processing failed", zap.String("reason", reason), zap.Error(err))
	return &models.Result{
		Status:  models.StatusError,
		Message: err.Error(),
	}
}

// artifactKey builds the date-partitioned artifact key shared by the raw
// and processed stores
func artifactKey(storeID, eventType, eventID string, now time.Time) string {
	if storeID == "" {
		storeID = "unknown"
	}
	return fmt.Sprintf("%s/%s/%s/%s.json",
		storeID, eventType, now.UTC().Format("2006/01/02"), eventID)
}

func putJSON() objectstore.PutOptions {
	return objectstore.PutOptions{ContentType: "application/json", Encrypted: true}
}
