package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"webhook-ingestion/internal/models"
	"webhook-ingestion/internal/objectstore"
	"webhook-ingestion/internal/util"

	"go.uber.org/zap"
)

// RefreshNotifier signals downstream search/index consumers to re-sync a
// store
type RefreshNotifier interface {
	PublishStoreRefresh(ctx context.Context, storeID string) error
}

// Reconciler keeps the master catalog and the per-store catalog copies in
// sync with incoming events. Its operations are best-effort: a failure is
// logged and the rest of the event continues, except that a failed master
// upsert short-circuits store propagation for that product.
type Reconciler struct {
	store     objectstore.Store
	notifier  RefreshNotifier
	bucket    string
	rawBucket string
	logger    *zap.Logger
}

// NewReconciler creates a catalog reconciler
func NewReconciler(store objectstore.Store, notifier RefreshNotifier, catalogBucket, rawBucket string) *Reconciler {
	return &Reconciler{
		store:     store,
		notifier:  notifier,
		bucket:    catalogBucket,
		rawBucket: rawBucket,
		logger:    util.GetLogger(),
	}
}

// Input is the already-classified event the reconciler acts on
type Input struct {
	Payload   map[string]any
	EventID   string
	EventType string
	StoreID   string
	ProductID string
	Domain    string
	RawKey    string
}

// Outcome reports the catalog locations an event actually touched
type Outcome struct {
	MetadataLocation      string
	MasterCatalogLocation string
	StoreCatalogLocation  string
}

func masterStoreKey(storeID string) string {
	return fmt.Sprintf("master/stores/%s.json", storeID)
}

func masterProductKey(productID string) string {
	return fmt.Sprintf("master/products/%s.json", productID)
}

func storeProductKey(storeID, productID string) string {
	return fmt.Sprintf("stores/%s/products/%s.json", storeID, productID)
}

// Reconcile runs the catalog state machine for one event
func (r *Reconciler) Reconcile(ctx context.Context, in Input) Outcome {
	ctx, span := util.StartSpan(ctx, "Reconciler.Reconcile")
	defer span.End()

	var out Outcome

	if in.StoreID != "" {
		r.bootstrapStore(ctx, in)
	}

	switch in.EventType {
	case models.EventTypeProductCreate, models.EventTypeProductUpdate:
		if in.ProductID == "" {
			break
		}
		r.bootstrapProduct(ctx, in)
		if !r.upsertMaster(ctx, in, &out) {
			// Propagating from a missing or stale master is meaningless
			break
		}
		if in.StoreID != "" {
			r.propagateToStore(ctx, in, &out)
		}

	case models.EventTypeProductDelete:
		if in.ProductID == "" {
			break
		}
		r.bootstrapProduct(ctx, in)
		if in.StoreID != "" {
			r.deleteFromStore(ctx, in)
		}

	case models.EventTypeStoreCreate:
		r.writeStoreMetadata(ctx, in, &out)
	}

	return out
}

// bootstrapStore creates the master store record the first time a store is
// referenced. Check-then-act: concurrent first-events for a brand-new
// store can race, and the catalog content converges either way.
func (r *Reconciler) bootstrapStore(ctx context.Context, in Input) {
	key := masterStoreKey(in.StoreID)

	exists, err := r.store.Head(ctx, r.bucket, key)
	if err != nil {
		r.logger.Warn("Store bootstrap existence check failed",
			zap.String("store_id", in.StoreID), zap.Error(err))
		return
	}
	if exists {
		return
	}

	record := map[string]any{
		"store_id":         in.StoreID,
		"store_domain":     in.Domain,
		"created_by_event": in.EventID,
		"created_at":       time.Now().UTC().Format(time.RFC3339),
	}
	body, _ := json.Marshal(record)

	if err := r.store.Put(ctx, r.bucket, key, body, jsonPut()); err != nil {
		r.logger.Warn("Store bootstrap failed",
			zap.String("store_id", in.StoreID), zap.Error(err))
		return
	}

	util.CatalogBootstrapsTotal.WithLabelValues("store").Inc()
	r.logger.Info("Bootstrapped store record",
		zap.String("store_id", in.StoreID), zap.String("event_id", in.EventID))
}

// bootstrapProduct creates the master product record if absent, from the
// raw products sub-object or a minimal stub. A master record is never
// recreated by a later create-style event.
func (r *Reconciler) bootstrapProduct(ctx context.Context, in Input) {
	key := masterProductKey(in.ProductID)

	exists, err := r.store.Head(ctx, r.bucket, key)
	if err != nil {
		r.logger.Warn("Product bootstrap existence check failed",
			zap.String("product_id", in.ProductID), zap.Error(err))
		return
	}
	if exists {
		return
	}

	product, _ := in.Payload["products"].(map[string]any)
	if product == nil {
		product = map[string]any{
			"product_id": in.ProductID,
			"created_at": time.Now().UTC().Format(time.RFC3339),
		}
	}
	body, _ := json.Marshal(map[string]any{"products": product})

	if err := r.store.Put(ctx, r.bucket, key, body, jsonPut()); err != nil {
		r.logger.Warn("Product bootstrap failed",
			zap.String("product_id", in.ProductID), zap.Error(err))
		return
	}

	util.CatalogBootstrapsTotal.WithLabelValues("product").Inc()
	r.logger.Info("Bootstrapped master product record",
		zap.String("product_id", in.ProductID), zap.String("event_id", in.EventID))
}

// upsertMaster overwrites the master catalog entry, last-write-wins.
// Returns false when the write failed, which gates propagation.
func (r *Reconciler) upsertMaster(ctx context.Context, in Input, out *Outcome) bool {
	product, _ := in.Payload["products"].(map[string]any)
	if product == nil {
		product = map[string]any{"product_id": in.ProductID}
	}

	key := masterProductKey(in.ProductID)
	body, _ := json.Marshal(map[string]any{"products": product})

	if err := r.store.Put(ctx, r.bucket, key, body, jsonPut()); err != nil {
		r.logger.Error("Master catalog upsert failed",
			zap.String("product_id", in.ProductID), zap.Error(err))
		return false
	}

	util.CatalogUpsertsTotal.Inc()
	out.MasterCatalogLocation = key
	return true
}

// propagateToStore copies the master record into the store-scoped catalog,
// applying store-level overrides, then signals a refresh
func (r *Reconciler) propagateToStore(ctx context.Context, in Input, out *Outcome) {
	masterKey := masterProductKey(in.ProductID)

	body, err := r.store.Get(ctx, r.bucket, masterKey)
	if errors.Is(err, objectstore.ErrNotFound) {
		r.logger.Warn("Master record not found, skipping store propagation",
			zap.String("product_id", in.ProductID), zap.String("store_id", in.StoreID))
		return
	}
	if err != nil {
		r.logger.Warn("Failed to read master record for propagation",
			zap.String("product_id", in.ProductID), zap.Error(err))
		return
	}

	var entry map[string]any
	if err := json.Unmarshal(body, &entry); err != nil {
		r.logger.Warn("Malformed master record, skipping store propagation",
			zap.String("product_id", in.ProductID), zap.Error(err))
		return
	}
	product, _ := entry["products"].(map[string]any)
	if product == nil {
		r.logger.Warn("Master record has no products object, skipping store propagation",
			zap.String("product_id", in.ProductID))
		return
	}

	if price, ok := firstVariantPrice(in.Payload); ok {
		overrideVariantPrices(product, price)
	}
	product["store_id"] = in.StoreID

	storeKey := storeProductKey(in.StoreID, in.ProductID)
	copyBody, _ := json.Marshal(map[string]any{"products": product})
	if err := r.store.Put(ctx, r.bucket, storeKey, copyBody, jsonPut()); err != nil {
		r.logger.Warn("Store catalog propagation failed",
			zap.String("store_id", in.StoreID), zap.String("product_id", in.ProductID), zap.Error(err))
		return
	}

	util.CatalogPropagationsTotal.Inc()
	out.StoreCatalogLocation = storeKey
	r.signalRefresh(ctx, in.StoreID)
}

// deleteFromStore removes the store-scoped catalog entry; the master entry
// is untouched. Absence of the entry is not an error.
func (r *Reconciler) deleteFromStore(ctx context.Context, in Input) {
	key := storeProductKey(in.StoreID, in.ProductID)

	if err := r.store.Delete(ctx, r.bucket, key); err != nil {
		r.logger.Warn("Store catalog delete failed",
			zap.String("store_id", in.StoreID), zap.String("product_id", in.ProductID), zap.Error(err))
		return
	}

	util.CatalogDeletesTotal.Inc()
	r.signalRefresh(ctx, in.StoreID)
}

// writeStoreMetadata writes the side metadata artifact consumed by
// downstream search/knowledge-base ingestion, next to the raw artifact
func (r *Reconciler) writeStoreMetadata(ctx context.Context, in Input, out *Outcome) {
	store := in.Domain
	if store == "" {
		store = in.StoreID
	}

	attrs := map[string]any{
		"store":    store,
		"store_id": in.StoreID,
	}
	if in.ProductID != "" {
		attrs["product_id"] = in.ProductID
	}

	key := strings.TrimSuffix(in.RawKey, ".json") + ".metadata.json"
	body, _ := json.MarshalIndent(map[string]any{"metadataAttributes": attrs}, "", "  ")

	if err := r.store.Put(ctx, r.rawBucket, key, body, jsonPut()); err != nil {
		r.logger.Warn("Store metadata write failed",
			zap.String("store_id", in.StoreID), zap.Error(err))
		return
	}

	out.MetadataLocation = key
}

func (r *Reconciler) signalRefresh(ctx context.Context, storeID string) {
	if err := r.notifier.PublishStoreRefresh(ctx, storeID); err != nil {
		util.RefreshSignalsFailed.Inc()
		r.logger.Error("Failed to publish store refresh signal",
			zap.String("store_id", storeID), zap.Error(err))
	}
}

// firstVariantPrice pulls the first variant's price from the triggering
// payload, the only store-level override currently applied
func firstVariantPrice(payload map[string]any) (any, bool) {
	products, ok := payload["products"].(map[string]any)
	if !ok {
		return nil, false
	}
	variants, ok := products["product_variants"].([]any)
	if !ok || len(variants) == 0 {
		return nil, false
	}
	first, ok := variants[0].(map[string]any)
	if !ok {
		return nil, false
	}
	price, ok := first["price"]
	if !ok || price == nil {
		return nil, false
	}
	return price, true
}

func overrideVariantPrices(product map[string]any, price any) {
	variants, ok := product["product_variants"].([]any)
	if !ok {
		return
	}
	for _, v := range variants {
		if variant, ok := v.(map[string]any); ok {
			variant["price"] = price
		}
	}
}

func jsonPut() objectstore.PutOptions {
	return objectstore.PutOptions{ContentType: "application/json", Encrypted: true}
}
