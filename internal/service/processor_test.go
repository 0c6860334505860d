package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"webhook-ingestion/internal/catalog"
	"webhook-ingestion/internal/ledger"
	"webhook-ingestion/internal/models"
	"webhook-ingestion/internal/objectstore"
	"webhook-ingestion/internal/registry"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingNotifier struct {
	refreshed []string
}

func (n *countingNotifier) PublishStoreRefresh(_ context.Context, storeID string) error {
	n.refreshed = append(n.refreshed, storeID)
	return nil
}

func setupProcessor(t *testing.T) (*Processor, *objectstore.Memory, *countingNotifier, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	retention := 7 * 365 * 24 * time.Hour
	led := ledger.NewWithClient(client, retention)
	store := objectstore.NewMemory()
	notifier := &countingNotifier{}
	reconciler := catalog.NewReconciler(store, notifier, "catalog", "raw")
	registrar := registry.NewRegistrar(led, retention)

	return NewProcessor(store, led, reconciler, registrar, "raw", "processed", "1.0"), store, notifier, mr
}

func createPayload() map[string]any {
	return map[string]any{
		"event_type": "new_product",
		"store_id":   "store-1",
		"products": map[string]any{
			"product_id": "prod-1",
			"name":       "Relief Balm",
			"created_at": "2024-01-01T00:00:00Z",
			"product_variants": []any{
				map[string]any{"id": "var-1", "price": 24.99, "stock_quantity": 7.0},
			},
		},
	}
}

func TestProcessSuccess(t *testing.T) {
	p, store, notifier, _ := setupProcessor(t)
	ctx := context.Background()

	result := p.Process(ctx, createPayload())

	require.Equal(t, models.StatusSuccess, result.Status)
	assert.Equal(t, models.EventTypeProductCreate, result.EventType)
	assert.Equal(t, "product-service", result.RoutingTarget)
	assert.Equal(t, "store-1", result.StoreID)
	assert.Equal(t, "prod-1", result.ProductID)
	assert.Len(t, result.PayloadHash, 64)
	assert.Contains(t, result.EventID, result.PayloadHash[:16])
	assert.Contains(t, result.RawLocation, "store-1/product_create/")
	assert.Equal(t, "master/products/prod-1.json", result.MasterCatalogLocation)
	assert.Equal(t, "stores/store-1/products/prod-1.json", result.StoreCatalogLocation)
	assert.Equal(t, []string{"store-1"}, notifier.refreshed)

	exists, err := store.Head(ctx, "raw", result.RawLocation)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestProcessedArtifactIsRedactedAndEnriched(t *testing.T) {
	p, store, _, _ := setupProcessor(t)
	ctx := context.Background()

	result := p.Process(ctx, createPayload())
	require.Equal(t, models.StatusSuccess, result.Status)

	body, err := store.Get(ctx, "processed", result.RawLocation)
	require.NoError(t, err)

	var processed map[string]any
	require.NoError(t, json.Unmarshal(body, &processed))

	products := processed["products"].(map[string]any)
	assert.NotContains(t, products, "created_at")
	variant := products["product_variants"].([]any)[0].(map[string]any)
	assert.NotContains(t, variant, "stock_quantity")

	metadata := processed["_metadata"].(map[string]any)
	assert.Equal(t, result.PayloadHash, metadata["payload_hash"])
	assert.Equal(t, "1.0", metadata["event_version"])
	assert.Equal(t, models.EventTypeProductCreate, metadata["event_type"])
	assert.NotEmpty(t, metadata["processing_timestamp"])
}

func TestProcessRawArtifactIsUntouched(t *testing.T) {
	p, store, _, _ := setupProcessor(t)
	ctx := context.Background()

	result := p.Process(ctx, createPayload())
	require.Equal(t, models.StatusSuccess, result.Status)

	body, err := store.Get(ctx, "raw", result.RawLocation)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	products := raw["products"].(map[string]any)
	assert.Contains(t, products, "created_at")
	assert.NotContains(t, raw, "_metadata")
}

func TestProcessDuplicateSuppressed(t *testing.T) {
	p, _, notifier, _ := setupProcessor(t)
	ctx := context.Background()

	first := p.Process(ctx, createPayload())
	require.Equal(t, models.StatusSuccess, first.Status)

	second := p.Process(ctx, createPayload())
	require.Equal(t, models.StatusDuplicate, second.Status)
	assert.Equal(t, first.EventID, second.EventID)
	assert.NotEmpty(t, second.OriginalProcessingTimestamp)

	// No side effect repeated
	assert.Equal(t, []string{"store-1"}, notifier.refreshed)
}

func TestProcessKeyOrderDoesNotDefeatDedup(t *testing.T) {
	p, _, _, _ := setupProcessor(t)
	ctx := context.Background()

	require.Equal(t, models.StatusSuccess, p.Process(ctx, map[string]any{
		"store_id": "store-1", "products": map[string]any{"id": "p", "name": "n"},
	}).Status)

	// Same logical payload, different key order at the top level
	result := p.Process(ctx, map[string]any{
		"products": map[string]any{"name": "n", "id": "p"}, "store_id": "store-1",
	})
	assert.Equal(t, models.StatusDuplicate, result.Status)
}

func TestProcessUnknownPayload(t *testing.T) {
	p, store, _, _ := setupProcessor(t)
	ctx := context.Background()

	result := p.Process(ctx, map[string]any{"something": "else"})

	require.Equal(t, models.StatusSuccess, result.Status)
	assert.Equal(t, models.EventTypeUnknown, result.EventType)
	assert.Equal(t, registry.DefaultTarget, result.RoutingTarget)
	assert.Contains(t, result.RawLocation, "unknown/unknown/")
	assert.Empty(t, result.MasterCatalogLocation)

	exists, err := store.Head(ctx, "raw", result.RawLocation)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestProcessStoreCreateWritesMetadata(t *testing.T) {
	p, store, _, _ := setupProcessor(t)
	ctx := context.Background()

	result := p.Process(ctx, map[string]any{
		"event_type":   "new_store",
		"store_id":     "store-5",
		"store_domain": "five.example.com",
	})

	require.Equal(t, models.StatusSuccess, result.Status)
	assert.Equal(t, models.EventTypeStoreCreate, result.EventType)
	assert.Equal(t, "store-service", result.RoutingTarget)
	require.NotEmpty(t, result.MetadataLocation)

	body, err := store.Get(ctx, "raw", result.MetadataLocation)
	require.NoError(t, err)

	var metadata map[string]any
	require.NoError(t, json.Unmarshal(body, &metadata))
	attrs := metadata["metadataAttributes"].(map[string]any)
	assert.Equal(t, "five.example.com", attrs["store"])
	assert.Equal(t, "store-5", attrs["store_id"])
}

func TestProcessRegistrationFailureIsFatal(t *testing.T) {
	p, _, _, mr := setupProcessor(t)

	// With Redis down the lookup failure is tolerated and processing
	// continues, but the registration failure at the end aborts the event.
	mr.Close()

	result := p.Process(context.Background(), createPayload())
	require.Equal(t, models.StatusError, result.Status)
	assert.Contains(t, result.Message, "register")
}

func TestProcessDeleteAfterCreate(t *testing.T) {
	p, store, _, _ := setupProcessor(t)
	ctx := context.Background()

	require.Equal(t, models.StatusSuccess, p.Process(ctx, createPayload()).Status)

	result := p.Process(ctx, map[string]any{
		"event_type": "product_deletion",
		"store_id":   "store-1",
		"products":   map[string]any{"product_id": "prod-1", "archived_at": "2026-01-01T00:00:00Z"},
	})
	require.Equal(t, models.StatusSuccess, result.Status)
	assert.Equal(t, models.EventTypeProductDelete, result.EventType)

	exists, err := store.Head(ctx, "catalog", "stores/store-1/products/prod-1.json")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = store.Head(ctx, "catalog", "master/products/prod-1.json")
	require.NoError(t, err)
	assert.True(t, exists)
}
