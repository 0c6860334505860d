package broker

import (
	"context"
	"fmt"
	"time"

	"webhook-ingestion/internal/models"

	"github.com/google/uuid"
)

// RefreshPublisher publishes refresh signals for downstream index re-sync
type RefreshPublisher struct {
	producer *Producer
}

// NewRefreshPublisher creates a new refresh publisher
func NewRefreshPublisher(producer *Producer) *RefreshPublisher {
	return &RefreshPublisher{producer: producer}
}

// PublishStoreRefresh asks downstream consumers to re-sync one store's
// search index. Fire-and-forget from the pipeline's point of view.
func (rp *RefreshPublisher) PublishStoreRefresh(ctx context.Context, storeID string) error {
	event := &models.StoreRefreshEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeStoreRefresh,
			Timestamp: time.Now(),
		},
		StoreID: storeID,
	}

	key := fmt.Sprintf("store-%s", storeID)
	return rp.producer.PublishEvent(ctx, key, event)
}
