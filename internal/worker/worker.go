package worker

import (
	"context"
	"encoding/json"
	"log"

	"webhook-ingestion/internal/broker"
	"webhook-ingestion/internal/models"
	"webhook-ingestion/internal/payload"
	"webhook-ingestion/internal/service"

	"github.com/segmentio/kafka-go"
)

// WebhookWorker consumes webhook deliveries from the queue and feeds them
// through the same pipeline as the HTTP transport
type WebhookWorker struct {
	consumer  *broker.Consumer
	processor *service.Processor
}

// NewWebhookWorker creates a new webhook worker
func NewWebhookWorker(consumer *broker.Consumer, processor *service.Processor) *WebhookWorker {
	return &WebhookWorker{
		consumer:  consumer,
		processor: processor,
	}
}

// Start starts the worker
func (w *WebhookWorker) Start(ctx context.Context) error {
	log.Println("Starting webhook worker...")
	return w.consumer.StartConsuming(ctx, w.handleMessage)
}

// Stop stops the worker
func (w *WebhookWorker) Stop() error {
	log.Println("Stopping webhook worker...")
	return w.consumer.Close()
}

// handleMessage processes one queued delivery. It always returns nil so
// the message is committed: malformed payloads will never parse and error
// results are terminal, while transport-level redelivery of good payloads
// is already safe through digest dedup.
func (w *WebhookWorker) handleMessage(ctx context.Context, msg kafka.Message) error {
	var envelope map[string]any
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		log.Printf("Failed to unmarshal webhook delivery: %v", err)
		return nil
	}

	raw, err := payload.UnwrapEnvelope(envelope)
	if err != nil {
		log.Printf("Failed to unwrap webhook envelope: %v", err)
		return nil
	}

	result := w.processor.Process(ctx, raw)
	switch result.Status {
	case models.StatusError:
		log.Printf("Webhook processing failed: %s", result.Message)
	case models.StatusDuplicate:
		log.Printf("Duplicate webhook suppressed: event_id=%s", result.EventID)
	default:
		log.Printf("Webhook processed: event_id=%s, type=%s, target=%s",
			result.EventID, result.EventType, result.RoutingTarget)
	}

	return nil
}
