package payload

import "webhook-ingestion/internal/models"

// eventTypeAliases normalizes sender-supplied tags to canonical event types.
// Tags without an alias pass through verbatim.
var eventTypeAliases = map[string]string{
	"product_deletion": models.EventTypeProductDelete,
	"new_product":      models.EventTypeProductCreate,
	"new_store":        models.EventTypeStoreCreate,
	"deleted_store":    models.EventTypeStoreDelete,
	"updated_store":    models.EventTypeStoreUpdate,
}

// Classify determines the canonical event type of a payload. An explicit
// event_type tag always wins; payloads from the legacy generation lacking
// the tag fall back to structural inspection.
func Classify(payload map[string]any) string {
	if tagged, ok := classifyTag(payload); ok {
		return tagged
	}
	return classifyStructure(payload)
}

// classifyTag resolves the explicit event_type tag when present. This path
// trusts the sender and performs no structural inspection.
func classifyTag(payload map[string]any) (string, bool) {
	raw, ok := payload["event_type"].(string)
	if !ok || raw == "" {
		return "", false
	}
	if canonical, ok := eventTypeAliases[raw]; ok {
		return canonical, true
	}
	return raw, true
}

// classifyStructure infers the event type of legacy payloads from shape
func classifyStructure(payload map[string]any) string {
	if products, ok := payload["products"]; ok {
		if obj, ok := products.(map[string]any); ok {
			if obj["archived_at"] != nil {
				return models.EventTypeProductDelete
			}
			if hasAny(obj, "id", "product_id") {
				return models.EventTypeProductUpdate
			}
		}
		return models.EventTypeProductCreate
	}

	if storeID, ok := payload["store_id"]; ok {
		switch v := storeID.(type) {
		case map[string]any:
			if v["archived_at"] != nil {
				return models.EventTypeStoreDelete
			}
			if _, ok := v["id"]; ok {
				return models.EventTypeStoreUpdate
			}
			return models.EventTypeStoreCreate
		case string:
			if v != "" {
				// A bare identifier carries no create/delete signal; the
				// producer has only ever sent these for updates.
				return models.EventTypeStoreUpdate
			}
		}
	}

	return models.EventTypeUnknown
}

func hasAny(obj map[string]any, keys ...string) bool {
	for _, key := range keys {
		if v, ok := obj[key]; ok && v != nil {
			return true
		}
	}
	return false
}
