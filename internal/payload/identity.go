package payload

import (
	"fmt"
	"strconv"
)

// Identifiers are the resolved identity fields of one payload. Absent
// fields are empty strings, never errors.
type Identifiers struct {
	StoreID     string
	ProductID   string
	StoreDomain string
	CompanyID   string
}

// ExtractIdentifiers resolves all identity fields in one pass
func ExtractIdentifiers(payload map[string]any) Identifiers {
	storeID := StoreID(payload)
	return Identifiers{
		StoreID:     storeID,
		ProductID:   ProductID(payload),
		StoreDomain: StoreDomain(payload),
		CompanyID:   storeID,
	}
}

// StoreID resolves the store identifier: top-level store_id (string, or
// object with an id field), else products.store_id.
func StoreID(payload map[string]any) string {
	switch v := payload["store_id"].(type) {
	case string:
		return v
	case map[string]any:
		if id := asString(v["id"]); id != "" {
			return id
		}
	}

	if products, ok := payload["products"].(map[string]any); ok {
		return asString(products["store_id"])
	}
	return ""
}

// ProductID resolves the product identifier: products.product_id, else
// products.id.
func ProductID(payload map[string]any) string {
	products, ok := payload["products"].(map[string]any)
	if !ok {
		return ""
	}
	if id := asString(products["product_id"]); id != "" {
		return id
	}
	return asString(products["id"])
}

// StoreDomain resolves the store domain: top-level store_domain, else the
// store_id object's domain/store_domain, else products.store_domain.
func StoreDomain(payload map[string]any) string {
	if domain := asString(payload["store_domain"]); domain != "" {
		return domain
	}

	if store, ok := payload["store_id"].(map[string]any); ok {
		if domain := asString(store["domain"]); domain != "" {
			return domain
		}
		if domain := asString(store["store_domain"]); domain != "" {
			return domain
		}
	}

	if products, ok := payload["products"].(map[string]any); ok {
		return asString(products["store_domain"])
	}
	return ""
}

// CompanyID is currently identical to StoreID: one company per store. Seam
// for future multi-company support.
func CompanyID(payload map[string]any) string {
	return StoreID(payload)
}

// asString normalizes the identifier representations seen across payload
// generations; JSON numbers decode as float64
func asString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(id, 10)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", id)
	}
}
