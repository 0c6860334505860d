package payload

// nodeContext tags a recursion frame with the schema role of the node being
// visited, so field stripping rules are resolved once per frame instead of
// re-inferred at each lookup.
type nodeContext string

const (
	ctxRoot       nodeContext = "root"
	ctxProducts   nodeContext = "products"
	ctxVariants   nodeContext = "product_variants"
	ctxCategories nodeContext = "categories"
)

// dropFields maps a context to the field names removed within it
var dropFields = map[nodeContext]map[string]struct{}{
	ctxProducts: {
		"created_at":  {},
		"updated_at":  {},
		"archived_at": {},
	},
	ctxVariants: {
		"image_url":          {},
		"stock_quantity":     {},
		"is_default":         {},
		"stockStatus":        {},
		"lab_test_codes_id":  {},
		"service_product_id": {},
		"cpr_price":          {},
		"archived_at":        {},
	},
	ctxCategories: {
		"user_id":       {},
		"created_at":    {},
		"last_modified": {},
		"image":         {},
	},
}

// Redact returns a deep copy of the payload with context-specific fields
// removed. The input is never mutated, and redacting an already-redacted
// payload is a no-op.
func Redact(payload map[string]any) map[string]any {
	return redactMap(payload, ctxRoot)
}

func redactValue(value any, ctx nodeContext) any {
	switch node := value.(type) {
	case map[string]any:
		return redactMap(node, ctx)
	case []any:
		return redactList(node, ctx)
	default:
		return value
	}
}

func redactMap(node map[string]any, ctx nodeContext) map[string]any {
	// Some product-array elements and category-array elements look alike;
	// the {id, name, is_featured} signature disambiguates the latter.
	if ctx == ctxProducts && looksLikeCategory(node) {
		ctx = ctxCategories
	}

	drop := dropFields[ctx]
	result := make(map[string]any, len(node))
	for key, value := range node {
		if _, strip := drop[key]; strip {
			continue
		}
		result[key] = redactValue(value, childContext(ctx, key))
	}
	return result
}

func redactList(node []any, ctx nodeContext) []any {
	elemCtx := ctx
	// Fallback for payloads where the container key is missing or renamed:
	// inside products context, the first element tells variants and
	// categories apart.
	if ctx == ctxProducts && len(node) > 0 {
		if first, ok := node[0].(map[string]any); ok {
			if _, isVariant := first["product_id"]; isVariant {
				elemCtx = ctxVariants
			} else if _, isCategory := first["is_featured"]; isCategory {
				elemCtx = ctxCategories
			}
		}
	}

	result := make([]any, len(node))
	for i, item := range node {
		result[i] = redactValue(item, elemCtx)
	}
	return result
}

// childContext resolves the context a value is entered under, keyed by the
// container field that reached it
func childContext(ctx nodeContext, key string) nodeContext {
	switch key {
	case "products":
		return ctxProducts
	case "product_variants":
		return ctxVariants
	case "categories":
		return ctxCategories
	}
	return ctx
}

func looksLikeCategory(node map[string]any) bool {
	_, hasID := node["id"]
	_, hasName := node["name"]
	_, hasFeatured := node["is_featured"]
	return hasID && hasName && hasFeatured
}
