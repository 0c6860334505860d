package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixturePayload() map[string]any {
	return map[string]any{
		"event_type": "product_update",
		"store_id":   "store-1",
		"products": map[string]any{
			"id":          "prod-1",
			"name":        "Relief Balm",
			"created_at":  "2024-01-01T00:00:00Z",
			"updated_at":  "2024-02-01T00:00:00Z",
			"archived_at": nil,
			"product_variants": []any{
				map[string]any{
					"id":                 "var-1",
					"product_id":         "prod-1",
					"name":               "30ml",
					"price":              19.99,
					"sku":                "RB-30",
					"image_url":          "https://cdn.example.com/rb.png",
					"stock_quantity":     14.0,
					"is_default":         true,
					"stockStatus":        "in_stock",
					"lab_test_codes_id":  "lab-9",
					"service_product_id": "svc-3",
					"cpr_price":          12.5,
					"archived_at":        nil,
				},
			},
			"categories": []any{
				map[string]any{
					"id":            "cat-1",
					"name":          "Topicals",
					"is_featured":   true,
					"store_id":      "store-1",
					"user_id":       "user-7",
					"created_at":    "2023-01-01T00:00:00Z",
					"last_modified": "2024-01-01T00:00:00Z",
					"image":         "https://cdn.example.com/cat.png",
				},
			},
		},
	}
}

func TestRedactDropsProductFields(t *testing.T) {
	result := Redact(fixturePayload())

	products, ok := result["products"].(map[string]any)
	require.True(t, ok)

	assert.NotContains(t, products, "created_at")
	assert.NotContains(t, products, "updated_at")
	assert.NotContains(t, products, "archived_at")
	assert.Equal(t, "prod-1", products["id"])
	assert.Equal(t, "Relief Balm", products["name"])
}

func TestRedactDropsVariantFields(t *testing.T) {
	result := Redact(fixturePayload())

	variants := result["products"].(map[string]any)["product_variants"].([]any)
	require.Len(t, variants, 1)
	variant := variants[0].(map[string]any)

	for _, field := range []string{
		"image_url", "stock_quantity", "is_default", "stockStatus",
		"lab_test_codes_id", "service_product_id", "cpr_price", "archived_at",
	} {
		assert.NotContains(t, variant, field)
	}
	assert.Equal(t, "var-1", variant["id"])
	assert.Equal(t, "30ml", variant["name"])
	assert.Equal(t, 19.99, variant["price"])
	assert.Equal(t, "RB-30", variant["sku"])
}

func TestRedactDropsCategoryFields(t *testing.T) {
	result := Redact(fixturePayload())

	categories := result["products"].(map[string]any)["categories"].([]any)
	require.Len(t, categories, 1)
	category := categories[0].(map[string]any)

	for _, field := range []string{"user_id", "created_at", "last_modified", "image"} {
		assert.NotContains(t, category, field)
	}
	assert.Equal(t, "cat-1", category["id"])
	assert.Equal(t, "Topicals", category["name"])
	assert.Equal(t, true, category["is_featured"])
	assert.Equal(t, "store-1", category["store_id"])
}

func TestRedactCategorySignatureInsideProducts(t *testing.T) {
	// A category-shaped object nested directly under products context is
	// reclassified by its {id, name, is_featured} signature even without a
	// categories container key.
	payload := map[string]any{
		"products": map[string]any{
			"featured": map[string]any{
				"id":          "cat-2",
				"name":        "Edibles",
				"is_featured": false,
				"user_id":     "user-1",
				"image":       "x.png",
			},
		},
	}

	result := Redact(payload)
	featured := result["products"].(map[string]any)["featured"].(map[string]any)

	assert.NotContains(t, featured, "user_id")
	assert.NotContains(t, featured, "image")
	assert.Equal(t, "cat-2", featured["id"])
}

func TestRedactListFallbackWithoutContainerKey(t *testing.T) {
	// Lists reached under a renamed key are still recognized by their first
	// element's shape.
	payload := map[string]any{
		"products": map[string]any{
			"variants_v2": []any{
				map[string]any{"product_id": "prod-1", "price": 5.0, "stock_quantity": 3.0},
			},
			"tags": []any{
				map[string]any{"is_featured": true, "id": "cat-3", "user_id": "user-2"},
			},
		},
	}

	result := Redact(payload)
	products := result["products"].(map[string]any)

	variant := products["variants_v2"].([]any)[0].(map[string]any)
	assert.NotContains(t, variant, "stock_quantity")
	assert.Equal(t, 5.0, variant["price"])

	tag := products["tags"].([]any)[0].(map[string]any)
	assert.NotContains(t, tag, "user_id")
	assert.Equal(t, "cat-3", tag["id"])
}

func TestRedactPreservesUnlistedFields(t *testing.T) {
	payload := map[string]any{
		"custom":   map[string]any{"created_at": "kept outside products context"},
		"store_id": "store-1",
		"nullable": nil,
	}

	result := Redact(payload)

	assert.Equal(t, "kept outside products context", result["custom"].(map[string]any)["created_at"])
	assert.Equal(t, "store-1", result["store_id"])
	assert.Contains(t, result, "nullable")
	assert.Nil(t, result["nullable"])
}

func TestRedactIdempotent(t *testing.T) {
	once := Redact(fixturePayload())
	twice := Redact(once)

	assert.Equal(t, once, twice)
}

func TestRedactDoesNotMutateInput(t *testing.T) {
	payload := fixturePayload()
	_ = Redact(payload)

	products := payload["products"].(map[string]any)
	assert.Contains(t, products, "created_at")
	variant := products["product_variants"].([]any)[0].(map[string]any)
	assert.Contains(t, variant, "image_url")
}
