package payload

import (
	"encoding/json"
	"fmt"
)

// UnwrapEnvelope extracts the raw webhook payload from the delivery
// envelope. Event-bus deliveries carry it under detail, HTTP-gateway style
// deliveries under body (as an object or a JSON string); anything else is
// treated as the payload itself.
func UnwrapEnvelope(event map[string]any) (map[string]any, error) {
	if detail, ok := event["detail"].(map[string]any); ok {
		return detail, nil
	}

	if body, ok := event["body"]; ok {
		switch b := body.(type) {
		case string:
			var parsed map[string]any
			if err := json.Unmarshal([]byte(b), &parsed); err != nil {
				return nil, fmt.Errorf("failed to parse envelope body: %w", err)
			}
			return parsed, nil
		case map[string]any:
			return b, nil
		}
	}

	return event, nil
}
