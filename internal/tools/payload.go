package tools

import "encoding/json"

// ErrorPayload encodes a failure as the {"error": "..."} shape every tool
// returns instead of raising.
func ErrorPayload(message string) string {
	return mustMarshal(map[string]string{"error": message})
}

// messagePayload encodes a success acknowledgment.
func messagePayload(message string) string {
	return mustMarshal(map[string]string{"message": message})
}

// mustMarshal serializes payloads built from local, always-marshalable
// values. Query results can still contain driver values json does not know;
// those fall back to an error payload rather than a panic.
func mustMarshal(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		fallback, _ := json.Marshal(map[string]string{"error": err.Error()})
		return string(fallback)
	}
	return string(data)
}
