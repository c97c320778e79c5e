package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// quotaStatusCode is the code Spoonacular puts in the body when the daily
// point quota is used up.
const quotaStatusCode = 402

type shape int

const (
	shapeSequence shape = iota + 1
	shapeRecord
)

// payload is a decoded provider body: either a JSON array or a JSON object.
type payload struct {
	shape    shape
	sequence []json.RawMessage
	record   map[string]json.RawMessage
}

func decodePayload(body []byte) (payload, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return payload{}, fmt.Errorf("empty response body")
	}

	switch trimmed[0] {
	case '[':
		var seq []json.RawMessage
		if err := json.Unmarshal(trimmed, &seq); err != nil {
			return payload{}, fmt.Errorf("failed to decode response array: %w", err)
		}
		return payload{shape: shapeSequence, sequence: seq}, nil
	case '{':
		var rec map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			return payload{}, fmt.Errorf("failed to decode response object: %w", err)
		}
		return payload{shape: shapeRecord, record: rec}, nil
	default:
		return payload{}, fmt.Errorf("unexpected response shape starting with %q", trimmed[0])
	}
}

// quotaExceeded reports whether the payload is the provider's documented
// quota failure: a record with status "failure" and code 402. Sequences never are.
func (p payload) quotaExceeded() bool {
	if p.shape != shapeRecord {
		return false
	}

	var status string
	if err := json.Unmarshal(p.record["status"], &status); err != nil || status != "failure" {
		return false
	}

	var code float64
	if err := json.Unmarshal(p.record["code"], &code); err != nil {
		return false
	}
	return code == quotaStatusCode
}

// message returns the record's "message" field, if any.
func (p payload) message() string {
	if p.shape != shapeRecord {
		return ""
	}
	var msg string
	_ = json.Unmarshal(p.record["message"], &msg)
	return msg
}

func (p payload) items() ([]json.RawMessage, error) {
	if p.shape != shapeSequence {
		return nil, fmt.Errorf("expected a JSON array, got an object")
	}
	return p.sequence, nil
}

func (p payload) field(name string) (json.RawMessage, error) {
	if p.shape != shapeRecord {
		return nil, fmt.Errorf("expected a JSON object with %q, got an array", name)
	}
	raw, ok := p.record[name]
	if !ok {
		return nil, fmt.Errorf("response has no %q field", name)
	}
	return raw, nil
}
