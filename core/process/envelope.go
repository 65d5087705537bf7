// ABOUTME: Response envelope decoding for LLM output
// ABOUTME: Handles the known wrapper shapes models use around the article array

package process

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Models wrap the article array inconsistently: sometimes a bare array,
// sometimes an object keyed by one of a few conventional names. The
// decoder treats each known shape explicitly and reports anything else
// as an unrecognized shape rather than guessing.

// ErrUnrecognizedShape is returned when the response is valid JSON but
// matches none of the known envelope shapes.
var ErrUnrecognizedShape = errors.New("unrecognized response envelope shape")

// wrapperKeys are the object keys checked, in order, for the article array.
var wrapperKeys = []string{"items", "articles", "stories"}

// decodeEnvelope extracts the raw article list from an LLM response body.
func decodeEnvelope(data []byte) ([]json.RawMessage, error) {
	var probe interface{}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	switch probe.(type) {
	case []interface{}:
		// Bare array.
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
		return items, nil

	case map[string]interface{}:
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, err
		}

		for _, key := range wrapperKeys {
			if raw, ok := wrapper[key]; ok {
				return decodeArray(raw, key)
			}
		}

		// No known key: take the object's first value, provided it is
		// an array. Marshal maps don't preserve order, so re-scan the
		// original bytes for the first key instead.
		if key, raw, found := firstObjectValue(data); found {
			items, err := decodeArray(raw, key)
			if err == nil {
				return items, nil
			}
		}

		return nil, ErrUnrecognizedShape

	default:
		return nil, ErrUnrecognizedShape
	}
}

// decodeArray unmarshals raw as a JSON array of objects.
func decodeArray(raw json.RawMessage, key string) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("value under %q is not an array: %w", key, err)
	}
	return items, nil
}

// firstObjectValue returns the first key/value pair of a JSON object in
// document order.
func firstObjectValue(data []byte) (string, json.RawMessage, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))

	// Opening brace.
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return "", nil, false
	}

	tok, err := dec.Token()
	if err != nil {
		return "", nil, false
	}
	key, ok := tok.(string)
	if !ok {
		return "", nil, false
	}

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return "", nil, false
	}

	return key, raw, true
}
