package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AnswerMap is the raw answer payload of a survey response: an arbitrary
// string-keyed mapping of scalar or list values whose shape we do not
// control. Top-level key order from the source document is preserved so
// that heuristic scans over the payload stay deterministic.
type AnswerMap struct {
	keys   []string
	values map[string]any
}

func NewAnswerMap() AnswerMap {
	return AnswerMap{values: make(map[string]any)}
}

// Set inserts or replaces a value. New keys keep insertion order.
func (m *AnswerMap) Set(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m AnswerMap) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in document order. The returned slice is shared;
// callers must not modify it.
func (m AnswerMap) Keys() []string {
	return m.keys
}

func (m AnswerMap) Len() int {
	return len(m.keys)
}

func (m *AnswerMap) UnmarshalJSON(data []byte) error {
	m.keys = nil
	m.values = make(map[string]any)

	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("answer payload: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		// Not an object: the upstream serializes an empty answer set as
		// null or []. Any non-object shape means "no answers" rather than
		// a decode failure, so one odd record cannot fail its whole page.
		return nil
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("answer payload: %w", err)
		}
		key := keyTok.(string)

		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("answer payload: value for %q: %w", key, err)
		}
		m.Set(key, value)
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("answer payload: %w", err)
	}
	return nil
}

func (m AnswerMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		valueJSON, err := json.Marshal(m.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(valueJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
