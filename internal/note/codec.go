package note

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Encode serializes notes as a JSON array in the given order.
func Encode(notes []Note) ([]byte, error) {
	if notes == nil {
		notes = []Note{}
	}
	data, err := json.Marshal(notes)
	if err != nil {
		return nil, fmt.Errorf("encode notes: %w", err)
	}
	return data, nil
}

// Decode parses a stored collection. It rejects anything that is not a
// non-empty array of notes with unique, non-empty ids and non-negative
// timestamps.
func Decode(data []byte) ([]Note, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("decode notes: empty payload")
	}
	if trimmed[0] != '[' {
		return nil, errors.New("decode notes: payload is not an array")
	}

	var notes []Note
	if err := json.Unmarshal(trimmed, &notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	if len(notes) == 0 {
		return nil, errors.New("decode notes: no notes stored")
	}

	seen := make(map[string]struct{}, len(notes))
	for i, n := range notes {
		if strings.TrimSpace(n.ID) == "" {
			return nil, fmt.Errorf("decode notes: record %d has no id", i)
		}
		if _, dup := seen[n.ID]; dup {
			return nil, fmt.Errorf("decode notes: duplicate id %q", n.ID)
		}
		if n.UpdatedAt < 0 {
			return nil, fmt.Errorf("decode notes: record %q has negative updatedAt", n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	return notes, nil
}
