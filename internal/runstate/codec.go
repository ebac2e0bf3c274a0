package runstate

import (
	"encoding/json"
	"fmt"
)

func Encode(s *Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode run state: %w", err)
	}

	return data, nil
}

func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot

	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}

	if !s.TemplateType.Valid() || s.ProcessedCount < 0 || s.TotalCount < 0 {
		return nil, fmt.Errorf("%w: invalid header", ErrCorruptSnapshot)
	}

	return &s, nil
}
