package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Catalog is the components database: category key to list of records,
// in file order.
type Catalog struct {
	Object
}

// Records decodes the records stored under key. The boolean is false when the
// catalog has no such category.
func (c *Catalog) Records(key CategoryKey) ([]*Record, bool, error) {
	raw, ok := c.Get(key.String())
	if !ok {
		return nil, false, nil
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, true, fmt.Errorf("%w: %s", ErrNotRecordList, key)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, true, fmt.Errorf("failed to decode category %s: %w", key, err)
	}

	records := make([]*Record, 0, len(items))
	for i, item := range items {
		record := &Record{}
		if err := json.Unmarshal(item, record); err != nil {
			return nil, true, fmt.Errorf("%w: %s[%d]: %w", ErrNotRecordList, key, i, err)
		}
		records = append(records, record)
	}

	return records, true, nil
}

// SetRecords stores records under key, keeping the key's position.
func (c *Catalog) SetRecords(key CategoryKey, records []*Record) error {
	if records == nil {
		records = []*Record{}
	}
	return c.Set(key.String(), records)
}
