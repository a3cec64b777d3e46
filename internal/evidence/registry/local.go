package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
)

// LocalTable is the authoritative snapshot loaded once at startup. It is never
// written after construction and is safe to share between requests.
type LocalTable struct {
	records map[string]AuthoritativeRecord
}

// NewLocalTable copies records into a read-only table.
func NewLocalTable(records map[string]AuthoritativeRecord) *LocalTable {
	copied := make(map[string]AuthoritativeRecord, len(records))
	for id, rec := range records {
		copied[id] = rec
	}
	return &LocalTable{records: copied}
}

// LoadLocalTable reads a JSON object of identifier -> record from path.
// A missing file yields an empty table; unreadable or malformed files are errors.
func LoadLocalTable(path string) (*LocalTable, error) {
	if path == "" {
		return NewLocalTable(nil), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewLocalTable(nil), nil
		}
		return nil, fmt.Errorf("read local registry %s: %w", path, err)
	}
	var records map[string]AuthoritativeRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode local registry %s: %w", path, err)
	}
	return &LocalTable{records: records}, nil
}

// Get returns the record for identifier.
func (t *LocalTable) Get(identifier string) (AuthoritativeRecord, bool) {
	if t == nil {
		return AuthoritativeRecord{}, false
	}
	rec, ok := t.records[identifier]
	return rec, ok
}

// Identifiers returns the known identifiers in sorted order.
func (t *LocalTable) Identifiers() []string {
	if t == nil {
		return nil
	}
	ids := make([]string, 0, len(t.records))
	for id := range t.records {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (t *LocalTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}
