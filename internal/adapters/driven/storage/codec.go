package storage

import (
	"fmt"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/sanitize"
)

// Encode sanitises value and encodes it as JSON.
func Encode(value any) ([]byte, error) {
	data, err := json.Marshal(sanitize.Value(value))
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return data, nil
}

// NewRecord validates the key and kind and builds a record holding the
// encoded value.
func NewRecord(key string, value any, kind domain.RecordKind, now time.Time) (*domain.Record, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("record kind %q: %w", kind, domain.ErrInvalidInput)
	}
	data, err := Encode(value)
	if err != nil {
		return nil, err
	}
	return &domain.Record{
		Key:       key,
		Kind:      kind,
		Value:     data,
		Timestamp: now.UTC(),
	}, nil
}

// MarshalRecord encodes a whole record for backends that store one blob
// per key.
func MarshalRecord(rec *domain.Record) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal record %s: %w", rec.Key, err)
	}
	return data, nil
}

// UnmarshalRecord decodes a blob written by MarshalRecord.
func UnmarshalRecord(data []byte) (*domain.Record, error) {
	var rec domain.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptRecord, err)
	}
	if rec.Key == "" || !rec.Kind.IsValid() {
		return nil, fmt.Errorf("%w: missing key or kind", domain.ErrCorruptRecord)
	}
	return &rec, nil
}

// ValidateKey rejects keys that no backend can store.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("empty key: %w", domain.ErrInvalidInput)
	}
	if strings.ContainsAny(key, "/\\\x00") {
		return fmt.Errorf("key %q contains a path separator: %w", key, domain.ErrInvalidInput)
	}
	return nil
}

// MatchKind reports whether a record of kind have is selected by want.
// An empty want selects every kind.
func MatchKind(have, want domain.RecordKind) bool {
	return want == "" || have == want
}

// SortedKeys returns keys in ascending order.
func SortedKeys(keys []string) []string {
	sort.Strings(keys)
	return keys
}

// CloneRecord returns a copy that shares no memory with rec.
func CloneRecord(rec *domain.Record) *domain.Record {
	out := *rec
	out.Value = append([]byte(nil), rec.Value...)
	return &out
}
