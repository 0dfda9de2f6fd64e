package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

const currentSchemaVersion uint8 = 1

var (
	// ErrCorruptSnapshot is returned when a cached value cannot be decoded.
	ErrCorruptSnapshot = errors.New("corrupt session snapshot")
	// ErrUnsupportedVersion is returned for snapshots written by a newer schema.
	ErrUnsupportedVersion = errors.New("unsupported session snapshot version")
)

type encodedSnapshot struct {
	Version uint8 `json:"v"`
	Snapshot
}

// Encode serializes s with the current schema version.
func Encode(s *Snapshot) ([]byte, error) {
	if s == nil || s.ID == "" {
		return nil, fmt.Errorf("%w: missing principal id", ErrCorruptSnapshot)
	}
	return json.Marshal(encodedSnapshot{Version: currentSchemaVersion, Snapshot: *s})
}

// Decode parses a cached value. Version 0 (no "v" field) is accepted so that
// entries written before versioning stay readable.
func Decode(data []byte) (*Snapshot, error) {
	var enc encodedSnapshot
	if err := json.Unmarshal(data, &enc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if enc.Version > currentSchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, enc.Version)
	}
	if enc.ID == "" {
		return nil, fmt.Errorf("%w: missing principal id", ErrCorruptSnapshot)
	}
	s := enc.Snapshot
	return &s, nil
}
