// Package snapshot provides a write-ahead log plus compressed snapshot
// cache for PnlState, sitting in front of the in-memory
// memory.EngineRegistry and standing in for the SQL durable backend in
// internal/durable: cheap local persistence with no database dependency.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// CalculateChecksum generates a SHA256 checksum for any JSON-marshalable
// value, used to detect silent corruption of a WAL entry or snapshot
// file.
func CalculateChecksum(data interface{}) (string, error) {
	bytes, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(bytes)
	return hex.EncodeToString(hash[:]), nil
}

// VerifyChecksum reports whether data's checksum matches expected.
func VerifyChecksum(data interface{}, expected string) (bool, error) {
	actual, err := CalculateChecksum(data)
	if err != nil {
		return false, err
	}
	return actual == expected, nil
}
