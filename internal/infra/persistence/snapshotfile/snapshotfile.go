// Package snapshotfile persists the whole entity store to a single JSON
// document on disk and restores it in place.
package snapshotfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"simcore/pkg/domain"

	"github.com/natefinch/atomic"
)

// Save writes the store's entire state as one self-describing JSON document.
// The write is atomic: a torn snapshot is never observable on disk.
func Save(path string, store domain.Store) error {
	data, err := Marshal(store.ExportState())
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

// Load reads a snapshot document and replaces the contents of the existing
// store in place, so references held elsewhere observe the restored state.
func Load(path string, store domain.Store) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read snapshot %s: %w", path, err)
	}
	state, err := Unmarshal(data)
	if err != nil {
		return fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	store.ReplaceState(state)
	return nil
}

// Marshal encodes state deterministically: encoding/json sorts map keys, so
// save-load-save round trips are byte-identical.
func Marshal(state domain.State) ([]byte, error) {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// Unmarshal decodes a snapshot document. The document's top-level shape must
// mirror the store: collection name to records keyed by identifier.
func Unmarshal(data []byte) (domain.State, error) {
	var state domain.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state == nil {
		state = make(domain.State)
	}
	return state, nil
}
