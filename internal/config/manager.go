// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Manager handles descriptor persistence.
type Manager struct {
	path string
}

// NewManager creates a new descriptor manager.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Save writes d to disk in the format implied by the path extension. The
// write is atomic: readers see either the old or the new file.
func (m *Manager) Save(d Descriptor) error {
	format, err := FormatFromPath(m.path)
	if err != nil {
		return err
	}
	if err := Validate(d); err != nil {
		return fmt.Errorf("refusing to save invalid descriptor: %w", err)
	}

	data, err := Marshal(d, format)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0750); err != nil {
		return fmt.Errorf("mkdir descriptor dir: %w", err)
	}
	if err := writeFileAtomic(m.path, data); err != nil {
		return fmt.Errorf("write descriptor: %w", err)
	}
	return nil
}
