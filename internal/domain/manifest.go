package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Manifest describes a compiled scheme for dashboards and version badges.
type Manifest struct {
	Built time.Time `json:"built"`
	Rows  int       `json:"rows"`
}

// NewManifest stamps a manifest with the current clock time in UTC,
// truncated to milliseconds.
func NewManifest(rows int) Manifest {
	return Manifest{
		Built: clock.Now().UTC().Truncate(time.Millisecond),
		Rows:  rows,
	}
}

// MarshalManifest renders m as indented JSON with a trailing newline.
func MarshalManifest(m Manifest) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return append(data, '\n'), nil
}
