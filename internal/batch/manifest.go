package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Manifest describes one batch run.
type Manifest struct {
	RunID   uuid.UUID       `json:"run_id"`
	Created time.Time       `json:"created"`
	Format  string          `json:"format"`
	Normal  string          `json:"normal"`
	Diffuse string          `json:"diffuse"`
	Entries []ManifestEntry `json:"entries"`
}

// ManifestEntry represents one rendered script.
type ManifestEntry struct {
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Segments  int    `json:"segments"`
	ElapsedMS int64  `json:"elapsed_ms"`
	Error     string `json:"error,omitempty"`
}

// NewManifest builds the manifest for a finished run under a fresh run ID.
func NewManifest(cfg Config, results []Result) Manifest {
	m := Manifest{
		RunID:   uuid.New(),
		Created: time.Now().UTC(),
		Format:  string(cfg.Format),
		Normal:  cfg.Normal,
		Diffuse: cfg.Diffuse,
		Entries: make([]ManifestEntry, len(results)),
	}
	for i, r := range results {
		m.Entries[i] = ManifestEntry{
			Name:      r.Name,
			Image:     r.Image,
			Thumbnail: r.Thumbnail,
			Width:     r.Width,
			Height:    r.Height,
			Segments:  r.Segments,
			ElapsedMS: r.Elapsed.Milliseconds(),
			Error:     r.Error,
		}
		if !r.Success {
			m.Entries[i].Image, m.Entries[i].Thumbnail = "", ""
		}
	}
	return m
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("batch: manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("batch: manifest %s: %w", path, err)
	}
	return m, nil
}
