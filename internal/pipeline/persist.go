package pipeline

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/despesalab/categorizer/internal/common"
)

// CanonicalName is the well-known artifact the inference service loads
// at startup, distinct from the per-candidate named artifact.
const CanonicalName = "category_classifier.gob"

// ArtifactName derives the on-disk name for a candidate's artifact
// from its display name: lower-cased, spaces replaced, parentheses
// stripped.
func ArtifactName(displayName string) string {
	name := strings.ToLower(displayName)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "(", "")
	name = strings.ReplaceAll(name, ")", "")
	return name + ".gob"
}

// Save writes the pipeline to path. The artifact is written to a
// temporary file in the same directory and atomically renamed, so a
// failed write never leaves a partial artifact at the canonical path.
func Save(p *Pipeline, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".pipeline-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary artifact: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if err := gob.NewEncoder(tmp).Encode(p); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to encode pipeline: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to flush artifact: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace artifact: %w", err)
	}
	return nil
}

// Load reads a persisted pipeline. A missing file maps to
// common.ErrModelNotFound so callers can tell "train first" apart from
// a corrupt artifact.
func Load(path string) (*Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s: run 'categorizer train' first", common.ErrModelNotFound, path)
		}
		return nil, fmt.Errorf("failed to open model artifact: %w", err)
	}
	defer func() { _ = f.Close() }()

	var p Pipeline
	if err := gob.NewDecoder(f).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrModelCorrupted, path, err)
	}
	if p.Transform == nil || !p.Transform.Fitted() {
		return nil, fmt.Errorf("%w: %s: artifact has no fitted transform", common.ErrModelCorrupted, path)
	}
	return &p, nil
}
