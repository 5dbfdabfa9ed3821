package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"newsdesk/internal/ports"
)

// FSSink writes per-run JSON artifacts under a local directory, one file per
// artifact path, grouped by run id.
type FSSink struct {
	root string
}

var _ ports.ArtifactSink = (*FSSink)(nil)

// NewFSSink roots the sink at dir.
func NewFSSink(dir string) *FSSink {
	return &FSSink{root: dir}
}

// Save serializes the payload as indented JSON at <root>/<runID>/<path>.
func (s *FSSink) Save(_ context.Context, runID, path string, payload any) error {
	if s.root == "" {
		return fmt.Errorf("artifact sink misconfigured")
	}

	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}

	full := filepath.Join(s.root, runID, filepath.FromSlash(strings.TrimPrefix(path, "/")))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	if err := os.WriteFile(full, raw, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}
