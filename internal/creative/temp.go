package creative

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"adcraft/internal/infra"
)

// tempSet tracks on-disk buffers created for one pipeline run. Names embed a
// UUID so concurrent requests never collide. Release deletes everything the
// run created, on success and failure paths alike; deletion failures are
// logged and never propagated.
type tempSet struct {
	dir    string
	logger *infra.Logger
	paths  []string
}

func newTempSet(dir string, logger *infra.Logger) *tempSet {
	if dir == "" {
		dir = os.TempDir()
	}
	return &tempSet{dir: dir, logger: logger}
}

// add writes data to a uniquely named file and registers it for release.
func (t *tempSet) add(prefix string, data []byte) (string, error) {
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return "", fmt.Errorf("temp: ensure directory: %w", err)
	}
	path := filepath.Join(t.dir, fmt.Sprintf("%s_%s.png", prefix, uuid.NewString()))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("temp: write buffer: %w", err)
	}
	t.paths = append(t.paths, path)
	return path, nil
}

// release deletes every buffer the run created.
func (t *tempSet) release() {
	for _, path := range t.paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			t.logger.Warn().Err(err).Str("path", path).Msg("temp: cleanup failed")
		}
	}
	t.paths = nil
}
