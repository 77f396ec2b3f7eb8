package metrics

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/obsplane/observer/internal/hub"
	"github.com/obsplane/observer/internal/jsonio"
)

// WriteSnapshot persists a timestamped copy of a summary under the hub's
// metrics directory for historical tracking. Called after analysis, not
// inside it.
func WriteSnapshot(h *hub.Hub, s Summary) (string, error) {
	now := time.Now().UTC()
	path := filepath.Join(h.MetricsDir, fmt.Sprintf("snapshot-%s.json", now.Format("20060102-150405")))

	doc := map[string]any{}
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("flatten summary: %w", err)
	}
	doc["snapshot_timestamp"] = now.Format(time.RFC3339)

	if err := jsonio.AtomicWrite(path, doc); err != nil {
		return "", err
	}
	return path, nil
}
