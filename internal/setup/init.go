// Package setup handles first-run bootstrap of an observer hub: the
// directory tree, the initial parameter config, and the watch configuration.
package setup

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/obsplane/observer/internal/hub"
	"github.com/obsplane/observer/internal/jsonio"
	"github.com/obsplane/observer/templates"
)

// Result reports what Run created.
type Result struct {
	Hub              *hub.Hub
	WroteParameters  bool
	WroteWatchConfig bool
}

// Run opens (creating if needed) the hub at basePath and seeds the starter
// files that later commands expect. Idempotent: existing parameter versions
// and an existing observer.yaml are left untouched.
func Run(basePath string) (*Result, error) {
	h, err := hub.Open(basePath)
	if err != nil {
		return nil, err
	}
	res := &Result{Hub: h}

	versions, err := h.ParameterVersions()
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		data, err := fs.ReadFile(templates.FS, "parameters.json")
		if err != nil {
			return nil, fmt.Errorf("read parameters template: %w", err)
		}
		path := filepath.Join(h.ParametersDir, "v0.1.0.json")
		if err := jsonio.AtomicWriteRaw(path, data); err != nil {
			return nil, fmt.Errorf("write initial parameters: %w", err)
		}
		res.WroteParameters = true
	}

	configPath := filepath.Join(h.BasePath, "observer.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		data, err := fs.ReadFile(templates.FS, "observer.yaml")
		if err != nil {
			return nil, fmt.Errorf("read config template: %w", err)
		}
		if err := os.WriteFile(configPath, data, 0644); err != nil {
			return nil, fmt.Errorf("write observer.yaml: %w", err)
		}
		res.WroteWatchConfig = true
	}

	return res, nil
}
