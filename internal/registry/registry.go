// Package registry tracks which model version the planning stack treats
// as active. The registry is authoritative for the active version label;
// live metadata is fetched from the prediction service on read and the
// read degrades to a placeholder when the service is unreachable.
package registry

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/andresuchdata/demandcast/internal/faults"
	"github.com/andresuchdata/demandcast/pkg/logger"
)

const initialVersion = "v1"

var versionPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// ModelInfoProvider fetches live metadata from the prediction service.
type ModelInfoProvider interface {
	ModelInfo(ctx context.Context) (map[string]any, error)
}

// ModelVersion describes the active model as seen by callers.
type ModelVersion struct {
	Version     string         `json:"version"`
	ActivatedAt time.Time      `json:"activatedAt"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Registry is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	version     string
	activatedAt time.Time
	provider    ModelInfoProvider
}

func New(provider ModelInfoProvider) *Registry {
	return &Registry{
		version:     initialVersion,
		activatedAt: time.Now().UTC(),
		provider:    provider,
	}
}

// GetActive returns the active version merged with live model metadata.
// A metadata fetch failure is logged and replaced with a placeholder so
// the registry read itself never fails.
func (r *Registry) GetActive(ctx context.Context) ModelVersion {
	r.mu.RLock()
	out := ModelVersion{Version: r.version, ActivatedAt: r.activatedAt}
	r.mu.RUnlock()

	if r.provider == nil {
		return out
	}

	info, err := r.provider.ModelInfo(ctx)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("model metadata unavailable")
		out.Metadata = map[string]any{"status": "metadata unavailable"}
		return out
	}

	out.Metadata = info
	return out
}

// Activate switches the active version label. The label must match
// ^[a-zA-Z0-9._-]{1,64}$; anything else is rejected.
func (r *Registry) Activate(version string) (ModelVersion, error) {
	if !versionPattern.MatchString(version) {
		return ModelVersion{}, faults.New(faults.InputValidation,
			"invalid model version %q: must match %s", version, versionPattern.String())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.version = version
	r.activatedAt = time.Now().UTC()
	return ModelVersion{Version: r.version, ActivatedAt: r.activatedAt}, nil
}
