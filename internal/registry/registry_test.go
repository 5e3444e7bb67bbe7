package registry

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/andresuchdata/demandcast/internal/faults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	info map[string]any
	err  error
}

func (p *stubProvider) ModelInfo(context.Context) (map[string]any, error) {
	return p.info, p.err
}

func TestRegistryStartsAtV1(t *testing.T) {
	r := New(nil)
	active := r.GetActive(context.Background())
	assert.Equal(t, "v1", active.Version)
	assert.False(t, active.ActivatedAt.IsZero())
}

func TestRegistryActivate(t *testing.T) {
	r := New(nil)

	activated, err := r.Activate("v2.1_candidate-3")
	require.NoError(t, err)
	assert.Equal(t, "v2.1_candidate-3", activated.Version)
	assert.Equal(t, "v2.1_candidate-3", r.GetActive(context.Background()).Version)
}

func TestRegistryRejectsBadVersions(t *testing.T) {
	r := New(nil)
	for _, version := range []string{"", "has space", "semi;colon", "x/y", strings.Repeat("a", 65)} {
		_, err := r.Activate(version)
		require.Error(t, err, "version %q", version)
		assert.True(t, faults.IsKind(err, faults.InputValidation))
	}
	assert.Equal(t, "v1", r.GetActive(context.Background()).Version)
}

func TestRegistryMergesLiveMetadata(t *testing.T) {
	r := New(&stubProvider{info: map[string]any{"algorithm": "gradient_boosting"}})

	active := r.GetActive(context.Background())
	assert.Equal(t, "gradient_boosting", active.Metadata["algorithm"])
}

func TestRegistryMetadataFetchSoftFails(t *testing.T) {
	r := New(&stubProvider{err: errors.New("connection refused")})

	active := r.GetActive(context.Background())
	assert.Equal(t, "v1", active.Version)
	assert.Equal(t, "metadata unavailable", active.Metadata["status"])
}
