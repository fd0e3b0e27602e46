package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellarsound/ringlight/internal/domain"
	"github.com/stellarsound/ringlight/internal/testutil"
)

func testConfig(t *testing.T) Config {
	t.Helper()

	manifest := filepath.Join(t.TempDir(), "playlist.json")
	require.NoError(t, os.WriteFile(manifest, []byte(`[
		{"name": "alpha", "vocal": "alpha-v", "instrumental": "alpha-i"},
		{"name": "beta", "vocal": "beta-v", "instrumental": "beta-i"}
	]`), 0o644))

	cfg := DefaultConfig()
	cfg.UseMockAudio = true
	cfg.Runtime.ManifestPath = manifest
	cfg.Runtime.InnerSegments = 16
	cfg.Runtime.OuterSegments = 16
	cfg.Runtime.FFTSize = 256
	return cfg
}

func TestApplicationWiring(t *testing.T) {
	a, err := NewApplication(testConfig(t))
	require.NoError(t, err)
	defer a.Shutdown()

	require.NotNil(t, a.Engine())
	require.NotNil(t, a.Scene())
	require.NotNil(t, a.EventBus())
	assert.True(t, a.Engine().Initialized())
}

func TestApplicationLoadPlaylist(t *testing.T) {
	a, err := NewApplication(testConfig(t))
	require.NoError(t, err)
	defer a.Shutdown()

	require.NoError(t, a.LoadPlaylist())
	require.NoError(t, a.Engine().PlayNext())

	track, ok := a.Engine().CurrentTrack()
	require.True(t, ok)
	assert.Equal(t, "alpha", track.Name)
}

func TestApplicationLoadPlaylistMissingManifest(t *testing.T) {
	cfg := testConfig(t)
	cfg.Runtime.ManifestPath = filepath.Join(t.TempDir(), "missing.json")

	a, err := NewApplication(cfg)
	require.NoError(t, err)
	defer a.Shutdown()

	require.Error(t, a.LoadPlaylist())
}

func TestApplicationRunLifecycle(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	a, err := NewApplication(testConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		return a.Engine().Status() == domain.StatusPlaying
	}, time.Second, time.Millisecond)
	assert.True(t, a.Scene().Running())

	// The scene keeps producing frames while playback runs.
	require.Eventually(t, func() bool {
		return a.Scene().Frames() >= 2
	}, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	a.Shutdown()
	assert.False(t, a.Scene().Running())
	assert.False(t, a.Engine().Initialized())
}

func TestApplicationSceneReflectsEngineData(t *testing.T) {
	a, err := NewApplication(testConfig(t))
	require.NoError(t, err)
	defer a.Shutdown()

	require.NoError(t, a.LoadPlaylist())
	require.NoError(t, a.Engine().PlayNext())

	a.Scene().Step(0)
	inner, outer := a.Scene().Snapshot()
	assert.Len(t, inner, 16)
	assert.Len(t, outer, 16)
}
