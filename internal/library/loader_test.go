package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stellarsound/ringlight/internal/logger"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "playlist.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoaderLoadsTracks(t *testing.T) {
	path := writeManifest(t, `[
		{"name": "first", "vocal": "https://cdn.example/first-v.mp3", "instrumental": "https://cdn.example/first-i.mp3"},
		{"name": "second", "vocal": "stems/second-v.wav", "instrumental": "stems/second-i.wav"}
	]`)

	loader := NewLoader(logger.NewTestLogger())
	tracks, err := loader.Load(path)
	require.NoError(t, err)
	require.Len(t, tracks, 2)

	assert.Equal(t, "first", tracks[0].Name)
	assert.Equal(t, "https://cdn.example/first-v.mp3", tracks[0].VocalRef)
	assert.Equal(t, "https://cdn.example/first-i.mp3", tracks[0].InstrumentalRef)

	// No readable tags anywhere, so display falls back to the name.
	assert.Empty(t, tracks[1].Title)
	assert.Equal(t, "second", tracks[1].DisplayName())
}

func TestLoaderMissingFile(t *testing.T) {
	loader := NewLoader(logger.NewTestLogger())
	_, err := loader.Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoaderMalformedJSON(t *testing.T) {
	path := writeManifest(t, `{"not": "a playlist"`)
	loader := NewLoader(logger.NewTestLogger())
	_, err := loader.Load(path)
	require.Error(t, err)
}

func TestLoaderValidation(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
	}{
		{
			name:     "missing name",
			manifest: `[{"vocal": "v.mp3", "instrumental": "i.mp3"}]`,
		},
		{
			name:     "missing vocal stem",
			manifest: `[{"name": "a", "instrumental": "i.mp3"}]`,
		},
		{
			name:     "missing instrumental stem",
			manifest: `[{"name": "a", "vocal": "v.mp3"}]`,
		},
		{
			name: "duplicate names",
			manifest: `[
				{"name": "a", "vocal": "v1.mp3", "instrumental": "i1.mp3"},
				{"name": "a", "vocal": "v2.mp3", "instrumental": "i2.mp3"}
			]`,
		},
	}

	loader := NewLoader(logger.NewTestLogger())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeManifest(t, tc.manifest)
			_, err := loader.Load(path)
			require.ErrorIs(t, err, ErrInvalidManifest)
		})
	}
}

func TestLoaderEmptyManifest(t *testing.T) {
	path := writeManifest(t, `[]`)
	loader := NewLoader(logger.NewTestLogger())
	tracks, err := loader.Load(path)
	require.NoError(t, err)
	assert.Empty(t, tracks)
}
