// Package library loads the playlist manifest: the JSON file naming each
// track's vocal and instrumental stem sources.
package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dhowden/tag"

	"github.com/stellarsound/ringlight/internal/domain"
)

// ErrInvalidManifest indicates a manifest that parsed but failed validation.
var ErrInvalidManifest = errors.New("invalid manifest")

// manifestEntry is one track in the JSON manifest.
type manifestEntry struct {
	Name         string `json:"name"`
	Vocal        string `json:"vocal"`
	Instrumental string `json:"instrumental"`
}

// Loader reads playlist manifests and enriches tracks with embedded
// metadata from local stem files.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a manifest loader.
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load parses the manifest at path into a playlist. Track names must be
// unique and every entry must name both stems. Metadata enrichment is
// best-effort: a local vocal stem with readable tags contributes Title and
// Artist, anything else leaves them empty.
func (l *Loader) Load(path string) ([]domain.Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	var entries []manifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(entries))
	tracks := make([]domain.Track, 0, len(entries))
	for i, entry := range entries {
		if entry.Name == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrInvalidManifest, i)
		}
		if entry.Vocal == "" || entry.Instrumental == "" {
			return nil, fmt.Errorf("%w: track %q must name both stems", ErrInvalidManifest, entry.Name)
		}
		if _, dup := seen[entry.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate track name %q", ErrInvalidManifest, entry.Name)
		}
		seen[entry.Name] = struct{}{}

		track := domain.Track{
			ID:              entry.Name,
			Name:            entry.Name,
			VocalRef:        entry.Vocal,
			InstrumentalRef: entry.Instrumental,
		}
		l.enrich(&track)
		tracks = append(tracks, track)
	}

	l.logger.Info("manifest loaded",
		slog.String("path", path),
		slog.Int("tracks", len(tracks)))
	return tracks, nil
}

// enrich fills Title and Artist from the vocal stem's embedded tags.
// Remote refs and unreadable files are skipped silently; playback does not
// depend on metadata.
func (l *Loader) enrich(t *domain.Track) {
	if strings.Contains(t.VocalRef, "://") {
		return
	}

	f, err := os.Open(t.VocalRef)
	if err != nil {
		l.logger.Debug("metadata skipped: stem not readable",
			slog.String("track", t.Name),
			slog.String("ref", t.VocalRef))
		return
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		l.logger.Debug("metadata skipped: no readable tags",
			slog.String("track", t.Name))
		return
	}

	t.Title = meta.Title()
	t.Artist = meta.Artist()
}
