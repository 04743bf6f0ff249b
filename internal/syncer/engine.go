// Package syncer orchestrates the MixesDB-to-Spotify sync: fetch a tracklist,
// match every entry against the catalog, assemble a playlist.
package syncer

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"mixesdbsync/internal/database"
	"mixesdbsync/internal/matcher"
	"mixesdbsync/internal/models"
	"mixesdbsync/internal/spotify"
)

// MixFetcher is the tracklist-page collaborator.
type MixFetcher interface {
	FetchMix(ctx context.Context, pageURL string) (models.Mix, error)
}

// Playlister is the playlist-mutation collaborator.
type Playlister interface {
	CreatePlaylist(ctx context.Context, name, description string, public bool) (spotify.Playlist, error)
	FindPlaylistByName(ctx context.Context, name string) (*spotify.Playlist, error)
	ClearPlaylist(ctx context.Context, playlistID string) error
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error
	SetCoverImage(ctx context.Context, playlistID, imageURL string) error
}

// Options control one sync run.
type Options struct {
	// PlaylistName overrides the prefix+title default.
	PlaylistName string
	Public       bool
	// DryRun matches tracks but skips all playlist mutation.
	DryRun bool
	// UpdateExisting reuses a playlist with the same name instead of
	// creating a duplicate.
	UpdateExisting bool
	PlaylistPrefix string
}

// Result is the outcome of one sync run.
type Result struct {
	Mix       models.Mix
	Matched   []TrackMatch
	Unmatched []TrackMatch
	Playlist  *spotify.Playlist
}

func (r Result) TotalTracks() int {
	return len(r.Matched) + len(r.Unmatched)
}

func (r Result) MatchRate() float64 {
	if r.TotalTracks() == 0 {
		return 0
	}
	return float64(len(r.Matched)) / float64(r.TotalTracks())
}

// Engine wires the collaborators around the match core.
type Engine struct {
	mixes    MixFetcher
	playlist Playlister
	finder   *Finder
	registry *sql.DB // nil disables the cache
	log      *slog.Logger
}

func NewEngine(mixes MixFetcher, playlist Playlister, finder *Finder, registry *sql.DB, logger *slog.Logger) *Engine {
	return &Engine{
		mixes:    mixes,
		playlist: playlist,
		finder:   finder,
		registry: registry,
		log:      logger,
	}
}

// MatchTracks resolves every entry of a mix. Entries that fail validation are
// reported unmatched; they never abort the rest of the tracklist.
func (e *Engine) MatchTracks(ctx context.Context, mix models.Mix) ([]TrackMatch, error) {
	results := make([]TrackMatch, 0, len(mix.Tracks))
	for _, entry := range mix.Tracks {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		if cached := e.lookupCached(entry); cached != nil {
			results = append(results, *cached)
			continue
		}

		match, err := e.finder.FindMatch(ctx, entry)
		if err != nil {
			e.log.Warn("entry skipped", "position", entry.Position, "entry", entry.Raw(), "err", err)
			results = append(results, TrackMatch{Entry: entry})
			continue
		}
		if match.Matched() {
			e.recordMatch(match)
		}
		results = append(results, match)
	}
	return results, nil
}

// Sync performs the full fetch-match-playlist workflow.
func (e *Engine) Sync(ctx context.Context, pageURL string, opts Options) (Result, error) {
	mix, err := e.mixes.FetchMix(ctx, pageURL)
	if err != nil {
		return Result{}, fmt.Errorf("fetch mix: %w", err)
	}
	e.log.Info("fetched mix", "title", mix.Title, "tracks", len(mix.Tracks))

	matches, err := e.MatchTracks(ctx, mix)
	if err != nil {
		return Result{Mix: mix}, err
	}

	result := Result{Mix: mix}
	for _, m := range matches {
		if m.Matched() {
			result.Matched = append(result.Matched, m)
		} else {
			result.Unmatched = append(result.Unmatched, m)
		}
	}

	if opts.DryRun || len(result.Matched) == 0 {
		return result, nil
	}

	playlist, err := e.buildPlaylist(ctx, mix, result.Matched, opts)
	if err != nil {
		return result, err
	}
	result.Playlist = playlist
	return result, nil
}

func (e *Engine) buildPlaylist(ctx context.Context, mix models.Mix, matched []TrackMatch, opts Options) (*spotify.Playlist, error) {
	name := opts.PlaylistName
	if name == "" {
		name = opts.PlaylistPrefix + mix.Title
	}

	var playlist *spotify.Playlist
	if opts.UpdateExisting {
		existing, err := e.playlist.FindPlaylistByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if err := e.playlist.ClearPlaylist(ctx, existing.ID); err != nil {
				return nil, err
			}
			playlist = existing
			e.log.Info("reusing existing playlist", "name", name, "id", existing.ID)
		}
	}

	if playlist == nil {
		created, err := e.playlist.CreatePlaylist(ctx, name, "Synced from MixesDB: "+mix.URL, opts.Public)
		if err != nil {
			return nil, err
		}
		playlist = &created
		e.log.Info("created playlist", "name", name, "id", created.ID)
	}

	trackIDs := make([]string, 0, len(matched))
	for _, m := range matched {
		trackIDs = append(trackIDs, m.Candidate.ID)
	}
	if err := e.playlist.AddTracks(ctx, playlist.ID, trackIDs); err != nil {
		return nil, err
	}

	// Covers are cosmetic; a failed upload never fails the sync.
	if mix.ImageURL != "" {
		if err := e.playlist.SetCoverImage(ctx, playlist.ID, mix.ImageURL); err != nil {
			e.log.Warn("cover upload failed", "err", err)
		}
	}

	return playlist, nil
}

// sourceKey is the registry key for a tracklist entry: the folded raw form,
// stable across casing and diacritics.
func sourceKey(entry models.MixTrack) string {
	return matcher.Fold(entry.Raw())
}

func (e *Engine) lookupCached(entry models.MixTrack) *TrackMatch {
	if e.registry == nil {
		return nil
	}
	cached, err := database.LookupMatch(e.registry, sourceKey(entry))
	if err != nil {
		e.log.Debug("registry lookup failed", "entry", entry.Raw(), "err", err)
		return nil
	}
	if cached == nil {
		return nil
	}
	return &TrackMatch{
		Entry:     entry,
		Candidate: &spotify.Track{ID: cached.SpotifyID, URI: cached.SpotifyURI},
		Result:    matcher.Result{TotalScore: cached.Score, Accepted: true, CandidateIndex: -1},
		Strategy:  "registry",
		FromCache: true,
	}
}

func (e *Engine) recordMatch(m TrackMatch) {
	if e.registry == nil {
		return
	}
	err := database.UpsertMatch(e.registry, database.Match{
		SourceKey:  sourceKey(m.Entry),
		SpotifyID:  m.Candidate.ID,
		SpotifyURI: m.Candidate.URI,
		Score:      m.Result.TotalScore,
	})
	if err != nil {
		e.log.Debug("registry upsert failed", "entry", m.Entry.Raw(), "err", err)
	}
}
