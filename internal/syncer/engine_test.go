package syncer

import (
	"context"
	"errors"
	"testing"

	"mixesdbsync/internal/matcher"
	"mixesdbsync/internal/models"
	"mixesdbsync/internal/spotify"
)

type stubFetcher struct {
	mix models.Mix
	err error
}

func (s *stubFetcher) FetchMix(ctx context.Context, pageURL string) (models.Mix, error) {
	return s.mix, s.err
}

type stubPlaylister struct {
	existing *spotify.Playlist
	coverErr error

	createdName   string
	createdDesc   string
	createdPublic bool
	cleared       []string
	addedTo       string
	addedIDs      []string
	coverSet      string
}

func (s *stubPlaylister) CreatePlaylist(ctx context.Context, name, description string, public bool) (spotify.Playlist, error) {
	s.createdName = name
	s.createdDesc = description
	s.createdPublic = public
	return spotify.Playlist{ID: "pl-new", Name: name, URL: "https://open.spotify.com/playlist/pl-new"}, nil
}

func (s *stubPlaylister) FindPlaylistByName(ctx context.Context, name string) (*spotify.Playlist, error) {
	return s.existing, nil
}

func (s *stubPlaylister) ClearPlaylist(ctx context.Context, playlistID string) error {
	s.cleared = append(s.cleared, playlistID)
	return nil
}

func (s *stubPlaylister) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	s.addedTo = playlistID
	s.addedIDs = trackIDs
	return nil
}

func (s *stubPlaylister) SetCoverImage(ctx context.Context, playlistID, imageURL string) error {
	s.coverSet = imageURL
	return s.coverErr
}

func testMix() models.Mix {
	return models.Mix{
		URL:   "https://www.mixesdb.com/w/2020-01-01_-_A_-_B",
		Title: "A - B (2020-01-01)",
		Tracks: []models.MixTrack{
			{Position: 1, Artist: "Âme", Title: "Rej"},
			{Position: 2, Artist: "Unknown Artist", Title: "Unreleased Dubplate"},
		},
	}
}

// engineSearcher matches the first mix entry and nothing else.
func engineSearcher() *stubSearcher {
	return &stubSearcher{exact: []spotify.Track{catalogTrack("t1", "Rej", "Âme")}}
}

func newTestEngine(fetcher MixFetcher, playlist Playlister, search Searcher) *Engine {
	logger := discardLogger()
	return NewEngine(fetcher, playlist, NewFinder(search, matcher.DefaultConfig(), logger), nil, logger)
}

func TestSyncDryRun(t *testing.T) {
	playlist := &stubPlaylister{}
	engine := newTestEngine(&stubFetcher{mix: testMix()}, playlist, engineSearcher())

	result, err := engine.Sync(context.Background(), "url", Options{DryRun: true, PlaylistPrefix: "MixesDB: "})
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if len(result.Matched) != 1 || len(result.Unmatched) != 1 {
		t.Errorf("matched/unmatched = %d/%d, expected 1/1", len(result.Matched), len(result.Unmatched))
	}
	if result.Playlist != nil {
		t.Error("dry run created a playlist")
	}
	if playlist.createdName != "" || playlist.addedTo != "" {
		t.Errorf("dry run mutated the playlist: %+v", playlist)
	}
	if result.MatchRate() != 0.5 {
		t.Errorf("match rate = %v, expected 0.5", result.MatchRate())
	}
}

func TestSyncCreatesPlaylist(t *testing.T) {
	playlist := &stubPlaylister{}
	engine := newTestEngine(&stubFetcher{mix: testMix()}, playlist, engineSearcher())

	result, err := engine.Sync(context.Background(), "url", Options{
		Public:         true,
		UpdateExisting: true, // nothing existing, falls through to create
		PlaylistPrefix: "MixesDB: ",
	})
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if playlist.createdName != "MixesDB: A - B (2020-01-01)" {
		t.Errorf("created name = %q", playlist.createdName)
	}
	if playlist.createdDesc != "Synced from MixesDB: https://www.mixesdb.com/w/2020-01-01_-_A_-_B" {
		t.Errorf("created description = %q", playlist.createdDesc)
	}
	if !playlist.createdPublic {
		t.Error("expected a public playlist")
	}
	if playlist.addedTo != "pl-new" || len(playlist.addedIDs) != 1 || playlist.addedIDs[0] != "t1" {
		t.Errorf("added %v to %q", playlist.addedIDs, playlist.addedTo)
	}
	if result.Playlist == nil || result.Playlist.ID != "pl-new" {
		t.Errorf("result playlist = %+v", result.Playlist)
	}
}

func TestSyncCustomName(t *testing.T) {
	playlist := &stubPlaylister{}
	engine := newTestEngine(&stubFetcher{mix: testMix()}, playlist, engineSearcher())

	_, err := engine.Sync(context.Background(), "url", Options{PlaylistName: "My Set"})
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if playlist.createdName != "My Set" {
		t.Errorf("created name = %q, expected the override", playlist.createdName)
	}
}

func TestSyncUpdatesExistingPlaylist(t *testing.T) {
	playlist := &stubPlaylister{
		existing: &spotify.Playlist{ID: "pl-old", Name: "MixesDB: A - B (2020-01-01)"},
	}
	engine := newTestEngine(&stubFetcher{mix: testMix()}, playlist, engineSearcher())

	result, err := engine.Sync(context.Background(), "url", Options{
		UpdateExisting: true,
		PlaylistPrefix: "MixesDB: ",
	})
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if playlist.createdName != "" {
		t.Errorf("created a duplicate playlist %q", playlist.createdName)
	}
	if len(playlist.cleared) != 1 || playlist.cleared[0] != "pl-old" {
		t.Errorf("cleared = %v, expected pl-old", playlist.cleared)
	}
	if playlist.addedTo != "pl-old" {
		t.Errorf("added to %q, expected pl-old", playlist.addedTo)
	}
	if result.Playlist == nil || result.Playlist.ID != "pl-old" {
		t.Errorf("result playlist = %+v", result.Playlist)
	}
}

func TestSyncCoverFailureTolerated(t *testing.T) {
	mix := testMix()
	mix.ImageURL = "https://example.org/cover.jpg"
	playlist := &stubPlaylister{coverErr: errors.New("image too large")}
	engine := newTestEngine(&stubFetcher{mix: mix}, playlist, engineSearcher())

	result, err := engine.Sync(context.Background(), "url", Options{PlaylistPrefix: "MixesDB: "})
	if err != nil {
		t.Fatalf("cover failure aborted the sync: %v", err)
	}
	if playlist.coverSet != mix.ImageURL {
		t.Errorf("cover upload not attempted: %q", playlist.coverSet)
	}
	if result.Playlist == nil {
		t.Error("playlist missing from result")
	}
}

func TestSyncNothingMatched(t *testing.T) {
	mix := testMix()
	mix.Tracks = mix.Tracks[1:] // only the unmatched entry
	playlist := &stubPlaylister{}
	engine := newTestEngine(&stubFetcher{mix: mix}, playlist, &stubSearcher{})

	result, err := engine.Sync(context.Background(), "url", Options{PlaylistPrefix: "MixesDB: "})
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if result.Playlist != nil || playlist.createdName != "" {
		t.Error("playlist created with zero matches")
	}
}

func TestSyncFetchError(t *testing.T) {
	engine := newTestEngine(&stubFetcher{err: errors.New("network down")}, &stubPlaylister{}, &stubSearcher{})

	if _, err := engine.Sync(context.Background(), "url", Options{}); err == nil {
		t.Error("expected fetch error to propagate")
	}
}

func TestMatchTracksToleratesInvalidEntries(t *testing.T) {
	mix := testMix()
	mix.Tracks = append(mix.Tracks, models.MixTrack{Position: 3, Title: "No Artist"})
	engine := newTestEngine(&stubFetcher{mix: mix}, &stubPlaylister{}, engineSearcher())

	matches, err := engine.MatchTracks(context.Background(), mix)
	if err != nil {
		t.Fatalf("MatchTracks returned error: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("got %d results, expected one per entry", len(matches))
	}
	if !matches[0].Matched() {
		t.Error("first entry should match")
	}
	if matches[2].Matched() {
		t.Error("invalid entry should be reported unmatched")
	}
}

func TestMatchTracksHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := newTestEngine(&stubFetcher{mix: testMix()}, &stubPlaylister{}, engineSearcher())
	if _, err := engine.MatchTracks(ctx, testMix()); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, expected context.Canceled", err)
	}
}
