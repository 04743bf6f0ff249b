package spotify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/zmb3/spotify/v2"
)

// Client wraps the Spotify Web API with the operations the sync workflow
// needs: track search, playlist assembly, cover upload.
type Client struct {
	api *spotify.Client
	log *slog.Logger

	httpClient *http.Client // cover image downloads
}

func New(api *spotify.Client, logger *slog.Logger) *Client {
	return &Client{
		api:        api,
		log:        logger,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// CurrentUser returns the authenticated user's ID and display name.
func (c *Client) CurrentUser(ctx context.Context) (id, displayName string, err error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return "", "", fmt.Errorf("current user: %w", err)
	}
	return user.ID, user.DisplayName, nil
}

// SearchTracks runs a free-form track search.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]Track, error) {
	result, err := c.api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	if result.Tracks == nil {
		return nil, nil
	}
	tracks := make([]Track, 0, len(result.Tracks.Tracks))
	for _, ft := range result.Tracks.Tracks {
		tracks = append(tracks, fromFullTrack(ft))
	}
	return tracks, nil
}

// SearchExact queries with field filters for artist and track title.
func (c *Client) SearchExact(ctx context.Context, artist, title string, limit int) ([]Track, error) {
	return c.SearchTracks(ctx, fmt.Sprintf("artist:%q track:%q", artist, title), limit)
}

// CreatePlaylist creates a playlist for the current user.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string, public bool) (Playlist, error) {
	userID, _, err := c.CurrentUser(ctx)
	if err != nil {
		return Playlist{}, err
	}
	fp, err := c.api.CreatePlaylistForUser(ctx, userID, name, description, public, false)
	if err != nil {
		return Playlist{}, fmt.Errorf("create playlist %q: %w", name, err)
	}
	return fromFullPlaylist(fp), nil
}

// FindPlaylistByName scans the current user's playlists for an exact name
// match. Returns nil when none exists.
func (c *Client) FindPlaylistByName(ctx context.Context, name string) (*Playlist, error) {
	offset := 0
	for {
		page, err := c.api.CurrentUsersPlaylists(ctx, spotify.Limit(50), spotify.Offset(offset))
		if err != nil {
			return nil, fmt.Errorf("list playlists: %w", err)
		}
		for _, sp := range page.Playlists {
			if sp.Name == name {
				p := fromSimplePlaylist(sp)
				return &p, nil
			}
		}
		if len(page.Playlists) < 50 {
			return nil, nil
		}
		offset += 50
	}
}

// ClearPlaylist removes every track from a playlist.
func (c *Client) ClearPlaylist(ctx context.Context, playlistID string) error {
	if err := c.api.ReplacePlaylistTracks(ctx, spotify.ID(playlistID)); err != nil {
		return fmt.Errorf("clear playlist: %w", err)
	}
	return nil
}

// AddTracks appends tracks to a playlist in API-sized batches.
func (c *Client) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	const batchSize = 100
	for start := 0; start < len(trackIDs); start += batchSize {
		end := min(start+batchSize, len(trackIDs))
		batch := make([]spotify.ID, 0, end-start)
		for _, id := range trackIDs[start:end] {
			batch = append(batch, spotify.ID(id))
		}
		if _, err := c.api.AddTracksToPlaylist(ctx, spotify.ID(playlistID), batch...); err != nil {
			return fmt.Errorf("add tracks: %w", err)
		}
	}
	return nil
}

// SetCoverImage downloads an image, fits it under Spotify's 256 KB JPEG cap
// and uploads it as the playlist cover. Covers are cosmetic: callers should
// log failures rather than abort a sync.
func (c *Client) SetCoverImage(ctx context.Context, playlistID, imageURL string) error {
	data, err := c.downloadImage(ctx, imageURL)
	if err != nil {
		return err
	}
	jpegData, err := prepareCoverImage(data)
	if err != nil {
		return fmt.Errorf("prepare cover: %w", err)
	}
	if err := c.api.SetPlaylistImage(ctx, spotify.ID(playlistID), bytes.NewReader(jpegData)); err != nil {
		return fmt.Errorf("upload cover: %w", err)
	}
	return nil
}

func (c *Client) downloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download cover: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download cover: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("download cover: empty body")
	}
	return data, nil
}
