package spotify

import "github.com/zmb3/spotify/v2"

// Track is a Spotify catalog track reduced to what matching and playlist
// assembly need.
type Track struct {
	ID          string
	URI         string
	Name        string
	Artists     []string
	Album       string
	DurationMS  int
	Popularity  int
	ExternalURL string
}

func (t Track) String() string {
	if len(t.Artists) == 0 {
		return t.Name
	}
	return t.Artists[0] + " - " + t.Name
}

func fromFullTrack(ft spotify.FullTrack) Track {
	artists := make([]string, len(ft.Artists))
	for i, a := range ft.Artists {
		artists[i] = a.Name
	}
	return Track{
		ID:          string(ft.ID),
		URI:         string(ft.URI),
		Name:        ft.Name,
		Artists:     artists,
		Album:       ft.Album.Name,
		DurationMS:  int(ft.Duration),
		Popularity:  int(ft.Popularity),
		ExternalURL: ft.ExternalURLs["spotify"],
	}
}

// Playlist is a Spotify playlist reduced to sync needs.
type Playlist struct {
	ID         string
	Name       string
	URL        string
	Owner      string
	TrackCount int
}

func fromSimplePlaylist(sp spotify.SimplePlaylist) Playlist {
	return Playlist{
		ID:         string(sp.ID),
		Name:       sp.Name,
		URL:        sp.ExternalURLs["spotify"],
		Owner:      sp.Owner.DisplayName,
		TrackCount: int(sp.Tracks.Total),
	}
}

func fromFullPlaylist(fp *spotify.FullPlaylist) Playlist {
	p := fromSimplePlaylist(fp.SimplePlaylist)
	p.TrackCount = int(fp.Tracks.Total)
	return p
}
