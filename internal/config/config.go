// Package config loads process configuration from the environment, with an
// optional .env file in the working directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"mixesdbsync/internal/matcher"
	"mixesdbsync/internal/spotify"
)

const defaultRedirectURI = "http://localhost:8888/callback"

// Config is the full process configuration.
type Config struct {
	Spotify spotify.Credentials

	// Matcher thresholds, see matcher.Config.
	MinScore          float64
	PerArtistFloor    float64
	AlternativesFloor float64

	PlaylistPrefix string
	PlaylistPublic bool
	UpdateExisting bool

	// CacheDir holds the token cache and the match registry.
	CacheDir string
}

// Load reads the environment, merging a .env file when present.
func Load() (Config, error) {
	// Missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	cfg := Config{
		Spotify: spotify.Credentials{
			ClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
			ClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
			RedirectURI:  envString("SPOTIFY_REDIRECT_URI", defaultRedirectURI),
		},
		PlaylistPrefix: envString("SYNC_PLAYLIST_PREFIX", "MixesDB: "),
		CacheDir:       envString("MIXESDBSYNC_CACHE_DIR", defaultCacheDir()),
	}

	var err error
	if cfg.MinScore, err = envFloat("MATCHER_MIN_SCORE", 90); err != nil {
		return Config{}, err
	}
	if cfg.PerArtistFloor, err = envFloat("MATCHER_PER_ARTIST_FLOOR", 85); err != nil {
		return Config{}, err
	}
	if cfg.AlternativesFloor, err = envFloat("MATCHER_ALTERNATIVES_FLOOR", 50); err != nil {
		return Config{}, err
	}
	if cfg.PlaylistPublic, err = envBool("SYNC_PLAYLIST_PUBLIC", true); err != nil {
		return Config{}, err
	}
	if cfg.UpdateExisting, err = envBool("SYNC_UPDATE_EXISTING", true); err != nil {
		return Config{}, err
	}

	if err := cfg.Matcher().Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Matcher builds the core scoring config. CollectAlternatives is set by the
// caller when verbose reporting is requested.
func (c Config) Matcher() matcher.Config {
	return matcher.Config{
		MinScore:          c.MinScore,
		PerArtistFloor:    c.PerArtistFloor,
		AlternativesFloor: c.AlternativesFloor,
	}
}

// TokenPath is the OAuth token cache location.
func (c Config) TokenPath() string {
	return filepath.Join(c.CacheDir, "spotify_token.json")
}

// RegistryPath is the sqlite match registry location.
func (c Config) RegistryPath() string {
	return filepath.Join(c.CacheDir, "registry.db")
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mixesdbsync"
	}
	return filepath.Join(home, ".mixesdbsync")
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
