package spotify

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// Credentials identify the Spotify application.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

func (c Credentials) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// ErrNotAuthenticated means no cached token exists; run the auth flow first.
var ErrNotAuthenticated = errors.New("not authenticated with Spotify, run `mixesdbsync auth`")

var scopes = []string{
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistReadCollaborative,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopeImageUpload, // playlist cover uploads
}

func newAuthenticator(creds Credentials) *spotifyauth.Authenticator {
	return spotifyauth.New(
		spotifyauth.WithClientID(creds.ClientID),
		spotifyauth.WithClientSecret(creds.ClientSecret),
		spotifyauth.WithRedirectURL(creds.RedirectURI),
		spotifyauth.WithScopes(scopes...),
	)
}

// NewClient builds an API client from the cached token. The underlying
// oauth2 client refreshes the access token transparently.
func NewClient(ctx context.Context, creds Credentials, tokenPath string) (*spotify.Client, error) {
	if !creds.Configured() {
		return nil, errors.New("spotify credentials not configured, set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET")
	}
	token, err := loadToken(tokenPath)
	if err != nil {
		return nil, ErrNotAuthenticated
	}
	httpClient := newAuthenticator(creds).Client(ctx, token)
	return spotify.New(httpClient, spotify.WithRetry(true)), nil
}

// Login runs the authorization-code flow: it listens on the redirect URI,
// prints the authorization URL for the browser, and caches the token.
func Login(ctx context.Context, creds Credentials, tokenPath string) (*spotify.Client, error) {
	if !creds.Configured() {
		return nil, errors.New("spotify credentials not configured, set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET")
	}

	redirect, err := url.Parse(creds.RedirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI: %w", err)
	}

	auth := newAuthenticator(creds)
	state := randomState()

	tokenCh := make(chan *oauth2.Token, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(redirect.Path, func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.Token(r.Context(), state, r)
		if err != nil {
			http.Error(w, "authorization failed", http.StatusForbidden)
			errCh <- err
			return
		}
		fmt.Fprintln(w, "Authorized. You can close this window.")
		tokenCh <- token
	})

	server := &http.Server{Addr: redirect.Host, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	defer server.Close()

	fmt.Println("Open this URL in your browser to authorize:")
	fmt.Println(auth.AuthURL(state))

	var token *oauth2.Token
	select {
	case token = <-tokenCh:
	case err := <-errCh:
		return nil, fmt.Errorf("authorization: %w", err)
	case <-time.After(5 * time.Minute):
		return nil, errors.New("authorization timed out")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err := saveToken(tokenPath, token); err != nil {
		return nil, fmt.Errorf("cache token: %w", err)
	}

	return spotify.New(auth.Client(ctx, token), spotify.WithRetry(true)), nil
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, err
	}
	if token.RefreshToken == "" && !token.Valid() {
		return nil, errors.New("cached token expired")
	}
	return &token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func randomState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
