package mixesdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"mixesdbsync/internal/models"
)

const (
	apiBase   = "https://www.mixesdb.com/db/api.php"
	userAgent = "mixesdbsync/1.0 (tracklist sync tool)"
)

// ErrMixNotFound means the requested page does not exist on MixesDB.
var ErrMixNotFound = errors.New("mix not found")

// Client talks to the MixesDB MediaWiki API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		// MixesDB is a small community wiki; stay well under 2 req/s.
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
		baseURL: apiBase,
	}
}

type parseResponse struct {
	Parse struct {
		Wikitext struct {
			Content string `json:"*"`
		} `json:"wikitext"`
	} `json:"parse"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// FetchMix fetches and parses a mix page. The cover image URL is resolved
// best-effort; a missing image never fails the fetch.
func (c *Client) FetchMix(ctx context.Context, pageURL string) (models.Mix, error) {
	pageTitle := extractPageTitle(pageURL)
	if pageTitle == "" {
		return models.Mix{}, fmt.Errorf("invalid MixesDB URL: %s", pageURL)
	}

	wikitext, err := c.GetWikitext(ctx, pageTitle)
	if err != nil {
		return models.Mix{}, err
	}

	mix, imageFilename := ParseMix(wikitext, pageURL)
	if imageFilename != "" {
		if imageURL, err := c.imageURL(ctx, imageFilename); err == nil {
			mix.ImageURL = imageURL
		}
	}
	return mix, nil
}

// GetWikitext fetches the raw wikitext of a page.
func (c *Client) GetWikitext(ctx context.Context, pageTitle string) (string, error) {
	params := url.Values{
		"action": {"parse"},
		"page":   {pageTitle},
		"prop":   {"wikitext"},
		"format": {"json"},
	}

	var res parseResponse
	if err := c.get(ctx, params, &res); err != nil {
		return "", err
	}
	if res.Error != nil {
		if strings.Contains(res.Error.Code, "missingtitle") {
			return "", fmt.Errorf("%w: %s", ErrMixNotFound, pageTitle)
		}
		return "", fmt.Errorf("mixesdb api error: %s", res.Error.Info)
	}
	if res.Parse.Wikitext.Content == "" {
		return "", fmt.Errorf("unexpected api response for %s", pageTitle)
	}
	return res.Parse.Wikitext.Content, nil
}

type imageInfoResponse struct {
	Query struct {
		Pages map[string]struct {
			ImageInfo []struct {
				URL string `json:"url"`
			} `json:"imageinfo"`
		} `json:"pages"`
	} `json:"query"`
}

func (c *Client) imageURL(ctx context.Context, filename string) (string, error) {
	params := url.Values{
		"action": {"query"},
		"titles": {"File:" + filename},
		"prop":   {"imageinfo"},
		"iiprop": {"url"},
		"format": {"json"},
	}

	var res imageInfoResponse
	if err := c.get(ctx, params, &res); err != nil {
		return "", err
	}
	for _, page := range res.Query.Pages {
		if len(page.ImageInfo) > 0 && page.ImageInfo[0].URL != "" {
			return page.ImageInfo[0].URL, nil
		}
	}
	return "", fmt.Errorf("no image info for %s", filename)
}

func (c *Client) get(ctx context.Context, params url.Values, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mixesdb request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mixesdb api: status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(result)
}
