package mixesdb

import (
	"net/url"
	"regexp"
	"strings"

	"mixesdbsync/internal/models"
)

var (
	// Tracklist line: "# [MM] Artist - Title [Label]", timestamp and label
	// optional.
	trackLineRe = regexp.MustCompile(`^#\s*(?:\[(\d+(?::\d+)?)\])?\s*(.+?)\s+[-–]\s+(.+?)(?:\s*\[([^\]]+)\])?\s*$`)

	wikiLinkDisplayRe = regexp.MustCompile(`\[\[[^\]|]+\|([^\]]+)\]\]`)
	wikiLinkPlainRe   = regexp.MustCompile(`\[\[([^\]]+)\]\]`)

	categoryRe = regexp.MustCompile(`\[\[Category:([^\]]+)\]\]`)
	fileRe     = regexp.MustCompile(`(?i)\[\[(?:File|Image):([^\]|]+)`)

	spotifyURLRe    = regexp.MustCompile(`https?://open\.spotify\.com/[^\s\]|]+`)
	soundcloudURLRe = regexp.MustCompile(`https?://soundcloud\.com/[^\s\]|]+`)

	pageTitleRe = regexp.MustCompile(`mixesdb\.com/(?:w|db)/(.+?)(?:\?|#|$)`)
	mixTitleRe  = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})_-_(.+?)_-_(.+)$`)
)

// ParseMix extracts the tracklist and page metadata from raw wikitext.
// The image URL is left empty; the client resolves the filename separately.
func ParseMix(wikitext, pageURL string) (models.Mix, string) {
	mix := models.Mix{
		URL:           pageURL,
		Title:         formatMixTitle(extractPageTitle(pageURL)),
		Tracks:        parseTracks(wikitext),
		Categories:    extractCategories(wikitext),
		SpotifyURL:    spotifyURLRe.FindString(wikitext),
		SoundCloudURL: soundcloudURLRe.FindString(wikitext),
	}

	imageFilename := ""
	if m := fileRe.FindStringSubmatch(wikitext); m != nil {
		imageFilename = strings.TrimSpace(m[1])
	}
	return mix, imageFilename
}

func parseTracks(wikitext string) []models.MixTrack {
	var tracks []models.MixTrack
	position := 0

	for _, line := range strings.Split(wikitext, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "#") {
			continue
		}
		// Nested lists and section markers are not track entries.
		if strings.HasPrefix(line, "##") || strings.Contains(line, "==") {
			continue
		}

		m := trackLineRe.FindStringSubmatch(cleanWikiLinks(line))
		if m == nil {
			continue
		}

		position++
		tracks = append(tracks, models.MixTrack{
			Position: position,
			Artist:   strings.TrimSpace(m[2]),
			Title:    strings.TrimSpace(m[3]),
			Label:    strings.TrimSpace(m[4]),
		})
	}

	return tracks
}

// cleanWikiLinks converts [[Link|Display]] to Display and [[Link]] to Link.
func cleanWikiLinks(text string) string {
	text = wikiLinkDisplayRe.ReplaceAllString(text, "$1")
	return wikiLinkPlainRe.ReplaceAllString(text, "$1")
}

func extractCategories(wikitext string) []string {
	var categories []string
	for _, m := range categoryRe.FindAllStringSubmatch(wikitext, -1) {
		categories = append(categories, m[1])
	}
	return categories
}

// extractPageTitle pulls the wiki page title out of a MixesDB URL. Falls back
// to the last path segment for unrecognized shapes.
func extractPageTitle(pageURL string) string {
	if m := pageTitleRe.FindStringSubmatch(pageURL); m != nil {
		if unescaped, err := url.PathUnescape(m[1]); err == nil {
			return unescaped
		}
		return m[1]
	}
	trimmed := strings.TrimRight(pageURL, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// formatMixTitle turns "2019-05-12_-_Lukas_Sawicki_-_Huone_005" into
// "Lukas Sawicki - Huone 005 (2019-05-12)".
func formatMixTitle(pageTitle string) string {
	if m := mixTitleRe.FindStringSubmatch(pageTitle); m != nil {
		date := m[1]
		artist := strings.ReplaceAll(m[2], "_", " ")
		event := strings.ReplaceAll(m[3], "_", " ")
		return artist + " - " + event + " (" + date + ")"
	}
	return strings.ReplaceAll(pageTitle, "_", " ")
}
