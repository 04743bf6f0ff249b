package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mixesdbsync/internal/matcher"
	"mixesdbsync/internal/models"
	"mixesdbsync/internal/spotify"
)

// Searcher is the catalog search surface the finder consumes.
type Searcher interface {
	SearchTracks(ctx context.Context, query string, limit int) ([]spotify.Track, error)
	SearchExact(ctx context.Context, artist, title string, limit int) ([]spotify.Track, error)
}

// Alternative pairs a rejected catalog track with its diagnostic score.
type Alternative struct {
	Track spotify.Track
	Score float64
}

// TrackMatch is the per-entry outcome of the find-match workflow.
type TrackMatch struct {
	Entry     models.MixTrack
	Reference models.Track
	Result    matcher.Result
	// Candidate is the accepted catalog track, nil when unmatched.
	Candidate    *spotify.Track
	Alternatives []Alternative
	Strategy     string
	FromCache    bool
}

// Matched reports whether the entry resolved to a catalog track.
func (m TrackMatch) Matched() bool {
	return m.Candidate != nil
}

// Confidence bands the match score for display.
func (m TrackMatch) Confidence() models.Confidence {
	if !m.Matched() {
		return models.NoMatch
	}
	return models.ConfidenceFromScore(m.Result.TotalScore)
}

// Finder runs the cascading search strategies for one tracklist entry and
// scores the results with the match engine.
type Finder struct {
	search Searcher
	cfg    matcher.Config
	log    *slog.Logger
}

func NewFinder(search Searcher, cfg matcher.Config, logger *slog.Logger) *Finder {
	return &Finder{search: search, cfg: cfg, log: logger}
}

type strategy struct {
	name string
	run  func(ctx context.Context, entry models.MixTrack, ref models.Track) ([]spotify.Track, error)
}

// FindMatch resolves one tracklist entry against the catalog. Strategies are
// tried in order of precision; the first accepted result wins, otherwise the
// best-scoring attempt is reported for diagnostics.
func (f *Finder) FindMatch(ctx context.Context, entry models.MixTrack) (TrackMatch, error) {
	ref, err := matcher.Parse(entry.Raw())
	if err != nil {
		return TrackMatch{Entry: entry}, fmt.Errorf("parse entry %d: %w", entry.Position, err)
	}

	strategies := []strategy{
		{"exact", f.exactSearch},
		{"normalized", f.normalizedSearch},
		{"artist_title", f.artistTitleSearch},
		{"title_only", f.titleOnlySearch},
	}

	best := TrackMatch{Entry: entry, Reference: ref}
	for _, s := range strategies {
		found, err := s.run(ctx, entry, ref)
		if err != nil {
			f.log.Debug("search strategy failed", "strategy", s.name, "entry", entry.Raw(), "err", err)
			continue
		}
		if len(found) == 0 {
			continue
		}

		match, err := f.evaluate(entry, ref, found, s.name)
		if err != nil {
			return best, err
		}
		if match.Matched() {
			return match, nil
		}
		if match.Result.TotalScore > best.Result.TotalScore {
			best = match
		}
	}

	return best, nil
}

// evaluate parses the found tracks into descriptors and runs the match
// engine. Candidates that fail validation drop out individually.
func (f *Finder) evaluate(entry models.MixTrack, ref models.Track, found []spotify.Track, strategyName string) (TrackMatch, error) {
	descriptors := make([]models.Track, 0, len(found))
	kept := make([]spotify.Track, 0, len(found))
	for _, st := range found {
		desc, err := matcher.FromParts(st.Artists, st.Name)
		if err != nil {
			f.log.Debug("skipping unparseable candidate", "candidate", st.String(), "err", err)
			continue
		}
		descriptors = append(descriptors, desc)
		kept = append(kept, st)
	}

	result, err := matcher.Match(ref, descriptors, f.cfg)
	if err != nil {
		return TrackMatch{Entry: entry, Reference: ref}, err
	}

	match := TrackMatch{
		Entry:     entry,
		Reference: ref,
		Result:    result,
		Strategy:  strategyName,
	}
	if result.Accepted {
		chosen := kept[result.CandidateIndex]
		match.Candidate = &chosen
	}
	for _, alt := range result.Alternatives {
		match.Alternatives = append(match.Alternatives, Alternative{
			Track: kept[alt.Index],
			Score: alt.Score,
		})
	}
	return match, nil
}

func (f *Finder) exactSearch(ctx context.Context, entry models.MixTrack, _ models.Track) ([]spotify.Track, error) {
	return f.search.SearchExact(ctx, entry.Artist, entry.Title, 5)
}

func (f *Finder) normalizedSearch(ctx context.Context, entry models.MixTrack, ref models.Track) ([]spotify.Track, error) {
	query := matcher.Fold(entry.Artist) + " " + matcher.Fold(ref.BaseTitle)
	return f.search.SearchTracks(ctx, query, 10)
}

func (f *Finder) artistTitleSearch(ctx context.Context, _ models.MixTrack, ref models.Track) ([]spotify.Track, error) {
	query := fmt.Sprintf("artist:%q %s", ref.Artists[0], matcher.Fold(ref.BaseTitle))
	return f.search.SearchTracks(ctx, query, 10)
}

// titleOnlySearch is the last resort for rare or obscure artists.
func (f *Finder) titleOnlySearch(ctx context.Context, _ models.MixTrack, ref models.Track) ([]spotify.Track, error) {
	query := fmt.Sprintf("track:%q", strings.TrimSpace(ref.BaseTitle))
	return f.search.SearchTracks(ctx, query, 20)
}
