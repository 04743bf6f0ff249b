package matcher

import (
	"sort"

	"mixesdbsync/internal/models"
)

// Component weights for the total score.
const (
	artistWeight = 0.30
	titleWeight  = 0.40
	remixWeight  = 0.30
)

// Hard-failed candidates still show up in alternatives when the title alone
// matches this well, to aid debugging of near misses.
const hardFailTitleFloor = 85

// Components are the per-matcher scores, each 0-100.
type Components struct {
	Artist float64
	Title  float64
	Remix  float64
}

// Alternative is a non-accepted candidate retained for diagnostic display.
type Alternative struct {
	Index int
	Track models.Track
	Score float64
}

// Result is the outcome of matching one reference track against a candidate
// list.
type Result struct {
	// TotalScore is the weighted total of the best candidate, 0 when the
	// candidate list is empty or every candidate hard-failed.
	TotalScore float64
	Components Components
	Accepted   bool
	// Candidate is the chosen descriptor, nil unless accepted.
	Candidate *models.Track
	// CandidateIndex is the chosen candidate's position in the input slice,
	// -1 unless accepted.
	CandidateIndex int
	Alternatives   []Alternative
}

// Confidence bands the result's total score, NoMatch when not accepted.
func (r Result) Confidence() models.Confidence {
	if !r.Accepted {
		return models.NoMatch
	}
	return models.ConfidenceFromScore(r.TotalScore)
}

type scoredCandidate struct {
	index      int
	components Components
	total      float64
	hardFail   bool
}

// Match scores every candidate against the reference and selects the best.
// It is a pure function of its inputs: safe to call concurrently across
// tracklist entries. An empty candidate list is a legitimate no-match, not an
// error. Candidates that fail validation are skipped individually.
func Match(reference models.Track, candidates []models.Track, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if len(reference.Artists) == 0 || reference.BaseTitle == "" {
		return Result{}, &ValidationError{Raw: reference.String(), Reason: "reference has no artist or title"}
	}

	scored := make([]scoredCandidate, 0, len(candidates))
	for i, cand := range candidates {
		if len(cand.Artists) == 0 || cand.BaseTitle == "" {
			continue
		}

		artistScore, artistFail := scoreArtists(reference.Artists, cand.Artists, cfg.PerArtistFloor)
		titleScore := scoreTitle(reference.BaseTitle, cand.BaseTitle)
		remixScore, remixFail := scoreRemix(reference.Remix, cand.Remix, cfg.PerArtistFloor)

		sc := scoredCandidate{
			index: i,
			components: Components{
				Artist: artistScore,
				Title:  titleScore,
				Remix:  remixScore,
			},
			hardFail: artistFail || remixFail,
		}
		if !sc.hardFail {
			sc.total = artistWeight*artistScore + titleWeight*titleScore + remixWeight*remixScore
		}
		scored = append(scored, sc)
	}

	result := Result{CandidateIndex: -1}

	best := -1 // index into scored
	for i, sc := range scored {
		if sc.hardFail {
			continue
		}
		if best < 0 || sc.total > scored[best].total {
			best = i
		}
	}

	if best >= 0 {
		result.TotalScore = scored[best].total
		result.Components = scored[best].components
		if scored[best].total >= cfg.MinScore {
			result.Accepted = true
			result.CandidateIndex = scored[best].index
			chosen := candidates[scored[best].index]
			result.Candidate = &chosen
		}
	}

	if cfg.CollectAlternatives {
		result.Alternatives = collectAlternatives(scored, best, result.Accepted, candidates, cfg)
	}

	return result, nil
}

func collectAlternatives(scored []scoredCandidate, best int, accepted bool, candidates []models.Track, cfg Config) []Alternative {
	var alts []Alternative
	for i, sc := range scored {
		if accepted && i == best {
			continue
		}
		keep := sc.total >= cfg.AlternativesFloor
		if sc.hardFail {
			keep = sc.components.Title >= hardFailTitleFloor
		}
		if !keep {
			continue
		}
		alts = append(alts, Alternative{
			Index: sc.index,
			Track: candidates[sc.index],
			Score: sc.total,
		})
	}
	sort.SliceStable(alts, func(a, b int) bool { return alts[a].Score > alts[b].Score })
	return alts
}
