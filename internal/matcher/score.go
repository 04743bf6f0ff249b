package matcher

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"mixesdbsync/internal/models"
)

// nameSimilarity scores two names on 0-100, comparing token-wise: every token
// of a must find a close counterpart in b, and the weakest token governs.
// Whole-name Jaro-Winkler alone over-scores distinct names sharing a long
// common word ("A Artist" vs "Z Artist"); per token it still tolerates typos
// ("Plex" vs "Plexx") while a fully distinct lead token scores near zero.
func nameSimilarity(a, b string) float64 {
	if a == b {
		return 100
	}
	aTokens := strings.Fields(a)
	bTokens := strings.Fields(b)
	if len(aTokens) == 0 || len(bTokens) == 0 {
		return 0
	}

	jw := metrics.NewJaroWinkler()
	weakest := 100.0
	for _, at := range aTokens {
		best := 0.0
		for _, bt := range bTokens {
			if at == bt {
				best = 100
				break
			}
			if sim := strutil.Similarity(at, bt, jw) * 100; sim > best {
				best = sim
			}
		}
		if best < weakest {
			weakest = best
		}
	}
	return weakest
}

// titleSimilarity scores two folded titles on 0-100, tolerant of token order.
func titleSimilarity(a, b string) float64 {
	if a == b {
		return 100
	}
	return strutil.Similarity(tokenSort(a), tokenSort(b), metrics.NewSorensenDice()) * 100
}

func tokenSort(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// scoreArtists checks that every reference artist is present in the candidate.
// Extra candidate artists are tolerated and do not penalize. A reference
// artist whose best similarity falls below floor hard-fails the candidate.
func scoreArtists(reference, candidate []string, floor float64) (score float64, hardFail bool) {
	if len(reference) == 0 || len(candidate) == 0 {
		return 0, true
	}

	folded := make([]string, len(candidate))
	for i, c := range candidate {
		folded[i] = fold(c)
	}

	var sum float64
	for _, ref := range reference {
		refFolded := fold(ref)
		best := 0.0
		for _, cand := range folded {
			if sim := nameSimilarity(refFolded, cand); sim > best {
				best = sim
			}
		}
		if best < floor {
			return 0, true
		}
		sum += best
	}
	return sum / float64(len(reference)), false
}

// scoreTitle compares base titles. Low scores only depress the total; there
// is no hard-fail path here.
func scoreTitle(reference, candidate string) float64 {
	return titleSimilarity(comparableTitle(reference), comparableTitle(candidate))
}

// kindSynonyms collapses near-synonym kinds onto one representative so
// "Mix" vs "Version" and "Remix" vs "Rework" count as compatible.
var kindSynonyms = map[models.RemixKind]models.RemixKind{
	models.KindVersion: models.KindMix,
	models.KindRework:  models.KindRemix,
}

func kindGroup(k models.RemixKind) models.RemixKind {
	if g, ok := kindSynonyms[k]; ok {
		return g
	}
	return k
}

func kindCompatibility(a, b models.RemixKind) float64 {
	switch {
	case a == b:
		return 100
	case kindGroup(a) == kindGroup(b):
		return 85
	default:
		return 0
	}
}

// Remix component blend. The remixer name carries most of the identity; the
// kind word is secondary.
const (
	remixArtistWeight = 0.7
	remixKindWeight   = 0.3
)

// scoreRemix applies the version-identity decision table. A presence mismatch
// in either direction hard-fails: "Track" is never the same recording as
// "Track (X Remix)". Remaster flags play no role here.
func scoreRemix(reference, candidate *models.Remix, floor float64) (score float64, hardFail bool) {
	switch {
	case reference == nil && candidate == nil:
		return 100, false
	case reference == nil || candidate == nil:
		return 0, true
	}

	kindScore := kindCompatibility(reference.Kind, candidate.Kind)

	refArtist := fold(reference.Artist)
	candArtist := fold(candidate.Artist)
	if refArtist == "" || candArtist == "" {
		return kindScore, false
	}

	artistSim := nameSimilarity(refArtist, candArtist)
	if artistSim >= floor {
		// Typo tolerance: "Angels" vs "Angles" is the same remixer.
		artistSim = 100
	}
	return remixArtistWeight*artistSim + remixKindWeight*kindScore, false
}
