package matcher

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"mixesdbsync/internal/models"
)

var (
	// Collaboration delimiters in the artist portion. Adjacent delimiters
	// collapse to one split point. A spelled-out "and" is NOT a delimiter:
	// it appears inside artist names ("Above and Beyond").
	artistDelimRe = regexp.MustCompile(`(?i)\s*[,&+]\s*|\s+(?:vs\.?|versus|featuring|feat\.?|ft\.?|with|w/|x)\s+`)

	// Remix/version clause, parenthetical or trailing after a dash.
	remixParenRe = regexp.MustCompile(`(?i)\(([^)]*(?:remix|mix|edit|version|dub|rework|bootleg|vip)[^)]*)\)`)
	remixDashRe  = regexp.MustCompile(`(?i)\s+[-–]\s+(.*?(?:remix|mix|edit|version|dub|rework|bootleg|vip)[^-–]*)$`)

	// Remaster marker, optionally year-qualified. Cosmetic: stripped from the
	// base title before anything else and recorded on the descriptor.
	remasterRe = regexp.MustCompile(`(?i)\s*[-–]\s*(?:\d{4}\s*)?remaster(?:ed)?(?:\s*\d{4})?\s*$|\s*\(\s*(?:\d{4}\s*)?remaster(?:ed)?(?:\s*\d{4})?\s*\)`)

	// Bracketed label info, e.g. "[Kompakt]".
	labelRe = regexp.MustCompile(`\s*\[[^\]]*\]`)

	quoteRe = regexp.MustCompile("['\"`]")
	wsRe    = regexp.MustCompile(`\s+`)
)

// noiseClauses are version clauses that do not distinguish the recording.
// They are stripped without producing a remix annotation.
var noiseClauses = map[string]struct{}{
	"original":      {},
	"original mix":  {},
	"radio edit":    {},
	"extended":      {},
	"extended mix":  {},
	"club mix":      {},
	"original edit": {},
}

// kindTokens maps a clause token to its canonical kind, ordered by
// specificity so "VIP Mix" resolves to VIP rather than Mix.
var kindTokens = []struct {
	token string
	kind  models.RemixKind
}{
	{"vip", models.KindVIP},
	{"bootleg", models.KindBootleg},
	{"rework", models.KindRework},
	{"remix", models.KindRemix},
	{"edit", models.KindEdit},
	{"dub", models.KindDub},
	{"version", models.KindVersion},
	{"mix", models.KindMix},
}

// comparisonReplacements unify collaboration spellings in folded copies.
var comparisonReplacements = [][2]string{
	{" & ", " and "},
	{" vs. ", " versus "},
	{" vs ", " versus "},
	{" feat. ", " featuring "},
	{" feat ", " featuring "},
	{" ft. ", " featuring "},
	{" ft ", " featuring "},
	{" w/ ", " with "},
}

var foldTransformer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases, strips diacritics and collapses whitespace. Used only for
// comparison copies (and cache keys); display strings keep their original
// form.
func Fold(s string) string {
	return fold(s)
}

func fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	folded = wsRe.ReplaceAllString(folded, " ")
	return strings.TrimSpace(folded)
}

// comparableTitle folds and additionally unifies collaboration spellings and
// drops quotes, the form the title scorer compares.
func comparableTitle(s string) string {
	c := fold(quoteRe.ReplaceAllString(s, ""))
	// Pad so edge replacements see their delimiters.
	c = " " + c + " "
	for _, r := range comparisonReplacements {
		c = strings.ReplaceAll(c, r[0], r[1])
	}
	return strings.TrimSpace(wsRe.ReplaceAllString(c, " "))
}

// SplitArtists segments a raw artist string on the collaboration delimiter
// set, preserving left-to-right order of distinct names.
func SplitArtists(raw string) []string {
	parts := artistDelimRe.Split(raw, -1)
	artists := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := fold(p)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		artists = append(artists, p)
	}
	return artists
}

// Parse turns one raw tracklist entry ("Artist - Title") into a descriptor.
// It fails with a ValidationError when no usable artist or title remains.
func Parse(raw string) (models.Track, error) {
	trimmed := strings.TrimSpace(raw)
	sep := strings.Index(trimmed, " - ")
	if sep < 0 {
		sep = strings.Index(trimmed, " – ")
	}
	if sep <= 0 {
		return models.Track{}, &ValidationError{Raw: raw, Reason: "no artist/title separator"}
	}
	artistPart := trimmed[:sep]
	titlePart := strings.TrimSpace(trimmed[sep+3:])
	return FromParts(SplitArtists(artistPart), titlePart)
}

// FromParts builds a descriptor from an already-segmented artist list and a
// raw title, the shape catalog search results arrive in.
func FromParts(artists []string, rawTitle string) (models.Track, error) {
	clean := make([]string, 0, len(artists))
	seen := make(map[string]struct{}, len(artists))
	for _, a := range artists {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		key := fold(a)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		clean = append(clean, a)
	}
	if len(clean) == 0 {
		return models.Track{}, &ValidationError{Raw: rawTitle, Reason: "no artist"}
	}

	base, remix, remaster := normalizeTitle(rawTitle)
	if base == "" {
		return models.Track{}, &ValidationError{Raw: rawTitle, Reason: "no usable title"}
	}

	return models.Track{
		Artists:    clean,
		BaseTitle:  base,
		Remix:      remix,
		IsRemaster: remaster,
	}, nil
}

// normalizeTitle strips label brackets and the remaster marker, then extracts
// the remix/version clause, returning the base title for comparison.
func normalizeTitle(raw string) (base string, remix *models.Remix, remaster bool) {
	title := labelRe.ReplaceAllString(strings.TrimSpace(raw), "")

	if remasterRe.MatchString(title) {
		remaster = true
		title = remasterRe.ReplaceAllString(title, "")
	}

	// Parenthetical clause wins over a trailing dash clause; both formats
	// occur on tracklist pages ("Track (X Remix)" and "Track - X Remix").
	if m := remixParenRe.FindStringSubmatch(title); m != nil {
		remix = parseRemixClause(m[1])
		title = remixParenRe.ReplaceAllString(title, "")
	} else if m := remixDashRe.FindStringSubmatch(title); m != nil {
		remix = parseRemixClause(m[1])
		title = remixDashRe.ReplaceAllString(title, "")
	}

	base = strings.TrimSpace(wsRe.ReplaceAllString(title, " "))
	base = strings.TrimSuffix(base, " -")
	base = strings.TrimSpace(base)
	return base, remix, remaster
}

// parseRemixClause resolves a clause like "Dusky Remix" or "VIP Mix" into a
// kind and an optional remixer name. Noise clauses ("Radio Edit", "Extended
// Mix", ...) yield nil: they do not distinguish the recording.
func parseRemixClause(clause string) *models.Remix {
	clause = strings.TrimSpace(clause)
	if _, noise := noiseClauses[fold(clause)]; noise {
		return nil
	}

	tokens := strings.Fields(clause)
	kind := models.RemixKind("")
	for _, kt := range kindTokens {
		for _, tok := range tokens {
			if strings.EqualFold(tok, kt.token) {
				kind = kt.kind
				break
			}
		}
		if kind != "" {
			break
		}
	}
	if kind == "" {
		return nil
	}

	// Everything that is not a kind keyword is the remixer name, original
	// casing preserved.
	var nameTokens []string
	for _, tok := range tokens {
		if isKindToken(tok) {
			continue
		}
		nameTokens = append(nameTokens, tok)
	}

	return &models.Remix{Kind: kind, Artist: strings.Join(nameTokens, " ")}
}

func isKindToken(tok string) bool {
	for _, kt := range kindTokens {
		if strings.EqualFold(tok, kt.token) {
			return true
		}
	}
	return false
}
