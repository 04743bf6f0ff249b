package matcher

import (
	"errors"
	"testing"

	"mixesdbsync/internal/models"
)

func TestParseArtistSegmentation(t *testing.T) {
	tests := []struct {
		raw     string
		artists []string
	}{
		{"John Talabot - Matilda's Dream", []string{"John Talabot"}},
		{"A & B - Title", []string{"A", "B"}},
		{"A + B - Title", []string{"A", "B"}},
		{"A, B - Title", []string{"A", "B"}},
		{"Âme feat. K.I.M. - Rej", []string{"Âme", "K.I.M."}},
		{"A ft B - Title", []string{"A", "B"}},
		{"A featuring B - Title", []string{"A", "B"}},
		{"A vs. B - Title", []string{"A", "B"}},
		{"A x B - Title", []string{"A", "B"}},
		{"A with B - Title", []string{"A", "B"}},
		// A spelled-out "and" belongs to the name, not the delimiter set.
		{"Above and Beyond - Sun After Dark", []string{"Above and Beyond"}},
		// Adjacent delimiters collapse to one split point.
		{"A, & B - Title", []string{"A", "B"}},
		// Duplicates keep the first spelling only.
		{"A & a - Title", []string{"A"}},
	}

	for _, tt := range tests {
		track, err := Parse(tt.raw)
		if err != nil {
			t.Errorf("Parse(%q) returned error: %v", tt.raw, err)
			continue
		}
		if len(track.Artists) != len(tt.artists) {
			t.Errorf("Parse(%q) artists = %v, expected %v", tt.raw, track.Artists, tt.artists)
			continue
		}
		for i := range tt.artists {
			if track.Artists[i] != tt.artists[i] {
				t.Errorf("Parse(%q) artists[%d] = %q, expected %q", tt.raw, i, track.Artists[i], tt.artists[i])
			}
		}
	}
}

func TestParseRemixExtraction(t *testing.T) {
	tests := []struct {
		raw   string
		base  string
		remix *models.Remix
	}{
		{"DJ X - Track (Dusky Remix)", "Track", &models.Remix{Kind: models.KindRemix, Artist: "Dusky"}},
		{"DJ X - Track - Dusky Remix", "Track", &models.Remix{Kind: models.KindRemix, Artist: "Dusky"}},
		{"DJ X - Track (Four Tet Edit)", "Track", &models.Remix{Kind: models.KindEdit, Artist: "Four Tet"}},
		{"DJ X - Track (VIP Mix)", "Track", &models.Remix{Kind: models.KindVIP, Artist: ""}},
		{"DJ X - Track (Remix)", "Track", &models.Remix{Kind: models.KindRemix, Artist: ""}},
		{"DJ X - Track (Sub Dub)", "Track", &models.Remix{Kind: models.KindDub, Artist: "Sub"}},
		{"DJ X - Track (Club Version)", "Track", &models.Remix{Kind: models.KindVersion, Artist: "Club"}},
		// Noise clauses do not distinguish the recording.
		{"DJ X - Track (Original Mix)", "Track", nil},
		{"DJ X - Track (Radio Edit)", "Track", nil},
		{"DJ X - Track (Extended Mix)", "Track", nil},
		{"DJ X - Track", "Track", nil},
	}

	for _, tt := range tests {
		track, err := Parse(tt.raw)
		if err != nil {
			t.Errorf("Parse(%q) returned error: %v", tt.raw, err)
			continue
		}
		if track.BaseTitle != tt.base {
			t.Errorf("Parse(%q) base = %q, expected %q", tt.raw, track.BaseTitle, tt.base)
		}
		switch {
		case tt.remix == nil && track.Remix != nil:
			t.Errorf("Parse(%q) remix = %v, expected none", tt.raw, track.Remix)
		case tt.remix != nil && track.Remix == nil:
			t.Errorf("Parse(%q) remix = none, expected %v", tt.raw, tt.remix)
		case tt.remix != nil && track.Remix != nil:
			if track.Remix.Kind != tt.remix.Kind || track.Remix.Artist != tt.remix.Artist {
				t.Errorf("Parse(%q) remix = %v, expected %v", tt.raw, track.Remix, tt.remix)
			}
		}
	}
}

func TestParseRemasterDetection(t *testing.T) {
	tests := []struct {
		raw      string
		base     string
		remaster bool
	}{
		{"Artist - Track (2023 Remaster)", "Track", true},
		{"Artist - Track (Remastered)", "Track", true},
		{"Artist - Track (Remastered 2011)", "Track", true},
		{"Artist - Track - Remastered", "Track", true},
		{"Artist - Track", "Track", false},
	}

	for _, tt := range tests {
		track, err := Parse(tt.raw)
		if err != nil {
			t.Errorf("Parse(%q) returned error: %v", tt.raw, err)
			continue
		}
		if track.BaseTitle != tt.base {
			t.Errorf("Parse(%q) base = %q, expected %q", tt.raw, track.BaseTitle, tt.base)
		}
		if track.IsRemaster != tt.remaster {
			t.Errorf("Parse(%q) remaster = %v, expected %v", tt.raw, track.IsRemaster, tt.remaster)
		}
	}
}

func TestParseRemasterThenRemix(t *testing.T) {
	track, err := Parse("Artist - Track (Dusky Remix) (2011 Remaster)")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !track.IsRemaster {
		t.Error("expected remaster flag")
	}
	if track.Remix == nil || track.Remix.Artist != "Dusky" {
		t.Errorf("remix = %v, expected Dusky Remix", track.Remix)
	}
	if track.BaseTitle != "Track" {
		t.Errorf("base = %q, expected Track", track.BaseTitle)
	}
}

func TestParseStripsLabelBrackets(t *testing.T) {
	track, err := Parse("Artist - Track [Kompakt]")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if track.BaseTitle != "Track" {
		t.Errorf("base = %q, expected Track", track.BaseTitle)
	}
}

func TestParsePreservesDisplayCasing(t *testing.T) {
	track, err := Parse("RÜFÜS DU SOL - Innerbloom (What So Not Remix)")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if track.Artists[0] != "RÜFÜS DU SOL" {
		t.Errorf("artist = %q, casing not preserved", track.Artists[0])
	}
	if track.BaseTitle != "Innerbloom" {
		t.Errorf("base = %q", track.BaseTitle)
	}
	if track.Remix == nil || track.Remix.Artist != "What So Not" {
		t.Errorf("remix = %v", track.Remix)
	}
}

func TestParseValidation(t *testing.T) {
	for _, raw := range []string{
		"no separator here",
		" - Title Only",
		"Artist - (Remix)",
		"",
	} {
		_, err := Parse(raw)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Parse(%q) error = %v, expected ValidationError", raw, err)
		}
	}
}

func TestFromPartsValidation(t *testing.T) {
	if _, err := FromParts(nil, "Title"); err == nil {
		t.Error("expected error for empty artist list")
	}
	if _, err := FromParts([]string{"  ", ""}, "Title"); err == nil {
		t.Error("expected error for blank artists")
	}
}

func TestFold(t *testing.T) {
	tests := []struct{ in, out string }{
		{"Âme", "ame"},
		{"BICEP", "bicep"},
		{"  spaced   out  ", "spaced out"},
		{"Señor Coconut", "senor coconut"},
	}
	for _, tt := range tests {
		if got := Fold(tt.in); got != tt.out {
			t.Errorf("Fold(%q) = %q, expected %q", tt.in, got, tt.out)
		}
	}
}
