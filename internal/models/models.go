package models

import (
	"fmt"
	"strings"
)

// RemixKind classifies a remix/version annotation.
type RemixKind string

const (
	KindRemix   RemixKind = "Remix"
	KindEdit    RemixKind = "Edit"
	KindVIP     RemixKind = "VIP"
	KindBootleg RemixKind = "Bootleg"
	KindMix     RemixKind = "Mix"
	KindVersion RemixKind = "Version"
	KindDub     RemixKind = "Dub"
	KindRework  RemixKind = "Rework"
)

// Remix is a named remix/version annotation. Artist is empty when the clause
// names no remixer, e.g. "(Remix)".
type Remix struct {
	Kind   RemixKind
	Artist string
}

func (r Remix) String() string {
	if r.Artist == "" {
		return string(r.Kind)
	}
	return r.Artist + " " + string(r.Kind)
}

// Track is the structured, comparable form of a tracklist entry or a catalog
// candidate. It is created once by the normalizer and never mutated.
// Artists and BaseTitle keep their original casing for display; comparisons
// use folded copies.
type Track struct {
	Artists    []string
	BaseTitle  string
	Remix      *Remix // nil means original mix
	IsRemaster bool   // recorded for display only, never scored
}

func (t Track) String() string {
	s := strings.Join(t.Artists, " & ") + " - " + t.BaseTitle
	if t.Remix != nil {
		s += " (" + t.Remix.String() + ")"
	}
	return s
}

// MixTrack is one raw tracklist entry from a MixesDB page.
type MixTrack struct {
	Position int
	Artist   string
	Title    string
	Label    string
}

// Raw returns the entry in "Artist - Title" form, the shape the normalizer
// parses.
func (t MixTrack) Raw() string {
	return t.Artist + " - " + t.Title
}

func (t MixTrack) String() string {
	s := t.Raw()
	if t.Label != "" {
		s += " [" + t.Label + "]"
	}
	return s
}

// Mix is a DJ set page from MixesDB.
type Mix struct {
	URL           string
	Title         string
	Tracks        []MixTrack
	Categories    []string
	SpotifyURL    string
	SoundCloudURL string
	ImageURL      string
}

func (m Mix) String() string {
	return fmt.Sprintf("%s (%d tracks)", m.Title, len(m.Tracks))
}

// Confidence bands a match score for display.
type Confidence int

const (
	NoMatch Confidence = iota
	Low
	Medium
	High
	Exact
)

// ConfidenceFromScore maps a 0-100 score onto a confidence band.
func ConfidenceFromScore(score float64) Confidence {
	switch {
	case score >= 95:
		return Exact
	case score >= 90:
		return High
	case score >= 80:
		return Medium
	default:
		return Low
	}
}

func (c Confidence) String() string {
	switch c {
	case Exact:
		return "exact"
	case High:
		return "high"
	case Medium:
		return "medium"
	case Low:
		return "low"
	default:
		return "no match"
	}
}
