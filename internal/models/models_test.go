package models

import "testing"

func TestConfidenceFromScore(t *testing.T) {
	tests := []struct {
		score float64
		want  Confidence
	}{
		{100, Exact},
		{95, Exact},
		{94.9, High},
		{90, High},
		{85, Medium},
		{80, Medium},
		{79.9, Low},
		{0, Low},
	}
	for _, tt := range tests {
		if got := ConfidenceFromScore(tt.score); got != tt.want {
			t.Errorf("ConfidenceFromScore(%v) = %v, expected %v", tt.score, got, tt.want)
		}
	}
}

func TestMixTrackRaw(t *testing.T) {
	entry := MixTrack{Position: 3, Artist: "Âme", Title: "Rej"}
	if entry.Raw() != "Âme - Rej" {
		t.Errorf("Raw() = %q", entry.Raw())
	}
}

func TestTrackString(t *testing.T) {
	track := Track{
		Artists:   []string{"RÜFÜS DU SOL"},
		BaseTitle: "Innerbloom",
		Remix:     &Remix{Kind: KindRemix, Artist: "What So Not"},
	}
	if track.String() != "RÜFÜS DU SOL - Innerbloom (What So Not Remix)" {
		t.Errorf("String() = %q", track.String())
	}

	collab := Track{Artists: []string{"CamelPhat", "Elderbrook"}, BaseTitle: "Cola"}
	if collab.String() != "CamelPhat & Elderbrook - Cola" {
		t.Errorf("String() = %q", collab.String())
	}
}
