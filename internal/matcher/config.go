package matcher

// Config holds the scoring thresholds. It is passed explicitly into Match so
// the core stays free of process-wide state.
type Config struct {
	// MinScore is the acceptance floor for the weighted total, 0-100.
	MinScore float64
	// PerArtistFloor is the similarity every reference artist must reach
	// against some candidate artist, 0-100. Below it the candidate hard-fails.
	PerArtistFloor float64
	// AlternativesFloor is the diagnostic reporting floor for non-accepted
	// candidates. Only used when CollectAlternatives is set.
	AlternativesFloor float64
	// CollectAlternatives enables verbose reporting of near misses.
	CollectAlternatives bool
}

// DefaultConfig returns the strict defaults.
func DefaultConfig() Config {
	return Config{
		MinScore:          90,
		PerArtistFloor:    85,
		AlternativesFloor: 50,
	}
}

// Validate rejects thresholds outside [0,100].
func (c Config) Validate() error {
	if c.MinScore < 0 || c.MinScore > 100 {
		return &ConfigurationError{Field: "min_score", Value: c.MinScore, Reason: "must be within [0,100]"}
	}
	if c.PerArtistFloor < 0 || c.PerArtistFloor > 100 {
		return &ConfigurationError{Field: "per_artist_floor", Value: c.PerArtistFloor, Reason: "must be within [0,100]"}
	}
	if c.AlternativesFloor < 0 || c.AlternativesFloor > 100 {
		return &ConfigurationError{Field: "alternatives_floor", Value: c.AlternativesFloor, Reason: "must be within [0,100]"}
	}
	return nil
}
