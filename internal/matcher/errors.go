package matcher

import "fmt"

// ValidationError reports a raw string that yields no usable title or artist
// after normalization. It is surfaced immediately and never retried here.
type ValidationError struct {
	Raw    string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid track %q: %s", e.Raw, e.Reason)
}

// ConfigurationError reports a Config field outside its allowed range. It is
// raised by Config.Validate before any matching occurs.
type ConfigurationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config %s=%v: %s", e.Field, e.Value, e.Reason)
}
