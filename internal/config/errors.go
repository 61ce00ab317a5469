package config

// ConfigurationError is returned for settings that make startup impossible.
// It never surfaces on a request path.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Field + " " + e.Reason
}
