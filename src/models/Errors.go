package models

import "fmt"

// ConnectionError means a camera feed could not be opened or maintained.
// It is recovered locally with backoff and never propagated as fatal.
type ConnectionError struct {
	Camera string
	Err    error
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("camera %s: %s", e.Camera, e.Err.Error())
	}
	return fmt.Sprintf("camera %s: connection failed", e.Camera)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ConfigurationError means a camera or region definition is malformed. It is
// fatal at startup and prevents the offending entry from being registered.
type ConfigurationError struct {
	Entry  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %s", e.Entry, e.Reason)
}
