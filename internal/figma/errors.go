package figma

import "fmt"

// ConfigError reports a required credential that is not configured. It is
// surfaced before any network or browser action and is never retried.
type ConfigError struct {
	Missing string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("figma: missing credential: %s", e.Missing)
}

// AuthError reports a browser login flow that did not reach its success
// signal within the bounded wait.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("figma: authentication failed: %s", e.Reason)
}

// TransportError reports a non-2xx response from the structured API. The
// transport does not retry; retrying is a caller policy decision.
type TransportError struct {
	Status int
	Body   string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("figma: API returned %d: %s", e.Status, e.Body)
}
