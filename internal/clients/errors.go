package clients

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUserNotFound means the listing endpoint returned 404 for the
// requested username. Surfaced verbatim so callers can tell the user to
// check the spelling instead of retrying.
var ErrUserNotFound = errors.New("user not found")

// ErrTokenAcquisition wraps any failure of the refresh-token grant.
var ErrTokenAcquisition = errors.New("token acquisition failed")

// ConfigurationError reports missing platform credentials. Raised on the
// first token request rather than at startup.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing Reddit credentials: %s", strings.Join(e.Missing, ", "))
}

// UpstreamError carries any other non-2xx platform response.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Body)
}
