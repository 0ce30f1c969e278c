package artifact

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

// ConfigurationError means no usable artifact source is configured.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("artifact configuration: %s: %v", e.Reason, e.Err)
	}
	return "artifact configuration: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// NetworkError is a failed remote transfer. StatusCode is zero when no
// response was received.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// FetchTimeoutError is raised when connecting or reading stalls past the
// configured timeout. Phase is "connect" or "read".
type FetchTimeoutError struct {
	URL     string
	Phase   string
	Timeout time.Duration
	Err     error
}

func (e *FetchTimeoutError) Error() string {
	return fmt.Sprintf("fetch %s: %s timeout after %s", e.URL, e.Phase, e.Timeout)
}

func (e *FetchTimeoutError) Unwrap() error { return e.Err }

// ExtractionError covers malformed archives and filesystem failures while
// staging or publishing a bundle.
type ExtractionError struct {
	Op   string
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ValidationError lists what is wrong with a bundle directory.
type ValidationError struct {
	Dir        string
	Missing    []string
	Malformed  map[string]string
	Unexpected []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Malformed) > 0 {
		names := make([]string, 0, len(e.Malformed))
		for name := range e.Malformed {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s: %s", name, e.Malformed[name]))
		}
	}
	if len(e.Unexpected) > 0 {
		parts = append(parts, "unexpected "+strings.Join(e.Unexpected, ", "))
	}
	return fmt.Sprintf("invalid bundle in %s: %s", e.Dir, strings.Join(parts, "; "))
}

// RedactURL strips the query string, which carries the signature of
// pre-signed blob URLs.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	if u.RawQuery != "" {
		u.RawQuery = "REDACTED"
	}
	u.User = nil
	return u.String()
}
