package ultra

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned for any HTTP 401 from the API.
	ErrUnauthorized = errors.New("Unauthorized")

	// ErrNoZonesExist signals the API's "data not found" body (error code
	// 70002). Listing calls treat it as an empty result.
	ErrNoZonesExist = errors.New("NoZonesExist")
)

// HTTPError is a non-2xx response other than 401 and "data not found".
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: %s: %s", e.Method, e.URL, e.Status, e.Body)
}

// UnsupportedTypeError is returned when decoding an rrset whose rrtype has
// no canonical mapping.
type UnsupportedTypeError struct {
	Name   string
	RRType string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported rrtype %q for %q", e.RRType, e.Name)
}

// UnsupportedRecordError is returned for rrsets of a known type that cannot
// be represented, such as directional pools or malformed rdata.
type UnsupportedRecordError struct {
	Name   string
	RRType string
	Reason string
}

func (e *UnsupportedRecordError) Error() string {
	return fmt.Sprintf("unsupported record %q (%s): %s", e.Name, e.RRType, e.Reason)
}
