package curve

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformedResponse is returned when the upstream document does not have the
// data.poolData array or the selected record cannot be decoded.
var ErrMalformedResponse = errors.New("malformed response")

// TransportError reports a network failure or a non-success HTTP status from the
// market-data endpoint.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport error: GET %s: status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("transport error: GET %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NotFoundError reports that no pool in the document carries the requested name.
type NotFoundError struct {
	Name  string
	Pools int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("pool %q not found among %d pools; upstream may have renamed it", e.Name, e.Pools)
}
