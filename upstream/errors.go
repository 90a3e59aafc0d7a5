package upstream

import "errors"

// Sentinel errors for upstream requests.
var (
	// ErrInvalidEndpoint is returned for an empty or malformed endpoint.
	ErrInvalidEndpoint = errors.New("upstream: invalid endpoint")

	// ErrNetwork wraps transport failures such as resets and DNS errors.
	ErrNetwork = errors.New("upstream: network error")

	// ErrEncodeBody is returned when a POST body cannot be encoded.
	ErrEncodeBody = errors.New("upstream: encode request body")

	// ErrDecodeResponse is returned when a batch response has an unexpected shape.
	ErrDecodeResponse = errors.New("upstream: decode response")

	// ErrResponseTooLarge is returned when a body exceeds MaxResponseBytes.
	ErrResponseTooLarge = errors.New("upstream: response too large")
)
