package provider

import "errors"

var (
	// ErrMissingInlineImageData is returned when an image part reaches the
	// adapter without a data URI. Remote image URLs are never fetched.
	ErrMissingInlineImageData = errors.New("image part has no inline data")
	// ErrGatewayUnavailable wraps transport failures talking to the gateway.
	ErrGatewayUnavailable = errors.New("model gateway unavailable")
)
