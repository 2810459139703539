// Package providers defines the boundary to the external translation
// service. The pipeline only ever sees the Provider interface; everything
// behind it (HTTP, retries, model specifics) is the provider's business.
package providers

import "context"

// Request is a single translation call. Text already contains the full user
// prompt for the call; System carries the system instruction.
type Request struct {
	System         string
	Text           string
	TargetLanguage string
}

// Response is the raw text returned by the service.
type Response struct {
	Text      string
	TokensIn  int
	TokensOut int
}

// Provider sends one translation request and returns the raw response text.
// Implementations must be safe for sequential reuse across documents.
type Provider interface {
	Translate(ctx context.Context, req *Request) (*Response, error)
	Name() string
}
