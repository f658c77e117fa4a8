package domain

import "context"

type Service interface {
	// Ingest verifies, dedupes and dispatches one raw webhook delivery.
	// ErrInvalidSignature and ErrMalformedPayload are the only errors the HTTP
	// layer turns into non-2xx responses; everything downstream is absorbed so
	// the gateway stops redelivering.
	Ingest(ctx context.Context, body []byte, signature string) error
}
