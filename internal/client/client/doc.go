// Package client contains the transport layer between the studysync client
// services and the backend REST API.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) covering
//     the profile, conversation, progress and exam endpoints.
//  2. A concrete HTTP implementation (see HTTPClient) that attaches the bearer
//     token carried by the request context, tags each request with an
//     X-Request-ID and maps HTTP status codes to sentinel errors.
//
// # Tokens
//
// The client never stores tokens. Callers obtain a fresh token for every
// call and attach it with WithBearerToken; a context without a token is sent
// unauthenticated.
//
// # Error Handling
//
// Non-2xx responses are returned as *APIError, which unwraps to one of the
// sentinels in internal/common (ErrValidation, ErrUnauthenticated,
// ErrForbidden, ErrNotFound, ErrRateLimited, ErrServer). Transport failures
// wrap common.ErrNetwork. Nothing is retried.
package client
