// Package services contains the stateful session and resource layer of the
// studysync client.
//
// AuthService owns the authentication lifecycle: it tracks the principal
// reported by the identity provider, derives a fresh bearer token for every
// backend call and keeps the backend profile in step with identity changes.
//
// ConversationService, ProgressService and ExamService each own one
// paginated, cached collection built on the same generic collection type:
// a loading flag, a last-error slot and a page cursor. List failures are
// captured in the error slot; mutations return their error and record it
// there too. Nothing is retried.
//
// All services are safe for concurrent use. State is guarded by a mutex and
// network calls are made outside it, so responses may be applied in a
// different order than the calls were issued.
package services
