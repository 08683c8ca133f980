// Package identity wraps the external identity provider that issues the
// short-lived bearer tokens accepted by the backend.
//
// Provider is the narrow surface the session layer depends on: password and
// interactive sign-in, sign-up, sign-out, password-reset email, display-name
// update, on-demand token issuance and a push subscription for "current
// identity changed". Toolkit implements it against the Identity Toolkit and
// Secure Token REST endpoints; the refresh token is kept in a SessionStore so
// a session survives process restarts.
package identity
