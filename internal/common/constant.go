package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token on
// outbound backend requests.
const AuthorizationHeaderName = "Authorization"

// RequestIDHeaderName tags every backend request so that client and server
// logs can be correlated.
const RequestIDHeaderName = "X-Request-ID"
